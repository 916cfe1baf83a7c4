package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-admin-server/internal/models"
	"hospital-admin-server/internal/utils"
)

// DepartmentHandler handles department management requests (admin only).
type DepartmentHandler struct {
	DB *gorm.DB
}

// NewDepartmentHandler creates a new DepartmentHandler.
func NewDepartmentHandler(db *gorm.DB) *DepartmentHandler {
	return &DepartmentHandler{DB: db}
}

// DepartmentRequest represents the request body for creating or updating a
// department.
type DepartmentRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateDepartment handles creating a new department.
func (h *DepartmentHandler) CreateDepartment(c *gin.Context) {
	var req DepartmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	department := models.Department{Name: req.Name, Description: req.Description}
	if err := h.DB.Create(&department).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.BadRequest(c, "A department with that name already exists")
			return
		}
		utils.InternalServerError(c, "Failed to create department: "+err.Error())
		return
	}

	utils.Created(c, "Department created successfully", department)
}

// ListDepartments returns all departments, optionally filtered by name.
func (h *DepartmentHandler) ListDepartments(c *gin.Context) {
	query := h.DB.Order("name asc")
	if q := c.Query("query"); q != "" {
		query = query.Where("name LIKE ?", "%"+q+"%")
	}

	var departments []models.Department
	if err := query.Find(&departments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch departments: "+err.Error())
		return
	}

	utils.Success(c, "Departments fetched successfully", departments)
}

// UpdateDepartment handles renaming a department or editing its description.
func (h *DepartmentHandler) UpdateDepartment(c *gin.Context) {
	department, ok := h.loadDepartment(c)
	if !ok {
		return
	}

	var req DepartmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var existing models.Department
	if err := h.DB.Where("name = ? AND id <> ?", req.Name, department.ID).First(&existing).Error; err == nil {
		utils.BadRequest(c, "Another department with that name already exists")
		return
	}

	department.Name = req.Name
	department.Description = req.Description
	if err := h.DB.Save(department).Error; err != nil {
		utils.InternalServerError(c, "Failed to update department: "+err.Error())
		return
	}

	utils.Success(c, "Department updated successfully", department)
}

// DeleteDepartment removes a department. Deletion is blocked while doctors
// are still assigned to it.
func (h *DepartmentHandler) DeleteDepartment(c *gin.Context) {
	department, ok := h.loadDepartment(c)
	if !ok {
		return
	}

	var doctorCount int64
	if err := h.DB.Model(&models.Doctor{}).Where("department_id = ?", department.ID).Count(&doctorCount).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	if doctorCount > 0 {
		utils.Conflict(c, "Department still has doctors assigned; reassign them first")
		return
	}

	if err := h.DB.Delete(department).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete department: "+err.Error())
		return
	}

	utils.Success(c, "Department deleted successfully", nil)
}

func (h *DepartmentHandler) loadDepartment(c *gin.Context) (*models.Department, bool) {
	var department models.Department
	if err := h.DB.First(&department, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Department not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}
	return &department, true
}
