package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-admin-server/internal/middleware"
	"hospital-admin-server/internal/models"
	"hospital-admin-server/internal/scheduling"
	"hospital-admin-server/internal/utils"
)

// DoctorHandler handles doctor management and availability requests.
type DoctorHandler struct {
	DB  *gorm.DB
	Svc *scheduling.Service
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(db *gorm.DB, svc *scheduling.Service) *DoctorHandler {
	return &DoctorHandler{DB: db, Svc: svc}
}

// CreateDoctorRequest represents the request body for adding a doctor.
type CreateDoctorRequest struct {
	Name              string `json:"name" binding:"required"`
	Email             string `json:"email" binding:"required,email"`
	Password          string `json:"password" binding:"required,min=8"`
	Phone             string `json:"phone"`
	DepartmentID      uint   `json:"departmentId" binding:"required"`
	Bio               string `json:"bio"`
	YearsOfExperience *int   `json:"yearsOfExperience" binding:"omitempty,gte=0"`
	Status            string `json:"status" binding:"omitempty,oneof=active inactive blacklisted"`
}

// CreateDoctor handles adding a doctor profile (admin only).
func (h *DoctorHandler) CreateDoctor(c *gin.Context) {
	var req CreateDoctorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var department models.Department
	if err := h.DB.First(&department, req.DepartmentID).Error; err != nil {
		utils.BadRequest(c, "Department not found")
		return
	}

	doctor := models.Doctor{
		Name:              req.Name,
		Phone:             req.Phone,
		DepartmentID:      req.DepartmentID,
		Bio:               req.Bio,
		YearsOfExperience: req.YearsOfExperience,
		Status:            models.UserActive,
	}
	if req.Status != "" {
		doctor.Status = models.UserStatus(req.Status)
	}
	doctor.Email = req.Email
	if err := doctor.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	if err := h.DB.Create(&doctor).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.BadRequest(c, "A doctor with that email already exists")
			return
		}
		utils.InternalServerError(c, "Failed to create doctor: "+err.Error())
		return
	}

	utils.Created(c, "Doctor profile added successfully", doctor)
}

// ListDoctors returns doctors, optionally filtered by free-text query and
// department. Patients only see active doctors; admins see everyone.
func (h *DoctorHandler) ListDoctors(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)

	query := h.DB.Preload("Department").Order("name asc")
	if !principal.IsAdmin() {
		query = query.Where("status = ?", models.UserActive)
	}
	if q := c.Query("q"); q != "" {
		like := "%" + q + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", like, like)
	}
	if dept := c.Query("department_id"); dept != "" {
		query = query.Where("department_id = ?", dept)
	}

	var doctors []models.Doctor
	if err := query.Find(&doctors).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}

	utils.Success(c, "Doctors fetched successfully", doctors)
}

// GetDoctorByID returns a single doctor profile.
func (h *DoctorHandler) GetDoctorByID(c *gin.Context) {
	doctor, ok := h.loadDoctor(c)
	if !ok {
		return
	}
	utils.Success(c, "Doctor fetched successfully", doctor)
}

// UpdateDoctorRequest represents the request body for editing a doctor.
type UpdateDoctorRequest struct {
	Name              string `json:"name"`
	Email             string `json:"email" binding:"omitempty,email"`
	Password          string `json:"password" binding:"omitempty,min=8"`
	Phone             string `json:"phone"`
	DepartmentID      *uint  `json:"departmentId"`
	Bio               string `json:"bio"`
	YearsOfExperience *int   `json:"yearsOfExperience" binding:"omitempty,gte=0"`
	Status            string `json:"status" binding:"omitempty,oneof=active inactive blacklisted"`
}

// UpdateDoctor handles editing a doctor profile (admin only). Setting status
// to inactive is the supported way of retiring a doctor who still has
// appointment history.
func (h *DoctorHandler) UpdateDoctor(c *gin.Context) {
	doctor, ok := h.loadDoctor(c)
	if !ok {
		return
	}

	var req UpdateDoctorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if req.Email != "" && req.Email != doctor.Email {
		var existing models.Doctor
		if err := h.DB.Where("email = ? AND id <> ?", req.Email, doctor.ID).First(&existing).Error; err == nil {
			utils.BadRequest(c, "Another doctor with that email already exists")
			return
		}
		doctor.Email = req.Email
	}
	if req.Name != "" {
		doctor.Name = req.Name
	}
	if req.Phone != "" {
		doctor.Phone = req.Phone
	}
	if req.DepartmentID != nil {
		var department models.Department
		if err := h.DB.First(&department, *req.DepartmentID).Error; err != nil {
			utils.BadRequest(c, "Department not found")
			return
		}
		doctor.DepartmentID = *req.DepartmentID
	}
	if req.Bio != "" {
		doctor.Bio = req.Bio
	}
	if req.YearsOfExperience != nil {
		doctor.YearsOfExperience = req.YearsOfExperience
	}
	if req.Status != "" {
		doctor.Status = models.UserStatus(req.Status)
	}
	if req.Password != "" {
		if err := doctor.SetPassword(req.Password); err != nil {
			utils.InternalServerError(c, "Failed to hash password: "+err.Error())
			return
		}
	}

	if err := h.DB.Save(doctor).Error; err != nil {
		utils.InternalServerError(c, "Failed to update doctor: "+err.Error())
		return
	}

	utils.Success(c, "Doctor profile updated successfully", doctor)
}

// DeleteDoctor removes a doctor. Deletion is blocked while the doctor holds
// booked future appointments; deactivate instead. When deletion proceeds, the
// doctor's appointments, treatments, schedule and time-off go with it.
func (h *DoctorHandler) DeleteDoctor(c *gin.Context) {
	doctor, ok := h.loadDoctor(c)
	if !ok {
		return
	}

	hasUpcoming, err := h.Svc.DoctorHasUpcomingAppointments(c.Request.Context(), doctor.ID)
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	if hasUpcoming {
		utils.Conflict(c, "Doctor has upcoming booked appointments; cancel them or set the doctor inactive instead")
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		var appointmentIDs []uint
		if err := tx.Model(&models.Appointment{}).Where("doctor_id = ?", doctor.ID).Pluck("id", &appointmentIDs).Error; err != nil {
			return err
		}
		if len(appointmentIDs) > 0 {
			if err := tx.Where("appointment_id IN ?", appointmentIDs).Delete(&models.Treatment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("doctor_id = ?", doctor.ID).Delete(&models.Appointment{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("doctor_id = ?", doctor.ID).Delete(&models.DoctorSchedule{}).Error; err != nil {
			return err
		}
		if err := tx.Where("doctor_id = ?", doctor.ID).Delete(&models.DoctorTimeOff{}).Error; err != nil {
			return err
		}
		return tx.Delete(doctor).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to delete doctor: "+err.Error())
		return
	}

	utils.Success(c, "Doctor profile deleted successfully", nil)
}

// GetDoctorAvailability returns the doctor's free intervals for a date range:
// GET /doctors/:id/availability?from=2025-03-10&to=2025-03-16
func (h *DoctorHandler) GetDoctorAvailability(c *gin.Context) {
	doctorID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid doctor ID")
		return
	}

	from, err := time.ParseInLocation("2006-01-02", c.Query("from"), time.Local)
	if err != nil {
		utils.BadRequest(c, "Invalid or missing 'from' date, expected YYYY-MM-DD")
		return
	}
	to := from
	if s := c.Query("to"); s != "" {
		to, err = time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			utils.BadRequest(c, "Invalid 'to' date, expected YYYY-MM-DD")
			return
		}
	}

	days, err := h.Svc.ComputeAvailability(c.Request.Context(), uint(doctorID), from, to)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Availability computed successfully", days)
}

func (h *DoctorHandler) loadDoctor(c *gin.Context) (*models.Doctor, bool) {
	var doctor models.Doctor
	if err := h.DB.Preload("Department").First(&doctor, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}
	return &doctor, true
}
