package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-admin-server/internal/models"
	"hospital-admin-server/internal/scheduling"
	"hospital-admin-server/internal/utils"
)

// PatientHandler handles patient management requests (admin only).
type PatientHandler struct {
	DB  *gorm.DB
	Svc *scheduling.Service
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(db *gorm.DB, svc *scheduling.Service) *PatientHandler {
	return &PatientHandler{DB: db, Svc: svc}
}

// CreatePatientRequest represents the request body for adding a patient.
type CreatePatientRequest struct {
	Name     string `json:"name" binding:"required"`
	Age      *int   `json:"age" binding:"required,gt=0"`
	Gender   string `json:"gender" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	Address  string `json:"address"`
	Notes    string `json:"notes"`
	Password string `json:"password" binding:"required,min=8"`
	Status   string `json:"status" binding:"omitempty,oneof=active inactive blacklisted"`
}

// CreatePatient handles adding a patient (admin only).
func (h *PatientHandler) CreatePatient(c *gin.Context) {
	var req CreatePatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	patient := models.Patient{
		Name:    req.Name,
		Age:     req.Age,
		Gender:  req.Gender,
		Phone:   req.Phone,
		Address: req.Address,
		Notes:   req.Notes,
		Status:  models.UserActive,
	}
	if req.Status != "" {
		patient.Status = models.UserStatus(req.Status)
	}
	patient.Email = req.Email
	if err := patient.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	if err := h.DB.Create(&patient).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.BadRequest(c, "A patient with that email already exists")
			return
		}
		utils.InternalServerError(c, "Failed to create patient: "+err.Error())
		return
	}

	utils.Created(c, "Patient added successfully", patient)
}

// SearchPatients returns patients matching a free-text query over name,
// email and phone.
func (h *PatientHandler) SearchPatients(c *gin.Context) {
	query := h.DB.Order("name asc")
	if q := c.Query("q"); q != "" {
		like := "%" + q + "%"
		query = query.Where("name LIKE ? OR email LIKE ? OR phone LIKE ?", like, like, like)
	}

	var patients []models.Patient
	if err := query.Find(&patients).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch patients: "+err.Error())
		return
	}

	utils.Success(c, "Patients fetched successfully", patients)
}

// GetPatientByID returns a single patient record.
func (h *PatientHandler) GetPatientByID(c *gin.Context) {
	patient, ok := h.loadPatient(c)
	if !ok {
		return
	}
	utils.Success(c, "Patient fetched successfully", patient)
}

// UpdatePatientRequest represents the request body for editing a patient.
type UpdatePatientRequest struct {
	Name     string `json:"name"`
	Age      *int   `json:"age" binding:"omitempty,gt=0"`
	Gender   string `json:"gender"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Notes    string `json:"notes"`
	Password string `json:"password" binding:"omitempty,min=8"`
	Status   string `json:"status" binding:"omitempty,oneof=active inactive blacklisted"`
}

// UpdatePatient handles editing a patient record (admin only).
func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	patient, ok := h.loadPatient(c)
	if !ok {
		return
	}

	var req UpdatePatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if req.Email != "" && req.Email != patient.Email {
		var existing models.Patient
		if err := h.DB.Where("email = ? AND id <> ?", req.Email, patient.ID).First(&existing).Error; err == nil {
			utils.BadRequest(c, "Another patient with that email already exists")
			return
		}
		patient.Email = req.Email
	}
	if req.Name != "" {
		patient.Name = req.Name
	}
	if req.Age != nil {
		patient.Age = req.Age
	}
	if req.Gender != "" {
		patient.Gender = req.Gender
	}
	if req.Phone != "" {
		patient.Phone = req.Phone
	}
	if req.Address != "" {
		patient.Address = req.Address
	}
	if req.Notes != "" {
		patient.Notes = req.Notes
	}
	if req.Status != "" {
		patient.Status = models.UserStatus(req.Status)
	}
	if req.Password != "" {
		if err := patient.SetPassword(req.Password); err != nil {
			utils.InternalServerError(c, "Failed to hash password: "+err.Error())
			return
		}
	}

	if err := h.DB.Save(patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to update patient: "+err.Error())
		return
	}

	utils.Success(c, "Patient updated successfully", patient)
}

// DeletePatient removes a patient. Deletion is blocked while the patient
// holds booked future appointments; deactivate instead. When deletion
// proceeds, the patient's appointments and treatments go with it.
func (h *PatientHandler) DeletePatient(c *gin.Context) {
	patient, ok := h.loadPatient(c)
	if !ok {
		return
	}

	hasUpcoming, err := h.Svc.PatientHasUpcomingAppointments(c.Request.Context(), patient.ID)
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	if hasUpcoming {
		utils.Conflict(c, "Patient has upcoming booked appointments; cancel them or set the patient inactive instead")
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		var appointmentIDs []uint
		if err := tx.Model(&models.Appointment{}).Where("patient_id = ?", patient.ID).Pluck("id", &appointmentIDs).Error; err != nil {
			return err
		}
		if len(appointmentIDs) > 0 {
			if err := tx.Where("appointment_id IN ?", appointmentIDs).Delete(&models.Treatment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("patient_id = ?", patient.ID).Delete(&models.Appointment{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(patient).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to delete patient: "+err.Error())
		return
	}

	utils.Success(c, "Patient deleted successfully", nil)
}

func (h *PatientHandler) loadPatient(c *gin.Context) (*models.Patient, bool) {
	var patient models.Patient
	if err := h.DB.First(&patient, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}
	return &patient, true
}
