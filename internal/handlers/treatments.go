package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-admin-server/internal/middleware"
	"hospital-admin-server/internal/models"
	"hospital-admin-server/internal/scheduling"
	"hospital-admin-server/internal/utils"
)

// TreatmentHandler handles treatment recording and history requests.
type TreatmentHandler struct {
	DB  *gorm.DB
	Svc *scheduling.Service
}

// NewTreatmentHandler creates a new TreatmentHandler.
func NewTreatmentHandler(db *gorm.DB, svc *scheduling.Service) *TreatmentHandler {
	return &TreatmentHandler{DB: db, Svc: svc}
}

// RecordTreatmentRequest represents the request body for recording or editing
// the treatment attached to an appointment.
type RecordTreatmentRequest struct {
	Diagnosis    string `json:"diagnosis" binding:"required"`
	Prescription string `json:"prescription"`
	Notes        string `json:"notes"`
}

// RecordTreatment upserts the treatment for an appointment and completes it.
// Only the appointment's doctor may call this.
func (h *TreatmentHandler) RecordTreatment(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.Unauthorized(c, "Not authenticated")
		return
	}

	appointmentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid appointment ID")
		return
	}

	var req RecordTreatmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	treatment, err := h.Svc.RecordTreatment(c.Request.Context(), principal, uint(appointmentID), req.Diagnosis, req.Prescription, req.Notes)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Treatment details saved", treatment)
}

// GetTreatmentsForPatient returns a patient's treatment history. Patients see
// their own history, doctors see the treatments from their own appointments
// with the patient, admins see everything.
func (h *TreatmentHandler) GetTreatmentsForPatient(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.Unauthorized(c, "Not authenticated")
		return
	}

	patientID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid patient ID")
		return
	}

	query := h.DB.
		Joins("JOIN appointments ON appointments.id = treatments.appointment_id").
		Where("appointments.patient_id = ?", uint(patientID)).
		Order("treatments.treatment_date desc")

	switch {
	case principal.IsAdmin(), principal.IsPatient(uint(patientID)):
	case principal.Role == models.RoleDoctor:
		query = query.Where("appointments.doctor_id = ?", principal.ID)
	default:
		utils.Forbidden(c, "You are not authorized to view this treatment history")
		return
	}

	var treatments []models.Treatment
	if err := query.Find(&treatments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch treatments: "+err.Error())
		return
	}

	utils.Success(c, "Treatments fetched successfully", treatments)
}
