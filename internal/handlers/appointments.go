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

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	DB  *gorm.DB
	Svc *scheduling.Service
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB, svc *scheduling.Service) *AppointmentHandler {
	return &AppointmentHandler{DB: db, Svc: svc}
}

// CreateAppointmentRequest represents the request body for booking an
// appointment. PatientID may be omitted by patients booking for themselves;
// admins must supply it.
type CreateAppointmentRequest struct {
	PatientID uint      `json:"patientId"`
	DoctorID  uint      `json:"doctorId" binding:"required"`
	StartTime time.Time `json:"startTime" binding:"required"`
	Reason    string    `json:"reason" binding:"required"`
}

// CreateAppointment books an appointment through the scheduling service.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.Unauthorized(c, "Not authenticated")
		return
	}

	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	patientID := req.PatientID
	if principal.Role == models.RolePatient {
		if patientID != 0 && patientID != principal.ID {
			utils.Forbidden(c, "Patients can only book appointments for themselves.")
			return
		}
		patientID = principal.ID
	}
	if patientID == 0 {
		utils.BadRequest(c, "patientId is required")
		return
	}

	appointment, err := h.Svc.Book(c.Request.Context(), principal, patientID, req.DoctorID, req.StartTime, req.Reason)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Created(c, "Appointment booked successfully", appointment)
}

// GetAppointmentsForUser fetches appointments scoped by role: patients see
// their own, doctors see their queue, admins see everything. The optional
// scope=upcoming filter keeps only future booked appointments.
func (h *AppointmentHandler) GetAppointmentsForUser(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.Unauthorized(c, "Not authenticated")
		return
	}

	query := h.DB.Order("start_time asc")
	switch principal.Role {
	case models.RolePatient:
		query = query.Where("patient_id = ?", principal.ID)
	case models.RoleDoctor:
		query = query.Where("doctor_id = ?", principal.ID)
	case models.RoleAdmin:
		// no scoping
	default:
		utils.Forbidden(c, "User role not permitted to view appointments")
		return
	}

	switch c.Query("scope") {
	case "upcoming":
		query = query.Where("status = ? AND start_time >= ?", models.StatusBooked, time.Now())
	case "past":
		query = query.Where("status IN ?", []models.AppointmentStatus{models.StatusCompleted, models.StatusCancelled}).
			Order("start_time desc")
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Success(c, "Appointments fetched successfully", appointments)
}

// GetAppointmentByID fetches a single appointment. Accessible by the involved
// patient, the involved doctor, or an admin.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.Unauthorized(c, "Not authenticated")
		return
	}

	var appointment models.Appointment
	if err := h.DB.Preload("Treatment").First(&appointment, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if !principal.IsAdmin() && !principal.IsDoctor(appointment.DoctorID) && !principal.IsPatient(appointment.PatientID) {
		utils.Forbidden(c, "You are not authorized to view this appointment")
		return
	}

	utils.Success(c, "Appointment fetched successfully", appointment)
}

// CancelAppointment moves a booked appointment to cancelled and frees its
// slot for re-booking.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
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

	appointment, err := h.Svc.Cancel(c.Request.Context(), principal, uint(appointmentID))
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Appointment cancelled successfully", appointment)
}
