package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-admin-server/internal/middleware"
	"hospital-admin-server/internal/models"
	"hospital-admin-server/internal/scheduling"
	"hospital-admin-server/internal/utils"
)

// ScheduleHandler handles doctor schedule and time-off requests.
type ScheduleHandler struct {
	DB  *gorm.DB
	Svc *scheduling.Service
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(db *gorm.DB, svc *scheduling.Service) *ScheduleHandler {
	return &ScheduleHandler{DB: db, Svc: svc}
}

// AddScheduleBlockRequest represents the request body for a weekly block.
// Clock times use HH:MM; weekday follows time.Weekday (Sunday = 0).
type AddScheduleBlockRequest struct {
	Weekday     *int   `json:"weekday" binding:"required,gte=0,lte=6"`
	StartTime   string `json:"startTime" binding:"required"`
	EndTime     string `json:"endTime" binding:"required"`
	MaxPatients *int   `json:"maxPatients" binding:"omitempty,gt=0"`
}

// AddScheduleBlock creates a recurring weekly availability block for the
// doctor in the path.
func (h *ScheduleHandler) AddScheduleBlock(c *gin.Context) {
	principal, doctorID, ok := h.principalAndDoctor(c)
	if !ok {
		return
	}

	var req AddScheduleBlockRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	startMinute, err := models.ParseMinute(req.StartTime)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}
	endMinute, err := models.ParseMinute(req.EndTime)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	block, err := h.Svc.AddScheduleBlock(c.Request.Context(), principal, doctorID, *req.Weekday, startMinute, endMinute, req.MaxPatients)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Created(c, "Schedule block added successfully", block)
}

// ListScheduleBlocks returns the doctor's weekly blocks.
func (h *ScheduleHandler) ListScheduleBlocks(c *gin.Context) {
	_, doctorID, ok := h.principalAndDoctor(c)
	if !ok {
		return
	}

	blocks, err := h.Svc.ListScheduleBlocks(c.Request.Context(), doctorID)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Schedule fetched successfully", blocks)
}

// RemoveScheduleBlock deletes a weekly block.
func (h *ScheduleHandler) RemoveScheduleBlock(c *gin.Context) {
	principal, doctorID, ok := h.principalAndDoctor(c)
	if !ok {
		return
	}

	blockID, err := strconv.ParseUint(c.Param("blockId"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid schedule block ID")
		return
	}

	if err := h.Svc.RemoveScheduleBlock(c.Request.Context(), principal, doctorID, uint(blockID)); err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Schedule block removed successfully", nil)
}

// AddTimeOffRequest represents the request body for a time-off entry.
// Omitting both clock times takes the entire day off.
type AddTimeOffRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Reason    string `json:"reason"`
}

// AddTimeOff records a date-specific exception for the doctor in the path.
func (h *ScheduleHandler) AddTimeOff(c *gin.Context) {
	principal, doctorID, ok := h.principalAndDoctor(c)
	if !ok {
		return
	}

	var req AddTimeOffRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
	if err != nil {
		utils.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
		return
	}

	var startMinute, endMinute *int
	if req.StartTime != "" {
		m, err := models.ParseMinute(req.StartTime)
		if err != nil {
			utils.BadRequest(c, err.Error())
			return
		}
		startMinute = &m
	}
	if req.EndTime != "" {
		m, err := models.ParseMinute(req.EndTime)
		if err != nil {
			utils.BadRequest(c, err.Error())
			return
		}
		endMinute = &m
	}

	timeOff, err := h.Svc.AddTimeOff(c.Request.Context(), principal, doctorID, date, startMinute, endMinute, req.Reason)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Created(c, "Time-off added successfully", timeOff)
}

// ListTimeOff returns the doctor's time-off entries.
func (h *ScheduleHandler) ListTimeOff(c *gin.Context) {
	_, doctorID, ok := h.principalAndDoctor(c)
	if !ok {
		return
	}

	entries, err := h.Svc.ListTimeOff(c.Request.Context(), doctorID)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Time-off fetched successfully", entries)
}

// RemoveTimeOff deletes a time-off entry.
func (h *ScheduleHandler) RemoveTimeOff(c *gin.Context) {
	principal, doctorID, ok := h.principalAndDoctor(c)
	if !ok {
		return
	}

	timeOffID, err := strconv.ParseUint(c.Param("timeOffId"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid time-off ID")
		return
	}

	if err := h.Svc.RemoveTimeOff(c.Request.Context(), principal, doctorID, uint(timeOffID)); err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Time-off removed successfully", nil)
}

func (h *ScheduleHandler) principalAndDoctor(c *gin.Context) (scheduling.Principal, uint, bool) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.Unauthorized(c, "Not authenticated")
		return scheduling.Principal{}, 0, false
	}
	doctorID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid doctor ID")
		return scheduling.Principal{}, 0, false
	}
	return principal, uint(doctorID), true
}
