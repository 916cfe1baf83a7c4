package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"hospital-admin-server/internal/scheduling"
	"hospital-admin-server/internal/utils"
)

// respondSchedulingError maps the scheduling error taxonomy onto HTTP
// responses. Every sentinel gets its own user-displayable outcome; only a
// genuinely unknown error becomes a 500.
func respondSchedulingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, scheduling.ErrValidation),
		errors.Is(err, scheduling.ErrInvalidTime):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, scheduling.ErrNotFound):
		utils.NotFound(c, err.Error())
	case errors.Is(err, scheduling.ErrForbidden):
		utils.Forbidden(c, err.Error())
	case errors.Is(err, scheduling.ErrDoctorUnavailable),
		errors.Is(err, scheduling.ErrPatientNotEligible):
		utils.UnprocessableEntity(c, err.Error())
	case errors.Is(err, scheduling.ErrSlotUnavailable),
		errors.Is(err, scheduling.ErrSlotConflict),
		errors.Is(err, scheduling.ErrInvalidTransition):
		utils.Conflict(c, err.Error())
	default:
		utils.InternalServerError(c, "Unexpected error: "+err.Error())
	}
}
