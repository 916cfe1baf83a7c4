package scheduling

import "errors"

// Sentinel errors for every distinct scheduling outcome. Callers classify
// results with errors.Is; handlers map each one to its own HTTP status so no
// failure is ever surfaced as a generic 500.
var (
	// ErrValidation indicates malformed or missing input.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates a referenced entity is absent.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the actor lacks rights over the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrDoctorUnavailable indicates the doctor is missing, inactive or
	// blacklisted.
	ErrDoctorUnavailable = errors.New("doctor unavailable")

	// ErrPatientNotEligible indicates the patient is missing, inactive or
	// blacklisted.
	ErrPatientNotEligible = errors.New("patient not eligible")

	// ErrInvalidTime indicates a past or malformed timestamp.
	ErrInvalidTime = errors.New("invalid appointment time")

	// ErrSlotUnavailable indicates the requested time is outside the
	// doctor's free intervals.
	ErrSlotUnavailable = errors.New("slot unavailable")

	// ErrSlotConflict indicates another appointment already occupies the
	// requested doctor/start slot.
	ErrSlotConflict = errors.New("slot already booked")

	// ErrInvalidTransition indicates an illegal appointment status change.
	ErrInvalidTransition = errors.New("invalid status transition")
)
