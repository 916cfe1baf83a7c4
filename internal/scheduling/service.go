package scheduling

import (
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// AppointmentDuration is the fixed length of every appointment.
const AppointmentDuration = 50 * time.Minute

// Service implements the scheduling core: availability computation, booking,
// the appointment status state machine and treatment recording. All writes go
// through transactions on the shared store; the unique index on
// (doctor_id, slot_start) is the last line of defense against racing
// bookings.
type Service struct {
	db  *gorm.DB
	log zerolog.Logger
	now func() time.Time
}

// NewService creates a scheduling service.
func NewService(db *gorm.DB, log zerolog.Logger) *Service {
	return &Service{
		db:  db,
		log: log.With().Str("component", "scheduling").Logger(),
		now: time.Now,
	}
}

// WithClock overrides the service clock. Tests use it to pin "now".
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}
