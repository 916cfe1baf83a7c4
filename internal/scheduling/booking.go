package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"hospital-admin-server/internal/models"
)

// Book validates a booking request and atomically inserts the appointment.
// Preconditions are checked in order, first failure wins: active doctor,
// active patient, strictly-future start, start inside the doctor's declared
// hours, and no non-cancelled appointment already holding the slot. The
// conflict check and the insert run in one transaction, and the unique index
// on (doctor_id, slot_start) catches any race that slips past the pre-check.
func (s *Service) Book(ctx context.Context, actor Principal, patientID, doctorID uint, start time.Time, reason string) (*models.Appointment, error) {
	switch {
	case actor.IsAdmin(), actor.IsPatient(patientID):
	case actor.Role == models.RolePatient:
		return nil, fmt.Errorf("%w: patients can only book for themselves", ErrForbidden)
	default:
		return nil, fmt.Errorf("%w: role %s cannot book appointments", ErrForbidden, actor.Role)
	}
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrValidation)
	}

	var appointment *models.Appointment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doctor models.Doctor
		if err := tx.First(&doctor, doctorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: doctor %d", ErrDoctorUnavailable, doctorID)
			}
			return err
		}
		if !doctor.IsActive() {
			return fmt.Errorf("%w: doctor %d is %s", ErrDoctorUnavailable, doctorID, doctor.Status)
		}

		var patient models.Patient
		if err := tx.First(&patient, patientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: patient %d", ErrPatientNotEligible, patientID)
			}
			return err
		}
		if !patient.IsActive() {
			return fmt.Errorf("%w: patient %d is %s", ErrPatientNotEligible, patientID, patient.Status)
		}

		if !start.After(s.now()) {
			return fmt.Errorf("%w: appointment time must be in the future", ErrInvalidTime)
		}

		end := start.Add(AppointmentDuration)
		slot := Interval{Start: start, End: end}

		working, err := s.workingIntervals(tx, doctorID, start)
		if err != nil {
			return err
		}
		inHours := false
		for _, iv := range working {
			if iv.Contains(slot) {
				inHours = true
				break
			}
		}
		if !inHours {
			return fmt.Errorf("%w: %s is outside the doctor's hours", ErrSlotUnavailable, start.Format("2006-01-02 15:04"))
		}

		var clashes []models.Appointment
		err = tx.
			Where("doctor_id = ? AND status <> ?", doctorID, models.StatusCancelled).
			Where("start_time < ? AND end_time > ?", end, start).
			Find(&clashes).Error
		if err != nil {
			return err
		}
		for _, clash := range clashes {
			if clash.StartTime.Equal(start) {
				return fmt.Errorf("%w: doctor %d at %s", ErrSlotConflict, doctorID, start.Format("2006-01-02 15:04"))
			}
		}
		if len(clashes) > 0 {
			return fmt.Errorf("%w: overlaps an existing appointment", ErrSlotUnavailable)
		}

		appointment = &models.Appointment{
			PatientID: patientID,
			DoctorID:  doctorID,
			StartTime: start,
			EndTime:   end,
			SlotStart: &start,
			Status:    models.StatusBooked,
			Reason:    strings.TrimSpace(reason),
		}
		if err := tx.Create(appointment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Concurrent booking won the slot between our check and
				// the insert.
				return fmt.Errorf("%w: doctor %d at %s", ErrSlotConflict, doctorID, start.Format("2006-01-02 15:04"))
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Uint("appointment_id", appointment.ID).
		Uint("doctor_id", doctorID).
		Uint("patient_id", patientID).
		Time("start", start).
		Msg("appointment booked")
	return appointment, nil
}

// Cancel moves a booked appointment to cancelled and releases its slot.
// Terminal appointments are refused with ErrInvalidTransition. The owning
// patient, the owning doctor, or an admin may cancel.
func (s *Service) Cancel(ctx context.Context, actor Principal, appointmentID uint) (*models.Appointment, error) {
	var appointment models.Appointment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&appointment, appointmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: appointment %d", ErrNotFound, appointmentID)
			}
			return err
		}

		if !actor.IsAdmin() && !actor.IsDoctor(appointment.DoctorID) && !actor.IsPatient(appointment.PatientID) {
			return fmt.Errorf("%w: not a party to appointment %d", ErrForbidden, appointmentID)
		}

		if appointment.Status != models.StatusBooked {
			return fmt.Errorf("%w: appointment is already %s", ErrInvalidTransition, appointment.Status)
		}

		appointment.Status = models.StatusCancelled
		appointment.SlotStart = nil
		// Select forces the NULL write; gorm's Save skips zero-valued fields
		// on struct updates otherwise.
		return tx.Model(&appointment).
			Select("status", "slot_start").
			Updates(map[string]interface{}{"status": models.StatusCancelled, "slot_start": nil}).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Uint("appointment_id", appointment.ID).
		Uint("actor_id", actor.ID).
		Str("actor_role", string(actor.Role)).
		Msg("appointment cancelled")
	return &appointment, nil
}

// DoctorHasUpcomingAppointments reports whether the doctor still holds booked
// future appointments. Admin handlers use it to block hard deletion; the
// supported path for such doctors is deactivation.
func (s *Service) DoctorHasUpcomingAppointments(ctx context.Context, doctorID uint) (bool, error) {
	return s.hasUpcoming(ctx, "doctor_id", doctorID)
}

// PatientHasUpcomingAppointments is the patient-side deletion guard.
func (s *Service) PatientHasUpcomingAppointments(ctx context.Context, patientID uint) (bool, error) {
	return s.hasUpcoming(ctx, "patient_id", patientID)
}

func (s *Service) hasUpcoming(ctx context.Context, column string, id uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where(column+" = ? AND status = ? AND start_time > ?", id, models.StatusBooked, s.now()).
		Count(&count).Error
	return count > 0, err
}
