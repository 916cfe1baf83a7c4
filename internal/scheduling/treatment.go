package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"hospital-admin-server/internal/models"
)

// RecordTreatment upserts the single treatment row for an appointment and
// completes the appointment in the same transaction; attaching the treatment
// is what drives the booked -> completed transition, not a separate step.
// Only the owning doctor may call it. Calling it again on the completed
// appointment edits the existing treatment and refreshes its date; a
// cancelled appointment is refused.
func (s *Service) RecordTreatment(ctx context.Context, actor Principal, appointmentID uint, diagnosis, prescription, notes string) (*models.Treatment, error) {
	diagnosis = strings.TrimSpace(diagnosis)

	var treatment models.Treatment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var appointment models.Appointment
		if err := tx.First(&appointment, appointmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: appointment %d", ErrNotFound, appointmentID)
			}
			return err
		}

		if !actor.IsDoctor(appointment.DoctorID) {
			return fmt.Errorf("%w: only the appointment's doctor may record treatment", ErrForbidden)
		}
		if diagnosis == "" {
			return fmt.Errorf("%w: diagnosis is required", ErrValidation)
		}
		if appointment.Status == models.StatusCancelled {
			return fmt.Errorf("%w: appointment is cancelled", ErrInvalidTransition)
		}

		err := tx.Where("appointment_id = ?", appointmentID).First(&treatment).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			treatment = models.Treatment{AppointmentID: appointmentID}
		case err != nil:
			return err
		}

		treatment.Diagnosis = diagnosis
		treatment.Prescription = strings.TrimSpace(prescription)
		treatment.Notes = strings.TrimSpace(notes)
		treatment.TreatmentDate = s.now()
		if err := tx.Save(&treatment).Error; err != nil {
			return err
		}

		if appointment.Status != models.StatusCompleted {
			appointment.Status = models.StatusCompleted
			if err := tx.Model(&appointment).Update("status", models.StatusCompleted).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Uint("appointment_id", appointmentID).
		Uint("treatment_id", treatment.ID).
		Uint("doctor_id", actor.ID).
		Msg("treatment recorded")
	return &treatment, nil
}
