package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"hospital-admin-server/internal/models"
)

// canManageSchedule allows admins and the doctor who owns the schedule.
func canManageSchedule(actor Principal, doctorID uint) bool {
	return actor.IsAdmin() || actor.IsDoctor(doctorID)
}

// AddScheduleBlock creates a recurring weekly availability block. Blocks with
// start >= end are invalid, and a block may neither duplicate nor overlap an
// existing block for the same doctor and weekday.
func (s *Service) AddScheduleBlock(ctx context.Context, actor Principal, doctorID uint, weekday, startMinute, endMinute int, maxPatients *int) (*models.DoctorSchedule, error) {
	if !canManageSchedule(actor, doctorID) {
		return nil, fmt.Errorf("%w: cannot manage this doctor's schedule", ErrForbidden)
	}
	if weekday < 0 || weekday > 6 {
		return nil, fmt.Errorf("%w: weekday must be in [0,6]", ErrValidation)
	}
	if startMinute < 0 || endMinute > 24*60 || startMinute >= endMinute {
		return nil, fmt.Errorf("%w: block must satisfy 0 <= start < end <= 24:00", ErrValidation)
	}
	if maxPatients != nil && *maxPatients <= 0 {
		return nil, fmt.Errorf("%w: max patients must be positive", ErrValidation)
	}

	var block *models.DoctorSchedule
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireDoctor(tx, doctorID); err != nil {
			return err
		}

		var existing []models.DoctorSchedule
		err := tx.Where("doctor_id = ? AND weekday = ?", doctorID, weekday).Find(&existing).Error
		if err != nil {
			return err
		}
		for _, b := range existing {
			if startMinute < b.EndMinute && b.StartMinute < endMinute {
				return fmt.Errorf("%w: overlaps block %s-%s", ErrValidation,
					models.FormatMinute(b.StartMinute), models.FormatMinute(b.EndMinute))
			}
		}

		block = &models.DoctorSchedule{
			DoctorID:    doctorID,
			Weekday:     weekday,
			StartMinute: startMinute,
			EndMinute:   endMinute,
			MaxPatients: maxPatients,
		}
		if err := tx.Create(block).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: duplicate schedule block", ErrValidation)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return block, nil
}

// RemoveScheduleBlock deletes one of the doctor's weekly blocks.
func (s *Service) RemoveScheduleBlock(ctx context.Context, actor Principal, doctorID, blockID uint) error {
	if !canManageSchedule(actor, doctorID) {
		return fmt.Errorf("%w: cannot manage this doctor's schedule", ErrForbidden)
	}
	res := s.db.WithContext(ctx).
		Where("id = ? AND doctor_id = ?", blockID, doctorID).
		Delete(&models.DoctorSchedule{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: schedule block %d", ErrNotFound, blockID)
	}
	return nil
}

// ListScheduleBlocks returns the doctor's weekly blocks ordered by weekday.
func (s *Service) ListScheduleBlocks(ctx context.Context, doctorID uint) ([]models.DoctorSchedule, error) {
	if err := requireDoctor(s.db.WithContext(ctx), doctorID); err != nil {
		return nil, err
	}
	var blocks []models.DoctorSchedule
	err := s.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("weekday asc, start_minute asc").
		Find(&blocks).Error
	return blocks, err
}

// AddTimeOff records a date-specific exception. Start and end minutes must be
// given together; both nil means the whole day. Existing appointments on the
// date are left untouched: time-off only shapes future availability.
func (s *Service) AddTimeOff(ctx context.Context, actor Principal, doctorID uint, date time.Time, startMinute, endMinute *int, reason string) (*models.DoctorTimeOff, error) {
	if !canManageSchedule(actor, doctorID) {
		return nil, fmt.Errorf("%w: cannot manage this doctor's schedule", ErrForbidden)
	}
	if (startMinute == nil) != (endMinute == nil) {
		return nil, fmt.Errorf("%w: start and end must be given together", ErrValidation)
	}
	if startMinute != nil {
		if *startMinute < 0 || *endMinute > 24*60 || *startMinute >= *endMinute {
			return nil, fmt.Errorf("%w: time-off must satisfy 0 <= start < end <= 24:00", ErrValidation)
		}
	}
	date = dateOf(date)

	var timeOff *models.DoctorTimeOff
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireDoctor(tx, doctorID); err != nil {
			return err
		}

		// The composite unique index treats NULL minutes as distinct, so
		// full-day duplicates need an explicit check.
		dup := tx.Where("doctor_id = ? AND date = ?", doctorID, date)
		if startMinute == nil {
			dup = dup.Where("start_minute IS NULL AND end_minute IS NULL")
		} else {
			dup = dup.Where("start_minute = ? AND end_minute = ?", *startMinute, *endMinute)
		}
		var count int64
		if err := dup.Model(&models.DoctorTimeOff{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: duplicate time-off entry", ErrValidation)
		}

		timeOff = &models.DoctorTimeOff{
			DoctorID:    doctorID,
			Date:        date,
			StartMinute: startMinute,
			EndMinute:   endMinute,
			Reason:      reason,
		}
		if err := tx.Create(timeOff).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: duplicate time-off entry", ErrValidation)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return timeOff, nil
}

// RemoveTimeOff deletes a time-off entry.
func (s *Service) RemoveTimeOff(ctx context.Context, actor Principal, doctorID, timeOffID uint) error {
	if !canManageSchedule(actor, doctorID) {
		return fmt.Errorf("%w: cannot manage this doctor's schedule", ErrForbidden)
	}
	res := s.db.WithContext(ctx).
		Where("id = ? AND doctor_id = ?", timeOffID, doctorID).
		Delete(&models.DoctorTimeOff{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: time-off entry %d", ErrNotFound, timeOffID)
	}
	return nil
}

// ListTimeOff returns the doctor's time-off entries ordered by date.
func (s *Service) ListTimeOff(ctx context.Context, doctorID uint) ([]models.DoctorTimeOff, error) {
	if err := requireDoctor(s.db.WithContext(ctx), doctorID); err != nil {
		return nil, err
	}
	var entries []models.DoctorTimeOff
	err := s.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("date asc").
		Find(&entries).Error
	return entries, err
}

func requireDoctor(db *gorm.DB, doctorID uint) error {
	var doctor models.Doctor
	if err := db.First(&doctor, doctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: doctor %d", ErrNotFound, doctorID)
		}
		return err
	}
	return nil
}
