package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"hospital-admin-server/internal/models"
)

// DayAvailability lists a doctor's free intervals for a single date.
type DayAvailability struct {
	Date time.Time  `json:"date"`
	Free []Interval `json:"free"`
}

// ComputeAvailability derives the doctor's open intervals for every date in
// [from, to]. Each date starts from that weekday's schedule blocks, subtracts
// time-off (a full-day entry clears the date, a partial one may split a block
// in two) and subtracts intervals held by non-cancelled appointments. The
// result is recomputed on every call; nothing is cached.
func (s *Service) ComputeAvailability(ctx context.Context, doctorID uint, from, to time.Time) ([]DayAvailability, error) {
	return s.computeAvailability(s.db.WithContext(ctx), doctorID, from, to)
}

func (s *Service) computeAvailability(db *gorm.DB, doctorID uint, from, to time.Time) ([]DayAvailability, error) {
	fromDate, toDate := dateOf(from), dateOf(to)
	if toDate.Before(fromDate) {
		return nil, fmt.Errorf("%w: date range end precedes start", ErrValidation)
	}

	var doctor models.Doctor
	if err := db.First(&doctor, doctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: doctor %d", ErrNotFound, doctorID)
		}
		return nil, err
	}

	var appointments []models.Appointment
	err := db.
		Where("doctor_id = ? AND status <> ?", doctorID, models.StatusCancelled).
		Where("start_time < ? AND end_time > ?", toDate.AddDate(0, 0, 1), fromDate).
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}

	var days []DayAvailability
	for date := fromDate; !date.After(toDate); date = date.AddDate(0, 0, 1) {
		free, err := s.workingIntervals(db, doctorID, date)
		if err != nil {
			return nil, err
		}
		for _, appt := range appointments {
			free = subtractAll(free, Interval{Start: appt.StartTime, End: appt.EndTime})
		}
		days = append(days, DayAvailability{Date: date, Free: free})
	}
	return days, nil
}

// workingIntervals returns the doctor's declared hours on the given date:
// the weekday's schedule blocks minus any time-off. Appointments are not
// subtracted here; booking distinguishes "outside declared hours" from
// "slot taken".
func (s *Service) workingIntervals(db *gorm.DB, doctorID uint, date time.Time) ([]Interval, error) {
	date = dateOf(date)

	var blocks []models.DoctorSchedule
	err := db.
		Where("doctor_id = ? AND weekday = ?", doctorID, int(date.Weekday())).
		Order("start_minute asc").
		Find(&blocks).Error
	if err != nil {
		return nil, err
	}

	free := make([]Interval, 0, len(blocks))
	for _, b := range blocks {
		free = append(free, Interval{Start: atMinute(date, b.StartMinute), End: atMinute(date, b.EndMinute)})
	}
	if len(free) == 0 {
		return free, nil
	}

	var timeOff []models.DoctorTimeOff
	if err := db.Where("doctor_id = ? AND date = ?", doctorID, date).Find(&timeOff).Error; err != nil {
		return nil, err
	}
	for _, off := range timeOff {
		if off.AllDay() {
			return nil, nil
		}
		cut := Interval{Start: atMinute(date, *off.StartMinute), End: atMinute(date, *off.EndMinute)}
		free = subtractAll(free, cut)
	}
	return free, nil
}
