package models

import (
	"fmt"
	"time"
)

// Department groups doctors by specialty
type Department struct {
	BaseModel
	Name        string `gorm:"uniqueIndex;size:120;not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	// Relations
	Doctors []Doctor `gorm:"foreignKey:DepartmentID" json:"-"`
}

// Doctor represents a doctor account and profile
type Doctor struct {
	BaseModel
	Name         string     `gorm:"size:80;not null" json:"name"`
	Phone        string     `gorm:"size:20" json:"phone,omitempty"`
	DepartmentID uint       `gorm:"not null;index" json:"departmentId"`
	Status       UserStatus `gorm:"size:20;default:'active'" json:"status"`
	Bio          string     `gorm:"type:text" json:"bio,omitempty"`
	YearsOfExperience *int  `json:"yearsOfExperience,omitempty"`
	Credential

	// Relations
	Department   Department       `gorm:"foreignKey:DepartmentID" json:"-"`
	Schedules    []DoctorSchedule `gorm:"foreignKey:DoctorID" json:"-"`
	TimeOff      []DoctorTimeOff  `gorm:"foreignKey:DoctorID" json:"-"`
	Appointments []Appointment    `gorm:"foreignKey:DoctorID" json:"-"`
}

// IsActive reports whether the doctor may authenticate or accept bookings.
func (d *Doctor) IsActive() bool {
	return d.Status == UserActive
}

// DoctorSchedule is a recurring weekly availability block. Times of day are
// stored as minutes since midnight; weekday follows time.Weekday (Sunday = 0).
type DoctorSchedule struct {
	BaseModel
	DoctorID    uint `gorm:"not null;uniqueIndex:uniq_doctor_schedule_block" json:"doctorId"`
	Weekday     int  `gorm:"not null;uniqueIndex:uniq_doctor_schedule_block" json:"weekday"`
	StartMinute int  `gorm:"not null;uniqueIndex:uniq_doctor_schedule_block" json:"startMinute"`
	EndMinute   int  `gorm:"not null;uniqueIndex:uniq_doctor_schedule_block" json:"endMinute"`
	MaxPatients *int `json:"maxPatients,omitempty"`

	Doctor Doctor `gorm:"foreignKey:DoctorID" json:"-"`
}

// DoctorTimeOff is a date-specific exception to the weekly schedule. A row
// with nil start and end minutes takes the whole day off.
type DoctorTimeOff struct {
	BaseModel
	DoctorID    uint      `gorm:"not null;uniqueIndex:uniq_doctor_time_off" json:"doctorId"`
	Date        time.Time `gorm:"not null;uniqueIndex:uniq_doctor_time_off" json:"date"`
	StartMinute *int      `gorm:"uniqueIndex:uniq_doctor_time_off" json:"startMinute,omitempty"`
	EndMinute   *int      `gorm:"uniqueIndex:uniq_doctor_time_off" json:"endMinute,omitempty"`
	Reason      string    `gorm:"size:200" json:"reason,omitempty"`

	Doctor Doctor `gorm:"foreignKey:DoctorID" json:"-"`
}

// AllDay reports whether the time-off covers the entire date.
func (t *DoctorTimeOff) AllDay() bool {
	return t.StartMinute == nil && t.EndMinute == nil
}

// FormatMinute renders minutes since midnight as HH:MM.
func FormatMinute(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// ParseMinute parses an HH:MM clock string into minutes since midnight.
func ParseMinute(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || h*60+m > 24*60 {
		return 0, fmt.Errorf("clock time %q out of range", s)
	}
	return h*60 + m, nil
}
