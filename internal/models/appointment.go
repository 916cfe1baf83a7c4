package models

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusBooked    AppointmentStatus = "booked"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Terminal reports whether no further status transition is allowed.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Appointment represents a scheduled consultation between a patient and a
// doctor. SlotStart mirrors StartTime while the appointment blocks its slot
// and is set to NULL on cancellation: the composite unique index
// (doctor_id, slot_start) therefore rejects double-booking at the storage
// layer while letting cancelled slots be booked again.
type Appointment struct {
	BaseModel
	PatientID uint              `gorm:"not null;index" json:"patientId"`
	DoctorID  uint              `gorm:"not null;uniqueIndex:uniq_doctor_slot" json:"doctorId"`
	StartTime time.Time         `gorm:"not null;index" json:"startTime"`
	EndTime   time.Time         `gorm:"not null" json:"endTime"`
	SlotStart *time.Time        `gorm:"uniqueIndex:uniq_doctor_slot" json:"-"`
	Status    AppointmentStatus `gorm:"size:20;default:'booked'" json:"status"`
	Reason    string            `gorm:"type:text;not null" json:"reason"`

	// Relations
	Patient   Patient    `gorm:"foreignKey:PatientID" json:"-"`
	Doctor    Doctor     `gorm:"foreignKey:DoctorID" json:"-"`
	Treatment *Treatment `gorm:"foreignKey:AppointmentID;constraint:OnDelete:CASCADE" json:"treatment,omitempty"`
}

// Treatment holds the clinical outcome attached to a completed appointment.
// One row per appointment; saving it is what completes the appointment.
type Treatment struct {
	BaseModel
	AppointmentID uint      `gorm:"not null;uniqueIndex" json:"appointmentId"`
	Diagnosis     string    `gorm:"type:text;not null" json:"diagnosis"`
	Prescription  string    `gorm:"type:text" json:"prescription,omitempty"`
	Notes         string    `gorm:"type:text" json:"notes,omitempty"`
	TreatmentDate time.Time `gorm:"not null" json:"treatmentDate"`
}
