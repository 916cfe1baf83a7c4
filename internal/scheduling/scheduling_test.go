package scheduling

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"hospital-admin-server/internal/models"
)

// testNow is the pinned clock for the suite: Saturday 2025-03-01 12:00.
// 2025-03-10 and 2025-03-17 are Mondays.
var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.Local)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	// A fresh in-memory database exists per connection; keep the pool at
	// one so every query sees the migrated schema.
	sqlDB.SetMaxOpenConns(1)

	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	svc := NewService(db, zerolog.Nop()).WithClock(func() time.Time { return testNow })
	return svc, db
}

func seedDepartment(t *testing.T, db *gorm.DB) *models.Department {
	t.Helper()
	department := &models.Department{Name: "Cardiology"}
	if err := db.Create(department).Error; err != nil {
		t.Fatalf("seed department: %v", err)
	}
	return department
}

func seedDoctor(t *testing.T, db *gorm.DB, email string, status models.UserStatus) *models.Doctor {
	t.Helper()
	doctor := &models.Doctor{
		Name:         "Dr. " + email,
		DepartmentID: seedDepartment(t, db).ID,
		Status:       status,
	}
	doctor.Email = email
	if err := doctor.SetPassword("doctor-password"); err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := db.Create(doctor).Error; err != nil {
		t.Fatalf("seed doctor: %v", err)
	}
	return doctor
}

func seedPatient(t *testing.T, db *gorm.DB, email string, status models.UserStatus) *models.Patient {
	t.Helper()
	age := 42
	patient := &models.Patient{
		Name:   "Patient " + email,
		Age:    &age,
		Gender: "female",
		Phone:  "555-0100",
		Status: status,
	}
	patient.Email = email
	if err := patient.SetPassword("patient-password"); err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := db.Create(patient).Error; err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	return patient
}

// seedBlock adds a weekly schedule block directly, bypassing the service.
func seedBlock(t *testing.T, db *gorm.DB, doctorID uint, weekday, startMinute, endMinute int) {
	t.Helper()
	block := &models.DoctorSchedule{
		DoctorID:    doctorID,
		Weekday:     weekday,
		StartMinute: startMinute,
		EndMinute:   endMinute,
	}
	if err := db.Create(block).Error; err != nil {
		t.Fatalf("seed schedule block: %v", err)
	}
}

func adminPrincipal() Principal { return Principal{ID: 1, Role: models.RoleAdmin} }

func doctorPrincipal(d *models.Doctor) Principal {
	return Principal{ID: d.ID, Role: models.RoleDoctor}
}

func patientPrincipal(p *models.Patient) Principal {
	return Principal{ID: p.ID, Role: models.RolePatient}
}

func minuteRef(m int) *int { return &m }
