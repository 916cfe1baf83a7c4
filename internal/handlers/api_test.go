package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hospital-admin-server/internal/config"
	"hospital-admin-server/internal/models"
	"hospital-admin-server/internal/routes"
	"hospital-admin-server/internal/scheduling"
	"hospital-admin-server/internal/utils"
)

var apiTestNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.Local)

type apiFixture struct {
	router *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, models.Migrate(db))

	cfg := &config.Config{
		JWTSecret:                 "test-access-secret",
		JWTRefreshSecret:          "test-refresh-secret",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 168,
	}

	svc := scheduling.NewService(db, zerolog.Nop()).
		WithClock(func() time.Time { return apiTestNow })

	router := gin.New()
	routes.SetupRoutes(router, db, svc, cfg)
	return &apiFixture{router: router, db: db, cfg: cfg}
}

func (f *apiFixture) seedDoctor(t *testing.T) *models.Doctor {
	t.Helper()
	department := &models.Department{Name: "Cardiology"}
	require.NoError(t, f.db.Create(department).Error)

	doctor := &models.Doctor{
		Name:         "Dr. Reyes",
		DepartmentID: department.ID,
		Status:       models.UserActive,
	}
	doctor.Email = "reyes@hospital.test"
	require.NoError(t, doctor.SetPassword("doctor-password"))
	require.NoError(t, f.db.Create(doctor).Error)

	// Mondays 09:00-13:00.
	require.NoError(t, f.db.Create(&models.DoctorSchedule{
		DoctorID:    doctor.ID,
		Weekday:     int(time.Monday),
		StartMinute: 9 * 60,
		EndMinute:   13 * 60,
	}).Error)
	return doctor
}

func (f *apiFixture) seedPatient(t *testing.T, email string) *models.Patient {
	t.Helper()
	age := 42
	patient := &models.Patient{
		Name:   "Patient " + email,
		Age:    &age,
		Gender: "female",
		Phone:  "555-0100",
		Status: models.UserActive,
	}
	patient.Email = email
	require.NoError(t, patient.SetPassword("patient-password"))
	require.NoError(t, f.db.Create(patient).Error)
	return patient
}

func (f *apiFixture) token(t *testing.T, userID uint, role models.Role) string {
	t.Helper()
	access, _, err := utils.GenerateTokens(userID, role, f.cfg)
	require.NoError(t, err)
	return access
}

func (f *apiFixture) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func TestBookingFlowOverHTTP(t *testing.T) {
	f := newAPIFixture(t)
	doctor := f.seedDoctor(t)
	patient := f.seedPatient(t, "ana@patients.test")
	token := f.token(t, patient.ID, models.RolePatient)
	slot := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)

	w := f.request(t, http.MethodPost, "/api/v1/appointments", token, gin.H{
		"doctorId":  doctor.ID,
		"startTime": slot.Format(time.RFC3339),
		"reason":    "chest pain",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var appointment models.Appointment
	decodeData(t, w, &appointment)
	assert.Equal(t, patient.ID, appointment.PatientID)
	assert.Equal(t, models.StatusBooked, appointment.Status)
	assert.True(t, appointment.EndTime.Equal(slot.Add(50*time.Minute)))

	// The same slot is now a conflict for everyone.
	other := f.seedPatient(t, "ben@patients.test")
	w = f.request(t, http.MethodPost, "/api/v1/appointments", f.token(t, other.ID, models.RolePatient), gin.H{
		"doctorId":  doctor.ID,
		"startTime": slot.Format(time.RFC3339),
		"reason":    "follow-up",
	})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	// Cancelling frees it again.
	w = f.request(t, http.MethodPost, fmt.Sprintf("/api/v1/appointments/%d/cancel", appointment.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.request(t, http.MethodPost, "/api/v1/appointments", f.token(t, other.ID, models.RolePatient), gin.H{
		"doctorId":  doctor.ID,
		"startTime": slot.Format(time.RFC3339),
		"reason":    "follow-up",
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestBookingRequiresAuthentication(t *testing.T) {
	f := newAPIFixture(t)
	doctor := f.seedDoctor(t)

	w := f.request(t, http.MethodPost, "/api/v1/appointments", "", gin.H{
		"doctorId":  doctor.ID,
		"startTime": time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local).Format(time.RFC3339),
		"reason":    "chest pain",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDoctorsCannotBook(t *testing.T) {
	f := newAPIFixture(t)
	doctor := f.seedDoctor(t)

	w := f.request(t, http.MethodPost, "/api/v1/appointments", f.token(t, doctor.ID, models.RoleDoctor), gin.H{
		"doctorId":  doctor.ID,
		"startTime": time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local).Format(time.RFC3339),
		"reason":    "self booking",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBookingOutsideWorkingHoursOverHTTP(t *testing.T) {
	f := newAPIFixture(t)
	doctor := f.seedDoctor(t)
	patient := f.seedPatient(t, "ana@patients.test")

	// Tuesday has no schedule block.
	w := f.request(t, http.MethodPost, "/api/v1/appointments", f.token(t, patient.ID, models.RolePatient), gin.H{
		"doctorId":  doctor.ID,
		"startTime": time.Date(2025, 3, 11, 9, 0, 0, 0, time.Local).Format(time.RFC3339),
		"reason":    "walk-in",
	})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}

func TestLoginAndProfileOverHTTP(t *testing.T) {
	f := newAPIFixture(t)
	patient := f.seedPatient(t, "ana@patients.test")

	w := f.request(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "ana@patients.test",
		"password": "patient-password",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var login struct {
		AccessToken string      `json:"accessToken"`
		UserID      uint        `json:"userId"`
		Role        models.Role `json:"role"`
	}
	decodeData(t, w, &login)
	assert.Equal(t, patient.ID, login.UserID)
	assert.Equal(t, models.RolePatient, login.Role)

	w = f.request(t, http.MethodGet, "/api/v1/auth/profile", login.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.request(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "ana@patients.test",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecordTreatmentOverHTTP(t *testing.T) {
	f := newAPIFixture(t)
	doctor := f.seedDoctor(t)
	patient := f.seedPatient(t, "ana@patients.test")
	slot := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)

	w := f.request(t, http.MethodPost, "/api/v1/appointments", f.token(t, patient.ID, models.RolePatient), gin.H{
		"doctorId":  doctor.ID,
		"startTime": slot.Format(time.RFC3339),
		"reason":    "chest pain",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var appointment models.Appointment
	decodeData(t, w, &appointment)

	treatmentPath := fmt.Sprintf("/api/v1/appointments/%d/treatment", appointment.ID)

	// Only doctors reach the endpoint at all.
	w = f.request(t, http.MethodPut, treatmentPath, f.token(t, patient.ID, models.RolePatient), gin.H{
		"diagnosis": "self-diagnosis",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.request(t, http.MethodPut, treatmentPath, f.token(t, doctor.ID, models.RoleDoctor), gin.H{
		"diagnosis":    "angina",
		"prescription": "nitroglycerin",
		"notes":        "review in two weeks",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.request(t, http.MethodGet, fmt.Sprintf("/api/v1/appointments/%d", appointment.ID), f.token(t, doctor.ID, models.RoleDoctor), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var reloaded models.Appointment
	decodeData(t, w, &reloaded)
	assert.Equal(t, models.StatusCompleted, reloaded.Status)
	require.NotNil(t, reloaded.Treatment)
	assert.Equal(t, "angina", reloaded.Treatment.Diagnosis)
}
