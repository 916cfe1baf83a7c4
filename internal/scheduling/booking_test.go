package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-admin-server/internal/models"
)

// mondaySlot is inside the Monday 09:00-13:00 block the tests seed.
var mondaySlot = time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)

func bookingFixture(t *testing.T) (*Service, *models.Doctor, *models.Patient) {
	t.Helper()
	svc, db := newTestService(t)
	doctor := seedDoctor(t, db, "doctor@hospital.test", models.UserActive)
	patient := seedPatient(t, db, "patient@hospital.test", models.UserActive)
	seedBlock(t, db, doctor.ID, int(time.Monday), 9*60, 13*60)
	return svc, doctor, patient
}

func TestBookCreatesBookedAppointment(t *testing.T) {
	svc, doctor, patient := bookingFixture(t)

	appt, err := svc.Book(context.Background(), patientPrincipal(patient), patient.ID, doctor.ID, mondaySlot, "checkup")
	require.NoError(t, err)

	assert.Equal(t, models.StatusBooked, appt.Status)
	assert.True(t, appt.StartTime.Equal(mondaySlot))
	assert.True(t, appt.EndTime.Equal(mondaySlot.Add(50*time.Minute)))
	require.NotNil(t, appt.SlotStart)
}

// The end-to-end slot lifecycle: booking a held slot fails, cancelling frees
// it, and the freed slot can be booked again.
func TestBookConflictCancelRebook(t *testing.T) {
	svc, doctor, patient := bookingFixture(t)
	ctx := context.Background()

	first, err := svc.Book(ctx, patientPrincipal(patient), patient.ID, doctor.ID, mondaySlot, "checkup")
	require.NoError(t, err)

	_, err = svc.Book(ctx, adminPrincipal(), patient.ID, doctor.ID, mondaySlot, "second opinion")
	assert.ErrorIs(t, err, ErrSlotConflict)

	cancelled, err := svc.Cancel(ctx, patientPrincipal(patient), first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)

	rebooked, err := svc.Book(ctx, adminPrincipal(), patient.ID, doctor.ID, mondaySlot, "follow-up")
	require.NoError(t, err)
	assert.Equal(t, models.StatusBooked, rebooked.Status)
}

func TestBookPastTimeFails(t *testing.T) {
	svc, doctor, patient := bookingFixture(t)

	past := testNow.Add(-time.Hour)
	_, err := svc.Book(context.Background(), adminPrincipal(), patient.ID, doctor.ID, past, "checkup")
	assert.ErrorIs(t, err, ErrInvalidTime)

	_, err = svc.Book(context.Background(), adminPrincipal(), patient.ID, doctor.ID, testNow, "checkup")
	assert.ErrorIs(t, err, ErrInvalidTime, "start exactly at now is not strictly in the future")
}

func TestBookInactiveDoctorFails(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedDoctor(t, db, "inactive@hospital.test", models.UserInactive)
	patient := seedPatient(t, db, "patient@hospital.test", models.UserActive)
	seedBlock(t, db, doctor.ID, int(time.Monday), 9*60, 13*60)

	_, err := svc.Book(context.Background(), adminPrincipal(), patient.ID, doctor.ID, mondaySlot, "checkup")
	assert.ErrorIs(t, err, ErrDoctorUnavailable)
}

func TestBookMissingDoctorFails(t *testing.T) {
	svc, db := newTestService(t)
	patient := seedPatient(t, db, "patient@hospital.test", models.UserActive)

	_, err := svc.Book(context.Background(), adminPrincipal(), patient.ID, 999, mondaySlot, "checkup")
	assert.ErrorIs(t, err, ErrDoctorUnavailable)
}

func TestBookBlacklistedPatientFails(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedDoctor(t, db, "doctor@hospital.test", models.UserActive)
	patient := seedPatient(t, db, "blacklisted@hospital.test", models.UserBlacklisted)
	seedBlock(t, db, doctor.ID, int(time.Monday), 9*60, 13*60)

	_, err := svc.Book(context.Background(), adminPrincipal(), patient.ID, doctor.ID, mondaySlot, "checkup")
	assert.ErrorIs(t, err, ErrPatientNotEligible)
}

// Precondition order is fixed: the doctor gate fires before the patient gate
// and before the time check.
func TestBookPreconditionOrder(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedDoctor(t, db, "inactive@hospital.test", models.UserInactive)
	patient := seedPatient(t, db, "blacklisted@hospital.test", models.UserBlacklisted)

	_, err := svc.Book(context.Background(), adminPrincipal(), patient.ID, doctor.ID, testNow.Add(-time.Hour), "checkup")
	assert.ErrorIs(t, err, ErrDoctorUnavailable)
}

func TestBookOutsideDeclaredHoursFails(t *testing.T) {
	svc, doctor, patient := bookingFixture(t)

	// 14:00 is past the 09:00-13:00 Monday block.
	afternoon := mondaySlot.Add(5 * time.Hour)
	_, err := svc.Book(context.Background(), adminPrincipal(), patient.ID, doctor.ID, afternoon, "checkup")
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// 12:30 starts inside the block but runs past its end.
	edge := mondaySlot.Add(3*time.Hour + 30*time.Minute)
	_, err = svc.Book(context.Background(), adminPrincipal(), patient.ID, doctor.ID, edge, "checkup")
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestBookDuringTimeOffFails(t *testing.T) {
	svc, doctor, patient := bookingFixture(t)
	ctx := context.Background()

	// 09:00-11:00 off on that Monday.
	_, err := svc.AddTimeOff(ctx, doctorPrincipal(doctor), doctor.ID, mondaySlot, minuteRef(9*60), minuteRef(11*60), "clinic rounds")
	require.NoError(t, err)

	_, err = svc.Book(ctx, adminPrincipal(), patient.ID, doctor.ID, mondaySlot, "checkup")
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// 11:00 is back inside the remaining 11:00-13:00 window.
	_, err = svc.Book(ctx, adminPrincipal(), patient.ID, doctor.ID, mondaySlot.Add(2*time.Hour), "checkup")
	assert.NoError(t, err)
}

func TestBookOverlappingDifferentStartFails(t *testing.T) {
	svc, doctor, patient := bookingFixture(t)
	ctx := context.Background()

	_, err := svc.Book(ctx, adminPrincipal(), patient.ID, doctor.ID, mondaySlot, "checkup")
	require.NoError(t, err)

	// 09:30 does not collide on start instant but overlaps 09:00-09:50.
	halfPast := mondaySlot.Add(30 * time.Minute)
	_, err = svc.Book(ctx, adminPrincipal(), patient.ID, doctor.ID, halfPast, "checkup")
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestBookAuthorization(t *testing.T) {
	svc, doctor, patient := bookingFixture(t)
	ctx := context.Background()

	other := Principal{ID: patient.ID + 1, Role: models.RolePatient}
	_, err := svc.Book(ctx, other, patient.ID, doctor.ID, mondaySlot, "checkup")
	assert.ErrorIs(t, err, ErrForbidden, "patients cannot book for others")

	_, err = svc.Book(ctx, doctorPrincipal(doctor), patient.ID, doctor.ID, mondaySlot, "checkup")
	assert.ErrorIs(t, err, ErrForbidden, "doctors do not book appointments")
}

func TestBookEmptyReasonFails(t *testing.T) {
	svc, doctor, patient := bookingFixture(t)

	_, err := svc.Book(context.Background(), adminPrincipal(), patient.ID, doctor.ID, mondaySlot, "   ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCancelUnknownAppointment(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Cancel(context.Background(), adminPrincipal(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelForbiddenForStrangers(t *testing.T) {
	svc, doctor, patient := bookingFixture(t)
	ctx := context.Background()

	appt, err := svc.Book(ctx, patientPrincipal(patient), patient.ID, doctor.ID, mondaySlot, "checkup")
	require.NoError(t, err)

	stranger := Principal{ID: patient.ID + 1, Role: models.RolePatient}
	_, err = svc.Cancel(ctx, stranger, appt.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestTerminalStatesRejectFurtherTransitions(t *testing.T) {
	svc, doctor, patient := bookingFixture(t)
	ctx := context.Background()

	appt, err := svc.Book(ctx, patientPrincipal(patient), patient.ID, doctor.ID, mondaySlot, "checkup")
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, patientPrincipal(patient), appt.ID)
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, patientPrincipal(patient), appt.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition, "cancel is refused on a cancelled appointment")

	completed, err := svc.Book(ctx, patientPrincipal(patient), patient.ID, doctor.ID, mondaySlot.Add(time.Hour), "checkup")
	require.NoError(t, err)
	_, err = svc.RecordTreatment(ctx, doctorPrincipal(doctor), completed.ID, "all clear", "", "")
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, doctorPrincipal(doctor), completed.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition, "cancel is refused on a completed appointment")
}

func TestSlotUniquenessAcrossPatients(t *testing.T) {
	svc, doctor, _ := bookingFixture(t)
	db := svc.db
	other := seedPatient(t, db, "other@hospital.test", models.UserActive)
	first := seedPatient(t, db, "first@hospital.test", models.UserActive)
	ctx := context.Background()

	_, err := svc.Book(ctx, adminPrincipal(), first.ID, doctor.ID, mondaySlot, "checkup")
	require.NoError(t, err)

	_, err = svc.Book(ctx, adminPrincipal(), other.ID, doctor.ID, mondaySlot, "checkup")
	assert.ErrorIs(t, err, ErrSlotConflict)

	var count int64
	require.NoError(t, db.Model(&models.Appointment{}).
		Where("doctor_id = ? AND status <> ?", doctor.ID, models.StatusCancelled).
		Where("start_time = ?", mondaySlot).
		Count(&count).Error)
	assert.EqualValues(t, 1, count, "at most one non-cancelled appointment per doctor/start")
}

func TestUpcomingAppointmentGuards(t *testing.T) {
	svc, doctor, patient := bookingFixture(t)
	ctx := context.Background()

	has, err := svc.DoctorHasUpcomingAppointments(ctx, doctor.ID)
	require.NoError(t, err)
	assert.False(t, has)

	appt, err := svc.Book(ctx, patientPrincipal(patient), patient.ID, doctor.ID, mondaySlot, "checkup")
	require.NoError(t, err)

	has, err = svc.DoctorHasUpcomingAppointments(ctx, doctor.ID)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = svc.PatientHasUpcomingAppointments(ctx, patient.ID)
	require.NoError(t, err)
	assert.True(t, has)

	_, err = svc.Cancel(ctx, patientPrincipal(patient), appt.ID)
	require.NoError(t, err)

	has, err = svc.PatientHasUpcomingAppointments(ctx, patient.ID)
	require.NoError(t, err)
	assert.False(t, has, "cancelled appointments do not block deletion")
}
