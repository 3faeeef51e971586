//go:build unit

package appointment_test

import (
	"testing"
	"time"

	"teleconseil/internal/domain/appointment"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

func newTestAppointment(t *testing.T) *appointment.Appointment {
	t.Helper()
	appt, err := appointment.New(
		uuid.New(), uuid.New(),
		appointment.Duration60,
		baseTime.Add(72*time.Hour),
		"14:00-15:00",
		6000,
		baseTime,
	)
	require.NoError(t, err)
	return appt
}

func TestNewAppointment(t *testing.T) {
	appt := newTestAppointment(t)

	assert.Equal(t, appointment.StatusPaymentInitiated, appt.Status)
	assert.Equal(t, int64(6000), appt.AmountHT)
	assert.Equal(t, int64(7200), appt.AmountTotal)
	assert.Nil(t, appt.RoomID)
	assert.Empty(t, appt.EvaluationHistory)
	assert.Equal(t, appt.DateTime.Add(60*time.Minute), appt.EndTime())

	_, err := appointment.New(uuid.New(), uuid.New(), appointment.Duration(45), baseTime, "x", 100, baseTime)
	assert.ErrorIs(t, err, appointment.ErrInvalidDuration)
}

func TestConfirmMintsRoomOnce(t *testing.T) {
	appt := newTestAppointment(t)
	require.NoError(t, appt.Authorize(baseTime))

	require.NoError(t, appt.Confirm("123456", baseTime))
	assert.Equal(t, appointment.StatusConfirmed, appt.Status)
	require.NotNil(t, appt.RoomID)
	assert.Equal(t, "123456", *appt.RoomID)

	err := appt.Confirm("654321", baseTime)
	assert.ErrorIs(t, err, appointment.ErrRoomAlreadyMinted)
	assert.Equal(t, "123456", *appt.RoomID)
}

func TestConfirmRequiresRoomID(t *testing.T) {
	appt := newTestAppointment(t)
	require.NoError(t, appt.Authorize(baseTime))

	assert.ErrorIs(t, appt.Confirm("", baseTime), appointment.ErrMissingRoomID)
}

func TestConfirmRejectsWrongStatus(t *testing.T) {
	appt := newTestAppointment(t)

	err := appt.Confirm("123456", baseTime)
	assert.ErrorIs(t, err, appointment.ErrInvalidTransition)
	assert.Nil(t, appt.RoomID)
}

func TestCancelOnlyToCancelledStatuses(t *testing.T) {
	appt := newTestAppointment(t)
	require.NoError(t, appt.Authorize(baseTime))

	assert.ErrorIs(t, appt.Cancel(appointment.StatusConfirmed, baseTime), appointment.ErrInvalidTransition)
	require.NoError(t, appt.Cancel(appointment.StatusCancelledByPro, baseTime))
	assert.Equal(t, appointment.StatusCancelledByPro, appt.Status)
}

func TestPayoutTransitions(t *testing.T) {
	appt := newTestAppointment(t)
	require.NoError(t, appt.Authorize(baseTime))
	require.NoError(t, appt.Confirm("123456", baseTime))

	pendingAt := baseTime.Add(time.Hour)
	require.NoError(t, appt.MarkPendingPayout(pendingAt))
	require.NotNil(t, appt.PendingPayoutSince)
	assert.Equal(t, pendingAt, *appt.PendingPayoutSince)

	paidAt := pendingAt.Add(48 * time.Hour)
	require.NoError(t, appt.MarkPaidOut("tr_123", 4000, paidAt))
	assert.Equal(t, appointment.StatusPaidOut, appt.Status)
	require.NotNil(t, appt.TransferID)
	assert.Equal(t, "tr_123", *appt.TransferID)
	require.NotNil(t, appt.AmountPaidOut)
	assert.Equal(t, int64(4000), *appt.AmountPaidOut)

	// PAID_OUT is terminal
	assert.ErrorIs(t, appt.MarkPendingPayout(paidAt), appointment.ErrInvalidTransition)
}

func TestAddEvaluation(t *testing.T) {
	appt := newTestAppointment(t)
	appt.CallHistory = []appointment.CallSegment{
		{StartedAt: baseTime, DurationMinutes: 8},
		{StartedAt: baseTime.Add(10 * time.Minute), DurationMinutes: 7},
	}

	ev, err := appt.AddEvaluation(appt.ClientID, 5, baseTime)
	require.NoError(t, err)
	assert.Equal(t, 5, ev.Rating)
	assert.Equal(t, 15, ev.TotalCallDuration, "snapshot of accumulated call minutes")
	assert.False(t, ev.Processed)
	require.NotNil(t, appt.LastEvaluatedAt)

	_, err = appt.AddEvaluation(uuid.New(), 5, baseTime)
	assert.ErrorIs(t, err, appointment.ErrNotAppointmentUser)

	_, err = appt.AddEvaluation(appt.ClientID, 0, baseTime)
	assert.ErrorIs(t, err, appointment.ErrInvalidRating)
	_, err = appt.AddEvaluation(appt.ClientID, 6, baseTime)
	assert.ErrorIs(t, err, appointment.ErrInvalidRating)
}

func TestLatestUnprocessedEvaluation(t *testing.T) {
	appt := newTestAppointment(t)

	_, ok := appt.LatestUnprocessedEvaluation()
	assert.False(t, ok)

	_, err := appt.AddEvaluation(appt.ClientID, 3, baseTime)
	require.NoError(t, err)
	_, err = appt.AddEvaluation(appt.ClientID, 5, baseTime.Add(time.Hour))
	require.NoError(t, err)

	ev, ok := appt.LatestUnprocessedEvaluation()
	require.True(t, ok)
	assert.Equal(t, 5, ev.Rating, "latest evaluation wins")

	appt.MarkEvaluationsProcessed(baseTime.Add(2 * time.Hour))
	_, ok = appt.LatestUnprocessedEvaluation()
	assert.False(t, ok, "processing consumes the whole history")
	assert.False(t, appt.HasUnprocessedEvaluation())
}

func TestQualityAssessment(t *testing.T) {
	tests := []struct {
		name      string
		rating    int
		minutes   int
		qualifies bool
		lowRating bool
		shortCall bool
	}{
		{"good rating and long call", 5, 45, true, false, false},
		{"threshold rating and threshold minutes", 4, 10, true, false, false},
		{"low rating", 3, 45, false, true, false},
		{"short call", 5, 9, false, false, true},
		{"both flags", 2, 3, false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := appointment.Assess(appointment.Evaluation{Rating: tt.rating, TotalCallDuration: tt.minutes})
			assert.Equal(t, tt.qualifies, q.Qualifies())
			assert.Equal(t, tt.lowRating, q.LowRating)
			assert.Equal(t, tt.shortCall, q.ShortCall)
		})
	}
}
