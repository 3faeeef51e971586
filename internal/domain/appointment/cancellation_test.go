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

func confirmedAppointment(t *testing.T, startsIn time.Duration, amountHT int64) (*appointment.Appointment, time.Time) {
	t.Helper()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	appt, err := appointment.New(
		uuid.New(), uuid.New(),
		appointment.Duration60,
		now.Add(startsIn),
		"14:00-15:00",
		amountHT,
		now,
	)
	require.NoError(t, err)
	require.NoError(t, appt.Authorize(now))
	require.NoError(t, appt.Confirm("123456", now))
	return appt, now
}

func TestCancellationPolicy(t *testing.T) {
	policy := appointment.NewPolicy(1000)

	tests := []struct {
		name         string
		actor        appointment.Actor
		startsIn     time.Duration
		amountHT     int64
		newStatus    appointment.Status
		refund       appointment.RefundKind
		refundAmount int64
		toClient     bool
	}{
		{
			name:     "client cancels early, full refund",
			actor:    appointment.ActorClient,
			startsIn: 48 * time.Hour, amountHT: 6000,
			newStatus: appointment.StatusCancelledByClient,
			refund:    appointment.RefundFull,
		},
		{
			name:     "client cancels late, fee withheld",
			actor:    appointment.ActorClient,
			startsIn: 3 * time.Hour, amountHT: 6000,
			newStatus:    appointment.StatusCancelledByClient,
			refund:       appointment.RefundPartial,
			refundAmount: 6200, // 7200 total minus the 1000 fee
		},
		{
			name:     "fee exceeds total, refund floors at zero",
			actor:    appointment.ActorClient,
			startsIn: 3 * time.Hour, amountHT: 417, // total 500
			newStatus:    appointment.StatusCancelledByClient,
			refund:       appointment.RefundPartial,
			refundAmount: 0,
		},
		{
			name:     "pro cancels early, full refund to client",
			actor:    appointment.ActorPro,
			startsIn: 48 * time.Hour, amountHT: 6000,
			newStatus: appointment.StatusCancelledByPro,
			refund:    appointment.RefundFull,
			toClient:  true,
		},
		{
			name:     "pro cancels late, held for review",
			actor:    appointment.ActorPro,
			startsIn: 3 * time.Hour, amountHT: 6000,
			newStatus: appointment.StatusCancelledByProPending,
			refund:    appointment.RefundNone,
			toClient:  true,
		},
		{
			name:     "exactly 24h counts as early",
			actor:    appointment.ActorClient,
			startsIn: 24 * time.Hour, amountHT: 6000,
			newStatus: appointment.StatusCancelledByClient,
			refund:    appointment.RefundFull,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appt, now := confirmedAppointment(t, tt.startsIn, tt.amountHT)

			decision, err := policy.Decide(appt, tt.actor, now)
			require.NoError(t, err)

			assert.Equal(t, tt.newStatus, decision.NewStatus)
			assert.Equal(t, tt.refund, decision.Refund)
			assert.Equal(t, tt.toClient, decision.ToClient)
			if tt.refund == appointment.RefundPartial {
				assert.Equal(t, tt.refundAmount, decision.RefundAmount)
			}
			assert.NotEmpty(t, decision.Notice.Title)
			assert.NotEmpty(t, decision.Notice.Body)
		})
	}
}

func TestCancellationPolicyUnknownActor(t *testing.T) {
	policy := appointment.NewPolicy(1000)
	appt, now := confirmedAppointment(t, 48*time.Hour, 6000)

	_, err := policy.Decide(appt, appointment.Actor("operator"), now)
	assert.ErrorIs(t, err, appointment.ErrCancellationNotAllowed)
}
