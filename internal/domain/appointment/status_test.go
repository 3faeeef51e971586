//go:build unit

package appointment_test

import (
	"testing"

	"teleconseil/internal/domain/appointment"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    appointment.Status
		to      appointment.Status
		allowed bool
	}{
		{"initiated to authorized", appointment.StatusPaymentInitiated, appointment.StatusPaymentAuthorized, true},
		{"initiated to confirmed skips authorization", appointment.StatusPaymentInitiated, appointment.StatusConfirmed, false},
		{"authorized to confirmed", appointment.StatusPaymentAuthorized, appointment.StatusConfirmed, true},
		{"authorized to cancelled by pro", appointment.StatusPaymentAuthorized, appointment.StatusCancelledByPro, true},
		{"authorized to cancelled by client", appointment.StatusPaymentAuthorized, appointment.StatusCancelledByClient, false},
		{"confirmed to pending payout", appointment.StatusConfirmed, appointment.StatusPendingPayout, true},
		{"confirmed to cancelled by client", appointment.StatusConfirmed, appointment.StatusCancelledByClient, true},
		{"confirmed to cancelled by pro", appointment.StatusConfirmed, appointment.StatusCancelledByPro, true},
		{"confirmed to pro cancellation pending review", appointment.StatusConfirmed, appointment.StatusCancelledByProPending, true},
		{"pending payout to paid out", appointment.StatusPendingPayout, appointment.StatusPaidOut, true},
		{"pending payout back to confirmed", appointment.StatusPendingPayout, appointment.StatusConfirmed, false},
		{"paid out is terminal", appointment.StatusPaidOut, appointment.StatusConfirmed, false},
		{"cancelled is terminal", appointment.StatusCancelledByClient, appointment.StatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStatusClassification(t *testing.T) {
	assert.True(t, appointment.StatusCancelledByClient.IsCancelled())
	assert.True(t, appointment.StatusCancelledByPro.IsCancelled())
	assert.True(t, appointment.StatusCancelledByProPending.IsCancelled())
	assert.False(t, appointment.StatusPaidOut.IsCancelled())

	assert.True(t, appointment.StatusPaidOut.IsTerminal())
	assert.True(t, appointment.StatusCancelledByProPending.IsTerminal())
	assert.False(t, appointment.StatusConfirmed.IsTerminal())
	assert.False(t, appointment.StatusPendingPayout.IsTerminal())
}
