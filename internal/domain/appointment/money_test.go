//go:build unit

package appointment_test

import (
	"testing"

	"teleconseil/internal/domain/appointment"

	"github.com/stretchr/testify/assert"
)

func TestTotalWithTax(t *testing.T) {
	tests := []struct {
		name     string
		amountHT int64
		expected int64
	}{
		{"standard 30min rate", 3000, 3600},
		{"standard 60min rate", 6000, 7200},
		{"rounding up", 333, 400},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, appointment.TotalWithTax(tt.amountHT))
		})
	}
}

func TestPayoutSplit(t *testing.T) {
	tests := []struct {
		name     string
		amountHT int64
		share    int64
		fee      int64
	}{
		{"60min rate splits two thirds", 6000, 4000, 2000},
		{"30min rate splits two thirds", 3000, 2000, 1000},
		{"odd amount rounds the share", 1000, 667, 333},
		{"tiny amount", 1, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			share := appointment.ProfessionalShare(tt.amountHT)
			fee := appointment.PlatformFee(tt.amountHT)
			assert.Equal(t, tt.share, share)
			assert.Equal(t, tt.fee, fee)
			assert.Equal(t, tt.amountHT, share+fee, "share and fee must sum back to the pre-tax amount")
		})
	}
}

func TestDurationValid(t *testing.T) {
	assert.True(t, appointment.Duration30.Valid())
	assert.True(t, appointment.Duration60.Valid())
	assert.False(t, appointment.Duration(45).Valid())
	assert.False(t, appointment.Duration(0).Valid())
}
