package appointment

import (
	"math"

	"teleconseil/internal/pkg/errs"
)

var ErrInvalidDuration = errs.New("appointment duration must be 30 or 60 minutes")

// Duration is the billable appointment length in minutes.
type Duration int

const (
	Duration30 Duration = 30
	Duration60 Duration = 60
)

func (d Duration) Valid() bool {
	return d == Duration30 || d == Duration60
}

func (d Duration) Minutes() int {
	return int(d)
}

// TaxRate is the VAT applied on top of the pre-tax amount.
const TaxRate = 0.20

// TaxAmount returns the VAT portion for a pre-tax amount in minor units.
func TaxAmount(amountHT int64) int64 {
	return int64(math.Round(float64(amountHT) * TaxRate))
}

// TotalWithTax returns amountHT plus VAT.
func TotalWithTax(amountHT int64) int64 {
	return amountHT + TaxAmount(amountHT)
}

// ProfessionalShare is the professional's pre-tax cut: two thirds, rounded.
func ProfessionalShare(amountHT int64) int64 {
	return int64(math.Round(float64(amountHT) * 2.0 / 3.0))
}

// PlatformFee is the remainder after the professional's share, so the two
// always sum back to amountHT.
func PlatformFee(amountHT int64) int64 {
	return amountHT - ProfessionalShare(amountHT)
}
