package appointment

import (
	"teleconseil/internal/pkg/errs"
)

var ErrInvalidTransition = errs.New("invalid appointment status transition")

type Status string

const (
	StatusPaymentInitiated      Status = "PAYMENT_INITIATED"
	StatusPaymentAuthorized     Status = "PAYMENT_AUTHORIZED"
	StatusConfirmed             Status = "CONFIRMED"
	StatusPendingPayout         Status = "PENDING_PAYOUT"
	StatusPaidOut               Status = "PAID_OUT"
	StatusCancelledByClient     Status = "CANCELLED_BY_CLIENT"
	StatusCancelledByPro        Status = "CANCELLED_BY_PRO"
	StatusCancelledByProPending Status = "CANCELLED_BY_PRO_PENDING"
)

var transitions = map[Status][]Status{
	StatusPaymentInitiated:  {StatusPaymentAuthorized},
	StatusPaymentAuthorized: {StatusConfirmed, StatusCancelledByPro},
	StatusConfirmed: {
		StatusPendingPayout,
		StatusCancelledByClient,
		StatusCancelledByPro,
		StatusCancelledByProPending,
	},
	StatusPendingPayout: {StatusPaidOut},
}

func (s Status) String() string {
	return string(s)
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if next == allowed {
			return true
		}
	}
	return false
}

func (s Status) IsCancelled() bool {
	switch s {
	case StatusCancelledByClient, StatusCancelledByPro, StatusCancelledByProPending:
		return true
	}
	return false
}

// Terminal statuses never leave the transition graph again.
func (s Status) IsTerminal() bool {
	return s == StatusPaidOut || s.IsCancelled()
}
