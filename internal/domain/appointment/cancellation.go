package appointment

import (
	"time"

	"teleconseil/internal/pkg/errs"
)

var (
	ErrCancellationNotAllowed = errs.New("cancellation not allowed for this actor")
)

type Actor string

const (
	ActorClient Actor = "client"
	ActorPro    Actor = "professional"
)

type RefundKind int

const (
	// RefundNone: no money moves (nothing captured, or pending manual review).
	RefundNone RefundKind = iota
	// RefundFull: cancel the authorization, or refund the full capture.
	RefundFull
	// RefundPartial: refund the capture minus the cancellation fee.
	RefundPartial
)

// Notice is the notification that must be written in the same logical unit
// as the status change.
type Notice struct {
	Title string
	Body  string
	Kind  string
}

type Decision struct {
	NewStatus    Status
	Refund       RefundKind
	RefundAmount int64
	// ToClient is true when the counterparty to notify is the client.
	ToClient bool
	Notice   Notice
}

// Policy decides what a cancellation does, as a pure function of the
// appointment, the initiating role and the current time.
type Policy struct {
	// FeeAmount is withheld from late client cancellations, minor units.
	FeeAmount int64
}

func NewPolicy(feeAmount int64) Policy {
	return Policy{FeeAmount: feeAmount}
}

// Decide handles cancellation of a CONFIRMED appointment. Cancellations from
// PAYMENT_AUTHORIZED are dispatched before the policy (only the professional
// may cancel, nothing was captured).
func (p Policy) Decide(a *Appointment, actor Actor, now time.Time) (Decision, error) {
	within24h := a.HoursUntil(now) < 24

	switch actor {
	case ActorClient:
		if within24h {
			amount := a.AmountTotal - p.FeeAmount
			if amount < 0 {
				amount = 0
			}
			return Decision{
				NewStatus:    StatusCancelledByClient,
				Refund:       RefundPartial,
				RefundAmount: amount,
				ToClient:     false,
				Notice: Notice{
					Title: "Rendez-vous annulé",
					Body:  "Le client a annulé le rendez-vous à moins de 24h. Un remboursement partiel a été effectué.",
					Kind:  "appointment_cancelled",
				},
			}, nil
		}
		return Decision{
			NewStatus: StatusCancelledByClient,
			Refund:    RefundFull,
			ToClient:  false,
			Notice: Notice{
				Title: "Rendez-vous annulé",
				Body:  "Le client a annulé le rendez-vous. Le montant a été intégralement remboursé.",
				Kind:  "appointment_cancelled",
			},
		}, nil

	case ActorPro:
		if within24h {
			// No refund yet: an administrator confirms the late professional
			// cancellation before any money moves.
			return Decision{
				NewStatus: StatusCancelledByProPending,
				Refund:    RefundNone,
				ToClient:  true,
				Notice: Notice{
					Title: "Rendez-vous annulé",
					Body:  "Le professionnel a annulé le rendez-vous. Votre remboursement est en cours de traitement.",
					Kind:  "appointment_cancelled",
				},
			}, nil
		}
		return Decision{
			NewStatus: StatusCancelledByPro,
			Refund:    RefundFull,
			ToClient:  true,
			Notice: Notice{
				Title: "Rendez-vous annulé",
				Body:  "Le professionnel a annulé le rendez-vous. Le montant a été intégralement remboursé.",
				Kind:  "appointment_cancelled",
			},
		}, nil
	}

	return Decision{}, ErrCancellationNotAllowed
}
