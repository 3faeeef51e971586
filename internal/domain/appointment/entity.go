package appointment

import (
	"time"

	"teleconseil/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrInvalidRating      = errs.New("rating must be between 1 and 5")
	ErrRoomAlreadyMinted  = errs.New("room id is already set")
	ErrMissingRoomID      = errs.New("room id is required to confirm")
	ErrNotAppointmentUser = errs.New("user is not this appointment's client")
)

// CallSegment is one call made through the external video subsystem. The
// call service appends segments; this core only sums their durations.
type CallSegment struct {
	StartedAt       time.Time `json:"startedAt"`
	DurationMinutes int       `json:"durationMinutes"`
}

// Evaluation is an append-only quality record embedded in the appointment.
// Only the Processed flag is ever mutated after creation.
type Evaluation struct {
	Rating            int       `json:"rating"`
	ClientID          uuid.UUID `json:"clientId"`
	TotalCallDuration int       `json:"totalCallDuration"`
	EvaluatedAt       time.Time `json:"evaluatedAt"`
	Processed         bool      `json:"processed"`
}

// Appointment is the aggregate root of the booking/payment lifecycle. It is
// persisted as a single document; every status change goes through the
// transition methods below and is written with a compare-and-set on Status.
type Appointment struct {
	ID       uuid.UUID
	ProID    uuid.UUID
	ClientID uuid.UUID

	Duration Duration
	DateTime time.Time
	TimeSlot string

	AmountHT    int64
	AmountTotal int64

	PaymentIntentID string
	TransferID      *string
	AmountPaidOut   *int64

	Status Status
	RoomID *string

	CallHistory       []CallSegment
	EvaluationHistory []Evaluation
	LastEvaluatedAt   *time.Time

	PendingPayoutSince *time.Time
	PaidOutAt          *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates an appointment in PAYMENT_INITIATED with VAT applied on top of
// the pre-tax amount. The payment intent handle is attached by the caller
// once the authorization has been opened.
func New(clientID, proID uuid.UUID, duration Duration, dateTime time.Time, timeSlot string, amountHT int64, now time.Time) (*Appointment, error) {
	if !duration.Valid() {
		return nil, ErrInvalidDuration
	}

	return &Appointment{
		ID:          uuid.New(),
		ProID:       proID,
		ClientID:    clientID,
		Duration:    duration,
		DateTime:    dateTime,
		TimeSlot:    timeSlot,
		AmountHT:    amountHT,
		AmountTotal: TotalWithTax(amountHT),
		Status:      StatusPaymentInitiated,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (a *Appointment) EndTime() time.Time {
	return a.DateTime.Add(time.Duration(a.Duration.Minutes()) * time.Minute)
}

func (a *Appointment) HoursUntil(now time.Time) float64 {
	return a.DateTime.Sub(now).Hours()
}

// TotalCallMinutes sums all call segments recorded so far.
func (a *Appointment) TotalCallMinutes() int {
	total := 0
	for _, seg := range a.CallHistory {
		total += seg.DurationMinutes
	}
	return total
}

func (a *Appointment) transition(next Status, now time.Time) error {
	if !a.Status.CanTransitionTo(next) {
		return errs.Wrapf(ErrInvalidTransition, "%s -> %s", a.Status, next)
	}
	a.Status = next
	a.UpdatedAt = now
	return nil
}

// Authorize moves PAYMENT_INITIATED -> PAYMENT_AUTHORIZED.
func (a *Appointment) Authorize(now time.Time) error {
	return a.transition(StatusPaymentAuthorized, now)
}

// Confirm moves PAYMENT_AUTHORIZED -> CONFIRMED and mints the call room id.
// The room id is set exactly once, here.
func (a *Appointment) Confirm(roomID string, now time.Time) error {
	if roomID == "" {
		return ErrMissingRoomID
	}
	if a.RoomID != nil {
		return ErrRoomAlreadyMinted
	}
	if err := a.transition(StatusConfirmed, now); err != nil {
		return err
	}
	a.RoomID = &roomID
	return nil
}

// Cancel applies a cancellation decision produced by the policy engine.
func (a *Appointment) Cancel(to Status, now time.Time) error {
	if !to.IsCancelled() {
		return ErrInvalidTransition
	}
	return a.transition(to, now)
}

// MarkPendingPayout moves CONFIRMED -> PENDING_PAYOUT.
func (a *Appointment) MarkPendingPayout(now time.Time) error {
	if err := a.transition(StatusPendingPayout, now); err != nil {
		return err
	}
	a.PendingPayoutSince = &now
	return nil
}

// MarkPaidOut moves PENDING_PAYOUT -> PAID_OUT and records the transfer.
func (a *Appointment) MarkPaidOut(transferID string, amount int64, now time.Time) error {
	if err := a.transition(StatusPaidOut, now); err != nil {
		return err
	}
	a.TransferID = &transferID
	a.AmountPaidOut = &amount
	a.PaidOutAt = &now
	return nil
}

// AddEvaluation appends an unprocessed evaluation, snapshotting the call
// duration accumulated so far. The appointment status is left untouched.
func (a *Appointment) AddEvaluation(clientID uuid.UUID, rating int, now time.Time) (Evaluation, error) {
	if clientID != a.ClientID {
		return Evaluation{}, ErrNotAppointmentUser
	}
	if rating < 1 || rating > 5 {
		return Evaluation{}, ErrInvalidRating
	}

	ev := Evaluation{
		Rating:            rating,
		ClientID:          clientID,
		TotalCallDuration: a.TotalCallMinutes(),
		EvaluatedAt:       now,
	}
	a.EvaluationHistory = append(a.EvaluationHistory, ev)
	a.LastEvaluatedAt = &now
	a.UpdatedAt = now
	return ev, nil
}

// LatestUnprocessedEvaluation returns the most recent evaluation that no
// batch run has acted on yet.
func (a *Appointment) LatestUnprocessedEvaluation() (Evaluation, bool) {
	for i := len(a.EvaluationHistory) - 1; i >= 0; i-- {
		if !a.EvaluationHistory[i].Processed {
			return a.EvaluationHistory[i], true
		}
	}
	return Evaluation{}, false
}

func (a *Appointment) HasUnprocessedEvaluation() bool {
	_, ok := a.LatestUnprocessedEvaluation()
	return ok
}

// MarkEvaluationsProcessed flags the whole history, not just the consumed
// tail, so a later evaluation can never resurrect an old one.
func (a *Appointment) MarkEvaluationsProcessed(now time.Time) {
	for i := range a.EvaluationHistory {
		a.EvaluationHistory[i].Processed = true
	}
	a.UpdatedAt = now
}
