package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"teleconseil/internal/domain/appointment"
	"teleconseil/internal/domain/notification"
	"teleconseil/internal/domain/user"
	"teleconseil/internal/infra"
	"teleconseil/internal/pkg/clock"
	"teleconseil/internal/pkg/config"
	"teleconseil/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrAppointmentNotFound  = errs.New("appointment not found")
	ErrProfessionalNotFound = errs.New("professional not found")
	ErrNotProfessional      = errs.New("target user is not a professional")
	ErrForbidden            = errs.New("actor does not own this appointment")
	ErrAuthorizationFailed  = errs.New("payment authorization could not be created")
	ErrConcurrentUpdate     = errs.New("appointment changed concurrently")
	ErrOperationFailed      = errs.New("operation failed")
)

type CreateAppointmentInput struct {
	ClientID uuid.UUID
	ProID    uuid.UUID
	DateTime time.Time
	Duration int
	TimeSlot string
}

type CreateAppointmentResult struct {
	Appointment  *appointment.Appointment
	ClientSecret string
}

type ConfirmResult struct {
	Appointment *appointment.Appointment
	Invoices    InvoicePair
}

// AppointmentCommands is the state machine: every status change of an
// appointment, whether user-triggered or job-triggered, goes through here.
type AppointmentCommands interface {
	Create(ctx context.Context, in CreateAppointmentInput) (*CreateAppointmentResult, error)
	AuthorizePayment(ctx context.Context, id, clientID uuid.UUID) (*appointment.Appointment, error)
	Confirm(ctx context.Context, id, proID uuid.UUID) (*ConfirmResult, error)
	Cancel(ctx context.Context, id, actorID uuid.UUID, role user.Role) (*appointment.Appointment, error)
	ExpireStaleInitiations(ctx context.Context) (int64, error)
	RefreshReminderIndex(ctx context.Context) error
}

type appointmentCommandsImpl struct {
	appointments  AppointmentRepository
	users         UserRepository
	gateway       PaymentGateway
	notifier      Notifier
	reminders     ReminderIndex
	invoices      InvoiceGenerator
	chat          ChatActivator
	policy        appointment.Policy
	billing       config.BillingConfig
	currency      string
	initiationTTL time.Duration
	location      *time.Location
	clock         clock.Clock
	newRoomID     func() string
}

func NewAppointmentCommands(
	appointments AppointmentRepository,
	users UserRepository,
	gateway PaymentGateway,
	notifier Notifier,
	reminders ReminderIndex,
	invoices InvoiceGenerator,
	chat ChatActivator,
	cfg config.Config,
	clk clock.Clock,
) AppointmentCommands {
	loc, err := time.LoadLocation(cfg.Jobs.TimeZone)
	if err != nil {
		slog.Warn("invalid jobs timezone, falling back to UTC",
			"timezone", cfg.Jobs.TimeZone, "error", err)
		loc = time.UTC
	}

	return &appointmentCommandsImpl{
		appointments:  appointments,
		users:         users,
		gateway:       gateway,
		notifier:      notifier,
		reminders:     reminders,
		invoices:      invoices,
		chat:          chat,
		policy:        appointment.NewPolicy(cfg.Billing.CancellationFee),
		billing:       cfg.Billing,
		currency:      cfg.Stripe.Currency,
		initiationTTL: cfg.Jobs.InitiationTTL,
		location:      loc,
		clock:         clk,
		newRoomID:     newRoomID,
	}
}

func (uc *appointmentCommandsImpl) Create(ctx context.Context, in CreateAppointmentInput) (*CreateAppointmentResult, error) {
	pro, err := uc.users.FindByID(ctx, in.ProID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrProfessionalNotFound
		}
		return nil, errs.Mark(err, ErrOperationFailed)
	}
	if !pro.IsProfessional() {
		return nil, ErrNotProfessional
	}

	duration := appointment.Duration(in.Duration)
	if !duration.Valid() {
		return nil, appointment.ErrInvalidDuration
	}

	now := uc.clock.Now()
	appt, err := appointment.New(in.ClientID, in.ProID, duration, in.DateTime, in.TimeSlot, uc.rateFor(duration), now)
	if err != nil {
		return nil, err
	}

	auth, err := uc.gateway.CreateAuthorization(ctx, appt.AmountTotal, uc.currency, map[string]string{
		"appointmentId": appt.ID.String(),
		"clientId":      appt.ClientID.String(),
		"proId":         appt.ProID.String(),
	})
	if err != nil {
		return nil, errs.Mark(err, ErrAuthorizationFailed)
	}
	if auth == nil || auth.IntentID == "" {
		return nil, ErrAuthorizationFailed
	}
	appt.PaymentIntentID = auth.IntentID

	if err := uc.appointments.Create(ctx, appt); err != nil {
		return nil, errs.Mark(err, ErrOperationFailed)
	}

	return &CreateAppointmentResult{
		Appointment:  appt,
		ClientSecret: auth.ClientSecret,
	}, nil
}

func (uc *appointmentCommandsImpl) rateFor(d appointment.Duration) int64 {
	if d == appointment.Duration60 {
		return uc.billing.Rate60
	}
	return uc.billing.Rate30
}

func (uc *appointmentCommandsImpl) AuthorizePayment(ctx context.Context, id, clientID uuid.UUID) (*appointment.Appointment, error) {
	appt, err := uc.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.ClientID != clientID {
		return nil, ErrForbidden
	}

	if err := appt.Authorize(uc.clock.Now()); err != nil {
		return nil, err
	}
	if err := uc.appointments.UpdateIfStatus(ctx, appt, appointment.StatusPaymentInitiated); err != nil {
		return nil, uc.writeError(err)
	}

	uc.notifier.Notify(ctx, notification.New(
		appt.ProID,
		"Nouveau rendez-vous",
		"Un client a réservé un rendez-vous. Confirmez-le pour encaisser le paiement.",
		notification.KindNewAppointment,
		map[string]string{"appointmentId": appt.ID.String()},
	))

	return appt, nil
}

// Confirm captures the authorized payment and only then persists the new
// status. A crash between the two leaves a captured intent that operator
// reconciliation can match against the still-authorized document.
func (uc *appointmentCommandsImpl) Confirm(ctx context.Context, id, proID uuid.UUID) (*ConfirmResult, error) {
	appt, err := uc.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.ProID != proID {
		return nil, ErrForbidden
	}
	if appt.Status != appointment.StatusPaymentAuthorized {
		return nil, appointment.ErrInvalidTransition
	}

	if err := uc.gateway.Capture(ctx, appt.PaymentIntentID); err != nil {
		return nil, errs.Mark(errs.Wrap(err, "payment capture failed"), ErrOperationFailed)
	}

	now := uc.clock.Now()
	if err := appt.Confirm(uc.newRoomID(), now); err != nil {
		return nil, err
	}
	if err := uc.appointments.UpdateIfStatus(ctx, appt, appointment.StatusPaymentAuthorized); err != nil {
		// Funds are captured but the document write lost a race. Surface to
		// the operator feed for reconciliation.
		uc.notifier.Notify(ctx, notification.NewOperator(
			"Capture sans confirmation",
			fmt.Sprintf("Paiement capturé pour le rendez-vous %s mais le statut n'a pas pu être enregistré.", appt.ID),
			notification.KindReconciliation,
			map[string]string{"appointmentId": appt.ID.String(), "paymentIntentId": appt.PaymentIntentID},
		))
		return nil, uc.writeError(err)
	}

	if err := uc.reminders.Add(ctx, reminderEntryFor(appt)); err != nil {
		slog.Warn("failed to add appointment to reminder index", "appointment_id", appt.ID, "error", err)
	}

	invoices, err := uc.invoices.Generate(ctx, appt)
	if err != nil {
		slog.Error("invoice generation failed", "appointment_id", appt.ID, "error", err)
	}

	if appt.RoomID != nil {
		if err := uc.chat.Activate(ctx, appt.ID, *appt.RoomID); err != nil {
			slog.Error("chat activation failed", "appointment_id", appt.ID, "error", err)
		}
	}

	uc.notifier.Notify(ctx, notification.New(
		appt.ClientID,
		"Rendez-vous confirmé",
		"Le professionnel a confirmé votre rendez-vous.",
		notification.KindAppointmentConfirmed,
		map[string]string{"appointmentId": appt.ID.String()},
	))

	return &ConfirmResult{Appointment: appt, Invoices: invoices}, nil
}

func (uc *appointmentCommandsImpl) Cancel(ctx context.Context, id, actorID uuid.UUID, role user.Role) (*appointment.Appointment, error) {
	appt, err := uc.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	actor, err := cancellationActor(appt, actorID, role)
	if err != nil {
		return nil, err
	}

	switch appt.Status {
	case appointment.StatusPaymentAuthorized:
		return uc.cancelAuthorized(ctx, appt, actor)
	case appointment.StatusConfirmed:
		return uc.cancelConfirmed(ctx, appt, actor)
	default:
		return nil, appointment.ErrInvalidTransition
	}
}

// Nothing was captured yet, so only the professional may walk away and no
// refund is involved: the authorization is simply released.
func (uc *appointmentCommandsImpl) cancelAuthorized(ctx context.Context, appt *appointment.Appointment, actor appointment.Actor) (*appointment.Appointment, error) {
	if actor != appointment.ActorPro {
		return nil, ErrForbidden
	}

	if err := uc.gateway.CancelAuthorization(ctx, appt.PaymentIntentID); err != nil {
		return nil, errs.Mark(errs.Wrap(err, "cancel authorization failed"), ErrOperationFailed)
	}

	if err := appt.Cancel(appointment.StatusCancelledByPro, uc.clock.Now()); err != nil {
		return nil, err
	}
	if err := uc.appointments.UpdateIfStatus(ctx, appt, appointment.StatusPaymentAuthorized); err != nil {
		return nil, uc.writeError(err)
	}

	uc.notifier.Notify(ctx, notification.New(
		appt.ClientID,
		"Rendez-vous annulé",
		"Le professionnel a annulé le rendez-vous avant confirmation. Aucun montant n'a été débité.",
		notification.KindAppointmentCancelled,
		map[string]string{"appointmentId": appt.ID.String()},
	))

	return appt, nil
}

func (uc *appointmentCommandsImpl) cancelConfirmed(ctx context.Context, appt *appointment.Appointment, actor appointment.Actor) (*appointment.Appointment, error) {
	now := uc.clock.Now()
	decision, err := uc.policy.Decide(appt, actor, now)
	if err != nil {
		return nil, err
	}

	// Refund before persisting, per the documented dual-write ordering.
	switch decision.Refund {
	case appointment.RefundFull:
		if err := uc.gateway.Refund(ctx, appt.PaymentIntentID, nil); err != nil {
			return nil, errs.Mark(errs.Wrap(err, "refund failed"), ErrOperationFailed)
		}
	case appointment.RefundPartial:
		if decision.RefundAmount > 0 {
			amount := decision.RefundAmount
			if err := uc.gateway.Refund(ctx, appt.PaymentIntentID, &amount); err != nil {
				return nil, errs.Mark(errs.Wrap(err, "partial refund failed"), ErrOperationFailed)
			}
		}
	}

	if err := appt.Cancel(decision.NewStatus, now); err != nil {
		return nil, err
	}
	if err := uc.appointments.UpdateIfStatus(ctx, appt, appointment.StatusConfirmed); err != nil {
		return nil, uc.writeError(err)
	}

	if err := uc.reminders.Remove(ctx, appt.ID); err != nil {
		slog.Warn("failed to remove appointment from reminder index", "appointment_id", appt.ID, "error", err)
	}

	recipient := appt.ProID
	if decision.ToClient {
		recipient = appt.ClientID
	}
	uc.notifier.Notify(ctx, notification.New(
		recipient,
		decision.Notice.Title,
		decision.Notice.Body,
		decision.Notice.Kind,
		map[string]string{"appointmentId": appt.ID.String()},
	))

	return appt, nil
}

// ExpireStaleInitiations hard-deletes abandoned checkouts: PAYMENT_INITIATED
// documents older than the initiation TTL. Nothing was captured for these,
// only an authorization intent was opened.
func (uc *appointmentCommandsImpl) ExpireStaleInitiations(ctx context.Context) (int64, error) {
	cutoff := uc.clock.Now().Add(-uc.initiationTTL)
	deleted, err := uc.appointments.DeleteStaleInitiated(ctx, cutoff)
	if err != nil {
		return 0, errs.Mark(err, ErrOperationFailed)
	}
	return deleted, nil
}

// RefreshReminderIndex rebuilds the daily snapshot from the CONFIRMED
// appointments happening today or in exactly two days. Days are bounded in
// the configured local timezone, not UTC.
func (uc *appointmentCommandsImpl) RefreshReminderIndex(ctx context.Context) error {
	now := uc.clock.Now().In(uc.location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, uc.location)
	inTwoDays := today.AddDate(0, 0, 2)

	var entries []ReminderEntry
	for _, day := range []time.Time{today, inTwoDays} {
		appts, err := uc.appointments.FindConfirmedBetween(ctx, day, day.AddDate(0, 0, 1))
		if err != nil {
			return errs.Mark(err, ErrOperationFailed)
		}
		for _, a := range appts {
			entries = append(entries, reminderEntryFor(a))
		}
	}

	return uc.reminders.Rebuild(ctx, entries)
}

func (uc *appointmentCommandsImpl) findByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	appt, err := uc.appointments.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, errs.Mark(err, ErrOperationFailed)
	}
	return appt, nil
}

func (uc *appointmentCommandsImpl) writeError(err error) error {
	if infra.IsKind(err, infra.KindConflict) {
		return ErrConcurrentUpdate
	}
	return errs.Mark(err, ErrOperationFailed)
}

func cancellationActor(appt *appointment.Appointment, actorID uuid.UUID, role user.Role) (appointment.Actor, error) {
	switch role {
	case user.RoleClient:
		if appt.ClientID != actorID {
			return "", ErrForbidden
		}
		return appointment.ActorClient, nil
	case user.RoleProfessional:
		if appt.ProID != actorID {
			return "", ErrForbidden
		}
		return appointment.ActorPro, nil
	default:
		return "", ErrForbidden
	}
}

func reminderEntryFor(a *appointment.Appointment) ReminderEntry {
	entry := ReminderEntry{
		ID:              a.ID,
		ProID:           a.ProID,
		ClientID:        a.ClientID,
		DateTime:        a.DateTime,
		DurationMinutes: a.Duration.Minutes(),
		TimeSlot:        a.TimeSlot,
	}
	if a.RoomID != nil {
		entry.RoomID = *a.RoomID
	}
	return entry
}

// newRoomID mints the 6-digit code handed to the call subsystem.
func newRoomID() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return fmt.Sprintf("%06d", time.Now().UnixNano()%900000+100000)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000)
}
