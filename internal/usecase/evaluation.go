package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"teleconseil/internal/domain/appointment"
	"teleconseil/internal/domain/notification"
	"teleconseil/internal/infra"
	"teleconseil/internal/pkg/clock"
	"teleconseil/internal/pkg/config"
	"teleconseil/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrEvaluationNotAllowed = errs.New("appointment cannot be evaluated in its current status")
)

// EvaluationBatchResult summarizes one run of the evaluation batch.
type EvaluationBatchResult struct {
	Scanned  int
	Released int
	Withheld int
}

// PayoutBatchResult summarizes one run of the payout batch.
type PayoutBatchResult struct {
	Scanned int
	Paid    int
	Skipped int
	Failed  int
}

// EvaluationCommands covers the quality loop: clients rate a finished
// appointment, the daily batch decides which payouts to release, and the
// hourly batch pays out what has cleared the holding delay.
type EvaluationCommands interface {
	Evaluate(ctx context.Context, appointmentID, clientID uuid.UUID, rating int) (*appointment.Appointment, error)
	ProcessDueEvaluations(ctx context.Context) (EvaluationBatchResult, error)
	ProcessDuePayouts(ctx context.Context) (PayoutBatchResult, error)
}

type evaluationCommandsImpl struct {
	appointments AppointmentRepository
	users        UserRepository
	gateway      PaymentGateway
	notifier     Notifier
	reminders    ReminderIndex
	payoutDelay  time.Duration
	currency     string
	clock        clock.Clock
}

func NewEvaluationCommands(
	appointments AppointmentRepository,
	users UserRepository,
	gateway PaymentGateway,
	notifier Notifier,
	reminders ReminderIndex,
	cfg config.Config,
	clk clock.Clock,
) EvaluationCommands {
	return &evaluationCommandsImpl{
		appointments: appointments,
		users:        users,
		gateway:      gateway,
		notifier:     notifier,
		reminders:    reminders,
		payoutDelay:  cfg.Billing.PayoutDelay,
		currency:     cfg.Stripe.Currency,
		clock:        clk,
	}
}

// Evaluate appends a rating to a confirmed appointment. The status does not
// change here: the daily batch reads the evaluation and decides the payout.
func (uc *evaluationCommandsImpl) Evaluate(ctx context.Context, appointmentID, clientID uuid.UUID, rating int) (*appointment.Appointment, error) {
	appt, err := uc.appointments.FindByID(ctx, appointmentID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, errs.Mark(err, ErrOperationFailed)
	}

	if appt.Status != appointment.StatusConfirmed {
		return nil, ErrEvaluationNotAllowed
	}

	if _, err := appt.AddEvaluation(clientID, rating, uc.clock.Now()); err != nil {
		return nil, err
	}

	if err := uc.appointments.UpdateIfStatus(ctx, appt, appointment.StatusConfirmed); err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return nil, ErrConcurrentUpdate
		}
		return nil, errs.Mark(err, ErrOperationFailed)
	}

	return appt, nil
}

// ProcessDueEvaluations walks the confirmed appointments whose start time has
// passed and that carry an unprocessed evaluation. Evaluations that pass the
// quality gate move the appointment to PENDING_PAYOUT and fold the rating into
// the professional's average; the others stay CONFIRMED with an alert on the
// operator feed. Either way the evaluation is consumed.
func (uc *evaluationCommandsImpl) ProcessDueEvaluations(ctx context.Context) (EvaluationBatchResult, error) {
	now := uc.clock.Now()

	due, err := uc.appointments.FindEvaluationDue(ctx, now)
	if err != nil {
		return EvaluationBatchResult{}, errs.Mark(err, ErrOperationFailed)
	}

	result := EvaluationBatchResult{Scanned: len(due)}
	for _, appt := range due {
		ev, ok := appt.LatestUnprocessedEvaluation()
		if !ok {
			continue
		}

		released, err := uc.processEvaluation(ctx, appt, ev, now)
		if err != nil {
			slog.Error("evaluation processing failed",
				"appointment_id", appt.ID, "error", err)
			continue
		}
		if released {
			result.Released++
		} else {
			result.Withheld++
		}
	}

	return result, nil
}

func (uc *evaluationCommandsImpl) processEvaluation(ctx context.Context, appt *appointment.Appointment, ev appointment.Evaluation, now time.Time) (bool, error) {
	quality := appointment.Assess(ev)
	appt.MarkEvaluationsProcessed(now)

	released := quality.Qualifies()
	if released {
		if err := appt.MarkPendingPayout(now); err != nil {
			return false, err
		}
	}

	if err := uc.appointments.UpdateIfStatus(ctx, appt, appointment.StatusConfirmed); err != nil {
		return false, err
	}

	if released {
		if err := uc.reminders.Remove(ctx, appt.ID); err != nil {
			slog.Warn("failed to remove appointment from reminder index",
				"appointment_id", appt.ID, "error", err)
		}
		uc.applyRating(ctx, appt, ev)
	} else {
		uc.notifyWithheld(ctx, appt, ev, quality)
	}

	return released, nil
}

func (uc *evaluationCommandsImpl) notifyWithheld(ctx context.Context, appt *appointment.Appointment, ev appointment.Evaluation, q appointment.QualityAssessment) {
	data := map[string]string{
		"appointmentId": appt.ID.String(),
		"proId":         appt.ProID.String(),
		"rating":        fmt.Sprintf("%d", ev.Rating),
		"callMinutes":   fmt.Sprintf("%d", ev.TotalCallDuration),
	}
	if q.LowRating {
		uc.notifier.Notify(ctx, notification.NewOperator(
			"Note insuffisante",
			fmt.Sprintf("Le rendez-vous %s a reçu la note %d/5. Versement suspendu en attente de revue.", appt.ID, ev.Rating),
			notification.KindLowRating,
			data,
		))
	}
	if q.ShortCall {
		uc.notifier.Notify(ctx, notification.NewOperator(
			"Appel trop court",
			fmt.Sprintf("Le rendez-vous %s totalise %d minutes d'appel. Versement suspendu en attente de revue.", appt.ID, ev.TotalCallDuration),
			notification.KindShortCall,
			data,
		))
	}
}

func (uc *evaluationCommandsImpl) applyRating(ctx context.Context, appt *appointment.Appointment, ev appointment.Evaluation) {
	pro, err := uc.users.FindByID(ctx, appt.ProID)
	if err != nil {
		slog.Error("failed to load professional for rating update",
			"pro_id", appt.ProID, "error", err)
		return
	}

	pro.ApplyRating(ev.Rating)
	if err := uc.users.UpdateRatingStats(ctx, pro.ID, pro.RatingAvg, pro.ReviewsCount); err != nil {
		slog.Error("failed to persist rating stats",
			"pro_id", appt.ProID, "error", err)
	}
}

// ProcessDuePayouts transfers the professional share for appointments that
// have sat in PENDING_PAYOUT past the holding delay. Transfer-then-persist,
// mirroring capture-then-persist on confirmation.
func (uc *evaluationCommandsImpl) ProcessDuePayouts(ctx context.Context) (PayoutBatchResult, error) {
	now := uc.clock.Now()
	cutoff := now.Add(-uc.payoutDelay)

	due, err := uc.appointments.FindPayoutDue(ctx, cutoff)
	if err != nil {
		return PayoutBatchResult{}, errs.Mark(err, ErrOperationFailed)
	}

	result := PayoutBatchResult{Scanned: len(due)}
	for _, appt := range due {
		switch uc.processPayout(ctx, appt, now) {
		case payoutPaid:
			result.Paid++
		case payoutSkipped:
			result.Skipped++
		case payoutFailed:
			result.Failed++
		}
	}

	return result, nil
}

type payoutOutcome int

const (
	payoutPaid payoutOutcome = iota
	payoutSkipped
	payoutFailed
)

func (uc *evaluationCommandsImpl) processPayout(ctx context.Context, appt *appointment.Appointment, now time.Time) payoutOutcome {
	if appt.Status != appointment.StatusPendingPayout {
		return payoutSkipped
	}

	pro, err := uc.users.FindByID(ctx, appt.ProID)
	if err != nil {
		slog.Error("failed to load professional for payout",
			"appointment_id", appt.ID, "pro_id", appt.ProID, "error", err)
		return payoutFailed
	}
	if !pro.PayoutReady() {
		// Stays PENDING_PAYOUT and will be retried once onboarding completes.
		slog.Warn("professional not ready for payout",
			"appointment_id", appt.ID, "pro_id", appt.ProID)
		return payoutSkipped
	}

	amount := appointment.ProfessionalShare(appt.AmountHT)
	if pro.TaxRegistered {
		// Tax-registered professionals collect the VAT on their share and
		// remit it themselves.
		amount += appointment.TaxAmount(appt.AmountHT)
	}

	transferID, err := uc.gateway.Transfer(ctx, amount, uc.currency, pro.StripeAccountID, map[string]string{
		"appointmentId": appt.ID.String(),
		"proId":         appt.ProID.String(),
	})
	if err != nil {
		slog.Error("payout transfer failed",
			"appointment_id", appt.ID, "pro_id", appt.ProID, "error", err)
		uc.notifier.Notify(ctx, notification.NewOperator(
			"Échec de versement",
			fmt.Sprintf("Le transfert pour le rendez-vous %s a échoué.", appt.ID),
			notification.KindPayoutFailed,
			map[string]string{"appointmentId": appt.ID.String(), "proId": appt.ProID.String()},
		))
		return payoutFailed
	}

	if err := appt.MarkPaidOut(transferID, amount, now); err != nil {
		slog.Error("paid-out transition rejected",
			"appointment_id", appt.ID, "error", err)
		return payoutFailed
	}
	if err := uc.appointments.UpdateIfStatus(ctx, appt, appointment.StatusPendingPayout); err != nil {
		slog.Error("failed to persist paid-out status",
			"appointment_id", appt.ID, "transfer_id", transferID, "error", err)
		uc.notifier.Notify(ctx, notification.NewOperator(
			"Versement sans statut",
			fmt.Sprintf("Transfert %s effectué pour le rendez-vous %s mais le statut n'a pas pu être enregistré.", transferID, appt.ID),
			notification.KindPayoutFailed,
			map[string]string{"appointmentId": appt.ID.String(), "transferId": transferID},
		))
		return payoutFailed
	}

	return payoutPaid
}
