package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"teleconseil/internal/domain/appointment"
	"teleconseil/internal/infra"
	"teleconseil/internal/usecase"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const appointmentColumns = `
	id, pro_id, client_id, duration_minutes, date_time, time_slot,
	amount_ht, amount_total, payment_intent_id, transfer_id, amount_paid_out,
	status, room_id, call_history, evaluation_history, last_evaluated_at,
	pending_payout_since, paid_out_at, created_at, updated_at`

type AppointmentRepository struct {
	pool *pgxpool.Pool
}

func NewAppointmentRepository(pool *pgxpool.Pool) usecase.AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

func (r *AppointmentRepository) Create(ctx context.Context, a *appointment.Appointment) error {
	callHistory, evalHistory, err := marshalHistories(a)
	if err != nil {
		return infra.WrapRepoErr("failed to encode appointment histories", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO appointments (`+appointmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		a.ID, a.ProID, a.ClientID, a.Duration.Minutes(), a.DateTime, a.TimeSlot,
		a.AmountHT, a.AmountTotal, a.PaymentIntentID, a.TransferID, a.AmountPaidOut,
		a.Status, a.RoomID, callHistory, evalHistory, a.LastEvaluatedAt,
		a.PendingPayoutSince, a.PaidOutAt, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return infra.WrapRepoErr("appointment already exists", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to insert appointment", err)
	}
	return nil
}

func (r *AppointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments WHERE id = $1`, id)

	a, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("appointment not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to load appointment", err)
	}
	return a, nil
}

func (r *AppointmentRepository) FindByParticipant(ctx context.Context, userID uuid.UUID) ([]*appointment.Appointment, error) {
	return r.list(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE pro_id = $1 OR client_id = $1
		ORDER BY date_time DESC`, userID)
}

// UpdateIfStatus writes the whole aggregate guarded by the stored status. A
// zero-row update means another writer moved the document first.
func (r *AppointmentRepository) UpdateIfStatus(ctx context.Context, a *appointment.Appointment, expected appointment.Status) error {
	callHistory, evalHistory, err := marshalHistories(a)
	if err != nil {
		return infra.WrapRepoErr("failed to encode appointment histories", err)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments SET
			payment_intent_id = $3,
			transfer_id = $4,
			amount_paid_out = $5,
			status = $6,
			room_id = $7,
			call_history = $8,
			evaluation_history = $9,
			last_evaluated_at = $10,
			pending_payout_since = $11,
			paid_out_at = $12,
			updated_at = $13
		WHERE id = $1 AND status = $2`,
		a.ID, expected,
		a.PaymentIntentID, a.TransferID, a.AmountPaidOut,
		a.Status, a.RoomID, callHistory, evalHistory, a.LastEvaluatedAt,
		a.PendingPayoutSince, a.PaidOutAt, a.UpdatedAt,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update appointment", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindConflict, "appointment status changed concurrently")
	}
	return nil
}

func (r *AppointmentRepository) DeleteStaleInitiated(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM appointments
		WHERE status = $1 AND created_at < $2`,
		appointment.StatusPaymentInitiated, olderThan)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to delete stale initiations", err)
	}
	return tag.RowsAffected(), nil
}

// FindEvaluationDue returns confirmed appointments whose start time has
// passed and that carry at least one unprocessed evaluation.
func (r *AppointmentRepository) FindEvaluationDue(ctx context.Context, startedBefore time.Time) ([]*appointment.Appointment, error) {
	return r.list(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE status = $1
		  AND date_time < $2
		  AND evaluation_history @> '[{"processed": false}]'
		ORDER BY date_time`,
		appointment.StatusConfirmed, startedBefore)
}

func (r *AppointmentRepository) FindPayoutDue(ctx context.Context, pendingSince time.Time) ([]*appointment.Appointment, error) {
	return r.list(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE status = $1 AND pending_payout_since <= $2
		ORDER BY pending_payout_since`,
		appointment.StatusPendingPayout, pendingSince)
}

func (r *AppointmentRepository) FindConfirmedBetween(ctx context.Context, from, to time.Time) ([]*appointment.Appointment, error) {
	return r.list(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE status = $1 AND date_time >= $2 AND date_time < $3
		ORDER BY date_time`,
		appointment.StatusConfirmed, from, to)
}

func (r *AppointmentRepository) list(ctx context.Context, query string, args ...any) ([]*appointment.Appointment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query appointments", err)
	}
	defer rows.Close()

	var result []*appointment.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan appointment", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate appointments", err)
	}
	return result, nil
}

func marshalHistories(a *appointment.Appointment) ([]byte, []byte, error) {
	callHistory := a.CallHistory
	if callHistory == nil {
		callHistory = []appointment.CallSegment{}
	}
	evalHistory := a.EvaluationHistory
	if evalHistory == nil {
		evalHistory = []appointment.Evaluation{}
	}

	ch, err := json.Marshal(callHistory)
	if err != nil {
		return nil, nil, err
	}
	eh, err := json.Marshal(evalHistory)
	if err != nil {
		return nil, nil, err
	}
	return ch, eh, nil
}

func scanAppointment(row pgx.Row) (*appointment.Appointment, error) {
	var (
		a               appointment.Appointment
		durationMinutes int
		callHistory     []byte
		evalHistory     []byte
	)

	err := row.Scan(
		&a.ID, &a.ProID, &a.ClientID, &durationMinutes, &a.DateTime, &a.TimeSlot,
		&a.AmountHT, &a.AmountTotal, &a.PaymentIntentID, &a.TransferID, &a.AmountPaidOut,
		&a.Status, &a.RoomID, &callHistory, &evalHistory, &a.LastEvaluatedAt,
		&a.PendingPayoutSince, &a.PaidOutAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Duration = appointment.Duration(durationMinutes)
	if err := json.Unmarshal(callHistory, &a.CallHistory); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(evalHistory, &a.EvaluationHistory); err != nil {
		return nil, err
	}
	return &a, nil
}
