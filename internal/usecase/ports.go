package usecase

import (
	"context"
	"time"

	"teleconseil/internal/domain/appointment"
	"teleconseil/internal/domain/notification"
	"teleconseil/internal/domain/user"

	"github.com/google/uuid"
)

// AppointmentRepository is the document-store boundary for the appointment
// aggregate. UpdateIfStatus is the per-document atomic write: it persists the
// aggregate only if the stored status still equals expected, and reports
// KindConflict otherwise.
type AppointmentRepository interface {
	Create(ctx context.Context, a *appointment.Appointment) error
	FindByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
	FindByParticipant(ctx context.Context, userID uuid.UUID) ([]*appointment.Appointment, error)
	UpdateIfStatus(ctx context.Context, a *appointment.Appointment, expected appointment.Status) error
	DeleteStaleInitiated(ctx context.Context, olderThan time.Time) (int64, error)
	FindEvaluationDue(ctx context.Context, startedBefore time.Time) ([]*appointment.Appointment, error)
	FindPayoutDue(ctx context.Context, pendingSince time.Time) ([]*appointment.Appointment, error)
	FindConfirmedBetween(ctx context.Context, from, to time.Time) ([]*appointment.Appointment, error)
}

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	UpdateRatingStats(ctx context.Context, id uuid.UUID, ratingAvg float64, reviewsCount int) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n notification.Notification) error
}

// PaymentAuthorization is the handle pair returned when a manual-capture
// authorization is opened.
type PaymentAuthorization struct {
	IntentID     string
	ClientSecret string
}

// PaymentGateway wraps the external payment processor. Amounts are minor
// currency units. All calls are safe to retry with the same handle.
type PaymentGateway interface {
	CreateAuthorization(ctx context.Context, amount int64, currency string, metadata map[string]string) (*PaymentAuthorization, error)
	Capture(ctx context.Context, intentID string) error
	CancelAuthorization(ctx context.Context, intentID string) error
	// Refund refunds the captured amount; nil means the full amount.
	Refund(ctx context.Context, intentID string, amount *int64) error
	Transfer(ctx context.Context, amount int64, currency, destinationAccount string, metadata map[string]string) (string, error)
}

// Notifier persists a notification record and pushes it fire-and-forget;
// failures are logged, never propagated.
type Notifier interface {
	Notify(ctx context.Context, n notification.Notification)
}

// ReminderEntry is the denormalized slice of a confirmed appointment kept in
// the side-index so the minute-resolution scan never touches the main store.
type ReminderEntry struct {
	ID              uuid.UUID `json:"id"`
	ProID           uuid.UUID `json:"proId"`
	ClientID        uuid.UUID `json:"clientId"`
	DateTime        time.Time `json:"dateTime"`
	DurationMinutes int       `json:"durationMinutes"`
	TimeSlot        string    `json:"timeSlot"`
	RoomID          string    `json:"roomId,omitempty"`
}

// ReminderIndex holds the daily snapshot. Entries are added on confirm,
// removed on any exit from CONFIRMED, and rebuilt wholesale once a day.
// ClaimWindow returns true exactly once per (appointment, window) so
// reminders fire at most once per band.
type ReminderIndex interface {
	Add(ctx context.Context, e ReminderEntry) error
	Remove(ctx context.Context, id uuid.UUID) error
	Rebuild(ctx context.Context, entries []ReminderEntry) error
	Entries(ctx context.Context) ([]ReminderEntry, error)
	ClaimWindow(ctx context.Context, id uuid.UUID, window string) (bool, error)
}

type InvoicePair struct {
	Client       string
	Professional string
}

// InvoiceGenerator renders the two invoices on confirmation. Rendering
// itself is an external collaborator; this port only hands back references.
type InvoiceGenerator interface {
	Generate(ctx context.Context, a *appointment.Appointment) (InvoicePair, error)
}

// ChatActivator tells the chat/video subsystem a room is live.
type ChatActivator interface {
	Activate(ctx context.Context, appointmentID uuid.UUID, roomID string) error
}
