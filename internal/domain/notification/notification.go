package notification

import (
	"time"

	"github.com/google/uuid"
)

// Kinds routed to user devices or to the operator feed.
const (
	KindNewAppointment       = "new_appointment"
	KindAppointmentConfirmed = "appointment_confirmed"
	KindAppointmentCancelled = "appointment_cancelled"
	KindReminder             = "appointment_reminder"
	KindEndingSoon           = "appointment_ending_soon"
	KindUpcoming             = "appointment_upcoming"
	KindLowRating            = "evaluation_low_rating"
	KindShortCall            = "evaluation_short_call"
	KindPayoutFailed         = "payout_failed"
	KindReconciliation       = "reconciliation_required"
)

// Notification is persisted as a record and pushed fire-and-forget. An
// operator notification has no user id.
type Notification struct {
	ID        uuid.UUID
	UserID    *uuid.UUID
	Title     string
	Body      string
	Kind      string
	Data      map[string]string
	CreatedAt time.Time
}

func New(userID uuid.UUID, title, body, kind string, data map[string]string) Notification {
	uid := userID
	return Notification{
		ID:     uuid.New(),
		UserID: &uid,
		Title:  title,
		Body:   body,
		Kind:   kind,
		Data:   data,
	}
}

// NewOperator creates an operator-facing notification (admin dashboard feed).
func NewOperator(title, body, kind string, data map[string]string) Notification {
	return Notification{
		ID:    uuid.New(),
		Title: title,
		Body:  body,
		Kind:  kind,
		Data:  data,
	}
}
