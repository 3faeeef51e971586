package notify

import (
	"context"
	"log/slog"

	"teleconseil/internal/domain/notification"
	"teleconseil/internal/pkg/clock"
	"teleconseil/internal/usecase"
)

// Notifier persists each notification and pushes it fire-and-forget. Push
// delivery is owned by a separate gateway; here it is a structured log line
// that the delivery worker tails.
type Notifier struct {
	repo  usecase.NotificationRepository
	clock clock.Clock
}

func NewNotifier(repo usecase.NotificationRepository, clk clock.Clock) usecase.Notifier {
	return &Notifier{repo: repo, clock: clk}
}

func (n *Notifier) Notify(ctx context.Context, msg notification.Notification) {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = n.clock.Now()
	}

	if err := n.repo.Create(ctx, msg); err != nil {
		slog.Error("failed to persist notification",
			"kind", msg.Kind, "error", err)
		return
	}

	if msg.UserID != nil {
		slog.Info("notification dispatched",
			"kind", msg.Kind, "user_id", *msg.UserID, "title", msg.Title)
	} else {
		slog.Info("operator notification dispatched",
			"kind", msg.Kind, "title", msg.Title)
	}
}
