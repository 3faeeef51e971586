package repository

import (
	"context"
	"encoding/json"

	"teleconseil/internal/domain/notification"
	"teleconseil/internal/infra"
	"teleconseil/internal/usecase"

	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) usecase.NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) Create(ctx context.Context, n notification.Notification) error {
	data := n.Data
	if data == nil {
		data = map[string]string{}
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return infra.WrapRepoErr("failed to encode notification data", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO notifications (id, user_id, title, body, kind, data)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID, n.UserID, n.Title, n.Body, n.Kind, payload)
	if err != nil {
		return infra.WrapRepoErr("failed to insert notification", err)
	}
	return nil
}
