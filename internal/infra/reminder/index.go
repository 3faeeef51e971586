package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"teleconseil/internal/infra"
	"teleconseil/internal/usecase"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	indexKey = "reminder:index"
	// firedTTL keeps fired-window markers long enough to outlive the widest
	// band (the two-day notice) plus clock drift.
	firedTTL = 72 * time.Hour
)

// Index keeps the daily reminder snapshot in a redis hash keyed by
// appointment id, with per-window fired markers for at-most-once delivery.
type Index struct {
	client *redis.Client
}

func NewIndex(client *redis.Client) usecase.ReminderIndex {
	return &Index{client: client}
}

func (i *Index) Add(ctx context.Context, e usecase.ReminderEntry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return infra.WrapRepoErr("failed to encode reminder entry", err)
	}
	if err := i.client.HSet(ctx, indexKey, e.ID.String(), payload).Err(); err != nil {
		return infra.WrapRepoErr("failed to add reminder entry", err)
	}
	return nil
}

func (i *Index) Remove(ctx context.Context, id uuid.UUID) error {
	if err := i.client.HDel(ctx, indexKey, id.String()).Err(); err != nil {
		return infra.WrapRepoErr("failed to remove reminder entry", err)
	}
	return nil
}

// Rebuild replaces the snapshot wholesale. Delete-then-fill runs in a
// pipeline so a concurrent scan never observes a half-empty index.
func (i *Index) Rebuild(ctx context.Context, entries []usecase.ReminderEntry) error {
	pipe := i.client.TxPipeline()
	pipe.Del(ctx, indexKey)
	for _, e := range entries {
		payload, err := json.Marshal(e)
		if err != nil {
			return infra.WrapRepoErr("failed to encode reminder entry", err)
		}
		pipe.HSet(ctx, indexKey, e.ID.String(), payload)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return infra.WrapRepoErr("failed to rebuild reminder index", err)
	}
	return nil
}

func (i *Index) Entries(ctx context.Context) ([]usecase.ReminderEntry, error) {
	raw, err := i.client.HGetAll(ctx, indexKey).Result()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to read reminder index", err)
	}

	entries := make([]usecase.ReminderEntry, 0, len(raw))
	for _, v := range raw {
		var e usecase.ReminderEntry
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			return nil, infra.WrapRepoErr("failed to decode reminder entry", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ClaimWindow returns true exactly once per (appointment, window): SETNX on
// a marker key that expires after the band has long passed.
func (i *Index) ClaimWindow(ctx context.Context, id uuid.UUID, window string) (bool, error) {
	key := fmt.Sprintf("reminder:fired:%s:%s", id, window)
	ok, err := i.client.SetNX(ctx, key, 1, firedTTL).Result()
	if err != nil {
		return false, infra.WrapRepoErr("failed to claim reminder window", err)
	}
	return ok, nil
}
