package repository

import (
	"context"
	"errors"

	"teleconseil/internal/domain/user"
	"teleconseil/internal/infra"
	"teleconseil/internal/usecase"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) usecase.UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var u user.User
	err := r.pool.QueryRow(ctx, `
		SELECT id, role, display_name, rating_avg, reviews_count,
		       tax_registered, stripe_account_id, onboarding_complete, payouts_enabled
		FROM users WHERE id = $1`, id,
	).Scan(
		&u.ID, &u.Role, &u.DisplayName, &u.RatingAvg, &u.ReviewsCount,
		&u.TaxRegistered, &u.StripeAccountID, &u.OnboardingComplete, &u.PayoutsEnabled,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to load user", err)
	}
	return &u, nil
}

func (r *UserRepository) UpdateRatingStats(ctx context.Context, id uuid.UUID, ratingAvg float64, reviewsCount int) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET rating_avg = $2, reviews_count = $3, updated_at = now()
		WHERE id = $1`, id, ratingAvg, reviewsCount)
	if err != nil {
		return infra.WrapRepoErr("failed to update rating stats", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindNotFound, "user not found")
	}
	return nil
}
