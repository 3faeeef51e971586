//go:build unit

package user_test

import (
	"testing"

	"teleconseil/internal/domain/user"

	"github.com/stretchr/testify/assert"
)

func TestApplyRating(t *testing.T) {
	u := &user.User{Role: user.RoleProfessional}

	u.ApplyRating(4)
	assert.Equal(t, 1, u.ReviewsCount)
	assert.InDelta(t, 4.0, u.RatingAvg, 0.001)

	u.ApplyRating(5)
	assert.Equal(t, 2, u.ReviewsCount)
	assert.InDelta(t, 4.5, u.RatingAvg, 0.001)

	u.ApplyRating(2)
	assert.Equal(t, 3, u.ReviewsCount)
	assert.InDelta(t, 11.0/3.0, u.RatingAvg, 0.001)
}

func TestPayoutReady(t *testing.T) {
	u := &user.User{Role: user.RoleProfessional}
	assert.False(t, u.PayoutReady())

	u.StripeAccountID = "acct_123"
	assert.False(t, u.PayoutReady())

	u.OnboardingComplete = true
	assert.False(t, u.PayoutReady())

	u.PayoutsEnabled = true
	assert.True(t, u.PayoutReady())
}

func TestRoleValid(t *testing.T) {
	assert.True(t, user.RoleClient.Valid())
	assert.True(t, user.RoleProfessional.Valid())
	assert.True(t, user.RoleAdmin.Valid())
	assert.False(t, user.Role("operator").Valid())
}
