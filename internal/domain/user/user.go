package user

import (
	"github.com/google/uuid"
)

type Role string

const (
	RoleClient       Role = "client"
	RoleProfessional Role = "professional"
	RoleAdmin        Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleProfessional, RoleAdmin:
		return true
	}
	return false
}

// User mirrors the externally-owned account record. Only the fields the
// appointment lifecycle reads (role checks, rating stats, payout readiness)
// are kept here.
type User struct {
	ID                 uuid.UUID
	Role               Role
	DisplayName        string
	RatingAvg          float64
	ReviewsCount       int
	TaxRegistered      bool
	StripeAccountID    string
	OnboardingComplete bool
	PayoutsEnabled     bool
}

func (u *User) IsProfessional() bool {
	return u.Role == RoleProfessional
}

// PayoutReady reports whether the professional's connected account can
// receive transfers.
func (u *User) PayoutReady() bool {
	return u.StripeAccountID != "" && u.OnboardingComplete && u.PayoutsEnabled
}

// ApplyRating folds one more rating into the running average.
func (u *User) ApplyRating(rating int) {
	newCount := u.ReviewsCount + 1
	u.RatingAvg = (u.RatingAvg*float64(u.ReviewsCount) + float64(rating)) / float64(newCount)
	u.ReviewsCount = newCount
}
