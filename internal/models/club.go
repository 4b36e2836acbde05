package models

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/clubportal/internal/calendar"
)

// Plan selects a membership's base price and the fee rules for dependents.
type Plan struct {
	// Code is the short plan identifier (e.g., SILVER, GOLD).
	Code string `json:"code"`

	Name string `json:"name"`

	// BasePrice is the monthly price of a single membership.
	BasePrice decimal.Decimal `json:"base_price"`

	// CouplePrice is the monthly price when the membership is couple-type.
	CouplePrice decimal.Decimal `json:"couple_price"`

	// Rules are the age brackets for dependents, in evaluation order.
	Rules []AgeRule `json:"rules"`
}

// AgeRule prices dependents whose age lies in [MinAge, MaxAge].
type AgeRule struct {
	MinAge int             `json:"min_age"`
	MaxAge int             `json:"max_age"`
	Fee    decimal.Decimal `json:"fee"`
}

// ClubProfile is a club membership.
type ClubProfile struct {
	// ID is the unique identifier for the profile (UUID format).
	ID string `json:"id"`

	// UserID references the member holding the membership.
	UserID string `json:"user_id"`

	PlanCode string `json:"plan_code"`

	// Couple selects the plan's couple price instead of its base price.
	Couple bool `json:"couple"`

	// MonthlyFee caches the last computed monthly fee: base or couple price
	// plus every dependent's fee.
	MonthlyFee decimal.Decimal `json:"monthly_fee"`

	// UpdatedAt is the Unix timestamp of the last change.
	UpdatedAt int64 `json:"updated_at"`
}

// Relation is how a family member relates to the membership holder.
type Relation string

const (
	RelationSpouse    Relation = "spouse"
	RelationChild     Relation = "child"
	RelationDependent Relation = "dependent"
)

// Valid reports whether r is a known relation.
func (r Relation) Valid() bool {
	switch r {
	case RelationSpouse, RelationChild, RelationDependent:
		return true
	default:
		return false
	}
}

// FamilyMember is a dependent on a club membership.
type FamilyMember struct {
	// ID is the unique identifier for the member (UUID format).
	ID string `json:"id"`

	// ProfileID is the membership this member belongs to.
	ProfileID string `json:"profile_id"`

	Name      string        `json:"name"`
	Relation  Relation      `json:"relation"`
	BirthDate calendar.Date `json:"birth_date"`

	// Fee caches the member's monthly fee at the last recomputation.
	Fee decimal.Decimal `json:"fee"`
}
