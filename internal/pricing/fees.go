// Package pricing computes club membership fees from a plan's prices and
// its age-bracket rules.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/clubportal/internal/calendar"
	"github.com/mmynk/clubportal/internal/models"
)

// Reason names what triggered a monthly-fee recomputation.
type Reason string

const (
	ReasonMemberAdded   Reason = "member_added"
	ReasonMemberUpdated Reason = "member_updated"
	ReasonMemberRemoved Reason = "member_removed"
	ReasonPlanChanged   Reason = "plan_changed"
)

// MatchRule returns the first rule whose inclusive [MinAge, MaxAge] range
// contains age.
func MatchRule(rules []models.AgeRule, age int) (models.AgeRule, bool) {
	for _, r := range rules {
		if r.MinAge <= age && age <= r.MaxAge {
			return r, true
		}
	}
	return models.AgeRule{}, false
}

// ChildFee returns a family member's monthly fee on today's date.
// Spouses are always free; members without a birth date or without a
// matching rule cost nothing.
func ChildFee(m models.FamilyMember, plan models.Plan, today calendar.Date) decimal.Decimal {
	if m.Relation == models.RelationSpouse || m.BirthDate.IsZero() {
		return decimal.Zero
	}
	rule, ok := MatchRule(plan.Rules, calendar.Age(m.BirthDate, today))
	if !ok {
		return decimal.Zero
	}
	return rule.Fee
}

// BasePrice returns the plan price that applies to a membership.
func BasePrice(profile models.ClubProfile, plan models.Plan) decimal.Decimal {
	if profile.Couple {
		return plan.CouplePrice
	}
	return plan.BasePrice
}

// MemberFee is one family member's share of a quote.
type MemberFee struct {
	MemberID string          `json:"member_id"`
	Name     string          `json:"name"`
	Age      int             `json:"age"`
	Fee      decimal.Decimal `json:"fee"`
}

// Quote is a membership's monthly fee broken down by member.
type Quote struct {
	Base    decimal.Decimal `json:"base"`
	Members []MemberFee     `json:"members"`
	Total   decimal.Decimal `json:"total"`
}

// MonthlyFee prices a membership: the base or couple price plus every
// dependent's fee. A zero plan (not found) prices the base at zero.
func MonthlyFee(profile models.ClubProfile, plan models.Plan, members []models.FamilyMember, today calendar.Date) Quote {
	q := Quote{
		Base:    BasePrice(profile, plan),
		Members: make([]MemberFee, 0, len(members)),
	}
	total := q.Base
	for _, m := range members {
		fee := ChildFee(m, plan, today)
		q.Members = append(q.Members, MemberFee{
			MemberID: m.ID,
			Name:     m.Name,
			Age:      calendar.Age(m.BirthDate, today),
			Fee:      fee,
		})
		total = total.Add(fee)
	}
	q.Total = total
	return q
}

// Apply writes a quote back onto the profile and its members, returning
// the members whose cached fee changed.
func (q Quote) Apply(profile *models.ClubProfile, members []models.FamilyMember) []models.FamilyMember {
	profile.MonthlyFee = q.Total

	fees := make(map[string]decimal.Decimal, len(q.Members))
	for _, mf := range q.Members {
		fees[mf.MemberID] = mf.Fee
	}

	var changed []models.FamilyMember
	for i := range members {
		fee := fees[members[i].ID]
		if !members[i].Fee.Equal(fee) {
			members[i].Fee = fee
			changed = append(changed, members[i])
		}
	}
	return changed
}
