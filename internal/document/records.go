package document

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/clubportal/internal/calendar"
	"github.com/mmynk/clubportal/internal/models"
)

// Party is the person a document is addressed to.
type Party struct {
	Name    string
	Email   string
	Address string
	Phone   string
}

// PartyFromUser copies the addressable fields of a user.
func PartyFromUser(u models.User) Party {
	return Party{Name: u.Name, Email: u.Email, Address: u.Address, Phone: u.Phone}
}

// InvoiceRecord is everything an invoice or membership invoice shows.
// Payments are rendered in the order given; callers sort them by date.
type InvoiceRecord struct {
	Client   Party
	Invoice  models.Invoice
	Payments []models.Payment
}

// Booking is the reservation a club invoice bills.
type Booking struct {
	Resource string
	Date     calendar.Date
	Start    string // "HH:MM"
	End      string
}

// Discount is a reduction already reflected in the invoice total.
type Discount struct {
	Label  string
	Amount decimal.Decimal
}

// ClubInvoiceRecord is an invoice for a club booking.
type ClubInvoiceRecord struct {
	InvoiceRecord
	Booking  Booking
	Discount Discount
}

// MembershipRecord is a club membership sheet (fiche technique).
type MembershipRecord struct {
	Member  Party
	Birth   calendar.Date
	Profile models.ClubProfile
	Plan    models.Plan
	Family  []models.FamilyMember

	// Today is the date ages are computed on. It is part of the record so
	// compilation stays a pure function of its input.
	Today calendar.Date
}

// Grade is one subject line of a bulletin.
type Grade struct {
	Subject     string
	Score       decimal.Decimal
	Coefficient decimal.Decimal
}

// BulletinRecord is a student's report for one period.
type BulletinRecord struct {
	StudentName string
	ClassName   string
	Period      string
	Grades      []Grade
	Remarks     string
}

// Average returns the coefficient-weighted average of the grades.
// A coefficient of zero or less counts as 1. ok is false without grades.
func (b BulletinRecord) Average() (avg decimal.Decimal, ok bool) {
	if len(b.Grades) == 0 {
		return decimal.Zero, false
	}
	sum, weights := decimal.Zero, decimal.Zero
	for _, g := range b.Grades {
		coef := g.Coefficient
		if !coef.IsPositive() {
			coef = decimal.NewFromInt(1)
		}
		sum = sum.Add(g.Score.Mul(coef))
		weights = weights.Add(coef)
	}
	return sum.DivRound(weights, 2), true
}
