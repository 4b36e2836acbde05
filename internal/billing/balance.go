package billing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/clubportal/internal/models"
)

// ErrInvalidSlot is returned for a line-item slot outside [0, MaxLineItems).
var ErrInvalidSlot = errors.New("invalid line item slot")

// Balance is what remains to be paid on an amount pair. Remaining is never
// clamped: a negative value means the payer paid more than was billed.
type Balance struct {
	Remaining decimal.Decimal `json:"remaining"`
}

// NewBalance returns total - paid.
func NewBalance(total, paid decimal.Decimal) Balance {
	return Balance{Remaining: total.Sub(paid)}
}

// Overpaid reports whether more was paid than billed.
func (b Balance) Overpaid() bool {
	return b.Remaining.IsNegative()
}

// Settled reports whether nothing remains and nothing was overpaid.
func (b Balance) Settled() bool {
	return b.Remaining.IsZero()
}

// Amount returns the absolute remaining amount, to be shown next to Label.
func (b Balance) Amount() decimal.Decimal {
	return b.Remaining.Abs()
}

// Label names what Amount represents.
func (b Balance) Label() string {
	switch {
	case b.Overpaid():
		return "Trop-perçu"
	case b.Settled():
		return "Soldé"
	default:
		return "Reste à payer"
	}
}

// SlotTotal sums the amounts of a set of line-item slots.
func SlotTotal(amounts ...decimal.Decimal) decimal.Decimal {
	return decimal.Sum(decimal.Zero, amounts...)
}

// CheckSlot validates a zero-based line-item slot index.
func CheckSlot(slot int) error {
	if slot < 0 || slot >= models.MaxLineItems {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	return nil
}

// ItemsTotal sums the amounts of every slot of an invoice.
func ItemsTotal(items [models.MaxLineItems]models.LineItem) decimal.Decimal {
	amounts := make([]decimal.Decimal, 0, len(items))
	for _, it := range items {
		amounts = append(amounts, it.Amount)
	}
	return SlotTotal(amounts...)
}
