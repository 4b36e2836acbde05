// Package billing derives the financial state of invoices and groups them
// into family units for display.
//
// Everything here is pure: callers fetch rows from storage and pass them in,
// the package never writes anything back.
package billing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Status is the payment state of an invoice or a family group.
type Status string

const (
	StatusPending Status = "pending"
	StatusPartial Status = "partial"
	StatusPaid    Status = "paid"
)

// DeriveStatus classifies an amount pair. Exactly one status is returned for
// any non-negative pair:
//   - nothing paid (including total == 0 and paid == 0): pending
//   - paid covers a positive total: paid
//   - anything in between: partial
//
// A positive payment against a zero total counts as paid.
func DeriveStatus(total, paid decimal.Decimal) Status {
	if !paid.IsPositive() {
		return StatusPending
	}
	if paid.GreaterThanOrEqual(total) {
		return StatusPaid
	}
	return StatusPartial
}

// ParseStatus reads a status from filter input.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusPartial, StatusPaid:
		return st, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

// Label returns the French label shown on documents and in lists.
func (s Status) Label() string {
	switch s {
	case StatusPaid:
		return "Payée"
	case StatusPartial:
		return "Partiellement payée"
	default:
		return "En attente de paiement"
	}
}

// DocumentTitle returns the document title matching a status: an invoice
// while nothing is paid, a partial receipt while a balance remains, and a
// receipt once settled.
func DocumentTitle(s Status) string {
	switch s {
	case StatusPaid:
		return "Reçu"
	case StatusPartial:
		return "Reçu partiel"
	default:
		return "Facture"
	}
}
