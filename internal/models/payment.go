package models

import "github.com/shopspring/decimal"

// PaymentMethod is how a payment was made.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodCard     PaymentMethod = "card"
	MethodTransfer PaymentMethod = "transfer"
	MethodOther    PaymentMethod = "other"
)

// Valid reports whether m is a known method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodTransfer, MethodOther:
		return true
	default:
		return false
	}
}

// Payment is a monetary event applied against one invoice. It counts toward
// the invoice's paid total only once approved.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string `json:"id"`

	// InvoiceID is the invoice this payment settles.
	InvoiceID string `json:"invoice_id"`

	Amount decimal.Decimal `json:"amount"`
	Method PaymentMethod   `json:"method"`

	// Approved is set once an admin confirmed the payment.
	Approved bool `json:"approved"`

	// ApprovedBy is the admin who approved it (audit only).
	ApprovedBy string `json:"approved_by,omitempty"`

	// PaidAt is the Unix timestamp of the payment.
	PaidAt int64 `json:"paid_at"`

	Note     string `json:"note,omitempty"`
	ProofURL string `json:"proof_url,omitempty"`
}
