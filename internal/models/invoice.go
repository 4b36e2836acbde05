package models

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/clubportal/internal/calendar"
)

// MaxLineItems is the number of fixed line-item slots on an invoice.
const MaxLineItems = 7

// Invoice is the billable document for one payer-month.
type Invoice struct {
	// ID is the unique identifier for the invoice (UUID format).
	ID string `json:"id"`

	// InvoiceNo is the human-readable number printed on documents.
	InvoiceNo string `json:"invoice_no"`

	// UserID references the user the invoice was issued to.
	UserID string `json:"user_id"`

	// Month is the billing month. Family grouping keys on it, never on the
	// due or issued dates.
	Month calendar.Month `json:"month"`

	// Items are the fixed description/amount slots. Empty slots have an
	// empty description and a zero amount.
	Items [MaxLineItems]LineItem `json:"items"`

	Total     decimal.Decimal `json:"total"`
	PaidTotal decimal.Decimal `json:"paid_total"`

	// Status caches billing.DeriveStatus(Total, PaidTotal). The store
	// rewrites it in the same transaction as any change to either amount.
	Status string `json:"status"`

	DueDate  calendar.Date `json:"due_date"`
	IssuedAt calendar.Date `json:"issued_at"`

	// DocumentURL references the generated document, ProofURL the uploaded
	// proof of payment. Both are opaque storage references.
	DocumentURL string `json:"document_url,omitempty"`
	ProofURL    string `json:"proof_url,omitempty"`

	// CreatedAt is the Unix timestamp when the invoice was created.
	CreatedAt int64 `json:"created_at"`
}

// LineItem is one description/amount slot.
type LineItem struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// IsEmpty reports whether the slot carries nothing.
func (l LineItem) IsEmpty() bool {
	return l.Description == "" && l.Amount.IsZero()
}
