package billing

import (
	"strings"

	"github.com/mmynk/clubportal/internal/calendar"
	"github.com/mmynk/clubportal/internal/models"
)

// Row is an invoice joined with the names needed to group it by family.
type Row struct {
	Invoice models.Invoice `json:"invoice"`

	// OwnerName is the name of the invoice's user.
	OwnerName string `json:"owner_name"`

	// ParentID and ParentName identify the guardian when the owner is a
	// dependent. Both are empty for root payers.
	ParentID   string `json:"parent_id,omitempty"`
	ParentName string `json:"parent_name,omitempty"`
}

// RootID returns the ID of the payer this row is billed to.
func (r Row) RootID() string {
	if r.ParentID != "" {
		return r.ParentID
	}
	return r.Invoice.UserID
}

// RootName returns the name of the payer this row is billed to.
func (r Row) RootName() string {
	if r.ParentID != "" && r.ParentName != "" {
		return r.ParentName
	}
	return r.OwnerName
}

// MonthKey returns the billing-month key of the invoice.
func (r Row) MonthKey() string {
	return r.Invoice.Month.Key()
}

// ReferenceDate is the date used by date-range filters: the due date when
// present, otherwise the issued date.
func (r Row) ReferenceDate() calendar.Date {
	if !r.Invoice.DueDate.IsZero() {
		return r.Invoice.DueDate
	}
	return r.Invoice.IssuedAt
}

// Status derives the row's status from its amounts.
func (r Row) Status() Status {
	return DeriveStatus(r.Invoice.Total, r.Invoice.PaidTotal)
}

// Filter selects which invoice rows are shown.
type Filter struct {
	// Status keeps rows whose derived status matches. Empty keeps all.
	Status Status `json:"status,omitempty"`

	// Name selects a single payer: rows whose owner or root payer has this
	// name (case-insensitive). Empty keeps all.
	Name string `json:"name,omitempty"`

	// From and To bound the reference date, inclusive. Zero means open.
	From calendar.Date `json:"from"`
	To   calendar.Date `json:"to"`

	// Month keeps rows of one billing month ("YYYY-MM"). Empty keeps all.
	Month string `json:"month,omitempty"`
}

// IsZero reports whether the filter keeps every row.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// HasName reports whether a single payer is selected.
func (f Filter) HasName() bool {
	return normalizeName(f.Name) != ""
}

// Apply filters rows. Status and date range are applied first, then the
// name and month filters decide which of the remaining rows enter grouping.
// The input order is preserved.
func Apply(rows []Row, f Filter) []Row {
	name := normalizeName(f.Name)
	month := strings.TrimSpace(f.Month)

	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if f.Status != "" && r.Status() != f.Status {
			continue
		}
		if !inRange(r.ReferenceDate(), f.From, f.To) {
			continue
		}
		if name != "" && normalizeName(r.OwnerName) != name && normalizeName(r.RootName()) != name {
			continue
		}
		if month != "" && r.MonthKey() != month {
			continue
		}
		out = append(out, r)
	}
	return out
}

// inRange reports whether d lies in [from, to]. A row without any date never
// matches a bounded range.
func inRange(d, from, to calendar.Date) bool {
	if from.IsZero() && to.IsZero() {
		return true
	}
	if d.IsZero() {
		return false
	}
	if !from.IsZero() && d.Before(from) {
		return false
	}
	if !to.IsZero() && d.After(to) {
		return false
	}
	return true
}

func normalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
