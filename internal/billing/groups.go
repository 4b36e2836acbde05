package billing

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Group is a family unit: the invoices of one root payer for one billing
// month. Groups are derived on every call and never persisted.
type Group struct {
	// ID is the synthetic grouping key.
	ID string `json:"id"`

	// Name is the root payer's display name.
	Name string `json:"name"`

	// Month is the billing-month key shared by every member invoice.
	Month string `json:"month"`

	// Invoices are the member rows, in input order.
	Invoices []Row `json:"invoices"`

	// Billed sums the members' totals, Paid their paid totals.
	Billed decimal.Decimal `json:"billed"`
	Paid   decimal.Decimal `json:"paid"`
}

// Remaining returns Billed - Paid. It is negative when the family overpaid.
func (g Group) Remaining() decimal.Decimal {
	return g.Billed.Sub(g.Paid)
}

// Balance returns the group's balance.
func (g Group) Balance() Balance {
	return NewBalance(g.Billed, g.Paid)
}

// Status derives the group's status from its sums.
func (g Group) Status() Status {
	return DeriveStatus(g.Billed, g.Paid)
}

// latestMonth returns the newest month key among the members.
func (g Group) latestMonth() string {
	latest := ""
	for _, r := range g.Invoices {
		if k := r.MonthKey(); k > latest {
			latest = k
		}
	}
	return latest
}

// GroupFamilies groups already-filtered rows by (root payer, billing month).
// When f selects a single payer, the key degrades to (that name, month) so
// each month of that payer is one group.
//
// Groups are ordered by their latest member month, newest first. Groups with
// the same month keep the order in which they were first seen.
func GroupFamilies(rows []Row, f Filter) []Group {
	byName := f.HasName()
	name := normalizeName(f.Name)

	index := make(map[string]int)
	var groups []Group
	for _, r := range rows {
		month := r.MonthKey()
		var key string
		if byName {
			key = "name:" + name + "|" + month
		} else {
			key = r.RootID() + "|" + month
		}

		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{
				ID:     key,
				Name:   r.RootName(),
				Month:  month,
				Billed: decimal.Zero,
				Paid:   decimal.Zero,
			})
		}

		g := &groups[i]
		g.Invoices = append(g.Invoices, r)
		g.Billed = g.Billed.Add(r.Invoice.Total)
		g.Paid = g.Paid.Add(r.Invoice.PaidTotal)
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].latestMonth() > groups[b].latestMonth()
	})

	return groups
}

// Summary holds totals across a set of groups.
type Summary struct {
	Billed    decimal.Decimal `json:"billed"`
	Paid      decimal.Decimal `json:"paid"`
	Remaining decimal.Decimal `json:"remaining"`
	Invoices  int             `json:"invoices"`
}

// Summarize sums billed, paid and remaining over groups.
func Summarize(groups []Group) Summary {
	s := Summary{Billed: decimal.Zero, Paid: decimal.Zero}
	for _, g := range groups {
		s.Billed = s.Billed.Add(g.Billed)
		s.Paid = s.Paid.Add(g.Paid)
		s.Invoices += len(g.Invoices)
	}
	s.Remaining = s.Billed.Sub(s.Paid)
	return s
}
