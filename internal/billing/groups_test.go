package billing

import (
	"fmt"
	"testing"
	"time"

	"github.com/mmynk/clubportal/internal/calendar"
	"github.com/mmynk/clubportal/internal/models"
)

func month(s string) calendar.Month {
	m, err := calendar.ParseMonth(s)
	if err != nil {
		panic(err)
	}
	return m
}

func row(id, owner, ownerName, parent, parentName, mon, total, paid string) Row {
	return Row{
		Invoice: models.Invoice{
			ID:        id,
			UserID:    owner,
			Month:     month(mon),
			Total:     d(total),
			PaidTotal: d(paid),
		},
		OwnerName:  ownerName,
		ParentID:   parent,
		ParentName: parentName,
	}
}

func TestGroupFamiliesParentAndDependent(t *testing.T) {
	rows := []Row{
		row("inv-a", "A", "Alice Martin", "", "", "2025-01", "100", "100"),
		row("inv-b", "B", "Bob Martin", "A", "Alice Martin", "2025-01", "50", "0"),
	}

	groups := GroupFamilies(rows, Filter{})
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}

	g := groups[0]
	if g.ID != "A|2025-01" {
		t.Errorf("ID = %q, want A|2025-01", g.ID)
	}
	if g.Name != "Alice Martin" {
		t.Errorf("Name = %q, want Alice Martin", g.Name)
	}
	if len(g.Invoices) != 2 {
		t.Errorf("expected 2 invoices, got %d", len(g.Invoices))
	}
	if !g.Billed.Equal(d("150")) {
		t.Errorf("Billed = %s, want 150", g.Billed)
	}
	if !g.Paid.Equal(d("100")) {
		t.Errorf("Paid = %s, want 100", g.Paid)
	}
	if !g.Remaining().Equal(d("50")) {
		t.Errorf("Remaining = %s, want 50", g.Remaining())
	}
	if g.Status() != StatusPartial {
		t.Errorf("Status = %s, want partial", g.Status())
	}
}

func TestGroupFamiliesKeysOnBillingMonthOnly(t *testing.T) {
	a := row("inv-1", "A", "Alice", "", "", "2025-01", "10", "0")
	a.Invoice.DueDate = calendar.New(2025, time.February, 10)
	b := row("inv-2", "A", "Alice", "", "", "2025-01", "10", "0")
	b.Invoice.IssuedAt = calendar.New(2024, time.December, 28)

	groups := GroupFamilies([]Row{a, b}, Filter{})
	if len(groups) != 1 {
		t.Fatalf("expected one group for one billing month, got %d", len(groups))
	}
}

func TestGroupFamiliesOrdering(t *testing.T) {
	rows := []Row{
		row("1", "A", "Alice", "", "", "2025-01", "10", "0"),
		row("2", "C", "Carol", "", "", "2025-03", "10", "0"),
		row("3", "B", "Bruno", "", "", "2025-01", "10", "0"),
		row("4", "D", "Dina", "", "", "2025-03", "10", "0"),
		row("5", "E", "Emma", "", "", "2024-12", "10", "0"),
	}

	groups := GroupFamilies(rows, Filter{})
	var got []string
	for _, g := range groups {
		got = append(got, g.Name)
	}

	// Newest month first; equal months keep first-seen order.
	want := []string{"Carol", "Dina", "Alice", "Bruno", "Emma"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestGroupFamiliesWithNameFilter(t *testing.T) {
	rows := []Row{
		row("1", "A", "Alice", "", "", "2025-01", "100", "0"),
		row("2", "B", "Bob", "A", "Alice", "2025-01", "40", "0"),
		row("3", "A", "Alice", "", "", "2025-02", "100", "100"),
		row("4", "C", "Carol", "", "", "2025-02", "70", "0"),
	}

	f := Filter{Name: "  alice "}
	groups := GroupFamilies(Apply(rows, f), f)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups (one per month), got %d", len(groups))
	}
	if groups[0].Month != "2025-02" || groups[1].Month != "2025-01" {
		t.Errorf("months = %s, %s; want newest first", groups[0].Month, groups[1].Month)
	}
	if len(groups[1].Invoices) != 2 {
		t.Errorf("January group should hold the dependent's invoice too, got %d invoices", len(groups[1].Invoices))
	}
	if groups[0].ID != "name:alice|2025-02" {
		t.Errorf("ID = %q", groups[0].ID)
	}
}

func TestGroupOverpaidRemaining(t *testing.T) {
	groups := GroupFamilies([]Row{
		row("1", "A", "Alice", "", "", "2025-01", "100", "130"),
	}, Filter{})

	b := groups[0].Balance()
	if !b.Overpaid() {
		t.Fatal("expected overpaid group")
	}
	if !groups[0].Remaining().Equal(d("-30")) {
		t.Errorf("Remaining = %s, want -30 (not clamped)", groups[0].Remaining())
	}
	if !b.Amount().Equal(d("30")) || b.Label() != "Trop-perçu" {
		t.Errorf("display = %s %q", b.Amount(), b.Label())
	}
}

func TestApply(t *testing.T) {
	pending := row("p", "A", "Alice", "", "", "2025-01", "100", "0")
	pending.Invoice.DueDate = calendar.New(2025, time.January, 31)
	partial := row("q", "B", "Bob", "", "", "2025-02", "100", "20")
	partial.Invoice.IssuedAt = calendar.New(2025, time.February, 3)
	paid := row("r", "C", "Carol", "", "", "2025-03", "100", "100")
	paid.Invoice.DueDate = calendar.New(2025, time.March, 31)
	paid.Invoice.IssuedAt = calendar.New(2025, time.January, 1)
	undated := row("s", "D", "Dina", "", "", "2025-03", "100", "0")

	rows := []Row{pending, partial, paid, undated}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"no filter", Filter{}, []string{"p", "q", "r", "s"}},
		{"status pending", Filter{Status: StatusPending}, []string{"p", "s"}},
		{"status paid", Filter{Status: StatusPaid}, []string{"r"}},
		{
			"range prefers due date",
			Filter{From: calendar.New(2025, time.January, 1), To: calendar.New(2025, time.February, 28)},
			[]string{"p", "q"},
		},
		{"open-ended range", Filter{From: calendar.New(2025, time.March, 1)}, []string{"r"}},
		{"month", Filter{Month: "2025-03"}, []string{"r", "s"}},
		{"name", Filter{Name: "BOB"}, []string{"q"}},
		{"status and month", Filter{Status: StatusPending, Month: "2025-03"}, []string{"s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, r := range Apply(rows, tt.filter) {
				got = append(got, r.Invoice.ID)
			}
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("Apply() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	groups := GroupFamilies([]Row{
		row("1", "A", "Alice", "", "", "2025-01", "100", "100"),
		row("2", "B", "Bob", "", "", "2025-01", "50", "0"),
		row("3", "B", "Bob", "", "", "2025-02", "50", "60"),
	}, Filter{})

	s := Summarize(groups)
	if !s.Billed.Equal(d("200")) || !s.Paid.Equal(d("160")) || !s.Remaining.Equal(d("40")) {
		t.Errorf("Summarize = %+v", s)
	}
	if s.Invoices != 3 {
		t.Errorf("Invoices = %d, want 3", s.Invoices)
	}
}
