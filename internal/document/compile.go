// Package document compiles HTML templates with {{token}} placeholders into
// final documents (invoices, club invoices, membership sheets, bulletins).
//
// Compilation is a pure function of the template and a typed record: no
// clock, no storage, no network. The same input always yields the same bytes.
package document

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/clubportal/internal/billing"
	"github.com/mmynk/clubportal/internal/models"
	"github.com/mmynk/clubportal/internal/pricing"
)

// Markers delimiting the payments container in a template. When no payment
// qualifies the container is removed together with its markers.
const (
	PaymentsStart = "<!-- payments:start -->"
	PaymentsEnd   = "<!-- payments:end -->"
)

const (
	emptyItemsRow  = `<tr><td colspan="2">Aucun article</td></tr>`
	emptyFamilyRow = `<tr><td colspan="5">Aucun membre</td></tr>`
	emptyGradesRow = `<tr><td colspan="3">Aucune note</td></tr>`
)

var (
	tokenPattern    = regexp.MustCompile(`\{\{([a-z0-9_]+)\}\}`)
	paymentsPattern = regexp.MustCompile(`(?s)<!--\s*payments:start\s*-->.*?<!--\s*payments:end\s*-->`)
	markerPattern   = regexp.MustCompile(`<!--\s*payments:(?:start|end)\s*-->`)
)

// Compiler turns templates and records into documents.
type Compiler struct {
	// Currency prefixes amounts in item and payment rows.
	Currency string
}

// NewCompiler returns a compiler for the given currency code.
func NewCompiler(currency string) *Compiler {
	return &Compiler{Currency: currency}
}

// CompileInvoice renders an invoice or membership invoice.
func (c *Compiler) CompileInvoice(kind Kind, tmpl string, rec InvoiceRecord) (string, error) {
	if kind != KindInvoice && kind != KindMembershipInvoice {
		return "", fmt.Errorf("%w: %q is not an invoice kind", ErrUnknownKind, kind)
	}
	if err := Validate(kind, tmpl); err != nil {
		return "", err
	}
	values, paymentRows := c.invoiceValues(rec)
	return finish(substitute(tmpl, values), paymentRows), nil
}

// CompileClubInvoice renders a club booking invoice.
func (c *Compiler) CompileClubInvoice(tmpl string, rec ClubInvoiceRecord) (string, error) {
	if err := Validate(KindClubInvoice, tmpl); err != nil {
		return "", err
	}
	values, paymentRows := c.invoiceValues(rec.InvoiceRecord)

	values[TokenSubtotal] = FormatAmount(itemsSubtotal(rec.Invoice.Items))
	values[TokenDiscountLabel] = Escape(rec.Discount.Label)
	values[TokenDiscountAmount] = FormatAmount(rec.Discount.Amount)
	values[TokenBookingResource] = Escape(rec.Booking.Resource)
	values[TokenBookingDate] = FormatDate(rec.Booking.Date)
	values[TokenBookingStart] = Escape(rec.Booking.Start)
	values[TokenBookingEnd] = Escape(rec.Booking.End)

	return finish(substitute(tmpl, values), paymentRows), nil
}

// CompileMembershipSheet renders a membership sheet with one row per family
// member. Fees are recomputed from the plan on rec.Today.
func (c *Compiler) CompileMembershipSheet(tmpl string, rec MembershipRecord) (string, error) {
	if err := Validate(KindFicheTechnique, tmpl); err != nil {
		return "", err
	}
	quote := pricing.MonthlyFee(rec.Profile, rec.Plan, rec.Family, rec.Today)

	var rows strings.Builder
	for i, m := range rec.Family {
		fmt.Fprintf(&rows, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%d</td><td>%s</td></tr>",
			Escape(m.Name),
			RelationLabel(m.Relation),
			FormatDate(m.BirthDate),
			quote.Members[i].Age,
			FormatMoney(c.Currency, quote.Members[i].Fee),
		)
	}
	if rows.Len() == 0 {
		rows.WriteString(emptyFamilyRow)
	}

	values := map[Token]string{
		TokenMemberName:    Escape(rec.Member.Name),
		TokenClientName:    Escape(rec.Member.Name),
		TokenClientEmail:   Escape(rec.Member.Email),
		TokenClientAddress: Escape(rec.Member.Address),
		TokenClientPhone:   Escape(rec.Member.Phone),
		TokenBirthDate:     FormatDate(rec.Birth),
		TokenPlanCode:      Escape(rec.Profile.PlanCode),
		TokenPlanName:      Escape(rec.Plan.Name),
		TokenFamilyMembers: rows.String(),
		TokenMonthlyFee:    FormatAmount(quote.Total),
		TokenCurrency:      Escape(c.Currency),
	}
	return substitute(tmpl, values), nil
}

// CompileBulletin renders a student bulletin.
func (c *Compiler) CompileBulletin(tmpl string, rec BulletinRecord) (string, error) {
	if err := Validate(KindBulletin, tmpl); err != nil {
		return "", err
	}

	var rows strings.Builder
	for _, g := range rec.Grades {
		coef := g.Coefficient
		if !coef.IsPositive() {
			coef = decimal.NewFromInt(1)
		}
		fmt.Fprintf(&rows, "<tr><td>%s</td><td>%s</td><td>%s</td></tr>",
			Escape(g.Subject), FormatAmount(g.Score), coef.String())
	}
	if rows.Len() == 0 {
		rows.WriteString(emptyGradesRow)
	}

	average := "—"
	if avg, ok := rec.Average(); ok {
		average = FormatAmount(avg)
	}

	values := map[Token]string{
		TokenStudentName: Escape(rec.StudentName),
		TokenClassName:   Escape(rec.ClassName),
		TokenPeriod:      Escape(rec.Period),
		TokenGrades:      rows.String(),
		TokenAverage:     average,
		TokenRemarks:     Escape(rec.Remarks),
	}
	return substitute(tmpl, values), nil
}

// invoiceValues computes the token values shared by invoice-like kinds and
// returns the number of payment rows rendered.
func (c *Compiler) invoiceValues(rec InvoiceRecord) (map[Token]string, int) {
	inv := rec.Invoice
	status := billing.DeriveStatus(inv.Total, inv.PaidTotal)
	balance := billing.NewBalance(inv.Total, inv.PaidTotal)
	payments, paymentRows := c.paymentRows(rec.Payments)

	values := map[Token]string{
		TokenClientName:    Escape(rec.Client.Name),
		TokenClientEmail:   Escape(rec.Client.Email),
		TokenClientAddress: Escape(rec.Client.Address),
		TokenClientPhone:   Escape(rec.Client.Phone),
		TokenInvoiceNo:     Escape(inv.InvoiceNo),
		TokenIssuedAt:      FormatDate(inv.IssuedAt),
		TokenDueDate:       FormatDate(inv.DueDate),
		TokenMonth:         FormatMonth(inv.Month),
		TokenItems:         c.itemRows(inv.Items),
		TokenTotal:         FormatAmount(inv.Total),
		TokenPaidTotal:     FormatAmount(inv.PaidTotal),
		TokenBalanceDue:    FormatAmount(balance.Amount()),
		TokenBalanceLabel:  balance.Label(),
		TokenPaymentStatus: status.Label(),
		TokenDocTitle:      billing.DocumentTitle(status),
		TokenPayments:      payments,
		TokenCurrency:      Escape(c.Currency),
	}
	return values, paymentRows
}

// itemRows renders the qualifying slots: a non-blank description and a
// positive amount. With none, a single placeholder row is rendered.
func (c *Compiler) itemRows(items [models.MaxLineItems]models.LineItem) string {
	var b strings.Builder
	for _, it := range items {
		if !qualifies(it) {
			continue
		}
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td></tr>",
			Escape(strings.TrimSpace(it.Description)), FormatMoney(c.Currency, it.Amount))
	}
	if b.Len() == 0 {
		return emptyItemsRow
	}
	return b.String()
}

// paymentRows renders one row per payment with a positive amount.
func (c *Compiler) paymentRows(payments []models.Payment) (string, int) {
	var b strings.Builder
	n := 0
	for _, p := range payments {
		if !p.Amount.IsPositive() {
			continue
		}
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td></tr>",
			FormatUnix(p.PaidAt), MethodLabel(p.Method), FormatMoney(c.Currency, p.Amount))
		n++
	}
	return b.String(), n
}

func qualifies(it models.LineItem) bool {
	return strings.TrimSpace(it.Description) != "" && it.Amount.IsPositive()
}

func itemsSubtotal(items [models.MaxLineItems]models.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		if qualifies(it) {
			sum = sum.Add(it.Amount)
		}
	}
	return sum
}

// substitute replaces every recognized token in one pass. Unrecognized
// tokens, and recognized tokens without a value for this kind, are kept
// verbatim. Inserted values are never rescanned.
func substitute(tmpl string, values map[Token]string) string {
	return tokenPattern.ReplaceAllStringFunc(tmpl, func(m string) string {
		name := m[2 : len(m)-2]
		if v, ok := values[Token(name)]; ok {
			return v
		}
		return m
	})
}

// finish drops the payments container when no payment row was rendered,
// and only its markers otherwise.
func finish(html string, paymentRows int) string {
	if paymentRows == 0 {
		return paymentsPattern.ReplaceAllString(html, "")
	}
	return markerPattern.ReplaceAllString(html, "")
}
