package document

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mmynk/clubportal/internal/calendar"
	"github.com/mmynk/clubportal/internal/models"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// Escape makes stored text safe to insert into HTML.
func Escape(s string) string {
	return htmlEscaper.Replace(s)
}

// monthNames holds French month names with a capital first letter.
var monthNames [13]string

func init() {
	title := cases.Title(language.French)
	for i, name := range []string{
		"janvier", "février", "mars", "avril", "mai", "juin",
		"juillet", "août", "septembre", "octobre", "novembre", "décembre",
	} {
		monthNames[i+1] = title.String(name)
	}
}

// MonthName returns the capitalized French name of m.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m]
}

// FormatDate renders "DD Mois YYYY", e.g. "05 Janvier 2025".
// The zero date renders as "".
func FormatDate(d calendar.Date) string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%02d %s %d", d.Day, MonthName(d.Month), d.Year)
}

// FormatMonth renders "Mois YYYY", e.g. "Janvier 2025".
func FormatMonth(m calendar.Month) string {
	if m.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s %d", MonthName(m.Month), m.Year)
}

// FormatUnix renders a Unix timestamp as a UTC calendar date.
func FormatUnix(ts int64) string {
	if ts == 0 {
		return ""
	}
	return FormatDate(calendar.FromTime(time.Unix(ts, 0).UTC()))
}

// FormatAmount renders an amount with exactly two decimals: "120.00".
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// FormatMoney prefixes an amount with its currency: "USD 200.00".
func FormatMoney(currency string, amount decimal.Decimal) string {
	if currency == "" {
		return FormatAmount(amount)
	}
	return currency + " " + FormatAmount(amount)
}

// MethodLabel returns the French label of a payment method.
func MethodLabel(m models.PaymentMethod) string {
	switch m {
	case models.MethodCash:
		return "Espèces"
	case models.MethodCard:
		return "Carte"
	case models.MethodTransfer:
		return "Virement"
	default:
		return "Autre"
	}
}

// RelationLabel returns the French label of a family relation.
func RelationLabel(r models.Relation) string {
	switch r {
	case models.RelationSpouse:
		return "Conjoint"
	case models.RelationChild:
		return "Enfant"
	default:
		return "Personne à charge"
	}
}
