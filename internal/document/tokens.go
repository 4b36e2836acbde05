package document

import (
	"fmt"
	"strings"
)

// Token is a recognized placeholder name. The set is closed: anything else
// between double braces is left untouched by the compiler.
type Token string

// Generic tokens shared by every invoice-like document.
const (
	TokenClientName    Token = "client_name"
	TokenClientEmail   Token = "client_email"
	TokenClientAddress Token = "client_address"
	TokenClientPhone   Token = "client_phone"
	TokenInvoiceNo     Token = "invoice_no"
	TokenIssuedAt      Token = "issued_at"
	TokenDueDate       Token = "due_date"
	TokenMonth         Token = "month"
	TokenItems         Token = "items"
	TokenTotal         Token = "total"
	TokenPaidTotal     Token = "paid_total"
	TokenBalanceDue    Token = "balance_due"
	TokenBalanceLabel  Token = "balance_label"
	TokenPaymentStatus Token = "payment_status"
	TokenDocTitle      Token = "doc_title"
	TokenPayments      Token = "payments"
	TokenCurrency      Token = "currency"
)

// Club invoice tokens.
const (
	TokenSubtotal        Token = "subtotal"
	TokenDiscountLabel   Token = "discount_label"
	TokenDiscountAmount  Token = "discount_amount"
	TokenBookingResource Token = "booking_resource"
	TokenBookingDate     Token = "booking_date"
	TokenBookingStart    Token = "booking_start"
	TokenBookingEnd      Token = "booking_end"
)

// Membership sheet (fiche technique) tokens.
const (
	TokenMemberName    Token = "member_name"
	TokenBirthDate     Token = "birth_date"
	TokenPlanCode      Token = "plan_code"
	TokenPlanName      Token = "plan_name"
	TokenFamilyMembers Token = "family_members"
	TokenMonthlyFee    Token = "monthly_fee"
)

// Bulletin tokens.
const (
	TokenStudentName Token = "student_name"
	TokenClassName   Token = "class_name"
	TokenPeriod      Token = "period"
	TokenGrades      Token = "grades"
	TokenAverage     Token = "average"
	TokenRemarks     Token = "remarks"
)

var knownTokens = map[Token]bool{}

func init() {
	for _, t := range []Token{
		TokenClientName, TokenClientEmail, TokenClientAddress, TokenClientPhone,
		TokenInvoiceNo, TokenIssuedAt, TokenDueDate, TokenMonth, TokenItems,
		TokenTotal, TokenPaidTotal, TokenBalanceDue, TokenBalanceLabel,
		TokenPaymentStatus, TokenDocTitle, TokenPayments, TokenCurrency,
		TokenSubtotal, TokenDiscountLabel, TokenDiscountAmount,
		TokenBookingResource, TokenBookingDate, TokenBookingStart, TokenBookingEnd,
		TokenMemberName, TokenBirthDate, TokenPlanCode, TokenPlanName,
		TokenFamilyMembers, TokenMonthlyFee,
		TokenStudentName, TokenClassName, TokenPeriod, TokenGrades, TokenAverage, TokenRemarks,
	} {
		knownTokens[t] = true
	}
}

// String returns the placeholder as written in templates: {{name}}.
func (t Token) String() string {
	return "{{" + string(t) + "}}"
}

// IsKnown reports whether name is a recognized token.
func IsKnown(name string) bool {
	return knownTokens[Token(name)]
}

// Kind is a document kind. Each kind has exactly one stored template.
type Kind string

const (
	KindInvoice           Kind = "invoice"
	KindClubInvoice       Kind = "club_invoice"
	KindMembershipInvoice Kind = "membership_invoice"
	KindBulletin          Kind = "bulletin"
	KindFicheTechnique    Kind = "fiche_technique"
)

// Kinds lists every document kind.
var Kinds = []Kind{KindInvoice, KindClubInvoice, KindMembershipInvoice, KindBulletin, KindFicheTechnique}

var invoiceTokens = []Token{
	TokenClientName, TokenInvoiceNo, TokenIssuedAt, TokenDueDate, TokenItems,
	TokenTotal, TokenPaidTotal, TokenBalanceDue, TokenPaymentStatus,
}

var requiredTokens = map[Kind][]Token{
	KindInvoice:           invoiceTokens,
	KindMembershipInvoice: invoiceTokens,
	KindClubInvoice: append(append([]Token{}, invoiceTokens...),
		TokenDocTitle, TokenBookingResource, TokenBookingDate, TokenDiscountAmount),
	KindBulletin:       {TokenStudentName, TokenClassName, TokenPeriod, TokenGrades, TokenAverage},
	KindFicheTechnique: {TokenMemberName, TokenPlanCode, TokenFamilyMembers, TokenMonthlyFee},
}

// ParseKind reads a document kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := requiredTokens[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// RequiredTokens returns the tokens a template of kind must contain.
func RequiredTokens(kind Kind) ([]Token, error) {
	tokens, ok := requiredTokens[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return append([]Token(nil), tokens...), nil
}

// Validate checks that html contains every required token of kind.
// A *TemplateError lists the missing ones.
func Validate(kind Kind, html string) error {
	tokens, err := RequiredTokens(kind)
	if err != nil {
		return err
	}
	var missing []Token
	for _, t := range tokens {
		if !strings.Contains(html, t.String()) {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		return &TemplateError{Kind: kind, Missing: missing}
	}
	return nil
}
