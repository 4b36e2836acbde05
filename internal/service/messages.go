package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/clubportal/internal/billing"
	"github.com/mmynk/clubportal/internal/calendar"
	"github.com/mmynk/clubportal/internal/mail"
	"github.com/mmynk/clubportal/internal/models"
	"github.com/mmynk/clubportal/internal/pricing"
)

// FilterInput is the family-group filter as sent by the admin UI.
type FilterInput struct {
	Status string `json:"status,omitempty" validate:"omitempty,oneof=pending partial paid"`
	Name   string `json:"name,omitempty"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
	Month  string `json:"month,omitempty"`
}

func (f FilterInput) toFilter() (billing.Filter, error) {
	var out billing.Filter
	var err error

	if f.Status != "" {
		if out.Status, err = billing.ParseStatus(f.Status); err != nil {
			return out, err
		}
	}
	out.Name = strings.TrimSpace(f.Name)
	if out.From, err = calendar.Parse(f.From); err != nil {
		return out, fmt.Errorf("from: %w", err)
	}
	if out.To, err = calendar.Parse(f.To); err != nil {
		return out, fmt.Errorf("to: %w", err)
	}
	if strings.TrimSpace(f.Month) != "" {
		m, err := calendar.ParseMonth(f.Month)
		if err != nil {
			return out, fmt.Errorf("month: %w", err)
		}
		out.Month = m.Key()
	}
	return out, nil
}

// InvoiceRow is one invoice inside a family group.
type InvoiceRow struct {
	Invoice     models.Invoice `json:"invoice"`
	OwnerName   string         `json:"owner_name"`
	ParentName  string         `json:"parent_name,omitempty"`
	StatusLabel string         `json:"status_label"`
}

// FamilyGroup is a family group with its derived values.
type FamilyGroup struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Month        string          `json:"month"`
	Invoices     []InvoiceRow    `json:"invoices"`
	Billed       decimal.Decimal `json:"billed"`
	Paid         decimal.Decimal `json:"paid"`
	Remaining    decimal.Decimal `json:"remaining"`
	BalanceDue   decimal.Decimal `json:"balance_due"`
	BalanceLabel string          `json:"balance_label"`
	Status       billing.Status  `json:"status"`
	StatusLabel  string          `json:"status_label"`
}

func newFamilyGroup(g billing.Group) FamilyGroup {
	rows := make([]InvoiceRow, len(g.Invoices))
	for i, r := range g.Invoices {
		rows[i] = InvoiceRow{
			Invoice:     r.Invoice,
			OwnerName:   r.OwnerName,
			ParentName:  r.ParentName,
			StatusLabel: r.Status().Label(),
		}
	}
	balance := g.Balance()
	return FamilyGroup{
		ID:           g.ID,
		Name:         g.Name,
		Month:        g.Month,
		Invoices:     rows,
		Billed:       g.Billed,
		Paid:         g.Paid,
		Remaining:    g.Remaining(),
		BalanceDue:   balance.Amount(),
		BalanceLabel: balance.Label(),
		Status:       g.Status(),
		StatusLabel:  g.Status().Label(),
	}
}

type ListFamilyGroupsRequest struct {
	Filter FilterInput `json:"filter"`

	// PreviousFilter is the filter the page number refers to. When it is
	// set and differs from Filter the listing restarts at page 1; when it is
	// omitted Page applies to Filter as is.
	PreviousFilter *FilterInput `json:"previous_filter,omitempty"`

	Page int `json:"page" validate:"gte=0"`
}

type ListFamilyGroupsResponse struct {
	Groups      []FamilyGroup `json:"groups"`
	Page        int           `json:"page"`
	PerPage     int           `json:"per_page"`
	TotalGroups int           `json:"total_groups"`
	TotalPages  int           `json:"total_pages"`
	HasNext     bool          `json:"has_next"`
	HasPrev     bool          `json:"has_prev"`

	// Summary is the "Affichage X–Y sur Z" line.
	Summary string `json:"summary"`

	// PageTotals sums the groups shown, Totals every group matching the filter.
	PageTotals billing.Summary `json:"page_totals"`
	Totals     billing.Summary `json:"totals"`
}

type BookingInput struct {
	Resource string `json:"resource"`
	Date     string `json:"date"`
	Start    string `json:"start"`
	End      string `json:"end"`
}

type DiscountInput struct {
	Label  string `json:"label"`
	Amount string `json:"amount" validate:"omitempty,numeric"`
}

type RenderInvoiceRequest struct {
	InvoiceID string `json:"invoice_id" validate:"required"`

	// Kind defaults to "invoice".
	Kind string `json:"kind,omitempty" validate:"omitempty,oneof=invoice club_invoice membership_invoice"`

	// Booking and Discount are shown on club invoices only.
	Booking  *BookingInput  `json:"booking,omitempty"`
	Discount *DiscountInput `json:"discount,omitempty"`
}

type RenderInvoiceResponse struct {
	HTML  string `json:"html"`
	Title string `json:"title"`
}

type RecordPaymentRequest struct {
	InvoiceID string `json:"invoice_id" validate:"required"`
	Amount    string `json:"amount" validate:"required,numeric"`
	Method    string `json:"method" validate:"required,oneof=cash card transfer other"`

	// PaidAt is a date (YYYY-MM-DD); empty means now.
	PaidAt   string `json:"paid_at,omitempty"`
	Note     string `json:"note,omitempty" validate:"max=500"`
	ProofURL string `json:"proof_url,omitempty" validate:"omitempty,url"`

	// Approved applies the payment to the invoice at once.
	Approved bool `json:"approved"`
}

type RecordPaymentResponse struct {
	Payment models.Payment `json:"payment"`
	Invoice models.Invoice `json:"invoice"`
}

type ApprovePaymentRequest struct {
	PaymentID string `json:"payment_id" validate:"required"`
}

type ApprovePaymentResponse struct {
	Invoice models.Invoice `json:"invoice"`
}

type RevertLineItemRequest struct {
	InvoiceID string `json:"invoice_id" validate:"required"`
	Slot      int    `json:"slot" validate:"gte=0,lt=7"`

	// Filter and Page select the listing returned after the change.
	Filter FilterInput `json:"filter"`
	Page   int         `json:"page" validate:"gte=0"`
}

type RevertLineItemResponse struct {
	Invoice models.Invoice           `json:"invoice"`
	Listing ListFamilyGroupsResponse `json:"listing"`
}

type ExportFamilyGroupsRequest struct {
	Filter FilterInput `json:"filter"`
}

type ExportFamilyGroupsResponse struct {
	Filename string `json:"filename"`
	Content  []byte `json:"content"`
}

type SaveTemplateRequest struct {
	Kind string `json:"kind" validate:"required"`
	HTML string `json:"html" validate:"required"`
}

type SaveTemplateResponse struct {
	Template models.Template `json:"template"`
}

type GetTemplateRequest struct {
	Kind string `json:"kind" validate:"required"`
}

type GetTemplateResponse struct {
	Template models.Template `json:"template"`

	// IsDefault is set when no template was saved for the kind yet.
	IsDefault bool `json:"is_default"`
}

type RequiredTokensRequest struct {
	Kind string `json:"kind" validate:"required"`
}

type RequiredTokensResponse struct {
	Tokens []string `json:"tokens"`
}

type GradeInput struct {
	Subject string `json:"subject" validate:"required,max=200"`
	Score   string `json:"score" validate:"required,numeric"`

	// Coefficient defaults to 1.
	Coefficient string `json:"coefficient,omitempty" validate:"omitempty,numeric"`
}

type RenderBulletinRequest struct {
	StudentName string       `json:"student_name" validate:"required,max=200"`
	ClassName   string       `json:"class_name" validate:"max=200"`
	Period      string       `json:"period" validate:"max=100"`
	Grades      []GradeInput `json:"grades" validate:"dive"`
	Remarks     string       `json:"remarks,omitempty" validate:"max=2000"`
}

type RenderBulletinResponse struct {
	HTML string `json:"html"`
}

type GetMembershipRequest struct {
	ProfileID string `json:"profile_id" validate:"required"`
}

// MembershipResponse is returned by every membership call.
type MembershipResponse struct {
	Profile models.ClubProfile    `json:"profile"`
	Plan    models.Plan           `json:"plan"`
	Members []models.FamilyMember `json:"members"`
	Quote   pricing.Quote         `json:"quote"`
}

type FamilyMemberInput struct {
	Name      string `json:"name" validate:"required,max=200"`
	Relation  string `json:"relation" validate:"required,oneof=spouse child dependent"`
	BirthDate string `json:"birth_date,omitempty"`
}

type AddFamilyMemberRequest struct {
	ProfileID string            `json:"profile_id" validate:"required"`
	Member    FamilyMemberInput `json:"member"`
}

type UpdateFamilyMemberRequest struct {
	ProfileID string            `json:"profile_id" validate:"required"`
	MemberID  string            `json:"member_id" validate:"required"`
	Member    FamilyMemberInput `json:"member"`
}

type RemoveFamilyMemberRequest struct {
	ProfileID string `json:"profile_id" validate:"required"`
	MemberID  string `json:"member_id" validate:"required"`
}

type ChangePlanRequest struct {
	ProfileID string `json:"profile_id" validate:"required"`
	PlanCode  string `json:"plan_code" validate:"required"`
	Couple    bool   `json:"couple"`
}

type RenderMembershipSheetRequest struct {
	ProfileID string `json:"profile_id" validate:"required"`
}

type RenderMembershipSheetResponse struct {
	HTML string `json:"html"`
}

type SendCampaignRequest struct {
	Subject      string           `json:"subject" validate:"required,max=200"`
	BodyMarkdown string           `json:"body_markdown" validate:"required"`
	Recipients   []mail.Recipient `json:"recipients" validate:"dive"`

	// UserIDs adds users as recipients, with their name as {{name}}.
	UserIDs []string `json:"user_ids,omitempty"`
}

type SendCampaignResponse struct {
	Report mail.Report `json:"report"`
}
