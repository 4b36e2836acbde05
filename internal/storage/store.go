// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/clubportal/internal/billing"
	"github.com/mmynk/clubportal/internal/models"
)

// ErrNotFound is wrapped by every lookup that matches no record.
var ErrNotFound = errors.New("not found")

// Store defines the data store the portal reads and writes.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
//
// Every write is atomic: a failed call leaves the stored state unchanged.
type Store interface {
	UserStore
	InvoiceStore
	PaymentStore
	TemplateStore
	MembershipStore

	// Close releases any resources held by the store.
	Close() error
}

// UserStore persists payers and their dependents.
type UserStore interface {
	// CreateUser persists a new user. ID and CreatedAt are set when empty.
	CreateUser(ctx context.Context, user *models.User) error

	GetUser(ctx context.Context, id string) (*models.User, error)

	// ListUsers returns every user ordered by name.
	ListUsers(ctx context.Context) ([]models.User, error)

	// GetUsersByIDs returns the users found among ids, keyed by ID.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// InvoiceStore persists invoices and their line-item slots.
type InvoiceStore interface {
	// CreateInvoice persists a new invoice. ID, InvoiceNo, CreatedAt and
	// Status are set by the store; a zero Total is taken from the items.
	CreateInvoice(ctx context.Context, inv *models.Invoice) error

	GetInvoice(ctx context.Context, id string) (*models.Invoice, error)

	// ListInvoiceRows returns every invoice joined with its owner's name and
	// the owner's parent, newest first.
	ListInvoiceRows(ctx context.Context) ([]billing.Row, error)

	// RevertLineItem clears one slot, takes its amount off the stored total
	// (floored at zero) and derives the status from the new total.
	RevertLineItem(ctx context.Context, invoiceID string, slot int) (*models.Invoice, error)
}

// PaymentStore persists payments against invoices.
type PaymentStore interface {
	// CreatePayment persists a payment. An approved payment is added to the
	// invoice's paid total in the same transaction.
	CreatePayment(ctx context.Context, p *models.Payment) error

	// ListPayments returns the payments of an invoice, oldest first.
	ListPayments(ctx context.Context, invoiceID string) ([]models.Payment, error)

	// ApprovePayment marks a payment approved and adds its amount to the
	// invoice's paid total. Approving an approved payment changes nothing.
	ApprovePayment(ctx context.Context, paymentID, approvedBy string) (*models.Invoice, error)
}

// TemplateStore persists one HTML template per document kind.
type TemplateStore interface {
	// SaveTemplate inserts or replaces the template of t.Kind.
	SaveTemplate(ctx context.Context, t *models.Template) error

	GetTemplate(ctx context.Context, kind string) (*models.Template, error)
}

// MembershipStore persists plans, club profiles and family members.
// MemberChange is the family member write that goes with a profile update.
// At most one field is set; the zero value writes no member.
type MemberChange struct {
	Add    *models.FamilyMember
	Update *models.FamilyMember
	Remove string
}

type MembershipStore interface {
	// SavePlan inserts or replaces a plan together with its rules.
	SavePlan(ctx context.Context, plan *models.Plan) error

	GetPlan(ctx context.Context, code string) (*models.Plan, error)

	CreateProfile(ctx context.Context, profile *models.ClubProfile) error
	GetProfile(ctx context.Context, id string) (*models.ClubProfile, error)

	// UpdateProfile writes the profile's plan, couple flag and monthly fee,
	// the member change that caused the recompute and the cached fee of
	// each given member, in one transaction.
	UpdateProfile(ctx context.Context, profile *models.ClubProfile, change MemberChange, fees []models.FamilyMember) error

	AddFamilyMember(ctx context.Context, m *models.FamilyMember) error
	UpdateFamilyMember(ctx context.Context, m *models.FamilyMember) error
	DeleteFamilyMember(ctx context.Context, id string) error

	// ListFamilyMembers returns the members of a profile in insertion order.
	ListFamilyMembers(ctx context.Context, profileID string) ([]models.FamilyMember, error)
}
