package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/clubportal/internal/billing"
	"github.com/mmynk/clubportal/internal/calendar"
	"github.com/mmynk/clubportal/internal/document"
	"github.com/mmynk/clubportal/internal/export"
	"github.com/mmynk/clubportal/internal/metrics"
	"github.com/mmynk/clubportal/internal/middleware"
	"github.com/mmynk/clubportal/internal/models"
	"github.com/mmynk/clubportal/internal/storage"
)

// InvoiceService lists family groups, renders invoices and records payments.
type InvoiceService struct {
	store    storage.Store
	compiler *document.Compiler
	now      func() time.Time
}

// NewInvoiceService creates a new InvoiceService with the given storage backend.
func NewInvoiceService(store storage.Store, compiler *document.Compiler) *InvoiceService {
	return &InvoiceService{store: store, compiler: compiler, now: time.Now}
}

// ListFamilyGroups returns one page of family groups.
func (s *InvoiceService) ListFamilyGroups(ctx context.Context, req *connect.Request[ListFamilyGroupsRequest]) (*connect.Response[ListFamilyGroupsResponse], error) {
	slog.Info("ListFamilyGroups request received", "page", req.Msg.Page, "filter", req.Msg.Filter)

	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	filter, err := req.Msg.Filter.toFilter()
	if err != nil {
		return nil, invalid("filtre invalide", err)
	}

	// Without a previous filter the page refers to the current one.
	prev := filter
	if req.Msg.PreviousFilter != nil {
		if prev, err = req.Msg.PreviousFilter.toFilter(); err != nil {
			return nil, invalid("filtre précédent invalide", err)
		}
	}
	view := billing.NewView()
	view.SetFilter(prev)
	view.SetPage(req.Msg.Page)
	view.SetFilter(filter)

	listing, err := s.listing(ctx, view)
	if err != nil {
		slog.Error("ListFamilyGroups failed", "error", err)
		return nil, toConnectError("impossible de charger les factures", err)
	}

	slog.Info("ListFamilyGroups successful", "groups", len(listing.Groups), "total_groups", listing.TotalGroups)
	return connect.NewResponse(listing), nil
}

// listing loads every invoice row and renders the view's page. It is used
// after each mutation so the admin always sees freshly loaded data.
func (s *InvoiceService) listing(ctx context.Context, view *billing.View) (*ListFamilyGroupsResponse, error) {
	rows, err := s.store.ListInvoiceRows(ctx)
	if err != nil {
		return nil, err
	}

	groups := view.Groups(rows)
	page := billing.Paginate(groups, view.CurrentPage(), billing.PageSize)

	out := &ListFamilyGroupsResponse{
		Groups:      make([]FamilyGroup, len(page.Groups)),
		Page:        page.Page,
		PerPage:     page.PerPage,
		TotalGroups: page.TotalGroups,
		TotalPages:  page.TotalPages,
		HasNext:     page.HasNext,
		HasPrev:     page.HasPrev,
		Summary:     page.Summary(),
		PageTotals:  billing.Summarize(page.Groups),
		Totals:      billing.Summarize(groups),
	}
	for i, g := range page.Groups {
		out.Groups[i] = newFamilyGroup(g)
	}
	return out, nil
}

// RenderInvoice compiles one invoice with the stored template of its kind.
func (s *InvoiceService) RenderInvoice(ctx context.Context, req *connect.Request[RenderInvoiceRequest]) (*connect.Response[RenderInvoiceResponse], error) {
	slog.Info("RenderInvoice request received", "invoice_id", req.Msg.InvoiceID, "kind", req.Msg.Kind)

	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	opts := RenderOptions{}
	if b := req.Msg.Booking; b != nil {
		date, err := calendar.Parse(b.Date)
		if err != nil {
			return nil, invalid("date de réservation invalide", err)
		}
		opts.Booking = document.Booking{Resource: b.Resource, Date: date, Start: b.Start, End: b.End}
	}
	if d := req.Msg.Discount; d != nil {
		opts.Discount = document.Discount{Label: d.Label, Amount: decimal.Zero}
		if d.Amount != "" {
			amount, err := decimal.NewFromString(d.Amount)
			if err != nil {
				return nil, invalid("montant de remise invalide", err)
			}
			opts.Discount.Amount = amount
		}
	}

	kind := document.KindInvoice
	if req.Msg.Kind != "" {
		kind = document.Kind(req.Msg.Kind)
	}

	html, inv, err := s.Render(ctx, req.Msg.InvoiceID, kind, opts)
	if err != nil {
		slog.Error("RenderInvoice failed", "invoice_id", req.Msg.InvoiceID, "error", err)
		return nil, toConnectError("impossible de générer la facture", err)
	}

	slog.Info("RenderInvoice successful", "invoice_id", inv.ID, "bytes", len(html))
	return connect.NewResponse(&RenderInvoiceResponse{
		HTML:  html,
		Title: billing.DocumentTitle(billing.DeriveStatus(inv.Total, inv.PaidTotal)),
	}), nil
}

// RenderOptions carries the club invoice extras that are not stored.
type RenderOptions struct {
	Booking  document.Booking
	Discount document.Discount
}

// Render compiles an invoice of the given kind. The stored template is used
// when one exists, the built-in one otherwise. Only approved payments are
// listed, oldest first.
func (s *InvoiceService) Render(ctx context.Context, invoiceID string, kind document.Kind, opts RenderOptions) (string, *models.Invoice, error) {
	inv, err := s.store.GetInvoice(ctx, invoiceID)
	if err != nil {
		return "", nil, err
	}

	// A missing owner renders with empty client fields.
	var client document.Party
	owner, err := s.store.GetUser(ctx, inv.UserID)
	switch {
	case err == nil:
		client = document.PartyFromUser(*owner)
	case errors.Is(err, storage.ErrNotFound):
		slog.Warn("Invoice owner not found", "invoice_id", inv.ID, "user_id", inv.UserID)
	default:
		return "", nil, err
	}

	payments, err := s.store.ListPayments(ctx, inv.ID)
	if err != nil {
		return "", nil, err
	}
	approved := payments[:0]
	for _, p := range payments {
		if p.Approved {
			approved = append(approved, p)
		}
	}

	tmpl, err := loadTemplate(ctx, s.store, kind)
	if err != nil {
		return "", nil, err
	}

	rec := document.InvoiceRecord{Client: client, Invoice: *inv, Payments: approved}
	var html string
	switch kind {
	case document.KindClubInvoice:
		html, err = s.compiler.CompileClubInvoice(tmpl, document.ClubInvoiceRecord{
			InvoiceRecord: rec,
			Booking:       opts.Booking,
			Discount:      opts.Discount,
		})
	default:
		html, err = s.compiler.CompileInvoice(kind, tmpl, rec)
	}
	if err != nil {
		return "", nil, err
	}

	metrics.DocumentsCompiled.WithLabelValues(string(kind)).Inc()
	return html, inv, nil
}

// RecordPayment records a payment against an invoice.
func (s *InvoiceService) RecordPayment(ctx context.Context, req *connect.Request[RecordPaymentRequest]) (*connect.Response[RecordPaymentResponse], error) {
	slog.Info("RecordPayment request received",
		"invoice_id", req.Msg.InvoiceID,
		"amount", req.Msg.Amount,
		"method", req.Msg.Method,
		"approved", req.Msg.Approved,
	)

	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(req.Msg.Amount)
	if err != nil || !amount.IsPositive() {
		return nil, invalid("le montant doit être positif", err)
	}

	p := &models.Payment{
		InvoiceID: req.Msg.InvoiceID,
		Amount:    amount,
		Method:    models.PaymentMethod(req.Msg.Method),
		Approved:  req.Msg.Approved,
		Note:      req.Msg.Note,
		ProofURL:  req.Msg.ProofURL,
	}
	if req.Msg.PaidAt != "" {
		paidAt, err := calendar.Parse(req.Msg.PaidAt)
		if err != nil {
			return nil, invalid("date de paiement invalide", err)
		}
		p.PaidAt = paidAt.Time().Unix()
	}
	if p.Approved {
		p.ApprovedBy = middleware.GetAdminID(ctx)
	}

	if err := s.store.CreatePayment(ctx, p); err != nil {
		slog.Error("RecordPayment failed", "invoice_id", p.InvoiceID, "error", err)
		return nil, toConnectError("impossible d'enregistrer le paiement", err)
	}

	inv, err := s.store.GetInvoice(ctx, p.InvoiceID)
	if err != nil {
		slog.Error("RecordPayment failed", "invoice_id", p.InvoiceID, "error", err)
		return nil, toConnectError("impossible de recharger la facture", err)
	}

	slog.Info("Payment recorded", "payment_id", p.ID, "invoice_id", inv.ID, "status", inv.Status)
	return connect.NewResponse(&RecordPaymentResponse{Payment: *p, Invoice: *inv}), nil
}

// ApprovePayment approves a pending payment.
func (s *InvoiceService) ApprovePayment(ctx context.Context, req *connect.Request[ApprovePaymentRequest]) (*connect.Response[ApprovePaymentResponse], error) {
	slog.Info("ApprovePayment request received", "payment_id", req.Msg.PaymentID)

	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	inv, err := s.store.ApprovePayment(ctx, req.Msg.PaymentID, middleware.GetAdminID(ctx))
	if err != nil {
		slog.Error("ApprovePayment failed", "payment_id", req.Msg.PaymentID, "error", err)
		return nil, toConnectError("impossible d'approuver le paiement", err)
	}

	slog.Info("ApprovePayment successful", "payment_id", req.Msg.PaymentID, "invoice_id", inv.ID, "status", inv.Status)
	return connect.NewResponse(&ApprovePaymentResponse{Invoice: *inv}), nil
}

// RevertLineItem clears one slot of an invoice and returns the reloaded
// listing.
func (s *InvoiceService) RevertLineItem(ctx context.Context, req *connect.Request[RevertLineItemRequest]) (*connect.Response[RevertLineItemResponse], error) {
	slog.Info("RevertLineItem request received", "invoice_id", req.Msg.InvoiceID, "slot", req.Msg.Slot)

	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	filter, err := req.Msg.Filter.toFilter()
	if err != nil {
		return nil, invalid("filtre invalide", err)
	}

	inv, err := s.store.RevertLineItem(ctx, req.Msg.InvoiceID, req.Msg.Slot)
	if err != nil {
		slog.Error("RevertLineItem failed", "invoice_id", req.Msg.InvoiceID, "slot", req.Msg.Slot, "error", err)
		return nil, toConnectError("impossible d'annuler la ligne", err)
	}

	view := billing.NewView()
	view.SetFilter(filter)
	view.SetPage(req.Msg.Page)
	listing, err := s.listing(ctx, view)
	if err != nil {
		slog.Error("RevertLineItem reload failed", "invoice_id", inv.ID, "error", err)
		return nil, toConnectError("impossible de recharger les factures", err)
	}

	slog.Info("RevertLineItem successful", "invoice_id", inv.ID, "total", inv.Total, "status", inv.Status)
	return connect.NewResponse(&RevertLineItemResponse{Invoice: *inv, Listing: *listing}), nil
}

// ExportFamilyGroups returns every family group matching the filter as XLSX.
func (s *InvoiceService) ExportFamilyGroups(ctx context.Context, req *connect.Request[ExportFamilyGroupsRequest]) (*connect.Response[ExportFamilyGroupsResponse], error) {
	slog.Info("ExportFamilyGroups request received", "filter", req.Msg.Filter)

	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	filter, err := req.Msg.Filter.toFilter()
	if err != nil {
		return nil, invalid("filtre invalide", err)
	}

	var buf bytes.Buffer
	n, err := s.Export(ctx, filter, &buf)
	if err != nil {
		slog.Error("ExportFamilyGroups failed", "error", err)
		return nil, toConnectError("impossible d'exporter les factures", err)
	}

	filename := fmt.Sprintf("familles_%s.xlsx", s.now().Format("2006-01-02"))
	slog.Info("ExportFamilyGroups successful", "groups", n, "bytes", buf.Len())
	return connect.NewResponse(&ExportFamilyGroupsResponse{Filename: filename, Content: buf.Bytes()}), nil
}

// Export writes every family group matching filter to w and returns how
// many groups were written.
func (s *InvoiceService) Export(ctx context.Context, filter billing.Filter, w io.Writer) (int, error) {
	rows, err := s.store.ListInvoiceRows(ctx)
	if err != nil {
		return 0, err
	}
	groups := billing.GroupFamilies(billing.Apply(rows, filter), filter)
	if err := export.FamilyGroups(w, groups); err != nil {
		return 0, err
	}
	return len(groups), nil
}

// loadTemplate returns the stored template of kind, or the built-in one.
func loadTemplate(ctx context.Context, store storage.TemplateStore, kind document.Kind) (string, error) {
	t, err := store.GetTemplate(ctx, string(kind))
	if err == nil {
		return t.HTML, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return "", err
	}
	return document.DefaultTemplate(kind)
}
