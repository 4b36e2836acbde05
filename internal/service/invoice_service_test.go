package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"connectrpc.com/connect"
	"github.com/xuri/excelize/v2"

	"github.com/mmynk/clubportal/internal/billing"
	"github.com/mmynk/clubportal/internal/export"
)

func findGroup(groups []FamilyGroup, name string) (FamilyGroup, bool) {
	for _, g := range groups {
		if g.Name == name {
			return g, true
		}
	}
	return FamilyGroup{}, false
}

func TestListFamilyGroups(t *testing.T) {
	env := setupTestServer(t, nil)
	ctx := context.Background()

	jane := env.createUser(t, "Jane", "")
	lea := env.createUser(t, "Léa", jane.ID)
	bob := env.createUser(t, "Bob", "")
	env.createInvoice(t, jane.ID, "2025-05", "100")
	env.createInvoice(t, lea.ID, "2025-05", "50")
	env.createInvoice(t, bob.ID, "2025-05", "80")

	resp, err := env.client.ListFamilyGroups(ctx, request(&ListFamilyGroupsRequest{Page: 1}))
	if err != nil {
		t.Fatalf("ListFamilyGroups failed: %v", err)
	}

	if resp.Msg.TotalGroups != 2 {
		t.Fatalf("expected 2 family groups, got %d", resp.Msg.TotalGroups)
	}
	g, ok := findGroup(resp.Msg.Groups, "Jane")
	if !ok {
		t.Fatalf("expected a Jane group in %+v", resp.Msg.Groups)
	}
	if len(g.Invoices) != 2 {
		t.Errorf("Jane group: expected 2 invoices, got %d", len(g.Invoices))
	}
	if !g.Billed.Equal(d("150")) || !g.Remaining.Equal(d("150")) {
		t.Errorf("Jane group: billed %s remaining %s, expected 150/150", g.Billed, g.Remaining)
	}
	if g.Status != billing.StatusPending || g.StatusLabel != "En attente de paiement" {
		t.Errorf("Jane group: unexpected status %q (%q)", g.Status, g.StatusLabel)
	}
	if !resp.Msg.Totals.Billed.Equal(d("230")) {
		t.Errorf("totals: expected billed 230, got %s", resp.Msg.Totals.Billed)
	}
	if resp.Msg.Summary != "Affichage 1–2 sur 2" {
		t.Errorf("summary: got %q", resp.Msg.Summary)
	}

	t.Run("name filter selects one payer", func(t *testing.T) {
		resp, err := env.client.ListFamilyGroups(ctx, request(&ListFamilyGroupsRequest{
			Filter: FilterInput{Name: "bob"},
			Page:   1,
		}))
		if err != nil {
			t.Fatalf("ListFamilyGroups failed: %v", err)
		}
		if len(resp.Msg.Groups) != 1 || resp.Msg.Groups[0].Name != "Bob" {
			t.Errorf("expected only Bob, got %+v", resp.Msg.Groups)
		}
	})

	t.Run("invalid status", func(t *testing.T) {
		_, err := env.client.ListFamilyGroups(ctx, request(&ListFamilyGroupsRequest{
			Filter: FilterInput{Status: "overdue"},
		}))
		expectCode(t, err, connect.CodeInvalidArgument)
	})
}

func TestListFamilyGroupsPageReset(t *testing.T) {
	env := setupTestServer(t, nil)
	ctx := context.Background()

	for i := 0; i < billing.PageSize+1; i++ {
		u := env.createUser(t, fmt.Sprintf("Famille %02d", i), "")
		env.createInvoice(t, u.ID, "2025-05", "10")
	}

	pending := FilterInput{Status: "pending"}
	tests := []struct {
		name      string
		req       ListFamilyGroupsRequest
		wantPage  int
		wantCount int
	}{
		{"second page", ListFamilyGroupsRequest{Page: 2}, 2, 1},
		{"filter changed", ListFamilyGroupsRequest{Filter: pending, PreviousFilter: &FilterInput{}, Page: 2}, 1, billing.PageSize},
		{"filter unchanged", ListFamilyGroupsRequest{Filter: pending, PreviousFilter: &pending, Page: 2}, 2, 1},
		{"filter without previous filter", ListFamilyGroupsRequest{Filter: pending, Page: 2}, 2, 1},
		{"page past the end", ListFamilyGroupsRequest{Page: 9}, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			resp, err := env.client.ListFamilyGroups(ctx, request(&req))
			if err != nil {
				t.Fatalf("ListFamilyGroups failed: %v", err)
			}
			if resp.Msg.Page != tt.wantPage {
				t.Errorf("page: expected %d, got %d", tt.wantPage, resp.Msg.Page)
			}
			if len(resp.Msg.Groups) != tt.wantCount {
				t.Errorf("groups: expected %d, got %d", tt.wantCount, len(resp.Msg.Groups))
			}
			if resp.Msg.TotalPages != 2 {
				t.Errorf("total pages: expected 2, got %d", resp.Msg.TotalPages)
			}
		})
	}
}

func TestRenderInvoice(t *testing.T) {
	env := setupTestServer(t, nil)
	ctx := context.Background()

	jane := env.createUser(t, "Jane", "")
	inv := env.createInvoice(t, jane.ID, "2025-05", "200")

	if _, err := env.client.RecordPayment(ctx, request(&RecordPaymentRequest{
		InvoiceID: inv.ID, Amount: "80", Method: "cash", PaidAt: "2025-05-10", Approved: true,
	})); err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}
	// Pending payments never appear on documents.
	if _, err := env.client.RecordPayment(ctx, request(&RecordPaymentRequest{
		InvoiceID: inv.ID, Amount: "55", Method: "card",
	})); err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}

	resp, err := env.client.RenderInvoice(ctx, request(&RenderInvoiceRequest{InvoiceID: inv.ID}))
	if err != nil {
		t.Fatalf("RenderInvoice failed: %v", err)
	}

	if resp.Msg.Title != "Reçu partiel" {
		t.Errorf("title: expected 'Reçu partiel', got %q", resp.Msg.Title)
	}
	for _, want := range []string{
		"<h1>Reçu partiel</h1>",
		"<strong>Jane</strong>",
		"Total : USD 200.00",
		"Payé : USD 80.00",
		"Reste à payer : USD 120.00",
		"Statut : Partiellement payée",
		"Paiements reçus",
	} {
		if !strings.Contains(resp.Msg.HTML, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(resp.Msg.HTML, "55.00") {
		t.Error("pending payment should not be rendered")
	}

	t.Run("unknown invoice", func(t *testing.T) {
		_, err := env.client.RenderInvoice(ctx, request(&RenderInvoiceRequest{InvoiceID: "missing"}))
		expectCode(t, err, connect.CodeNotFound)
	})

	t.Run("kind that is not an invoice", func(t *testing.T) {
		_, err := env.client.RenderInvoice(ctx, request(&RenderInvoiceRequest{InvoiceID: inv.ID, Kind: "bulletin"}))
		expectCode(t, err, connect.CodeInvalidArgument)
	})
}

func TestRecordAndApprovePayment(t *testing.T) {
	env := setupTestServer(t, nil)
	ctx := context.Background()

	jane := env.createUser(t, "Jane", "")
	inv := env.createInvoice(t, jane.ID, "2025-05", "200")

	recResp, err := env.client.RecordPayment(ctx, request(&RecordPaymentRequest{
		InvoiceID: inv.ID, Amount: "80", Method: "transfer",
	}))
	if err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}
	if !recResp.Msg.Invoice.PaidTotal.IsZero() || recResp.Msg.Invoice.Status != string(billing.StatusPending) {
		t.Errorf("pending payment should not change the invoice: %+v", recResp.Msg.Invoice)
	}

	for i := 0; i < 2; i++ {
		resp, err := env.client.ApprovePayment(ctx, request(&ApprovePaymentRequest{PaymentID: recResp.Msg.Payment.ID}))
		if err != nil {
			t.Fatalf("ApprovePayment #%d failed: %v", i+1, err)
		}
		if !resp.Msg.Invoice.PaidTotal.Equal(d("80")) {
			t.Errorf("approval #%d: expected paid 80, got %s", i+1, resp.Msg.Invoice.PaidTotal)
		}
		if resp.Msg.Invoice.Status != string(billing.StatusPartial) {
			t.Errorf("approval #%d: expected partial, got %q", i+1, resp.Msg.Invoice.Status)
		}
	}

	payments, err := env.store.ListPayments(ctx, inv.ID)
	if err != nil {
		t.Fatalf("ListPayments failed: %v", err)
	}
	if len(payments) != 1 || payments[0].ApprovedBy != testAdmin {
		t.Errorf("expected one payment approved by %q, got %+v", testAdmin, payments)
	}

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		for _, amount := range []string{"0", "-5"} {
			_, err := env.client.RecordPayment(ctx, request(&RecordPaymentRequest{
				InvoiceID: inv.ID, Amount: amount, Method: "cash",
			}))
			expectCode(t, err, connect.CodeInvalidArgument)
		}
	})

	t.Run("rejects unknown methods", func(t *testing.T) {
		_, err := env.client.RecordPayment(ctx, request(&RecordPaymentRequest{
			InvoiceID: inv.ID, Amount: "10", Method: "cheque",
		}))
		expectCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("unknown payment", func(t *testing.T) {
		_, err := env.client.ApprovePayment(ctx, request(&ApprovePaymentRequest{PaymentID: "missing"}))
		expectCode(t, err, connect.CodeNotFound)
	})
}

func TestRevertLineItem(t *testing.T) {
	env := setupTestServer(t, nil)
	ctx := context.Background()

	jane := env.createUser(t, "Jane", "")
	inv := env.createInvoice(t, jane.ID, "2025-05", "100", "50")
	if _, err := env.client.RecordPayment(ctx, request(&RecordPaymentRequest{
		InvoiceID: inv.ID, Amount: "100", Method: "cash", Approved: true,
	})); err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}

	resp, err := env.client.RevertLineItem(ctx, request(&RevertLineItemRequest{InvoiceID: inv.ID, Slot: 1, Page: 1}))
	if err != nil {
		t.Fatalf("RevertLineItem failed: %v", err)
	}

	if !resp.Msg.Invoice.Total.Equal(d("100")) {
		t.Errorf("total: expected 100, got %s", resp.Msg.Invoice.Total)
	}
	if resp.Msg.Invoice.Status != string(billing.StatusPaid) {
		t.Errorf("status: expected paid, got %q", resp.Msg.Invoice.Status)
	}
	if !resp.Msg.Invoice.Items[1].IsEmpty() {
		t.Errorf("slot 1 should be empty, got %+v", resp.Msg.Invoice.Items[1])
	}

	g, ok := findGroup(resp.Msg.Listing.Groups, "Jane")
	if !ok {
		t.Fatalf("reloaded listing has no Jane group: %+v", resp.Msg.Listing.Groups)
	}
	if !g.Billed.Equal(d("100")) || g.Status != billing.StatusPaid {
		t.Errorf("reloaded group: billed %s status %q", g.Billed, g.Status)
	}

	t.Run("slot out of range", func(t *testing.T) {
		_, err := env.client.RevertLineItem(ctx, request(&RevertLineItemRequest{InvoiceID: inv.ID, Slot: 7}))
		expectCode(t, err, connect.CodeInvalidArgument)
	})
}

func TestExportFamilyGroups(t *testing.T) {
	env := setupTestServer(t, nil)
	ctx := context.Background()

	jane := env.createUser(t, "Jane", "")
	bob := env.createUser(t, "Bob", "")
	env.createInvoice(t, jane.ID, "2025-05", "100")
	env.createInvoice(t, bob.ID, "2025-05", "80")
	env.createInvoice(t, bob.ID, "2025-04", "80")

	resp, err := env.client.ExportFamilyGroups(ctx, request(&ExportFamilyGroupsRequest{
		Filter: FilterInput{Month: "2025-05"},
	}))
	if err != nil {
		t.Fatalf("ExportFamilyGroups failed: %v", err)
	}
	if resp.Msg.Filename != "familles_2025-06-01.xlsx" {
		t.Errorf("filename: got %q", resp.Msg.Filename)
	}

	f, err := excelize.OpenReader(bytes.NewReader(resp.Msg.Content))
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(export.SheetName)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	// Header, two families, totals.
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d: %v", len(rows), rows)
	}
	if rows[0][0] != "Famille" {
		t.Errorf("header: got %v", rows[0])
	}
}
