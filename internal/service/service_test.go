package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/clubportal/internal/calendar"
	"github.com/mmynk/clubportal/internal/document"
	"github.com/mmynk/clubportal/internal/mail"
	"github.com/mmynk/clubportal/internal/middleware"
	"github.com/mmynk/clubportal/internal/models"
	"github.com/mmynk/clubportal/internal/storage/sqlite"
)

const testAdmin = "admin-42"

// fixedNow is the clock every test service runs on.
var fixedNow = func() time.Time { return time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC) }

type testEnv struct {
	client *Client
	store  *sqlite.SQLiteStore
}

// setupTestServer creates a test server with every service mounted behind
// the production interceptors.
func setupTestServer(t *testing.T, sender mail.Sender) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	compiler := document.NewCompiler("USD")

	invoiceSvc := NewInvoiceService(store, compiler)
	invoiceSvc.now = fixedNow
	membershipSvc := NewMembershipService(store, compiler)
	membershipSvc.now = fixedNow

	mux := http.NewServeMux()
	mux.Handle(NewInvoiceServiceHandler(invoiceSvc, middleware.Interceptors()))
	mux.Handle(NewTemplateServiceHandler(NewTemplateService(store, compiler), middleware.Interceptors()))
	mux.Handle(NewMembershipServiceHandler(membershipSvc, middleware.Interceptors()))
	mux.Handle(NewCampaignServiceHandler(NewCampaignService(store, sender), middleware.Interceptors()))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testEnv{
		client: NewClient(http.DefaultClient, server.URL),
		store:  store,
	}
}

// request wraps msg with the acting admin header.
func request[T any](msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set(middleware.AdminHeader, testAdmin)
	return req
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (e *testEnv) createUser(t *testing.T, name, parentID string) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: name + "@example.com", ParentID: parentID}
	if err := e.store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return u
}

func (e *testEnv) createInvoice(t *testing.T, userID, month string, amounts ...string) *models.Invoice {
	t.Helper()
	m, err := calendar.ParseMonth(month)
	if err != nil {
		t.Fatalf("ParseMonth(%q) failed: %v", month, err)
	}
	inv := &models.Invoice{
		UserID:   userID,
		Month:    m,
		IssuedAt: calendar.MustParse(month + "-05"),
		DueDate:  calendar.MustParse(month + "-28"),
	}
	for i, a := range amounts {
		inv.Items[i] = models.LineItem{Description: "Cours collectifs", Amount: d(a)}
	}
	if err := e.store.CreateInvoice(context.Background(), inv); err != nil {
		t.Fatalf("CreateInvoice failed: %v", err)
	}
	return inv
}

func expectCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Fatalf("expected code %v, got %v (%v)", want, got, err)
	}
}
