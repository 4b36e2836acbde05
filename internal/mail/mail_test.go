package mail

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		vars     map[string]string
		wantHTML string
		wantText string
	}{
		{"replaces known", "Bonjour {{name}}", map[string]string{"name": "Jane"}, "Bonjour Jane", "Bonjour Jane"},
		{"escapes values in HTML only", "{{name}}", map[string]string{"name": "<b>Tom & Jerry</b>"}, "&lt;b&gt;Tom &amp; Jerry&lt;/b&gt;", "<b>Tom & Jerry</b>"},
		{"keeps unknown", "{{name}} {{club}}", map[string]string{"name": "Jane"}, "Jane {{club}}", "Jane {{club}}"},
		{"no vars", "{{name}}", nil, "{{name}}", "{{name}}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.text, tt.vars); got != tt.wantHTML {
				t.Errorf("Resolve = %q, want %q", got, tt.wantHTML)
			}
			if got := ResolveText(tt.text, tt.vars); got != tt.wantText {
				t.Errorf("ResolveText = %q, want %q", got, tt.wantText)
			}
		})
	}
}

func TestRenderMarkdownEscapesRawHTML(t *testing.T) {
	out, err := RenderMarkdown("**Rappel**\n\n<script>alert(1)</script>")
	if err != nil {
		t.Fatalf("RenderMarkdown failed: %v", err)
	}
	if !strings.Contains(out, "<strong>Rappel</strong>") {
		t.Errorf("expected bold text, got %q", out)
	}
	if strings.Contains(out, "<script>") {
		t.Errorf("raw HTML passed through: %q", out)
	}
}

// fakeFunction records the messages it receives and rejects some recipients.
type fakeFunction struct {
	mu       sync.Mutex
	received []Message
	auth     []string
	reject   map[string]bool
}

func (f *fakeFunction) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var msg Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.received = append(f.received, msg)
	f.auth = append(f.auth, r.Header.Get("Authorization"))
	f.mu.Unlock()

	if f.reject[msg.To] {
		http.Error(w, "mailbox unavailable", http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func TestClientSend(t *testing.T) {
	fn := &fakeFunction{reject: map[string]bool{"bad@example.com": true}}
	server := httptest.NewServer(fn)
	defer server.Close()

	client := NewClient(server.URL, "secret", "Club", 5*time.Second)

	if err := client.Send(context.Background(), Message{To: "ok@example.com", Subject: "Hi", Body: "<p>x</p>"}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if fn.auth[0] != "Bearer secret" {
		t.Errorf("expected bearer auth, got %q", fn.auth[0])
	}
	if fn.received[0].FromName != "Club" {
		t.Errorf("expected default from name, got %q", fn.received[0].FromName)
	}

	err := client.Send(context.Background(), Message{To: "bad@example.com"})
	var derr *DeliveryError
	if !errors.As(err, &derr) {
		t.Fatalf("expected *DeliveryError, got %v", err)
	}
	if derr.StatusCode != http.StatusBadGateway || derr.Body != "mailbox unavailable" {
		t.Errorf("unexpected delivery error: %+v", derr)
	}
}

func TestSendCampaignContinuesOnFailure(t *testing.T) {
	fn := &fakeFunction{reject: map[string]bool{"b@example.com": true}}
	server := httptest.NewServer(fn)
	defer server.Close()

	campaign := Campaign{
		Subject:      "Cotisation {{month}}",
		BodyMarkdown: "Bonjour **{{name}}**, il reste {{amount}}.",
		Recipients: []Recipient{
			{Email: "a@example.com", Name: "Ana", Variables: map[string]string{"month": "Janvier", "amount": "120.00"}},
			{Email: "b@example.com", Name: "Ben"},
			{Email: " c@example.com ", Name: "Céline & Co", Variables: map[string]string{"month": "Février & Mars"}},
		},
	}

	report, err := SendCampaign(context.Background(), NewClient(server.URL, "", "", time.Second), campaign)
	if err != nil {
		t.Fatalf("SendCampaign failed: %v", err)
	}
	if report.Attempted != 3 || report.Sent != 2 || report.Failed() != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.Failures[0].Email != "b@example.com" {
		t.Errorf("unexpected failure: %+v", report.Failures[0])
	}

	if len(fn.received) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(fn.received))
	}
	first := fn.received[0]
	if first.Subject != "Cotisation Janvier" {
		t.Errorf("unexpected subject %q", first.Subject)
	}
	if !strings.Contains(first.Body, "<strong>Ana</strong>, il reste 120.00.") {
		t.Errorf("unexpected body %q", first.Body)
	}
	third := fn.received[2]
	if third.To != "c@example.com" {
		t.Errorf("recipient not trimmed: %q", third.To)
	}
	if third.Subject != "Cotisation Février & Mars" {
		t.Errorf("subject should carry literal values, got %q", third.Subject)
	}
	if !strings.Contains(third.Body, "Céline &amp; Co") || !strings.Contains(third.Body, "{{amount}}") {
		t.Errorf("unexpected body %q", third.Body)
	}
}

func TestSendCampaignWithoutRecipients(t *testing.T) {
	_, err := SendCampaign(context.Background(), NewClient("http://unused", "", "", time.Second), Campaign{Subject: "x", BodyMarkdown: "y"})
	if !errors.Is(err, ErrNoRecipients) {
		t.Errorf("expected ErrNoRecipients, got %v", err)
	}
}

type cancelSender struct {
	cancel context.CancelFunc
	sent   int
}

func (s *cancelSender) Send(ctx context.Context, msg Message) error {
	s.sent++
	s.cancel()
	return nil
}

func TestSendCampaignStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sender := &cancelSender{cancel: cancel}

	campaign := Campaign{
		Subject:      "x",
		BodyMarkdown: "y",
		Recipients:   []Recipient{{Email: "a@example.com"}, {Email: "b@example.com"}},
	}
	report, err := SendCampaign(ctx, sender, campaign)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if sender.sent != 1 || report.Sent != 1 {
		t.Errorf("expected one message before cancellation, got sent=%d report=%+v", sender.sent, report)
	}
}
