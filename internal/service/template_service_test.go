package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"connectrpc.com/connect"
)

func TestSaveTemplate(t *testing.T) {
	env := setupTestServer(t, nil)
	ctx := context.Background()

	t.Run("missing tokens are refused", func(t *testing.T) {
		_, err := env.client.SaveTemplate(ctx, request(&SaveTemplateRequest{
			Kind: "invoice",
			HTML: "<p>{{client_name}} {{invoice_no}}</p>",
		}))
		expectCode(t, err, connect.CodeFailedPrecondition)

		var cerr *connect.Error
		if !errors.As(err, &cerr) {
			t.Fatalf("expected *connect.Error, got %T", err)
		}
		missing := cerr.Meta().Get(MissingTokensHeader)
		for _, tok := range []string{"items", "total", "balance_due"} {
			if !strings.Contains(missing, tok) {
				t.Errorf("%s header %q should list %q", MissingTokensHeader, missing, tok)
			}
		}
		if strings.Contains(missing, "client_name") {
			t.Errorf("%s header %q lists a present token", MissingTokensHeader, missing)
		}

		resp, err := env.client.GetTemplate(ctx, request(&GetTemplateRequest{Kind: "invoice"}))
		if err != nil {
			t.Fatalf("GetTemplate failed: %v", err)
		}
		if !resp.Msg.IsDefault {
			t.Error("a refused template must not be stored")
		}
	})

	t.Run("complete template is stored", func(t *testing.T) {
		tokens, err := env.client.RequiredTokens(ctx, request(&RequiredTokensRequest{Kind: "bulletin"}))
		if err != nil {
			t.Fatalf("RequiredTokens failed: %v", err)
		}
		var b strings.Builder
		b.WriteString("<h1>Bulletin</h1>")
		for _, tok := range tokens.Msg.Tokens {
			b.WriteString("<p>" + tok + "</p>")
		}

		saved, err := env.client.SaveTemplate(ctx, request(&SaveTemplateRequest{Kind: "bulletin", HTML: b.String()}))
		if err != nil {
			t.Fatalf("SaveTemplate failed: %v", err)
		}
		if saved.Msg.Template.UpdatedBy != testAdmin {
			t.Errorf("updated_by: expected %q, got %q", testAdmin, saved.Msg.Template.UpdatedBy)
		}

		got, err := env.client.GetTemplate(ctx, request(&GetTemplateRequest{Kind: "bulletin"}))
		if err != nil {
			t.Fatalf("GetTemplate failed: %v", err)
		}
		if got.Msg.IsDefault || got.Msg.Template.HTML != b.String() {
			t.Errorf("expected the stored template, got %+v", got.Msg)
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := env.client.SaveTemplate(ctx, request(&SaveTemplateRequest{Kind: "newsletter", HTML: "<p></p>"}))
		expectCode(t, err, connect.CodeInvalidArgument)
	})
}

func TestRenderUsesStoredTemplate(t *testing.T) {
	env := setupTestServer(t, nil)
	ctx := context.Background()

	jane := env.createUser(t, "Jane", "")
	inv := env.createInvoice(t, jane.ID, "2025-05", "200")

	custom := `<h2>{{doc_title}}</h2><p>{{client_name}} {{invoice_no}} {{issued_at}} {{due_date}}</p>` +
		`<table>{{items}}</table><p>{{total}} {{paid_total}} {{balance_due}} {{payment_status}}</p>`
	if _, err := env.client.SaveTemplate(ctx, request(&SaveTemplateRequest{Kind: "invoice", HTML: custom})); err != nil {
		t.Fatalf("SaveTemplate failed: %v", err)
	}

	resp, err := env.client.RenderInvoice(ctx, request(&RenderInvoiceRequest{InvoiceID: inv.ID}))
	if err != nil {
		t.Fatalf("RenderInvoice failed: %v", err)
	}
	if !strings.HasPrefix(resp.Msg.HTML, "<h2>Facture</h2>") {
		t.Errorf("expected the stored template to be used, got\n%s", resp.Msg.HTML)
	}
}

func TestRenderBulletin(t *testing.T) {
	env := setupTestServer(t, nil)
	ctx := context.Background()

	req := &RenderBulletinRequest{
		StudentName: "Léa Doe",
		ClassName:   "CM2",
		Period:      "Trimestre 1",
		Grades: []GradeInput{
			{Subject: "Maths", Score: "14", Coefficient: "3"},
			{Subject: "Français", Score: "12", Coefficient: "2"},
			{Subject: "Sport", Score: "18"},
		},
	}

	t.Run("default template", func(t *testing.T) {
		resp, err := env.client.RenderBulletin(ctx, request(req))
		if err != nil {
			t.Fatalf("RenderBulletin failed: %v", err)
		}
		for _, want := range []string{"Léa Doe", "<tr><td>Maths</td><td>14.00</td><td>3</td></tr>", "<tr><td>Sport</td><td>18.00</td><td>1</td></tr>", "Moyenne : 14.00"} {
			if !strings.Contains(resp.Msg.HTML, want) {
				t.Errorf("output missing %q\n%s", want, resp.Msg.HTML)
			}
		}
	})

	t.Run("stored template", func(t *testing.T) {
		custom := `<h1>{{student_name}} {{class_name}} {{period}}</h1><table>{{grades}}</table><p>{{average}}</p>`
		if _, err := env.client.SaveTemplate(ctx, request(&SaveTemplateRequest{Kind: "bulletin", HTML: custom})); err != nil {
			t.Fatalf("SaveTemplate failed: %v", err)
		}
		resp, err := env.client.RenderBulletin(ctx, request(req))
		if err != nil {
			t.Fatalf("RenderBulletin failed: %v", err)
		}
		if !strings.HasPrefix(resp.Msg.HTML, "<h1>Léa Doe CM2 Trimestre 1</h1>") {
			t.Errorf("expected the stored template to be used, got\n%s", resp.Msg.HTML)
		}
	})

	t.Run("score that is not a number", func(t *testing.T) {
		_, err := env.client.RenderBulletin(ctx, request(&RenderBulletinRequest{
			StudentName: "Léa Doe",
			Grades:      []GradeInput{{Subject: "Maths", Score: "quatorze"}},
		}))
		expectCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("missing student name", func(t *testing.T) {
		_, err := env.client.RenderBulletin(ctx, request(&RenderBulletinRequest{}))
		expectCode(t, err, connect.CodeInvalidArgument)
	})
}
