package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/clubportal/internal/document"
	"github.com/mmynk/clubportal/internal/metrics"
	"github.com/mmynk/clubportal/internal/middleware"
	"github.com/mmynk/clubportal/internal/models"
	"github.com/mmynk/clubportal/internal/storage"
)

// TemplateService manages the HTML template of each document kind and
// renders the documents that are not backed by stored records.
type TemplateService struct {
	store    storage.Store
	compiler *document.Compiler
}

// NewTemplateService creates a new TemplateService with the given storage backend.
func NewTemplateService(store storage.Store, compiler *document.Compiler) *TemplateService {
	return &TemplateService{store: store, compiler: compiler}
}

// SaveTemplate stores a template. A template missing any required token of
// its kind is refused with FailedPrecondition and nothing is written.
func (s *TemplateService) SaveTemplate(ctx context.Context, req *connect.Request[SaveTemplateRequest]) (*connect.Response[SaveTemplateResponse], error) {
	slog.Info("SaveTemplate request received", "kind", req.Msg.Kind, "bytes", len(req.Msg.HTML))

	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	kind, err := document.ParseKind(req.Msg.Kind)
	if err != nil {
		return nil, toConnectError("type de document inconnu", err)
	}
	if err := document.Validate(kind, req.Msg.HTML); err != nil {
		slog.Warn("SaveTemplate refused", "kind", kind, "error", err)
		return nil, toConnectError("modèle refusé", err)
	}

	t := &models.Template{
		Kind:      string(kind),
		HTML:      req.Msg.HTML,
		UpdatedBy: middleware.GetAdminID(ctx),
	}
	if err := s.store.SaveTemplate(ctx, t); err != nil {
		slog.Error("SaveTemplate failed", "kind", kind, "error", err)
		return nil, toConnectError("impossible d'enregistrer le modèle", err)
	}

	slog.Info("SaveTemplate successful", "kind", kind, "updated_by", t.UpdatedBy)
	return connect.NewResponse(&SaveTemplateResponse{Template: *t}), nil
}

// GetTemplate returns the stored template of a kind, or the built-in one.
func (s *TemplateService) GetTemplate(ctx context.Context, req *connect.Request[GetTemplateRequest]) (*connect.Response[GetTemplateResponse], error) {
	slog.Info("GetTemplate request received", "kind", req.Msg.Kind)

	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	kind, err := document.ParseKind(req.Msg.Kind)
	if err != nil {
		return nil, toConnectError("type de document inconnu", err)
	}

	t, err := s.store.GetTemplate(ctx, string(kind))
	if err == nil {
		return connect.NewResponse(&GetTemplateResponse{Template: *t}), nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		slog.Error("GetTemplate failed", "kind", kind, "error", err)
		return nil, toConnectError("impossible de charger le modèle", err)
	}

	html, err := document.DefaultTemplate(kind)
	if err != nil {
		return nil, toConnectError("impossible de charger le modèle", err)
	}
	return connect.NewResponse(&GetTemplateResponse{
		Template:  models.Template{Kind: string(kind), HTML: html},
		IsDefault: true,
	}), nil
}

// RequiredTokens lists the tokens a template of a kind must contain.
func (s *TemplateService) RequiredTokens(ctx context.Context, req *connect.Request[RequiredTokensRequest]) (*connect.Response[RequiredTokensResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	kind, err := document.ParseKind(req.Msg.Kind)
	if err != nil {
		return nil, toConnectError("type de document inconnu", err)
	}

	tokens, err := document.RequiredTokens(kind)
	if err != nil {
		return nil, toConnectError("type de document inconnu", err)
	}
	names := make([]string, len(tokens))
	for i, t := range tokens {
		names[i] = t.String()
	}
	return connect.NewResponse(&RequiredTokensResponse{Tokens: names}), nil
}

// RenderBulletin compiles a student bulletin from the grades in the request
// with the stored bulletin template, or the built-in one.
func (s *TemplateService) RenderBulletin(ctx context.Context, req *connect.Request[RenderBulletinRequest]) (*connect.Response[RenderBulletinResponse], error) {
	slog.Info("RenderBulletin request received", "student", req.Msg.StudentName, "grades", len(req.Msg.Grades))

	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	rec := document.BulletinRecord{
		StudentName: strings.TrimSpace(req.Msg.StudentName),
		ClassName:   strings.TrimSpace(req.Msg.ClassName),
		Period:      strings.TrimSpace(req.Msg.Period),
		Remarks:     req.Msg.Remarks,
		Grades:      make([]document.Grade, len(req.Msg.Grades)),
	}
	for i, g := range req.Msg.Grades {
		grade, err := g.toGrade()
		if err != nil {
			return nil, invalid("note invalide", err)
		}
		rec.Grades[i] = grade
	}

	tmpl, err := loadTemplate(ctx, s.store, document.KindBulletin)
	if err != nil {
		return nil, toConnectError("impossible de charger le modèle", err)
	}
	html, err := s.compiler.CompileBulletin(tmpl, rec)
	if err != nil {
		slog.Error("RenderBulletin failed", "student", rec.StudentName, "error", err)
		return nil, toConnectError("impossible de générer le bulletin", err)
	}

	metrics.DocumentsCompiled.WithLabelValues(string(document.KindBulletin)).Inc()
	slog.Info("RenderBulletin successful", "student", rec.StudentName, "bytes", len(html))
	return connect.NewResponse(&RenderBulletinResponse{HTML: html}), nil
}

func (g GradeInput) toGrade() (document.Grade, error) {
	score, err := decimal.NewFromString(g.Score)
	if err != nil {
		return document.Grade{}, err
	}
	grade := document.Grade{Subject: strings.TrimSpace(g.Subject), Score: score}
	if g.Coefficient != "" {
		if grade.Coefficient, err = decimal.NewFromString(g.Coefficient); err != nil {
			return document.Grade{}, err
		}
	}
	return grade, nil
}
