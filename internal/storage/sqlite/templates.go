package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/mmynk/clubportal/internal/models"
)

// SaveTemplate inserts or replaces the template of t.Kind.
func (s *SQLiteStore) SaveTemplate(ctx context.Context, t *models.Template) error {
	if t.UpdatedAt == 0 {
		t.UpdatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO templates (kind, html, updated_at, updated_by)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(kind) DO UPDATE SET
			html = excluded.html,
			updated_at = excluded.updated_at,
			updated_by = excluded.updated_by`,
		t.Kind, t.HTML, t.UpdatedAt, t.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save template: %w", err)
	}
	return nil
}

// GetTemplate retrieves the template of a document kind.
func (s *SQLiteStore) GetTemplate(ctx context.Context, kind string) (*models.Template, error) {
	t := &models.Template{}
	err := s.db.QueryRowContext(ctx,
		"SELECT kind, html, updated_at, updated_by FROM templates WHERE kind = ?", kind,
	).Scan(&t.Kind, &t.HTML, &t.UpdatedAt, &t.UpdatedBy)
	if isNoRows(err) {
		return nil, notFound("template", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return t, nil
}
