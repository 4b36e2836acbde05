package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/clubportal/internal/models"
)

// SavePlan inserts or replaces a plan. Its rules are rewritten in order.
func (s *SQLiteStore) SavePlan(ctx context.Context, plan *models.Plan) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO plans (code, name, base_price, couple_price)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(code) DO UPDATE SET
				name = excluded.name,
				base_price = excluded.base_price,
				couple_price = excluded.couple_price`,
			plan.Code, plan.Name, plan.BasePrice, plan.CouplePrice,
		)
		if err != nil {
			return fmt.Errorf("failed to save plan: %w", err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM plan_rules WHERE plan_code = ?", plan.Code); err != nil {
			return fmt.Errorf("failed to clear plan rules: %w", err)
		}
		for i, r := range plan.Rules {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO plan_rules (plan_code, position, min_age, max_age, fee) VALUES (?, ?, ?, ?, ?)",
				plan.Code, i, r.MinAge, r.MaxAge, r.Fee,
			)
			if err != nil {
				return fmt.Errorf("failed to insert plan rule: %w", err)
			}
		}
		return nil
	})
}

// GetPlan retrieves a plan and its rules in evaluation order.
func (s *SQLiteStore) GetPlan(ctx context.Context, code string) (*models.Plan, error) {
	plan := &models.Plan{}
	err := s.db.QueryRowContext(ctx,
		"SELECT code, name, base_price, couple_price FROM plans WHERE code = ?", code,
	).Scan(&plan.Code, &plan.Name, &plan.BasePrice, &plan.CouplePrice)
	if isNoRows(err) {
		return nil, notFound("plan", code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT min_age, max_age, fee FROM plan_rules WHERE plan_code = ? ORDER BY position", code,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get plan rules: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r models.AgeRule
		if err := rows.Scan(&r.MinAge, &r.MaxAge, &r.Fee); err != nil {
			return nil, fmt.Errorf("failed to scan plan rule: %w", err)
		}
		plan.Rules = append(plan.Rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plan rules: %w", err)
	}
	return plan, nil
}
