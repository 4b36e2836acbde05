package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/clubportal/internal/models"
	"github.com/mmynk/clubportal/internal/storage"
)

// CreateProfile persists a new club membership.
func (s *SQLiteStore) CreateProfile(ctx context.Context, profile *models.ClubProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	if profile.UpdatedAt == 0 {
		profile.UpdatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO club_profiles (id, user_id, plan_code, couple, monthly_fee, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		profile.ID, profile.UserID, profile.PlanCode, profile.Couple, profile.MonthlyFee, profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// GetProfile retrieves a club membership by ID.
func (s *SQLiteStore) GetProfile(ctx context.Context, id string) (*models.ClubProfile, error) {
	p := &models.ClubProfile{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, plan_code, couple, monthly_fee, updated_at FROM club_profiles WHERE id = ?", id,
	).Scan(&p.ID, &p.UserID, &p.PlanCode, &p.Couple, &p.MonthlyFee, &p.UpdatedAt)
	if isNoRows(err) {
		return nil, notFound("profile", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// UpdateProfile writes the profile, the member change and the given
// members' fees atomically.
func (s *SQLiteStore) UpdateProfile(ctx context.Context, profile *models.ClubProfile, change storage.MemberChange, fees []models.FamilyMember) error {
	profile.UpdatedAt = time.Now().Unix()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE club_profiles SET plan_code = ?, couple = ?, monthly_fee = ?, updated_at = ? WHERE id = ?",
			profile.PlanCode, profile.Couple, profile.MonthlyFee, profile.UpdatedAt, profile.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}
		if err := expectOne(res, "profile", profile.ID); err != nil {
			return err
		}

		switch {
		case change.Add != nil:
			change.Add.ProfileID = profile.ID
			err = addFamilyMember(ctx, tx, change.Add)
		case change.Update != nil:
			err = updateFamilyMember(ctx, tx, change.Update)
		case change.Remove != "":
			err = deleteFamilyMember(ctx, tx, change.Remove)
		}
		if err != nil {
			return err
		}

		for _, m := range fees {
			if _, err := tx.ExecContext(ctx,
				"UPDATE family_members SET fee = ? WHERE id = ? AND profile_id = ?", m.Fee, m.ID, profile.ID,
			); err != nil {
				return fmt.Errorf("failed to update member fee: %w", err)
			}
		}
		return nil
	})
}

// AddFamilyMember persists a new member of a profile.
func (s *SQLiteStore) AddFamilyMember(ctx context.Context, m *models.FamilyMember) error {
	return addFamilyMember(ctx, s.db, m)
}

// UpdateFamilyMember rewrites a member's name, relation, birth date and fee.
func (s *SQLiteStore) UpdateFamilyMember(ctx context.Context, m *models.FamilyMember) error {
	return updateFamilyMember(ctx, s.db, m)
}

// DeleteFamilyMember removes a member.
func (s *SQLiteStore) DeleteFamilyMember(ctx context.Context, id string) error {
	return deleteFamilyMember(ctx, s.db, id)
}

func addFamilyMember(ctx context.Context, q queryer, m *models.FamilyMember) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO family_members (id, profile_id, name, relation, birth_date, fee)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.ProfileID, m.Name, m.Relation, m.BirthDate, m.Fee,
	)
	if err != nil {
		return fmt.Errorf("failed to add family member: %w", err)
	}
	return nil
}

func updateFamilyMember(ctx context.Context, q queryer, m *models.FamilyMember) error {
	res, err := q.ExecContext(ctx,
		"UPDATE family_members SET name = ?, relation = ?, birth_date = ?, fee = ? WHERE id = ?",
		m.Name, m.Relation, m.BirthDate, m.Fee, m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update family member: %w", err)
	}
	return expectOne(res, "family member", m.ID)
}

func deleteFamilyMember(ctx context.Context, q queryer, id string) error {
	res, err := q.ExecContext(ctx, "DELETE FROM family_members WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete family member: %w", err)
	}
	return expectOne(res, "family member", id)
}

// ListFamilyMembers returns a profile's members in insertion order.
func (s *SQLiteStore) ListFamilyMembers(ctx context.Context, profileID string) ([]models.FamilyMember, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, profile_id, name, relation, birth_date, fee
		FROM family_members WHERE profile_id = ? ORDER BY rowid`, profileID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list family members: %w", err)
	}
	defer rows.Close()

	var members []models.FamilyMember
	for rows.Next() {
		var m models.FamilyMember
		if err := rows.Scan(&m.ID, &m.ProfileID, &m.Name, &m.Relation, &m.BirthDate, &m.Fee); err != nil {
			return nil, fmt.Errorf("failed to scan family member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating family members: %w", err)
	}
	return members, nil
}

// expectOne turns a write that matched no row into a not-found error.
func expectOne(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound(what, id)
	}
	return nil
}
