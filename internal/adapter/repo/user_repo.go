package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"server/internal/domain"
)

// UserRepositoryPG implements domain.UserRepository backed by PostgreSQL.
type UserRepositoryPG struct {
	db DB
}

// NewUserRepository creates a new UserRepositoryPG.
func NewUserRepository(db DB) *UserRepositoryPG {
	return &UserRepositoryPG{db: db}
}

// GetByID fetches a user by UUID.
func (r *UserRepositoryPG) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `
SELECT id, email, name, COALESCE(current_plan, ''), is_admin, is_active, created_at, updated_at
FROM users
WHERE id = $1;
`, id)

	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.CurrentPlan, &u.IsAdmin, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UpdatePlan rotates the user's current plan field.
func (r *UserRepositoryPG) UpdatePlan(ctx context.Context, userID string, plan domain.PlanTier) error {
	tag, err := r.db.Exec(ctx, `
UPDATE users SET current_plan = $2, updated_at = NOW() WHERE id = $1;
`, userID, plan)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
