package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"server/internal/domain"
)

// CVRepositoryPG implements domain.CVRepository.
type CVRepositoryPG struct {
	db DB
}

// NewCVRepository creates a new CVRepositoryPG.
func NewCVRepository(db DB) *CVRepositoryPG {
	return &CVRepositoryPG{db: db}
}

// Create inserts a new CV document.
func (r *CVRepositoryPG) Create(ctx context.Context, cv *domain.CV) error {
	if cv.ID == "" {
		cv.ID = uuid.NewString()
	}
	_, err := r.db.Exec(ctx, `
INSERT INTO cvs (id, user_id, title, template_id, content)
VALUES ($1, $2, $3, $4, $5);
`, cv.ID, cv.UserID, cv.Title, cv.TemplateID, marshalJSON(cv.Content))
	return err
}

// GetByID fetches a CV by id.
func (r *CVRepositoryPG) GetByID(ctx context.Context, id string) (*domain.CV, error) {
	row := r.db.QueryRow(ctx, `
SELECT id, user_id, title, template_id, content, created_at, updated_at
FROM cvs
WHERE id = $1;
`, id)
	return scanCV(row)
}

// ListByUser returns the user's CVs, newest first.
func (r *CVRepositoryPG) ListByUser(ctx context.Context, userID string) ([]domain.CV, error) {
	rows, err := r.db.Query(ctx, `
SELECT id, user_id, title, template_id, content, created_at, updated_at
FROM cvs
WHERE user_id = $1
ORDER BY created_at DESC;
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.CV
	for rows.Next() {
		cv, err := scanCV(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *cv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Update overwrites the CV's mutable fields.
func (r *CVRepositoryPG) Update(ctx context.Context, cv *domain.CV) error {
	tag, err := r.db.Exec(ctx, `
UPDATE cvs
SET title = $2, template_id = $3, content = $4, updated_at = NOW()
WHERE id = $1;
`, cv.ID, cv.Title, cv.TemplateID, marshalJSON(cv.Content))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanCV(row pgx.Row) (*domain.CV, error) {
	var cv domain.CV
	var content []byte
	if err := row.Scan(&cv.ID, &cv.UserID, &cv.Title, &cv.TemplateID, &content, &cv.CreatedAt, &cv.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	cv.Content = unmarshalJSON(content)
	return &cv, nil
}
