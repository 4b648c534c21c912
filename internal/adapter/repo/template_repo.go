package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"server/internal/domain"
)

// TemplateRepositoryPG implements domain.TemplateRepository.
type TemplateRepositoryPG struct {
	db DB
}

// NewTemplateRepository creates a new TemplateRepositoryPG.
func NewTemplateRepository(db DB) *TemplateRepositoryPG {
	return &TemplateRepositoryPG{db: db}
}

// GetByID fetches a template by id.
func (r *TemplateRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Template, error) {
	row := r.db.QueryRow(ctx, `
SELECT id, name, COALESCE(description, ''), is_premium, COALESCE(preview_url, ''), created_at
FROM templates
WHERE id = $1;
`, id)

	var t domain.Template
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.IsPremium, &t.PreviewURL, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// List returns all templates.
func (r *TemplateRepositoryPG) List(ctx context.Context) ([]domain.Template, error) {
	rows, err := r.db.Query(ctx, `
SELECT id, name, COALESCE(description, ''), is_premium, COALESCE(preview_url, ''), created_at
FROM templates
ORDER BY name;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Template
	for rows.Next() {
		var t domain.Template
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.IsPremium, &t.PreviewURL, &t.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
