package repo

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"server/internal/domain"
)

// AuditLogRepositoryPG implements domain.AuditLogRepository. Rows are
// append-only; there is no update or delete path.
type AuditLogRepositoryPG struct {
	db DB
}

// NewAuditLogRepository creates a new AuditLogRepositoryPG.
func NewAuditLogRepository(db DB) *AuditLogRepositoryPG {
	return &AuditLogRepositoryPG{db: db}
}

// Create appends one audit entry.
func (r *AuditLogRepositoryPG) Create(ctx context.Context, entry *domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	_, err := r.db.Exec(ctx, `
INSERT INTO audit_logs (
	id, user_id, action, entity_type, entity_id,
	old_values, new_values, status, ip_address, user_agent, metadata
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
`,
		entry.ID, entry.UserID, entry.Action, entry.EntityType, entry.EntityID,
		marshalJSON(entry.OldValues), marshalJSON(entry.NewValues),
		entry.Status, entry.IPAddress, entry.UserAgent, marshalJSON(entry.Metadata),
	)
	return err
}

// List returns audit entries matching the filter, newest first.
func (r *AuditLogRepositoryPG) List(ctx context.Context, filter domain.AuditLogFilter) ([]domain.AuditLog, error) {
	builder := sq.Select(
		"id", "user_id", "action", "COALESCE(entity_type, '')", "COALESCE(entity_id, '')",
		"old_values", "new_values", "status", "COALESCE(ip_address, '')", "COALESCE(user_agent, '')",
		"metadata", "created_at",
	).
		From("audit_logs").
		OrderBy("created_at DESC").
		PlaceholderFormat(sq.Dollar)

	if filter.UserID != "" {
		builder = builder.Where(sq.Eq{"user_id": filter.UserID})
	}
	if filter.Action != "" {
		builder = builder.Where(sq.Eq{"action": filter.Action})
	}
	if filter.EntityType != "" {
		builder = builder.Where(sq.Eq{"entity_type": filter.EntityType})
	}
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	builder = builder.Limit(uint64(limit))

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.AuditLog
	for rows.Next() {
		var entry domain.AuditLog
		var oldValues, newValues, metadata []byte
		if err := rows.Scan(
			&entry.ID, &entry.UserID, &entry.Action, &entry.EntityType, &entry.EntityID,
			&oldValues, &newValues, &entry.Status, &entry.IPAddress, &entry.UserAgent,
			&metadata, &entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entry.OldValues = unmarshalJSON(oldValues)
		entry.NewValues = unmarshalJSON(newValues)
		entry.Metadata = unmarshalJSON(metadata)
		items = append(items, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
