package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"server/internal/domain"
)

// UsageLimitsRepositoryPG implements domain.UsageLimitsRepository.
type UsageLimitsRepositoryPG struct {
	db DB
}

// NewUsageLimitsRepository creates a new UsageLimitsRepositoryPG.
func NewUsageLimitsRepository(db DB) *UsageLimitsRepositoryPG {
	return &UsageLimitsRepositoryPG{db: db}
}

const usageColumns = `id, user_id, plan_type, period_start, period_end,
cv_generations_used, cv_generations_limit,
cover_letter_generations_used, cover_letter_generations_limit,
ai_optimizations_used, ai_optimizations_limit,
edits_used, edits_limit,
exports_used, exports_limit,
template_access_level, created_at`

// GetCurrent returns the usage-limit record whose billing period covers now.
// The latest record wins when periods overlap after a mid-month upgrade.
func (r *UsageLimitsRepositoryPG) GetCurrent(ctx context.Context, userID string) (*domain.PlanUsageLimits, error) {
	row := r.db.QueryRow(ctx, `
SELECT `+usageColumns+`
FROM plan_usage_limits
WHERE user_id = $1
  AND period_start <= NOW()
  AND period_end >= NOW()
ORDER BY created_at DESC
LIMIT 1;
`, userID)
	return scanUsageLimits(row)
}

// Create inserts a fresh usage-limit record for a new billing period.
func (r *UsageLimitsRepositoryPG) Create(ctx context.Context, limits *domain.PlanUsageLimits) error {
	if limits.ID == "" {
		limits.ID = uuid.NewString()
	}
	_, err := r.db.Exec(ctx, `
INSERT INTO plan_usage_limits (
	id, user_id, plan_type, period_start, period_end,
	cv_generations_used, cv_generations_limit,
	cover_letter_generations_used, cover_letter_generations_limit,
	ai_optimizations_used, ai_optimizations_limit,
	edits_used, edits_limit,
	exports_used, exports_limit,
	template_access_level
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
`,
		limits.ID, limits.UserID, limits.PlanType, limits.PeriodStart, limits.PeriodEnd,
		limits.CVGenerationsUsed, limits.CVGenerationsLimit,
		limits.CoverLetterGenerationsUsed, limits.CoverLetterGenerationsLimit,
		limits.AIOptimizationsUsed, limits.AIOptimizationsLimit,
		limits.EditsUsed, limits.EditsLimit,
		limits.ExportsUsed, limits.ExportsLimit,
		limits.TemplateAccessLevel,
	)
	return err
}

// usageCounterColumns whitelists the counter column per usage type; the
// column name is interpolated into SQL and must never come from input.
var usageCounterColumns = map[domain.UsageType]string{
	domain.UsageCVGeneration:   "cv_generations_used",
	domain.UsageCoverLetter:    "cover_letter_generations_used",
	domain.UsageAIOptimization: "ai_optimizations_used",
	domain.UsageEdit:           "edits_used",
	domain.UsageExport:         "exports_used",
}

// Increment adds one to the matching counter on the user's current record.
func (r *UsageLimitsRepositoryPG) Increment(ctx context.Context, userID string, usage domain.UsageType) error {
	column, ok := usageCounterColumns[usage]
	if !ok {
		return fmt.Errorf("unknown usage type %q", usage)
	}

	query := fmt.Sprintf(`
UPDATE plan_usage_limits
SET %s = %s + 1
WHERE id = (
	SELECT id FROM plan_usage_limits
	WHERE user_id = $1
	  AND period_start <= NOW()
	  AND period_end >= NOW()
	ORDER BY created_at DESC
	LIMIT 1
);
`, column, column)

	tag, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanUsageLimits(row pgx.Row) (*domain.PlanUsageLimits, error) {
	var l domain.PlanUsageLimits
	err := row.Scan(
		&l.ID, &l.UserID, &l.PlanType, &l.PeriodStart, &l.PeriodEnd,
		&l.CVGenerationsUsed, &l.CVGenerationsLimit,
		&l.CoverLetterGenerationsUsed, &l.CoverLetterGenerationsLimit,
		&l.AIOptimizationsUsed, &l.AIOptimizationsLimit,
		&l.EditsUsed, &l.EditsLimit,
		&l.ExportsUsed, &l.ExportsLimit,
		&l.TemplateAccessLevel, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}
