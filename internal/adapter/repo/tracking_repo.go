package repo

import (
	"context"

	"github.com/google/uuid"

	"server/internal/domain"
)

// FeatureUsageRepositoryPG implements domain.FeatureUsageRepository as an
// append-only event log.
type FeatureUsageRepositoryPG struct {
	db DB
}

// NewFeatureUsageRepository creates a new FeatureUsageRepositoryPG.
func NewFeatureUsageRepository(db DB) *FeatureUsageRepositoryPG {
	return &FeatureUsageRepositoryPG{db: db}
}

// Create appends one usage event.
func (r *FeatureUsageRepositoryPG) Create(ctx context.Context, event *domain.FeatureUsage) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.UsageCount == 0 {
		event.UsageCount = 1
	}
	_, err := r.db.Exec(ctx, `
INSERT INTO feature_usage_tracking (
	id, user_id, feature_type, feature_name, cv_id, template_id,
	usage_count, plan_at_usage, was_successful, error_details,
	processing_time_ms, metadata
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
`,
		event.ID, event.UserID, event.FeatureType, event.FeatureName, event.CVID, event.TemplateID,
		event.UsageCount, event.PlanAtUsage, event.WasSuccessful, event.ErrorDetails,
		event.ProcessingTimeMS, marshalJSON(event.Metadata),
	)
	return err
}
