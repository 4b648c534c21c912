package domain

import "time"

// UsageType tags a metered feature on gated routes.
type UsageType string

const (
	UsageCVGeneration   UsageType = "cv_generation"
	UsageCoverLetter    UsageType = "cover_letter"
	UsageAIOptimization UsageType = "ai_optimization"
	UsageEdit           UsageType = "edit"
	UsageExport         UsageType = "export"
)

// TemplateAccessLevel gates premium template usage.
type TemplateAccessLevel string

const (
	TemplateAccessFree    TemplateAccessLevel = "free"
	TemplateAccessPremium TemplateAccessLevel = "premium"
)

// UnlimitedLimit marks a counter without a ceiling.
const UnlimitedLimit = -1

// PlanUsageLimits is the per-period aggregate of feature counters for one
// user. At most one record is current for a user at a time; superseded
// records are kept for history.
type PlanUsageLimits struct {
	ID       string
	UserID   string
	PlanType PlanTier

	PeriodStart time.Time
	PeriodEnd   time.Time

	CVGenerationsUsed           int
	CVGenerationsLimit          int
	CoverLetterGenerationsUsed  int
	CoverLetterGenerationsLimit int
	AIOptimizationsUsed         int
	AIOptimizationsLimit        int
	EditsUsed                   int
	EditsLimit                  int
	ExportsUsed                 int
	ExportsLimit                int

	TemplateAccessLevel TemplateAccessLevel
	CreatedAt           time.Time
}

// Counter returns the used/limit pair for the given usage type.
func (l *PlanUsageLimits) Counter(t UsageType) (used, limit int, ok bool) {
	switch t {
	case UsageCVGeneration:
		return l.CVGenerationsUsed, l.CVGenerationsLimit, true
	case UsageCoverLetter:
		return l.CoverLetterGenerationsUsed, l.CoverLetterGenerationsLimit, true
	case UsageAIOptimization:
		return l.AIOptimizationsUsed, l.AIOptimizationsLimit, true
	case UsageEdit:
		return l.EditsUsed, l.EditsLimit, true
	case UsageExport:
		return l.ExportsUsed, l.ExportsLimit, true
	}
	return 0, 0, false
}

// Reached reports whether the counter for the usage type has hit its ceiling.
// A limit of UnlimitedLimit never reaches.
func (l *PlanUsageLimits) Reached(t UsageType) bool {
	used, limit, ok := l.Counter(t)
	if !ok {
		return false
	}
	if limit == UnlimitedLimit {
		return false
	}
	return used >= limit
}

// Remaining returns how many uses are left, or UnlimitedLimit when the
// counter has no ceiling.
func (l *PlanUsageLimits) Remaining(t UsageType) int {
	used, limit, ok := l.Counter(t)
	if !ok || limit == UnlimitedLimit {
		return UnlimitedLimit
	}
	if rem := limit - used; rem > 0 {
		return rem
	}
	return 0
}

// FeatureUsage is one unaggregated usage event, distinct from the
// PlanUsageLimits counters.
type FeatureUsage struct {
	ID               string
	UserID           string
	FeatureType      string
	FeatureName      string
	CVID             *string
	TemplateID       *string
	UsageCount       int
	PlanAtUsage      PlanTier
	WasSuccessful    bool
	ErrorDetails     string
	ProcessingTimeMS int64
	Metadata         map[string]any
	CreatedAt        time.Time
}
