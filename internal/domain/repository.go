package domain

import (
	"context"
	"time"
)

// UserRepository defines access methods for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	UpdatePlan(ctx context.Context, userID string, plan PlanTier) error
}

// UsageLimitsRepository handles the per-period aggregate counters.
type UsageLimitsRepository interface {
	// GetCurrent returns the usage-limit record whose period covers now, or
	// ErrNotFound when the user has no active plan.
	GetCurrent(ctx context.Context, userID string) (*PlanUsageLimits, error)
	Create(ctx context.Context, limits *PlanUsageLimits) error
	// Increment adds one to the counter matching the usage type on the
	// user's current record.
	Increment(ctx context.Context, userID string, usage UsageType) error
}

// PaymentTransactionRepository persists payment attempts.
type PaymentTransactionRepository interface {
	Create(ctx context.Context, tx *PaymentTransaction) error
	GetByReference(ctx context.Context, reference string) (*PaymentTransaction, error)
	// MarkCompleted flips a pending transaction to completed exactly once.
	MarkCompleted(ctx context.Context, id string, providerStatus string, completedAt time.Time) error
	ListByUser(ctx context.Context, userID string) ([]PaymentTransaction, error)
}

// PlanHistoryRepository maintains the append-only plan-transition ledger.
type PlanHistoryRepository interface {
	DeactivateAll(ctx context.Context, userID string) error
	Create(ctx context.Context, entry *UserPlanHistory) error
	ListByUser(ctx context.Context, userID string) ([]UserPlanHistory, error)
}

// AuditLogRepository is the append-only audit sink.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *AuditLog) error
	List(ctx context.Context, filter AuditLogFilter) ([]AuditLog, error)
}

// FeatureUsageRepository records unaggregated per-invocation usage events.
type FeatureUsageRepository interface {
	Create(ctx context.Context, event *FeatureUsage) error
}

// TemplateRepository exposes CV template lookups.
type TemplateRepository interface {
	GetByID(ctx context.Context, id string) (*Template, error)
	List(ctx context.Context) ([]Template, error)
}

// CVRepository persists resume documents.
type CVRepository interface {
	Create(ctx context.Context, cv *CV) error
	GetByID(ctx context.Context, id string) (*CV, error)
	ListByUser(ctx context.Context, userID string) ([]CV, error)
	Update(ctx context.Context, cv *CV) error
}
