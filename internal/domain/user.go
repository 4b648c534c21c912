package domain

import "time"

// PlanTier enumerates purchasable subscription tiers.
type PlanTier string

const (
	PlanBasic   PlanTier = "basic"
	PlanPro     PlanTier = "pro"
	PlanPremium PlanTier = "premium"
)

// Valid reports whether the tier is one of the known purchasable tiers.
func (p PlanTier) Valid() bool {
	switch p {
	case PlanBasic, PlanPro, PlanPremium:
		return true
	}
	return false
}

// User represents an account within the platform. CurrentPlan stays empty
// until the first completed plan purchase.
type User struct {
	ID          string
	Email       string
	Name        string
	CurrentPlan PlanTier
	IsAdmin     bool
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
