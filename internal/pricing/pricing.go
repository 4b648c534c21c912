// Package pricing exposes the static plan configuration: price and
// per-feature ceilings keyed by plan tier.
package pricing

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"server/internal/domain"
)

//go:embed pricing.json
var pricingJSON []byte

type rawLimits struct {
	CVGenerations          *int   `json:"cvGenerations"`
	CoverLetterGenerations *int   `json:"coverLetterGenerations"`
	AIRuns                 *int   `json:"aiRuns"`
	EditsAllowed           *int   `json:"editsAllowed"`
	Exports                *int   `json:"exports"`
	TemplateAccess         string `json:"templateAccess"`
}

type rawPlan struct {
	Price  float64   `json:"price"`
	Limits rawLimits `json:"limits"`
}

type rawConfig struct {
	Currency string             `json:"currency"`
	Plans    map[string]rawPlan `json:"plans"`
}

// Plan is the resolved configuration for one tier. A limit of
// domain.UnlimitedLimit means no ceiling; absent values resolve to unlimited.
type Plan struct {
	Tier                        domain.PlanTier
	Price                       float64
	Currency                    string
	CVGenerationsLimit          int
	CoverLetterGenerationsLimit int
	AIOptimizationsLimit        int
	EditsLimit                  int
	ExportsLimit                int
	TemplateAccess              domain.TemplateAccessLevel
}

var plans map[domain.PlanTier]Plan

func init() {
	var raw rawConfig
	if err := json.Unmarshal(pricingJSON, &raw); err != nil {
		panic(fmt.Sprintf("pricing: invalid embedded config: %v", err))
	}

	plans = make(map[domain.PlanTier]Plan, len(raw.Plans))
	for name, p := range raw.Plans {
		tier := domain.PlanTier(name)
		access := domain.TemplateAccessLevel(p.Limits.TemplateAccess)
		if access == "" {
			access = domain.TemplateAccessFree
		}
		plans[tier] = Plan{
			Tier:                        tier,
			Price:                       p.Price,
			Currency:                    raw.Currency,
			CVGenerationsLimit:          limitOrUnlimited(p.Limits.CVGenerations),
			CoverLetterGenerationsLimit: limitOrUnlimited(p.Limits.CoverLetterGenerations),
			AIOptimizationsLimit:        limitOrUnlimited(p.Limits.AIRuns),
			EditsLimit:                  limitOrUnlimited(p.Limits.EditsAllowed),
			ExportsLimit:                limitOrUnlimited(p.Limits.Exports),
			TemplateAccess:              access,
		}
	}
}

func limitOrUnlimited(v *int) int {
	if v == nil {
		return domain.UnlimitedLimit
	}
	return *v
}

// ForPlan returns the configuration for a tier.
func ForPlan(tier domain.PlanTier) (Plan, bool) {
	p, ok := plans[tier]
	return p, ok
}

// Currency returns the configured billing currency.
func Currency() string {
	for _, p := range plans {
		return p.Currency
	}
	return "GHS"
}
