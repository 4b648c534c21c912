// Command userplan grants a plan to a user directly, bypassing the payment
// flow. Intended for operators: comped accounts, support fixes, local dev.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"server/internal/adapter/repo"
	"server/internal/domain"
	"server/internal/pricing"
)

func main() {
	var (
		idFlag   string
		planFlag string
	)
	flag.StringVar(&idFlag, "id", "", "user ID to update (UUID)")
	flag.StringVar(&planFlag, "plan", "pro", "plan to assign (basic, pro, premium)")
	flag.Parse()

	_ = godotenv.Load()

	userID := strings.TrimSpace(idFlag)
	if userID == "" {
		exitWithError(errors.New("-id is required"))
	}
	plan := domain.PlanTier(strings.ToLower(strings.TrimSpace(planFlag)))
	if !plan.Valid() {
		exitWithError(fmt.Errorf("unsupported plan %q", planFlag))
	}
	planCfg, ok := pricing.ForPlan(plan)
	if !ok {
		exitWithError(fmt.Errorf("no pricing configured for plan %q", plan))
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	users := repo.NewUserRepository(pool)
	history := repo.NewPlanHistoryRepository(pool)
	limits := repo.NewUsageLimitsRepository(pool)

	user, err := users.GetByID(ctx, userID)
	if err != nil {
		exitWithError(fmt.Errorf("failed to load user: %w", err))
	}
	previousPlan := user.CurrentPlan
	if previousPlan == "" {
		previousPlan = domain.PlanBasic
	}

	now := time.Now().UTC()

	if err := history.DeactivateAll(ctx, userID); err != nil {
		exitWithError(fmt.Errorf("failed to deactivate previous plans: %w", err))
	}
	if err := history.Create(ctx, &domain.UserPlanHistory{
		UserID:        userID,
		PlanType:      plan,
		PreviousPlan:  previousPlan,
		StartDate:     now,
		IsActive:      true,
		Currency:      planCfg.Currency,
		PaymentMethod: "manual",
	}); err != nil {
		exitWithError(fmt.Errorf("failed to create plan history: %w", err))
	}
	if err := users.UpdatePlan(ctx, userID, plan); err != nil {
		exitWithError(fmt.Errorf("failed to update user plan: %w", err))
	}
	if err := limits.Create(ctx, &domain.PlanUsageLimits{
		UserID:                      userID,
		PlanType:                    plan,
		PeriodStart:                 now,
		PeriodEnd:                   time.Date(now.Year(), now.Month()+1, 0, 23, 59, 59, 0, time.UTC),
		CVGenerationsLimit:          planCfg.CVGenerationsLimit,
		CoverLetterGenerationsLimit: planCfg.CoverLetterGenerationsLimit,
		AIOptimizationsLimit:        planCfg.AIOptimizationsLimit,
		EditsLimit:                  planCfg.EditsLimit,
		ExportsLimit:                planCfg.ExportsLimit,
		TemplateAccessLevel:         planCfg.TemplateAccess,
	}); err != nil {
		exitWithError(fmt.Errorf("failed to create usage limits: %w", err))
	}

	fmt.Printf("User %s (%s) moved from %s to %s\n", user.ID, user.Email, previousPlan, plan)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
