// Package service hosts the billing workflow: payment initiation,
// verification, and the plan rotation that follows a completed purchase.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"server/internal/audit"
	"server/internal/domain"
	"server/internal/monitor"
	"server/internal/pricing"
)

const paymentProvider = "paystack"

// BillingService coordinates payment transactions and plan rotation.
type BillingService struct {
	users        domain.UserRepository
	transactions domain.PaymentTransactionRepository
	history      domain.PlanHistoryRepository
	limits       domain.UsageLimitsRepository
	audit        *audit.Logger
	perf         *monitor.PerformanceMonitor
	log          zerolog.Logger
}

// NewBillingService wires the billing workflow with its collaborators.
func NewBillingService(
	users domain.UserRepository,
	transactions domain.PaymentTransactionRepository,
	history domain.PlanHistoryRepository,
	limits domain.UsageLimitsRepository,
	auditLog *audit.Logger,
	perf *monitor.PerformanceMonitor,
	log zerolog.Logger,
) *BillingService {
	return &BillingService{
		users:        users,
		transactions: transactions,
		history:      history,
		limits:       limits,
		audit:        auditLog,
		perf:         perf,
		log:          log,
	}
}

// InitiateInput is the validated payload for starting a plan purchase.
type InitiateInput struct {
	PlanType domain.PlanTier
	Amount   float64
	Currency string
}

// Initiate validates the purchase request and records a pending transaction.
func (s *BillingService) Initiate(ctx context.Context, userID string, in InitiateInput) (*domain.PaymentTransaction, error) {
	fields := map[string]string{}
	if !in.PlanType.Valid() {
		fields["plan_type"] = "must be one of basic, pro, premium"
	}
	if in.Amount <= 0 {
		fields["amount"] = "must be positive"
	}
	if len(fields) > 0 {
		return nil, domain.NewValidationError(fields)
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = pricing.Currency()
	}

	tx := &domain.PaymentTransaction{
		UserID:            userID,
		TransactionType:   "plan_purchase",
		Amount:            in.Amount,
		Currency:          currency,
		Provider:          paymentProvider,
		Status:            domain.TransactionPending,
		PlanType:          in.PlanType,
		ProviderReference: newReference(),
		Description:       fmt.Sprintf("Purchase of %s plan", in.PlanType),
	}

	if err := s.perf.Measure(ctx, "initiate_payment", func(ctx context.Context) error {
		return s.transactions.Create(ctx, tx)
	}); err != nil {
		return nil, fmt.Errorf("create payment transaction: %w", err)
	}

	s.audit.LogPaymentEvent(ctx, userID, "payment_initiated", audit.Details{
		EntityID: tx.ID,
		Metadata: map[string]any{
			"amount":    tx.Amount,
			"currency":  tx.Currency,
			"provider":  tx.Provider,
			"plan_type": string(tx.PlanType),
		},
	})

	s.log.Info().
		Str("user_id", userID).
		Str("transaction_id", tx.ID).
		Str("plan_type", string(tx.PlanType)).
		Float64("amount", tx.Amount).
		Msg("payment initiated")

	return tx, nil
}

// Verify completes the transaction matching the provider reference and, when
// the transaction carries a plan, rotates the caller onto it.
//
// The rotation runs as four separate writes (close history, append history,
// update user, provision fresh limits); they are not atomic, and a crash
// mid-sequence can leave them partially applied. Re-verifying a reference
// that already completed returns the stored transaction without repeating
// the rotation.
func (s *BillingService) Verify(ctx context.Context, userID, reference string) (*domain.PaymentTransaction, error) {
	if strings.TrimSpace(reference) == "" {
		return nil, domain.NewValidationError(map[string]string{"reference": "is required"})
	}

	tx, err := s.transactions.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if tx.UserID != userID {
		return nil, domain.ErrForbidden
	}
	if tx.Status == domain.TransactionCompleted {
		return tx, nil
	}

	verifyErr := s.perf.Measure(ctx, "verify_payment", func(ctx context.Context) error {
		completedAt := time.Now().UTC()
		if err := s.transactions.MarkCompleted(ctx, tx.ID, "success", completedAt); err != nil {
			return fmt.Errorf("complete transaction: %w", err)
		}
		tx.Status = domain.TransactionCompleted
		tx.ProviderStatus = "success"
		tx.CompletedAt = &completedAt

		if tx.PlanType != "" {
			if err := s.rotatePlan(ctx, tx); err != nil {
				return err
			}
		}
		return nil
	})
	if verifyErr != nil {
		s.audit.LogPaymentEvent(ctx, userID, "payment_verification_failed", audit.Details{
			EntityID: tx.ID,
			Status:   "failed",
			Error:    verifyErr.Error(),
		})
		return nil, verifyErr
	}

	s.audit.LogPaymentEvent(ctx, userID, "payment_verified", audit.Details{
		EntityID: tx.ID,
		Metadata: map[string]any{
			"amount":   tx.Amount,
			"currency": tx.Currency,
			"provider": tx.Provider,
		},
	})

	s.log.Info().
		Str("user_id", userID).
		Str("transaction_id", tx.ID).
		Str("reference", reference).
		Msg("payment verified")

	return tx, nil
}

// rotatePlan applies the plan purchased by the transaction: close prior
// history entries, append the new active one, move the user's current plan,
// and provision zeroed usage counters for the current calendar month.
func (s *BillingService) rotatePlan(ctx context.Context, tx *domain.PaymentTransaction) error {
	previousPlan := domain.PlanBasic
	if user, err := s.users.GetByID(ctx, tx.UserID); err == nil && user.CurrentPlan != "" {
		previousPlan = user.CurrentPlan
	}

	if err := s.history.DeactivateAll(ctx, tx.UserID); err != nil {
		return fmt.Errorf("deactivate previous plans: %w", err)
	}

	now := time.Now().UTC()
	if err := s.history.Create(ctx, &domain.UserPlanHistory{
		UserID:               tx.UserID,
		PlanType:             tx.PlanType,
		PreviousPlan:         previousPlan,
		StartDate:            now,
		IsActive:             true,
		Amount:               tx.Amount,
		Currency:             tx.Currency,
		PaymentMethod:        tx.Provider,
		TransactionReference: tx.ProviderReference,
	}); err != nil {
		return fmt.Errorf("create plan history: %w", err)
	}

	if err := s.users.UpdatePlan(ctx, tx.UserID, tx.PlanType); err != nil {
		return fmt.Errorf("update user plan: %w", err)
	}

	plan, ok := pricing.ForPlan(tx.PlanType)
	if !ok {
		return fmt.Errorf("no pricing configured for plan %q", tx.PlanType)
	}

	if err := s.limits.Create(ctx, &domain.PlanUsageLimits{
		UserID:                      tx.UserID,
		PlanType:                    tx.PlanType,
		PeriodStart:                 now,
		PeriodEnd:                   endOfMonth(now),
		CVGenerationsLimit:          plan.CVGenerationsLimit,
		CoverLetterGenerationsLimit: plan.CoverLetterGenerationsLimit,
		AIOptimizationsLimit:        plan.AIOptimizationsLimit,
		EditsLimit:                  plan.EditsLimit,
		ExportsLimit:                plan.ExportsLimit,
		TemplateAccessLevel:         plan.TemplateAccess,
	}); err != nil {
		return fmt.Errorf("create plan usage limits: %w", err)
	}

	return nil
}

// PaymentHistory returns the user's payment transactions, newest first.
func (s *BillingService) PaymentHistory(ctx context.Context, userID string) ([]domain.PaymentTransaction, error) {
	return s.transactions.ListByUser(ctx, userID)
}

// PlanHistory returns the user's plan transitions, newest first.
func (s *BillingService) PlanHistory(ctx context.Context, userID string) ([]domain.UserPlanHistory, error) {
	return s.history.ListByUser(ctx, userID)
}

func newReference() string {
	return "cvb_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// endOfMonth returns the final second of t's calendar month.
func endOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 23, 59, 59, 0, t.Location())
}
