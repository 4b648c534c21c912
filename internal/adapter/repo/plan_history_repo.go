package repo

import (
	"context"

	"github.com/google/uuid"

	"server/internal/domain"
)

// PlanHistoryRepositoryPG implements domain.PlanHistoryRepository.
type PlanHistoryRepositoryPG struct {
	db DB
}

// NewPlanHistoryRepository creates a new PlanHistoryRepositoryPG.
func NewPlanHistoryRepository(db DB) *PlanHistoryRepositoryPG {
	return &PlanHistoryRepositoryPG{db: db}
}

// DeactivateAll closes every active history entry for the user, stamping the
// end date. Runs before inserting the replacement entry so at most one row
// stays active.
func (r *PlanHistoryRepositoryPG) DeactivateAll(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `
UPDATE user_plan_history
SET is_active = FALSE, end_date = NOW()
WHERE user_id = $1 AND is_active = TRUE;
`, userID)
	return err
}

// Create appends a new plan-transition entry.
func (r *PlanHistoryRepositoryPG) Create(ctx context.Context, entry *domain.UserPlanHistory) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	_, err := r.db.Exec(ctx, `
INSERT INTO user_plan_history (
	id, user_id, plan_type, previous_plan, start_date, is_active,
	amount, currency, payment_method, transaction_reference
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
`,
		entry.ID, entry.UserID, entry.PlanType, nullIfEmpty(string(entry.PreviousPlan)),
		entry.StartDate, entry.IsActive,
		entry.Amount, entry.Currency, entry.PaymentMethod, entry.TransactionReference,
	)
	return err
}

// ListByUser returns the user's plan transitions, newest first.
func (r *PlanHistoryRepositoryPG) ListByUser(ctx context.Context, userID string) ([]domain.UserPlanHistory, error) {
	rows, err := r.db.Query(ctx, `
SELECT id, user_id, plan_type, COALESCE(previous_plan, ''), start_date, end_date, is_active,
       amount, currency, COALESCE(payment_method, ''), COALESCE(transaction_reference, ''), created_at
FROM user_plan_history
WHERE user_id = $1
ORDER BY created_at DESC;
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.UserPlanHistory
	for rows.Next() {
		var h domain.UserPlanHistory
		if err := rows.Scan(
			&h.ID, &h.UserID, &h.PlanType, &h.PreviousPlan, &h.StartDate, &h.EndDate, &h.IsActive,
			&h.Amount, &h.Currency, &h.PaymentMethod, &h.TransactionReference, &h.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
