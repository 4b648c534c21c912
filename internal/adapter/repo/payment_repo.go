package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"server/internal/domain"
)

// PaymentTransactionRepositoryPG implements domain.PaymentTransactionRepository.
type PaymentTransactionRepositoryPG struct {
	db DB
}

// NewPaymentTransactionRepository creates a new PaymentTransactionRepositoryPG.
func NewPaymentTransactionRepository(db DB) *PaymentTransactionRepositoryPG {
	return &PaymentTransactionRepositoryPG{db: db}
}

const transactionColumns = `id, user_id, transaction_type, amount, currency, provider, status,
COALESCE(plan_type, ''), provider_reference, COALESCE(provider_status, ''),
COALESCE(description, ''), created_at, completed_at`

// Create inserts a new pending transaction.
func (r *PaymentTransactionRepositoryPG) Create(ctx context.Context, tx *domain.PaymentTransaction) error {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	_, err := r.db.Exec(ctx, `
INSERT INTO payment_transactions (
	id, user_id, transaction_type, amount, currency, provider, status,
	plan_type, provider_reference, description
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
`,
		tx.ID, tx.UserID, tx.TransactionType, tx.Amount, tx.Currency, tx.Provider, tx.Status,
		nullIfEmpty(string(tx.PlanType)), tx.ProviderReference, tx.Description,
	)
	return err
}

// GetByReference fetches a transaction by its provider reference.
func (r *PaymentTransactionRepositoryPG) GetByReference(ctx context.Context, reference string) (*domain.PaymentTransaction, error) {
	row := r.db.QueryRow(ctx, `
SELECT `+transactionColumns+`
FROM payment_transactions
WHERE provider_reference = $1;
`, reference)
	return scanTransaction(row)
}

// MarkCompleted flips a pending transaction to completed. A transaction that
// already left the pending state is untouched, keeping the row immutable
// after its single verification.
func (r *PaymentTransactionRepositoryPG) MarkCompleted(ctx context.Context, id string, providerStatus string, completedAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
UPDATE payment_transactions
SET status = 'completed', provider_status = $2, completed_at = $3
WHERE id = $1 AND status = 'pending';
`, id, providerStatus, completedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByUser returns the user's transactions, newest first.
func (r *PaymentTransactionRepositoryPG) ListByUser(ctx context.Context, userID string) ([]domain.PaymentTransaction, error) {
	rows, err := r.db.Query(ctx, `
SELECT `+transactionColumns+`
FROM payment_transactions
WHERE user_id = $1
ORDER BY created_at DESC;
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.PaymentTransaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanTransaction(row pgx.Row) (*domain.PaymentTransaction, error) {
	var tx domain.PaymentTransaction
	err := row.Scan(
		&tx.ID, &tx.UserID, &tx.TransactionType, &tx.Amount, &tx.Currency, &tx.Provider, &tx.Status,
		&tx.PlanType, &tx.ProviderReference, &tx.ProviderStatus,
		&tx.Description, &tx.CreatedAt, &tx.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
