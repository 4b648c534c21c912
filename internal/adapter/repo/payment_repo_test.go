package repo

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"server/internal/domain"
)

func newTransactionRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "user_id", "transaction_type", "amount", "currency", "provider", "status",
		"plan_type", "provider_reference", "provider_status",
		"description", "created_at", "completed_at",
	})
}

func TestPaymentGetByReference(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM payment_transactions WHERE provider_reference = \$1`).
		WithArgs("cvb_abc").
		WillReturnRows(newTransactionRows().AddRow(
			"tx-1", "user-1", "plan_purchase", 50.0, "GHS", "paystack", domain.TransactionPending,
			domain.PlanPro, "cvb_abc", "",
			"Purchase of pro plan", now, (*time.Time)(nil),
		))

	tx, err := NewPaymentTransactionRepository(mock).GetByReference(context.Background(), "cvb_abc")
	require.NoError(t, err)

	assert.Equal(t, "tx-1", tx.ID)
	assert.Equal(t, domain.TransactionPending, tx.Status)
	assert.Equal(t, domain.PlanPro, tx.PlanType)
	assert.Nil(t, tx.CompletedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentGetByReferenceMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT (.+) FROM payment_transactions`).
		WithArgs("cvb_missing").
		WillReturnError(pgx.ErrNoRows)

	_, err = NewPaymentTransactionRepository(mock).GetByReference(context.Background(), "cvb_missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPaymentMarkCompleted(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	completedAt := time.Now()
	mock.ExpectExec(`UPDATE payment_transactions SET status = 'completed'(.+)WHERE id = \$1 AND status = 'pending'`).
		WithArgs("tx-1", "success", completedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = NewPaymentTransactionRepository(mock).MarkCompleted(context.Background(), "tx-1", "success", completedAt)
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentMarkCompletedOnlyTouchesPending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`UPDATE payment_transactions`).
		WithArgs("tx-1", "success", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = NewPaymentTransactionRepository(mock).MarkCompleted(context.Background(), "tx-1", "success", time.Now())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPaymentCreateStoresNullPlanForBareTopUp(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO payment_transactions`).
		WithArgs(
			pgxmock.AnyArg(), "user-1", "plan_purchase", 50.0, "GHS", "paystack", domain.TransactionPending,
			(*string)(nil), "cvb_abc", "Purchase of pro plan",
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx := &domain.PaymentTransaction{
		UserID:            "user-1",
		TransactionType:   "plan_purchase",
		Amount:            50,
		Currency:          "GHS",
		Provider:          "paystack",
		Status:            domain.TransactionPending,
		ProviderReference: "cvb_abc",
		Description:       "Purchase of pro plan",
	}
	require.NoError(t, NewPaymentTransactionRepository(mock).Create(context.Background(), tx))
	assert.NotEmpty(t, tx.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentListByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM payment_transactions WHERE user_id = \$1 ORDER BY created_at DESC`).
		WithArgs("user-1").
		WillReturnRows(newTransactionRows().
			AddRow("tx-2", "user-1", "plan_purchase", 100.0, "GHS", "paystack", domain.TransactionCompleted,
				domain.PlanPremium, "cvb_def", "success", "Purchase of premium plan", now, &now).
			AddRow("tx-1", "user-1", "plan_purchase", 50.0, "GHS", "paystack", domain.TransactionCompleted,
				domain.PlanPro, "cvb_abc", "success", "Purchase of pro plan", now.Add(-time.Hour), &now))

	items, err := NewPaymentTransactionRepository(mock).ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "tx-2", items[0].ID)
	assert.Equal(t, domain.PlanPremium, items[0].PlanType)

	assert.NoError(t, mock.ExpectationsWereMet())
}
