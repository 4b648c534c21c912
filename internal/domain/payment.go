package domain

import "time"

// TransactionStatus tracks the lifecycle of a payment attempt. Transactions
// move pending -> completed or pending -> failed and are immutable afterward.
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
)

// PaymentTransaction records a single payment attempt.
type PaymentTransaction struct {
	ID                string
	UserID            string
	TransactionType   string
	Amount            float64
	Currency          string
	Provider          string
	Status            TransactionStatus
	PlanType          PlanTier
	ProviderReference string
	ProviderStatus    string
	Description       string
	CreatedAt         time.Time
	CompletedAt       *time.Time
}

// UserPlanHistory is one entry in the append-only ledger of plan transitions.
// Exactly one entry per user has IsActive set.
type UserPlanHistory struct {
	ID                   string
	UserID               string
	PlanType             PlanTier
	PreviousPlan         PlanTier
	StartDate            time.Time
	EndDate              *time.Time
	IsActive             bool
	Amount               float64
	Currency             string
	PaymentMethod        string
	TransactionReference string
	CreatedAt            time.Time
}
