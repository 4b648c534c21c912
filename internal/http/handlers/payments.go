package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"server/internal/domain"
	"server/internal/service"
)

type initiatePaymentRequest struct {
	PlanType string  `json:"plan_type"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type verifyPaymentRequest struct {
	Reference string `json:"reference"`
}

// PaymentsInitiate starts a plan purchase by recording a pending transaction.
func (a *App) PaymentsInitiate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	var req initiatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	tx, err := a.Billing.Initiate(r.Context(), userID, service.InitiateInput{
		PlanType: domain.PlanTier(req.PlanType),
		Amount:   req.Amount,
		Currency: req.Currency,
	})
	if err != nil {
		a.domainError(w, err, "Payment initiation failed")
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"transaction": map[string]any{
			"id":        tx.ID,
			"status":    tx.Status,
			"amount":    tx.Amount,
			"currency":  tx.Currency,
			"reference": tx.ProviderReference,
		},
	})
}

// PaymentsVerify completes the transaction for a provider reference and
// rotates the caller onto the purchased plan.
func (a *App) PaymentsVerify(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	var req verifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	tx, err := a.Billing.Verify(r.Context(), userID, req.Reference)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "Transaction not found", "")
			return
		}
		a.domainError(w, err, "Payment verification failed")
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"transaction": map[string]any{
			"id":        tx.ID,
			"status":    tx.Status,
			"plan_type": tx.PlanType,
		},
	})
}

// PaymentsHistory lists the caller's payment transactions.
func (a *App) PaymentsHistory(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	transactions, err := a.Billing.PaymentHistory(r.Context(), userID)
	if err != nil {
		a.domainError(w, err, "Failed to fetch payment history")
		return
	}

	items := make([]map[string]any, 0, len(transactions))
	for _, t := range transactions {
		items = append(items, map[string]any{
			"id":           t.ID,
			"type":         t.TransactionType,
			"amount":       t.Amount,
			"currency":     t.Currency,
			"status":       t.Status,
			"plan_type":    t.PlanType,
			"created_at":   t.CreatedAt,
			"completed_at": t.CompletedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"success": true, "transactions": items})
}

// PlansHistory lists the caller's plan transitions.
func (a *App) PlansHistory(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	history, err := a.Billing.PlanHistory(r.Context(), userID)
	if err != nil {
		a.domainError(w, err, "Failed to fetch plan history")
		return
	}

	items := make([]map[string]any, 0, len(history))
	for _, h := range history {
		items = append(items, map[string]any{
			"id":            h.ID,
			"plan_type":     h.PlanType,
			"previous_plan": h.PreviousPlan,
			"start_date":    h.StartDate,
			"end_date":      h.EndDate,
			"is_active":     h.IsActive,
			"amount":        h.Amount,
			"currency":      h.Currency,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"success": true, "plan_history": items})
}

// PlansUsage reports the caller's current per-feature counters and ceilings.
func (a *App) PlansUsage(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	limits, err := a.Limits.GetCurrent(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "No active plan found", "")
			return
		}
		a.domainError(w, err, "Failed to fetch plan usage")
		return
	}

	usageEntry := func(t domain.UsageType) map[string]any {
		used, limit, _ := limits.Counter(t)
		return map[string]any{
			"used":      used,
			"limit":     limit,
			"remaining": limits.Remaining(t),
		}
	}

	a.json(w, http.StatusOK, map[string]any{
		"success": true,
		"usage": map[string]any{
			"plan_type": limits.PlanType,
			"period": map[string]any{
				"start": limits.PeriodStart,
				"end":   limits.PeriodEnd,
			},
			"cv_generations":        usageEntry(domain.UsageCVGeneration),
			"cover_letters":         usageEntry(domain.UsageCoverLetter),
			"ai_optimizations":      usageEntry(domain.UsageAIOptimization),
			"edits":                 usageEntry(domain.UsageEdit),
			"exports":               usageEntry(domain.UsageExport),
			"template_access_level": limits.TemplateAccessLevel,
		},
	})
}
