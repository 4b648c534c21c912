// Package handlers contains the HTTP handlers behind the JSON API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"server/internal/audit"
	"server/internal/domain"
	"server/internal/middleware"
	"server/internal/monitor"
	"server/internal/service"
)

// App is the handler container, assembled once in cmd/api.
type App struct {
	Logger    zerolog.Logger
	Billing   *service.BillingService
	Users     domain.UserRepository
	Limits    domain.UsageLimitsRepository
	Templates domain.TemplateRepository
	CVs       domain.CVRepository
	AuditLogs domain.AuditLogRepository
	Audit     *audit.Logger
	Errors    *monitor.ErrorTracker
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errLabel, message string) {
	payload := map[string]any{"error": errLabel}
	if message != "" {
		payload["message"] = message
	}
	a.json(w, code, payload)
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

// domainError maps the sentinel and typed domain errors onto HTTP responses;
// anything unmapped reports a 500 under the supplied label.
func (a *App) domainError(w http.ResponseWriter, err error, label string) {
	var validation *domain.ValidationError
	switch {
	case errors.As(err, &validation):
		a.json(w, http.StatusBadRequest, map[string]any{
			"error":   "Validation failed",
			"details": validation.Fields,
		})
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "Not found", "")
	case errors.Is(err, domain.ErrForbidden):
		a.error(w, http.StatusForbidden, "Forbidden", "")
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusUnauthorized, "Unauthorized", "")
	case errors.Is(err, domain.ErrNoActivePlan):
		a.error(w, http.StatusPaymentRequired, "No active plan", "Please purchase a plan to use this feature")
	default:
		a.Logger.Error().Err(err).Msg(label)
		a.Errors.Capture(err, map[string]any{"label": label})
		a.error(w, http.StatusInternalServerError, label, err.Error())
	}
}
