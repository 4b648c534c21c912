package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"server/internal/audit"
	"server/internal/domain"
)

// UsageDeps are the collaborators of the usage-enforcement middleware.
type UsageDeps struct {
	Limits domain.UsageLimitsRepository
	Audit  *audit.Logger
	Log    zerolog.Logger
}

// incrementTimeout bounds the detached counter write after the response.
const incrementTimeout = 10 * time.Second

// EnforceUsageLimits gates a route on the caller's per-plan counter for the
// given usage type and increments it after a successful response.
//
// A caller without an authenticated id gets 401; without a current
// usage-limit record, 402. A counter at its ceiling gets 403 with a message
// naming the limit, and the rejection is audited as usage_limit_reached. A
// limit of -1 always passes. The increment runs on a detached goroutine once
// the handler finished with a 2xx/3xx status, so bookkeeping can never block
// or fail the request; a failed increment is only logged and the next request
// re-reads the still-safe counter.
func EnforceUsageLimits(usage domain.UsageType, deps UsageDeps) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := UserIDFromContext(r.Context())
			if userID == "" {
				writeJSONError(w, http.StatusUnauthorized, "Unauthorized", "", nil)
				return
			}

			limits, err := deps.Limits.GetCurrent(r.Context(), userID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					writeJSONError(w, http.StatusPaymentRequired, "No active plan",
						"Please purchase a plan to use this feature", nil)
					return
				}
				deps.Log.Error().Err(err).Str("user_id", userID).Msg("usage limit check failed")
				writeJSONError(w, http.StatusInternalServerError, "Failed to check usage limits", err.Error(), nil)
				return
			}

			if limits.Reached(usage) {
				_, limit, _ := limits.Counter(usage)
				deps.Log.Warn().
					Str("user_id", userID).
					Str("usage_type", string(usage)).
					Int("limit", limit).
					Msg("usage limit reached")

				deps.Audit.LogUserAction(r.Context(), userID, "usage_limit_reached", audit.Details{
					EntityType: "usage_limit",
					Metadata: map[string]any{
						"usage_type": string(usage),
						"plan_type":  string(limits.PlanType),
						"limit":      limit,
					},
				})

				reached := &domain.LimitReachedError{Usage: usage, Limit: limit}
				writeJSONError(w, http.StatusForbidden, "Usage limit reached", reached.Error(), map[string]any{
					"limits": map[string]any{
						"plan_type":   limits.PlanType,
						"upgrade_url": "/pricing",
					},
				})
				return
			}

			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)

			if rw.status >= 200 && rw.status < 400 {
				go func() {
					ctx, cancel := context.WithTimeout(context.Background(), incrementTimeout)
					defer cancel()
					if err := deps.Limits.Increment(ctx, userID, usage); err != nil {
						deps.Log.Error().Err(err).
							Str("user_id", userID).
							Str("usage_type", string(usage)).
							Msg("failed to increment usage")
						return
					}
					deps.Log.Debug().
						Str("user_id", userID).
						Str("usage_type", string(usage)).
						Msg("usage incremented")
				}()
			}
		})
	}
}
