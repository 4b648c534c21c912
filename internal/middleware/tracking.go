package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"server/internal/domain"
)

// TrackingDeps are the collaborators of the feature-usage tracker.
type TrackingDeps struct {
	Events domain.FeatureUsageRepository
	Users  domain.UserRepository
	Log    zerolog.Logger
}

// TrackFeatureUsage appends one feature-usage event per invocation of the
// wrapped route, after the response is written. Success is derived from the
// final status code. Recording is fire-and-forget: an unauthenticated caller
// or a persistence failure never affects the request.
func TrackFeatureUsage(featureType, featureName string, deps TrackingDeps) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := UserIDFromContext(r.Context())
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			templateID := templateIDFromRequest(r)

			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)

			status := rw.status
			elapsed := time.Since(start)
			method := r.Method
			path := r.URL.Path
			userAgent := r.UserAgent()

			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), incrementTimeout)
				defer cancel()

				planAtUsage := domain.PlanBasic
				if user, err := deps.Users.GetByID(ctx, userID); err == nil && user.CurrentPlan != "" {
					planAtUsage = user.CurrentPlan
				} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
					deps.Log.Error().Err(err).Str("user_id", userID).Msg("failed to resolve plan for usage tracking")
				}

				event := &domain.FeatureUsage{
					UserID:           userID,
					FeatureType:      featureType,
					FeatureName:      featureName,
					UsageCount:       1,
					PlanAtUsage:      planAtUsage,
					WasSuccessful:    status >= 200 && status < 400,
					ProcessingTimeMS: elapsed.Milliseconds(),
					Metadata: map[string]any{
						"method":     method,
						"path":       path,
						"user_agent": userAgent,
					},
				}
				if templateID != "" {
					event.TemplateID = &templateID
				}
				if !event.WasSuccessful {
					event.ErrorDetails = http.StatusText(status)
				}

				if err := deps.Events.Create(ctx, event); err != nil {
					deps.Log.Error().Err(err).
						Str("user_id", userID).
						Str("feature_type", featureType).
						Msg("failed to track feature usage")
					return
				}
				deps.Log.Debug().
					Str("user_id", userID).
					Str("feature_type", featureType).
					Str("feature_name", featureName).
					Bool("was_successful", event.WasSuccessful).
					Msg("feature usage tracked")
			}()
		})
	}
}
