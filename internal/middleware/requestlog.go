package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// RequestLogging logs each request and its response when the request-logging
// flag is on; disabled it passes handlers through untouched.
func RequestLogging(l zerolog.Logger, enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			userID := UserIDFromContext(r.Context())

			l.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("user_id", userID).
				Str("user_agent", r.UserAgent()).
				Msg("api request")

			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)

			l.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("user_id", userID).
				Int("status", rw.status).
				Dur("duration", time.Since(start)).
				Msg("api response")
		})
	}
}
