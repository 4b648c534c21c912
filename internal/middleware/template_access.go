package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"server/internal/domain"
)

// TemplateAccessDeps are the collaborators of the template-access middleware.
type TemplateAccessDeps struct {
	Templates domain.TemplateRepository
	Limits    domain.UsageLimitsRepository
	Log       zerolog.Logger
}

// templateCacheTTL keeps premium flags warm; templates change rarely.
const templateCacheTTL = 5 * time.Minute

// EnforceTemplateAccess gates premium templates on the caller's template
// access level. Free templates and requests that name no template pass
// through untouched. Template lookups go through a short-TTL cache.
func EnforceTemplateAccess(deps TemplateAccessDeps) func(http.Handler) http.Handler {
	cache := gocache.New(templateCacheTTL, 2*templateCacheTTL)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := UserIDFromContext(r.Context())
			templateID := templateIDFromRequest(r)

			if userID == "" || templateID == "" {
				next.ServeHTTP(w, r)
				return
			}

			template, err := lookupTemplate(r, cache, deps.Templates, templateID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					writeJSONError(w, http.StatusNotFound, "Template not found", "", nil)
					return
				}
				deps.Log.Error().Err(err).Str("template_id", templateID).Msg("template access check failed")
				writeJSONError(w, http.StatusInternalServerError, "Failed to check template access", err.Error(), nil)
				return
			}

			if !template.IsPremium {
				next.ServeHTTP(w, r)
				return
			}

			limits, err := deps.Limits.GetCurrent(r.Context(), userID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					writeJSONError(w, http.StatusPaymentRequired, "Premium template requires an active plan",
						"Please purchase a plan to access premium templates", nil)
					return
				}
				deps.Log.Error().Err(err).Str("user_id", userID).Msg("template access check failed")
				writeJSONError(w, http.StatusInternalServerError, "Failed to check template access", err.Error(), nil)
				return
			}

			if limits.TemplateAccessLevel == domain.TemplateAccessFree {
				writeJSONError(w, http.StatusForbidden, "Premium template access denied",
					"Your current plan does not include premium templates. Upgrade to access this template.",
					map[string]any{"upgrade_url": "/pricing"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func lookupTemplate(r *http.Request, cache *gocache.Cache, repo domain.TemplateRepository, id string) (*domain.Template, error) {
	if v, ok := cache.Get(id); ok {
		return v.(*domain.Template), nil
	}
	template, err := repo.GetByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	cache.SetDefault(id, template)
	return template, nil
}

// templateIDFromRequest resolves the template id from the URL or, for JSON
// bodies, from a top-level template_id field. The body is restored so the
// handler can decode it again.
func templateIDFromRequest(r *http.Request) string {
	if id := chi.URLParam(r, "templateId"); id != "" {
		return id
	}
	if r.Body == nil || r.Method == http.MethodGet {
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return ""
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	var payload struct {
		TemplateID string `json:"template_id"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.TemplateID
}
