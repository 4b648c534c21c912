package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"server/internal/domain"
	"server/internal/http/handlers"
	"server/internal/infra"
	"server/internal/middleware"
)

const rateLimitWindow = time.Minute

// Deps carries everything the router needs beyond the handler container.
type Deps struct {
	Cfg      *infra.Config
	Logger   infra.Logger
	Usage    middleware.UsageDeps
	Tracking middleware.TrackingDeps
	Template middleware.TemplateAccessDeps
}

// NewRouter assembles the chi router: ambient middleware, then the public,
// authenticated, and admin route groups.
func NewRouter(app *handlers.App, d Deps) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Metrics)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.RequestLogging(d.Logger, d.Cfg.EnableRequestLogging))
	r.Use(middleware.CORS(d.Cfg.AllowedOrigins))
	r.Use(middleware.RateLimit(d.Cfg.RateLimitPerMin, rateLimitWindow))

	r.Get("/v1/healthz", app.Health)
	r.Method(stdhttp.MethodGet, "/metrics", promhttp.Handler())

	r.Get("/templates", app.TemplatesList)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthJWT(d.Cfg.JWTSecret))

		r.Route("/payments", func(r chi.Router) {
			r.Post("/initiate", app.PaymentsInitiate)
			r.Post("/verify", app.PaymentsVerify)
			r.Get("/history", app.PaymentsHistory)
		})

		r.Route("/plans", func(r chi.Router) {
			r.Get("/history", app.PlansHistory)
			r.Get("/usage", app.PlansUsage)
		})

		r.Route("/cvs", func(r chi.Router) {
			r.Get("/", app.CVsList)
			r.With(
				middleware.EnforceUsageLimits(domain.UsageCVGeneration, d.Usage),
				middleware.EnforceTemplateAccess(d.Template),
				middleware.TrackFeatureUsage("cv_generation", "create_cv", d.Tracking),
			).Post("/", app.CVsCreate)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", app.CVsGet)
				r.With(
					middleware.EnforceUsageLimits(domain.UsageEdit, d.Usage),
					middleware.EnforceTemplateAccess(d.Template),
					middleware.TrackFeatureUsage("edit", "update_cv", d.Tracking),
				).Put("/", app.CVsUpdate)
				r.With(
					middleware.EnforceUsageLimits(domain.UsageExport, d.Usage),
					middleware.TrackFeatureUsage("export", "export_cv", d.Tracking),
				).Post("/export", app.CVsExport)
				r.With(
					middleware.EnforceUsageLimits(domain.UsageAIOptimization, d.Usage),
					middleware.TrackFeatureUsage("ai_optimization", "optimize_cv", d.Tracking),
				).Post("/optimize", app.CVsOptimize)
			})
		})

		r.With(
			middleware.EnforceUsageLimits(domain.UsageCoverLetter, d.Usage),
			middleware.TrackFeatureUsage("cover_letter", "create_cover_letter", d.Tracking),
		).Post("/cover-letters", app.CoverLettersCreate)

		r.Get("/admin/audit-logs", app.AdminAuditLogs)
	})

	return r
}
