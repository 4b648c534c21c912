package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/middleware"
)

type stubLimitsRepo struct {
	limits *domain.PlanUsageLimits
	err    error
}

func (s *stubLimitsRepo) GetCurrent(context.Context, string) (*domain.PlanUsageLimits, error) {
	return s.limits, s.err
}

func (s *stubLimitsRepo) Create(context.Context, *domain.PlanUsageLimits) error { return nil }

func (s *stubLimitsRepo) Increment(context.Context, string, domain.UsageType) error { return nil }

type stubUsersRepo struct {
	user *domain.User
	err  error
}

func (s *stubUsersRepo) GetByID(context.Context, string) (*domain.User, error) {
	return s.user, s.err
}

func (s *stubUsersRepo) UpdatePlan(context.Context, string, domain.PlanTier) error { return nil }

type stubAuditRepo struct {
	listed []domain.AuditLog
	filter domain.AuditLogFilter
}

func (s *stubAuditRepo) Create(context.Context, *domain.AuditLog) error { return nil }

func (s *stubAuditRepo) List(_ context.Context, f domain.AuditLogFilter) ([]domain.AuditLog, error) {
	s.filter = f
	return s.listed, nil
}

func authedRequest(method, target, userID string) *http.Request {
	r := httptest.NewRequest(method, target, nil)
	if userID != "" {
		r = r.WithContext(middleware.ContextWithUserID(r.Context(), userID))
	}
	return r
}

func TestPlansUsageUnauthenticated(t *testing.T) {
	app := &App{Logger: zerolog.Nop(), Limits: &stubLimitsRepo{}}

	rec := httptest.NewRecorder()
	app.PlansUsage(rec, authedRequest(http.MethodGet, "/v1/plans/usage", ""))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestPlansUsageNoActivePlan(t *testing.T) {
	app := &App{Logger: zerolog.Nop(), Limits: &stubLimitsRepo{err: domain.ErrNotFound}}

	rec := httptest.NewRecorder()
	app.PlansUsage(rec, authedRequest(http.MethodGet, "/v1/plans/usage", "user-1"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestPlansUsageReportsCounters(t *testing.T) {
	now := time.Now()
	app := &App{Logger: zerolog.Nop(), Limits: &stubLimitsRepo{limits: &domain.PlanUsageLimits{
		UserID:                      "user-1",
		PlanType:                    domain.PlanPro,
		PeriodStart:                 now,
		PeriodEnd:                   now.AddDate(0, 1, 0),
		CVGenerationsUsed:           4,
		CVGenerationsLimit:          15,
		EditsUsed:                   120,
		EditsLimit:                  domain.UnlimitedLimit,
		TemplateAccessLevel:         domain.TemplateAccessPremium,
		CoverLetterGenerationsLimit: 10,
		AIOptimizationsLimit:        50,
	}}}

	rec := httptest.NewRecorder()
	app.PlansUsage(rec, authedRequest(http.MethodGet, "/v1/plans/usage", "user-1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body)
	}

	var body struct {
		Success bool `json:"success"`
		Usage   struct {
			PlanType      string `json:"plan_type"`
			CVGenerations struct {
				Used      int `json:"used"`
				Limit     int `json:"limit"`
				Remaining int `json:"remaining"`
			} `json:"cv_generations"`
			Edits struct {
				Remaining int `json:"remaining"`
			} `json:"edits"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	if !body.Success {
		t.Error("success = false, want true")
	}
	if body.Usage.PlanType != "pro" {
		t.Errorf("plan_type = %q, want pro", body.Usage.PlanType)
	}
	if body.Usage.CVGenerations.Used != 4 || body.Usage.CVGenerations.Limit != 15 {
		t.Errorf("cv_generations = %+v, want used 4 limit 15", body.Usage.CVGenerations)
	}
	if body.Usage.CVGenerations.Remaining != 11 {
		t.Errorf("cv remaining = %d, want 11", body.Usage.CVGenerations.Remaining)
	}
	if body.Usage.Edits.Remaining != domain.UnlimitedLimit {
		t.Errorf("edits remaining = %d, want unlimited", body.Usage.Edits.Remaining)
	}
}

func TestAdminAuditLogsRequiresAdmin(t *testing.T) {
	app := &App{
		Logger:    zerolog.Nop(),
		Users:     &stubUsersRepo{user: &domain.User{ID: "user-1", IsAdmin: false}},
		AuditLogs: &stubAuditRepo{},
	}

	rec := httptest.NewRecorder()
	app.AdminAuditLogs(rec, authedRequest(http.MethodGet, "/v1/admin/audit-logs", "user-1"))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestAdminAuditLogsPassesFilters(t *testing.T) {
	auditRepo := &stubAuditRepo{listed: []domain.AuditLog{{ID: "log-1", Action: "payment_verified"}}}
	app := &App{
		Logger:    zerolog.Nop(),
		Users:     &stubUsersRepo{user: &domain.User{ID: "admin-1", IsAdmin: true}},
		AuditLogs: auditRepo,
	}

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodGet, "/v1/admin/audit-logs?user_id=user-9&action=payment_verified&limit=25", "admin-1")
	app.AdminAuditLogs(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body)
	}
	if auditRepo.filter.UserID != "user-9" {
		t.Errorf("filter user_id = %q, want user-9", auditRepo.filter.UserID)
	}
	if auditRepo.filter.Action != "payment_verified" {
		t.Errorf("filter action = %q", auditRepo.filter.Action)
	}
	if auditRepo.filter.Limit != 25 {
		t.Errorf("filter limit = %d, want 25", auditRepo.filter.Limit)
	}
}
