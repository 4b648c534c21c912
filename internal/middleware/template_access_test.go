package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"server/internal/domain"
)

type fakeTemplateRepo struct {
	templates map[string]*domain.Template
	calls     int
}

func (f *fakeTemplateRepo) GetByID(_ context.Context, id string) (*domain.Template, error) {
	f.calls++
	if t, ok := f.templates[id]; ok {
		return t, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeTemplateRepo) List(context.Context) ([]domain.Template, error) { return nil, nil }

func serveTemplateAccess(t *testing.T, templates *fakeTemplateRepo, limits *fakeLimitsRepo, body string, withUser bool) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	mw := EnforceTemplateAccess(TemplateAccessDeps{
		Templates: templates,
		Limits:    limits,
		Log:       zerolog.Nop(),
	})

	handlerRan := false
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerRan = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/cvs", bytes.NewBufferString(body))
	if withUser {
		req = req.WithContext(ContextWithUserID(req.Context(), "user-1"))
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr, handlerRan
}

func TestEnforceTemplateAccess_NoTemplateIDPassesThrough(t *testing.T) {
	templates := &fakeTemplateRepo{}
	rr, ran := serveTemplateAccess(t, templates, nil, `{"title":"x"}`, true)

	if !ran || rr.Code != http.StatusOK {
		t.Fatalf("handler ran=%v status=%d, want pass-through", ran, rr.Code)
	}
}

func TestEnforceTemplateAccess_FreeTemplatePasses(t *testing.T) {
	templates := &fakeTemplateRepo{templates: map[string]*domain.Template{
		"tpl-free": {ID: "tpl-free", IsPremium: false},
	}}
	rr, ran := serveTemplateAccess(t, templates, nil, `{"template_id":"tpl-free"}`, true)

	if !ran || rr.Code != http.StatusOK {
		t.Fatalf("handler ran=%v status=%d, want pass-through", ran, rr.Code)
	}
}

func TestEnforceTemplateAccess_UnknownTemplate(t *testing.T) {
	templates := &fakeTemplateRepo{}
	rr, ran := serveTemplateAccess(t, templates, nil, `{"template_id":"missing"}`, true)

	if ran {
		t.Fatal("handler should not run")
	}
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestEnforceTemplateAccess_PremiumWithoutPlan(t *testing.T) {
	templates := &fakeTemplateRepo{templates: map[string]*domain.Template{
		"tpl-premium": {ID: "tpl-premium", IsPremium: true},
	}}
	limits := newFakeLimitsRepo(nil, domain.ErrNotFound)
	rr, ran := serveTemplateAccess(t, templates, limits, `{"template_id":"tpl-premium"}`, true)

	if ran {
		t.Fatal("handler should not run")
	}
	if rr.Code != http.StatusPaymentRequired {
		t.Fatalf("status = %d, want 402", rr.Code)
	}
}

func TestEnforceTemplateAccess_PremiumDeniedOnFreeAccessLevel(t *testing.T) {
	templates := &fakeTemplateRepo{templates: map[string]*domain.Template{
		"tpl-premium": {ID: "tpl-premium", IsPremium: true},
	}}
	limits := newFakeLimitsRepo(&domain.PlanUsageLimits{
		PlanType:            domain.PlanBasic,
		TemplateAccessLevel: domain.TemplateAccessFree,
	}, nil)
	rr, ran := serveTemplateAccess(t, templates, limits, `{"template_id":"tpl-premium"}`, true)

	if ran {
		t.Fatal("handler should not run")
	}
	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rr.Code)
	}
}

func TestEnforceTemplateAccess_PremiumAllowedOnPremiumAccessLevel(t *testing.T) {
	templates := &fakeTemplateRepo{templates: map[string]*domain.Template{
		"tpl-premium": {ID: "tpl-premium", IsPremium: true},
	}}
	limits := newFakeLimitsRepo(&domain.PlanUsageLimits{
		PlanType:            domain.PlanPro,
		TemplateAccessLevel: domain.TemplateAccessPremium,
	}, nil)
	rr, ran := serveTemplateAccess(t, templates, limits, `{"template_id":"tpl-premium"}`, true)

	if !ran || rr.Code != http.StatusOK {
		t.Fatalf("handler ran=%v status=%d, want pass-through", ran, rr.Code)
	}
}
