package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
)

type cvRequest struct {
	Title      string         `json:"title"`
	TemplateID string         `json:"template_id"`
	Content    map[string]any `json:"content"`
}

// CVsCreate stores a new CV document. The route is gated by the
// cv_generation usage limit.
func (a *App) CVsCreate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	var req cvRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Title == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "title is required")
		return
	}

	cv := &domain.CV{
		UserID:  userID,
		Title:   req.Title,
		Content: req.Content,
	}
	if req.TemplateID != "" {
		cv.TemplateID = &req.TemplateID
	}

	if err := a.CVs.Create(r.Context(), cv); err != nil {
		a.domainError(w, err, "Failed to create CV")
		return
	}
	a.json(w, http.StatusCreated, map[string]any{"id": cv.ID})
}

// CVsList returns the caller's CVs.
func (a *App) CVsList(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	cvs, err := a.CVs.ListByUser(r.Context(), userID)
	if err != nil {
		a.domainError(w, err, "Failed to list CVs")
		return
	}

	items := make([]map[string]any, 0, len(cvs))
	for _, cv := range cvs {
		items = append(items, map[string]any{
			"id":          cv.ID,
			"title":       cv.Title,
			"template_id": cv.TemplateID,
			"created_at":  cv.CreatedAt,
			"updated_at":  cv.UpdatedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// CVsGet returns one CV owned by the caller.
func (a *App) CVsGet(w http.ResponseWriter, r *http.Request) {
	cv, ok := a.loadOwnedCV(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"id":          cv.ID,
		"title":       cv.Title,
		"template_id": cv.TemplateID,
		"content":     cv.Content,
		"created_at":  cv.CreatedAt,
		"updated_at":  cv.UpdatedAt,
	})
}

// CVsUpdate overwrites a CV's mutable fields. Gated by the edit usage limit.
func (a *App) CVsUpdate(w http.ResponseWriter, r *http.Request) {
	cv, ok := a.loadOwnedCV(w, r)
	if !ok {
		return
	}

	var req cvRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	if req.Title != "" {
		cv.Title = req.Title
	}
	if req.TemplateID != "" {
		cv.TemplateID = &req.TemplateID
	}
	if req.Content != nil {
		cv.Content = req.Content
	}

	if err := a.CVs.Update(r.Context(), cv); err != nil {
		a.domainError(w, err, "Failed to update CV")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"id": cv.ID, "updated": true})
}

// CVsExport returns the stored document body for client-side rendering.
// Gated by the export usage limit.
func (a *App) CVsExport(w http.ResponseWriter, r *http.Request) {
	cv, ok := a.loadOwnedCV(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"id":          cv.ID,
		"title":       cv.Title,
		"template_id": cv.TemplateID,
		"content":     cv.Content,
	})
}

type optimizeRequest struct {
	Section string `json:"section"`
	Prompt  string `json:"prompt"`
}

// CVsOptimize records an optimization request against the CV. Gated by the
// ai_optimization usage limit; the text-generation provider sits behind a
// separate worker and is out of scope here.
func (a *App) CVsOptimize(w http.ResponseWriter, r *http.Request) {
	cv, ok := a.loadOwnedCV(w, r)
	if !ok {
		return
	}

	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	if cv.Content == nil {
		cv.Content = map[string]any{}
	}
	cv.Content["optimization_requested"] = map[string]any{
		"section": req.Section,
		"prompt":  req.Prompt,
	}

	if err := a.CVs.Update(r.Context(), cv); err != nil {
		a.domainError(w, err, "Failed to request optimization")
		return
	}
	a.json(w, http.StatusAccepted, map[string]any{"id": cv.ID, "status": "queued"})
}

type coverLetterRequest struct {
	CVID    string `json:"cv_id"`
	Company string `json:"company"`
	Role    string `json:"role"`
}

// CoverLettersCreate stores a cover letter request as a CV-linked document.
// Gated by the cover_letter usage limit.
func (a *App) CoverLettersCreate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	var req coverLetterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Company == "" || req.Role == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "company and role are required")
		return
	}

	letter := &domain.CV{
		UserID: userID,
		Title:  "Cover letter: " + req.Role + " at " + req.Company,
		Content: map[string]any{
			"kind":    "cover_letter",
			"cv_id":   req.CVID,
			"company": req.Company,
			"role":    req.Role,
		},
	}
	if err := a.CVs.Create(r.Context(), letter); err != nil {
		a.domainError(w, err, "Failed to create cover letter")
		return
	}
	a.json(w, http.StatusCreated, map[string]any{"id": letter.ID})
}

// loadOwnedCV fetches the CV in the URL and enforces ownership.
func (a *App) loadOwnedCV(w http.ResponseWriter, r *http.Request) (*domain.CV, bool) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "Unauthorized", "")
		return nil, false
	}

	cv, err := a.CVs.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "CV not found", "")
			return nil, false
		}
		a.domainError(w, err, "Failed to load CV")
		return nil, false
	}
	if cv.UserID != userID {
		a.error(w, http.StatusForbidden, "Forbidden", "")
		return nil, false
	}
	return cv, true
}
