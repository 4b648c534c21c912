package handlers

import "net/http"

// TemplatesList returns all CV templates with their premium flags.
func (a *App) TemplatesList(w http.ResponseWriter, r *http.Request) {
	templates, err := a.Templates.List(r.Context())
	if err != nil {
		a.domainError(w, err, "Failed to list templates")
		return
	}

	items := make([]map[string]any, 0, len(templates))
	for _, t := range templates {
		items = append(items, map[string]any{
			"id":          t.ID,
			"name":        t.Name,
			"description": t.Description,
			"is_premium":  t.IsPremium,
			"preview_url": t.PreviewURL,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}
