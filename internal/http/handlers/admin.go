package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"server/internal/domain"
)

// AdminAuditLogs lists audit entries with optional filters. Admin only.
func (a *App) AdminAuditLogs(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	caller, err := a.Users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusUnauthorized, "Unauthorized", "")
			return
		}
		a.domainError(w, err, "Failed to load caller")
		return
	}
	if !caller.IsAdmin {
		a.error(w, http.StatusForbidden, "Forbidden", "admin access required")
		return
	}

	filter := domain.AuditLogFilter{
		UserID:     r.URL.Query().Get("user_id"),
		Action:     r.URL.Query().Get("action"),
		EntityType: r.URL.Query().Get("entity_type"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}

	entries, err := a.AuditLogs.List(r.Context(), filter)
	if err != nil {
		a.domainError(w, err, "Failed to list audit logs")
		return
	}

	items := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		items = append(items, map[string]any{
			"id":          e.ID,
			"user_id":     e.UserID,
			"action":      e.Action,
			"entity_type": e.EntityType,
			"entity_id":   e.EntityID,
			"old_values":  e.OldValues,
			"new_values":  e.NewValues,
			"status":      e.Status,
			"metadata":    e.Metadata,
			"created_at":  e.CreatedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}
