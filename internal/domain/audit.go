package domain

import "time"

// AuditLog is an append-only record of a security- or business-relevant
// action. The application never mutates or deletes rows.
type AuditLog struct {
	ID         string
	UserID     *string
	Action     string
	EntityType string
	EntityID   string
	OldValues  map[string]any
	NewValues  map[string]any
	Status     string
	IPAddress  string
	UserAgent  string
	Metadata   map[string]any
	CreatedAt  time.Time
}

// AuditLogFilter narrows admin audit-log listings. Zero values mean no
// constraint.
type AuditLogFilter struct {
	UserID     string
	Action     string
	EntityType string
	Limit      int
}
