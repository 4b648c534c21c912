// Package audit persists security, user, and payment events to the
// append-only audit log. The logger is an explicitly constructed collaborator
// passed to its consumers; a disabled logger is a no-op.
package audit

import (
	"context"

	"github.com/rs/zerolog"

	"server/internal/domain"
)

// Details carries the optional attributes of an audit event.
type Details struct {
	EntityType string
	EntityID   string
	OldValues  map[string]any
	NewValues  map[string]any
	Metadata   map[string]any
	IPAddress  string
	UserAgent  string
	Status     string
	Error      string
}

// Logger writes audit events through a repository. Persistence failures are
// logged and swallowed: the operation being audited must never fail because
// its audit trail did.
type Logger struct {
	repo    domain.AuditLogRepository
	log     zerolog.Logger
	enabled bool
}

// New constructs an audit logger. With enabled false every method is a no-op.
func New(repo domain.AuditLogRepository, log zerolog.Logger, enabled bool) *Logger {
	return &Logger{repo: repo, log: log, enabled: enabled}
}

// Enabled reports whether events are being recorded.
func (l *Logger) Enabled() bool {
	return l != nil && l.enabled
}

// LogUserAction records an action performed by a user.
func (l *Logger) LogUserAction(ctx context.Context, userID, action string, d Details) {
	l.write(ctx, &userID, action, d)
}

// LogSecurityEvent records a security-relevant event that may lack an actor.
func (l *Logger) LogSecurityEvent(ctx context.Context, action string, d Details) {
	var userID *string
	if v, ok := d.Metadata["user_id"].(string); ok && v != "" {
		userID = &v
	}
	l.write(ctx, userID, action, d)
}

// LogPaymentEvent records a money-movement event.
func (l *Logger) LogPaymentEvent(ctx context.Context, userID, action string, d Details) {
	if d.EntityType == "" {
		d.EntityType = "payment"
	}
	l.write(ctx, &userID, action, d)
}

func (l *Logger) write(ctx context.Context, userID *string, action string, d Details) {
	if !l.Enabled() {
		return
	}

	status := d.Status
	if status == "" {
		status = "success"
	}

	metadata := d.Metadata
	if d.Error != "" {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata["error"] = d.Error
	}

	entry := &domain.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityType: d.EntityType,
		EntityID:   d.EntityID,
		OldValues:  d.OldValues,
		NewValues:  d.NewValues,
		Status:     status,
		IPAddress:  d.IPAddress,
		UserAgent:  d.UserAgent,
		Metadata:   metadata,
	}

	if err := l.repo.Create(ctx, entry); err != nil {
		l.log.Error().Err(err).Str("action", action).Msg("failed to create audit log")
		return
	}

	l.log.Info().
		Str("action", action).
		Str("entity_type", entry.EntityType).
		Str("status", status).
		Msg("audit event")
}
