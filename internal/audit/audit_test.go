package audit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"server/internal/domain"
)

type recordingRepo struct {
	mu      sync.Mutex
	entries []domain.AuditLog
	err     error
}

func (r *recordingRepo) Create(_ context.Context, entry *domain.AuditLog) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	r.entries = append(r.entries, *entry)
	r.mu.Unlock()
	return nil
}

func (r *recordingRepo) List(context.Context, domain.AuditLogFilter) ([]domain.AuditLog, error) {
	return r.entries, nil
}

func TestDisabledLoggerIsNoOp(t *testing.T) {
	repo := &recordingRepo{}
	logger := New(repo, zerolog.Nop(), false)

	logger.LogUserAction(context.Background(), "user-1", "cv_created", Details{})

	if len(repo.entries) != 0 {
		t.Fatalf("entries = %d, want 0", len(repo.entries))
	}
}

func TestLogUserActionDefaultsStatus(t *testing.T) {
	repo := &recordingRepo{}
	logger := New(repo, zerolog.Nop(), true)

	logger.LogUserAction(context.Background(), "user-1", "cv_created", Details{
		EntityType: "cv",
		EntityID:   "cv-1",
	})

	if len(repo.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(repo.entries))
	}
	entry := repo.entries[0]
	if entry.Status != "success" {
		t.Fatalf("status = %q, want success", entry.Status)
	}
	if entry.UserID == nil || *entry.UserID != "user-1" {
		t.Fatalf("user id = %v, want user-1", entry.UserID)
	}
	if entry.Action != "cv_created" {
		t.Fatalf("action = %q", entry.Action)
	}
}

func TestLogPaymentEventSetsEntityType(t *testing.T) {
	repo := &recordingRepo{}
	logger := New(repo, zerolog.Nop(), true)

	logger.LogPaymentEvent(context.Background(), "user-1", "payment_initiated", Details{
		Metadata: map[string]any{"amount": 50.0},
	})

	if len(repo.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(repo.entries))
	}
	if repo.entries[0].EntityType != "payment" {
		t.Fatalf("entity type = %q, want payment", repo.entries[0].EntityType)
	}
}

func TestLogSecurityEventExplicitFailure(t *testing.T) {
	repo := &recordingRepo{}
	logger := New(repo, zerolog.Nop(), true)

	logger.LogSecurityEvent(context.Background(), "login_failed", Details{
		Status: "failed",
		Error:  "bad credentials",
	})

	if len(repo.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(repo.entries))
	}
	entry := repo.entries[0]
	if entry.Status != "failed" {
		t.Fatalf("status = %q, want failed", entry.Status)
	}
	if entry.Metadata["error"] != "bad credentials" {
		t.Fatalf("metadata error = %v", entry.Metadata["error"])
	}
}

func TestPersistenceFailureIsSwallowed(t *testing.T) {
	repo := &recordingRepo{err: errors.New("db down")}
	logger := New(repo, zerolog.Nop(), true)

	// Must not panic or propagate.
	logger.LogUserAction(context.Background(), "user-1", "cv_created", Details{})
}
