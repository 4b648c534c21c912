package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestMeasureReturnsFunctionError(t *testing.T) {
	m := NewPerformanceMonitor("test", zerolog.Nop(), true)
	wantErr := errors.New("boom")

	err := m.Measure(context.Background(), "op", func(context.Context) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}

func TestMeasureSuccess(t *testing.T) {
	m := NewPerformanceMonitor("test", zerolog.Nop(), true)

	ran := false
	err := m.Measure(context.Background(), "op", func(context.Context) error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if !ran {
		t.Fatal("operation did not run")
	}
}

func TestEndTimerMeasuresElapsed(t *testing.T) {
	m := NewPerformanceMonitor("test", zerolog.Nop(), true)

	m.StartTimer("slow-op")
	time.Sleep(10 * time.Millisecond)
	elapsed := m.EndTimer("slow-op", nil)

	if elapsed < 10*time.Millisecond {
		t.Fatalf("elapsed = %s, want >= 10ms", elapsed)
	}

	// The timer is consumed.
	if again := m.EndTimer("slow-op", nil); again != 0 {
		t.Fatalf("second end = %s, want 0", again)
	}
}

func TestEndTimerUnknownOperation(t *testing.T) {
	m := NewPerformanceMonitor("test", zerolog.Nop(), true)
	if d := m.EndTimer("never-started", nil); d != 0 {
		t.Fatalf("duration = %s, want 0", d)
	}
}

func TestDisabledMonitorIsNoOp(t *testing.T) {
	m := NewPerformanceMonitor("test", zerolog.Nop(), false)

	m.StartTimer("op")
	if d := m.EndTimer("op", nil); d != 0 {
		t.Fatalf("duration = %s, want 0", d)
	}

	err := m.Measure(context.Background(), "op", func(context.Context) error { return nil })
	if err != nil {
		t.Fatalf("err = %v", err)
	}
}
