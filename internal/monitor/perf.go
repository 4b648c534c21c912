// Package monitor provides duration measurement of named operations and
// flag-gated error capture.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// PerformanceMonitor records durations of named operations. Timers are scoped
// to the instance, so unrelated call sites never share state.
type PerformanceMonitor struct {
	log     zerolog.Logger
	enabled bool

	mu     sync.Mutex
	timers map[string]time.Time
}

// NewPerformanceMonitor constructs a monitor for one subsystem. With enabled
// false every method is a no-op.
func NewPerformanceMonitor(name string, log zerolog.Logger, enabled bool) *PerformanceMonitor {
	return &PerformanceMonitor{
		log:     log.With().Str("component", "perfmon:"+name).Logger(),
		enabled: enabled,
		timers:  make(map[string]time.Time),
	}
}

// StartTimer begins tracking the named operation.
func (m *PerformanceMonitor) StartTimer(operationID string) {
	if !m.enabled {
		return
	}
	m.mu.Lock()
	m.timers[operationID] = time.Now()
	m.mu.Unlock()
}

// EndTimer stops the named timer and logs the elapsed duration. Unknown
// operation ids log a warning and report zero.
func (m *PerformanceMonitor) EndTimer(operationID string, fields map[string]any) time.Duration {
	if !m.enabled {
		return 0
	}

	m.mu.Lock()
	start, ok := m.timers[operationID]
	if ok {
		delete(m.timers, operationID)
	}
	m.mu.Unlock()

	if !ok {
		m.log.Warn().Str("operation", operationID).Msg("no timer found for operation")
		return 0
	}

	elapsed := time.Since(start)
	evt := m.log.Info().Str("operation", operationID).Dur("duration", elapsed)
	for k, v := range fields {
		evt = evt.Interface(k, v)
	}
	evt.Msg("operation completed")
	return elapsed
}

// Measure runs fn, recording its duration and outcome. The function's error
// is always returned unchanged; measurement never swallows it.
func (m *PerformanceMonitor) Measure(ctx context.Context, operationName string, fn func(ctx context.Context) error) error {
	operationID := fmt.Sprintf("%s_%d", operationName, time.Now().UnixNano())
	m.StartTimer(operationID)

	err := fn(ctx)
	if err != nil {
		m.EndTimer(operationID, map[string]any{"status": "error", "error": err.Error()})
		return err
	}
	m.EndTimer(operationID, map[string]any{"status": "success"})
	return nil
}
