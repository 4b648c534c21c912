package monitor

import "github.com/rs/zerolog"

// ErrorTracker centralizes capture of unexpected application errors. A
// disabled tracker discards everything; an external error service could hang
// off Capture later without touching call sites.
type ErrorTracker struct {
	log     zerolog.Logger
	enabled bool
}

// NewErrorTracker constructs a tracker gated by the error-tracking flag.
func NewErrorTracker(log zerolog.Logger, enabled bool) *ErrorTracker {
	return &ErrorTracker{
		log:     log.With().Str("component", "errortracker").Logger(),
		enabled: enabled,
	}
}

// Capture records an application error with optional context fields.
func (t *ErrorTracker) Capture(err error, fields map[string]any) {
	if t == nil || !t.enabled || err == nil {
		return
	}
	evt := t.log.Error().Err(err)
	for k, v := range fields {
		evt = evt.Interface(k, v)
	}
	evt.Msg("application error")
}

// CaptureMessage records a free-form message at the given level.
func (t *ErrorTracker) CaptureMessage(level, message string, fields map[string]any) {
	if t == nil || !t.enabled {
		return
	}
	var evt *zerolog.Event
	switch level {
	case "error":
		evt = t.log.Error()
	case "warning", "warn":
		evt = t.log.Warn()
	default:
		evt = t.log.Info()
	}
	for k, v := range fields {
		evt = evt.Interface(k, v)
	}
	evt.Msg(message)
}
