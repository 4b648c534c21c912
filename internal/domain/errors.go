package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNoActivePlan = errors.New("no active plan")
)

// LimitReachedError is returned when a metered counter hit its ceiling. The
// message names the numeric limit so callers can surface it directly.
type LimitReachedError struct {
	Usage UsageType
	Limit int
}

func (e *LimitReachedError) Error() string {
	switch e.Usage {
	case UsageCVGeneration:
		return fmt.Sprintf("You have reached your CV generation limit (%d). Upgrade your plan for more.", e.Limit)
	case UsageCoverLetter:
		return fmt.Sprintf("You have reached your cover letter limit (%d). Upgrade your plan for more.", e.Limit)
	case UsageAIOptimization:
		return fmt.Sprintf("You have reached your AI optimization limit (%d). Upgrade your plan for more.", e.Limit)
	case UsageEdit:
		return fmt.Sprintf("You have reached your edit limit (%d). Upgrade your plan for more.", e.Limit)
	case UsageExport:
		return fmt.Sprintf("You have reached your export limit (%d). Upgrade your plan for more.", e.Limit)
	}
	return fmt.Sprintf("You have reached your usage limit (%d). Upgrade your plan for more.", e.Limit)
}

// ValidationError carries field-level detail for rejected input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// NewValidationError builds a ValidationError from field/message pairs.
func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}
