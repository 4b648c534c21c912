package domain

import "time"

// Template is a CV layout definition. Premium templates require a plan whose
// template access level is above free.
type Template struct {
	ID          string
	Name        string
	Description string
	IsPremium   bool
	PreviewURL  string
	CreatedAt   time.Time
}

// CV is a stored resume document. Content holds the structured document body
// as JSON; rendering happens client-side.
type CV struct {
	ID         string
	UserID     string
	Title      string
	TemplateID *string
	Content    map[string]any
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
