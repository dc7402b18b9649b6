package domain

import "time"

// CalendarEvent is one concrete occurrence of a Not To Do, flattened for the
// calendar feed. Derived on demand, never persisted.
type CalendarEvent struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Start       time.Time  `json:"start"`
	End         *time.Time `json:"end"`
	Description string     `json:"description"`
	Context     Context    `json:"context"`
}
