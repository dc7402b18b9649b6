package domain

import "time"

// EmailLog is one reminder delivery attempt. Rows are append-only: the
// dispatcher writes exactly one per attempt and nothing ever updates them.
// (NotToDoID, OccurrenceStart) doubles as the de-duplication key.
type EmailLog struct {
	ID              int64
	NotToDoID       int64
	UserID          int64
	Email           string
	Subject         string
	Message         string
	OccurrenceStart time.Time
	SentAt          time.Time
	Success         bool
	ErrorMessage    string
}
