package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ScheduleTime parses a schedule field from JSON as either date-only
// ("2006-01-02") or RFC3339. Date-only is stored as start of that day in UTC.
type ScheduleTime struct{ t *time.Time }

func (d *ScheduleTime) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		d.t = nil
		return nil
	}
	s := strings.TrimSpace(*raw)
	layouts := []string{
		"2006-01-02", // date only
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04", // datetime-local inputs
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			if layout == "2006-01-02" {
				parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
			}
			parsed = parsed.UTC()
			d.t = &parsed
			return nil
		}
	}
	return fmt.Errorf("use date (YYYY-MM-DD) or RFC3339 datetime")
}

// Ptr returns *time.Time for use in service/domain.
func (d ScheduleTime) Ptr() *time.Time { return d.t }

type CreateNotToDoRequest struct {
	Title          string       `json:"title" binding:"required,min=1,max=255"`
	Description    string       `json:"description" binding:"max=2000"`
	Context        string       `json:"context" binding:"required"`
	ScheduledStart ScheduleTime `json:"scheduled_start_time"`
	ScheduledEnd   ScheduleTime `json:"scheduled_end_time"`
	Repeat         string       `json:"repeat"`
}

type UpdateNotToDoRequest struct {
	Title          *string       `json:"title" binding:"omitempty,min=1,max=255"`
	Description    *string       `json:"description" binding:"omitempty,max=2000"`
	Context        *string       `json:"context"`
	ScheduledStart *ScheduleTime `json:"scheduled_start_time"` // nil = keep, value = set
	ScheduledEnd   *ScheduleTime `json:"scheduled_end_time"`
	Repeat         *string       `json:"repeat"`
}

type NotToDoResponse struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Context        string     `json:"context"`
	ScheduledStart *time.Time `json:"scheduled_start_time"`
	ScheduledEnd   *time.Time `json:"scheduled_end_time"`
	Repeat         string     `json:"repeat"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type ListNotToDosResponse struct {
	Items []NotToDoResponse `json:"items"`
}

// EventResponse is one calendar feed entry.
type EventResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Start       time.Time  `json:"start"`
	End         *time.Time `json:"end"`
	Description string     `json:"description"`
	Context     string     `json:"context"`
}

type CheckRemindersResponse struct {
	HasReminders bool `json:"has_reminders"`
}

// ReminderLogEntry is one delivery log row for audit display.
type ReminderLogEntry struct {
	ID              int64     `json:"id"`
	Email           string    `json:"email"`
	Subject         string    `json:"subject"`
	OccurrenceStart time.Time `json:"occurrence_start"`
	SentAt          time.Time `json:"sent_at"`
	Success         bool      `json:"success"`
	ErrorMessage    string    `json:"error_message,omitempty"`
}

type ReminderLogResponse struct {
	Items []ReminderLogEntry `json:"items"`
}
