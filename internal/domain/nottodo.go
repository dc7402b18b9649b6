package domain

import "time"

// Context is the life area a Not To Do belongs to.
type Context string

const (
	ContextHome  Context = "Home"
	ContextWork  Context = "Work"
	ContextOther Context = "Other"
)

// Valid reports whether c is one of the known contexts.
func (c Context) Valid() bool {
	switch c {
	case ContextHome, ContextWork, ContextOther:
		return true
	}
	return false
}

// Repeat is the recurrence rule of a Not To Do.
type Repeat string

const (
	RepeatNone    Repeat = "None"
	RepeatDaily   Repeat = "Daily"
	RepeatWeekly  Repeat = "Weekly"
	RepeatMonthly Repeat = "Monthly"
)

// Valid reports whether r is one of the known repeat values.
func (r Repeat) Valid() bool {
	switch r {
	case RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly:
		return true
	}
	return false
}

// NotToDo is something the owner intends NOT to do at a scheduled time.
// Times are stored in UTC; presentation conversion is the client's problem.
type NotToDo struct {
	ID             int64
	UserID         int64
	Title          string
	Description    string
	Context        Context
	ScheduledStart *time.Time
	ScheduledEnd   *time.Time
	Repeat         Repeat

	CreatedAt time.Time
	UpdatedAt time.Time
}
