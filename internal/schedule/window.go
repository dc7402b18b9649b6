package schedule

import "time"

const (
	// Lead is how long before an occurrence starts its reminder window opens.
	Lead = 10 * time.Minute
	// Tolerance is how long the window stays open once it has opened.
	Tolerance = 10 * time.Minute
)

// Window is the interval during which sending a reminder for an occurrence
// counts as on time.
type Window struct {
	Open  time.Time
	Close time.Time
}

// WindowFor returns the reminder window for an occurrence starting at start:
// [start-Lead, start-Lead+Tolerance], i.e. [start-10m, start].
func WindowFor(start time.Time) Window {
	open := start.Add(-Lead)
	return Window{Open: open, Close: open.Add(Tolerance)}
}

// Contains reports whether t falls inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Open) && !t.After(w.Close)
}

// DueNow reports whether an occurrence starting at next is due immediately:
// its start lies within [now, now+Lead]. For a non-repeating item this agrees
// exactly with WindowFor(next).Contains(now).
func DueNow(now, next time.Time) bool {
	return !next.Before(now) && !next.After(now.Add(Lead))
}
