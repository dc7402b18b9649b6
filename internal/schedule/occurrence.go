package schedule

import (
	"errors"
	"time"

	"github.com/suchockipawel/nottodo/internal/domain"
)

// RepeatDuration is the synthetic length of every repeating occurrence,
// regardless of the anchor interval's own length.
const RepeatDuration = time.Hour

// ErrNoHorizon is returned (alongside a usable single-occurrence iterator)
// when a repeating item has no end time to bound the expansion. The caller
// should surface it to operators; the item owner still gets one occurrence.
var ErrNoHorizon = errors.New("repeating item has no scheduled end time, expansion truncated to a single occurrence")

// Occurrence is one concrete time interval derived from an item's schedule.
// End is nil only for a non-repeating item with no scheduled end.
type Occurrence struct {
	Start time.Time
	End   *time.Time
}

// Iterator lazily yields an item's occurrences in increasing start order.
// Monthly items can expand to a year past their end time, so callers that
// only need a prefix should stop calling Next early instead of collecting.
type Iterator struct {
	anchor time.Time
	end    *time.Time
	repeat domain.Repeat
	limit  time.Time // inclusive bound on occurrence starts
	n      int
	done   bool
}

// Occurrences returns an iterator over the occurrences of a schedule.
//
//   - nil start: the iterator is empty.
//   - Repeat None: a single occurrence [start, end], end may be nil.
//   - Daily/Weekly: steps of 1/7 days while the start is within [start, end].
//   - Monthly: calendar-month steps (Jan 31 clamps to Feb 28/29), bounded by
//     end plus a one-year look-ahead.
//
// A repeating schedule without an end yields a single occurrence and
// ErrNoHorizon; the iterator is still valid.
func Occurrences(start, end *time.Time, repeat domain.Repeat) (*Iterator, error) {
	if start == nil {
		return &Iterator{done: true}, nil
	}
	it := &Iterator{anchor: *start, end: end, repeat: repeat}
	if repeat == domain.RepeatNone {
		it.limit = *start
		return it, nil
	}
	if end == nil {
		it.limit = *start
		return it, ErrNoHorizon
	}
	switch repeat {
	case domain.RepeatMonthly:
		it.limit = end.AddDate(1, 0, 0)
	default:
		it.limit = *end
	}
	return it, nil
}

// Next returns the next occurrence, or ok=false when the sequence is exhausted.
func (it *Iterator) Next() (Occurrence, bool) {
	if it.done {
		return Occurrence{}, false
	}
	var start time.Time
	switch it.repeat {
	case domain.RepeatDaily:
		start = it.anchor.AddDate(0, 0, it.n)
	case domain.RepeatWeekly:
		start = it.anchor.AddDate(0, 0, 7*it.n)
	case domain.RepeatMonthly:
		start = addMonthsClamped(it.anchor, it.n)
	default:
		it.done = true
		return Occurrence{Start: it.anchor, End: it.end}, true
	}
	if start.After(it.limit) {
		it.done = true
		return Occurrence{}, false
	}
	it.n++
	occEnd := start.Add(RepeatDuration)
	return Occurrence{Start: start, End: &occEnd}, true
}

// Collect drains the iterator into a slice, stopping after max occurrences
// when max > 0.
func (it *Iterator) Collect(max int) []Occurrence {
	var out []Occurrence
	for {
		occ, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, occ)
		if max > 0 && len(out) >= max {
			return out
		}
	}
}

// addMonthsClamped steps n calendar months from t, clamping the day of month
// to the target month's length so Jan 31 + 1 month is Feb 28 (or 29), not
// Mar 2/3 as time.AddDate would normalize it. Stepping is always taken from
// the anchor so the clamp never compounds: Jan 31 + 2 months is Mar 31.
func addMonthsClamped(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	// Date normalizes month overflow into the year for us.
	first := time.Date(year, month+time.Month(n), 1,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysInMonth(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// daysInMonth returns the number of days in the given month; day zero of the
// following month is its last day.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
