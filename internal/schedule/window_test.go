package schedule

import (
	"testing"
	"time"
)

func TestWindowFor(t *testing.T) {
	start := ts(2026, time.March, 10, 9, 0)
	w := WindowFor(start)
	if want := start.Add(-10 * time.Minute); !w.Open.Equal(want) {
		t.Errorf("Open = %v, want %v", w.Open, want)
	}
	if !w.Close.Equal(start) {
		t.Errorf("Close = %v, want %v (the occurrence start)", w.Close, start)
	}
}

func TestWindowContains(t *testing.T) {
	start := ts(2026, time.March, 10, 9, 0)
	w := WindowFor(start)

	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before open", start.Add(-11 * time.Minute), false},
		{"at open", start.Add(-10 * time.Minute), true},
		{"inside", start.Add(-5 * time.Minute), true},
		{"at close", start, true},
		{"after close", start.Add(time.Minute), false},
	}
	for _, tc := range cases {
		if got := w.Contains(tc.now); got != tc.want {
			t.Errorf("%s: Contains(%v) = %v, want %v", tc.name, tc.now, got, tc.want)
		}
	}
}

// The simple "due now" threshold and the window check must agree for a
// non-repeating item's single occurrence.
func TestDueNowAgreesWithWindow(t *testing.T) {
	now := ts(2026, time.March, 10, 9, 0)
	offsets := []time.Duration{
		-time.Minute, 0, time.Minute, 5 * time.Minute,
		10 * time.Minute, 11 * time.Minute, time.Hour,
	}
	for _, off := range offsets {
		start := now.Add(off)
		due := DueNow(now, start)
		windowed := WindowFor(start).Contains(now)
		if due != windowed {
			t.Errorf("offset %v: DueNow = %v, window check = %v", off, due, windowed)
		}
	}
}
