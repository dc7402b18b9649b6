package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	dom "github.com/suchockipawel/nottodo/internal/domain"
	"github.com/suchockipawel/nottodo/internal/mail"

	"github.com/rs/zerolog"
)

type fakeItems struct {
	items []dom.NotToDo
	err   error
}

func (f *fakeItems) ListActive(context.Context, time.Time) ([]dom.NotToDo, error) {
	return f.items, f.err
}

type fakeUsers struct {
	users map[int64]dom.User
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (dom.User, error) {
	u, ok := f.users[id]
	if !ok {
		return dom.User{}, errors.New("no such user")
	}
	return u, nil
}

type fakeLog struct {
	records []dom.EmailLog
}

func (f *fakeLog) Append(_ context.Context, e dom.EmailLog) (dom.EmailLog, error) {
	f.records = append(f.records, e)
	return e, nil
}

func (f *fakeLog) WasSent(_ context.Context, nottodoID int64, occStart time.Time) (bool, error) {
	for _, r := range f.records {
		if r.NotToDoID == nottodoID && r.OccurrenceStart.Equal(occStart) && r.Success {
			return true, nil
		}
	}
	return false, nil
}

type fakeSender struct {
	sent    []mail.Message
	failFor map[string]error // keyed by recipient
}

func (f *fakeSender) Send(_ context.Context, msg mail.Message) error {
	if err, ok := f.failFor[msg.To[0]]; ok {
		return err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func newTestDispatcher(items *fakeItems, users *fakeUsers, log *fakeLog, sender *fakeSender) *Dispatcher {
	return NewDispatcher(items, users, log, sender, "reminders@example.com", zerolog.Nop())
}

func itemAt(id, userID int64, title string, start time.Time, end *time.Time, repeat dom.Repeat) dom.NotToDo {
	return dom.NotToDo{
		ID:             id,
		UserID:         userID,
		Title:          title,
		Context:        dom.ContextHome,
		ScheduledStart: &start,
		ScheduledEnd:   end,
		Repeat:         repeat,
	}
}

func TestTickSendsOnlyWithinLeadWindow(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	soonEnd := now.Add(2 * time.Hour)
	laterEnd := now.Add(3 * time.Hour)

	items := &fakeItems{items: []dom.NotToDo{
		itemAt(1, 1, "doomscroll", now.Add(5*time.Minute), &soonEnd, dom.RepeatNone),
		itemAt(2, 1, "snack at desk", now.Add(60*time.Minute), &laterEnd, dom.RepeatNone),
	}}
	users := &fakeUsers{users: map[int64]dom.User{1: {ID: 1, Email: "owner@example.com"}}}
	log := &fakeLog{}
	sender := &fakeSender{}

	d := newTestDispatcher(items, users, log, sender)
	if err := d.Tick(context.Background(), now); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 send, got %d", len(sender.sent))
	}
	if got := sender.sent[0].To[0]; got != "owner@example.com" {
		t.Errorf("recipient = %q", got)
	}
	if len(log.records) != 1 {
		t.Fatalf("expected 1 delivery record, got %d", len(log.records))
	}
	rec := log.records[0]
	if !rec.Success {
		t.Error("record should be a success")
	}
	if rec.NotToDoID != 1 {
		t.Errorf("record for item %d, want 1", rec.NotToDoID)
	}
	if !rec.OccurrenceStart.Equal(now.Add(5 * time.Minute)) {
		t.Errorf("occurrence start = %v", rec.OccurrenceStart)
	}
}

func TestTickSecondTickSuppressed(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	end := now.Add(2 * time.Hour)

	items := &fakeItems{items: []dom.NotToDo{
		itemAt(1, 1, "doomscroll", now.Add(5*time.Minute), &end, dom.RepeatNone),
	}}
	users := &fakeUsers{users: map[int64]dom.User{1: {ID: 1, Email: "owner@example.com"}}}
	log := &fakeLog{}
	sender := &fakeSender{}

	d := newTestDispatcher(items, users, log, sender)
	if err := d.Tick(context.Background(), now); err != nil {
		t.Fatalf("first Tick: %v", err)
	}
	// One minute later the same window is still open; the log suppresses a resend.
	if err := d.Tick(context.Background(), now.Add(time.Minute)); err != nil {
		t.Fatalf("second Tick: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected exactly 1 send across both ticks, got %d", len(sender.sent))
	}
	if len(log.records) != 1 {
		t.Fatalf("expected exactly 1 delivery record, got %d", len(log.records))
	}
}

func TestTickFailureDoesNotAbortBatch(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	end := now.Add(2 * time.Hour)

	items := &fakeItems{items: []dom.NotToDo{
		itemAt(1, 1, "first", now.Add(5*time.Minute), &end, dom.RepeatNone),
		itemAt(2, 2, "second", now.Add(5*time.Minute), &end, dom.RepeatNone),
	}}
	users := &fakeUsers{users: map[int64]dom.User{
		1: {ID: 1, Email: "broken@example.com"},
		2: {ID: 2, Email: "fine@example.com"},
	}}
	log := &fakeLog{}
	sender := &fakeSender{failFor: map[string]error{"broken@example.com": errors.New("smtp 550")}}

	d := newTestDispatcher(items, users, log, sender)
	if err := d.Tick(context.Background(), now); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	if len(sender.sent) != 1 || sender.sent[0].To[0] != "fine@example.com" {
		t.Fatalf("second item should still have been processed, sent=%v", sender.sent)
	}
	if len(log.records) != 2 {
		t.Fatalf("expected 2 delivery records, got %d", len(log.records))
	}
	var failed, succeeded bool
	for _, r := range log.records {
		if r.NotToDoID == 1 {
			failed = true
			if r.Success {
				t.Error("failed send recorded as success")
			}
			if r.ErrorMessage == "" {
				t.Error("failed record missing error detail")
			}
		}
		if r.NotToDoID == 2 && r.Success {
			succeeded = true
		}
	}
	if !failed || !succeeded {
		t.Errorf("expected one failed and one successful record, got %+v", log.records)
	}
}

func TestTickFailedSendRetriesWhileWindowOpen(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	end := now.Add(2 * time.Hour)

	items := &fakeItems{items: []dom.NotToDo{
		itemAt(1, 1, "flaky", now.Add(5*time.Minute), &end, dom.RepeatNone),
	}}
	users := &fakeUsers{users: map[int64]dom.User{1: {ID: 1, Email: "owner@example.com"}}}
	log := &fakeLog{}
	sender := &fakeSender{failFor: map[string]error{"owner@example.com": errors.New("timeout")}}

	d := newTestDispatcher(items, users, log, sender)
	if err := d.Tick(context.Background(), now); err != nil {
		t.Fatalf("first Tick: %v", err)
	}
	// Relay recovers; only successful sends de-duplicate.
	sender.failFor = nil
	if err := d.Tick(context.Background(), now.Add(time.Minute)); err != nil {
		t.Fatalf("second Tick: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected retry to deliver once, got %d sends", len(sender.sent))
	}
	if len(log.records) != 2 {
		t.Fatalf("expected failure + success records, got %d", len(log.records))
	}
	if log.records[0].Success || !log.records[1].Success {
		t.Errorf("records in wrong order/state: %+v", log.records)
	}
}

func TestTickRecurringItemWithPastAnchor(t *testing.T) {
	now := time.Date(2026, time.March, 10, 8, 55, 0, 0, time.UTC)
	// Daily at 09:00 since last week; today's occurrence opens its window at 08:50.
	start := time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.March, 20, 9, 0, 0, 0, time.UTC)

	items := &fakeItems{items: []dom.NotToDo{
		itemAt(1, 1, "skip breakfast", start, &end, dom.RepeatDaily),
	}}
	users := &fakeUsers{users: map[int64]dom.User{1: {ID: 1, Email: "owner@example.com"}}}
	log := &fakeLog{}
	sender := &fakeSender{}

	d := newTestDispatcher(items, users, log, sender)
	if err := d.Tick(context.Background(), now); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 send for today's occurrence, got %d", len(sender.sent))
	}
	want := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	if !log.records[0].OccurrenceStart.Equal(want) {
		t.Errorf("occurrence start = %v, want %v", log.records[0].OccurrenceStart, want)
	}
}

func TestTickStoreErrorIsFatal(t *testing.T) {
	items := &fakeItems{err: errors.New("connection refused")}
	d := newTestDispatcher(items, &fakeUsers{}, &fakeLog{}, &fakeSender{})
	if err := d.Tick(context.Background(), time.Now().UTC()); err == nil {
		t.Fatal("expected the tick to fail when the item store is unavailable")
	}
}
