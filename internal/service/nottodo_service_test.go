package service

import (
	"context"
	"errors"
	"testing"
	"time"

	dom "github.com/suchockipawel/nottodo/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type memNotToDoRepo struct {
	nextID int64
	items  map[int64]dom.NotToDo
}

func newMemNotToDoRepo() *memNotToDoRepo {
	return &memNotToDoRepo{nextID: 1, items: map[int64]dom.NotToDo{}}
}

func (m *memNotToDoRepo) Create(_ context.Context, n dom.NotToDo) (dom.NotToDo, error) {
	n.ID = m.nextID
	m.nextID++
	n.CreatedAt = time.Now().UTC()
	n.UpdatedAt = n.CreatedAt
	m.items[n.ID] = n
	return n, nil
}

func (m *memNotToDoRepo) GetByID(_ context.Context, userID, id int64) (dom.NotToDo, error) {
	n, ok := m.items[id]
	if !ok || n.UserID != userID {
		return dom.NotToDo{}, pgx.ErrNoRows
	}
	return n, nil
}

func (m *memNotToDoRepo) List(_ context.Context, userID int64, c dom.Context) ([]dom.NotToDo, error) {
	var out []dom.NotToDo
	for _, n := range m.items {
		if n.UserID == userID && (c == "" || n.Context == c) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memNotToDoRepo) Update(_ context.Context, userID, id int64, patch dom.NotToDo) (dom.NotToDo, error) {
	n, ok := m.items[id]
	if !ok || n.UserID != userID {
		return dom.NotToDo{}, pgx.ErrNoRows
	}
	patch.ID = n.ID
	patch.UserID = n.UserID
	patch.CreatedAt = n.CreatedAt
	patch.UpdatedAt = time.Now().UTC()
	m.items[id] = patch
	return patch, nil
}

func (m *memNotToDoRepo) Delete(_ context.Context, userID, id int64) error {
	n, ok := m.items[id]
	if ok && n.UserID == userID {
		delete(m.items, id)
	}
	return nil
}

func (m *memNotToDoRepo) HasUpcoming(_ context.Context, userID int64, now time.Time) (bool, error) {
	for _, n := range m.items {
		if n.UserID == userID && n.ScheduledStart != nil && n.ScheduledStart.After(now) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memNotToDoRepo) ListActive(_ context.Context, _ time.Time) ([]dom.NotToDo, error) {
	var out []dom.NotToDo
	for _, n := range m.items {
		if n.ScheduledStart != nil {
			out = append(out, n)
		}
	}
	return out, nil
}

type memShareRepo struct {
	shared map[int64]dom.SharedWithItem // keyed by item ID, single recipient for tests
}

func (m *memShareRepo) Create(context.Context, int64, int64) (dom.SharedNotToDo, error) {
	return dom.SharedNotToDo{}, errors.New("not used")
}
func (m *memShareRepo) GetForUser(context.Context, int64, int64) (dom.SharedWithItem, error) {
	return dom.SharedWithItem{}, pgx.ErrNoRows
}
func (m *memShareRepo) GetByItemAndUser(_ context.Context, itemID, userID int64) (dom.SharedWithItem, error) {
	sw, ok := m.shared[itemID]
	if !ok || sw.Share.SharedWith != userID {
		return dom.SharedWithItem{}, pgx.ErrNoRows
	}
	return sw, nil
}
func (m *memShareRepo) ListForUser(context.Context, int64) ([]dom.SharedWithItem, error) {
	return nil, nil
}
func (m *memShareRepo) Delete(context.Context, int64, int64) error { return nil }
func (m *memShareRepo) AddComment(context.Context, int64, int64, string) (dom.Comment, error) {
	return dom.Comment{}, errors.New("not used")
}
func (m *memShareRepo) ListComments(context.Context, int64) ([]dom.Comment, error) {
	return nil, nil
}

type memEmailLogRepo struct{}

func (memEmailLogRepo) Append(_ context.Context, e dom.EmailLog) (dom.EmailLog, error) {
	return e, nil
}
func (memEmailLogRepo) WasSent(context.Context, int64, time.Time) (bool, error) {
	return false, nil
}
func (memEmailLogRepo) ListForItem(context.Context, int64, int64) ([]dom.EmailLog, error) {
	return nil, nil
}

func newTestService(r *memNotToDoRepo, s *memShareRepo) *NotToDoService {
	if s == nil {
		s = &memShareRepo{}
	}
	return NewNotToDoService(r, s, memEmailLogRepo{}, nil, zerolog.Nop())
}

func validInput(start, end time.Time, repeat dom.Repeat) NotToDoInput {
	return NotToDoInput{
		Title:          "no phone at dinner",
		Context:        dom.ContextHome,
		ScheduledStart: &start,
		ScheduledEnd:   &end,
		Repeat:         repeat,
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(newMemNotToDoRepo(), nil)
	ctx := context.Background()
	start := time.Date(2026, time.April, 1, 19, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	cases := []struct {
		name    string
		mutate  func(*NotToDoInput)
		wantErr error
	}{
		{"bad repeat", func(in *NotToDoInput) { in.Repeat = "Hourly" }, ErrInvalidRepeat},
		{"bad context", func(in *NotToDoInput) { in.Context = "Gym" }, ErrInvalidContext},
		{"repeating without end", func(in *NotToDoInput) { in.Repeat = dom.RepeatDaily; in.ScheduledEnd = nil }, ErrMissingSchedule},
		{"repeating without start", func(in *NotToDoInput) { in.Repeat = dom.RepeatWeekly; in.ScheduledStart = nil }, ErrMissingSchedule},
		{"start after end", func(in *NotToDoInput) { in.ScheduledStart = &end; in.ScheduledEnd = &start }, ErrStartAfterEnd},
	}
	for _, tc := range cases {
		in := validInput(start, end, dom.RepeatNone)
		tc.mutate(&in)
		if _, err := svc.Create(ctx, 1, in); !errors.Is(err, tc.wantErr) {
			t.Errorf("%s: err = %v, want %v", tc.name, err, tc.wantErr)
		}
	}

	if _, err := svc.Create(ctx, 1, validInput(start, end, dom.RepeatDaily)); err != nil {
		t.Errorf("valid input rejected: %v", err)
	}
}

func TestGetByIDScopedToOwner(t *testing.T) {
	repo := newMemNotToDoRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()
	start := time.Date(2026, time.April, 1, 19, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	n, err := svc.Create(ctx, 1, validInput(start, end, dom.RepeatNone))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.GetByID(ctx, 2, n.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("other user's lookup: err = %v, want ErrNotFound", err)
	}
}

func TestUpdateRevalidatesMergedResult(t *testing.T) {
	repo := newMemNotToDoRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()
	start := time.Date(2026, time.April, 1, 19, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	n, err := svc.Create(ctx, 1, validInput(start, end, dom.RepeatNone))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Switching to Daily while clearing the end time must fail as a whole.
	repeat := "Daily"
	var noEnd *time.Time
	if _, err := svc.Update(ctx, 1, n.ID, nil, nil, nil, nil, &noEnd, &repeat); !errors.Is(err, ErrMissingSchedule) {
		t.Errorf("err = %v, want ErrMissingSchedule", err)
	}
}

func TestCopySharedItem(t *testing.T) {
	repo := newMemNotToDoRepo()
	start := time.Date(2026, time.April, 1, 19, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	original := dom.NotToDo{
		ID: 42, UserID: 1, Title: "late-night email", Context: dom.ContextWork,
		ScheduledStart: &start, ScheduledEnd: &end, Repeat: dom.RepeatWeekly,
	}
	shares := &memShareRepo{shared: map[int64]dom.SharedWithItem{
		42: {Share: dom.SharedNotToDo{ID: 7, NotToDoID: 42, SharedWith: 2}, Item: original},
	}}
	svc := newTestService(repo, shares)

	copied, err := svc.Copy(context.Background(), 2, 42)
	if err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if copied.UserID != 2 {
		t.Errorf("copy owner = %d, want 2", copied.UserID)
	}
	if copied.Title != "Copy of late-night email" {
		t.Errorf("copy title = %q", copied.Title)
	}
	if copied.Repeat != dom.RepeatWeekly {
		t.Errorf("copy repeat = %q", copied.Repeat)
	}

	if _, err := svc.Copy(context.Background(), 3, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("stranger's copy: err = %v, want ErrNotFound", err)
	}
}

func TestEventsExpandRecurrence(t *testing.T) {
	repo := newMemNotToDoRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	start := time.Date(2026, time.April, 1, 19, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 3)
	if _, err := svc.Create(ctx, 1, validInput(start, end, dom.RepeatDaily)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	events, err := svc.Events(ctx, 1)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}
	for _, e := range events {
		if e.Title != "no phone at dinner" {
			t.Errorf("event title = %q", e.Title)
		}
		if e.End == nil || e.End.Sub(e.Start) != time.Hour {
			t.Errorf("event duration != 1h: start %v end %v", e.Start, e.End)
		}
	}
}

func TestListRejectsUnknownContextFilter(t *testing.T) {
	svc := newTestService(newMemNotToDoRepo(), nil)
	if _, err := svc.List(context.Background(), 1, "Gym"); !errors.Is(err, ErrInvalidContext) {
		t.Errorf("err = %v, want ErrInvalidContext", err)
	}
	if _, err := svc.List(context.Background(), 1, "All"); err != nil {
		t.Errorf(`List("All") err = %v`, err)
	}
}
