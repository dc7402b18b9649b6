package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/suchockipawel/nottodo/internal/cache"
	dom "github.com/suchockipawel/nottodo/internal/domain"
	"github.com/suchockipawel/nottodo/internal/repo"
	"github.com/suchockipawel/nottodo/internal/schedule"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidRepeat   = errors.New(`repeat must be "None", "Daily", "Weekly" or "Monthly"`)
	ErrInvalidContext  = errors.New(`context must be "Home", "Work" or "Other"`)
	ErrMissingSchedule = errors.New("repeating items need both scheduled start and end times")
	ErrStartAfterEnd   = errors.New("scheduled start must be before scheduled end")
)

// NotToDoInput is the validated write shape for create and update. It exists
// so HTTP bindings never touch storage entities directly.
type NotToDoInput struct {
	Title          string
	Description    string
	Context        dom.Context
	ScheduledStart *time.Time
	ScheduledEnd   *time.Time
	Repeat         dom.Repeat
}

func (in NotToDoInput) validate() error {
	if !in.Context.Valid() {
		return ErrInvalidContext
	}
	if !in.Repeat.Valid() {
		return ErrInvalidRepeat
	}
	if in.Repeat != dom.RepeatNone && (in.ScheduledStart == nil || in.ScheduledEnd == nil) {
		return ErrMissingSchedule
	}
	if in.ScheduledStart != nil && in.ScheduledEnd != nil && !in.ScheduledStart.Before(*in.ScheduledEnd) {
		return ErrStartAfterEnd
	}
	return nil
}

// NotToDoService handles Not To Do business logic.
type NotToDoService struct {
	repo     repo.NotToDoRepo
	shares   repo.ShareRepo
	emailLog repo.EmailLogRepo
	cache    *cache.NotToDoCache
	logger   zerolog.Logger
	sf       singleflight.Group
}

// NewNotToDoService creates a NotToDoService. If c is nil, caching is disabled.
func NewNotToDoService(r repo.NotToDoRepo, shares repo.ShareRepo, emailLog repo.EmailLogRepo, c *cache.NotToDoCache, logger zerolog.Logger) *NotToDoService {
	return &NotToDoService{repo: r, shares: shares, emailLog: emailLog, cache: c, logger: logger}
}

func (s *NotToDoService) Create(ctx context.Context, userID int64, in NotToDoInput) (dom.NotToDo, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := in.validate(); err != nil {
		return dom.NotToDo{}, err
	}
	n, err := s.repo.Create(ctx, dom.NotToDo{
		UserID:         userID,
		Title:          in.Title,
		Description:    in.Description,
		Context:        in.Context,
		ScheduledStart: in.ScheduledStart,
		ScheduledEnd:   in.ScheduledEnd,
		Repeat:         in.Repeat,
	})
	if err != nil {
		return dom.NotToDo{}, err
	}
	s.invalidateCache(ctx, userID)
	return n, nil
}

// List returns the user's items, optionally filtered by context
// ("" or "All" means no filter).
func (s *NotToDoService) List(ctx context.Context, userID int64, contextFilter string) ([]dom.NotToDo, error) {
	filter, err := parseContextFilter(contextFilter)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		key := "list:" + strconv.FormatInt(userID, 10) + ":" + string(filter)
		v, err, _ := s.sf.Do(key, func() (interface{}, error) {
			if list, err := s.cache.GetList(ctx, userID, filter); err == nil && list != nil {
				return list, nil
			}
			list, err := s.repo.List(ctx, userID, filter)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetList(ctx, userID, filter, list)
			return list, nil
		})
		if err != nil {
			return nil, err
		}
		return v.([]dom.NotToDo), nil
	}
	return s.repo.List(ctx, userID, filter)
}

func parseContextFilter(raw string) (dom.Context, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "All") {
		return "", nil
	}
	c := dom.Context(raw)
	if !c.Valid() {
		return "", ErrInvalidContext
	}
	return c, nil
}

func (s *NotToDoService) GetByID(ctx context.Context, userID, id int64) (dom.NotToDo, error) {
	n, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.NotToDo{}, ErrNotFound
		}
		return dom.NotToDo{}, err
	}
	return n, nil
}

// Update applies a partial patch: nil fields keep their current value. The
// merged result is re-validated as a whole before it is written.
func (s *NotToDoService) Update(ctx context.Context, userID, id int64, title, desc, contextStr *string, start, end **time.Time, repeat *string) (dom.NotToDo, error) {
	existing, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return dom.NotToDo{}, err
	}
	in := NotToDoInput{
		Title:          existing.Title,
		Description:    existing.Description,
		Context:        existing.Context,
		ScheduledStart: existing.ScheduledStart,
		ScheduledEnd:   existing.ScheduledEnd,
		Repeat:         existing.Repeat,
	}
	if title != nil {
		in.Title = strings.TrimSpace(*title)
	}
	if desc != nil {
		in.Description = strings.TrimSpace(*desc)
	}
	if contextStr != nil {
		in.Context = dom.Context(*contextStr)
	}
	if start != nil {
		in.ScheduledStart = *start
	}
	if end != nil {
		in.ScheduledEnd = *end
	}
	if repeat != nil {
		in.Repeat = dom.Repeat(*repeat)
	}
	if err := in.validate(); err != nil {
		return dom.NotToDo{}, err
	}
	n, err := s.repo.Update(ctx, userID, id, dom.NotToDo{
		Title:          in.Title,
		Description:    in.Description,
		Context:        in.Context,
		ScheduledStart: in.ScheduledStart,
		ScheduledEnd:   in.ScheduledEnd,
		Repeat:         in.Repeat,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.NotToDo{}, ErrNotFound
		}
		return dom.NotToDo{}, err
	}
	s.invalidateCache(ctx, userID)
	return n, nil
}

func (s *NotToDoService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.invalidateCache(ctx, userID)
	return nil
}

// Copy duplicates an item the user owns or one shared with them, prefixing
// the title with "Copy of ". The copy belongs to the requesting user.
func (s *NotToDoService) Copy(ctx context.Context, userID, id int64) (dom.NotToDo, error) {
	original, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return dom.NotToDo{}, err
		}
		shared, err := s.shares.GetByItemAndUser(ctx, id, userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return dom.NotToDo{}, ErrNotFound
			}
			return dom.NotToDo{}, err
		}
		original = shared.Item
	}
	n, err := s.repo.Create(ctx, dom.NotToDo{
		UserID:         userID,
		Title:          "Copy of " + original.Title,
		Description:    original.Description,
		Context:        original.Context,
		ScheduledStart: original.ScheduledStart,
		ScheduledEnd:   original.ScheduledEnd,
		Repeat:         original.Repeat,
	})
	if err != nil {
		return dom.NotToDo{}, err
	}
	s.invalidateCache(ctx, userID)
	return n, nil
}

// Events expands every item of the user into calendar occurrences, flattened
// into one feed. Items without a start time contribute nothing.
func (s *NotToDoService) Events(ctx context.Context, userID int64) ([]dom.CalendarEvent, error) {
	if s.cache != nil {
		key := "events:" + strconv.FormatInt(userID, 10)
		v, err, _ := s.sf.Do(key, func() (interface{}, error) {
			if events, err := s.cache.GetEvents(ctx, userID); err == nil && events != nil {
				return events, nil
			}
			events, err := s.buildEvents(ctx, userID)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetEvents(ctx, userID, events)
			return events, nil
		})
		if err != nil {
			return nil, err
		}
		return v.([]dom.CalendarEvent), nil
	}
	return s.buildEvents(ctx, userID)
}

func (s *NotToDoService) buildEvents(ctx context.Context, userID int64) ([]dom.CalendarEvent, error) {
	items, err := s.repo.List(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	events := []dom.CalendarEvent{}
	for _, item := range items {
		it, err := schedule.Occurrences(item.ScheduledStart, item.ScheduledEnd, item.Repeat)
		if errors.Is(err, schedule.ErrNoHorizon) {
			s.logger.Warn().Int64("nottodo_id", item.ID).
				Msg("repeating item has no end time, feed shows the anchor occurrence only")
		}
		for {
			occ, ok := it.Next()
			if !ok {
				break
			}
			events = append(events, dom.CalendarEvent{
				ID:          item.ID,
				Title:       item.Title,
				Start:       occ.Start,
				End:         occ.End,
				Description: item.Description,
				Context:     item.Context,
			})
		}
	}
	return events, nil
}

// HasUpcoming reports whether any of the user's items starts in the future.
func (s *NotToDoService) HasUpcoming(ctx context.Context, userID int64, now time.Time) (bool, error) {
	return s.repo.HasUpcoming(ctx, userID, now)
}

// ReminderLog returns the delivery log of an item the user owns.
func (s *NotToDoService) ReminderLog(ctx context.Context, userID, id int64) ([]dom.EmailLog, error) {
	if _, err := s.GetByID(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.emailLog.ListForItem(ctx, userID, id)
}

func (s *NotToDoService) invalidateCache(ctx context.Context, userID int64) {
	if s.cache != nil {
		if err := s.cache.InvalidateUser(ctx, userID); err != nil {
			s.logger.Warn().Err(err).Int64("user_id", userID).Msg("cache invalidation failed")
		}
	}
}
