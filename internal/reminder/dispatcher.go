package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	dom "github.com/suchockipawel/nottodo/internal/domain"
	"github.com/suchockipawel/nottodo/internal/mail"
	"github.com/suchockipawel/nottodo/internal/schedule"

	"github.com/rs/zerolog"
)

// ItemSource yields the scheduled items a tick should consider.
type ItemSource interface {
	ListActive(ctx context.Context, now time.Time) ([]dom.NotToDo, error)
}

// RecipientSource resolves an item's owner to a deliverable address.
type RecipientSource interface {
	GetByID(ctx context.Context, id int64) (dom.User, error)
}

// DeliveryLog is the append-only record of send attempts. It is also the
// de-duplication source of truth: WasSent keys on (item, occurrence start).
type DeliveryLog interface {
	Append(ctx context.Context, e dom.EmailLog) (dom.EmailLog, error)
	WasSent(ctx context.Context, nottodoID int64, occurrenceStart time.Time) (bool, error)
}

// Dispatcher sends reminder emails for items whose next reminder window
// contains "now". It keeps no state between ticks beyond the delivery log.
type Dispatcher struct {
	items  ItemSource
	users  RecipientSource
	log    DeliveryLog
	sender mail.Sender
	from   string
	logger zerolog.Logger
}

// NewDispatcher wires a dispatcher. from is the envelope sender address.
func NewDispatcher(items ItemSource, users RecipientSource, log DeliveryLog, sender mail.Sender, from string, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{items: items, users: users, log: log, sender: sender, from: from, logger: logger}
}

// Tick runs one dispatch pass at the injected instant. A per-item failure
// (send error, log error, missing owner) is recorded and the pass moves on;
// only failing to scan the item store aborts the tick.
func (d *Dispatcher) Tick(ctx context.Context, now time.Time) error {
	items, err := d.items.ListActive(ctx, now)
	if err != nil {
		return fmt.Errorf("list active items: %w", err)
	}
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		d.dispatchItem(ctx, now, item)
	}
	return nil
}

func (d *Dispatcher) dispatchItem(ctx context.Context, now time.Time, item dom.NotToDo) {
	it, err := schedule.Occurrences(item.ScheduledStart, item.ScheduledEnd, item.Repeat)
	if errors.Is(err, schedule.ErrNoHorizon) {
		d.logger.Warn().Int64("nottodo_id", item.ID).Str("repeat", string(item.Repeat)).
			Msg("repeating item has no end time, reminding for the anchor occurrence only")
	}
	occ, ok := dueOccurrence(it, now)
	if !ok {
		return
	}
	sent, err := d.log.WasSent(ctx, item.ID, occ.Start)
	if err != nil {
		d.logger.Error().Err(err).Int64("nottodo_id", item.ID).Msg("delivery log lookup failed")
		return
	}
	if sent {
		return
	}
	user, err := d.users.GetByID(ctx, item.UserID)
	if err != nil {
		d.logger.Error().Err(err).Int64("nottodo_id", item.ID).Int64("user_id", item.UserID).
			Msg("owner lookup failed")
		return
	}

	subject := "Reminder: " + item.Title
	body := fmt.Sprintf("This is a reminder for your Not To Do item %q starting at %s.",
		item.Title, occ.Start.UTC().Format(time.RFC1123))

	rec := dom.EmailLog{
		NotToDoID:       item.ID,
		UserID:          user.ID,
		Email:           user.Email,
		Subject:         subject,
		Message:         body,
		OccurrenceStart: occ.Start,
		SentAt:          now,
		Success:         true,
	}
	if err := d.sender.Send(ctx, mail.Message{
		From:    d.from,
		To:      []string{user.Email},
		Subject: subject,
		Body:    body,
	}); err != nil {
		rec.Success = false
		rec.ErrorMessage = err.Error()
		d.logger.Error().Err(err).Int64("nottodo_id", item.ID).Str("email", user.Email).
			Msg("reminder send failed")
	} else {
		d.logger.Info().Int64("nottodo_id", item.ID).Str("email", user.Email).
			Time("occurrence_start", occ.Start).Msg("reminder sent")
	}
	if _, err := d.log.Append(ctx, rec); err != nil {
		d.logger.Error().Err(err).Int64("nottodo_id", item.ID).Msg("delivery log append failed")
	}
}

// dueOccurrence walks the item's occurrences for the first whose reminder
// window contains now. Windows come in increasing order, so once a window
// opens in the future there is nothing left to send this tick.
func dueOccurrence(it *schedule.Iterator, now time.Time) (schedule.Occurrence, bool) {
	for {
		occ, ok := it.Next()
		if !ok {
			return schedule.Occurrence{}, false
		}
		w := schedule.WindowFor(occ.Start)
		if w.Contains(now) {
			return occ, true
		}
		if w.Open.After(now) {
			return schedule.Occurrence{}, false
		}
	}
}
