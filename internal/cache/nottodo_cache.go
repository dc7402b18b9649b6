package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	dom "github.com/suchockipawel/nottodo/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	keyListPrefix   = "nottodo:list:"
	keyEventsPrefix = "nottodo:events:"
)

// NotToDoCache caches per-user item lists and calendar event feeds in Redis.
type NotToDoCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewNotToDoCache returns a new NotToDoCache.
func NewNotToDoCache(rdb *redis.Client, ttl time.Duration) *NotToDoCache {
	return &NotToDoCache{rdb: rdb, ttl: ttl}
}

func listKey(userID int64, context dom.Context) string {
	c := string(context)
	if c == "" {
		c = "all"
	}
	return keyListPrefix + strconv.FormatInt(userID, 10) + ":" + strings.ToLower(c)
}

func eventsKey(userID int64) string {
	return keyEventsPrefix + strconv.FormatInt(userID, 10)
}

// GetList returns the cached list for (user, context filter), or nil on miss.
func (c *NotToDoCache) GetList(ctx context.Context, userID int64, context dom.Context) ([]dom.NotToDo, error) {
	b, err := c.rdb.Get(ctx, listKey(userID, context)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []dom.NotToDo
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetList stores the list for (user, context filter).
func (c *NotToDoCache) SetList(ctx context.Context, userID int64, context dom.Context, list []dom.NotToDo) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, listKey(userID, context), b, c.ttl).Err()
}

// GetEvents returns the cached calendar feed for the user, or nil on miss.
func (c *NotToDoCache) GetEvents(ctx context.Context, userID int64) ([]dom.CalendarEvent, error) {
	b, err := c.rdb.Get(ctx, eventsKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var events []dom.CalendarEvent
	if err := json.Unmarshal(b, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// SetEvents stores the calendar feed for the user.
func (c *NotToDoCache) SetEvents(ctx context.Context, userID int64, events []dom.CalendarEvent) error {
	b, err := json.Marshal(events)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, eventsKey(userID), b, c.ttl).Err()
}

// InvalidateUser removes the user's cached lists and feed (invalidation on write).
func (c *NotToDoCache) InvalidateUser(ctx context.Context, userID int64) error {
	if err := c.rdb.Del(ctx, eventsKey(userID)).Err(); err != nil {
		return err
	}
	pattern := keyListPrefix + strconv.FormatInt(userID, 10) + ":*"
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
