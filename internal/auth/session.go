package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:"
	sessionTTL       = 24 * time.Hour
)

// Store manages sessions in Redis. The session value is the user ID.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore returns a new session store.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = sessionTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

// Create stores a new session for the user and returns its ID.
func (s *Store) Create(ctx context.Context, userID int64) (string, error) {
	id, err := newSessionID()
	if err != nil {
		return "", err
	}
	key := sessionKeyPrefix + id
	if err := s.rdb.Set(ctx, key, strconv.FormatInt(userID, 10), s.ttl).Err(); err != nil {
		return "", err
	}
	return id, nil
}

// Delete removes a session by ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, sessionKeyPrefix+id).Err()
}

// GetUserID returns the user bound to the session, or ok=false if the session
// does not exist or is malformed.
func (s *Store) GetUserID(ctx context.Context, id string) (int64, bool) {
	v, err := s.rdb.Get(ctx, sessionKeyPrefix+id).Result()
	if err != nil {
		return 0, false
	}
	userID, err := strconv.ParseInt(v, 10, 64)
	if err != nil || userID <= 0 {
		return 0, false
	}
	return userID, true
}

func newSessionID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand: %w", err)
	}
	return hex.EncodeToString(b), nil
}
