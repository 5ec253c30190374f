package sessionRepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hobbyist/models"
	"hobbyist/services/booking"
	"hobbyist/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// releaseLock deletes a lock key only while it still holds the caller's token.
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisSessionStore keeps booking session snapshots as JSON in Redis.
type RedisSessionStore struct {
	client  *redis.Client
	ttl     time.Duration
	lockTTL time.Duration
}

// NewRedisSessionStore stores sessions for ttl after their last write. Session locks
// expire after lockTTL so a crashed writer cannot wedge a session forever.
func NewRedisSessionStore(client *redis.Client, ttl, lockTTL time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl, lockTTL: lockTTL}
}

func sessionKey(id string) string {
	return utils.SessionKeyPrefix + id
}

func lockKey(id string) string {
	return utils.SessionLockPrefix + id
}

func (r *RedisSessionStore) Save(ctx context.Context, session *models.BookingSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal booking session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(session.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save booking session: %w", err)
	}
	return nil
}

// Get returns booking.ErrSessionNotFound when the session is unknown or expired.
func (r *RedisSessionStore) Get(ctx context.Context, sessionID string) (*models.BookingSession, error) {
	data, err := r.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, booking.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking session: %w", err)
	}
	var session models.BookingSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal booking session: %w", err)
	}
	return &session, nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, sessionKey(sessionID)).Err()
}

// AcquireSessionLock takes the session's write lock with a fresh owner token.
func (r *RedisSessionStore) AcquireSessionLock(ctx context.Context, sessionID string) (string, bool, error) {
	token := uuid.New().String()
	ok, err := r.client.SetNX(ctx, lockKey(sessionID), token, r.lockTTL).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire session lock: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// ReleaseSessionLock frees the lock if token still owns it. A lock that expired and was
// taken by another writer is left alone.
func (r *RedisSessionStore) ReleaseSessionLock(ctx context.Context, sessionID, token string) error {
	if err := releaseLock.Run(ctx, r.client, []string{lockKey(sessionID)}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to release session lock: %w", err)
	}
	return nil
}
