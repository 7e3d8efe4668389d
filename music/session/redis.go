package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/soundfetch/tunebot/core/logger"
)

const redisKeyPrefix = "tunebot:session:"

// RedisStore keeps sessions in Redis so state survives restarts and can be
// shared between instances. Expiry is delegated to Redis key TTLs.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps an existing client with the given inactivity TTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Get(ctx context.Context, userID string) (*Session, bool) {
	raw, err := r.client.Get(ctx, redisKeyPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		logger.Warn(ctx, "session", "session.get.failed",
			slog.String("status", "fail"),
			slog.String("user_id", userID),
			slog.String("err", err.Error()),
		)
		return nil, false
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		// A corrupt record is unrecoverable; drop it.
		_ = r.client.Del(ctx, redisKeyPrefix+userID).Err()
		return nil, false
	}
	return &s, true
}

func (r *RedisStore) Put(ctx context.Context, userID string, s *Session) error {
	s.LastActiveAt = time.Now()
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, redisKeyPrefix+userID, raw, r.ttl).Err()
}

func (r *RedisStore) Remove(ctx context.Context, userID string) error {
	return r.client.Del(ctx, redisKeyPrefix+userID).Err()
}

func (r *RedisStore) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}
