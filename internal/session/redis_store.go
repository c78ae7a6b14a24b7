package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// storedSession is the Redis value: the codec-encoded record plus the
// transport metadata needed for idle expiry.
type storedSession struct {
	Record         string    `json:"record"`
	CreatedAt      time.Time `json:"createdAt"`
	LastAccessedAt time.Time `json:"lastAccessedAt"`
}

// RedisStore is the shared-backend Store, selected when REDIS_ADDR is
// configured. The key TTL mirrors the idle timeout, so Redis evicts
// idle sessions on its own; the lastAccessedAt check covers clock
// drift between writers.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "session:",
	}
}

func (r *RedisStore) key(cookieValue string) string {
	return r.prefix + cookieValue
}

func (r *RedisStore) Create(ctx context.Context, rec Record) (string, error) {
	encoded, err := EncodeRecord(rec)
	if err != nil {
		return "", err
	}

	cookieValue, err := GenerateID()
	if err != nil {
		return "", err
	}

	now := time.Now()
	if err := r.write(ctx, cookieValue, storedSession{
		Record:         encoded,
		CreatedAt:      now,
		LastAccessedAt: now,
	}); err != nil {
		return "", err
	}

	return cookieValue, nil
}

func (r *RedisStore) Get(ctx context.Context, cookieValue string) (*Record, error) {
	val, err := r.client.Get(ctx, r.key(cookieValue)).Result()
	if err == redis.Nil {
		return nil, nil // not found
	}
	if err != nil {
		return nil, fmt.Errorf("session: redis get: %w", err)
	}

	var s storedSession
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		_ = r.client.Del(ctx, r.key(cookieValue)).Err()
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	now := time.Now()
	if now.After(s.LastAccessedAt.Add(IdleTimeout)) {
		_ = r.client.Del(ctx, r.key(cookieValue)).Err()
		return nil, nil
	}

	rec, err := DecodeRecord(s.Record)
	if err != nil {
		_ = r.client.Del(ctx, r.key(cookieValue)).Err()
		return nil, err
	}

	s.LastAccessedAt = now
	if err := r.write(ctx, cookieValue, s); err != nil {
		return nil, err
	}

	return &rec, nil
}

func (r *RedisStore) Touch(ctx context.Context, cookieValue string) error {
	val, err := r.client.Get(ctx, r.key(cookieValue)).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("session: redis get: %w", err)
	}

	var s storedSession
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return r.client.Del(ctx, r.key(cookieValue)).Err()
	}

	now := time.Now()
	if now.After(s.LastAccessedAt.Add(IdleTimeout)) {
		return r.client.Del(ctx, r.key(cookieValue)).Err()
	}

	s.LastAccessedAt = now
	return r.write(ctx, cookieValue, s)
}

func (r *RedisStore) Delete(ctx context.Context, cookieValue string) error {
	return r.client.Del(ctx, r.key(cookieValue)).Err()
}

func (r *RedisStore) write(ctx context.Context, cookieValue string, s storedSession) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: failed to marshal: %w", err)
	}
	return r.client.Set(ctx, r.key(cookieValue), data, IdleTimeout).Err()
}
