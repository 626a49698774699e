package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"veridoc/internal/resolution/ports"
)

const (
	// Redis key prefix for terminal resolution records
	recordKeyPrefix = "resolution:session:"

	defaultRecordTTL = 24 * time.Hour
)

// RedisStore is a Redis-backed session record store. This is the
// production-recommended implementation for distributed deployments where
// status queries may land on a different instance than the one that ran the
// resolution.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisStoreOption configures a RedisStore instance.
type RedisStoreOption func(*RedisStore)

// WithRecordTTL overrides how long terminal records remain queryable.
func WithRecordTTL(ttl time.Duration) RedisStoreOption {
	return func(s *RedisStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// NewRedisStore constructs a Redis-backed session record store.
func NewRedisStore(client *redis.Client, opts ...RedisStoreOption) *RedisStore {
	store := &RedisStore{
		client: client,
		ttl:    defaultRecordTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store
}

// Save stores a terminal record with TTL.
func (s *RedisStore) Save(ctx context.Context, record ports.SessionRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal session record: %w", err)
	}
	return s.client.Set(ctx, recordKeyPrefix+record.ID, payload, s.ttl).Err()
}

// Get retrieves a record by session ID. Returns (nil, nil) when the key does
// not exist (unknown or expired).
func (s *RedisStore) Get(ctx context.Context, id string) (*ports.SessionRecord, error) {
	payload, err := s.client.Get(ctx, recordKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var record ports.SessionRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("unmarshal session record: %w", err)
	}
	return &record, nil
}
