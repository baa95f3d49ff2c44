package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "voxroute:session:"

// RedisStore keeps every session as a redis list of JSON records.
// Each append refreshes the key's TTL.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedisStoreWithClient(redis.NewClient(opts), ttl), nil
}

func NewRedisStoreWithClient(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: defaultRedisPrefix, ttl: ttl}
}

func (s *RedisStore) key(sessionID string) string {
	return s.prefix + sessionID
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) ([]Record, error) {
	vals, err := s.rdb.LRange(ctx, s.key(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", sessionID, err)
	}

	recs := make([]Record, 0, len(vals))
	for i, v := range vals {
		var rec Record
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			return nil, fmt.Errorf("decode record %d of %s: %w", i, sessionID, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (s *RedisStore) Append(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	key := s.key(rec.SessionID)
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, key, data)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rpush %s: %w", rec.SessionID, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
