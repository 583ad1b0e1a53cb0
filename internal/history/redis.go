package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// RedisConfig connection parameters for the redis backed store.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// RedisStore keeps record payloads as strings at "{prefix}record:{id}" and
// orders them with a sorted set at "{prefix}records" scored by creation time.
type RedisStore struct {
	rdb        *redis.Client
	prefix     string
	maxRecords int
	now        func() time.Time
}

// NewRedisStore connects and pings, the client is closed again on failure.
func NewRedisStore(ctx context.Context, cfg RedisConfig, maxRecords int) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return NewRedisStoreWithClient(rdb, cfg.KeyPrefix, maxRecords), nil
}

func NewRedisStoreWithClient(rdb *redis.Client, prefix string, maxRecords int) *RedisStore {
	return &RedisStore{
		rdb:        rdb,
		prefix:     prefix,
		maxRecords: maxRecords,
		now:        time.Now,
	}
}

func (s *RedisStore) indexKey() string {
	return s.prefix + "records"
}

func (s *RedisStore) recordKey(id string) string {
	return s.prefix + "record:" + id
}

func (s *RedisStore) Save(ctx context.Context, r Record) (string, error) {
	r = stamp(r, s.now)
	payload, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("redis: encode record %s: %w", r.ID, err)
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.recordKey(r.ID), payload, 0)
		pipe.ZAdd(ctx, s.indexKey(), redis.Z{
			Score:  float64(r.CreatedAt.UnixNano()),
			Member: r.ID,
		})
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("redis: save record %s: %w", r.ID, err)
	}

	if err := s.trim(ctx); err != nil {
		return r.ID, err
	}
	return r.ID, nil
}

// trim removes the oldest records over capacity
func (s *RedisStore) trim(ctx context.Context) error {
	if s.maxRecords <= 0 {
		return nil
	}
	stale, err := s.rdb.ZRange(ctx, s.indexKey(), 0, int64(-s.maxRecords-1)).Result()
	if err != nil {
		return fmt.Errorf("redis: trim history: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}
	return s.remove(ctx, stale)
}

func (s *RedisStore) remove(ctx context.Context, ids []string) error {
	keys := make([]string, 0, len(ids))
	members := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, s.recordKey(id))
		members = append(members, id)
	}
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		pipe.ZRem(ctx, s.indexKey(), members...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: remove records: %w", err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context, limit int) ([]Record, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	ids, err := s.rdb.ZRevRange(ctx, s.indexKey(), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: list history: %w", err)
	}
	if len(ids) == 0 {
		return []Record{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.recordKey(id)
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: load history: %w", err)
	}

	out := make([]Record, 0, len(vals))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			// payload expired or deleted between the two calls
			continue
		}
		var r Record
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("redis: decode record %s: %w", ids[i], err)
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	err := s.rdb.ZScore(ctx, s.indexKey(), id).Err()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("redis: delete record %s: %w", id, err)
	}
	return s.remove(ctx, []string{id})
}

func (s *RedisStore) Clear(ctx context.Context) error {
	ids, err := s.rdb.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("redis: clear history: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	if err := s.remove(ctx, ids); err != nil {
		return err
	}
	return s.rdb.Del(ctx, s.indexKey()).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
