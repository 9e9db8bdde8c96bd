package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const pendingMarker = "__pending__"

type redisStore struct {
	rdb    goredis.UniversalClient
	prefix string
}

func NewRedisStore(rdb goredis.UniversalClient, prefix string) Store {
	if prefix == "" {
		prefix = "coursehub:idem:"
	}
	return &redisStore{rdb: rdb, prefix: prefix}
}

func (s *redisStore) Begin(ctx context.Context, key string, lockTTL time.Duration) (*Record, error) {
	k := s.prefix + key
	ok, err := s.rdb.SetNX(ctx, k, pendingMarker, lockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("idempotency claim: %w", err)
	}
	if ok {
		return nil, nil
	}
	raw, err := s.rdb.Get(ctx, k).Result()
	if errors.Is(err, goredis.Nil) {
		// expired between SETNX and GET; try once more
		if ok, err = s.rdb.SetNX(ctx, k, pendingMarker, lockTTL).Result(); err == nil && ok {
			return nil, nil
		}
		return nil, ErrInProgress
	}
	if err != nil {
		return nil, fmt.Errorf("idempotency lookup: %w", err)
	}
	if raw == pendingMarker {
		return nil, ErrInProgress
	}
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("idempotency decode: %w", err)
	}
	return &rec, nil
}

func (s *redisStore) Complete(ctx context.Context, key string, rec Record, ttl time.Duration) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.prefix+key, raw, ttl).Err()
}

func (s *redisStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.prefix+key).Err()
}
