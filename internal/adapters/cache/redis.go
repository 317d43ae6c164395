package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/proxiserve/auth-service/internal/ports"
	"github.com/redis/go-redis/v9"
)

// Connect builds a Redis client from either a redis:// URL or a bare address.
func Connect(_ context.Context, redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") {
		opt, parseErr := redis.ParseURL(redisURL)
		if parseErr != nil {
			return nil, fmt.Errorf("parse redis url: %w", parseErr)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

// RedisThrottleStore keeps windowed hit counters for abuse-prone public
// endpoints in Redis hashes. State here is advisory request throttling; the
// account lockout machine lives on the credential record, not in this store.
type RedisThrottleStore struct {
	client *redis.Client
}

// NewRedisThrottleStore creates a throttle store backed by Redis hashes.
func NewRedisThrottleStore(client *redis.Client) *RedisThrottleStore {
	return &RedisThrottleStore{client: client}
}

func (s *RedisThrottleStore) Get(ctx context.Context, key string) (ports.ThrottleState, error) {
	data, err := s.client.HGetAll(ctx, "auth:throttle:"+key).Result()
	if err != nil {
		return ports.ThrottleState{}, err
	}
	if len(data) == 0 {
		return ports.ThrottleState{}, nil
	}

	state := ports.ThrottleState{}
	if raw, ok := data["hit_count"]; ok {
		if n, convErr := strconv.Atoi(raw); convErr == nil {
			state.Count = n
		}
	}
	if raw, ok := data["blocked_until"]; ok && raw != "" {
		if unix, convErr := strconv.ParseInt(raw, 10, 64); convErr == nil && unix > 0 {
			t := time.Unix(unix, 0).UTC()
			state.BlockedUntil = &t
		}
	}
	return state, nil
}

func (s *RedisThrottleStore) RecordHit(ctx context.Context, key string, now time.Time, threshold int, window time.Duration) (ports.ThrottleState, error) {
	redisKey := "auth:throttle:" + key

	count, err := s.client.HIncrBy(ctx, redisKey, "hit_count", 1).Result()
	if err != nil {
		return ports.ThrottleState{}, err
	}

	state := ports.ThrottleState{Count: int(count)}
	if int(count) >= threshold {
		blockedUntil := now.Add(window).UTC()
		_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, redisKey, "blocked_until", blockedUntil.Unix())
			p.Expire(ctx, redisKey, window+30*time.Minute)
			return nil
		})
		if err != nil {
			return ports.ThrottleState{}, err
		}
		state.BlockedUntil = &blockedUntil
		return state, nil
	}

	_ = s.client.Expire(ctx, redisKey, window).Err()
	return state, nil
}

func (s *RedisThrottleStore) Clear(ctx context.Context, key string) error {
	return s.client.Del(ctx, "auth:throttle:"+key).Err()
}
