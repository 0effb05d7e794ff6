package nonce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis implementation of Store for multi-instance deployments.
// Expiry is delegated to Redis key TTLs and Consume uses GETDEL so the
// check-and-delete is atomic across instances.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed challenge store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		client: client,
		prefix: "walletsso:nonce:",
		ttl:    ttl,
	}
}

func (s *RedisStore) key(address string) string {
	return s.prefix + address
}

// Issue creates a fresh challenge for address, overwriting any existing key.
func (s *RedisStore) Issue(ctx context.Context, address string) (Challenge, error) {
	n, err := NewNonce()
	if err != nil {
		return Challenge{}, err
	}

	ch := Challenge{
		Address:  address,
		Nonce:    n,
		IssuedAt: time.Now(),
	}

	payload, err := json.Marshal(ch)
	if err != nil {
		return Challenge{}, fmt.Errorf("failed to encode challenge: %w", err)
	}

	if err := s.client.Set(ctx, s.key(address), payload, s.ttl).Err(); err != nil {
		return Challenge{}, fmt.Errorf("failed to store challenge: %w", err)
	}
	return ch, nil
}

// Peek returns the live challenge for address, if the key has not expired.
func (s *RedisStore) Peek(ctx context.Context, address string) (Challenge, bool, error) {
	payload, err := s.client.Get(ctx, s.key(address)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Challenge{}, false, nil
	}
	if err != nil {
		return Challenge{}, false, fmt.Errorf("failed to read challenge: %w", err)
	}

	var ch Challenge
	if err := json.Unmarshal(payload, &ch); err != nil {
		return Challenge{}, false, fmt.Errorf("failed to decode challenge: %w", err)
	}
	return ch, true, nil
}

// Consume atomically fetches and deletes the challenge for address.
func (s *RedisStore) Consume(ctx context.Context, address string) (bool, error) {
	err := s.client.GetDel(ctx, s.key(address)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to consume challenge: %w", err)
	}
	return true, nil
}
