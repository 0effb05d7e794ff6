package nonce

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process implementation of Store backed by a mutex-protected
// map. Expired entries are swept lazily on Issue and Peek. Correct only for
// single-instance deployments; multi-instance deployments must use RedisStore.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Challenge
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates a new in-memory challenge store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		entries: make(map[string]Challenge),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Issue creates a fresh challenge for address, overwriting any existing entry.
func (s *MemoryStore) Issue(_ context.Context, address string) (Challenge, error) {
	n, err := NewNonce()
	if err != nil {
		return Challenge{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()

	ch := Challenge{
		Address:  address,
		Nonce:    n,
		IssuedAt: s.now(),
	}
	s.entries[address] = ch
	return ch, nil
}

// Peek returns the live challenge for address, sweeping expired entries first.
func (s *MemoryStore) Peek(_ context.Context, address string) (Challenge, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()

	ch, ok := s.entries[address]
	return ch, ok, nil
}

// Consume deletes the entry for address, reporting whether a live one existed.
func (s *MemoryStore) Consume(_ context.Context, address string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.entries[address]
	if !ok {
		return false, nil
	}
	delete(s.entries, address)

	if s.now().Sub(ch.IssuedAt) > s.ttl {
		return false, nil
	}
	return true, nil
}

// sweepLocked removes every expired entry. Callers must hold s.mu.
func (s *MemoryStore) sweepLocked() {
	cutoff := s.now().Add(-s.ttl)
	for addr, ch := range s.entries {
		if ch.IssuedAt.Before(cutoff) {
			delete(s.entries, addr)
		}
	}
}
