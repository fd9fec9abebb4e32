package store

import (
	"context"
	"sync"
	"time"

	"github.com/feral-file/ff-crowdfund/internal/adapter"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

type memoryStore struct {
	mu      sync.RWMutex
	clock   adapter.Clock
	entries map[string]memoryEntry
}

// NewMemoryStore creates an in-process store for tests and local runs
func NewMemoryStore(clock adapter.Clock) Store {
	return &memoryStore{
		clock:   clock,
		entries: make(map[string]memoryEntry),
	}
}

func (s *memoryStore) live(key string, now time.Time) (memoryEntry, bool) {
	entry, ok := s.entries[key]
	if !ok || !entry.expiresAt.After(now) {
		return memoryEntry{}, false
	}
	return entry, true
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.live(key, s.clock.Now())
	if !ok {
		return nil, false, nil
	}
	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, true, nil
}

func (s *memoryStore) Has(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.live(key, s.clock.Now())
	return ok, nil
}

func (s *memoryStore) Set(ctx context.Context, key string, value []byte, extendTo time.Duration) error {
	return s.Apply(ctx, []Write{{Key: key, Value: value, Threshold: extendTo, ExtendTo: extendTo}})
}

func (s *memoryStore) Extend(ctx context.Context, key string, threshold, extendTo time.Duration) error {
	return s.Apply(ctx, []Write{{Key: key, Threshold: threshold, ExtendTo: extendTo}})
}

func (s *memoryStore) Apply(ctx context.Context, writes []Write) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	for _, w := range writes {
		current, exists := s.live(w.Key, now)
		if w.Value == nil && !exists {
			continue
		}
		entry := memoryEntry{
			value:     current.value,
			expiresAt: nextExpiry(now, current.expiresAt, exists, w.Threshold, w.ExtendTo),
		}
		if w.Value != nil {
			entry.value = make([]byte, len(w.Value))
			copy(entry.value, w.Value)
		}
		s.entries[w.Key] = entry
	}
	return nil
}

func (s *memoryStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if _, ok := s.live(key, now); ok {
		return false, nil
	}
	s.entries[key] = memoryEntry{value: claimValue, expiresAt: now.Add(ttl)}
	return true, nil
}

func (s *memoryStore) PurgeExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	var removed int64
	for key, entry := range s.entries {
		if !entry.expiresAt.After(now) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}
