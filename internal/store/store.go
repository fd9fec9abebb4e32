package store

import (
	"context"
	"time"
)

// Write is one entry of an atomic batch.
// A nil Value only extends the lifetime of an existing entry.
type Write struct {
	Key       string
	Value     []byte
	Threshold time.Duration
	ExtendTo  time.Duration
}

// Store is the key-addressed persistent storage the ledger runs on.
// Entries carry an expiry; expired entries read as absent.
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// Get returns the value of key, or false when the key is absent or expired
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Has reports whether key holds a live entry
	Has(ctx context.Context, key string) (bool, error)

	// Set writes a single entry whose lifetime is extendTo from now
	Set(ctx context.Context, key string, value []byte, extendTo time.Duration) error

	// Extend pushes the expiry of key to now+extendTo when less than threshold remains
	Extend(ctx context.Context, key string, threshold, extendTo time.Duration) error

	// Apply commits all writes or none of them
	Apply(ctx context.Context, writes []Write) error

	// PurgeExpired deletes expired entries and returns how many were removed
	PurgeExpired(ctx context.Context) (int64, error)

	// Claim atomically creates key for ttl unless a live entry holds it.
	// It reports whether this call made the claim.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// claimValue marks a claimed key; only its presence matters
var claimValue = []byte(`true`)

// nextExpiry computes the expiry of an entry after a write.
// New entries live for extendTo; live entries are bumped only below threshold.
func nextExpiry(now time.Time, current time.Time, exists bool, threshold, extendTo time.Duration) time.Time {
	if !exists {
		return now.Add(extendTo)
	}
	if current.Sub(now) < threshold {
		bumped := now.Add(extendTo)
		if bumped.After(current) {
			return bumped
		}
	}
	return current
}
