package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-crowdfund/internal/adapter"
)

const (
	testBump      = 30 * 24 * time.Hour
	testThreshold = 29 * 24 * time.Hour
)

var testStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestNextExpiry(t *testing.T) {
	now := testStart
	tests := []struct {
		name     string
		current  time.Time
		exists   bool
		expected time.Time
	}{
		{
			name:     "new entry lives for the full bump",
			exists:   false,
			expected: now.Add(testBump),
		},
		{
			name:     "entry above threshold is untouched",
			current:  now.Add(testThreshold + time.Hour),
			exists:   true,
			expected: now.Add(testThreshold + time.Hour),
		},
		{
			name:     "entry below threshold is bumped",
			current:  now.Add(time.Hour),
			exists:   true,
			expected: now.Add(testBump),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, nextExpiry(now, tt.current, tt.exists, testThreshold, testBump))
		})
	}
}

// runStoreSuite exercises the behaviour every Store backend must share
func runStoreSuite(t *testing.T, newStore func(clock adapter.Clock) Store) {
	ctx := context.Background()

	t.Run("get missing key", func(t *testing.T) {
		st := newStore(adapter.NewManualClock(testStart))
		value, ok, err := st.Get(ctx, "Missing")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, value)

		has, err := st.Has(ctx, "Missing")
		require.NoError(t, err)
		assert.False(t, has)
	})

	t.Run("set then get", func(t *testing.T) {
		st := newStore(adapter.NewManualClock(testStart))
		require.NoError(t, st.Set(ctx, "Admin", []byte(`"0xabc"`), testBump))

		value, ok, err := st.Get(ctx, "Admin")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.JSONEq(t, `"0xabc"`, string(value))

		has, err := st.Has(ctx, "Admin")
		require.NoError(t, err)
		assert.True(t, has)
	})

	t.Run("entries expire", func(t *testing.T) {
		clock := adapter.NewManualClock(testStart)
		st := newStore(clock)
		require.NoError(t, st.Set(ctx, "Project/p1", []byte(`{"id":"p1"}`), time.Hour))

		clock.Advance(2 * time.Hour)
		_, ok, err := st.Get(ctx, "Project/p1")
		require.NoError(t, err)
		assert.False(t, ok)

		removed, err := st.PurgeExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), removed)
	})

	t.Run("extend keeps entry alive", func(t *testing.T) {
		clock := adapter.NewManualClock(testStart)
		st := newStore(clock)
		require.NoError(t, st.Set(ctx, "Votes/p1", []byte(`[]`), 2*time.Hour))

		clock.Advance(90 * time.Minute)
		require.NoError(t, st.Extend(ctx, "Votes/p1", time.Hour, 10*time.Hour))

		clock.Advance(5 * time.Hour)
		_, ok, err := st.Get(ctx, "Votes/p1")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("extend skips absent key", func(t *testing.T) {
		st := newStore(adapter.NewManualClock(testStart))
		require.NoError(t, st.Extend(ctx, "Ghost", time.Hour, testBump))

		has, err := st.Has(ctx, "Ghost")
		require.NoError(t, err)
		assert.False(t, has)
	})

	t.Run("apply batch", func(t *testing.T) {
		st := newStore(adapter.NewManualClock(testStart))
		err := st.Apply(ctx, []Write{
			{Key: "Version", Value: []byte(`1`), Threshold: testThreshold, ExtendTo: testBump},
			{Key: "Initialized", Value: []byte(`true`), Threshold: testThreshold, ExtendTo: testBump},
			{Key: "Version", Value: []byte(`2`), Threshold: testThreshold, ExtendTo: testBump},
		})
		require.NoError(t, err)

		value, ok, err := st.Get(ctx, "Version")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.JSONEq(t, `2`, string(value))

		value, ok, err = st.Get(ctx, "Initialized")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.JSONEq(t, `true`, string(value))
	})

	t.Run("claim once until expiry", func(t *testing.T) {
		clock := adapter.NewManualClock(testStart)
		st := newStore(clock)

		claimed, err := st.Claim(ctx, "Nonce/abc", time.Hour)
		require.NoError(t, err)
		assert.True(t, claimed)

		claimed, err = st.Claim(ctx, "Nonce/abc", time.Hour)
		require.NoError(t, err)
		assert.False(t, claimed, "a live claim cannot be taken twice")

		claimed, err = st.Claim(ctx, "Nonce/other", time.Hour)
		require.NoError(t, err)
		assert.True(t, claimed)

		clock.Advance(2 * time.Hour)
		claimed, err = st.Claim(ctx, "Nonce/abc", time.Hour)
		require.NoError(t, err)
		assert.True(t, claimed, "an expired claim is free again")
	})

	t.Run("overwrite keeps value isolated from caller buffer", func(t *testing.T) {
		st := newStore(adapter.NewManualClock(testStart))
		buf := []byte(`{"n":1}`)
		require.NoError(t, st.Set(ctx, "Buffer", buf, testBump))
		buf[5] = '9'

		value, _, err := st.Get(ctx, "Buffer")
		require.NoError(t, err)
		assert.JSONEq(t, `{"n":1}`, string(value))
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, NewMemoryStore)
}

func TestMemoryStore_ApplyCanceledContext(t *testing.T) {
	st := NewMemoryStore(adapter.NewManualClock(testStart))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := st.Apply(ctx, []Write{{Key: "Admin", Value: []byte(`"x"`), ExtendTo: testBump}})
	assert.ErrorIs(t, err, context.Canceled)

	has, err := st.Has(context.Background(), "Admin")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestLocalLocker(t *testing.T) {
	locker := NewLocalLocker()

	unlock, err := locker.Lock(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock, err = locker.Lock(context.Background())
	require.NoError(t, err)
	unlock()
}
