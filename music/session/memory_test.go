package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundfetch/tunebot/music/catalog"
)

// fakeClock lets tests advance time without sleeping.
type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newClockedStore(ttl time.Duration) (*MemoryStore, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(ttl)
	store.now = clock.Now
	return store, clock
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newClockedStore(5 * time.Minute)

	_, ok := store.Get(ctx, "42")
	assert.False(t, ok)

	sess := &Session{
		State:   StateAwaitingTrackChoice,
		Keyword: "hello",
		Tracks:  []catalog.Track{{ID: "1", Title: "Hello", Artist: "Adele"}},
	}
	require.NoError(t, store.Put(ctx, "42", sess))

	got, ok := store.Get(ctx, "42")
	require.True(t, ok)
	assert.Equal(t, StateAwaitingTrackChoice, got.State)
	assert.Equal(t, "hello", got.Keyword)
	assert.False(t, got.LastActiveAt.IsZero())

	// Sessions are per user.
	_, ok = store.Get(ctx, "43")
	assert.False(t, ok)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store, clock := newClockedStore(5 * time.Minute)

	require.NoError(t, store.Put(ctx, "42", &Session{State: StateAwaitingKeyword}))

	clock.Advance(5 * time.Minute)
	_, ok := store.Get(ctx, "42")
	assert.True(t, ok, "exactly at the deadline the session is still live")

	clock.Advance(time.Second)
	_, ok = store.Get(ctx, "42")
	assert.False(t, ok, "past the deadline the session is gone")
	assert.Zero(t, store.Len(), "expired record is removed, not just hidden")
}

func TestMemoryStoreGetDoesNotRefreshTTL(t *testing.T) {
	ctx := context.Background()
	store, clock := newClockedStore(5 * time.Minute)

	require.NoError(t, store.Put(ctx, "42", &Session{State: StateAwaitingKeyword}))

	clock.Advance(4 * time.Minute)
	_, ok := store.Get(ctx, "42")
	require.True(t, ok)

	// The read above must not have extended the deadline.
	clock.Advance(90 * time.Second)
	_, ok = store.Get(ctx, "42")
	assert.False(t, ok)
}

func TestMemoryStorePutRefreshesTTL(t *testing.T) {
	ctx := context.Background()
	store, clock := newClockedStore(5 * time.Minute)

	require.NoError(t, store.Put(ctx, "42", &Session{State: StateAwaitingKeyword}))

	clock.Advance(4 * time.Minute)
	s, ok := store.Get(ctx, "42")
	require.True(t, ok)
	require.NoError(t, store.Put(ctx, "42", s))

	clock.Advance(4 * time.Minute)
	_, ok = store.Get(ctx, "42")
	assert.True(t, ok)
}

func TestMemoryStoreRemoveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, _ := newClockedStore(5 * time.Minute)

	assert.NoError(t, store.Remove(ctx, "42"))

	require.NoError(t, store.Put(ctx, "42", &Session{State: StateAwaitingKeyword}))
	assert.NoError(t, store.Remove(ctx, "42"))
	assert.NoError(t, store.Remove(ctx, "42"))

	_, ok := store.Get(ctx, "42")
	assert.False(t, ok)
}

func TestMemoryStoreClear(t *testing.T) {
	ctx := context.Background()
	store, _ := newClockedStore(5 * time.Minute)

	require.NoError(t, store.Put(ctx, "1", &Session{State: StateAwaitingKeyword}))
	require.NoError(t, store.Put(ctx, "2", &Session{State: StateAwaitingQualityChoice}))
	require.NoError(t, store.Clear(ctx))
	assert.Zero(t, store.Len())
}

func TestZeroTTLDisablesExpiry(t *testing.T) {
	ctx := context.Background()
	store, clock := newClockedStore(0)

	require.NoError(t, store.Put(ctx, "42", &Session{State: StateAwaitingKeyword}))
	clock.Advance(24 * time.Hour)
	_, ok := store.Get(ctx, "42")
	assert.True(t, ok)
}

func TestInProgress(t *testing.T) {
	assert.False(t, (*Session)(nil).InProgress())
	assert.False(t, (&Session{State: StateIdle}).InProgress())
	assert.True(t, (&Session{State: StateAwaitingKeyword}).InProgress())
	assert.True(t, (&Session{State: StateAwaitingTrackChoice}).InProgress())
	assert.True(t, (&Session{State: StateAwaitingQualityChoice}).InProgress())
}
