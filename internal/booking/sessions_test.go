package booking

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "cabs-workers/internal/common/errors"
	"cabs-workers/internal/common/logger"
)

func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewSessionStore(client, 30*time.Minute, "trip:search:", logger.NewTestLogger(t))
}

func sampleSession() *Session {
	return &Session{
		SearchID:        "srch-1",
		SourceAddress:   "MG Road, Bengaluru",
		DestinationAddr: "Kempegowda International Airport",
		PickupTimeMs:    1789000000000,
		Cabs: []Cab{
			{CabID: "cab-1", Category: "sedan", Model: "Dzire", Fare: 950, Currency: "INR"},
			{CabID: "cab-2", Category: "suv", Model: "Ertiga", Fare: 1350, Currency: "INR"},
		},
	}
}

func TestSessionRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleSession()))

	got, err := store.Get(ctx, "srch-1")
	require.NoError(t, err)
	assert.Equal(t, "MG Road, Bengaluru", got.SourceAddress)
	require.Len(t, got.Cabs, 2)
	assert.False(t, got.CreatedAt.IsZero())

	cab, ok := got.FindCab("cab-2", "suv")
	require.True(t, ok)
	assert.Equal(t, 1350.0, cab.Fare)

	_, ok = got.FindCab("cab-2", "sedan")
	assert.False(t, ok, "category must match along with the cab id")
}

func TestSessionNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "srch-unknown")
	require.Error(t, err)
	assert.Equal(t, cerrors.ErrCodeSessionNotFound, cerrors.CodeOf(err))
}

func TestSessionExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	store := NewSessionStore(client, time.Minute, "trip:search:", logger.NewTestLogger(t))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleSession()))
	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "srch-1")
	require.Error(t, err)
	assert.Equal(t, cerrors.ErrCodeSessionNotFound, cerrors.CodeOf(err))
}

func TestSessionDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleSession()))
	require.NoError(t, store.Delete(ctx, "srch-1"))

	_, err := store.Get(ctx, "srch-1")
	assert.Equal(t, cerrors.ErrCodeSessionNotFound, cerrors.CodeOf(err))
}

func TestSessionRedisFaultIsTransient(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewSessionStore(client, time.Minute, "trip:search:", logger.NewNoOpLogger())

	mock.ExpectGet("trip:search:srch-1").SetErr(assert.AnError)

	_, err := store.Get(context.Background(), "srch-1")
	require.Error(t, err)
	assert.Equal(t, cerrors.ErrCodeUpstreamTransient, cerrors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
