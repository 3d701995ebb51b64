package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/config"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/repository"
)

// staleRooms returns a fixed candidate list that may no longer match the store.
// The first failures calls report the store as unavailable.
type staleRooms struct {
	rooms    []*entity.Room
	failures int
	calls    int
}

func (that *staleRooms) ListJoinable(context.Context, int) ([]*entity.Room, error) {
	that.calls++

	if that.failures > 0 {
		that.failures--
		return nil, apperror.ErrStoreUnavailable
	}

	return that.rooms, nil
}

func TestMatchmaker_ListJoinableRooms(t *testing.T) {
	ctx := context.Background()

	t.Run("Only rooms waiting for a player", func(t *testing.T) {
		env := newTestEnv(t)

		waiting, err := env.manager.CreateRoom(ctx, carol)
		require.NoError(t, err)
		env.startGame(t)

		rooms, err := env.matchmaker.ListJoinableRooms(ctx, bob)

		require.NoError(t, err)
		require.Len(t, rooms, 1)
		assert.Equal(t, waiting.ID, rooms[0].ID)
	})

	t.Run("Anonymous caller", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.matchmaker.ListJoinableRooms(ctx, &entity.Player{})
		require.ErrorIs(t, err, apperror.ErrUnauthenticated)
	})
}

func TestMatchmaker_JoinRandom(t *testing.T) {
	ctx := context.Background()

	t.Run("Waits when nobody hosts", func(t *testing.T) {
		env := newTestEnv(t)

		// When: bob looks for a game in an empty lobby
		result, err := env.matchmaker.JoinRandom(ctx, bob)

		// Then: he is marked as waiting
		require.NoError(t, err)
		assert.Equal(t, MatchStatusWaiting, result.Status)
		assert.Nil(t, result.Room)
		require.NotNil(t, result.Marker)

		marker, err := env.matchmaker.GetWaitingMarker(ctx, bob)
		require.NoError(t, err)
		assert.Equal(t, "bob", marker.Username)
	})

	t.Run("Waiting again keeps the first timestamp", func(t *testing.T) {
		env := newTestEnv(t)

		first := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		env.matchmaker.now = func() time.Time { return first }

		_, err := env.matchmaker.JoinRandom(ctx, bob)
		require.NoError(t, err)

		env.matchmaker.now = func() time.Time { return first.Add(30 * time.Second) }

		result, err := env.matchmaker.JoinRandom(ctx, bob)
		require.NoError(t, err)
		assert.True(t, first.Equal(result.Marker.CreatedAt))
	})

	t.Run("Joins the oldest room", func(t *testing.T) {
		env := newTestEnv(t)

		// Given: bob was waiting and two rooms are open
		_, err := env.matchmaker.JoinRandom(ctx, bob)
		require.NoError(t, err)

		base := time.Now()
		env.manager.now = func() time.Time { return base }
		oldest, err := env.manager.CreateRoom(ctx, alice)
		require.NoError(t, err)

		env.manager.now = func() time.Time { return base.Add(time.Second) }
		_, err = env.manager.CreateRoom(ctx, carol)
		require.NoError(t, err)

		// When: bob asks again
		result, err := env.matchmaker.JoinRandom(ctx, bob)

		// Then: he is seated in the oldest room and no longer waiting
		require.NoError(t, err)
		assert.Equal(t, MatchStatusMatched, result.Status)
		assert.Equal(t, oldest.ID, result.Room.ID)
		assert.Equal(t, entity.PlayerO, result.Room.Players[bob.ID].Symbol)

		_, err = env.matchmaker.GetWaitingMarker(ctx, bob)
		require.ErrorIs(t, err, repository.ErrWaitingMarkerNotFound)
	})

	t.Run("Never matches the caller with itself", func(t *testing.T) {
		env := newTestEnv(t)

		own, err := env.manager.CreateRoom(ctx, alice)
		require.NoError(t, err)

		result, err := env.matchmaker.JoinRandom(ctx, alice)

		require.NoError(t, err)
		assert.Equal(t, MatchStatusWaiting, result.Status)

		stored, err := env.rooms.GetByID(ctx, own.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Players, 1)
	})

	t.Run("Skips rooms taken in the meantime", func(t *testing.T) {
		env := newTestEnv(t)

		full := env.startGame(t)
		open, err := env.manager.CreateRoom(ctx, carol)
		require.NoError(t, err)

		// Given: a candidate list that still shows a missing and a full room
		gone := &entity.Room{ID: "gone", Players: map[string]*entity.Player{}}
		matchmaker := NewMatchmaker(newLogger(), config.Matchmaking{ListLimit: 50}, testRetryConfig,
			&staleRooms{rooms: []*entity.Room{gone, full, open}}, env.waiting, env.manager)

		dave := &entity.Player{ID: "dave-id", Username: "dave"}

		// When: dave joins at random
		result, err := matchmaker.JoinRandom(ctx, dave)

		// Then: dave lands in the open room
		require.NoError(t, err)
		assert.Equal(t, MatchStatusMatched, result.Status)
		assert.Equal(t, open.ID, result.Room.ID)
	})

	t.Run("Anonymous caller", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.matchmaker.JoinRandom(ctx, nil)
		require.ErrorIs(t, err, apperror.ErrUnauthenticated)
	})
}

func TestMatchmaker_StoreRetries(t *testing.T) {
	ctx := context.Background()

	t.Run("Listing survives a short outage", func(t *testing.T) {
		env := newTestEnv(t)

		open, err := env.manager.CreateRoom(ctx, carol)
		require.NoError(t, err)

		// Given: a store that fails twice before answering
		rooms := &staleRooms{rooms: []*entity.Room{open}, failures: 2}
		matchmaker := NewMatchmaker(newLogger(), config.Matchmaking{ListLimit: 50}, testRetryConfig,
			rooms, env.waiting, env.manager)

		// When: alice lists the rooms
		listed, err := matchmaker.ListJoinableRooms(ctx, alice)

		// Then: the third read answers
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, open.ID, listed[0].ID)
		assert.Equal(t, 3, rooms.calls)
	})

	t.Run("Outage surfaces after the last retry", func(t *testing.T) {
		env := newTestEnv(t)

		rooms := &staleRooms{failures: 100}
		matchmaker := NewMatchmaker(newLogger(), config.Matchmaking{ListLimit: 50}, testRetryConfig,
			rooms, env.waiting, env.manager)

		_, err := matchmaker.JoinRandom(ctx, alice)

		require.ErrorIs(t, err, apperror.ErrStoreUnavailable)
		assert.Equal(t, int(testRetryConfig.MaxRetries)+1, rooms.calls)
	})
}
