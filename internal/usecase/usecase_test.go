package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/config"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/repository"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/repository/memory"
)

var (
	alice = &entity.Player{ID: "alice-id", Username: "alice"}
	bob   = &entity.Player{ID: "bob-id", Username: "bob"}
	carol = &entity.Player{ID: "carol-id", Username: "carol"}
)

var testRetryConfig = config.Retry{MaxRetries: 5, RetryInterval: time.Millisecond}

type testEnv struct {
	rooms   repository.RoomRepository
	stats   repository.StatsRepository
	waiting repository.WaitingRepository

	manager     *GameManager
	matchmaker  *Matchmaker
	leaderboard *Leaderboard
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		rooms:   memory.NewRoomRepository(),
		stats:   memory.NewStatsRepository(),
		waiting: memory.NewWaitingRepository(time.Minute),
	}

	env.manager = NewGameManager(newLogger(), testRetryConfig, env.rooms, env.stats, env.waiting)
	env.matchmaker = NewMatchmaker(newLogger(), config.Matchmaking{ListLimit: 50}, testRetryConfig, env.rooms, env.waiting, env.manager)
	env.leaderboard = NewLeaderboard(config.Leaderboard{DefaultLimit: 10, MaxLimit: 100}, testRetryConfig, env.stats)

	return env
}

// startGame creates a room for alice and seats bob.
func (that *testEnv) startGame(t *testing.T) *entity.Room {
	t.Helper()

	ctx := context.Background()

	room, err := that.manager.CreateRoom(ctx, alice)
	if err != nil {
		t.Fatalf("could not create room: %v", err)
	}

	room, err = that.manager.JoinRoom(ctx, bob, room.ID)
	if err != nil {
		t.Fatalf("could not join room: %v", err)
	}

	return room
}

// play alternates alice and bob starting with alice.
func (that *testEnv) play(t *testing.T, roomID string, positions ...int) *entity.Room {
	t.Helper()

	var (
		room *entity.Room
		err  error
	)

	for i, position := range positions {
		player := alice
		if i%2 == 1 {
			player = bob
		}

		room, err = that.manager.MakeMove(context.Background(), player, roomID, position)
		if err != nil {
			t.Fatalf("move %d at %d failed: %v", i, position, err)
		}
	}

	return room
}

type mockRoomRepo struct {
	mock.Mock
}

func (that *mockRoomRepo) Create(ctx context.Context, room *entity.Room) error {
	return that.Called(ctx, room).Error(0)
}

func (that *mockRoomRepo) GetByID(ctx context.Context, id string) (*entity.Room, error) {
	args := that.Called(ctx, id)
	room, _ := args.Get(0).(*entity.Room)

	return room, args.Error(1)
}

func (that *mockRoomRepo) Update(ctx context.Context, room *entity.Room) error {
	return that.Called(ctx, room).Error(0)
}

// committedFailures wraps a room store. While failures is positive, Update commits the
// write and then reports the store as unavailable.
type committedFailures struct {
	repository.RoomRepository
	failures int
}

func (that *committedFailures) Update(ctx context.Context, room *entity.Room) error {
	if err := that.RoomRepository.Update(ctx, room); err != nil {
		return err
	}

	if that.failures > 0 {
		that.failures--
		return apperror.ErrStoreUnavailable
	}

	return nil
}

type mockStatsRepo struct {
	mock.Mock
}

func (that *mockStatsRepo) ApplyResult(ctx context.Context, result *entity.GameResult) (bool, error) {
	args := that.Called(ctx, result)
	return args.Bool(0), args.Error(1)
}

func (that *mockStatsRepo) Top(ctx context.Context, limit int) ([]*entity.PlayerStats, error) {
	args := that.Called(ctx, limit)
	top, _ := args.Get(0).([]*entity.PlayerStats)

	return top, args.Error(1)
}
