package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/config"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/tictactoe"
)

type roomRepo interface {
	Create(ctx context.Context, room *entity.Room) error
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	Update(ctx context.Context, room *entity.Room) error
}

type statsRepo interface {
	ApplyResult(ctx context.Context, result *entity.GameResult) (bool, error)
}

type waitingCleaner interface {
	DeleteByPlayerID(ctx context.Context, id string) error
}

type GameManager struct {
	logger *slog.Logger

	roomRepo    roomRepo
	statsRepo   statsRepo
	waitingRepo waitingCleaner

	retry retrier
	newID func() string
	now   func() time.Time
}

func NewGameManager(
	logger *slog.Logger,
	conf config.Retry,
	roomRepo roomRepo,
	statsRepo statsRepo,
	waitingRepo waitingCleaner,
) *GameManager {
	return &GameManager{
		logger: logger,

		roomRepo:    roomRepo,
		statsRepo:   statsRepo,
		waitingRepo: waitingRepo,

		retry: retrier{maxRetries: conf.MaxRetries, interval: conf.RetryInterval},
		newID: uuid.NewString,
		now:   time.Now,
	}
}

// CreateRoom opens a room with the caller seated as X.
func (that *GameManager) CreateRoom(ctx context.Context, caller *entity.Player) (*entity.Room, error) {
	log := that.logger.With("method", "CreateRoom")

	if !isAuthenticated(caller) {
		return nil, apperror.ErrUnauthenticated
	}

	var room *entity.Room
	err := that.retry.do(ctx, func() error {
		room = entity.NewRoom(that.newID(), newPlayer(caller), that.now().UTC())

		return that.roomRepo.Create(ctx, room)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	that.clearWaiting(ctx, log, caller.ID)

	log.Info("room created", "room_id", room.ID, "player_id", caller.ID)

	return room, nil
}

// JoinRoom seats the caller as O. Joining a room the caller already sits in returns it unchanged.
func (that *GameManager) JoinRoom(ctx context.Context, caller *entity.Player, roomID string) (*entity.Room, error) {
	log := that.logger.With("method", "JoinRoom")

	if !isAuthenticated(caller) {
		return nil, apperror.ErrUnauthenticated
	}

	var room *entity.Room
	err := that.retry.do(ctx, func() error {
		current, err := that.roomRepo.GetByID(ctx, roomID)
		if err != nil {
			return err
		}

		joined, err := tictactoe.Join(current, newPlayer(caller))
		if err != nil {
			return err
		}

		if joined {
			if err = that.roomRepo.Update(ctx, current); err != nil {
				return err
			}
		}

		room = current

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to join room: %w", err)
	}

	log.Info("player joined room", "room_id", room.ID, "player_id", caller.ID)

	return room, nil
}

// MakeMove places the caller's symbol on position. The stats are recorded by the call
// whose write finished the game.
//
// A write that failed with ErrStoreUnavailable may still have been committed. The next attempt
// then finds the caller's symbol on position and takes the stored room as its own result.
// A move against a finished room re-applies that room's result, which is a no-op once recorded.
func (that *GameManager) MakeMove(ctx context.Context, caller *entity.Player, roomID string, position int) (*entity.Room, error) {
	log := that.logger.With("method", "MakeMove")

	if !isAuthenticated(caller) {
		return nil, apperror.ErrUnauthenticated
	}

	var (
		room      *entity.Room
		result    *entity.GameResult
		finished  *entity.Room
		uncertain bool
	)

	err := that.retry.do(ctx, func() error {
		current, err := that.roomRepo.GetByID(ctx, roomID)
		if err != nil {
			return err
		}

		if uncertain && isCommitted(current, caller.ID, position) {
			room, result = current, tictactoe.Result(current)
			return nil
		}

		turnResult, err := tictactoe.MakeTurn(current, caller.ID, position)
		if errors.Is(err, apperror.ErrGameFinished) {
			finished = current
		}

		if err != nil {
			return err
		}

		if err = that.roomRepo.Update(ctx, current); err != nil {
			uncertain = errors.Is(err, apperror.ErrStoreUnavailable)
			return err
		}

		room, result = current, turnResult

		return nil
	})
	if err != nil {
		if finished != nil {
			that.applyResult(ctx, log, tictactoe.Result(finished))
		}

		return nil, fmt.Errorf("failed to make move: %w", err)
	}

	if result != nil {
		log.Info("game finished", "room_id", room.ID, "winner_id", result.WinnerID)

		that.applyResult(ctx, log, result)
	}

	return room, nil
}

func (that *GameManager) GetRoomState(ctx context.Context, roomID string) (*entity.Room, error) {
	var room *entity.Room

	err := that.retry.do(ctx, func() error {
		var err error
		room, err = that.roomRepo.GetByID(ctx, roomID)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	return room, nil
}

// applyResult records a finished game. The move is already committed, so a failure here
// is logged and not returned to the player.
func (that *GameManager) applyResult(ctx context.Context, log *slog.Logger, result *entity.GameResult) {
	var applied bool

	err := that.retry.do(ctx, func() error {
		var err error
		applied, err = that.statsRepo.ApplyResult(ctx, result)

		return err
	})
	if err != nil {
		log.Error("failed to apply game result", "room_id", result.RoomID, "error", err)
		return
	}

	if !applied {
		log.Debug("game result already applied", "room_id", result.RoomID)
	}
}

func (that *GameManager) clearWaiting(ctx context.Context, log *slog.Logger, playerID string) {
	if err := that.waitingRepo.DeleteByPlayerID(ctx, playerID); err != nil {
		log.Warn("failed to clear waiting marker", "player_id", playerID, "error", err)
	}
}

// isCommitted reports whether room already holds the caller's symbol on position.
func isCommitted(room *entity.Room, playerID string, position int) bool {
	player, ok := room.Players[playerID]

	return ok && room.Board[position] == player.Symbol
}

func isAuthenticated(caller *entity.Player) bool {
	return caller != nil && caller.ID != ""
}

func newPlayer(caller *entity.Player) *entity.Player {
	return &entity.Player{
		ID:       caller.ID,
		Username: caller.Username,
	}
}
