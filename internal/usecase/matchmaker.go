package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/config"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/repository"
)

const (
	MatchStatusMatched = "matched"
	MatchStatusWaiting = "waiting"
)

type joinableRoomRepo interface {
	ListJoinable(ctx context.Context, limit int) ([]*entity.Room, error)
}

type waitingRepo interface {
	Save(ctx context.Context, marker *entity.WaitingMarker) error
	GetByPlayerID(ctx context.Context, id string) (*entity.WaitingMarker, error)
	DeleteByPlayerID(ctx context.Context, id string) error
}

type roomJoiner interface {
	JoinRoom(ctx context.Context, caller *entity.Player, roomID string) (*entity.Room, error)
}

// MatchResult is either a joined room or the caller's waiting marker.
type MatchResult struct {
	Status string
	Room   *entity.Room
	Marker *entity.WaitingMarker
}

type Matchmaker struct {
	logger *slog.Logger

	roomRepo    joinableRoomRepo
	waitingRepo waitingRepo
	joiner      roomJoiner

	listLimit int
	retry     retrier
	now       func() time.Time
}

func NewMatchmaker(
	logger *slog.Logger,
	conf config.Matchmaking,
	retryConf config.Retry,
	roomRepo joinableRoomRepo,
	waitingRepo waitingRepo,
	joiner roomJoiner,
) *Matchmaker {
	return &Matchmaker{
		logger: logger,

		roomRepo:    roomRepo,
		waitingRepo: waitingRepo,
		joiner:      joiner,

		listLimit: conf.ListLimit,
		retry:     retrier{maxRetries: retryConf.MaxRetries, interval: retryConf.RetryInterval},
		now:       time.Now,
	}
}

// ListJoinableRooms returns rooms that wait for a second player, oldest first.
func (that *Matchmaker) ListJoinableRooms(ctx context.Context, caller *entity.Player) ([]*entity.Room, error) {
	if !isAuthenticated(caller) {
		return nil, apperror.ErrUnauthenticated
	}

	rooms, err := that.listJoinable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list joinable rooms: %w", err)
	}

	return rooms, nil
}

// JoinRandom seats the caller in the oldest joinable room it does not already occupy.
// Without a candidate the caller is marked as waiting.
func (that *Matchmaker) JoinRandom(ctx context.Context, caller *entity.Player) (*MatchResult, error) {
	log := that.logger.With("method", "JoinRandom")

	if !isAuthenticated(caller) {
		return nil, apperror.ErrUnauthenticated
	}

	candidates, err := that.listJoinable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list joinable rooms: %w", err)
	}

	for _, candidate := range candidates {
		if candidate.HasPlayer(caller.ID) {
			continue
		}

		room, err := that.joiner.JoinRoom(ctx, caller, candidate.ID)
		if isGone(err) {
			log.Debug("candidate room taken", "room_id", candidate.ID, "error", err)
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("failed to join random room: %w", err)
		}

		if err = that.waitingRepo.DeleteByPlayerID(ctx, caller.ID); err != nil {
			log.Warn("failed to clear waiting marker", "player_id", caller.ID, "error", err)
		}

		log.Info("player matched", "room_id", room.ID, "player_id", caller.ID)

		return &MatchResult{Status: MatchStatusMatched, Room: room}, nil
	}

	marker, err := that.markWaiting(ctx, caller)
	if err != nil {
		return nil, err
	}

	log.Info("player is waiting for a match", "player_id", caller.ID)

	return &MatchResult{Status: MatchStatusWaiting, Marker: marker}, nil
}

func (that *Matchmaker) GetWaitingMarker(ctx context.Context, caller *entity.Player) (*entity.WaitingMarker, error) {
	if !isAuthenticated(caller) {
		return nil, apperror.ErrUnauthenticated
	}

	marker, err := that.waitingRepo.GetByPlayerID(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get waiting marker: %w", err)
	}

	return marker, nil
}

// markWaiting refreshes the caller's marker and keeps the time it first started waiting.
func (that *Matchmaker) markWaiting(ctx context.Context, caller *entity.Player) (*entity.WaitingMarker, error) {
	marker := &entity.WaitingMarker{
		PlayerID:  caller.ID,
		Username:  caller.Username,
		CreatedAt: that.now().UTC(),
	}

	existing, err := that.waitingRepo.GetByPlayerID(ctx, caller.ID)
	switch {
	case err == nil:
		marker.CreatedAt = existing.CreatedAt
	case !errors.Is(err, repository.ErrWaitingMarkerNotFound):
		return nil, fmt.Errorf("failed to get waiting marker: %w", err)
	}

	if err = that.waitingRepo.Save(ctx, marker); err != nil {
		return nil, fmt.Errorf("failed to save waiting marker: %w", err)
	}

	return marker, nil
}

func (that *Matchmaker) listJoinable(ctx context.Context) ([]*entity.Room, error) {
	var rooms []*entity.Room

	err := that.retry.do(ctx, func() error {
		var err error
		rooms, err = that.roomRepo.ListJoinable(ctx, that.listLimit)

		return err
	})

	return rooms, err
}

func isGone(err error) bool {
	return errors.Is(err, apperror.ErrRoomFull) ||
		errors.Is(err, apperror.ErrGameFinished) ||
		errors.Is(err, apperror.ErrRoomNotFound)
}
