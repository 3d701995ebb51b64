// Package rpc maps named operations with JSON payloads onto the game use cases.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/usecase"
)

const (
	OpCreateGameRoom    = "createGameRoom"
	OpJoinGameRoom      = "joinGameRoom"
	OpMakeMove          = "makeMove"
	OpGetGameState      = "getGameState"
	OpJoinRandomGame    = "joinRandomGame"
	OpGetAvailableGames = "getAvailableGames"
	OpGetLeaderboard    = "getLeaderboard"
)

type gameManager interface {
	CreateRoom(ctx context.Context, caller *entity.Player) (*entity.Room, error)
	JoinRoom(ctx context.Context, caller *entity.Player, roomID string) (*entity.Room, error)
	MakeMove(ctx context.Context, caller *entity.Player, roomID string, position int) (*entity.Room, error)
	GetRoomState(ctx context.Context, roomID string) (*entity.Room, error)
}

type matchmaker interface {
	ListJoinableRooms(ctx context.Context, caller *entity.Player) ([]*entity.Room, error)
	JoinRandom(ctx context.Context, caller *entity.Player) (*usecase.MatchResult, error)
}

type leaderboard interface {
	GetLeaderboard(ctx context.Context, limit int) ([]*entity.LeaderboardEntry, error)
}

type handlerFunc func(ctx context.Context, caller *entity.Player, payload json.RawMessage) (any, error)

// Gateway keeps no state between calls. The caller is nil for anonymous requests.
type Gateway struct {
	logger   *slog.Logger
	handlers map[string]handlerFunc

	games       gameManager
	matchmaker  matchmaker
	leaderboard leaderboard
}

func NewGateway(logger *slog.Logger, games gameManager, matchmaker matchmaker, leaderboard leaderboard) *Gateway {
	gateway := &Gateway{
		logger:   logger,
		handlers: make(map[string]handlerFunc),

		games:       games,
		matchmaker:  matchmaker,
		leaderboard: leaderboard,
	}

	gateway.handlers[OpCreateGameRoom] = gateway.handleCreateGameRoom
	gateway.handlers[OpJoinGameRoom] = gateway.handleJoinGameRoom
	gateway.handlers[OpMakeMove] = gateway.handleMakeMove
	gateway.handlers[OpGetGameState] = gateway.handleGetGameState
	gateway.handlers[OpJoinRandomGame] = gateway.handleJoinRandomGame
	gateway.handlers[OpGetAvailableGames] = gateway.handleGetAvailableGames
	gateway.handlers[OpGetLeaderboard] = gateway.handleGetLeaderboard

	return gateway
}

// Dispatch runs one operation and returns its response body.
func (that *Gateway) Dispatch(ctx context.Context, operation string, caller *entity.Player, payload []byte) (any, error) {
	log := that.logger.With("method", "Dispatch", "operation", operation)

	handler, ok := that.handlers[operation]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrUnknownOperation, operation)
	}

	if trimmed := bytes.TrimSpace(payload); len(trimmed) > 0 && !json.Valid(trimmed) {
		return nil, fmt.Errorf("%w: payload is not valid JSON", apperror.ErrInvalidPayload)
	}

	start := time.Now()

	response, err := handler(ctx, caller, payload)
	if err != nil {
		log.Debug("operation failed", "code", apperror.Code(err), "error", err)
		return nil, err
	}

	log.Debug("operation done", "duration", time.Since(start))

	return response, nil
}

// decode fills target from payload. An empty payload leaves target untouched.
func decode(payload []byte, target any) error {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return nil
	}

	if err := json.Unmarshal(payload, target); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrInvalidPayload, err)
	}

	return nil
}
