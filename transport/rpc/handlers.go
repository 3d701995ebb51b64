package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

type roomRequest struct {
	RoomID string `json:"roomId"`
}

type moveRequest struct {
	RoomID   string `json:"roomId"`
	Position *int   `json:"position"`
}

type leaderboardRequest struct {
	Limit int `json:"limit"`
}

type RoomResponse struct {
	RoomID string       `json:"roomId,omitempty"`
	Room   *entity.Room `json:"room"`
}

type MatchResponse struct {
	Status       string       `json:"status"`
	Room         *entity.Room `json:"room,omitempty"`
	WaitingSince *time.Time   `json:"waitingSince,omitempty"`
}

type RoomsResponse struct {
	Rooms []*entity.Room `json:"rooms"`
}

type LeaderboardResponse struct {
	Entries []*entity.LeaderboardEntry `json:"entries"`
}

func (that *Gateway) handleCreateGameRoom(ctx context.Context, caller *entity.Player, _ json.RawMessage) (any, error) {
	room, err := that.games.CreateRoom(ctx, caller)
	if err != nil {
		return nil, err
	}

	return &RoomResponse{RoomID: room.ID, Room: room}, nil
}

func (that *Gateway) handleJoinGameRoom(ctx context.Context, caller *entity.Player, payload json.RawMessage) (any, error) {
	var request roomRequest
	if err := decodeRoomRequest(payload, &request); err != nil {
		return nil, err
	}

	room, err := that.games.JoinRoom(ctx, caller, request.RoomID)
	if err != nil {
		return nil, err
	}

	return &RoomResponse{RoomID: room.ID, Room: room}, nil
}

func (that *Gateway) handleMakeMove(ctx context.Context, caller *entity.Player, payload json.RawMessage) (any, error) {
	var request moveRequest
	if err := decode(payload, &request); err != nil {
		return nil, err
	}

	if request.RoomID == "" {
		return nil, fmt.Errorf("%w: roomId is required", apperror.ErrInvalidPayload)
	}

	if request.Position == nil {
		return nil, fmt.Errorf("%w: position is required", apperror.ErrInvalidPayload)
	}

	room, err := that.games.MakeMove(ctx, caller, request.RoomID, *request.Position)
	if err != nil {
		return nil, err
	}

	return &RoomResponse{Room: room}, nil
}

func (that *Gateway) handleGetGameState(ctx context.Context, _ *entity.Player, payload json.RawMessage) (any, error) {
	var request roomRequest
	if err := decodeRoomRequest(payload, &request); err != nil {
		return nil, err
	}

	room, err := that.games.GetRoomState(ctx, request.RoomID)
	if err != nil {
		return nil, err
	}

	return &RoomResponse{Room: room}, nil
}

func (that *Gateway) handleJoinRandomGame(ctx context.Context, caller *entity.Player, _ json.RawMessage) (any, error) {
	result, err := that.matchmaker.JoinRandom(ctx, caller)
	if err != nil {
		return nil, err
	}

	response := &MatchResponse{
		Status: result.Status,
		Room:   result.Room,
	}

	if result.Marker != nil {
		response.WaitingSince = &result.Marker.CreatedAt
	}

	return response, nil
}

func (that *Gateway) handleGetAvailableGames(ctx context.Context, caller *entity.Player, _ json.RawMessage) (any, error) {
	rooms, err := that.matchmaker.ListJoinableRooms(ctx, caller)
	if err != nil {
		return nil, err
	}

	return &RoomsResponse{Rooms: rooms}, nil
}

func (that *Gateway) handleGetLeaderboard(ctx context.Context, _ *entity.Player, payload json.RawMessage) (any, error) {
	var request leaderboardRequest
	if err := decode(payload, &request); err != nil {
		return nil, err
	}

	entries, err := that.leaderboard.GetLeaderboard(ctx, request.Limit)
	if err != nil {
		return nil, err
	}

	return &LeaderboardResponse{Entries: entries}, nil
}

func decodeRoomRequest(payload json.RawMessage, request *roomRequest) error {
	if err := decode(payload, request); err != nil {
		return err
	}

	if request.RoomID == "" {
		return fmt.Errorf("%w: roomId is required", apperror.ErrInvalidPayload)
	}

	return nil
}
