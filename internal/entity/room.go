package entity

import (
	"sort"
	"time"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
	StatusWaiting  = "waiting"

	PlayerX = "X"
	PlayerO = "O"

	EmptyCell = ""

	BoardSize  = 9
	MaxPlayers = 2
)

type Board [BoardSize]string

// Room is one two-player match. Version is bumped by the store on every successful write.
type Room struct {
	ID              string             `json:"roomId"`
	Board           Board              `json:"board"`
	Players         map[string]*Player `json:"players"`
	CurrentPlayerID string             `json:"currentPlayerId"`
	WinnerID        string             `json:"winnerId,omitempty"`
	GameOver        bool               `json:"gameOver"`
	CreatedAt       time.Time          `json:"createdAt"`
	Version         int64              `json:"version"`
}

func NewRoom(id string, creator *Player, createdAt time.Time) *Room {
	creator.Symbol = PlayerX

	return &Room{
		ID:              id,
		Board:           Board{EmptyCell, EmptyCell, EmptyCell, EmptyCell, EmptyCell, EmptyCell, EmptyCell, EmptyCell, EmptyCell},
		Players:         map[string]*Player{creator.ID: creator},
		CurrentPlayerID: creator.ID,
		CreatedAt:       createdAt,
	}
}

func (that *Room) Status() string {
	switch {
	case that.GameOver:
		return StatusFinished
	case len(that.Players) < MaxPlayers:
		return StatusWaiting
	default:
		return StatusOngoing
	}
}

func (that *Room) IsFinished() bool {
	return that.Status() == StatusFinished
}

func (that *Room) IsOngoing() bool {
	return that.Status() == StatusOngoing
}

func (that *Room) IsWaiting() bool {
	return that.Status() == StatusWaiting
}

func (that *Room) IsFull() bool {
	return len(that.Players) >= MaxPlayers
}

// IsJoinable reports whether the room is waiting for its second player.
func (that *Room) IsJoinable() bool {
	return len(that.Players) == 1 && !that.GameOver
}

func (that *Room) HasPlayer(playerID string) bool {
	_, ok := that.Players[playerID]
	return ok
}

// Opponent returns the other seated player, or nil when playerID is alone in the room.
func (that *Room) Opponent(playerID string) *Player {
	for id, player := range that.Players {
		if id != playerID {
			return player
		}
	}

	return nil
}

// Participants returns the seated players ordered by symbol, X first.
func (that *Room) Participants() []*Player {
	players := make([]*Player, 0, len(that.Players))
	for _, player := range that.Players {
		players = append(players, player)
	}

	sort.Slice(players, func(i, j int) bool {
		return players[i].Symbol > players[j].Symbol
	})

	return players
}

// Clone returns a deep copy that shares no maps or players with the receiver.
func (that *Room) Clone() *Room {
	clone := *that
	clone.Players = make(map[string]*Player, len(that.Players))
	for id, player := range that.Players {
		p := *player
		clone.Players[id] = &p
	}

	return &clone
}
