package entity

import (
	"math"
	"time"
)

type Player struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Symbol   string `json:"symbol,omitempty"`
}

// PlayerStats is the aggregate record of finished games for one player.
type PlayerStats struct {
	PlayerID string `json:"userId"`
	Username string `json:"username"`
	Wins     int64  `json:"wins"`
	Losses   int64  `json:"losses"`
	Draws    int64  `json:"draws"`
}

func (that *PlayerStats) Games() int64 {
	return that.Wins + that.Losses + that.Draws
}

// WinRate is wins over all finished games, rounded to two decimals.
func (that *PlayerStats) WinRate() float64 {
	games := that.Games()
	if games == 0 {
		return 0
	}

	return math.Round(float64(that.Wins)/float64(games)*100) / 100
}

// GameResult is what a finished room contributes to the stats.
// WinnerID is empty for a draw.
type GameResult struct {
	RoomID   string    `json:"roomId"`
	WinnerID string    `json:"winnerId,omitempty"`
	Players  []*Player `json:"players"`
}

func (that *GameResult) IsDraw() bool {
	return that.WinnerID == ""
}

type WaitingMarker struct {
	PlayerID  string    `json:"userId"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

type LeaderboardEntry struct {
	Rank     int     `json:"rank"`
	Username string  `json:"username"`
	Wins     int64   `json:"wins"`
	Losses   int64   `json:"losses"`
	Draws    int64   `json:"draws"`
	WinRate  float64 `json:"winRate"`
}
