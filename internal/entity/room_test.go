package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoom(t *testing.T) {
	// Given: a creator
	createdAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	creator := &Player{ID: "alice", Username: "Alice"}

	// When: a room is created
	room := NewRoom("room-1", creator, createdAt)

	// Then: the creator holds X and moves first on an empty board
	expected := &Room{
		ID:              "room-1",
		Board:           Board{"", "", "", "", "", "", "", "", ""},
		Players:         map[string]*Player{"alice": {ID: "alice", Username: "Alice", Symbol: PlayerX}},
		CurrentPlayerID: "alice",
		CreatedAt:       createdAt,
	}

	require.Equal(t, expected, room)
	assert.True(t, room.IsWaiting())
	assert.True(t, room.IsJoinable())
}

func TestRoomStatusMethods(t *testing.T) {
	t.Run("Room with one player is waiting", func(t *testing.T) {
		room := NewRoom("r", &Player{ID: "a"}, time.Now())

		assert.Equal(t, StatusWaiting, room.Status())
		assert.False(t, room.IsFull())
	})

	t.Run("Room with two players is ongoing", func(t *testing.T) {
		room := NewRoom("r", &Player{ID: "a"}, time.Now())
		room.Players["b"] = &Player{ID: "b", Symbol: PlayerO}

		assert.True(t, room.IsOngoing())
		assert.True(t, room.IsFull())
		assert.False(t, room.IsJoinable())
	})

	t.Run("Finished room is never joinable", func(t *testing.T) {
		room := NewRoom("r", &Player{ID: "a"}, time.Now())
		room.GameOver = true

		assert.True(t, room.IsFinished())
		assert.False(t, room.IsJoinable())
	})
}

func TestRoom_Opponent(t *testing.T) {
	room := NewRoom("r", &Player{ID: "a"}, time.Now())

	// alone in the room
	assert.Nil(t, room.Opponent("a"))

	room.Players["b"] = &Player{ID: "b", Symbol: PlayerO}

	assert.Equal(t, "b", room.Opponent("a").ID)
	assert.Equal(t, "a", room.Opponent("b").ID)
}

func TestRoom_Participants(t *testing.T) {
	room := NewRoom("r", &Player{ID: "a"}, time.Now())
	room.Players["b"] = &Player{ID: "b", Symbol: PlayerO}

	players := room.Participants()

	require.Len(t, players, 2)
	assert.Equal(t, PlayerX, players[0].Symbol)
	assert.Equal(t, PlayerO, players[1].Symbol)
}

func TestRoom_Clone(t *testing.T) {
	// Given: a room
	room := NewRoom("r", &Player{ID: "a", Username: "A"}, time.Now())

	// When: the clone is mutated
	clone := room.Clone()
	clone.Board[0] = PlayerX
	clone.Players["a"].Username = "changed"
	clone.Players["b"] = &Player{ID: "b"}

	// Then: the original is untouched
	assert.Equal(t, EmptyCell, room.Board[0])
	assert.Equal(t, "A", room.Players["a"].Username)
	assert.Len(t, room.Players, 1)
}

func TestRoom_JSON(t *testing.T) {
	// Given: an ongoing room without a winner
	room := NewRoom("r", &Player{ID: "a", Username: "A"}, time.Now())

	// When: encoding it
	data, err := json.Marshal(room)
	require.NoError(t, err)

	// Then: the wire names are used and the empty winner is omitted
	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))

	assert.Contains(t, fields, "roomId")
	assert.Contains(t, fields, "currentPlayerId")
	assert.Contains(t, fields, "gameOver")
	assert.NotContains(t, fields, "winnerId")
	assert.Len(t, fields["board"], BoardSize)
}

func TestPlayerStats_WinRate(t *testing.T) {
	t.Run("No games played", func(t *testing.T) {
		stats := &PlayerStats{}

		assert.InDelta(t, 0.0, stats.WinRate(), 0.0001)
	})

	t.Run("Rounded to two decimals", func(t *testing.T) {
		stats := &PlayerStats{Wins: 2, Losses: 0, Draws: 1}

		assert.InDelta(t, 0.67, stats.WinRate(), 0.0001)
		assert.Equal(t, int64(3), stats.Games())
	})
}
