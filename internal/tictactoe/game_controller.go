package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

// Join seats player as the second entrant. It reports false without touching the room
// when the player is already seated.
func Join(room *entity.Room, player *entity.Player) (bool, error) {
	if room.IsFull() {
		return false, apperror.ErrRoomFull
	}

	if room.IsFinished() {
		return false, apperror.ErrGameFinished
	}

	if room.HasPlayer(player.ID) {
		return false, nil
	}

	player.Symbol = freeSymbol(room)
	room.Players[player.ID] = player

	return true, nil
}

// MakeTurn applies playerID's move to the room. The returned result is non-nil only
// when this move finished the game.
func MakeTurn(room *entity.Room, playerID string, cell int) (*entity.GameResult, error) {
	if room.IsFinished() {
		return nil, apperror.ErrGameFinished
	}

	if err := validateMove(room, playerID, cell); err != nil {
		return nil, fmt.Errorf("invalid turn: %w", err)
	}

	room.Board[cell] = room.Players[playerID].Symbol

	return updateGameStatus(room, playerID), nil
}

// validateMove - checks if the move is valid. The turn check comes first so an
// out-of-turn caller always gets the same error whatever position it sent.
func validateMove(room *entity.Room, playerID string, cell int) error {
	if room.CurrentPlayerID != playerID {
		return apperror.ErrNotYourTurn
	}

	if room.IsWaiting() {
		return apperror.ErrGameIsNotStarted
	}

	if cell < 0 || cell >= len(room.Board) {
		return fmt.Errorf("%w: %d", apperror.ErrInvalidPosition, cell)
	}

	if room.Board[cell] != entity.EmptyCell {
		return fmt.Errorf("%w: %d", apperror.ErrCellOccupied, cell)
	}

	if !room.HasPlayer(playerID) {
		return apperror.ErrPlayerNotInRoom
	}

	return nil
}

// updateGameStatus - checks the game status after a move.
func updateGameStatus(room *entity.Room, playerID string) *entity.GameResult {
	if Winner(room.Board) != entity.EmptyCell {
		room.WinnerID = playerID
		room.GameOver = true

		return newResult(room, playerID)
	}

	if IsFull(room.Board) {
		room.GameOver = true

		return newResult(room, "")
	}

	if opponent := room.Opponent(playerID); opponent != nil {
		room.CurrentPlayerID = opponent.ID
	}

	return nil
}

// Result rebuilds what a finished room contributes to the stats. It is nil while the game runs.
func Result(room *entity.Room) *entity.GameResult {
	if !room.GameOver {
		return nil
	}

	return newResult(room, room.WinnerID)
}

func newResult(room *entity.Room, winnerID string) *entity.GameResult {
	return &entity.GameResult{
		RoomID:   room.ID,
		WinnerID: winnerID,
		Players:  room.Participants(),
	}
}

func freeSymbol(room *entity.Room) string {
	for _, player := range room.Players {
		if player.Symbol == entity.PlayerO {
			return entity.PlayerX
		}
	}

	return entity.PlayerO
}
