package apperror

import "errors"

var (
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrRoomNotFound      = errors.New("game room not found")
	ErrRoomFull          = errors.New("game room is full")
	ErrGameFinished      = errors.New("game is already finished")
	ErrGameIsNotStarted  = errors.New("game is not started")
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrInvalidPosition   = errors.New("invalid position")
	ErrCellOccupied      = errors.New("cell is already occupied")
	ErrPlayerNotInRoom   = errors.New("you are not part of this game")
	ErrTransientConflict = errors.New("room was modified concurrently, retry")
	ErrStoreUnavailable  = errors.New("storage is unavailable")
	ErrInvalidPayload    = errors.New("invalid payload")
	ErrUnknownOperation  = errors.New("unknown operation")
)

const (
	CodeUnauthenticated   = "UNAUTHENTICATED"
	CodeRoomNotFound      = "ROOM_NOT_FOUND"
	CodeRoomFull          = "ROOM_FULL"
	CodeGameFinished      = "GAME_ALREADY_FINISHED"
	CodeGameNotStarted    = "GAME_NOT_STARTED"
	CodeNotYourTurn       = "NOT_YOUR_TURN"
	CodeInvalidPosition   = "INVALID_POSITION"
	CodeCellOccupied      = "CELL_OCCUPIED"
	CodePlayerNotInRoom   = "PLAYER_NOT_IN_ROOM"
	CodeTransientConflict = "TRANSIENT_CONFLICT"
	CodeStoreUnavailable  = "STORE_UNAVAILABLE"
	CodeInvalidPayload    = "INVALID_PAYLOAD"
	CodeUnknownOperation  = "UNKNOWN_OPERATION"
	CodeInternal          = "INTERNAL"
)

var codes = []struct {
	err  error
	code string
}{
	{ErrUnauthenticated, CodeUnauthenticated},
	{ErrRoomNotFound, CodeRoomNotFound},
	{ErrRoomFull, CodeRoomFull},
	{ErrGameFinished, CodeGameFinished},
	{ErrGameIsNotStarted, CodeGameNotStarted},
	{ErrNotYourTurn, CodeNotYourTurn},
	{ErrInvalidPosition, CodeInvalidPosition},
	{ErrCellOccupied, CodeCellOccupied},
	{ErrPlayerNotInRoom, CodePlayerNotInRoom},
	{ErrTransientConflict, CodeTransientConflict},
	{ErrStoreUnavailable, CodeStoreUnavailable},
	{ErrInvalidPayload, CodeInvalidPayload},
	{ErrUnknownOperation, CodeUnknownOperation},
}

// Code returns the stable wire code for the first known error in err's chain.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}

	return CodeInternal
}

// IsRetryable reports whether repeating the same request may succeed without new input.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransientConflict) || errors.Is(err, ErrStoreUnavailable)
}
