package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

var statuses = map[string]int{
	apperror.CodeUnauthenticated:   http.StatusUnauthorized,
	apperror.CodeRoomNotFound:      http.StatusNotFound,
	apperror.CodeUnknownOperation:  http.StatusNotFound,
	apperror.CodeRoomFull:          http.StatusConflict,
	apperror.CodeGameFinished:      http.StatusConflict,
	apperror.CodeNotYourTurn:       http.StatusConflict,
	apperror.CodeGameNotStarted:    http.StatusConflict,
	apperror.CodeCellOccupied:      http.StatusConflict,
	apperror.CodeTransientConflict: http.StatusConflict,
	apperror.CodeInvalidPosition:   http.StatusBadRequest,
	apperror.CodeInvalidPayload:    http.StatusBadRequest,
	apperror.CodePlayerNotInRoom:   http.StatusForbidden,
	apperror.CodeStoreUnavailable:  http.StatusServiceUnavailable,
}

func statusFor(code string) int {
	if status, ok := statuses[code]; ok {
		return status
	}

	return http.StatusInternalServerError
}

// writeError answers with the error envelope. Internal and storage details stay in the log.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	code := apperror.Code(err)
	status := statusFor(code)

	message := err.Error()
	if code == apperror.CodeInternal {
		log.Error("internal error", "error", err)
		message = http.StatusText(status)
	}

	if code == apperror.CodeStoreUnavailable {
		log.Error("storage failure", "error", err)
		message = apperror.ErrStoreUnavailable.Error()
	}

	writeJSON(w, log, status, &errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("failed to write response", "error", err)
	}
}
