package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/service"
)

type AuthHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
}

type loginService interface {
	Login(email string) (*service.Identity, error)
}

type authHandler struct {
	logger *slog.Logger
	auth   loginService
}

func NewAuthHandler(logger *slog.Logger, auth loginService) AuthHandler {
	return &authHandler{
		logger: logger,
		auth:   auth,
	}
}

type loginRequest struct {
	Email string `json:"email"`
}

// Login issues a development identity for an email address.
func (that *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "Login")

	var request loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&request); err != nil {
		writeError(w, log, fmt.Errorf("%w: %w", apperror.ErrInvalidPayload, err))
		return
	}

	identity, err := that.auth.Login(request.Email)
	if errors.Is(err, service.ErrInvalidEmail) {
		writeError(w, log, fmt.Errorf("%w: %w", apperror.ErrInvalidPayload, err))
		return
	}

	if err != nil {
		writeError(w, log, err)
		return
	}

	log.Info("player logged in", "player_id", identity.UserID)

	writeJSON(w, log, http.StatusOK, identity)
}
