package rest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

const maxBodySize = 64 << 10

type RPCHandler interface {
	Call(w http.ResponseWriter, r *http.Request)
}

type dispatcher interface {
	Dispatch(ctx context.Context, operation string, caller *entity.Player, payload []byte) (any, error)
}

type rpcHandler struct {
	logger  *slog.Logger
	gateway dispatcher
	timeout time.Duration
}

// NewRPCHandler binds the gateway to POST /v2/rpc/{operation}. Every call gets its own deadline.
func NewRPCHandler(logger *slog.Logger, gateway dispatcher, timeout time.Duration) RPCHandler {
	return &rpcHandler{
		logger:  logger,
		gateway: gateway,
		timeout: timeout,
	}
}

func (that *rpcHandler) Call(w http.ResponseWriter, r *http.Request) {
	operation := mux.Vars(r)["operation"]
	log := that.logger.With("method", "Call", "operation", operation)

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeError(w, log, fmt.Errorf("%w: %w", apperror.ErrInvalidPayload, err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), that.timeout)
	defer cancel()

	response, err := that.gateway.Dispatch(ctx, operation, callerFrom(r.Context()), payload)
	if err != nil {
		writeError(w, log, err)
		return
	}

	writeJSON(w, log, http.StatusOK, response)
}
