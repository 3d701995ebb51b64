package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

type Server struct {
	logger *slog.Logger
	server *http.Server
}

func NewServer(logger *slog.Logger, port string, handler http.Handler) *Server {
	return &Server{
		logger: logger,
		server: &http.Server{
			Addr:         ":" + port,
			Handler:      handler,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  30 * time.Second,
		},
	}
}

// Start blocks until the server stops. A graceful shutdown is not an error.
func (that *Server) Start() error {
	that.logger.Info("http server started", "addr", that.server.Addr)

	if err := that.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) Shutdown(ctx context.Context) error {
	if err := that.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}

// NewRouter wires every HTTP route. Requests are logged and carry the caller resolved from
// the bearer token, if any.
func NewRouter(logger *slog.Logger, auth authService, ping PingHandler, login AuthHandler, rpc RPCHandler) *mux.Router {
	router := mux.NewRouter()

	router.Use(requestLogger(logger))
	router.Use(identity(auth))

	router.HandleFunc("/ping", ping.PingHandler).Methods(http.MethodGet)
	router.HandleFunc("/auth/login", login.Login).Methods(http.MethodPost)
	router.HandleFunc("/v2/rpc/{operation}", rpc.Call).Methods(http.MethodPost)

	return router
}
