package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

const headerRequestID = "X-Request-ID"

type authService interface {
	ParseToken(token string) (*entity.Player, error)
}

type callerKey struct{}

// callerFrom returns the authenticated player of the request, or nil.
func callerFrom(ctx context.Context) *entity.Player {
	caller, _ := ctx.Value(callerKey{}).(*entity.Player)
	return caller
}

// identity resolves the bearer token. Missing or invalid tokens leave the request anonymous.
func identity(auth authService) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !found || token == "" {
				next.ServeHTTP(w, r)
				return
			}

			caller, err := auth.ParseToken(strings.TrimSpace(token))
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey{}, caller)))
		})
	}
}

func requestLogger(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(headerRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}

			w.Header().Set(headerRequestID, requestID)

			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)

			logger.Info("request completed",
				"request_id", requestID,
				"http_method", r.Method,
				"path", r.URL.Path,
				"status", recorder.status,
				"duration", time.Since(start),
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (that *statusRecorder) WriteHeader(code int) {
	that.status = code
	that.ResponseWriter.WriteHeader(code)
}
