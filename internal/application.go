package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/config"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/repository"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/repository/memory"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/service"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-rooms/transport/rest"
	"github.com/rocketscienceinc/tictactoe-rooms/transport/rpc"
)

const shutdownTimeout = 10 * time.Second

var (
	ErrAddrNotFound   = errors.New("redis address string is empty")
	ErrUnknownStorage = errors.New("unknown storage")
	ErrNoJWTSecret    = errors.New("jwt secret key is empty")
)

type repositories struct {
	rooms   repository.RoomRepository
	stats   repository.StatsRepository
	waiting repository.WaitingRepository

	close func() error
}

// RunApp - runs the application until SIGINT or SIGTERM.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	if conf.JWTSecretKey == "" {
		return ErrNoJWTSecret
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := initRepositories(ctx, log, conf)
	if err != nil {
		return err
	}

	defer func() {
		if err = repos.close(); err != nil {
			log.Error("could not close storage", "error", err)
		}
	}()

	games := usecase.NewGameManager(logger, conf.Retry, repos.rooms, repos.stats, repos.waiting)
	matchmaker := usecase.NewMatchmaker(logger, conf.Matchmaking, conf.Retry, repos.rooms, repos.waiting, games)
	leaderboard := usecase.NewLeaderboard(conf.Leaderboard, conf.Retry, repos.stats)

	authService := service.NewAuthService(conf.JWTSecretKey, conf.JWTTTL)
	gateway := rpc.NewGateway(logger, games, matchmaker, leaderboard)

	router := rest.NewRouter(logger, authService,
		rest.NewPingHandler(),
		rest.NewAuthHandler(logger, authService),
		rest.NewRPCHandler(logger, gateway, conf.RPCTimeout),
	)

	server := rest.NewServer(logger, conf.HTTPPort, router)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(server.Start)

	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err = group.Wait(); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	return nil
}

func initRepositories(ctx context.Context, log *slog.Logger, conf *config.Config) (*repositories, error) {
	switch conf.Storage {
	case config.StorageMemory:
		log.Warn("using in-memory storage, state is lost on restart")

		return &repositories{
			rooms:   memory.NewRoomRepository(),
			stats:   memory.NewStatsRepository(),
			waiting: memory.NewWaitingRepository(conf.Matchmaking.WaitingTTL),
			close:   func() error { return nil },
		}, nil

	case config.StorageRedis:
		if conf.Redis.Host == "" || conf.Redis.Port == "" {
			return nil, ErrAddrNotFound
		}

		redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis)
		if err != nil {
			return nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		log.Info("connected to redis", "addr", conf.Redis.GetRedisAddr())

		return &repositories{
			rooms:   repository.NewRoomRepository(redisStorage.Connection),
			stats:   repository.NewStatsRepository(redisStorage.Connection),
			waiting: repository.NewWaitingRepository(redisStorage.Connection, conf.Matchmaking.WaitingTTL),
			close:   redisStorage.Close,
		}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStorage, conf.Storage)
	}
}
