package usecase

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/config"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

type topStatsRepo interface {
	Top(ctx context.Context, limit int) ([]*entity.PlayerStats, error)
}

type Leaderboard struct {
	statsRepo topStatsRepo

	defaultLimit int
	maxLimit     int
	retry        retrier
}

func NewLeaderboard(conf config.Leaderboard, retryConf config.Retry, statsRepo topStatsRepo) *Leaderboard {
	return &Leaderboard{
		statsRepo:    statsRepo,
		defaultLimit: conf.DefaultLimit,
		maxLimit:     conf.MaxLimit,
		retry:        retrier{maxRetries: retryConf.MaxRetries, interval: retryConf.RetryInterval},
	}
}

// GetLeaderboard ranks players by wins. A non-positive limit means the default one.
func (that *Leaderboard) GetLeaderboard(ctx context.Context, limit int) ([]*entity.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = that.defaultLimit
	}

	if limit > that.maxLimit {
		limit = that.maxLimit
	}

	var top []*entity.PlayerStats

	err := that.retry.do(ctx, func() error {
		var err error
		top, err = that.statsRepo.Top(ctx, limit)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get top players: %w", err)
	}

	entries := make([]*entity.LeaderboardEntry, len(top))
	for i, stats := range top {
		entries[i] = &entity.LeaderboardEntry{
			Rank:     i + 1,
			Username: stats.Username,
			Wins:     stats.Wins,
			Losses:   stats.Losses,
			Draws:    stats.Draws,
			WinRate:  stats.WinRate(),
		}
	}

	return entries, nil
}
