package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/repository"
)

type statsStore struct {
	mu      sync.Mutex
	stats   map[string]*entity.PlayerStats
	applied map[string]struct{}
}

func NewStatsRepository() repository.StatsRepository {
	return &statsStore{
		stats:   make(map[string]*entity.PlayerStats),
		applied: make(map[string]struct{}),
	}
}

func (that *statsStore) ApplyResult(_ context.Context, result *entity.GameResult) (bool, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.applied[result.RoomID]; ok {
		return false, nil
	}

	that.applied[result.RoomID] = struct{}{}

	for _, player := range result.Players {
		stats, ok := that.stats[player.ID]
		if !ok {
			stats = &entity.PlayerStats{PlayerID: player.ID}
			that.stats[player.ID] = stats
		}

		stats.Username = player.Username

		switch {
		case result.IsDraw():
			stats.Draws++
		case player.ID == result.WinnerID:
			stats.Wins++
		default:
			stats.Losses++
		}
	}

	return true, nil
}

func (that *statsStore) GetByPlayerID(_ context.Context, id string) (*entity.PlayerStats, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	stats, ok := that.stats[id]
	if !ok {
		return nil, repository.ErrStatsNotFound
	}

	clone := *stats

	return &clone, nil
}

// Top orders by wins, then by player id to keep ties stable.
func (that *statsStore) Top(_ context.Context, limit int) ([]*entity.PlayerStats, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	result := make([]*entity.PlayerStats, 0, len(that.stats))
	for _, stats := range that.stats {
		clone := *stats
		result = append(result, &clone)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Wins == result[j].Wins {
			return result[i].PlayerID > result[j].PlayerID
		}
		return result[i].Wins > result[j].Wins
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}
