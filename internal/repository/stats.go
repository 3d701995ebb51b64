package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

var ErrStatsNotFound = errors.New("player stats not found")

const (
	statsKeyPrefix   = "stats:"
	appliedKeyPrefix = "stats-applied:"
	leaderboardKey   = "stats-leaderboard"

	fieldUsername = "username"
	fieldWins     = "wins"
	fieldLosses   = "losses"
	fieldDraws    = "draws"
)

type StatsRepository interface {
	ApplyResult(ctx context.Context, result *entity.GameResult) (bool, error)
	GetByPlayerID(ctx context.Context, id string) (*entity.PlayerStats, error)
	Top(ctx context.Context, limit int) ([]*entity.PlayerStats, error)
}

type dbStats struct {
	client *redis.Client
}

func NewStatsRepository(client *redis.Client) StatsRepository {
	return &dbStats{
		client: client,
	}
}

// ApplyResult increments the counters of every player in result. A result is applied at most
// once per room: the applied marker and the increments are committed in one transaction.
// It reports false when the room's result had already been recorded.
func (that *dbStats) ApplyResult(ctx context.Context, result *entity.GameResult) (bool, error) {
	marker := appliedKeyPrefix + result.RoomID
	applied := false

	txf := func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, marker).Result()
		if err != nil {
			return err
		}

		if exists > 0 {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, marker, result.WinnerID, 0)

			for _, player := range result.Players {
				key := statsKey(player.ID)

				pipe.HSet(ctx, key, fieldUsername, player.Username)
				pipe.ZAddNX(ctx, leaderboardKey, redis.Z{Score: 0, Member: player.ID})

				switch {
				case result.IsDraw():
					pipe.HIncrBy(ctx, key, fieldDraws, 1)
				case player.ID == result.WinnerID:
					pipe.HIncrBy(ctx, key, fieldWins, 1)
					pipe.ZIncrBy(ctx, leaderboardKey, 1, player.ID)
				default:
					pipe.HIncrBy(ctx, key, fieldLosses, 1)
				}
			}

			return nil
		})
		if err != nil {
			return err
		}

		applied = true

		return nil
	}

	err := that.client.Watch(ctx, txf, marker)
	if errors.Is(err, redis.TxFailedErr) {
		return false, fmt.Errorf("%w: result of room %s applied concurrently", apperror.ErrTransientConflict, result.RoomID)
	}

	if err != nil {
		return false, storeError("failed to apply game result", err)
	}

	return applied, nil
}

func (that *dbStats) GetByPlayerID(ctx context.Context, id string) (*entity.PlayerStats, error) {
	fields, err := that.client.HGetAll(ctx, statsKey(id)).Result()
	if err != nil {
		return nil, storeError("failed to get player stats", err)
	}

	if len(fields) == 0 {
		return nil, ErrStatsNotFound
	}

	return decodeStats(id, fields)
}

// Top returns up to limit players ordered by wins, highest first.
func (that *dbStats) Top(ctx context.Context, limit int) ([]*entity.PlayerStats, error) {
	ids, err := that.client.ZRevRange(ctx, leaderboardKey, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, storeError("failed to read leaderboard", err)
	}

	if len(ids) == 0 {
		return []*entity.PlayerStats{}, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = that.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, statsKey(id))
		}

		return nil
	})
	if err != nil {
		return nil, storeError("failed to get leaderboard stats", err)
	}

	result := make([]*entity.PlayerStats, 0, len(ids))
	for i, id := range ids {
		fields := cmds[i].Val()
		if len(fields) == 0 {
			continue
		}

		stats, err := decodeStats(id, fields)
		if err != nil {
			return nil, err
		}

		result = append(result, stats)
	}

	return result, nil
}

func decodeStats(id string, fields map[string]string) (*entity.PlayerStats, error) {
	stats := &entity.PlayerStats{
		PlayerID: id,
		Username: fields[fieldUsername],
	}

	counters := map[string]*int64{
		fieldWins:   &stats.Wins,
		fieldLosses: &stats.Losses,
		fieldDraws:  &stats.Draws,
	}

	for field, target := range counters {
		raw, ok := fields[field]
		if !ok {
			continue
		}

		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s of player %s: %w", field, id, err)
		}

		*target = value
	}

	return stats, nil
}

func statsKey(id string) string {
	return statsKeyPrefix + id
}
