package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

var ErrWaitingMarkerNotFound = errors.New("waiting marker not found")

const waitingKeyPrefix = "matchmaking-waiting:"

type WaitingRepository interface {
	Save(ctx context.Context, marker *entity.WaitingMarker) error
	GetByPlayerID(ctx context.Context, id string) (*entity.WaitingMarker, error)
	DeleteByPlayerID(ctx context.Context, id string) error
}

type dbWaiting struct {
	client *redis.Client
	ttl    time.Duration
}

// NewWaitingRepository stores matchmaking markers that expire after ttl.
func NewWaitingRepository(client *redis.Client, ttl time.Duration) WaitingRepository {
	return &dbWaiting{
		client: client,
		ttl:    ttl,
	}
}

func (that *dbWaiting) Save(ctx context.Context, marker *entity.WaitingMarker) error {
	markerJSON, err := json.Marshal(marker)
	if err != nil {
		return fmt.Errorf("failed to marshal waiting marker: %w", err)
	}

	err = that.client.Set(ctx, waitingKey(marker.PlayerID), markerJSON, that.ttl).Err()
	if err != nil {
		return storeError("failed to set waiting marker", err)
	}

	return nil
}

func (that *dbWaiting) GetByPlayerID(ctx context.Context, id string) (*entity.WaitingMarker, error) {
	response, err := that.client.Get(ctx, waitingKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrWaitingMarkerNotFound
	}

	if err != nil {
		return nil, storeError("failed to get waiting marker", err)
	}

	var marker entity.WaitingMarker
	if err = json.Unmarshal(response, &marker); err != nil {
		return nil, fmt.Errorf("failed to unmarshal waiting marker: %w", err)
	}

	return &marker, nil
}

func (that *dbWaiting) DeleteByPlayerID(ctx context.Context, id string) error {
	if err := that.client.Del(ctx, waitingKey(id)).Err(); err != nil {
		return storeError("failed to delete waiting marker", err)
	}

	return nil
}

func waitingKey(id string) string {
	return waitingKeyPrefix + id
}
