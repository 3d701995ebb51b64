package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

const (
	roomKeyPrefix   = "rooms:"
	waitingIndexKey = "rooms-waiting"
)

type RoomRepository interface {
	Create(ctx context.Context, room *entity.Room) error
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	Update(ctx context.Context, room *entity.Room) error
	ListJoinable(ctx context.Context, limit int) ([]*entity.Room, error)
}

type dbRoom struct {
	client *redis.Client
}

func NewRoomRepository(client *redis.Client) RoomRepository {
	return &dbRoom{
		client: client,
	}
}

// Create stores a new room with version 1. It fails with ErrTransientConflict if the id is taken.
func (that *dbRoom) Create(ctx context.Context, room *entity.Room) error {
	key := roomKey(room.ID)

	txf := func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return storeError("failed to check room", err)
		}

		if exists > 0 {
			return fmt.Errorf("%w: room %s already exists", apperror.ErrTransientConflict, room.ID)
		}

		return that.write(ctx, tx, room, 1)
	}

	if err := that.watch(ctx, txf, key, room.ID); err != nil {
		return err
	}

	room.Version = 1

	return nil
}

func (that *dbRoom) GetByID(ctx context.Context, id string) (*entity.Room, error) {
	response, err := that.client.Get(ctx, roomKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, id)
	}

	if err != nil {
		return nil, storeError("failed to get room", err)
	}

	return decodeRoom(response)
}

// Update writes room only if the stored version still equals room.Version, then bumps it.
// The waiting index is updated in the same transaction.
func (that *dbRoom) Update(ctx context.Context, room *entity.Room) error {
	key := roomKey(room.ID)
	expected := room.Version

	txf := func(tx *redis.Tx) error {
		response, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, room.ID)
		}

		if err != nil {
			return storeError("failed to get room", err)
		}

		current, err := decodeRoom(response)
		if err != nil {
			return err
		}

		if current.Version != expected {
			return fmt.Errorf("%w: room %s is at version %d, expected %d",
				apperror.ErrTransientConflict, room.ID, current.Version, expected)
		}

		return that.write(ctx, tx, room, expected+1)
	}

	if err := that.watch(ctx, txf, key, room.ID); err != nil {
		return err
	}

	room.Version = expected + 1

	return nil
}

// ListJoinable returns up to limit rooms from the waiting index, oldest first.
func (that *dbRoom) ListJoinable(ctx context.Context, limit int) ([]*entity.Room, error) {
	ids, err := that.client.ZRange(ctx, waitingIndexKey, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, storeError("failed to read waiting index", err)
	}

	if len(ids) == 0 {
		return []*entity.Room{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = roomKey(id)
	}

	values, err := that.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, storeError("failed to get waiting rooms", err)
	}

	rooms := make([]*entity.Room, 0, len(values))
	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}

		room, err := decodeRoom([]byte(raw))
		if err != nil {
			return nil, err
		}

		if room.IsJoinable() {
			rooms = append(rooms, room)
		}
	}

	return rooms, nil
}

func (that *dbRoom) write(ctx context.Context, tx *redis.Tx, room *entity.Room, version int64) error {
	next := *room
	next.Version = version

	roomJSON, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("could not marshal room: %w", err)
	}

	_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, roomKey(room.ID), roomJSON, 0)

		if next.IsJoinable() {
			pipe.ZAdd(ctx, waitingIndexKey, redis.Z{Score: float64(next.CreatedAt.UnixMilli()), Member: next.ID})
		} else {
			pipe.ZRem(ctx, waitingIndexKey, next.ID)
		}

		return nil
	})

	return err
}

func (that *dbRoom) watch(ctx context.Context, txf func(tx *redis.Tx) error, key, roomID string) error {
	err := that.client.Watch(ctx, txf, key)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.TxFailedErr):
		return fmt.Errorf("%w: room %s changed during write", apperror.ErrTransientConflict, roomID)
	case errors.Is(err, apperror.ErrRoomNotFound),
		errors.Is(err, apperror.ErrTransientConflict),
		errors.Is(err, apperror.ErrStoreUnavailable):
		return err
	default:
		return storeError("failed to write room", err)
	}
}

func decodeRoom(data []byte) (*entity.Room, error) {
	var room entity.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	return &room, nil
}

func roomKey(id string) string {
	return roomKeyPrefix + id
}

func storeError(msg string, err error) error {
	return fmt.Errorf("%w: %s: %w", apperror.ErrStoreUnavailable, msg, err)
}
