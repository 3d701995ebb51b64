// Package memory keeps rooms, stats and matchmaking markers in process memory.
// It honors the same version checks as the Redis store and is used for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/repository"
)

type roomStore struct {
	mu    sync.RWMutex
	rooms map[string]*entity.Room
}

func NewRoomRepository() repository.RoomRepository {
	return &roomStore{
		rooms: make(map[string]*entity.Room),
	}
}

func (that *roomStore) Create(_ context.Context, room *entity.Room) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.rooms[room.ID]; ok {
		return fmt.Errorf("%w: room %s already exists", apperror.ErrTransientConflict, room.ID)
	}

	room.Version = 1
	that.rooms[room.ID] = room.Clone()

	return nil
}

func (that *roomStore) GetByID(_ context.Context, id string) (*entity.Room, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	room, ok := that.rooms[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, id)
	}

	return room.Clone(), nil
}

func (that *roomStore) Update(_ context.Context, room *entity.Room) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	current, ok := that.rooms[room.ID]
	if !ok {
		return fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, room.ID)
	}

	if current.Version != room.Version {
		return fmt.Errorf("%w: room %s is at version %d, expected %d",
			apperror.ErrTransientConflict, room.ID, current.Version, room.Version)
	}

	room.Version++
	that.rooms[room.ID] = room.Clone()

	return nil
}

func (that *roomStore) ListJoinable(_ context.Context, limit int) ([]*entity.Room, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	rooms := make([]*entity.Room, 0)
	for _, room := range that.rooms {
		if room.IsJoinable() {
			rooms = append(rooms, room.Clone())
		}
	}

	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
			return rooms[i].ID < rooms[j].ID
		}
		return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
	})

	if limit > 0 && len(rooms) > limit {
		rooms = rooms[:limit]
	}

	return rooms, nil
}
