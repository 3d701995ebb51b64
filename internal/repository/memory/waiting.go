package memory

import (
	"context"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/repository"
)

type waitingEntry struct {
	marker    entity.WaitingMarker
	expiresAt time.Time
}

type waitingStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	markers map[string]waitingEntry
}

func NewWaitingRepository(ttl time.Duration) repository.WaitingRepository {
	return &waitingStore{
		ttl:     ttl,
		now:     time.Now,
		markers: make(map[string]waitingEntry),
	}
}

func (that *waitingStore) Save(_ context.Context, marker *entity.WaitingMarker) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.markers[marker.PlayerID] = waitingEntry{
		marker:    *marker,
		expiresAt: that.now().Add(that.ttl),
	}

	return nil
}

func (that *waitingStore) GetByPlayerID(_ context.Context, id string) (*entity.WaitingMarker, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry, ok := that.markers[id]
	if !ok {
		return nil, repository.ErrWaitingMarkerNotFound
	}

	if !that.now().Before(entry.expiresAt) {
		delete(that.markers, id)
		return nil, repository.ErrWaitingMarkerNotFound
	}

	marker := entry.marker

	return &marker, nil
}

func (that *waitingStore) DeleteByPlayerID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.markers, id)

	return nil
}
