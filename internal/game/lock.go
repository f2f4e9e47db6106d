package game

import (
	"context"
	"sync"
)

// =============================================================================
// ROOM SERIALIZATION
// =============================================================================

type roomLock struct {
	sem  chan struct{}
	refs int
}

// RoomLocks hands out one exclusive lock per room id. Entries exist only
// while someone holds or waits for them.
type RoomLocks struct {
	locks map[string]*roomLock
	mu    sync.Mutex
}

func NewRoomLocks() *RoomLocks {
	return &RoomLocks{
		locks: make(map[string]*roomLock),
	}
}

// Acquire blocks until the room's lock is held or ctx is done. The returned
// release func is safe to call more than once.
func (l *RoomLocks) Acquire(ctx context.Context, roomID string) (release func(), err error) {
	l.mu.Lock()
	lock, ok := l.locks[roomID]
	if !ok {
		lock = &roomLock{sem: make(chan struct{}, 1)}
		l.locks[roomID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	select {
	case lock.sem <- struct{}{}:
	case <-ctx.Done():
		l.unref(roomID, lock)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-lock.sem
			l.unref(roomID, lock)
		})
	}, nil
}

func (l *RoomLocks) unref(roomID string, lock *roomLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, roomID)
	}
}

// Len returns the number of rooms currently locked or waited on.
func (l *RoomLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
