package store

import (
	"context"
	"sync"

	"github.com/scythe504/basta-backend/internal"
)

// MemoryStore keeps encoded documents so no caller ever shares memory with
// the store or with another caller.
type MemoryStore struct {
	rooms map[string][]byte
	mu    sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms: make(map[string][]byte),
	}
}

func (s *MemoryStore) Exists(_ context.Context, roomID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.rooms[roomID]
	return exists, nil
}

func (s *MemoryStore) Get(_ context.Context, roomID string) (*internal.Room, error) {
	s.mu.RLock()
	data, exists := s.rooms[roomID]
	s.mu.RUnlock()
	if !exists {
		return nil, ErrRoomNotFound
	}
	return DecodeRoom(data)
}

func (s *MemoryStore) Set(_ context.Context, room *internal.Room) error {
	data, err := EncodeRoom(room)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.Id] = data
	return nil
}

func (s *MemoryStore) Update(_ context.Context, roomID string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, exists := s.rooms[roomID]
	if !exists {
		return ErrRoomNotFound
	}
	merged, err := MergeDocument(data, fields)
	if err != nil {
		return err
	}
	s.rooms[roomID] = merged
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, roomID)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
