package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/scythe504/basta-backend/internal"
)

// ErrRoomNotFound is returned when a room id has no backing document.
var ErrRoomNotFound = errors.New("room not found")

// RoomStore is a keyed document store for rooms with last-writer-wins
// semantics. Callers that need read-modify-write atomicity must serialize
// access themselves.
type RoomStore interface {
	Exists(ctx context.Context, roomID string) (bool, error)
	Get(ctx context.Context, roomID string) (*internal.Room, error)
	// Set replaces the whole document.
	Set(ctx context.Context, room *internal.Room) error
	// Update merges top level document keys. The room must exist.
	Update(ctx context.Context, roomID string, fields map[string]any) error
	Delete(ctx context.Context, roomID string) error
	Ping(ctx context.Context) error
	Close() error
}

// FormatRoomKey returns the key under which a room document is stored.
// Format: "room:{id}"
func FormatRoomKey(roomID string) string {
	return fmt.Sprintf("room:%s", roomID)
}

func EncodeRoom(room *internal.Room) ([]byte, error) {
	if room == nil {
		return nil, errors.New("nil room")
	}
	data, err := json.Marshal(room)
	if err != nil {
		return nil, fmt.Errorf("error marshaling room %s: %w", room.Id, err)
	}
	return data, nil
}

func DecodeRoom(data []byte) (*internal.Room, error) {
	var room internal.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, fmt.Errorf("error unmarshaling room: %w", err)
	}
	room.Normalize()
	return &room, nil
}

// MergeDocument overwrites the given top level keys of a JSON object
// document and leaves every other key untouched.
func MergeDocument(doc []byte, fields map[string]any) ([]byte, error) {
	merged := make(map[string]json.RawMessage)
	if err := json.Unmarshal(doc, &merged); err != nil {
		return nil, fmt.Errorf("error unmarshaling document: %w", err)
	}
	for key, value := range fields {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("error marshaling field %q: %w", key, err)
		}
		merged[key] = raw
	}
	return json.Marshal(merged)
}
