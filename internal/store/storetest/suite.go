// Package storetest holds the behaviour every store.RoomStore must share,
// run by each backend's own tests.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/scythe504/basta-backend/internal"
	"github.com/scythe504/basta-backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var createdAt = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func sampleRoom(id string) *internal.Room {
	room := internal.NewRoom(id, 45, createdAt)
	room.AddPlayer("p1", &internal.Player{Nickname: "Ana", IsHost: true, Connected: true})
	room.AddPlayer("p2", &internal.Player{Nickname: "Beto", Score: 2, Connected: true})
	room.AddPlayer("p3", &internal.Player{Nickname: "Caro", Connected: true})
	room.HostID = "p1"
	return room
}

// Run exercises s against the RoomStore contract. Room ids are prefixed
// with prefix so runs never collide on a shared backend.
func Run(t *testing.T, s store.RoomStore, prefix string) {
	ctx := context.Background()

	t.Run("GetMissing", func(t *testing.T) {
		_, err := s.Get(ctx, prefix+"NONE")
		assert.ErrorIs(t, err, store.ErrRoomNotFound)

		exists, err := s.Exists(ctx, prefix+"NONE")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("SetThenGet", func(t *testing.T) {
		id := prefix + "SETG"
		require.NoError(t, s.Set(ctx, sampleRoom(id)))

		exists, err := s.Exists(ctx, id)
		require.NoError(t, err)
		assert.True(t, exists)

		got, err := s.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, got.Id)
		assert.Equal(t, internal.PhaseLobby, got.Phase)
		assert.Equal(t, 45, got.TimeLimit)
		assert.Equal(t, "p1", got.HostID)
		assert.Equal(t, []string{"p1", "p2", "p3"}, got.PlayerOrder)
		assert.Equal(t, 2, got.Players["p2"].Score)
		assert.True(t, createdAt.Equal(got.CreatedAt))
		assert.Nil(t, got.CurrentLetter)
		assert.NotNil(t, got.RoundAnswers)
	})

	t.Run("SetReplaces", func(t *testing.T) {
		id := prefix + "REPL"
		room := sampleRoom(id)
		require.NoError(t, s.Set(ctx, room))

		room.RemovePlayer("p3")
		room.Phase = internal.PhasePreparing
		require.NoError(t, s.Set(ctx, room))

		got, err := s.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, internal.PhasePreparing, got.Phase)
		assert.False(t, got.HasPlayer("p3"))
		assert.Equal(t, []string{"p1", "p2"}, got.PlayerOrder)
	})

	t.Run("GetReturnsIndependentCopies", func(t *testing.T) {
		id := prefix + "COPY"
		require.NoError(t, s.Set(ctx, sampleRoom(id)))

		first, err := s.Get(ctx, id)
		require.NoError(t, err)
		first.Players["p1"].Score = 99

		second, err := s.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 0, second.Players["p1"].Score)
	})

	t.Run("UpdateMergesTopLevelKeys", func(t *testing.T) {
		id := prefix + "UPDT"
		room := sampleRoom(id)
		require.NoError(t, s.Set(ctx, room))

		room.Players["p2"].Connected = false
		letter := "M"
		require.NoError(t, s.Update(ctx, id, map[string]any{
			internal.FieldPlayers: room.Players,
			internal.FieldLetter:  &letter,
		}))

		got, err := s.Get(ctx, id)
		require.NoError(t, err)
		assert.False(t, got.Players["p2"].Connected)
		require.NotNil(t, got.CurrentLetter)
		assert.Equal(t, "M", *got.CurrentLetter)
		assert.Equal(t, "p1", got.HostID)
		assert.Equal(t, []string{"p1", "p2", "p3"}, got.PlayerOrder)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		err := s.Update(ctx, prefix+"GONE", map[string]any{internal.FieldPhase: internal.PhasePlaying})
		assert.ErrorIs(t, err, store.ErrRoomNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		id := prefix + "DELE"
		require.NoError(t, s.Set(ctx, sampleRoom(id)))
		require.NoError(t, s.Delete(ctx, id))

		_, err := s.Get(ctx, id)
		assert.ErrorIs(t, err, store.ErrRoomNotFound)
		assert.NoError(t, s.Delete(ctx, id))
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, s.Ping(ctx))
	})
}
