package store_test

import (
	"testing"

	"github.com/scythe504/basta-backend/internal/store"
	"github.com/scythe504/basta-backend/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	s := store.NewMemoryStore()
	defer s.Close()

	storetest.Run(t, s, "MEM")
}

func TestFormatRoomKey(t *testing.T) {
	assert.Equal(t, "room:ABCD", store.FormatRoomKey("ABCD"))
}

func TestMergeDocument(t *testing.T) {
	doc := []byte(`{"room_id":"ABCD","state":"LOBBY","time_limit":60}`)

	merged, err := store.MergeDocument(doc, map[string]any{
		"state":          "PREPARING",
		"current_letter": nil,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"room_id":"ABCD","state":"PREPARING","time_limit":60,"current_letter":null}`, string(merged))
}

func TestMergeDocumentRejectsNonObject(t *testing.T) {
	_, err := store.MergeDocument([]byte(`["not","an","object"]`), map[string]any{"state": "LOBBY"})
	assert.Error(t, err)
}

func TestDecodeRoomNormalizes(t *testing.T) {
	room, err := store.DecodeRoom([]byte(`{"room_id":"ABCD","players":{"b":{"nickname":"B"},"a":{"nickname":"A"}}}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, room.PlayerOrder)
	assert.NotNil(t, room.RoundAnswers)
	assert.Equal(t, 60, room.TimeLimit)
}
