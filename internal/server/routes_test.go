package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/scythe504/basta-backend/internal"
	"github.com/scythe504/basta-backend/internal/config"
	"github.com/scythe504/basta-backend/internal/game"
	"github.com/scythe504/basta-backend/internal/store"
	"github.com/scythe504/basta-backend/internal/websockets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	srv   *httptest.Server
	store *store.MemoryStore
	game  *game.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := store.NewMemoryStore()
	svc := game.NewService(st, websockets.NewRegistry(), game.DefaultRules(), game.Options{ActionRate: 100, ActionBurst: 100})
	httpServer := NewServer(&config.Config{Port: 0, AllowedOrigin: "*"}, svc)

	srv := httptest.NewServer(httpServer.Handler)
	t.Cleanup(func() {
		svc.Shutdown()
		srv.Close()
	})
	return &testEnv{srv: srv, store: st, game: svc}
}

func (e *testEnv) seed(t *testing.T, room *internal.Room) {
	t.Helper()
	require.NoError(t, e.store.Set(context.Background(), room))
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHelloWorldHandler(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.srv.URL + "/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.NotEmpty(t, body["message"])
}

func TestHealthHandler(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.srv.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "up", body["status"])
}

func TestPreflight(t *testing.T) {
	env := newTestEnv(t)

	req, err := http.NewRequest(http.MethodOptions, env.srv.URL+"/create-room", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "POST")
}

func TestCreateAndCheckRoom(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Post(env.srv.URL+"/create-room", "application/json", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var created struct {
		RoomID string `json:"room_id"`
	}
	decodeBody(t, resp, &created)
	require.Len(t, created.RoomID, 4)

	check := func(roomID string) (*http.Response, map[string]any) {
		body := strings.NewReader(`{"room_id":"` + roomID + `","nickname":"Ana"}`)
		resp, err := http.Post(env.srv.URL+"/check-room", "application/json", body)
		require.NoError(t, err)
		var out map[string]any
		decodeBody(t, resp, &out)
		return resp, out
	}

	resp, out := check(strings.ToLower(created.RoomID))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, out["valid"])

	resp, out = check("ZZZZ")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Sala no encontrada", out["detail"])

	running := internal.NewRoom("PLAY", 60, time.Now())
	running.Phase = internal.PhasePlaying
	env.seed(t, running)
	resp, out = check("play")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Partida en progreso", out["detail"])
}

func TestCheckRoomBadBody(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Post(env.srv.URL+"/check-room", "application/json", strings.NewReader("not json"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestScoresHandler(t *testing.T) {
	env := newTestEnv(t)
	room := internal.NewRoom("SCOR", 60, time.Now())
	room.AddPlayer("p1", &internal.Player{Nickname: "Ana", Score: 1, IsHost: true})
	room.AddPlayer("p2", &internal.Player{Nickname: "Beto", Score: 3})
	env.seed(t, room)

	resp, err := http.Get(env.srv.URL + "/rooms/scor/scores")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		StatusCode int                         `json:"status_code"`
		Data       []internal.LeaderboardEntry `json:"data"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, http.StatusOK, body.StatusCode)
	require.Len(t, body.Data, 2)
	assert.Equal(t, "p2", body.Data[0].PlayerID)
	assert.Equal(t, 1, body.Data[0].Position)

	resp, err = http.Get(env.srv.URL + "/rooms/NONE/scores")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func dialRoom(t *testing.T, env *testEnv, roomID, clientID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/ws/" + roomID + "/" + clientID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestWebSocketJoinBroadcastsRoster(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, internal.NewRoom("WSOK", 60, time.Now()))

	ana := dialRoom(t, env, "wsok", "p1")
	require.NoError(t, ana.WriteJSON(map[string]any{"action": "JOIN", "payload": map[string]string{"nickname": "Ana"}}))

	f := readFrame(t, ana)
	assert.Equal(t, internal.MessagePlayerListUpdate, f.Type)
	var roster []internal.RosterEntry
	require.NoError(t, json.Unmarshal(f.Payload, &roster))
	require.Len(t, roster, 1)
	assert.Equal(t, "Ana", roster[0].Nickname)
	assert.True(t, roster[0].IsHost)

	beto := dialRoom(t, env, "WSOK", "p2")
	require.NoError(t, beto.WriteJSON(map[string]any{"action": "JOIN", "payload": map[string]string{"nickname": "Beto"}}))

	for _, conn := range []*websocket.Conn{ana, beto} {
		f := readFrame(t, conn)
		assert.Equal(t, internal.MessagePlayerListUpdate, f.Type)
		require.NoError(t, json.Unmarshal(f.Payload, &roster))
		assert.Len(t, roster, 2)
	}
}

func TestWebSocketIgnoresMalformedFrames(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, internal.NewRoom("JUNK", 60, time.Now()))

	conn := dialRoom(t, env, "JUNK", "p1")
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	require.NoError(t, conn.WriteJSON(map[string]any{"action": "DANCE"}))
	require.NoError(t, conn.WriteJSON(map[string]any{"action": "JOIN"}))

	f := readFrame(t, conn)
	assert.Equal(t, internal.MessagePlayerListUpdate, f.Type)
}

func TestWebSocketUnknownRoomIsClosed(t *testing.T) {
	env := newTestEnv(t)

	conn := dialRoom(t, env, "NOPE", "p1")
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, _, err := conn.ReadMessage()

	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websockets.CloseRoomDeleted, closeErr.Code)
	assert.Equal(t, "Room deleted", closeErr.Text)
}

func TestWebSocketDisconnectMarksPlayer(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, internal.NewRoom("GONE", 60, time.Now()))

	conn := dialRoom(t, env, "GONE", "p1")
	require.NoError(t, conn.WriteJSON(map[string]any{"action": "JOIN", "payload": map[string]string{"nickname": "Ana"}}))
	readFrame(t, conn)
	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool {
		room, err := env.store.Get(context.Background(), "GONE")
		return err == nil && room.HasPlayer("p1") && !room.Players["p1"].Connected
	}, 3*time.Second, 20*time.Millisecond)
	assert.Eventually(t, func() bool {
		return env.game.Registry().Count("GONE") == 0
	}, 3*time.Second, 20*time.Millisecond)
}
