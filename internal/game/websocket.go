package game

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/basta-backend/internal"
	"github.com/scythe504/basta-backend/internal/store"
	"github.com/scythe504/basta-backend/internal/utils"
	"github.com/scythe504/basta-backend/internal/websockets"
	"golang.org/x/time/rate"
)

// =============================================================================
// WEBSOCKET CONNECTION HANDLING
// =============================================================================

const disconnectTimeout = 5 * time.Second

// HandleWebSocket upgrades /ws/{roomId}/{clientId} and starts the read loop.
func (s *Service) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	roomID := utils.NormalizeRoomID(vars["roomId"])
	clientID := strings.TrimSpace(vars["clientId"])

	raw, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("room_id", roomID).Msg("[HandleWebSocket] Upgrade failed")
		return
	}
	conn := websockets.NewConn(raw)

	if clientID == "" {
		_ = conn.CloseWith(websocket.ClosePolicyViolation, "Missing client id")
		return
	}

	exists, err := s.store.Exists(r.Context(), roomID)
	if err != nil {
		log.Error().Err(err).Str("room_id", roomID).Msg("[HandleWebSocket] Store unavailable")
		_ = conn.CloseWith(websocket.CloseInternalServerErr, "Store unavailable")
		return
	}
	if !exists {
		log.Info().Str("room_id", roomID).Str("client_id", clientID).Msg("[HandleWebSocket] Room does not exist")
		_ = conn.CloseWith(websockets.CloseRoomDeleted, "Room deleted")
		return
	}

	connID, replaced := s.registry.Register(roomID, clientID, conn)
	if replaced != nil {
		log.Info().Str("room_id", roomID).Str("client_id", clientID).Msg("[HandleWebSocket] Replacing previous connection")
		_ = replaced.CloseWith(websocket.CloseNormalClosure, "Replaced by a new connection")
	}
	log.Info().Str("room_id", roomID).Str("client_id", clientID).
		Int("connections", s.registry.Count(roomID)).
		Msg("[HandleWebSocket] Client connected")

	go s.handleMessages(roomID, clientID, connID, conn)
}

// handleMessages reads actions until the connection drops. Actions are
// applied one at a time, in arrival order for this connection.
func (s *Service) handleMessages(roomID, clientID, connID string, conn *websockets.Conn) {
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		conn.Close()
		s.disconnect(roomID, clientID, connID)
	}()

	limiter := rate.NewLimiter(rate.Limit(s.opts.ActionRate), s.opts.ActionBurst)

	for {
		data, err := conn.Read()
		if err != nil {
			if !websockets.IsClosedByPeer(err) {
				log.Debug().Err(err).Str("room_id", roomID).Str("client_id", clientID).Msg("[handleMessages] Read error")
			}
			return
		}

		var msg internal.ActionMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Action == "" {
			log.Debug().Str("room_id", roomID).Str("client_id", clientID).Msg("[handleMessages] Ignoring malformed frame")
			continue
		}
		if !limiter.Allow() {
			log.Debug().Str("room_id", roomID).Str("client_id", clientID).
				Str("action", msg.Action).
				Msg("[handleMessages] Rate limited, action dropped")
			continue
		}

		_, err = s.Dispatch(ctx, roomID, Action{
			Verb:    Verb(msg.Action),
			ActorID: clientID,
			Payload: msg.Payload,
		})
		switch {
		case err == nil:
		case errors.Is(err, store.ErrRoomNotFound):
			log.Info().Str("room_id", roomID).Str("client_id", clientID).Msg("[handleMessages] Room deleted, closing connection")
			_ = conn.CloseWith(websockets.CloseRoomDeleted, "Room deleted")
			return
		default:
			log.Error().Err(err).Str("room_id", roomID).Str("client_id", clientID).
				Str("action", msg.Action).
				Msg("[handleMessages] Action aborted")
		}
	}
}

// disconnect unregisters the connection and, unless a newer connection for
// the same client took over, marks the participant disconnected.
func (s *Service) disconnect(roomID, clientID, connID string) {
	if !s.registry.Unregister(roomID, clientID, connID) {
		return
	}
	log.Info().Str("room_id", roomID).Str("client_id", clientID).Msg("[disconnect] Client disconnected")

	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()
	if err := s.MarkDisconnected(ctx, roomID, clientID); err != nil {
		log.Error().Err(err).Str("room_id", roomID).Str("client_id", clientID).Msg("[disconnect] Could not mark player disconnected")
	}
}
