package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/basta-backend/internal"
	"github.com/scythe504/basta-backend/internal/game"
	"github.com/scythe504/basta-backend/internal/store"
	"github.com/scythe504/basta-backend/internal/utils"
)

const healthTimeout = 2 * time.Second

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// Apply CORS middleware
	r.Use(s.corsMiddleware)

	r.HandleFunc("/", s.HelloWorldHandler).Methods(http.MethodGet)
	r.HandleFunc("/health", s.HealthHandler).Methods(http.MethodGet)

	r.HandleFunc("/create-room", s.CreateRoomHandler).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/check-room", s.CheckRoomHandler).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/rooms/{roomId}/scores", s.ScoresHandler).Methods(http.MethodGet, http.MethodOptions)

	r.HandleFunc("/ws/{roomId}/{clientId}", s.game.HandleWebSocket)

	return r
}

// CORS middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		w.Header().Set("Access-Control-Allow-Credentials", "false")

		// If it's a websocket upgrade, skip further CORS checks
		if strings.ToLower(r.Header.Get("Upgrade")) == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		// Handle preflight OPTIONS requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) HelloWorldHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Basta backend is running"})
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	st := s.game.Store()
	if h, ok := st.(interface {
		Health(context.Context) map[string]string
	}); ok {
		stats := h.Health(ctx)
		status := http.StatusOK
		if stats["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, stats)
		return
	}

	if err := st.Ping(ctx); err != nil {
		log.Error().Err(err).Msg("[HealthHandler] Store ping failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "down", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "up"})
}

type createRoomResponse struct {
	RoomID string `json:"room_id"`
}

func (s *Server) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	roomID, err := s.game.CreateRoom(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("[CreateRoomHandler] Could not create room")
		writeError(w, http.StatusInternalServerError, "No se pudo crear la sala")
		return
	}
	writeJSON(w, http.StatusOK, createRoomResponse{RoomID: roomID})
}

type checkRoomRequest struct {
	RoomID   string `json:"room_id"`
	Nickname string `json:"nickname"`
}

// CheckRoomHandler tells a client whether it may join a room.
func (s *Server) CheckRoomHandler(w http.ResponseWriter, r *http.Request) {
	var req checkRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Solicitud inválida")
		return
	}
	roomID := utils.NormalizeRoomID(req.RoomID)
	if roomID == "" {
		writeError(w, http.StatusBadRequest, "Solicitud inválida")
		return
	}

	room, err := s.game.GetRoom(r.Context(), roomID)
	switch {
	case errors.Is(err, store.ErrRoomNotFound):
		writeError(w, http.StatusNotFound, "Sala no encontrada")
		return
	case err != nil:
		log.Error().Err(err).Str("room_id", roomID).Msg("[CheckRoomHandler] Store error")
		writeError(w, http.StatusInternalServerError, "Error interno")
		return
	}
	if room.Phase != internal.PhaseLobby {
		writeError(w, http.StatusBadRequest, "Partida en progreso")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

// ScoresHandler returns the room leaderboard wrapped in a timed Response.
func (s *Server) ScoresHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()
	roomID := utils.NormalizeRoomID(mux.Vars(r)["roomId"])

	var resp internal.Response
	room, err := s.game.GetRoom(r.Context(), roomID)
	switch {
	case errors.Is(err, store.ErrRoomNotFound):
		resp = internal.Response{StatusCode: http.StatusNotFound, Data: "Sala no encontrada"}
	case err != nil:
		log.Error().Err(err).Str("room_id", roomID).Msg("[ScoresHandler] Store error")
		resp = internal.Response{StatusCode: http.StatusInternalServerError, Data: "Error interno"}
	default:
		resp = internal.Response{StatusCode: http.StatusOK, Data: game.Leaderboard(room)}
	}

	// Calculate response times
	endTime := time.Now().UnixMilli()
	resp.RespStartTime = startTime
	resp.RespEndTime = endTime
	resp.NetRespTime = endTime - startTime

	writeJSON(w, resp.StatusCode, resp)
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Error encoding response")
	}
}

// writeError uses the {"detail": ...} shape the web client reads.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
