package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/basta-backend/internal"
	"github.com/scythe504/basta-backend/internal/store"
	"github.com/scythe504/basta-backend/internal/utils"
	"github.com/scythe504/basta-backend/internal/websockets"
)

// =============================================================================
// ROOM MANAGEMENT
// =============================================================================

const maxRoomCodeAttempts = 10

var ErrNoRoomCode = errors.New("could not allocate a free room code")

type Options struct {
	// ActionRate is the sustained number of actions per second a single
	// connection may send; ActionBurst is the bucket size.
	ActionRate    float64
	ActionBurst   int
	AllowedOrigin string
}

// Service owns the action pipeline: room lock, store read, rules, store
// write, then fan-out through the registry.
type Service struct {
	store    store.RoomStore
	registry *websockets.Registry
	rules    Rules
	locks    *RoomLocks
	opts     Options
	upgrader websocket.Upgrader

	newCode func() string
	now     func() time.Time
}

func NewService(st store.RoomStore, registry *websockets.Registry, rules Rules, opts Options) *Service {
	if opts.ActionRate <= 0 {
		opts.ActionRate = 5
	}
	if opts.ActionBurst <= 0 {
		opts.ActionBurst = 10
	}
	return &Service{
		store:    st,
		registry: registry,
		rules:    rules,
		locks:    NewRoomLocks(),
		opts:     opts,
		upgrader: websockets.NewUpgrader(opts.AllowedOrigin),
		newCode:  utils.GenerateRoomCode,
		now:      time.Now,
	}
}

func (s *Service) Store() store.RoomStore {
	return s.store
}

func (s *Service) Registry() *websockets.Registry {
	return s.registry
}

// CreateRoom allocates a fresh room code and persists an empty lobby.
func (s *Service) CreateRoom(ctx context.Context) (string, error) {
	for range maxRoomCodeAttempts {
		roomID := s.newCode()
		created, err := s.createIfAbsent(ctx, roomID)
		if err != nil {
			return "", err
		}
		if created {
			log.Info().Str("room_id", roomID).Msg("[CreateRoom] Created new room")
			return roomID, nil
		}
		log.Debug().Str("room_id", roomID).Msg("[CreateRoom] Room code taken, retrying")
	}
	return "", ErrNoRoomCode
}

func (s *Service) createIfAbsent(ctx context.Context, roomID string) (bool, error) {
	release, err := s.locks.Acquire(ctx, roomID)
	if err != nil {
		return false, err
	}
	defer release()

	exists, err := s.store.Exists(ctx, roomID)
	if err != nil {
		return false, fmt.Errorf("check room %s: %w", roomID, err)
	}
	if exists {
		return false, nil
	}
	room := internal.NewRoom(roomID, s.rules.timeLimit(""), s.now())
	if err := s.store.Set(ctx, room); err != nil {
		return false, fmt.Errorf("create room %s: %w", roomID, err)
	}
	return true, nil
}

// GetRoom reads a room without taking its lock.
func (s *Service) GetRoom(ctx context.Context, roomID string) (*internal.Room, error) {
	return s.store.Get(ctx, utils.NormalizeRoomID(roomID))
}

// WithRoom runs fn on the freshly read room while holding the room's lock,
// persists the room fn returns, broadcasts the views it asks for and only
// then releases the lock. Once admitted the sequence ignores cancellation
// of ctx so a dropped connection cannot abort it halfway.
func (s *Service) WithRoom(ctx context.Context, roomID string, fn func(room *internal.Room) Outcome) (Outcome, error) {
	release, err := s.locks.Acquire(ctx, roomID)
	if err != nil {
		return Outcome{}, err
	}
	defer release()
	ctx = context.WithoutCancel(ctx)

	room, err := s.store.Get(ctx, roomID)
	if err != nil {
		return Outcome{}, err
	}
	if room.Id == "" {
		room.Id = roomID
	}

	out := fn(room)
	if !out.Applied() {
		return out, nil
	}
	if err := s.store.Set(ctx, out.Room); err != nil {
		return Outcome{}, fmt.Errorf("persist room %s: %w", roomID, err)
	}

	s.broadcast(out)
	return out, nil
}

// Dispatch applies one action to its room.
func (s *Service) Dispatch(ctx context.Context, roomID string, a Action) (Outcome, error) {
	out, err := s.WithRoom(ctx, roomID, func(room *internal.Room) Outcome {
		return s.rules.Apply(room, a)
	})
	if err != nil {
		return out, err
	}

	if !out.Applied() {
		log.Debug().
			Str("room_id", roomID).
			Str("client_id", a.ActorID).
			Str("action", string(a.Verb)).
			Str("reason", out.Reason).
			Msg("[Dispatch] Action dropped")
		return out, nil
	}
	log.Debug().
		Str("room_id", roomID).
		Str("client_id", a.ActorID).
		Str("action", string(a.Verb)).
		Str("phase", string(out.Room.Phase)).
		Msg("[Dispatch] Action applied")
	return out, nil
}

// MarkDisconnected flags a participant as gone without removing it. Only
// the players key is written.
func (s *Service) MarkDisconnected(ctx context.Context, roomID, clientID string) error {
	release, err := s.locks.Acquire(ctx, roomID)
	if err != nil {
		return err
	}
	defer release()
	ctx = context.WithoutCancel(ctx)

	room, err := s.store.Get(ctx, roomID)
	if errors.Is(err, store.ErrRoomNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	player, ok := room.Players[clientID]
	if !ok || !player.Connected {
		return nil
	}
	player.Connected = false
	if err := s.store.Update(ctx, roomID, map[string]any{internal.FieldPlayers: room.Players}); err != nil {
		return fmt.Errorf("mark %s disconnected in room %s: %w", clientID, roomID, err)
	}
	log.Info().Str("room_id", roomID).Str("client_id", clientID).Msg("[MarkDisconnected] Player disconnected")
	return nil
}

// broadcast sends the roster before the game state, matching the order
// clients expect when both change.
func (s *Service) broadcast(out Outcome) {
	room := out.Room
	if out.Roster {
		s.registry.Broadcast(room.Id, internal.NewPlayerListMessage(room))
	}
	if out.GameState {
		s.registry.Broadcast(room.Id, internal.NewGameStateMessage(room))
	}
}

// Shutdown closes every live connection.
func (s *Service) Shutdown() {
	s.registry.CloseAll(websocket.CloseGoingAway, "Server shutting down")
}
