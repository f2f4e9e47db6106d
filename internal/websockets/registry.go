package websockets

import (
	"encoding/json"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Connection is the transport side of one registered participant.
type Connection interface {
	Send(data []byte) error
	CloseWith(code int, reason string) error
}

type member struct {
	clientID string
	connID   string
	conn     Connection
}

// Registry tracks which live connections belong to which room. It is
// guarded by its own lock and never by a room lock.
type Registry struct {
	rooms map[string][]*member
	mu    sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string][]*member),
	}
}

// Register adds conn for clientID in roomID and returns the id of this
// registration. A client that is already registered keeps its position and
// the previous connection is returned so the caller can close it.
func (r *Registry) Register(roomID, clientID string, conn Connection) (connID string, replaced Connection) {
	connID = uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.rooms[roomID] {
		if m.clientID == clientID {
			replaced = m.conn
			m.conn = conn
			m.connID = connID
			return connID, replaced
		}
	}
	r.rooms[roomID] = append(r.rooms[roomID], &member{clientID: clientID, connID: connID, conn: conn})
	return connID, nil
}

// Unregister removes the registration only if connID is still current, so
// a replaced connection never removes its successor. The room entry goes
// away with its last member.
func (r *Registry) Unregister(roomID, clientID, connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	members := r.rooms[roomID]
	idx := slices.IndexFunc(members, func(m *member) bool {
		return m.clientID == clientID && m.connID == connID
	})
	if idx < 0 {
		return false
	}
	members = slices.Delete(members, idx, idx+1)
	if len(members) == 0 {
		delete(r.rooms, roomID)
	} else {
		r.rooms[roomID] = members
	}
	return true
}

// snapshot copies the room's connections so sends happen without the lock
// and registrations during a broadcast cannot disturb it.
func (r *Registry) snapshot(roomID string) []member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]member, 0, len(r.rooms[roomID]))
	for _, m := range r.rooms[roomID] {
		members = append(members, *m)
	}
	return members
}

// Broadcast serializes v once and sends it to every connection in the room.
// Send failures are logged and skipped. It returns the number of
// successful sends.
func (r *Registry) Broadcast(roomID string, v any) int {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("room_id", roomID).Msg("[Broadcast] Failed to marshal message")
		return 0
	}

	delivered := 0
	for _, m := range r.snapshot(roomID) {
		if err := m.conn.Send(data); err != nil {
			log.Warn().Err(err).
				Str("room_id", roomID).
				Str("client_id", m.clientID).
				Msg("[Broadcast] Failed to send to client")
			continue
		}
		delivered++
	}
	return delivered
}

// Count returns the number of registered connections in a room.
func (r *Registry) Count(roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomID])
}

// ClientIDs returns the registered clients of a room in registration order.
func (r *Registry) ClientIDs(roomID string) []string {
	members := r.snapshot(roomID)
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.clientID)
	}
	return ids
}

// CloseAll closes every registered connection, used on shutdown.
func (r *Registry) CloseAll(code int, reason string) {
	r.mu.RLock()
	conns := make([]Connection, 0)
	for _, members := range r.rooms {
		for _, m := range members {
			conns = append(conns, m.conn)
		}
	}
	r.mu.RUnlock()

	for _, c := range conns {
		_ = c.CloseWith(code, reason)
	}
}
