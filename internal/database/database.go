package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/basta-backend/internal"
	"github.com/scythe504/basta-backend/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS rooms (
	id         TEXT PRIMARY KEY,
	doc        JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore keeps each room as a JSONB document in the rooms table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// New connects and makes sure the rooms table exists.
func New(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("error creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error connecting to postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error creating rooms table: %w", err)
	}
	log.Info().Msg("Connected to postgres room store")
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Exists(ctx context.Context, roomID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM rooms WHERE id = $1)", roomID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking room %s: %w", roomID, err)
	}
	return exists, nil
}

func (s *PostgresStore) Get(ctx context.Context, roomID string) (*internal.Room, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, "SELECT doc FROM rooms WHERE id = $1", roomID).Scan(&doc)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, store.ErrRoomNotFound
		default:
			return nil, fmt.Errorf("error getting room %s: %w", roomID, err)
		}
	}
	return store.DecodeRoom(doc)
}

func (s *PostgresStore) Set(ctx context.Context, room *internal.Room) error {
	doc, err := store.EncodeRoom(room)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO rooms (id, doc) VALUES ($1, $2::jsonb)
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
		room.Id, string(doc))
	if err != nil {
		return fmt.Errorf("error saving room %s: %w", room.Id, err)
	}
	return nil
}

// Update relies on jsonb concatenation, which replaces top level keys.
func (s *PostgresStore) Update(ctx context.Context, roomID string, fields map[string]any) error {
	patch, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("error marshaling update for room %s: %w", roomID, err)
	}
	tag, err := s.pool.Exec(ctx,
		"UPDATE rooms SET doc = doc || $2::jsonb, updated_at = now() WHERE id = $1",
		roomID, string(patch))
	if err != nil {
		return fmt.Errorf("error updating room %s: %w", roomID, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrRoomNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, roomID string) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM rooms WHERE id = $1", roomID); err != nil {
		return fmt.Errorf("error deleting room %s: %w", roomID, err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Health reports pool statistics for the health endpoint.
func (s *PostgresStore) Health(ctx context.Context) map[string]string {
	stats := make(map[string]string)
	if err := s.pool.Ping(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = err.Error()
		return stats
	}

	poolStats := s.pool.Stat()
	stats["status"] = "up"
	stats["total_conns"] = strconv.Itoa(int(poolStats.TotalConns()))
	stats["idle_conns"] = strconv.Itoa(int(poolStats.IdleConns()))
	stats["acquired_conns"] = strconv.Itoa(int(poolStats.AcquiredConns()))
	stats["max_conns"] = strconv.Itoa(int(poolStats.MaxConns()))
	return stats
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
