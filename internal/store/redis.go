package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/basta-backend/internal"
)

const maxUpdateRetries = 5

// RedisStore keeps one JSON document per room.
// Key format: "room:{id}"
// TTL: refreshed on every write
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore accepts either a redis:// URL or a plain host:port address.
func NewRedisStore(ctx context.Context, addr string, ttl time.Duration) (*RedisStore, error) {
	var client *redis.Client
	if strings.Contains(addr, "://") {
		log.Info().Msg("Connecting to remote Redis...")
		opt, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("error parsing Redis URL: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: addr})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("error connecting to Redis at %s: %w", addr, err)
	}
	return NewRedisStoreFromClient(client, ttl), nil
}

func NewRedisStoreFromClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (rs *RedisStore) Exists(ctx context.Context, roomID string) (bool, error) {
	n, err := rs.client.Exists(ctx, FormatRoomKey(roomID)).Result()
	if err != nil {
		return false, fmt.Errorf("error checking room %s: %w", roomID, err)
	}
	return n > 0, nil
}

func (rs *RedisStore) Get(ctx context.Context, roomID string) (*internal.Room, error) {
	data, err := rs.client.Get(ctx, FormatRoomKey(roomID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting room %s: %w", roomID, err)
	}
	return DecodeRoom(data)
}

func (rs *RedisStore) Set(ctx context.Context, room *internal.Room) error {
	data, err := EncodeRoom(room)
	if err != nil {
		return err
	}
	if err := rs.client.Set(ctx, FormatRoomKey(room.Id), data, rs.ttl).Err(); err != nil {
		return fmt.Errorf("error saving room %s: %w", room.Id, err)
	}
	return nil
}

// Update merges fields under WATCH so a concurrent writer on the same key
// forces a retry instead of being overwritten.
func (rs *RedisStore) Update(ctx context.Context, roomID string, fields map[string]any) error {
	key := FormatRoomKey(roomID)

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrRoomNotFound
		}
		if err != nil {
			return err
		}
		merged, err := MergeDocument(data, fields)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, merged, rs.ttl)
			return nil
		})
		return err
	}

	for range maxUpdateRetries {
		err := rs.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil && !errors.Is(err, ErrRoomNotFound) {
			return fmt.Errorf("error updating room %s: %w", roomID, err)
		}
		return err
	}
	return fmt.Errorf("error updating room %s: %w", roomID, redis.TxFailedErr)
}

func (rs *RedisStore) Delete(ctx context.Context, roomID string) error {
	if err := rs.client.Del(ctx, FormatRoomKey(roomID)).Err(); err != nil {
		return fmt.Errorf("error deleting room %s: %w", roomID, err)
	}
	return nil
}

func (rs *RedisStore) Ping(ctx context.Context) error {
	return rs.client.Ping(ctx).Err()
}

func (rs *RedisStore) Close() error {
	return rs.client.Close()
}
