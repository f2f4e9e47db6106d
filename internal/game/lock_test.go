package game

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomLocksExclusivePerRoom(t *testing.T) {
	locks := NewRoomLocks()
	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup

	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locks.Acquire(context.Background(), "ROOM")
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			n := inside.Add(1)
			for {
				m := maxInside.Load()
				if n <= m || maxInside.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside.Load())
	assert.Zero(t, locks.Len())
}

func TestRoomLocksIndependentRooms(t *testing.T) {
	locks := NewRoomLocks()
	releaseA, err := locks.Acquire(context.Background(), "AAAA")
	require.NoError(t, err)
	defer releaseA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	releaseB, err := locks.Acquire(ctx, "BBBB")
	require.NoError(t, err)
	releaseB()
}

func TestRoomLocksHonorsContext(t *testing.T) {
	locks := NewRoomLocks()
	release, err := locks.Acquire(context.Background(), "ROOM")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locks.Acquire(ctx, "ROOM")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, locks.Len())

	release()
	release()
	assert.Zero(t, locks.Len())

	again, err := locks.Acquire(context.Background(), "ROOM")
	require.NoError(t, err)
	again()
}
