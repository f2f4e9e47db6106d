package websockets

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu     sync.Mutex
	sent   [][]byte
	fail   bool
	closed bool
	code   int
}

func (f *fakeConn) Send(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broken pipe")
	}
	f.sent = append(f.sent, data)
	return nil
}

func (f *fakeConn) CloseWith(code int, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.code = code
	return nil
}

func (f *fakeConn) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, b := range f.sent {
		out = append(out, string(b))
	}
	return out
}

func TestRegisterKeepsInsertionOrder(t *testing.T) {
	r := NewRegistry()
	r.Register("ROOM", "a", &fakeConn{})
	r.Register("ROOM", "b", &fakeConn{})
	r.Register("ROOM", "c", &fakeConn{})

	assert.Equal(t, []string{"a", "b", "c"}, r.ClientIDs("ROOM"))
	assert.Equal(t, 3, r.Count("ROOM"))
	assert.Equal(t, 0, r.Count("OTHER"))
}

func TestRegisterReplacesExistingClient(t *testing.T) {
	r := NewRegistry()
	old := &fakeConn{}
	oldID, replaced := r.Register("ROOM", "a", old)
	assert.Nil(t, replaced)
	r.Register("ROOM", "b", &fakeConn{})

	newer := &fakeConn{}
	newID, replaced := r.Register("ROOM", "a", newer)
	assert.Same(t, old, replaced)
	assert.NotEqual(t, oldID, newID)
	assert.Equal(t, []string{"a", "b"}, r.ClientIDs("ROOM"))

	// the stale connection cannot remove its successor
	assert.False(t, r.Unregister("ROOM", "a", oldID))
	assert.Equal(t, 2, r.Count("ROOM"))
	assert.True(t, r.Unregister("ROOM", "a", newID))
	assert.Equal(t, []string{"b"}, r.ClientIDs("ROOM"))
}

func TestUnregisterLastMemberRemovesRoom(t *testing.T) {
	r := NewRegistry()
	id, _ := r.Register("ROOM", "a", &fakeConn{})

	require.True(t, r.Unregister("ROOM", "a", id))
	r.mu.RLock()
	_, exists := r.rooms["ROOM"]
	r.mu.RUnlock()
	assert.False(t, exists)
	assert.False(t, r.Unregister("ROOM", "a", id))
}

func TestBroadcastSwallowsSendFailures(t *testing.T) {
	r := NewRegistry()
	first := &fakeConn{}
	broken := &fakeConn{fail: true}
	last := &fakeConn{}
	r.Register("ROOM", "a", first)
	r.Register("ROOM", "b", broken)
	r.Register("ROOM", "c", last)
	other := &fakeConn{}
	r.Register("OTHER", "z", other)

	delivered := r.Broadcast("ROOM", map[string]string{"type": "PING"})

	assert.Equal(t, 2, delivered)
	assert.Equal(t, []string{`{"type":"PING"}`}, first.messages())
	assert.Equal(t, []string{`{"type":"PING"}`}, last.messages())
	assert.Empty(t, other.messages())
	// failures are not cleaned up by broadcast
	assert.Equal(t, 3, r.Count("ROOM"))
}

func TestBroadcastUnmarshalableValue(t *testing.T) {
	r := NewRegistry()
	c := &fakeConn{}
	r.Register("ROOM", "a", c)

	assert.Equal(t, 0, r.Broadcast("ROOM", func() {}))
	assert.Empty(t, c.messages())
}

func TestBroadcastConcurrentWithRegistration(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			id, _ := r.Register("ROOM", string(rune('a'+i%26))+"x", &fakeConn{})
			r.Unregister("ROOM", string(rune('a'+i%26))+"x", id)
		}()
		go func() {
			defer wg.Done()
			r.Broadcast("ROOM", "tick")
		}()
	}
	wg.Wait()
}

func TestCloseAll(t *testing.T) {
	r := NewRegistry()
	a, b := &fakeConn{}, &fakeConn{}
	r.Register("ONE", "a", a)
	r.Register("TWO", "b", b)

	r.CloseAll(1001, "shutting down")

	assert.True(t, a.closed)
	assert.True(t, b.closed)
	assert.Equal(t, 1001, b.code)
}
