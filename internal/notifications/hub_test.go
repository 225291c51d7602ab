package notifications

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubRegisterEnforcesConnectionCap(t *testing.T) {
	hub := NewHub()

	clients := make([]*Client, 0, maxConnsPerUser)
	for i := 0; i < maxConnsPerUser; i++ {
		c := NewClient(1, nil)
		require.True(t, hub.Register(c))
		clients = append(clients, c)
	}

	extra := NewClient(1, nil)
	assert.False(t, hub.Register(extra), "connection above the cap must be refused")

	// Another user is unaffected by the first user's cap.
	assert.True(t, hub.Register(NewClient(2, nil)))

	hub.Unregister(clients[0])
	assert.True(t, hub.Register(extra), "freeing a slot admits a new connection")
}

func TestHubSendToUserFansOut(t *testing.T) {
	hub := NewHub()

	a := NewClient(1, nil)
	b := NewClient(1, nil)
	other := NewClient(2, nil)
	require.True(t, hub.Register(a))
	require.True(t, hub.Register(b))
	require.True(t, hub.Register(other))

	hub.SendToUser(1, []byte("hello"))

	assert.Equal(t, "hello", string(<-a.send))
	assert.Equal(t, "hello", string(<-b.send))
	assert.Empty(t, other.send)
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub()

	slow := NewClient(1, nil)
	require.True(t, hub.Register(slow))

	for i := 0; i < sendBufferSize; i++ {
		hub.SendToUser(1, []byte("x"))
	}
	// Buffer full: the next send must unregister instead of blocking.
	hub.SendToUser(1, []byte("overflow"))

	hub.mu.RLock()
	_, stillRegistered := hub.clients[1]
	hub.mu.RUnlock()
	assert.False(t, stillRegistered)
}

// Fan-outs racing disconnects must never write to a closed send channel.
func TestHubConcurrentSendAndDisconnect(t *testing.T) {
	hub := NewHub()

	for iter := 0; iter < 50; iter++ {
		clients := make([]*Client, 0, maxConnsPerUser)
		for i := 0; i < maxConnsPerUser; i++ {
			c := NewClient(1, nil)
			require.True(t, hub.Register(c))
			clients = append(clients, c)
		}
		// Saturate the buffers so every racing send takes the drop path.
		for i := 0; i < sendBufferSize; i++ {
			hub.SendToUser(1, []byte("x"))
		}

		var wg sync.WaitGroup
		start := make(chan struct{})
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				hub.SendToUser(1, []byte("y"))
			}()
		}
		for _, c := range clients {
			wg.Add(1)
			go func(c *Client) {
				defer wg.Done()
				<-start
				hub.Unregister(c)
			}(c)
		}
		close(start)
		wg.Wait()

		hub.mu.RLock()
		_, stillRegistered := hub.clients[1]
		hub.mu.RUnlock()
		assert.False(t, stillRegistered)
	}
}

func TestHubShutdownRefusesNewClients(t *testing.T) {
	hub := NewHub()

	c := NewClient(1, nil)
	require.True(t, hub.Register(c))

	hub.Shutdown()

	_, open := <-c.send
	assert.False(t, open, "shutdown closes client send channels")
	assert.False(t, hub.Register(NewClient(2, nil)))
}
