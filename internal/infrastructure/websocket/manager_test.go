package websocket

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterDisplacesPreviousClient(t *testing.T) {
	m := NewManager()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	first := &Client{Channel: "dealer_D1", Send: make(chan []byte, 1)}
	second := &Client{Channel: "dealer_D1", Send: make(chan []byte, 1)}

	m.Register <- first
	m.Register <- second

	// The displaced client's queue is closed so its write pump exits.
	_, open := <-first.Send
	assert.False(t, open)

	// Messages for the channel reach the replacement.
	m.SendToUser("dealer_D1", []byte("hello"))
	require.Equal(t, []byte("hello"), <-second.Send)
}

func TestStaleUnregisterKeepsReplacement(t *testing.T) {
	m := NewManager()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	first := &Client{Channel: "U1", Send: make(chan []byte, 1)}
	second := &Client{Channel: "U1", Send: make(chan []byte, 1)}

	m.Register <- first
	m.Register <- second
	_, open := <-first.Send
	require.False(t, open)

	// The displaced client's read pump unregisters after the replacement
	// took the channel; the replacement must stay connected.
	m.Unregister <- first

	m.Broadcast([]byte("still here"))
	require.Equal(t, []byte("still here"), <-second.Send)
}
