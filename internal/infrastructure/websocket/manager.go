package websocket

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"

	"printmarket/pkg/logger"
)

// Client represents one connected notification/chat consumer. Channel is
// the notification address the connection listens on: the user id for
// customers and admins, "dealer_<id>" for dealers.
type Client struct {
	Channel string
	Conn    *websocket.Conn
	Send    chan []byte
}

// Manager owns all active WebSocket connections. It is the fan-out side of
// the notification bus: remote contexts receive envelopes here and reload
// their state from storage.
type Manager struct {
	clients    map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	broadcast  chan []byte
	mutex      sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
	}
}

// Start runs the manager's main loop in a goroutine.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				// A reconnect displaces the previous connection on the
				// channel; closing its send queue ends its write pump.
				if old, ok := m.clients[client.Channel]; ok && old != client {
					close(old.Send)
				}
				m.clients[client.Channel] = client
				m.mutex.Unlock()
				logger.Info("Client registered: %s", client.Channel)

			case client := <-m.Unregister:
				m.mutex.Lock()
				// Only the current occupant unregisters; a displaced
				// client's queue is already closed and its channel entry
				// belongs to the replacement.
				if current, ok := m.clients[client.Channel]; ok && current == client {
					delete(m.clients, client.Channel)
					close(client.Send)
				}
				m.mutex.Unlock()
				logger.Info("Client unregistered: %s", client.Channel)

			case message := <-m.broadcast:
				m.mutex.Lock()
				for channel, client := range m.clients {
					select {
					case client.Send <- message:
					default:
						close(client.Send)
						delete(m.clients, channel)
					}
				}
				m.mutex.Unlock()

			case <-ctx.Done():
				return
			}
		}
	}()
}

// Broadcast fans a message out to every connected client.
func (m *Manager) Broadcast(message []byte) {
	m.broadcast <- message
}

// SendToUser sends a message to the client listening on the given channel.
// Unconnected targets are dropped; delivery is best-effort.
func (m *Manager) SendToUser(channel string, message []byte) {
	m.mutex.RLock()
	client, ok := m.clients[channel]
	m.mutex.RUnlock()

	if ok {
		select {
		case client.Send <- message:
		default:
			logger.Warn("Dropping message for slow client %s", channel)
		}
	}
}

// ReadPump drains incoming frames until the connection closes.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.Unregister <- c
		c.Conn.Close()
	}()

	for {
		_, _, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("websocket read: %v", err)
			}
			break
		}
	}
}

// WritePump sends queued messages to the connection.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		message, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			logger.Error("websocket write: %v", err)
			return
		}
	}
}
