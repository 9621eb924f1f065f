package communication

import (
	"context"
	"errors"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var ErrHubStopped = errors.New("websocket hub stopped")

// WebSocketManager fans events out to every connected client. A single
// goroutine (Run) owns the client set.
type WebSocketManager struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan Event
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	mu         sync.RWMutex
	logger     *zap.Logger
}

func NewWebSocketManager(logger *zap.Logger) *WebSocketManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebSocketManager{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan Event, 16),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves registrations and broadcasts until ctx is cancelled, then
// closes every client.
func (manager *WebSocketManager) Run(ctx context.Context) {
	defer func() {
		close(manager.done)
		manager.mu.Lock()
		for client := range manager.clients {
			client.Close()
			delete(manager.clients, client)
		}
		manager.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-manager.register:
			manager.mu.Lock()
			manager.clients[client] = true
			manager.mu.Unlock()
			manager.logger.Debug("WebSocket client registered", zap.String("remote", client.RemoteAddr().String()))

		case client := <-manager.unregister:
			manager.mu.Lock()
			if _, ok := manager.clients[client]; ok {
				delete(manager.clients, client)
				client.Close()
			}
			manager.mu.Unlock()

		case event := <-manager.broadcast:
			manager.mu.Lock()
			for client := range manager.clients {
				if err := client.WriteJSON(event); err != nil {
					manager.logger.Warn("WebSocket write failed", zap.Error(err))
					client.Close()
					delete(manager.clients, client)
				}
			}
			manager.mu.Unlock()
		}
	}
}

// Publish queues event for broadcast
func (manager *WebSocketManager) Publish(ctx context.Context, event Event) error {
	select {
	case manager.broadcast <- event:
		return nil
	case <-manager.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Register adds a connection to the broadcast set
func (manager *WebSocketManager) Register(ctx context.Context, conn *websocket.Conn) error {
	select {
	case manager.register <- conn:
		return nil
	case <-manager.done:
		conn.Close()
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Unregister removes and closes a connection
func (manager *WebSocketManager) Unregister(conn *websocket.Conn) {
	select {
	case manager.unregister <- conn:
	case <-manager.done:
	}
}

// ClientCount returns the number of connected clients
func (manager *WebSocketManager) ClientCount() int {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return len(manager.clients)
}
