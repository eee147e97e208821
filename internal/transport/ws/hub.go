package ws

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub manages WebSocket connections for rooms. The host console gets
// one connection per room; players one each.
type Hub struct {
	hostConns   map[string]*Connection
	playerConns map[string]map[string]*Connection // roomCode -> playerID -> conn

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *broadcastMessage

	logger zerolog.Logger
}

// Connection represents a WebSocket connection
type Connection struct {
	RoomCode string
	PlayerID string // Empty for host console connections
	IsHost   bool
	Send     chan []byte
}

type broadcastMessage struct {
	roomCode   string
	toPlayer   string // Empty means everyone in the room
	disconnect bool
	message    *Message
}

// NewHub creates a new WebSocket hub
func NewHub(logger zerolog.Logger) *Hub {
	h := &Hub{
		hostConns:   make(map[string]*Connection),
		playerConns: make(map[string]map[string]*Connection),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan *broadcastMessage, 256),
		logger:      logger,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if conn.IsHost {
				h.hostConns[conn.RoomCode] = conn
				h.logger.Debug().Str("room", conn.RoomCode).Msg("host console connected")
			} else {
				if h.playerConns[conn.RoomCode] == nil {
					h.playerConns[conn.RoomCode] = make(map[string]*Connection)
				}
				h.playerConns[conn.RoomCode][conn.PlayerID] = conn
				h.logger.Debug().Str("room", conn.RoomCode).Str("player", conn.PlayerID).Msg("player connected")
			}
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if conn.IsHost {
				if existing, ok := h.hostConns[conn.RoomCode]; ok && existing == conn {
					delete(h.hostConns, conn.RoomCode)
					close(conn.Send)
				}
			} else {
				if players, ok := h.playerConns[conn.RoomCode]; ok {
					if existing, ok := players[conn.PlayerID]; ok && existing == conn {
						delete(players, conn.PlayerID)
						close(conn.Send)
					}
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			if msg.disconnect {
				h.closeRoom(msg.roomCode)
				continue
			}
			h.deliver(msg)
		}
	}
}

func (h *Hub) deliver(msg *broadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, _ := json.Marshal(msg.message)

	if msg.toPlayer != "" {
		if players, ok := h.playerConns[msg.roomCode]; ok {
			if conn, ok := players[msg.toPlayer]; ok {
				send(conn, data)
			}
		}
		return
	}

	if conn, ok := h.hostConns[msg.roomCode]; ok {
		send(conn, data)
	}
	if players, ok := h.playerConns[msg.roomCode]; ok {
		for _, conn := range players {
			send(conn, data)
		}
	}
}

func (h *Hub) closeRoom(roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn, ok := h.hostConns[roomCode]; ok {
		delete(h.hostConns, roomCode)
		close(conn.Send)
	}
	for _, conn := range h.playerConns[roomCode] {
		close(conn.Send)
	}
	delete(h.playerConns, roomCode)
}

// send drops the message if the connection's buffer is full.
func send(conn *Connection, data []byte) {
	select {
	case conn.Send <- data:
	default:
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToRoom sends a message to everyone in a room (implements service.Broadcaster)
func (h *Hub) BroadcastToRoom(roomCode string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &broadcastMessage{
		roomCode: roomCode,
		message:  &Message{Type: msgType, Payload: data},
	}
}

// BroadcastToPlayer sends a message to a specific player (implements service.Broadcaster)
func (h *Hub) BroadcastToPlayer(roomCode, playerID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &broadcastMessage{
		roomCode: roomCode,
		toPlayer: playerID,
		message:  &Message{Type: msgType, Payload: data},
	}
}

// DisconnectRoom closes every connection in a room (implements service.Broadcaster)
func (h *Hub) DisconnectRoom(roomCode string) {
	h.broadcast <- &broadcastMessage{
		roomCode:   roomCode,
		disconnect: true,
	}
}
