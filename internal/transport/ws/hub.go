package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"quizclash/internal/model"
)

// MessageType defines the type of WebSocket message.
type MessageType string

const (
	MsgSnapshot   MessageType = "snapshot"
	MsgRoomClosed MessageType = "room_closed"
)

// Message is the WebSocket envelope format.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Presence receives connect/disconnect transitions so the participant's
// `connected` flag tracks its socket.
type Presence interface {
	SetConnected(ctx context.Context, roomCode, playerID string, connected bool) error
}

// Hub manages WebSocket connections for rooms. Every participant in a room
// receives the same full snapshot on every change; the hub never sends
// incremental patches.
type Hub struct {
	conns map[string]map[string]*Connection // roomCode -> playerID -> conn

	mu       sync.RWMutex
	presence Presence

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *broadcastMessage
}

// Connection represents one participant's WebSocket connection.
type Connection struct {
	RoomCode string
	PlayerID string
	Send     chan []byte
	Hub      *Hub
}

type broadcastMessage struct {
	RoomCode string
	Message  *Message
}

// NewHub creates a new WebSocket hub.
func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[string]map[string]*Connection),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *broadcastMessage, 256),
	}
	go h.run()
	return h
}

// SetPresence wires liveness updates; must be called before connections
// arrive.
func (h *Hub) SetPresence(p Presence) {
	h.presence = p
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.RoomCode] == nil {
				h.conns[conn.RoomCode] = make(map[string]*Connection)
			}
			if old, ok := h.conns[conn.RoomCode][conn.PlayerID]; ok {
				close(old.Send)
			}
			h.conns[conn.RoomCode][conn.PlayerID] = conn
			h.mu.Unlock()
			log.Printf("player %s connected to room %s", conn.PlayerID, conn.RoomCode)
			h.setConnected(conn, true)

		case conn := <-h.unregister:
			h.mu.Lock()
			gone := false
			if players, ok := h.conns[conn.RoomCode]; ok {
				if existing, ok := players[conn.PlayerID]; ok && existing == conn {
					delete(players, conn.PlayerID)
					close(conn.Send)
					gone = true
				}
			}
			h.mu.Unlock()
			if gone {
				log.Printf("player %s disconnected from room %s", conn.PlayerID, conn.RoomCode)
				h.setConnected(conn, false)
			}

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)
			for _, conn := range h.conns[msg.RoomCode] {
				select {
				case conn.Send <- data:
				default:
					// Drop when the buffer is full; the next snapshot
					// supersedes this one anyway.
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) setConnected(conn *Connection, connected bool) {
	if h.presence == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.presence.SetConnected(ctx, conn.RoomCode, conn.PlayerID, connected); err != nil {
			log.Printf("room %s: marking %s connected=%v: %v", conn.RoomCode, conn.PlayerID, connected, err)
		}
	}()
}

// Register adds a connection.
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection.
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastSnapshot sends a full room snapshot to everyone in the room
// (implements watch.Broadcaster).
func (h *Hub) BroadcastSnapshot(roomCode string, snap *model.Snapshot) {
	data, _ := json.Marshal(snap)
	h.broadcast <- &broadcastMessage{
		RoomCode: roomCode,
		Message: &Message{
			Type:    MsgSnapshot,
			Payload: data,
		},
	}
}

// BroadcastRoomClosed tells everyone the host deleted the room
// (implements watch.Broadcaster).
func (h *Hub) BroadcastRoomClosed(roomCode string) {
	h.broadcast <- &broadcastMessage{
		RoomCode: roomCode,
		Message:  &Message{Type: MsgRoomClosed},
	}
}
