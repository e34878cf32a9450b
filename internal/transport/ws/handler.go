package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"quizclash/internal/service"
	"quizclash/internal/watch"
)

var _ watch.Broadcaster = (*Hub)(nil)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // allow all origins for dev
	},
}

// Handler upgrades room observers to WebSocket connections. Mutations stay on
// the REST surface; the socket only carries snapshots downstream.
type Handler struct {
	hub     *Hub
	rooms   *service.RoomService
	watcher *watch.Manager
}

// NewHandler creates a new WebSocket handler.
func NewHandler(hub *Hub, rooms *service.RoomService, watcher *watch.Manager) *Handler {
	return &Handler{
		hub:     hub,
		rooms:   rooms,
		watcher: watcher,
	}
}

// RoomWS handles GET /v1/ws/rooms/{code}?playerId=...
func (h *Handler) RoomWS(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	playerID := r.URL.Query().Get("playerId")
	if playerID == "" {
		http.Error(w, "missing playerId", http.StatusBadRequest)
		return
	}

	snap, err := h.rooms.Snapshot(r.Context(), code)
	if err != nil {
		http.Error(w, "failed to read room", http.StatusInternalServerError)
		return
	}
	if snap == nil {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	if snap.Participant(playerID) == nil {
		http.Error(w, "join the room first", http.StatusForbidden)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	conn := &Connection{
		RoomCode: code,
		PlayerID: playerID,
		Send:     make(chan []byte, 256),
		Hub:      h.hub,
	}

	// Seed the connection with the state we just read; the watcher takes
	// over from the next change on.
	if data, err := json.Marshal(snap); err == nil {
		envelope, _ := json.Marshal(&Message{Type: MsgSnapshot, Payload: data})
		conn.Send <- envelope
	}

	h.hub.Register(conn)
	h.watcher.Ensure(code, snap.Room.Settings.Mode)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, _, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
		// Clients do not send messages over the socket; mutations go
		// through REST so every write path shares one validation story.
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
