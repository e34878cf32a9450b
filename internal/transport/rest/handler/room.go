package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"quizclash/internal/cache"
	"quizclash/internal/model"
	"quizclash/internal/service"
	"quizclash/internal/watch"
)

// RoomHandler handles room lifecycle endpoints.
type RoomHandler struct {
	rooms       *service.RoomService
	leaderboard cache.LeaderboardCache
	watcher     *watch.Manager
}

// NewRoomHandler creates a new room handler.
func NewRoomHandler(rooms *service.RoomService, leaderboard cache.LeaderboardCache, watcher *watch.Manager) *RoomHandler {
	return &RoomHandler{
		rooms:       rooms,
		leaderboard: leaderboard,
		watcher:     watcher,
	}
}

// CreateRoomRequest is the request body for creating a room.
type CreateRoomRequest struct {
	Nickname string             `json:"nickname"`
	PlayerID string             `json:"playerId,omitempty"`
	Settings model.RoomSettings `json:"settings"`
}

// Create handles POST /v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PlayerID == "" {
		req.PlayerID = "p_" + uuid.New().String()[:8]
	}

	room, err := h.rooms.Create(r.Context(), req.PlayerID, req.Nickname, req.Settings)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.watcher.Ensure(room.Code, room.Settings.Mode)

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"room":     room,
		"playerId": req.PlayerID,
	})
}

// JoinRequest is the request body for joining a room.
type JoinRequest struct {
	Nickname string `json:"nickname"`
	PlayerID string `json:"playerId,omitempty"`
}

// Join handles POST /v1/rooms/{code}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PlayerID == "" {
		req.PlayerID = "p_" + uuid.New().String()[:8]
	}

	participant, err := h.rooms.Join(r.Context(), code, req.PlayerID, req.Nickname)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	snap, err := h.rooms.Snapshot(r.Context(), code)
	if err != nil || snap == nil {
		writeError(w, http.StatusInternalServerError, "failed to read room")
		return
	}
	h.watcher.Ensure(code, snap.Room.Settings.Mode)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"playerId": participant.PlayerID,
		"room":     snap.Room,
	})
}

// Get handles GET /v1/rooms/{code}: one full snapshot.
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	snap, err := h.rooms.Snapshot(r.Context(), code)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if snap == nil {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// UpdateSettings handles PUT /v1/rooms/{code}/settings
func (h *RoomHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var settings model.RoomSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	room, err := h.rooms.UpdateSettings(r.Context(), code, playerID(r), settings)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// ReadyRequest is the request body for the readiness toggle.
type ReadyRequest struct {
	Ready bool `json:"ready"`
}

// SetReady handles POST /v1/rooms/{code}/ready
func (h *RoomHandler) SetReady(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req ReadyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.rooms.SetReady(r.Context(), code, playerID(r), req.Ready); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ready": req.Ready})
}

// Start handles POST /v1/rooms/{code}/start
func (h *RoomHandler) Start(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	room, err := h.rooms.Start(r.Context(), code, playerID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// Restart handles POST /v1/rooms/{code}/restart
func (h *RoomHandler) Restart(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	room, err := h.rooms.Restart(r.Context(), code, playerID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// AdvanceRequest is the request body for a manual cursor advance.
type AdvanceRequest struct {
	NextIndex int `json:"nextIndex"`
}

// Advance handles POST /v1/rooms/{code}/advance. Battles advance on their
// own; this is the study-room host's "next question" control.
func (h *RoomHandler) Advance(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req AdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	room, err := h.rooms.Advance(r.Context(), code, playerID(r), req.NextIndex)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// Leave handles POST /v1/rooms/{code}/leave
func (h *RoomHandler) Leave(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	if err := h.rooms.Leave(r.Context(), code, playerID(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

// Leaderboard handles GET /v1/rooms/{code}/leaderboard
func (h *RoomHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	entries, err := h.leaderboard.GetTop(r.Context(), code, 20)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"leaderboard": entries})
}
