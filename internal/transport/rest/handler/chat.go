package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"quizclash/internal/service"
)

// ChatHandler handles room chat.
type ChatHandler struct {
	chat *service.ChatService
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// SendRequest is the request body for a chat message.
type SendRequest struct {
	Text string `json:"text"`
}

// Send handles POST /v1/rooms/{code}/messages
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := h.chat.Send(r.Context(), code, playerID(r), req.Text)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}
