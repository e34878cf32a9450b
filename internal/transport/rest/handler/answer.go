package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"quizclash/internal/service"
)

// AnswerHandler handles answer submission.
type AnswerHandler struct {
	answers *service.AnswerService
}

// NewAnswerHandler creates a new answer handler.
func NewAnswerHandler(answers *service.AnswerService) *AnswerHandler {
	return &AnswerHandler{answers: answers}
}

// SubmitRequest is the request body for an answer.
type SubmitRequest struct {
	Index    int `json:"index"`
	Selected int `json:"selected"`
}

// Submit handles POST /v1/rooms/{code}/answers
func (h *AnswerHandler) Submit(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answer, err := h.answers.Submit(r.Context(), code, playerID(r), req.Index, req.Selected)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}
