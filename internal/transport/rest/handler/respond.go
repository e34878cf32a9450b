package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"quizclash/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrRoomNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrRoomFull):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrAlreadyAnswered):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrNotAllAnswered):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrNotAllowed):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrNotMember):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrNotReady):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrSessionNotActive):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidSettings), errors.Is(err, service.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// playerID reads the caller's client-generated identity. There is no account
// system: rooms are guarded by their opaque code, and the id only routes
// writes to the caller's own rows.
func playerID(r *http.Request) string {
	return r.Header.Get("X-Player-ID")
}
