package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"quizclash/internal/model"
)

func TestAuthorize(t *testing.T) {
	room := func(status model.RoomStatus) *model.Room {
		return &model.Room{Code: "ABCDEF", HostID: "host", Status: status}
	}

	tests := []struct {
		name    string
		room    *model.Room
		player  string
		action  Action
		allowed bool
	}{
		{"host updates settings in lobby", room(model.RoomStatusLobby), "host", ActionUpdateSettings, true},
		{"guest updates settings", room(model.RoomStatusLobby), "guest", ActionUpdateSettings, false},
		{"settings after start", room(model.RoomStatusPlaying), "host", ActionUpdateSettings, false},
		{"host starts from lobby", room(model.RoomStatusLobby), "host", ActionStart, true},
		{"start while playing", room(model.RoomStatusPlaying), "host", ActionStart, false},
		{"restart after finish", room(model.RoomStatusFinished), "host", ActionRestart, true},
		{"restart from lobby", room(model.RoomStatusLobby), "host", ActionRestart, false},
		{"guest restarts", room(model.RoomStatusFinished), "guest", ActionRestart, false},
		{"host advances while playing", room(model.RoomStatusPlaying), "host", ActionAdvance, true},
		{"host advances while studying", room(model.RoomStatusStudying), "host", ActionAdvance, true},
		{"advance in lobby", room(model.RoomStatusLobby), "host", ActionAdvance, false},
		{"guest advances", room(model.RoomStatusPlaying), "guest", ActionAdvance, false},
		{"nil room", nil, "host", ActionStart, false},
		{"unknown action", room(model.RoomStatusLobby), "host", Action("promote"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perm := Authorize(tt.room, tt.player, tt.action)
			assert.Equal(t, tt.allowed, perm.Allowed)
			if tt.allowed {
				assert.NoError(t, perm.Err())
			} else {
				assert.True(t, errors.Is(perm.Err(), ErrNotAllowed))
				assert.NotEmpty(t, perm.Reason)
			}
		})
	}
}
