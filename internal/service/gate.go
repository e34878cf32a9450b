package service

import (
	"fmt"

	"quizclash/internal/model"
)

// Action is a host-only mutation on the shared room record.
type Action string

const (
	ActionUpdateSettings Action = "update_settings"
	ActionStart          Action = "start"
	ActionRestart        Action = "restart"
	ActionAdvance        Action = "advance"
)

// Permission is the typed result of an authorization check. Denials carry a
// reason instead of silently dropping the action, so the behavior is explicit
// and testable even though callers may still choose not to surface it.
type Permission struct {
	Allowed bool
	Reason  string
}

func allow() Permission             { return Permission{Allowed: true} }
func deny(reason string) Permission { return Permission{Reason: reason} }

// Err converts a denial to an error wrapping ErrNotAllowed.
func (p Permission) Err() error {
	if p.Allowed {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotAllowed, p.Reason)
}

// Authorize is the single gate consulted by every host-only mutation. The
// rules: all listed actions belong to the host, and each is bound to the
// lifecycle phase it may run in.
func Authorize(room *model.Room, playerID string, action Action) Permission {
	if room == nil {
		return deny("room not found")
	}
	if playerID != room.HostID {
		return deny("only the host may " + string(action))
	}
	switch action {
	case ActionUpdateSettings, ActionStart:
		if room.Status != model.RoomStatusLobby {
			return deny(string(action) + " is only valid in the lobby")
		}
	case ActionRestart:
		if room.Status != model.RoomStatusFinished {
			return deny("restart is only valid after the session finished")
		}
	case ActionAdvance:
		if !room.Status.Active() {
			return deny("advance is only valid during an active session")
		}
	default:
		return deny("unknown action " + string(action))
	}
	return allow()
}
