package watch

import (
	"context"
	"errors"

	"quizclash/internal/service"
	"quizclash/internal/session"
)

// serviceActions adapts the room and answer services to the narrow mutation
// surface the session controller is allowed to use.
type serviceActions struct {
	rooms   *service.RoomService
	answers *service.AnswerService
}

// NewActions wires the controller's mutations to the services.
func NewActions(rooms *service.RoomService, answers *service.AnswerService) session.Actions {
	return &serviceActions{rooms: rooms, answers: answers}
}

func (a *serviceActions) Advance(ctx context.Context, code, playerID string, nextIndex int) error {
	_, err := a.rooms.Advance(ctx, code, playerID, nextIndex)
	return err
}

func (a *serviceActions) SubmitAnswer(ctx context.Context, code, playerID string, index, selected int) error {
	_, err := a.answers.Submit(ctx, code, playerID, index, selected)
	if errors.Is(err, service.ErrAlreadyAnswered) {
		// The participant answered in the race window; their write wins.
		return nil
	}
	return err
}
