package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quizclash/internal/model"
	"quizclash/internal/store"
)

// ChatService appends room-scoped chat lines. Any member may write; lines
// are never edited or removed.
type ChatService struct {
	store store.Store
}

// NewChatService creates a new chat service.
func NewChatService(st store.Store) *ChatService {
	return &ChatService{store: st}
}

// Send appends a trimmed, non-empty message from the caller.
func (s *ChatService) Send(ctx context.Context, code, playerID, text string) (*model.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	snap, err := s.store.Snapshot(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to read room: %w", err)
	}
	if snap == nil {
		return nil, ErrRoomNotFound
	}
	p := snap.Participant(playerID)
	if p == nil {
		return nil, ErrNotMember
	}

	msg := &model.Message{
		RoomCode:   code,
		SenderID:   playerID,
		SenderName: p.Name,
		Text:       text,
		CreatedAt:  time.Now(),
	}
	if err := s.store.AppendMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return msg, nil
}
