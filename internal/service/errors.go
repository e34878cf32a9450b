package service

import "errors"

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomFull         = errors.New("room is full")
	ErrNotMember        = errors.New("not a member of this room")
	ErrNotAllowed       = errors.New("not allowed")
	ErrAlreadyAnswered  = errors.New("answer already recorded for this question")
	ErrSessionNotActive = errors.New("session is not active")
	ErrNotAllAnswered   = errors.New("waiting for answers")
	ErrEmptyMessage     = errors.New("message is empty")
	ErrInvalidSettings  = errors.New("invalid room settings")
	ErrNotReady         = errors.New("participants are not ready")
)
