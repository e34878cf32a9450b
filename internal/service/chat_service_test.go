package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatSend(t *testing.T) {
	rooms, _, chat, st, _ := newTestServices()
	ctx := context.Background()

	room, err := rooms.Create(ctx, "host", "Ada", battleSettings())
	require.NoError(t, err)
	code := room.Code

	msg, err := chat.Send(ctx, code, "host", "  hello there  ")
	require.NoError(t, err)
	assert.Equal(t, "hello there", msg.Text)
	assert.Equal(t, "Ada", msg.SenderName)

	_, err = chat.Send(ctx, code, "host", "second")
	require.NoError(t, err)

	snap, _ := st.Snapshot(ctx, code)
	require.Len(t, snap.Messages, 2)
	assert.Equal(t, "hello there", snap.Messages[0].Text)
	assert.Equal(t, "second", snap.Messages[1].Text)
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	rooms, _, chat, _, _ := newTestServices()
	ctx := context.Background()

	room, err := rooms.Create(ctx, "host", "Ada", battleSettings())
	require.NoError(t, err)

	_, err = chat.Send(ctx, room.Code, "host", "   ")
	assert.True(t, errors.Is(err, ErrEmptyMessage))
}

func TestChatRejectsNonMember(t *testing.T) {
	rooms, _, chat, _, _ := newTestServices()
	ctx := context.Background()

	room, err := rooms.Create(ctx, "host", "Ada", battleSettings())
	require.NoError(t, err)

	_, err = chat.Send(ctx, room.Code, "stranger", "hi")
	assert.True(t, errors.Is(err, ErrNotMember))
}

func TestChatRoomNotFound(t *testing.T) {
	_, _, chat, _, _ := newTestServices()

	_, err := chat.Send(context.Background(), "ZZZZZZ", "host", "hi")
	assert.True(t, errors.Is(err, ErrRoomNotFound))
}
