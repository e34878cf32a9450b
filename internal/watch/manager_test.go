package watch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"quizclash/internal/model"
)

// watchStore stubs the room state store down to the two calls the manager
// makes: Snapshot and Subscribe.
type watchStore struct {
	mu         sync.Mutex
	snap       *model.Snapshot
	signals    chan struct{}
	subscribes int
}

func newWatchStore(snap *model.Snapshot) *watchStore {
	return &watchStore{snap: snap, signals: make(chan struct{}, 4)}
}

func (s *watchStore) setSnapshot(snap *model.Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

func (s *watchStore) Snapshot(context.Context, string) (*model.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap, nil
}

func (s *watchStore) Subscribe(context.Context, string) (<-chan struct{}, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribes++
	return s.signals, func() {}, nil
}

func (s *watchStore) subscribeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscribes
}

// closeSignals tears down the current feed the way a dropped subscription
// would; a later Subscribe gets a fresh channel.
func (s *watchStore) closeSignals() {
	s.mu.Lock()
	defer s.mu.Unlock()
	close(s.signals)
	s.signals = make(chan struct{}, 4)
}

func (s *watchStore) CreateRoom(context.Context, *model.Room) error { return nil }
func (s *watchStore) GetRoom(context.Context, string) (*model.Room, error) { return nil, nil }
func (s *watchStore) UpdateRoom(context.Context, *model.Room) error { return nil }
func (s *watchStore) DeleteRoom(context.Context, string) error { return nil }
func (s *watchStore) SaveParticipant(context.Context, *model.Participant) error { return nil }
func (s *watchStore) DeleteParticipant(context.Context, string, string) error { return nil }
func (s *watchStore) AppendMessage(context.Context, *model.Message) error { return nil }
func (s *watchStore) RecordAnswer(context.Context, string, string, int, model.Answer, int, int) (bool, error) {
	return false, nil
}
func (s *watchStore) SetConnected(context.Context, string, string, bool) error { return nil }
func (s *watchStore) CodeInUse(context.Context, string) (bool, error) { return false, nil }

type recordingHub struct {
	mu        sync.Mutex
	snapshots []*model.Snapshot
	closed    []string
}

func (h *recordingHub) BroadcastSnapshot(_ string, snap *model.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snapshots = append(h.snapshots, snap)
}

func (h *recordingHub) BroadcastRoomClosed(code string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = append(h.closed, code)
}

func (h *recordingHub) snapshotCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.snapshots)
}

func (h *recordingHub) closedRooms() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.closed...)
}

type noopActions struct{}

func (noopActions) Advance(context.Context, string, string, int) error           { return nil }
func (noopActions) SubmitAnswer(context.Context, string, string, int, int) error { return nil }

func lobbySnapshot(code string) *model.Snapshot {
	return &model.Snapshot{
		Room: &model.Room{Code: code, HostID: "host", Status: model.RoomStatusLobby},
		Participants: []*model.Participant{
			{RoomCode: code, PlayerID: "host", Connected: true},
		},
	}
}

func TestManagerBroadcastsOnSignal(t *testing.T) {
	st := newWatchStore(lobbySnapshot("ABCDEF"))
	hub := &recordingHub{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager(ctx, st, hub, noopActions{})
	m.Ensure("ABCDEF", model.ModeBattle)

	// The watcher seeds observers with one snapshot up front.
	assert.Eventually(t, func() bool {
		return hub.snapshotCount() == 1
	}, time.Second, 5*time.Millisecond)

	// Each change signal triggers one full refetch and broadcast.
	st.setSnapshot(lobbySnapshot("ABCDEF"))
	st.signals <- struct{}{}
	assert.Eventually(t, func() bool {
		return hub.snapshotCount() == 2
	}, time.Second, 5*time.Millisecond)
}

func TestManagerEnsureIsIdempotent(t *testing.T) {
	st := newWatchStore(lobbySnapshot("ABCDEF"))
	hub := &recordingHub{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager(ctx, st, hub, noopActions{})
	m.Ensure("ABCDEF", model.ModeBattle)
	m.Ensure("ABCDEF", model.ModeBattle)
	m.Ensure("ABCDEF", model.ModeBattle)

	assert.Eventually(t, func() bool {
		return hub.snapshotCount() == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, st.subscribeCount())
}

// A torn-down subscription must free the room's slot: otherwise Ensure
// treats the room as watched forever and fan-out stays dead until restart.
func TestManagerRestartsAfterFeedCloses(t *testing.T) {
	st := newWatchStore(lobbySnapshot("ABCDEF"))
	hub := &recordingHub{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager(ctx, st, hub, noopActions{})
	m.Ensure("ABCDEF", model.ModeBattle)
	assert.Eventually(t, func() bool {
		return hub.snapshotCount() == 1
	}, time.Second, 5*time.Millisecond)

	// The feed drops without the room being deleted.
	st.closeSignals()

	// Once the dead watcher releases its slot, Ensure starts a fresh one
	// against the new feed.
	assert.Eventually(t, func() bool {
		m.Ensure("ABCDEF", model.ModeBattle)
		return st.subscribeCount() == 2
	}, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool {
		return hub.snapshotCount() == 2
	}, time.Second, 5*time.Millisecond)

	// The room itself was never deleted.
	assert.Empty(t, hub.closedRooms())
}

func TestManagerClosesDeletedRoom(t *testing.T) {
	st := newWatchStore(lobbySnapshot("ABCDEF"))
	hub := &recordingHub{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager(ctx, st, hub, noopActions{})
	m.Ensure("ABCDEF", model.ModeBattle)

	assert.Eventually(t, func() bool {
		return hub.snapshotCount() == 1
	}, time.Second, 5*time.Millisecond)

	// The host left and the room cascade-deleted; the next refetch finds
	// nothing and the watcher announces the close.
	st.setSnapshot(nil)
	st.signals <- struct{}{}

	assert.Eventually(t, func() bool {
		return len(hub.closedRooms()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"ABCDEF"}, hub.closedRooms())

	// A fresh room under the same code can be watched again.
	st.setSnapshot(lobbySnapshot("ABCDEF"))
	assert.Eventually(t, func() bool {
		m.Ensure("ABCDEF", model.ModeBattle)
		return st.subscribeCount() == 2
	}, time.Second, 5*time.Millisecond)
}
