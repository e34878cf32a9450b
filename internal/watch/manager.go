package watch

import (
	"context"
	"log"
	"sync"

	"quizclash/internal/model"
	"quizclash/internal/session"
	"quizclash/internal/store"
)

// Broadcaster fans a fresh snapshot out to every client observing a room.
// Implemented by the websocket hub.
type Broadcaster interface {
	BroadcastSnapshot(roomCode string, snap *model.Snapshot)
	BroadcastRoomClosed(roomCode string)
}

// Manager runs one watcher per live room. A watcher subscribes to the room's
// change channel and, on every signal, re-reads one full snapshot and pushes
// it whole: to connected clients via the hub, and to the room's session
// controller. No observer ever sees a partial patch.
type Manager struct {
	store   store.Store
	hub     Broadcaster
	actions session.Actions

	ctx     context.Context
	mu      sync.Mutex
	running map[string]*watcher
}

type watcher struct {
	cancel context.CancelFunc
}

// NewManager creates the watcher manager. ctx bounds every watcher it starts.
func NewManager(ctx context.Context, st store.Store, hub Broadcaster, actions session.Actions) *Manager {
	return &Manager{
		store:   st,
		hub:     hub,
		actions: actions,
		ctx:     ctx,
		running: make(map[string]*watcher),
	}
}

// Ensure starts a watcher for the room if one is not already running.
func (m *Manager) Ensure(code string, mode model.RoomMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.running[code]; ok {
		return
	}

	signals, unsubscribe, err := m.store.Subscribe(m.ctx, code)
	if err != nil {
		log.Printf("room %s: subscribing: %v", code, err)
		return
	}

	ctx, cancel := context.WithCancel(m.ctx)
	w := &watcher{cancel: cancel}
	m.running[code] = w
	go m.watch(ctx, code, mode, w, signals, unsubscribe)
	log.Printf("room %s: watcher started", code)
}

// release frees the room's slot so Ensure can start a replacement. The guard
// keeps a dying watcher from tearing down a newer one for the same code.
func (m *Manager) release(code string, w *watcher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running[code] == w {
		w.cancel()
		delete(m.running, code)
	}
}

func (m *Manager) watch(ctx context.Context, code string, mode model.RoomMode, w *watcher, signals <-chan struct{}, unsubscribe func()) {
	defer unsubscribe()
	defer m.release(code, w)

	controller := session.NewController(code, session.PolicyFor(mode), m.actions)
	snapshots := make(chan *model.Snapshot, 1)
	go controller.Run(ctx, snapshots)
	defer close(snapshots)

	// latest-wins hand-off: the controller only ever needs the newest view
	push := func(snap *model.Snapshot) {
		for {
			select {
			case snapshots <- snap:
				return
			default:
				select {
				case <-snapshots:
				default:
				}
			}
		}
	}

	refetch := func() (alive bool) {
		snap, err := m.store.Snapshot(ctx, code)
		if err != nil {
			log.Printf("room %s: refetching snapshot: %v", code, err)
			return true
		}
		if snap == nil {
			return false
		}
		m.hub.BroadcastSnapshot(code, snap)
		push(snap)
		return true
	}

	if !refetch() {
		m.closeRoom(code)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-signals:
			if !ok {
				log.Printf("room %s: change feed closed, watcher stopped", code)
				return
			}
			if !refetch() {
				m.closeRoom(code)
				return
			}
		}
	}
}

func (m *Manager) closeRoom(code string) {
	m.hub.BroadcastRoomClosed(code)
	log.Printf("room %s: watcher stopped, room deleted", code)
}
