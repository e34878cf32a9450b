package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"quizclash/internal/cache"
	"quizclash/internal/model"
	"quizclash/internal/quiz"
	"quizclash/internal/session"
	"quizclash/internal/store"
)

// RoomService owns room lifecycle and membership: create, join, settings,
// readiness, start/restart, cursor advance and leave. Write ownership follows
// the room contract: settings, seed and cursor move only on behalf of the
// host; every participant row is written only on behalf of its own player.
type RoomService struct {
	store       store.Store
	catalog     *quiz.Catalog
	leaderboard cache.LeaderboardCache
}

// NewRoomService creates a new room service.
func NewRoomService(st store.Store, catalog *quiz.Catalog, leaderboard cache.LeaderboardCache) *RoomService {
	return &RoomService{
		store:       st,
		catalog:     catalog,
		leaderboard: leaderboard,
	}
}

// Create generates a code, writes the room in lobby state and inserts the
// creator as host.
func (s *RoomService) Create(ctx context.Context, playerID, nickname string, settings model.RoomSettings) (*model.Room, error) {
	if err := s.validateSettings(&settings); err != nil {
		return nil, err
	}

	code, err := generateRoomCode(ctx, s.store.CodeInUse)
	if err != nil {
		return nil, fmt.Errorf("failed to generate room code: %w", err)
	}

	room := &model.Room{
		Code:      code,
		HostID:    playerID,
		Status:    model.RoomStatusLobby,
		Settings:  settings,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	host := &model.Participant{
		RoomCode:  code,
		PlayerID:  playerID,
		Name:      nickname,
		Connected: true,
		Answers:   make(map[string]model.Answer),
		JoinedAt:  time.Now(),
	}
	if err := s.store.SaveParticipant(ctx, host); err != nil {
		return nil, fmt.Errorf("failed to add host participant: %w", err)
	}
	if err := s.leaderboard.UpdateScore(ctx, code, playerID, 0); err != nil {
		log.Printf("room %s: initializing leaderboard: %v", code, err)
	}

	return room, nil
}

// Join adds a new participant, or flips an existing member back to connected.
// Rejoin is always idempotent and never counts against capacity.
func (s *RoomService) Join(ctx context.Context, code, playerID, nickname string) (*model.Participant, error) {
	snap, err := s.store.Snapshot(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to read room: %w", err)
	}
	if snap == nil {
		return nil, ErrRoomNotFound
	}

	if existing := snap.Participant(playerID); existing != nil {
		existing.Connected = true
		if nickname != "" && nickname != existing.Name {
			existing.Name = nickname
			if err := s.store.SaveParticipant(ctx, existing); err != nil {
				return nil, fmt.Errorf("failed to rejoin: %w", err)
			}
			return existing, nil
		}
		// Plain rejoin only touches the liveness flag, so it cannot race
		// out a sentinel answer landing in the same row.
		if err := s.store.SetConnected(ctx, code, playerID, true); err != nil {
			return nil, fmt.Errorf("failed to rejoin: %w", err)
		}
		return existing, nil
	}

	policy := session.PolicyFor(snap.Room.Settings.Mode)
	if limit := policy.Capacity(snap.Room.Settings); limit > 0 && len(snap.Participants) >= limit {
		return nil, ErrRoomFull
	}

	p := &model.Participant{
		RoomCode:  code,
		PlayerID:  playerID,
		Name:      nickname,
		Connected: true,
		Answers:   make(map[string]model.Answer),
		JoinedAt:  time.Now(),
	}
	if err := s.store.SaveParticipant(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to join room: %w", err)
	}
	if err := s.leaderboard.UpdateScore(ctx, code, playerID, 0); err != nil {
		log.Printf("room %s: initializing leaderboard: %v", code, err)
	}
	return p, nil
}

// UpdateSettings replaces the mutable settings. Host only, lobby only; the
// mode itself is fixed at creation.
func (s *RoomService) UpdateSettings(ctx context.Context, code, playerID string, settings model.RoomSettings) (*model.Room, error) {
	room, err := s.store.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	if err := Authorize(room, playerID, ActionUpdateSettings).Err(); err != nil {
		return nil, err
	}

	settings.Mode = room.Settings.Mode
	if err := s.validateSettings(&settings); err != nil {
		return nil, err
	}
	room.Settings = settings
	if err := s.store.UpdateRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}
	return room, nil
}

// SetReady flips the caller's own readiness flag while in the lobby.
func (s *RoomService) SetReady(ctx context.Context, code, playerID string, ready bool) error {
	snap, err := s.store.Snapshot(ctx, code)
	if err != nil {
		return err
	}
	if snap == nil {
		return ErrRoomNotFound
	}
	if snap.Room.Status != model.RoomStatusLobby {
		return fmt.Errorf("%w: readiness only changes in the lobby", ErrNotAllowed)
	}
	p := snap.Participant(playerID)
	if p == nil {
		return ErrNotMember
	}
	p.Ready = ready
	return s.store.SaveParticipant(ctx, p)
}

// Start begins a session from the lobby: fresh seed, reset progress for
// everyone, cursor at question zero.
func (s *RoomService) Start(ctx context.Context, code, playerID string) (*model.Room, error) {
	return s.begin(ctx, code, playerID, ActionStart)
}

// Restart re-enters an active session from finished with a new seed. Scores
// and answers always reset together with the seed change.
func (s *RoomService) Restart(ctx context.Context, code, playerID string) (*model.Room, error) {
	return s.begin(ctx, code, playerID, ActionRestart)
}

func (s *RoomService) begin(ctx context.Context, code, playerID string, action Action) (*model.Room, error) {
	snap, err := s.store.Snapshot(ctx, code)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, ErrRoomNotFound
	}
	room := snap.Room
	if err := Authorize(room, playerID, action).Err(); err != nil {
		return nil, err
	}

	policy := session.PolicyFor(room.Settings.Mode)
	if action == ActionStart && policy.ReadyRequired() {
		if limit := policy.Capacity(room.Settings); len(snap.Participants) < limit {
			return nil, fmt.Errorf("%w: need %d players", ErrNotReady, limit)
		}
		for _, p := range snap.Participants {
			if p.PlayerID != room.HostID && !p.Ready {
				return nil, ErrNotReady
			}
		}
	}
	if s.totalQuestions(room) == 0 {
		return nil, fmt.Errorf("%w: no questions for %s/%s", ErrInvalidSettings,
			room.Settings.SubjectID, room.Settings.TopicID)
	}

	// Reset every participant before flipping the room: a client that
	// observes the new status never sees stale scores survive the seed swap.
	for _, p := range snap.Participants {
		p.ResetProgress()
		if err := s.store.SaveParticipant(ctx, p); err != nil {
			return nil, fmt.Errorf("failed to reset participant %s: %w", p.PlayerID, err)
		}
		if err := s.leaderboard.UpdateScore(ctx, code, p.PlayerID, 0); err != nil {
			log.Printf("room %s: resetting leaderboard: %v", code, err)
		}
	}

	room.Seed = quiz.NewSeed()
	room.Status = policy.ActiveStatus()
	room.Cursor = model.Cursor{QuestionIndex: 0, QuestionStartedAt: time.Now()}
	if err := s.store.UpdateRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	return room, nil
}

// Advance moves the shared cursor to nextIndex, or finishes the session when
// the sequence is exhausted. Host only; requires the advance condition of the
// room's policy to hold for the current question, and never moves backwards.
func (s *RoomService) Advance(ctx context.Context, code, playerID string, nextIndex int) (*model.Room, error) {
	snap, err := s.store.Snapshot(ctx, code)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, ErrRoomNotFound
	}
	room := snap.Room
	if err := Authorize(room, playerID, ActionAdvance).Err(); err != nil {
		return nil, err
	}

	current := room.Cursor.QuestionIndex
	if nextIndex <= current {
		// Duplicate or stale request; the cursor is monotonic.
		return room, nil
	}
	if nextIndex != current+1 {
		return nil, fmt.Errorf("%w: can only advance to question %d", ErrNotAllowed, current+1)
	}

	policy := session.PolicyFor(room.Settings.Mode)
	if !policy.AllAnswered(snap.Participants, current) {
		return nil, ErrNotAllAnswered
	}

	if nextIndex >= s.totalQuestions(room) {
		room.Status = model.RoomStatusFinished
	} else {
		room.Cursor = model.Cursor{QuestionIndex: nextIndex, QuestionStartedAt: time.Now()}
	}
	if err := s.store.UpdateRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to advance: %w", err)
	}
	return room, nil
}

// Leave removes the caller. A leaving host deletes the whole room, cascading
// to participants and messages; anyone else only deletes their own row.
func (s *RoomService) Leave(ctx context.Context, code, playerID string) error {
	room, err := s.store.GetRoom(ctx, code)
	if err != nil {
		return err
	}
	if room == nil {
		return nil // already gone
	}
	if playerID == room.HostID {
		if err := s.store.DeleteRoom(ctx, code); err != nil {
			return fmt.Errorf("failed to close room: %w", err)
		}
		if err := s.leaderboard.Delete(ctx, code); err != nil {
			log.Printf("room %s: dropping leaderboard: %v", code, err)
		}
		return nil
	}
	if err := s.store.DeleteParticipant(ctx, code, playerID); err != nil {
		return fmt.Errorf("failed to leave room: %w", err)
	}
	if err := s.leaderboard.Remove(ctx, code, playerID); err != nil {
		log.Printf("room %s: removing %s from leaderboard: %v", code, playerID, err)
	}
	return nil
}

// SetConnected records liveness from the websocket layer into the
// participant's row. Missing rooms or rows are ignored; a late disconnect
// after the host closed the room must not resurrect anything.
func (s *RoomService) SetConnected(ctx context.Context, code, playerID string, connected bool) error {
	snap, err := s.store.Snapshot(ctx, code)
	if err != nil {
		return err
	}
	if snap == nil {
		return nil
	}
	p := snap.Participant(playerID)
	if p == nil {
		return nil
	}
	if p.Connected == connected {
		return nil
	}
	// Field-level write: a connect/disconnect flap must not rewrite the row
	// and clobber an answer committing at the same moment.
	return s.store.SetConnected(ctx, code, playerID, connected)
}

// Snapshot exposes the consistent room read for transports.
func (s *RoomService) Snapshot(ctx context.Context, code string) (*model.Snapshot, error) {
	return s.store.Snapshot(ctx, code)
}

func (s *RoomService) validateSettings(settings *model.RoomSettings) error {
	switch settings.Mode {
	case model.ModeBattle, model.ModeStudy:
	case "":
		settings.Mode = model.ModeBattle
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidSettings, settings.Mode)
	}
	if settings.QuestionCount < 0 || settings.SecondsPerQuestion < 0 || settings.MaxMembers < 0 {
		return fmt.Errorf("%w: negative values", ErrInvalidSettings)
	}
	if settings.SubjectID != "" && !s.catalog.HasTopic(settings.SubjectID, settings.TopicID) {
		return fmt.Errorf("%w: unknown topic %s/%s", ErrInvalidSettings, settings.SubjectID, settings.TopicID)
	}
	return nil
}

// totalQuestions is the derived sequence length: the configured count capped
// by the pool size, identically computed by every observer.
func (s *RoomService) totalQuestions(room *model.Room) int {
	pool := s.catalog.Pool(room.Settings.SubjectID, room.Settings.TopicID)
	n := len(pool)
	if c := room.Settings.QuestionCount; c > 0 && c < n {
		return c
	}
	return n
}
