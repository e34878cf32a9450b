package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"quizclash/internal/cache"
	"quizclash/internal/model"
	"quizclash/internal/quiz"
)

// fakeStore is an in-memory room state store. It copies on every read and
// write so callers never share memory with it, matching how the real store
// round-trips documents through the driver.
type fakeStore struct {
	mu           sync.Mutex
	rooms        map[string]*model.Room
	participants map[string]map[string]*model.Participant
	messages     map[string][]*model.Message
	failWrites   bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rooms:        make(map[string]*model.Room),
		participants: make(map[string]map[string]*model.Participant),
		messages:     make(map[string][]*model.Message),
	}
}

func copyRoom(r *model.Room) *model.Room {
	if r == nil {
		return nil
	}
	out := *r
	return &out
}

func copyParticipant(p *model.Participant) *model.Participant {
	out := *p
	out.Answers = make(map[string]model.Answer, len(p.Answers))
	for k, v := range p.Answers {
		out.Answers[k] = v
	}
	return &out
}

func (s *fakeStore) CreateRoom(_ context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return errors.New("store write failed")
	}
	s.rooms[room.Code] = copyRoom(room)
	return nil
}

func (s *fakeStore) GetRoom(_ context.Context, code string) (*model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyRoom(s.rooms[code]), nil
}

func (s *fakeStore) UpdateRoom(_ context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return errors.New("store write failed")
	}
	if _, ok := s.rooms[room.Code]; !ok {
		return errors.New("room does not exist")
	}
	s.rooms[room.Code] = copyRoom(room)
	return nil
}

func (s *fakeStore) DeleteRoom(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, code)
	delete(s.participants, code)
	delete(s.messages, code)
	return nil
}

func (s *fakeStore) SaveParticipant(_ context.Context, p *model.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return errors.New("store write failed")
	}
	if s.participants[p.RoomCode] == nil {
		s.participants[p.RoomCode] = make(map[string]*model.Participant)
	}
	s.participants[p.RoomCode][p.PlayerID] = copyParticipant(p)
	return nil
}

func (s *fakeStore) RecordAnswer(_ context.Context, code, playerID string, index int, a model.Answer, points, bonus int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return false, errors.New("store write failed")
	}
	p := s.participants[code][playerID]
	if p == nil {
		return false, nil
	}
	if !p.SetAnswer(index, a) {
		return false, nil
	}
	p.Score += points
	p.SpeedBonus += bonus
	return true, nil
}

func (s *fakeStore) SetConnected(_ context.Context, code, playerID string, connected bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.participants[code][playerID]; p != nil {
		p.Connected = connected
	}
	return nil
}

func (s *fakeStore) DeleteParticipant(_ context.Context, code, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.participants[code], playerID)
	return nil
}

func (s *fakeStore) AppendMessage(_ context.Context, msg *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *msg
	stored.ID = fmt.Sprintf("m%d", len(s.messages[msg.RoomCode])+1)
	s.messages[msg.RoomCode] = append(s.messages[msg.RoomCode], &stored)
	return nil
}

func (s *fakeStore) Snapshot(_ context.Context, code string) (*model.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room := s.rooms[code]
	if room == nil {
		return nil, nil
	}
	var participants []*model.Participant
	for _, p := range s.participants[code] {
		participants = append(participants, copyParticipant(p))
	}
	sort.Slice(participants, func(i, j int) bool {
		if !participants[i].JoinedAt.Equal(participants[j].JoinedAt) {
			return participants[i].JoinedAt.Before(participants[j].JoinedAt)
		}
		return participants[i].PlayerID < participants[j].PlayerID
	})
	var messages []*model.Message
	for _, m := range s.messages[code] {
		stored := *m
		messages = append(messages, &stored)
	}
	return &model.Snapshot{
		Room:         copyRoom(room),
		Participants: participants,
		Messages:     messages,
	}, nil
}

func (s *fakeStore) Subscribe(context.Context, string) (<-chan struct{}, func(), error) {
	return make(chan struct{}), func() {}, nil
}

func (s *fakeStore) CodeInUse(_ context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rooms[code]
	return ok, nil
}

// setAnswer records an answer directly, bypassing the answer service, for
// tests that only care about the advance condition.
func (s *fakeStore) setAnswer(code, playerID string, index int, a model.Answer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.participants[code][playerID]
	p.SetAnswer(index, a)
}

// staleReadStore serves a pinned snapshot for reads while writes keep going
// to the live store. It reproduces a writer that decided on an outdated view
// of the room, the way a timeout handler races a real answer.
type staleReadStore struct {
	*fakeStore
	pinned *model.Snapshot
}

func (s *staleReadStore) pin(snap *model.Snapshot) {
	s.pinned = snap
}

func (s *staleReadStore) Snapshot(ctx context.Context, code string) (*model.Snapshot, error) {
	if s.pinned != nil {
		return s.pinned, nil
	}
	return s.fakeStore.Snapshot(ctx, code)
}

// fakeLeaderboard is an in-memory score board.
type fakeLeaderboard struct {
	mu     sync.Mutex
	scores map[string]map[string]int
}

func newFakeLeaderboard() *fakeLeaderboard {
	return &fakeLeaderboard{scores: make(map[string]map[string]int)}
}

func (l *fakeLeaderboard) UpdateScore(_ context.Context, roomCode, playerID string, score int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.scores[roomCode] == nil {
		l.scores[roomCode] = make(map[string]int)
	}
	l.scores[roomCode][playerID] = score
	return nil
}

func (l *fakeLeaderboard) GetTop(_ context.Context, roomCode string, limit int) ([]cache.LeaderboardEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var entries []cache.LeaderboardEntry
	for id, score := range l.scores[roomCode] {
		entries = append(entries, cache.LeaderboardEntry{PlayerID: id, Score: score})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (l *fakeLeaderboard) Remove(_ context.Context, roomCode, playerID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.scores[roomCode], playerID)
	return nil
}

func (l *fakeLeaderboard) Delete(_ context.Context, roomCode string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.scores, roomCode)
	return nil
}

func testCatalog() *quiz.Catalog {
	questions := make([]model.Question, 12)
	for i := range questions {
		questions[i] = model.Question{
			ID:          fmt.Sprintf("q%d", i),
			Prompt:      fmt.Sprintf("question %d", i),
			Options:     []string{"a", "b", "c", "d"},
			AnswerIndex: i % 4,
		}
	}
	return quiz.NewCatalog([]model.Subject{
		{
			ID:   "s1",
			Name: "Subject One",
			Topics: []model.Topic{
				{ID: "t1", Name: "Topic One", Questions: questions},
			},
		},
	})
}

func battleSettings() model.RoomSettings {
	return model.RoomSettings{
		Mode:               model.ModeBattle,
		SubjectID:          "s1",
		TopicID:            "t1",
		QuestionCount:      3,
		SecondsPerQuestion: 15,
	}
}

func studySettings() model.RoomSettings {
	return model.RoomSettings{
		Mode:          model.ModeStudy,
		SubjectID:     "s1",
		TopicID:       "t1",
		QuestionCount: 3,
	}
}

func newTestServices() (*RoomService, *AnswerService, *ChatService, *fakeStore, *fakeLeaderboard) {
	st := newFakeStore()
	lb := newFakeLeaderboard()
	catalog := testCatalog()
	return NewRoomService(st, catalog, lb),
		NewAnswerService(st, catalog, lb),
		NewChatService(st),
		st, lb
}
