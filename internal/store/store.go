package store

import (
	"context"
	"log"

	"quizclash/internal/cache"
	"quizclash/internal/model"
	"quizclash/internal/repository"
)

// Store is the room state store: durable records plus a per-room change
// channel. Every mutation publishes a change signal for the affected room, so
// observers holding a Subscribe channel converge by re-reading Snapshot.
// There is no cross-document transaction; a snapshot may catch a room
// mid-update and that is fine, the next signal replaces it wholesale.
type Store interface {
	CreateRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, code string) (*model.Room, error)
	UpdateRoom(ctx context.Context, room *model.Room) error
	// DeleteRoom cascades to participants and messages.
	DeleteRoom(ctx context.Context, code string) error

	SaveParticipant(ctx context.Context, p *model.Participant) error
	// RecordAnswer atomically claims answers[index] in the participant's row
	// and applies the score delta. False means the slot was already taken;
	// the stored answer never changes after its first write.
	RecordAnswer(ctx context.Context, code, playerID string, index int, a model.Answer, points, bonus int) (bool, error)
	// SetConnected flips only the liveness flag. Connection flaps must not
	// rewrite the row and race out an answer landing at the same moment.
	SetConnected(ctx context.Context, code, playerID string, connected bool) error
	DeleteParticipant(ctx context.Context, code, playerID string) error

	AppendMessage(ctx context.Context, msg *model.Message) error

	// Snapshot reads room, participants and messages as one unit. A deleted
	// room yields a nil snapshot, not an error.
	Snapshot(ctx context.Context, code string) (*model.Snapshot, error)
	Subscribe(ctx context.Context, code string) (<-chan struct{}, func(), error)

	CodeInUse(ctx context.Context, code string) (bool, error)
}

type roomStore struct {
	rooms        repository.RoomRepo
	participants repository.ParticipantRepo
	messages     repository.MessageRepo
	roomCache    cache.RoomCache
	notifier     Notifier
}

// New assembles the store from its repositories, the Redis room mirror and
// the change notifier.
func New(
	rooms repository.RoomRepo,
	participants repository.ParticipantRepo,
	messages repository.MessageRepo,
	roomCache cache.RoomCache,
	notifier Notifier,
) Store {
	return &roomStore{
		rooms:        rooms,
		participants: participants,
		messages:     messages,
		roomCache:    roomCache,
		notifier:     notifier,
	}
}

// notify publishes a change signal. Publish failures are logged, not
// returned: the write itself succeeded and subscribers will converge on the
// next successful signal for the room.
func (s *roomStore) notify(ctx context.Context, code string) {
	if err := s.notifier.Publish(ctx, code); err != nil {
		log.Printf("room %s: publishing change: %v", code, err)
	}
}

func (s *roomStore) CreateRoom(ctx context.Context, room *model.Room) error {
	if err := s.rooms.Create(ctx, room); err != nil {
		return err
	}
	meta := &model.RoomMeta{
		HostID:    room.HostID,
		Mode:      room.Settings.Mode,
		Status:    room.Status,
		CreatedAt: room.CreatedAt,
	}
	if err := s.roomCache.SetMeta(ctx, room.Code, meta); err != nil {
		log.Printf("room %s: caching meta: %v", room.Code, err)
	}
	s.notify(ctx, room.Code)
	return nil
}

func (s *roomStore) GetRoom(ctx context.Context, code string) (*model.Room, error) {
	return s.rooms.GetByCode(ctx, code)
}

func (s *roomStore) UpdateRoom(ctx context.Context, room *model.Room) error {
	if err := s.rooms.Update(ctx, room); err != nil {
		return err
	}
	if err := s.roomCache.SetStatus(ctx, room.Code, room.Status); err != nil {
		log.Printf("room %s: caching status: %v", room.Code, err)
	}
	s.notify(ctx, room.Code)
	return nil
}

func (s *roomStore) DeleteRoom(ctx context.Context, code string) error {
	if err := s.rooms.Delete(ctx, code); err != nil {
		return err
	}
	if err := s.participants.DeleteByRoom(ctx, code); err != nil {
		return err
	}
	if err := s.messages.DeleteByRoom(ctx, code); err != nil {
		return err
	}
	if err := s.roomCache.Delete(ctx, code); err != nil {
		log.Printf("room %s: dropping cached meta: %v", code, err)
	}
	s.notify(ctx, code)
	return nil
}

func (s *roomStore) SaveParticipant(ctx context.Context, p *model.Participant) error {
	if err := s.participants.Upsert(ctx, p); err != nil {
		return err
	}
	s.notify(ctx, p.RoomCode)
	return nil
}

func (s *roomStore) RecordAnswer(ctx context.Context, code, playerID string, index int, a model.Answer, points, bonus int) (bool, error) {
	wrote, err := s.participants.RecordAnswer(ctx, code, playerID, index, a, points, bonus)
	if err != nil || !wrote {
		return wrote, err
	}
	s.notify(ctx, code)
	return true, nil
}

func (s *roomStore) SetConnected(ctx context.Context, code, playerID string, connected bool) error {
	if err := s.participants.SetConnected(ctx, code, playerID, connected); err != nil {
		return err
	}
	s.notify(ctx, code)
	return nil
}

func (s *roomStore) DeleteParticipant(ctx context.Context, code, playerID string) error {
	if err := s.participants.Delete(ctx, code, playerID); err != nil {
		return err
	}
	s.notify(ctx, code)
	return nil
}

func (s *roomStore) AppendMessage(ctx context.Context, msg *model.Message) error {
	if err := s.messages.Append(ctx, msg); err != nil {
		return err
	}
	s.notify(ctx, msg.RoomCode)
	return nil
}

func (s *roomStore) Snapshot(ctx context.Context, code string) (*model.Snapshot, error) {
	room, err := s.rooms.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, nil
	}
	participants, err := s.participants.ListByRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	messages, err := s.messages.ListByRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	return &model.Snapshot{
		Room:         room,
		Participants: participants,
		Messages:     messages,
	}, nil
}

func (s *roomStore) Subscribe(ctx context.Context, code string) (<-chan struct{}, func(), error) {
	return s.notifier.Subscribe(ctx, code)
}

func (s *roomStore) CodeInUse(ctx context.Context, code string) (bool, error) {
	exists, err := s.roomCache.Exists(ctx, code)
	if err != nil {
		return false, err
	}
	if exists {
		return true, nil
	}
	// The cache entry may have expired while the room is still live.
	room, err := s.rooms.GetByCode(ctx, code)
	if err != nil {
		return false, err
	}
	return room != nil, nil
}
