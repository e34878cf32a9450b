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

// AnswerService records answers into the submitting participant's own row.
// Answers are write-once per sequence index; correctness is derived from the
// room seed with the same sequencer every client runs, so nothing about the
// question ever crosses the wire.
type AnswerService struct {
	store       store.Store
	catalog     *quiz.Catalog
	leaderboard cache.LeaderboardCache
}

// NewAnswerService creates a new answer service.
func NewAnswerService(st store.Store, catalog *quiz.Catalog, leaderboard cache.LeaderboardCache) *AnswerService {
	return &AnswerService{
		store:       st,
		catalog:     catalog,
		leaderboard: leaderboard,
	}
}

// Submit records the caller's answer for the current question. A selected
// value of -1 is the no-answer sentinel recorded at timeout; it is always
// wrong and scores nothing.
func (s *AnswerService) Submit(ctx context.Context, code, playerID string, index, selected int) (*model.Answer, error) {
	snap, err := s.store.Snapshot(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to read room: %w", err)
	}
	if snap == nil {
		return nil, ErrRoomNotFound
	}
	room := snap.Room
	if !room.Status.Active() {
		return nil, ErrSessionNotActive
	}
	if index != room.Cursor.QuestionIndex {
		return nil, fmt.Errorf("%w: question %d is not current", ErrNotAllowed, index)
	}
	p := snap.Participant(playerID)
	if p == nil {
		return nil, ErrNotMember
	}
	if p.HasAnswered(index) {
		return nil, ErrAlreadyAnswered
	}

	correct := s.isCorrect(room, index, selected)

	policy := session.PolicyFor(room.Settings.Mode)
	var remaining time.Duration
	if policy.HasTimer() {
		deadline := room.Cursor.QuestionStartedAt.Add(policy.QuestionBudget(room.Settings))
		remaining = time.Until(deadline)
	}
	base, bonus := policy.Score(correct, remaining)

	answer := model.Answer{
		Selected:   selected,
		Correct:    correct,
		AnsweredAt: time.Now(),
	}
	// The claim is atomic in the store: the snapshot check above is only a
	// fast path, and a writer holding a stale view loses here instead of
	// replacing the answer that landed first.
	wrote, err := s.store.RecordAnswer(ctx, code, playerID, index, answer, base+bonus, bonus)
	if err != nil {
		return nil, fmt.Errorf("failed to record answer: %w", err)
	}
	if !wrote {
		return nil, ErrAlreadyAnswered
	}
	if err := s.leaderboard.UpdateScore(ctx, code, playerID, p.Score+base+bonus); err != nil {
		log.Printf("room %s: updating leaderboard for %s: %v", code, playerID, err)
	}
	return &answer, nil
}

// isCorrect rebuilds the question at the cursor from (seed, settings) and
// compares against the option position after the derived shuffle.
func (s *AnswerService) isCorrect(room *model.Room, index, selected int) bool {
	if selected < 0 {
		return false
	}
	pool := s.catalog.Pool(room.Settings.SubjectID, room.Settings.TopicID)
	seq := quiz.Sequence(pool, room.Seed, room.Settings.QuestionCount)
	if index >= len(seq) {
		return false
	}
	q := seq[index]
	_, shuffledAnswer := quiz.ShuffleOptions(q.Options, q.AnswerIndex, quiz.OptionSeed(room.Seed, index))
	return selected == shuffledAnswer
}
