package session

import (
	"time"

	"quizclash/internal/model"
)

// Policy captures everything that differs between a battle and a study room:
// capacity, timing, scoring and the advance condition. The room services and
// the controller are otherwise identical for both modes.
type Policy interface {
	Mode() model.RoomMode
	// ActiveStatus is the status a room enters when a session starts.
	ActiveStatus() model.RoomStatus
	// Capacity is the maximum participant count, 0 for unlimited.
	Capacity(s model.RoomSettings) int
	// ReadyRequired gates start on every non-host participant being ready.
	ReadyRequired() bool
	// HasTimer reports whether questions run against a countdown.
	HasTimer() bool
	QuestionBudget(s model.RoomSettings) time.Duration
	// Score returns base points and speed bonus for one answer.
	Score(correct bool, remaining time.Duration) (base, bonus int)
	// AllAnswered is the advance condition over the current participants.
	AllAnswered(participants []*model.Participant, index int) bool
	// AutoAdvance reports whether the controller advances on its own;
	// otherwise the host advances manually once AllAnswered holds.
	AutoAdvance() bool
	// ResultsPause is the hold after everyone answers early, so results stay
	// visible. TimeoutPause is the shorter hold after a timeout advance.
	ResultsPause() time.Duration
	TimeoutPause() time.Duration
}

// PolicyFor returns the policy for a room mode.
func PolicyFor(mode model.RoomMode) Policy {
	if mode == model.ModeStudy {
		return NewStudyPolicy()
	}
	return NewBattlePolicy()
}

const (
	basePoints = 10

	defaultSecondsPerQuestion = 15
	defaultStudyMembers       = 8

	defaultResultsPause = 2 * time.Second
	defaultTimeoutPause = 750 * time.Millisecond
)

// BattlePolicy: two players, per-question countdown, speed bonus.
type BattlePolicy struct {
	Results time.Duration
	Timeout time.Duration
}

func NewBattlePolicy() *BattlePolicy {
	return &BattlePolicy{
		Results: defaultResultsPause,
		Timeout: defaultTimeoutPause,
	}
}

func (*BattlePolicy) Mode() model.RoomMode            { return model.ModeBattle }
func (*BattlePolicy) ActiveStatus() model.RoomStatus  { return model.RoomStatusPlaying }
func (*BattlePolicy) Capacity(model.RoomSettings) int { return 2 }
func (*BattlePolicy) ReadyRequired() bool             { return true }
func (*BattlePolicy) HasTimer() bool                  { return true }
func (*BattlePolicy) AutoAdvance() bool               { return true }
func (p *BattlePolicy) ResultsPause() time.Duration   { return p.Results }
func (p *BattlePolicy) TimeoutPause() time.Duration   { return p.Timeout }

func (*BattlePolicy) QuestionBudget(s model.RoomSettings) time.Duration {
	secs := s.SecondsPerQuestion
	if secs <= 0 {
		secs = defaultSecondsPerQuestion
	}
	return time.Duration(secs) * time.Second
}

// Score awards base points plus one bonus point per full second left on the
// clock. Wrong or sentinel answers score nothing.
func (*BattlePolicy) Score(correct bool, remaining time.Duration) (int, int) {
	if !correct {
		return 0, 0
	}
	bonus := int(remaining.Seconds())
	if bonus < 0 {
		bonus = 0
	}
	return basePoints, bonus
}

// AllAnswered holds once every currently-connected participant has an answer
// for the index. Disconnected players do not hold the match hostage; their
// slots are filled with sentinels at timeout anyway.
func (*BattlePolicy) AllAnswered(participants []*model.Participant, index int) bool {
	answered := false
	for _, p := range participants {
		if !p.Connected {
			continue
		}
		if !p.HasAnswered(index) {
			return false
		}
		answered = true
	}
	return answered
}

// StudyPolicy: collaborative group, no countdown, flat points. The host
// advances manually once the whole group has answered.
type StudyPolicy struct {
	Results time.Duration
}

func NewStudyPolicy() *StudyPolicy {
	return &StudyPolicy{Results: defaultResultsPause}
}

func (*StudyPolicy) Mode() model.RoomMode           { return model.ModeStudy }
func (*StudyPolicy) ActiveStatus() model.RoomStatus { return model.RoomStatusStudying }
func (*StudyPolicy) ReadyRequired() bool            { return false }
func (*StudyPolicy) HasTimer() bool                 { return false }
func (*StudyPolicy) AutoAdvance() bool              { return false }
func (p *StudyPolicy) ResultsPause() time.Duration  { return p.Results }
func (p *StudyPolicy) TimeoutPause() time.Duration  { return p.Results }

func (*StudyPolicy) Capacity(s model.RoomSettings) int {
	if s.MaxMembers > 0 {
		return s.MaxMembers
	}
	return defaultStudyMembers
}

func (*StudyPolicy) QuestionBudget(model.RoomSettings) time.Duration { return 0 }

func (*StudyPolicy) Score(correct bool, _ time.Duration) (int, int) {
	if !correct {
		return 0, 0
	}
	return basePoints, 0
}

// AllAnswered requires every member, connected or not. A study group never
// skips anyone.
func (*StudyPolicy) AllAnswered(participants []*model.Participant, index int) bool {
	if len(participants) == 0 {
		return false
	}
	for _, p := range participants {
		if !p.HasAnswered(index) {
			return false
		}
	}
	return true
}
