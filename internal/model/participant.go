package model

import (
	"strconv"
	"time"
)

// Answer is one participant's recorded response for one sequence index.
// Selected is -1 when the time budget expired before they answered.
type Answer struct {
	Selected   int       `json:"selected" bson:"selected"`
	Correct    bool      `json:"correct" bson:"correct"`
	AnsweredAt time.Time `json:"answeredAt" bson:"answeredAt"`
}

// NoAnswerSentinel marks a timed-out question slot.
const NoAnswerSentinel = -1

// Participant is one joined identity within a room. Each row is written only
// by its own client: score, ready and answers never receive peer writes.
type Participant struct {
	RoomCode   string            `json:"roomCode" bson:"roomCode"`
	PlayerID   string            `json:"playerId" bson:"playerId"`
	Name       string            `json:"name" bson:"name"`
	Connected  bool              `json:"connected" bson:"connected"`
	Ready      bool              `json:"ready" bson:"ready"` // battle only
	Score      int               `json:"score" bson:"score"`
	SpeedBonus int               `json:"speedBonus" bson:"speedBonus"` // battle only
	Answers    map[string]Answer `json:"answers" bson:"answers"`
	JoinedAt   time.Time         `json:"joinedAt" bson:"joinedAt"`
}

// answerKey converts a sequence index to the map key used in storage.
// BSON documents require string keys.
func answerKey(index int) string {
	return strconv.Itoa(index)
}

// HasAnswered reports whether the participant already holds an answer for
// the given sequence index.
func (p *Participant) HasAnswered(index int) bool {
	if p.Answers == nil {
		return false
	}
	_, ok := p.Answers[answerKey(index)]
	return ok
}

// AnswerAt returns the recorded answer for index, if any.
func (p *Participant) AnswerAt(index int) (Answer, bool) {
	if p.Answers == nil {
		return Answer{}, false
	}
	a, ok := p.Answers[answerKey(index)]
	return a, ok
}

// SetAnswer records an answer for index. It does not overwrite: the first
// write wins and the second is reported as rejected.
func (p *Participant) SetAnswer(index int, a Answer) bool {
	if p.Answers == nil {
		p.Answers = make(map[string]Answer)
	}
	key := answerKey(index)
	if _, ok := p.Answers[key]; ok {
		return false
	}
	p.Answers[key] = a
	return true
}

// ResetProgress clears session progress ahead of a (re)start.
func (p *Participant) ResetProgress() {
	p.Score = 0
	p.SpeedBonus = 0
	p.Ready = false
	p.Answers = make(map[string]Answer)
}
