package model

import "time"

type RoomStatus string

const (
	RoomStatusLobby    RoomStatus = "lobby"
	RoomStatusPlaying  RoomStatus = "playing"  // battle in progress
	RoomStatusStudying RoomStatus = "studying" // study room in progress
	RoomStatusFinished RoomStatus = "finished"
)

// Active reports whether a session is currently running.
func (s RoomStatus) Active() bool {
	return s == RoomStatusPlaying || s == RoomStatusStudying
}

type RoomMode string

const (
	ModeBattle RoomMode = "battle"
	ModeStudy  RoomMode = "study"
)

// RoomSettings is host-editable while the room sits in the lobby.
type RoomSettings struct {
	Mode               RoomMode `json:"mode" bson:"mode"`
	SubjectID          string   `json:"subjectId" bson:"subjectId"`
	TopicID            string   `json:"topicId" bson:"topicId"`
	QuestionCount      int      `json:"questionCount" bson:"questionCount"`
	SecondsPerQuestion int      `json:"secondsPerQuestion" bson:"secondsPerQuestion"` // battle only
	MaxMembers         int      `json:"maxMembers" bson:"maxMembers"`                 // study only, 0 = default
}

// Cursor is the shared question position. Written only on behalf of the host.
type Cursor struct {
	QuestionIndex     int       `json:"questionIndex" bson:"questionIndex"`
	QuestionStartedAt time.Time `json:"questionStartedAt" bson:"questionStartedAt"`
}

// Room is the authoritative shared record for one battle or study session.
// Seed is zero until a session starts; once set it is only replaced together
// with a full reset of every participant's score and answers.
type Room struct {
	Code      string       `json:"code" bson:"code"`
	HostID    string       `json:"hostId" bson:"hostId"`
	Status    RoomStatus   `json:"status" bson:"status"`
	Settings  RoomSettings `json:"settings" bson:"settings"`
	Seed      int64        `json:"seed" bson:"seed"`
	Cursor    Cursor       `json:"cursor" bson:"cursor"`
	CreatedAt time.Time    `json:"createdAt" bson:"createdAt"`
}

// RoomMeta is the Redis-side mirror used for code collision checks and
// fast status lookups without touching MongoDB.
type RoomMeta struct {
	HostID    string     `json:"hostId"`
	Mode      RoomMode   `json:"mode"`
	Status    RoomStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
}
