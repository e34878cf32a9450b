package model

import "time"

// Message is one chat line, append-only and scoped to a room. Messages are
// never edited or deleted individually; deleting the room cascades.
type Message struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	RoomCode   string    `json:"roomCode" bson:"roomCode"`
	SenderID   string    `json:"senderId" bson:"senderId"`
	SenderName string    `json:"senderName" bson:"senderName"`
	Text       string    `json:"text" bson:"text"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}
