package repository

import (
	"context"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quizclash/internal/model"
)

type ParticipantRepo interface {
	// Upsert writes the participant's own row, keyed by (roomCode, playerId).
	// Rejoin after a reload lands on the same row, making join idempotent.
	Upsert(ctx context.Context, p *model.Participant) error
	Get(ctx context.Context, roomCode, playerID string) (*model.Participant, error)
	ListByRoom(ctx context.Context, roomCode string) ([]*model.Participant, error)
	// RecordAnswer claims answers[index] and applies the score delta in one
	// update. The filter requires the slot to be empty, so whichever writer
	// lands first wins regardless of what view the loser read; false means
	// the slot was already taken (or the row is gone).
	RecordAnswer(ctx context.Context, roomCode, playerID string, index int, a model.Answer, points, bonus int) (bool, error)
	// SetConnected flips only the connected flag, leaving the rest of the
	// row alone.
	SetConnected(ctx context.Context, roomCode, playerID string, connected bool) error
	Delete(ctx context.Context, roomCode, playerID string) error
	DeleteByRoom(ctx context.Context, roomCode string) error
}

type participantRepo struct {
	collection *mongo.Collection
}

func NewParticipantRepo(db *mongo.Database) ParticipantRepo {
	return &participantRepo{
		collection: db.Collection("participants"),
	}
}

func (r *participantRepo) filter(roomCode, playerID string) bson.M {
	return bson.M{"roomCode": roomCode, "playerId": playerID}
}

func (r *participantRepo) Upsert(ctx context.Context, p *model.Participant) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, r.filter(p.RoomCode, p.PlayerID), p, opts)
	return err
}

func (r *participantRepo) Get(ctx context.Context, roomCode, playerID string) (*model.Participant, error) {
	var p model.Participant
	err := r.collection.FindOne(ctx, r.filter(roomCode, playerID)).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *participantRepo) ListByRoom(ctx context.Context, roomCode string) ([]*model.Participant, error) {
	opts := options.Find().SetSort(bson.D{{Key: "joinedAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"roomCode": roomCode}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var participants []*model.Participant
	if err = cursor.All(ctx, &participants); err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *participantRepo) RecordAnswer(ctx context.Context, roomCode, playerID string, index int, a model.Answer, points, bonus int) (bool, error) {
	field := "answers." + strconv.Itoa(index)
	filter := bson.M{
		"roomCode": roomCode,
		"playerId": playerID,
		field:      bson.M{"$exists": false},
	}
	update := bson.M{
		"$set": bson.M{field: a},
		"$inc": bson.M{"score": points, "speedBonus": bonus},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.MatchedCount == 1, nil
}

func (r *participantRepo) SetConnected(ctx context.Context, roomCode, playerID string, connected bool) error {
	update := bson.M{"$set": bson.M{"connected": connected}}
	_, err := r.collection.UpdateOne(ctx, r.filter(roomCode, playerID), update)
	return err
}

func (r *participantRepo) Delete(ctx context.Context, roomCode, playerID string) error {
	_, err := r.collection.DeleteOne(ctx, r.filter(roomCode, playerID))
	return err
}

func (r *participantRepo) DeleteByRoom(ctx context.Context, roomCode string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"roomCode": roomCode})
	return err
}
