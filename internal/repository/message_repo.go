package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quizclash/internal/model"
)

// MessageRepo is append-only: messages are never updated or removed
// individually, only dropped wholesale when their room is deleted.
type MessageRepo interface {
	Append(ctx context.Context, msg *model.Message) error
	ListByRoom(ctx context.Context, roomCode string) ([]*model.Message, error)
	DeleteByRoom(ctx context.Context, roomCode string) error
}

type messageRepo struct {
	collection *mongo.Collection
}

func NewMessageRepo(db *mongo.Database) MessageRepo {
	return &messageRepo{
		collection: db.Collection("messages"),
	}
}

func (r *messageRepo) Append(ctx context.Context, msg *model.Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	result, err := r.collection.InsertOne(ctx, msg)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		msg.ID = oid.Hex()
	}
	return nil
}

func (r *messageRepo) ListByRoom(ctx context.Context, roomCode string) ([]*model.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"roomCode": roomCode}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []*model.Message
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepo) DeleteByRoom(ctx context.Context, roomCode string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"roomCode": roomCode})
	return err
}
