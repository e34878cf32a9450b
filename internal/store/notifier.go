package store

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

// Notifier is the per-room change channel. Delivery is at-least-once and
// carries no payload: subscribers re-fetch the full snapshot on every signal,
// so neither ordering nor coalescing can corrupt their view.
type Notifier interface {
	Publish(ctx context.Context, roomCode string) error
	// Subscribe returns a signal channel for the room and a cancel func.
	// The channel is closed after cancellation.
	Subscribe(ctx context.Context, roomCode string) (<-chan struct{}, func(), error)
}

type redisNotifier struct {
	client *redis.Client
}

// NewRedisNotifier creates a notifier backed by Redis pub/sub.
func NewRedisNotifier(client *redis.Client) Notifier {
	return &redisNotifier{client: client}
}

func (n *redisNotifier) channel(roomCode string) string {
	return fmt.Sprintf("room:%s:events", roomCode)
}

func (n *redisNotifier) Publish(ctx context.Context, roomCode string) error {
	return n.client.Publish(ctx, n.channel(roomCode), "changed").Err()
}

func (n *redisNotifier) Subscribe(ctx context.Context, roomCode string) (<-chan struct{}, func(), error) {
	pubsub := n.client.Subscribe(ctx, n.channel(roomCode))

	// Confirm the subscription before reporting success.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, err
	}

	signals := make(chan struct{}, 1)
	go func() {
		defer close(signals)
		for range pubsub.Channel() {
			select {
			case signals <- struct{}{}:
			default:
				// A signal is already pending; the refetch it triggers
				// will observe this change too.
			}
		}
	}()

	cancel := func() {
		if err := pubsub.Close(); err != nil {
			log.Printf("room %s: closing subscription: %v", roomCode, err)
		}
	}
	return signals, cancel, nil
}
