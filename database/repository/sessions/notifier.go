package sessionRepo

import (
	"context"
	"encoding/json"
	"fmt"

	"hobbyist/models"
	"hobbyist/utils"

	"github.com/go-redis/redis/v8"
)

// RedisSessionNotifier publishes every saved snapshot on the session's pub/sub channel.
type RedisSessionNotifier struct {
	client *redis.Client
}

func NewRedisSessionNotifier(client *redis.Client) *RedisSessionNotifier {
	return &RedisSessionNotifier{client: client}
}

// Channel returns the pub/sub channel carrying a session's snapshots.
func Channel(sessionID string) string {
	return utils.SessionKeyPrefix + sessionID + utils.SessionEventsSuffix
}

func (n *RedisSessionNotifier) SessionChanged(ctx context.Context, session *models.BookingSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session event: %w", err)
	}
	return n.client.Publish(ctx, Channel(session.ID), data).Err()
}

// Subscribe streams snapshots of one session until ctx is done. The returned channel is
// closed when the subscription ends.
func (n *RedisSessionNotifier) Subscribe(ctx context.Context, sessionID string) (<-chan *models.BookingSession, error) {
	pubsub := n.client.Subscribe(ctx, Channel(sessionID))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to session events: %w", err)
	}

	out := make(chan *models.BookingSession)
	go func() {
		defer close(out)
		defer pubsub.Close()
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var session models.BookingSession
				if err := json.Unmarshal([]byte(msg.Payload), &session); err != nil {
					continue
				}
				select {
				case out <- &session:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
