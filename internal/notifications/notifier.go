// Package notifications fans activity notifications out over Redis pub/sub.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"

	"mooderia/internal/models"

	"github.com/redis/go-redis/v9"
)

// Notifier provides helpers to publish notifications into Redis channels.
// A nil client makes every call a no-op.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Payload is the message published for one notification.
type Payload struct {
	Recipient    string              `json:"recipient"`
	Notification models.Notification `json:"notification"`
}

// PublishNotification sends n to the recipient's channel.
func (n *Notifier) PublishNotification(ctx context.Context, recipient string, note models.Notification) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	raw, err := json.Marshal(Payload{Recipient: recipient, Notification: note})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return n.rdb.Publish(ctx, UserChannel(recipient), raw).Err()
}

// Subscribe delivers every notification published for username until ctx is
// done. onMessage runs on the subscriber goroutine; panics are recovered.
func (n *Notifier) Subscribe(ctx context.Context, username string, onMessage func(Payload)) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, UserChannel(username))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", username, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var p Payload
				if err := json.Unmarshal([]byte(msg.Payload), &p); err != nil {
					log.Printf("dropping malformed notification on %s: %v", msg.Channel, err)
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in notification subscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(p)
				}()
			}
		}
	}()

	return nil
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(username string) string {
	return "notifications:user:" + username
}
