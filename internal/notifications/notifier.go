// Package notifications provides real-time feed delivery and subscription management.
package notifications

import (
	"context"
	"log"
	"runtime/debug"
	"time"

	"realtime/internal/observability"

	"github.com/redis/go-redis/v9"
)

const conversationChannelPrefix = "feed:conv:"

const (
	resubscribeBaseDelay = 250 * time.Millisecond
	resubscribeMaxDelay  = 30 * time.Second
)

// Notifier provides helpers to publish feed updates into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Enabled reports whether a Redis client backs this notifier.
func (n *Notifier) Enabled() bool {
	return n != nil && n.rdb != nil
}

// ConversationChannel derives the Redis channel name for a conversation key.
func ConversationChannel(key string) string {
	return conversationChannelPrefix + key
}

// PublishConversation sends a full conversation snapshot to the
// conversation's channel so every instance can fan it out locally.
func (n *Notifier) PublishConversation(ctx context.Context, key, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, ConversationChannel(key), payload).Err()
}

// StartConversationSubscriber subscribes to the conversation channel pattern
// and calls onMessage for each incoming snapshot. A dropped subscription is
// re-established with bounded exponential backoff instead of degrading
// silently; the loop stops when ctx is cancelled.
func (n *Notifier) StartConversationSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}

	go func() {
		delay := resubscribeBaseDelay
		for {
			sub := n.rdb.PSubscribe(ctx, conversationChannelPrefix+"*")
			ch := sub.Channel()

			alive := true
			for alive {
				select {
				case <-ctx.Done():
					_ = sub.Close()
					return
				case msg, ok := <-ch:
					if !ok {
						alive = false
						break
					}
					delay = resubscribeBaseDelay
					func() {
						defer func() {
							if r := recover(); r != nil {
								log.Printf("PANIC in ConversationSubscriber: %v\n%s", r, debug.Stack())
							}
						}()
						onMessage(msg.Channel, msg.Payload)
					}()
				}
			}

			_ = sub.Close()
			observability.FeedSubscriberReconnects.Inc()
			log.Printf("conversation subscriber lost, reconnecting in %s", delay)

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			delay *= 2
			if delay > resubscribeMaxDelay {
				delay = resubscribeMaxDelay
			}
		}
	}()

	return nil
}
