// Package notifications provides real-time feed delivery and subscription management.
package notifications

import (
	"sync"

	"realtime/internal/models"
)

// snapshotBuffer is the per-subscription channel depth. The feed is a
// full-refresh model, so a newer snapshot always supersedes a pending one.
const snapshotBuffer = 1

// FeedSubscription is a live, cancellable view onto one conversation.
// Each value received on C is the complete, time-ordered message list for
// the conversation, replacing anything received before it.
type FeedSubscription struct {
	C chan []models.Message

	key    string
	feed   *ConversationFeed
	cancel sync.Once
}

// Key returns the canonical conversation key this subscription follows.
func (s *FeedSubscription) Key() string { return s.key }

// Cancel releases the subscription and closes C. Safe to call more than once.
func (s *FeedSubscription) Cancel() {
	s.cancel.Do(func() {
		s.feed.unsubscribe(s)
	})
}

// ConversationFeed is an in-process registry of live conversation
// subscriptions. Stores publish full snapshots into it; transports
// (websocket handlers, tests) consume them through subscriptions.
type ConversationFeed struct {
	mu   sync.RWMutex
	subs map[string]map[*FeedSubscription]struct{}
}

// NewConversationFeed creates an empty feed registry.
func NewConversationFeed() *ConversationFeed {
	return &ConversationFeed{
		subs: make(map[string]map[*FeedSubscription]struct{}),
	}
}

// Subscribe registers a live view onto the conversation between the two
// users. The caller must Cancel the subscription when done; Cancel closes C.
func (f *ConversationFeed) Subscribe(userA, userB string) *FeedSubscription {
	key := models.ConversationKey(userA, userB)
	sub := &FeedSubscription{
		C:    make(chan []models.Message, snapshotBuffer),
		key:  key,
		feed: f,
	}

	f.mu.Lock()
	m, ok := f.subs[key]
	if !ok {
		m = make(map[*FeedSubscription]struct{})
		f.subs[key] = m
	}
	m[sub] = struct{}{}
	f.mu.Unlock()

	return sub
}

func (f *ConversationFeed) unsubscribe(sub *FeedSubscription) {
	f.mu.Lock()
	if m, ok := f.subs[sub.key]; ok {
		if _, exists := m[sub]; exists {
			delete(m, sub)
			close(sub.C)
		}
		if len(m) == 0 {
			delete(f.subs, sub.key)
		}
	}
	f.mu.Unlock()
}

// Publish delivers a full snapshot to every subscriber of the conversation.
// Delivery never blocks: when a subscriber has not drained the previous
// snapshot, it is replaced by the newer one (latest wins).
func (f *ConversationFeed) Publish(key string, messages []models.Message) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for sub := range f.subs[key] {
		select {
		case sub.C <- messages:
		default:
			select {
			case <-sub.C:
			default:
			}
			select {
			case sub.C <- messages:
			default:
			}
		}
	}
}

// SubscriberCount reports the number of live subscriptions for a conversation.
func (f *ConversationFeed) SubscriberCount(key string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs[key])
}
