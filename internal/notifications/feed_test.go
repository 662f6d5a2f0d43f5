package notifications

import (
	"testing"
	"time"

	"realtime/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(texts ...string) []models.Message {
	messages := make([]models.Message, 0, len(texts))
	for _, text := range texts {
		messages = append(messages, models.Message{Text: text})
	}
	return messages
}

func TestSubscribeSharesCanonicalKey(t *testing.T) {
	feed := NewConversationFeed()

	ab := feed.Subscribe("alice", "bob")
	defer ab.Cancel()
	ba := feed.Subscribe("bob", "alice")
	defer ba.Cancel()

	assert.Equal(t, ab.Key(), ba.Key())
	assert.Equal(t, 2, feed.SubscriberCount(ab.Key()))
}

func TestPublishReachesEverySubscriber(t *testing.T) {
	feed := NewConversationFeed()

	first := feed.Subscribe("alice", "bob")
	defer first.Cancel()
	second := feed.Subscribe("bob", "alice")
	defer second.Cancel()

	feed.Publish(first.Key(), snapshot("hello"))

	for _, sub := range []*FeedSubscription{first, second} {
		select {
		case got := <-sub.C:
			require.Len(t, got, 1)
			assert.Equal(t, "hello", got[0].Text)
		case <-time.After(time.Second):
			t.Fatal("snapshot not delivered")
		}
	}
}

func TestPublishLatestWins(t *testing.T) {
	feed := NewConversationFeed()

	sub := feed.Subscribe("alice", "bob")
	defer sub.Cancel()

	// The subscriber never drains between publishes. The stale snapshot
	// must be replaced, never queued behind.
	feed.Publish(sub.Key(), snapshot("stale"))
	feed.Publish(sub.Key(), snapshot("stale", "fresh"))

	select {
	case got := <-sub.C:
		require.Len(t, got, 2)
		assert.Equal(t, "fresh", got[1].Text)
	case <-time.After(time.Second):
		t.Fatal("snapshot not delivered")
	}

	select {
	case extra := <-sub.C:
		t.Fatalf("unexpected second snapshot: %v", extra)
	default:
	}
}

func TestPublishUnknownKeyIsNoOp(t *testing.T) {
	feed := NewConversationFeed()
	feed.Publish("nobody|here", snapshot("lost"))
}

func TestCancelClosesChannelAndIsIdempotent(t *testing.T) {
	feed := NewConversationFeed()

	sub := feed.Subscribe("alice", "bob")
	key := sub.Key()

	sub.Cancel()
	sub.Cancel()

	_, open := <-sub.C
	assert.False(t, open, "channel should be closed after Cancel")
	assert.Zero(t, feed.SubscriberCount(key))

	// Publishing after the last cancel must not panic.
	feed.Publish(key, snapshot("late"))
}

func TestCancelOneLeavesOthers(t *testing.T) {
	feed := NewConversationFeed()

	keep := feed.Subscribe("alice", "bob")
	defer keep.Cancel()
	drop := feed.Subscribe("alice", "bob")
	drop.Cancel()

	feed.Publish(keep.Key(), snapshot("still here"))

	select {
	case got := <-keep.C:
		require.Len(t, got, 1)
	case <-time.After(time.Second):
		t.Fatal("surviving subscriber missed the snapshot")
	}
	assert.Equal(t, 1, feed.SubscriberCount(keep.Key()))
}
