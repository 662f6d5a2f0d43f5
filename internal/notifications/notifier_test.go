package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"realtime/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifierNilRedisIsDisabled(t *testing.T) {
	n := NewNotifier(nil)
	assert.False(t, n.Enabled())
	assert.NoError(t, n.PublishConversation(context.Background(), "a|b", "payload"))
	assert.NoError(t, n.StartConversationSubscriber(context.Background(), func(string, string) {
		t.Fatal("no subscriber should run without redis")
	}))

	var nilNotifier *Notifier
	assert.False(t, nilNotifier.Enabled())
}

func TestConversationChannelName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "feed:conv:a|b", ConversationChannel("a|b"))
}

func TestConversationPublishSubscribeRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	n := NewNotifier(rdb)
	require.True(t, n.Enabled())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type received struct {
		channel string
		payload string
	}
	got := make(chan received, 1)
	require.NoError(t, n.StartConversationSubscriber(ctx, func(channel, payload string) {
		got <- received{channel, payload}
	}))

	// PSubscribe setup races with the first publish; retry until delivered.
	assert.Eventually(t, func() bool {
		require.NoError(t, n.PublishConversation(context.Background(), "a|b", `[]`))
		select {
		case r := <-got:
			assert.Equal(t, "feed:conv:a|b", r.channel)
			assert.Equal(t, `[]`, r.payload)
			return true
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)
}

func TestStartWiringRoutesSnapshotsIntoFeed(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	feed := NewConversationFeed()
	hub := NewFeedHub(feed)
	n := NewNotifier(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, n))

	sub := feed.Subscribe("alice", "bob")
	defer sub.Cancel()

	payload, err := json.Marshal([]models.Message{{Text: "over the wire"}})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		require.NoError(t, n.PublishConversation(context.Background(), sub.Key(), string(payload)))
		select {
		case messages := <-sub.C:
			require.Len(t, messages, 1)
			assert.Equal(t, "over the wire", messages[0].Text)
			return true
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)
}

func TestStartWiringIgnoresMalformedPayload(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	feed := NewConversationFeed()
	hub := NewFeedHub(feed)
	n := NewNotifier(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, n))

	sub := feed.Subscribe("alice", "bob")
	defer sub.Cancel()

	// Garbage on the channel must be dropped, never published or panicking.
	require.NoError(t, n.PublishConversation(context.Background(), sub.Key(), "not json"))

	select {
	case messages := <-sub.C:
		t.Fatalf("malformed payload reached subscribers: %v", messages)
	case <-time.After(200 * time.Millisecond):
	}
}
