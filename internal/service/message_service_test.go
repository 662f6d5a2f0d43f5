package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"realtime/internal/models"
	"realtime/internal/notifications"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMessageFixture(t *testing.T) (*MessageService, *userRepoStub, *messageRepoStub, *notifications.ConversationFeed) {
	t.Helper()
	users := newUserRepoStub()
	messages := newMessageRepoStub()
	feed := notifications.NewConversationFeed()
	// Nil Redis keeps the notifier disabled so snapshots go straight to
	// local subscribers.
	svc := NewMessageService(messages, users, feed, notifications.NewNotifier(nil))
	return svc, users, messages, feed
}

func TestSendMessageValidation(t *testing.T) {
	svc, users, _, _ := newMessageFixture(t)
	alice := users.addUser("Alice")

	tests := []struct {
		name  string
		input SendMessageInput
	}{
		{"missing recipient", SendMessageInput{SenderID: alice.ID, Text: "hi"}},
		{"self message", SendMessageInput{SenderID: alice.ID, RecipientID: alice.ID, Text: "hi"}},
		{"no content", SendMessageInput{SenderID: alice.ID, RecipientID: "someone"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SendMessage(context.Background(), tt.input)
			require.Error(t, err)
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, models.CodeValidation, appErr.Code)
		})
	}
}

func TestSendMessageUnknownRecipient(t *testing.T) {
	svc, users, _, _ := newMessageFixture(t)
	alice := users.addUser("Alice")

	_, err := svc.SendMessage(context.Background(), SendMessageInput{
		SenderID:    alice.ID,
		RecipientID: "nope",
		Text:        "hi",
	})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestSendMessageAssignsServerFields(t *testing.T) {
	svc, users, _, _ := newMessageFixture(t)
	alice := users.addUser("Alice")
	bob := users.addUser("Bob")

	msg, err := svc.SendMessage(context.Background(), SendMessageInput{
		SenderID:    alice.ID,
		RecipientID: bob.ID,
		Text:        "hello",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.Timestamp.IsZero())
}

func TestSendMessagePublishesSnapshotToSubscribers(t *testing.T) {
	svc, users, _, feed := newMessageFixture(t)
	alice := users.addUser("Alice")
	bob := users.addUser("Bob")

	sub := feed.Subscribe(alice.ID, bob.ID)
	defer sub.Cancel()

	_, err := svc.SendMessage(context.Background(), SendMessageInput{
		SenderID:    alice.ID,
		RecipientID: bob.ID,
		Text:        "first",
	})
	require.NoError(t, err)

	select {
	case snapshot := <-sub.C:
		require.Len(t, snapshot, 1)
		assert.Equal(t, "first", snapshot[0].Text)
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}
}

func TestSendMessageSnapshotIsLatestWins(t *testing.T) {
	svc, users, _, feed := newMessageFixture(t)
	alice := users.addUser("Alice")
	bob := users.addUser("Bob")

	sub := feed.Subscribe(alice.ID, bob.ID)
	defer sub.Cancel()

	// Two sends without a read in between: the slow subscriber must see
	// the second snapshot, not the first.
	for _, text := range []string{"first", "second"} {
		_, err := svc.SendMessage(context.Background(), SendMessageInput{
			SenderID:    alice.ID,
			RecipientID: bob.ID,
			Text:        text,
		})
		require.NoError(t, err)
	}

	select {
	case snapshot := <-sub.C:
		require.Len(t, snapshot, 2)
		assert.Equal(t, "second", snapshot[1].Text)
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}
}

func TestSendMessageFailedWritePublishesNothing(t *testing.T) {
	svc, users, messages, feed := newMessageFixture(t)
	alice := users.addUser("Alice")
	bob := users.addUser("Bob")

	sub := feed.Subscribe(alice.ID, bob.ID)
	defer sub.Cancel()

	messages.createErr = models.NewTransientError("message write", errors.New("db down"))
	_, err := svc.SendMessage(context.Background(), SendMessageInput{
		SenderID:    alice.ID,
		RecipientID: bob.ID,
		Text:        "doomed",
	})
	require.Error(t, err)

	select {
	case <-sub.C:
		t.Fatal("snapshot published for a failed write")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribeReturnsInitialSnapshot(t *testing.T) {
	svc, users, _, _ := newMessageFixture(t)
	alice := users.addUser("Alice")
	bob := users.addUser("Bob")

	_, err := svc.SendMessage(context.Background(), SendMessageInput{
		SenderID:    alice.ID,
		RecipientID: bob.ID,
		Text:        "backlog",
	})
	require.NoError(t, err)

	sub, snapshot, err := svc.Subscribe(context.Background(), bob.ID, alice.ID)
	require.NoError(t, err)
	defer sub.Cancel()

	require.Len(t, snapshot, 1)
	assert.Equal(t, "backlog", snapshot[0].Text)
}

func TestSubscribeUnknownPeer(t *testing.T) {
	svc, users, _, _ := newMessageFixture(t)
	alice := users.addUser("Alice")

	_, _, err := svc.Subscribe(context.Background(), alice.ID, "nope")
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestGetConversationEitherOrder(t *testing.T) {
	svc, users, _, _ := newMessageFixture(t)
	alice := users.addUser("Alice")
	bob := users.addUser("Bob")

	_, err := svc.SendMessage(context.Background(), SendMessageInput{
		SenderID: alice.ID, RecipientID: bob.ID, Text: "from alice",
	})
	require.NoError(t, err)
	_, err = svc.SendMessage(context.Background(), SendMessageInput{
		SenderID: bob.ID, RecipientID: alice.ID, Text: "from bob",
	})
	require.NoError(t, err)

	forward, err := svc.GetConversation(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	reverse, err := svc.GetConversation(context.Background(), bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, forward, reverse)
	require.Len(t, forward, 2)
}
