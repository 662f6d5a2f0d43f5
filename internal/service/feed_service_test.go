package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"realtime/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFeedFixture(t *testing.T) (*FeedService, *userRepoStub, *storyRepoStub, *storylineRepoStub) {
	t.Helper()
	users := newUserRepoStub()
	stories := newStoryRepoStub()
	storylines := newStorylineRepoStub(stories)

	storySvc := NewStoryService(stories, users, 24*time.Hour)
	storylineSvc := NewStorylineService(storylines, stories, users)
	return NewFeedService(users, storySvc, storylineSvc, time.Second), users, stories, storylines
}

func TestRefreshFriendFeedCoversEveryFriend(t *testing.T) {
	svc, users, stories, _ := newFeedFixture(t)
	viewer := users.addUser("Viewer")
	alice := users.addUser("Alice")
	bob := users.addUser("Bob")
	users.friends[viewer.ID] = []string{alice.ID, bob.ID}

	aliceStory := &models.Story{AuthorID: alice.ID, ImageRef: "ref-a"}
	require.NoError(t, stories.Create(context.Background(), aliceStory))

	feed, err := svc.RefreshFriendFeed(context.Background(), viewer.ID)
	require.NoError(t, err)

	// Every friend appears in both maps, active or not.
	require.Len(t, feed.Stories, 2)
	require.Len(t, feed.Storylines, 2)
	assert.Len(t, feed.Stories[alice.ID], 1)
	assert.Empty(t, feed.Stories[bob.ID])
	assert.NotNil(t, feed.Storylines[alice.ID])
	assert.NotNil(t, feed.Storylines[bob.ID])
}

func TestRefreshFriendFeedNoFriends(t *testing.T) {
	svc, users, _, _ := newFeedFixture(t)
	viewer := users.addUser("Viewer")

	feed, err := svc.RefreshFriendFeed(context.Background(), viewer.ID)
	require.NoError(t, err)
	assert.Empty(t, feed.Stories)
	assert.Empty(t, feed.Storylines)
	assert.NotNil(t, feed.Stories)
	assert.NotNil(t, feed.Storylines)
}

func TestRefreshFriendFeedFailedLegDegradesToEmpty(t *testing.T) {
	svc, users, stories, _ := newFeedFixture(t)
	viewer := users.addUser("Viewer")
	alice := users.addUser("Alice")
	bob := users.addUser("Bob")
	users.friends[viewer.ID] = []string{alice.ID, bob.ID}

	bobStory := &models.Story{AuthorID: bob.ID, ImageRef: "ref-b"}
	require.NoError(t, stories.Create(context.Background(), bobStory))

	// Alice's story leg fails; the aggregate must still succeed with an
	// empty entry for her and Bob's data intact.
	stories.listErr[alice.ID] = errors.New("replica down")

	feed, err := svc.RefreshFriendFeed(context.Background(), viewer.ID)
	require.NoError(t, err)
	require.Len(t, feed.Stories, 2)
	assert.Empty(t, feed.Stories[alice.ID])
	assert.NotNil(t, feed.Stories[alice.ID])
	assert.Len(t, feed.Stories[bob.ID], 1)
}

func TestRefreshFriendFeedFriendLookupFailure(t *testing.T) {
	svc, users, _, _ := newFeedFixture(t)
	viewer := users.addUser("Viewer")
	users.friendIDsErr = models.NewInternalError(errors.New("db down"))

	_, err := svc.RefreshFriendFeed(context.Background(), viewer.ID)
	require.Error(t, err)
}

func TestRefreshFriendFeedIncludesStorylines(t *testing.T) {
	svc, users, stories, storylines := newFeedFixture(t)
	viewer := users.addUser("Viewer")
	alice := users.addUser("Alice")
	users.friends[viewer.ID] = []string{alice.ID}

	story := &models.Story{AuthorID: alice.ID, ImageRef: "ref-a"}
	require.NoError(t, stories.Create(context.Background(), story))
	storyline := &models.Storyline{AuthorID: alice.ID}
	require.NoError(t, storylines.Create(context.Background(), storyline, []string{story.ID}))

	feed, err := svc.RefreshFriendFeed(context.Background(), viewer.ID)
	require.NoError(t, err)
	require.Len(t, feed.Storylines[alice.ID], 1)
	require.Len(t, feed.Storylines[alice.ID][0].Stories, 1)
	assert.Equal(t, story.ID, feed.Storylines[alice.ID][0].Stories[0].ID)
}
