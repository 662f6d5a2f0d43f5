package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"realtime/internal/models"

	"github.com/google/uuid"
)

// In-memory repository stubs. Each stub mirrors the corresponding
// repository's error contract so services see the same typed errors in
// tests that they see in production.

type userRepoStub struct {
	mu      sync.Mutex
	users   map[string]*models.User
	friends map[string][]string
	// friendIDsErr forces GetFriendIDs to fail when set.
	friendIDsErr error
}

func newUserRepoStub() *userRepoStub {
	return &userRepoStub{
		users:   make(map[string]*models.User),
		friends: make(map[string][]string),
	}
}

func (s *userRepoStub) addUser(name string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := &models.User{ID: uuid.NewString(), Name: name, Email: name + "@example.com"}
	s.users[user.ID] = user
	return user
}

func (s *userRepoStub) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	s.users[user.ID] = user
	return nil
}

func (s *userRepoStub) GetByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, models.NewNotFoundError("User", id)
	}
	return user, nil
}

func (s *userRepoStub) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, models.NewNotFoundError("User", email)
}

func (s *userRepoStub) List(_ context.Context, _ string, _, _ int) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, *user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

func (s *userRepoStub) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}

func (s *userRepoStub) GetFriends(_ context.Context, userID string) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var friends []models.User
	for _, friendID := range s.friends[userID] {
		if friend, ok := s.users[friendID]; ok {
			friends = append(friends, *friend)
		}
	}
	return friends, nil
}

func (s *userRepoStub) GetFriendIDs(_ context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.friendIDsErr != nil {
		return nil, s.friendIDsErr
	}
	return append([]string(nil), s.friends[userID]...), nil
}

func (s *userRepoStub) AddFriend(_ context.Context, userID, friendID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.friends[userID] {
		if existing == friendID {
			return nil
		}
	}
	s.friends[userID] = append(s.friends[userID], friendID)
	return nil
}

type messageRepoStub struct {
	mu       sync.Mutex
	messages []models.Message
	// createErr forces Create to fail when set.
	createErr error
}

func newMessageRepoStub() *messageRepoStub {
	return &messageRepoStub{}
}

func (s *messageRepoStub) Create(_ context.Context, message *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now().UTC()
	}
	message.Seq = uint64(len(s.messages) + 1)
	s.messages = append(s.messages, *message)
	return nil
}

func (s *messageRepoStub) GetConversation(_ context.Context, userA, userB string) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []models.Message
	for _, m := range s.messages {
		if (m.SenderID == userA && m.RecipientID == userB) ||
			(m.SenderID == userB && m.RecipientID == userA) {
			result = append(result, m)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].Seq < result[j].Seq
		}
		return result[i].Timestamp.Before(result[j].Timestamp)
	})
	return result, nil
}

type storyRepoStub struct {
	mu      sync.Mutex
	stories map[string]*models.Story
	// listErr forces ListForAuthor to fail for the given author ids.
	listErr map[string]error
}

func newStoryRepoStub() *storyRepoStub {
	return &storyRepoStub{
		stories: make(map[string]*models.Story),
		listErr: make(map[string]error),
	}
}

func (s *storyRepoStub) Create(_ context.Context, story *models.Story) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if story.ID == "" {
		story.ID = uuid.NewString()
	}
	if story.Timestamp.IsZero() {
		story.Timestamp = time.Now().UTC()
	}
	s.stories[story.ID] = story
	return nil
}

func (s *storyRepoStub) GetByID(_ context.Context, id string) (*models.Story, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	story, ok := s.stories[id]
	if !ok {
		return nil, models.NewNotFoundError("Story", id)
	}
	return story, nil
}

func (s *storyRepoStub) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stories[id]; !ok {
		return models.NewNotFoundError("Story", id)
	}
	delete(s.stories, id)
	return nil
}

func (s *storyRepoStub) ListForAuthor(_ context.Context, authorID string, cutoff time.Time) ([]models.Story, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.listErr[authorID]; err != nil {
		return nil, err
	}
	var result []models.Story
	for _, story := range s.stories {
		if story.AuthorID != authorID {
			continue
		}
		if !cutoff.IsZero() && story.Timestamp.Before(cutoff) {
			continue
		}
		result = append(result, *story)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	return result, nil
}

func (s *storyRepoStub) ListExpired(_ context.Context, cutoff time.Time) ([]models.Story, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []models.Story
	for _, story := range s.stories {
		if story.Timestamp.Before(cutoff) {
			result = append(result, *story)
		}
	}
	return result, nil
}

func (s *storyRepoStub) DeleteByIDs(_ context.Context, ids []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for _, id := range ids {
		if _, ok := s.stories[id]; ok {
			delete(s.stories, id)
			deleted++
		}
	}
	return deleted, nil
}

type storylineRepoStub struct {
	mu         sync.Mutex
	storylines map[string]*models.Storyline
	members    map[string][]string
	// listErr forces ListForAuthor to fail for the given author ids.
	listErr map[string]error
	stories *storyRepoStub
}

func newStorylineRepoStub(stories *storyRepoStub) *storylineRepoStub {
	return &storylineRepoStub{
		storylines: make(map[string]*models.Storyline),
		members:    make(map[string][]string),
		listErr:    make(map[string]error),
		stories:    stories,
	}
}

func (s *storylineRepoStub) Create(_ context.Context, storyline *models.Storyline, storyIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if storyline.ID == "" {
		storyline.ID = uuid.NewString()
	}
	if storyline.CreatedAt.IsZero() {
		storyline.CreatedAt = time.Now().UTC()
	}
	s.storylines[storyline.ID] = storyline
	s.members[storyline.ID] = append([]string(nil), storyIDs...)
	return nil
}

func (s *storylineRepoStub) GetByID(_ context.Context, id string) (*models.Storyline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	storyline, ok := s.storylines[id]
	if !ok {
		return nil, models.NewNotFoundError("Storyline", id)
	}
	copied := *storyline
	copied.Stories = s.resolve(id)
	return &copied, nil
}

func (s *storylineRepoStub) ListForAuthor(_ context.Context, authorID string) ([]models.Storyline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.listErr[authorID]; err != nil {
		return nil, err
	}
	var result []models.Storyline
	for id, storyline := range s.storylines {
		if storyline.AuthorID != authorID {
			continue
		}
		copied := *storyline
		copied.Stories = s.resolve(id)
		result = append(result, copied)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// resolve mirrors the repository behavior: dangling story ids are skipped.
func (s *storylineRepoStub) resolve(storylineID string) []models.Story {
	stories := []models.Story{}
	s.stories.mu.Lock()
	defer s.stories.mu.Unlock()
	for _, storyID := range s.members[storylineID] {
		if story, ok := s.stories.stories[storyID]; ok {
			stories = append(stories, *story)
		}
	}
	return stories
}

type mediaRepoStub struct {
	mu    sync.Mutex
	blobs map[string]*models.MediaBlob
	// createErr forces Create to fail when set.
	createErr error
}

func newMediaRepoStub() *mediaRepoStub {
	return &mediaRepoStub{blobs: make(map[string]*models.MediaBlob)}
}

func (s *mediaRepoStub) Create(_ context.Context, blob *models.MediaBlob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	if blob.ID == "" {
		blob.ID = uuid.NewString()
	}
	s.blobs[blob.Hash] = blob
	return nil
}

func (s *mediaRepoStub) GetByHash(_ context.Context, hash string) (*models.MediaBlob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	blob, ok := s.blobs[hash]
	if !ok {
		return nil, models.NewNotFoundError("Media", hash)
	}
	return blob, nil
}
