package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"realtime/internal/models"

	"gorm.io/gorm"
)

// Seeder populates the database with a realistic social mesh: users,
// friend edges, conversations, and stories.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	rng     *rand.Rand
}

// NewSeeder creates a Seeder with default options.
func NewSeeder(db *gorm.DB) *Seeder {
	return NewSeederWithOptions(db, Options{})
}

// NewSeederWithOptions creates a Seeder with explicit options.
func NewSeederWithOptions(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{
		db:      db,
		factory: NewFactory(db, opts),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll removes all seeded data. Order respects foreign key dependencies.
func (s *Seeder) ClearAll() error {
	tables := []any{
		&models.StorylineStory{},
		&models.Storyline{},
		&models.Story{},
		&models.Message{},
		&models.Friendship{},
		&models.MediaBlob{},
		&models.User{},
	}
	for _, table := range tables {
		if err := s.db.Where("1 = 1").Delete(table).Error; err != nil {
			return fmt.Errorf("clearing %T: %w", table, err)
		}
	}
	log.Println("Database cleared")
	return nil
}

// SeedDirectory creates users and a friend mesh. Each user gets a random
// set of one-directional friend edges.
func (s *Seeder) SeedDirectory(numUsers int) ([]*models.User, error) {
	if numUsers < 2 {
		numUsers = 2
	}

	users := make([]*models.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("creating user %d: %w", i, err)
		}
		users = append(users, user)
	}

	// Friend mesh: each user follows 2-8 others, one direction only.
	edges := 0
	for _, user := range users {
		count := s.rng.Intn(7) + 2
		if count > numUsers-1 {
			count = numUsers - 1
		}
		seen := map[string]struct{}{user.ID: {}}
		for len(seen)-1 < count {
			friend := users[s.rng.Intn(numUsers)]
			if _, dup := seen[friend.ID]; dup {
				continue
			}
			seen[friend.ID] = struct{}{}
			if err := s.factory.CreateFriendEdge(user.ID, friend.ID); err != nil {
				return nil, fmt.Errorf("creating friend edge: %w", err)
			}
			edges++
		}
	}

	log.Printf("Seeded %d users with %d friend edges", len(users), edges)
	return users, nil
}

// SeedConversations creates message history between befriended pairs.
func (s *Seeder) SeedConversations(users []*models.User, messagesPerPair int) (int, error) {
	if messagesPerPair <= 0 {
		messagesPerPair = 10
	}

	total := 0
	for _, user := range users {
		var friendIDs []string
		if err := s.db.Model(&models.Friendship{}).
			Where("owner_id = ?", user.ID).
			Pluck("friend_id", &friendIDs).Error; err != nil {
			return total, fmt.Errorf("loading friends for %s: %w", user.ID, err)
		}

		for _, friendID := range friendIDs {
			// Roughly half the pairs have history.
			if s.rng.Intn(2) == 0 {
				continue
			}
			for i := 0; i < s.rng.Intn(messagesPerPair)+1; i++ {
				sender, recipient := user.ID, friendID
				if s.rng.Intn(2) == 0 {
					sender, recipient = recipient, sender
				}
				if _, err := s.factory.CreateMessage(sender, recipient); err != nil {
					return total, fmt.Errorf("creating message: %w", err)
				}
				total++
			}
		}
	}

	log.Printf("Seeded %d messages", total)
	return total, nil
}

// SeedStories creates recent stories for a random subset of users, plus a
// storyline for users with enough stories.
func (s *Seeder) SeedStories(users []*models.User, maxPerUser int) (int, error) {
	if maxPerUser <= 0 {
		maxPerUser = 5
	}

	total := 0
	for _, user := range users {
		// A third of users have no active stories.
		if s.rng.Intn(3) == 0 {
			continue
		}

		count := s.rng.Intn(maxPerUser) + 1
		storyIDs := make([]string, 0, count)
		for i := 0; i < count; i++ {
			story, err := s.factory.CreateStory(user.ID, func(st *models.Story) {
				// Stories stay inside a day so they survive the sweeper.
				st.Timestamp = time.Now().UTC().Add(-time.Duration(s.rng.Intn(20)) * time.Hour)
			})
			if err != nil {
				return total, fmt.Errorf("creating story: %w", err)
			}
			storyIDs = append(storyIDs, story.ID)
			total++
		}

		if len(storyIDs) >= 3 {
			storyline := &models.Storyline{AuthorID: user.ID}
			if err := s.db.Create(storyline).Error; err != nil {
				return total, fmt.Errorf("creating storyline: %w", err)
			}
			for pos, storyID := range storyIDs {
				member := &models.StorylineStory{
					StorylineID: storyline.ID,
					StoryID:     storyID,
					Position:    pos,
				}
				if err := s.db.Create(member).Error; err != nil {
					return total, fmt.Errorf("creating storyline membership: %w", err)
				}
			}
		}
	}

	log.Printf("Seeded %d stories", total)
	return total, nil
}
