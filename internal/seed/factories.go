// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"realtime/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options controls seeding behavior.
type Options struct {
	// SkipBcrypt stores plaintext passwords for fast dev seeding.
	SkipBcrypt bool
	// MaxDays spreads generated timestamps over this many days back.
	MaxDays int
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		opts: opts,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// pastTimestamp returns a timestamp spread over the configured window.
func (f *Factory) pastTimestamp() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 14
	}
	back := time.Duration(f.rng.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rng.Intn(24))*time.Hour +
		time.Duration(f.rng.Intn(60))*time.Minute
	return time.Now().UTC().Add(-back)
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Name:            gofakeit.Name(),
		Email:           gofakeit.Email(),
		ProfileImageRef: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		BannerImageRef:  fmt.Sprintf("https://picsum.photos/seed/%s/1200/400", gofakeit.UUID()),
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateFriendEdge adds friendID to ownerID's friend list (one direction).
func (f *Factory) CreateFriendEdge(ownerID, friendID string) error {
	edge := &models.Friendship{OwnerID: ownerID, FriendID: friendID}
	return f.db.Create(edge).Error
}

// CreateMessage persists a message between two users with a spread timestamp.
func (f *Factory) CreateMessage(senderID, recipientID string, overrides ...func(*models.Message)) (*models.Message, error) {
	message := &models.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Text:        gofakeit.Sentence(f.rng.Intn(10) + 2),
		Timestamp:   f.pastTimestamp(),
	}
	if f.rng.Intn(5) == 0 {
		message.ImageRef = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
	}

	for _, override := range overrides {
		override(message)
	}

	if err := f.db.Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

// CreateStory persists a story for the author with a spread timestamp.
func (f *Factory) CreateStory(authorID string, overrides ...func(*models.Story)) (*models.Story, error) {
	story := &models.Story{
		AuthorID:  authorID,
		ImageRef:  fmt.Sprintf("https://picsum.photos/seed/%s/1080/1920", gofakeit.UUID()),
		Timestamp: f.pastTimestamp(),
	}

	for _, override := range overrides {
		override(story)
	}

	if err := f.db.Create(story).Error; err != nil {
		return nil, err
	}
	return story, nil
}
