// Command main runs the database seeder for the realtime backend.
package main

import (
	"flag"
	"log"

	"realtime/internal/config"
	"realtime/internal/database"
	"realtime/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	messagesPerPair := flag.Int("messages", 15, "Max messages per befriended pair")
	storiesPerUser := flag.Int("stories", 5, "Max stories per user")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fast := flag.Bool("fast", false, "Skip bcrypt hashing for faster seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Println("===============")
	log.Printf("Target: %d users, clean=%v\n", *numUsers, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeederWithOptions(db, seed.Options{SkipBcrypt: *fast})

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	users, err := s.SeedDirectory(*numUsers)
	if err != nil {
		log.Fatalf("Directory seeding failed: %v", err)
	}
	if _, err := s.SeedConversations(users, *messagesPerPair); err != nil {
		log.Fatalf("Conversation seeding failed: %v", err)
	}
	if _, err := s.SeedStories(users, *storiesPerUser); err != nil {
		log.Fatalf("Story seeding failed: %v", err)
	}

	log.Println("All done! Your database is now populated with test data.")
	log.Println("All test users have the password: password123")
}
