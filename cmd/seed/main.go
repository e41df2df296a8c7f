// Command main runs the database seeder for Campusboard.
package main

import (
	"flag"
	"log"

	"campusboard/internal/config"
	"campusboard/internal/database"
	"campusboard/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d posts, clean=%v\n", *numUsers, *numPosts, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db)

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	schools, err := s.Schools()
	if err != nil {
		log.Fatalf("School seeding failed: %v", err)
	}
	users, err := s.Users(*numUsers, schools)
	if err != nil {
		log.Fatalf("User seeding failed: %v", err)
	}
	posts, err := s.Posts(*numPosts, users, schools)
	if err != nil {
		log.Fatalf("Post seeding failed: %v", err)
	}
	if err := s.Votes(posts, users); err != nil {
		log.Fatalf("Vote seeding failed: %v", err)
	}

	log.Println("All done! Your database is now populated with test data.")
	log.Printf("All test users have the password: %s", seed.DefaultPassword)
}
