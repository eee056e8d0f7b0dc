// Command main seeds the configured store with demo citizens for Mooderia.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"mooderia/internal/cache"
	"mooderia/internal/config"
	"mooderia/internal/repository"
	"mooderia/internal/seed"
	"mooderia/internal/storage"
)

func main() {
	numUsers := flag.Int("users", 12, "Number of citizens to create")
	postsPerUser := flag.Int("posts", 3, "Posts per citizen")
	numMessages := flag.Int("messages", 30, "Direct messages to create")
	shouldClean := flag.Bool("clean", false, "Wipe every record before seeding")
	randSeed := flag.Int64("seed", time.Now().UnixNano(), "Random seed for reproducible data")
	flag.Parse()

	log.Println("🌱 Mooderia Seeder")
	log.Println("==================")
	log.Printf("Target: %d citizens, %d posts each, %d messages, clean=%v\n",
		*numUsers, *postsPerUser, *numMessages, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	rdb := cache.ConnectOptional(ctx, cfg.RedisURL)
	kv, err := storage.Open(ctx, cfg, rdb)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer func() {
		if err := kv.Close(); err != nil {
			log.Printf("Failed to close store: %v", err)
		}
		if rdb != nil {
			_ = rdb.Close()
		}
	}()

	s := seed.NewSeeder(
		repository.NewUserDirectory(kv),
		repository.NewStateRepository(kv),
		seed.NewFactory(*randSeed, time.Now()),
	)
	res, err := s.Run(ctx, seed.Options{
		Users:        *numUsers,
		PostsPerUser: *postsPerUser,
		Messages:     *numMessages,
		Clean:        *shouldClean,
	})
	if err != nil {
		log.Printf("❌ Seeding failed: %v", err)
		return
	}

	log.Printf("✨ Created %d citizens, %d posts and %d messages.", len(res.Users), res.Posts, res.Messages)
	log.Printf("📧 All seeded citizens have the password: %s", seed.DefaultPassword)
}
