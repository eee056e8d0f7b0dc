// Command main wipes every Mooderia record from the configured store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"mooderia/internal/cache"
	"mooderia/internal/config"
	"mooderia/internal/repository"
	"mooderia/internal/storage"
)

func main() {
	logoutOnly := flag.Bool("logout", false, "Only clear the stored session, keep every other record")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	rdb := cache.ConnectOptional(ctx, cfg.RedisURL)
	kv, err := storage.Open(ctx, cfg, rdb)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		_ = kv.Close()
		if rdb != nil {
			_ = rdb.Close()
		}
	}()

	repo := repository.NewStateRepository(kv)
	if *logoutOnly {
		if err := repo.ClearCurrentUser(ctx); err != nil {
			log.Fatalf("failed to clear session: %v", err)
		}
		fmt.Println("Session cleared.")
		return
	}

	fmt.Printf("Wiping %s store...\n", cfg.StoreBackend)
	if err := repo.Wipe(ctx); err != nil {
		log.Fatalf("failed to wipe store: %v", err)
	}
	fmt.Println("Store wiped.")
}
