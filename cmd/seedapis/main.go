package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/adambeloucif/abel/internal/directory"
)

// seedapis loads the built-in public API catalog into the api_directory
// table. Safe to run repeatedly; existing entries are left untouched.
func main() {
	_ = godotenv.Load()

	databaseURL := flag.String("database-url", strings.TrimSpace(os.Getenv("DATABASE_URL")), "postgres connection string")
	timeout := flag.Duration("timeout", 60*time.Second, "overall seeding timeout")
	flag.Parse()

	if *databaseURL == "" {
		log.Fatalf("DATABASE_URL is not set and -database-url was not given")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	store, err := directory.NewStore(ctx, *databaseURL)
	if err != nil {
		log.Fatalf("directory store init failed: %v", err)
	}
	defer store.Close()

	entries := directory.Catalog()
	inserted, err := store.Seed(ctx, entries)
	if err != nil {
		log.Fatalf("seeding failed after %d inserts: %v", inserted, err)
	}

	log.Printf("seeded %d new entries (%d already present) across the catalog", inserted, len(entries)-inserted)
}
