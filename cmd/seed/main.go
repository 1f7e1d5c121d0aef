package main

import (
	"context"
	"flag"
	"log"
	"os"

	"hostel/internal/config"
	"hostel/internal/db"
	"hostel/internal/events"
	"hostel/internal/repository"
	"hostel/internal/seed"
	"hostel/internal/service"
)

func main() {
	source := flag.String("source", os.Getenv("SEED_SOURCE"), "seed JSON file path or http(s) URL")
	flag.Parse()
	if *source == "" {
		log.Fatal("no seed source: pass -source or set SEED_SOURCE")
	}

	log.Println("Starting seed script...")

	// Load configuration
	cfg := config.Load()

	// Connect to database
	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	// Run migrations to ensure schema is up to date
	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()

	log.Printf("Fetching seed data from: %s", *source)
	data, err := seed.Fetch(ctx, *source)
	if err != nil {
		log.Fatalf("Failed to fetch seed data: %v", err)
	}
	log.Printf("Fetched %d rooms", len(data.Rooms))

	// Rooms are created without a cache; occupancy events are not needed here.
	store := repository.NewStore(gormDB)
	rooms := service.NewRoomService(store, nil, events.NopPublisher{})
	users := service.NewUserService(store, nil, nil, events.NopPublisher{})

	res, err := seed.Apply(ctx, rooms, users, data)
	if err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - Rooms created: %d", res.RoomsCreated)
	log.Printf("  - Rooms skipped: %d", res.RoomsSkipped)
	log.Printf("  - Admin created: %t", res.AdminCreated)
}
