package main

import (
	"context"
	"flag"
	"log"

	"janus/internal/config"
	"janus/internal/db"
	"janus/internal/repository"
	"janus/internal/service"
)

func main() {
	cfg := config.Load()

	seedFile := flag.String("file", cfg.SeedFile, "YAML file with the seed accounts")
	quota := flag.Int("quota", cfg.InitialQuota, "uses for entries without uses_available")
	suspend := flag.String("suspend", "", "deactivate the named account instead of seeding")
	reactivate := flag.String("reactivate", "", "reactivate the named account instead of seeding")
	flag.Parse()

	log.Println("Starting seed script...")

	// Connect to database
	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	// Run migrations to ensure schema is up to date
	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	accounts := service.NewAccountService(repository.NewAccountRepository(gormDB))
	ctx := context.Background()

	switch {
	case *suspend != "":
		if err := accounts.SetActive(ctx, *suspend, false); err != nil {
			log.Fatalf("Failed to suspend %s: %v", *suspend, err)
		}
		log.Printf("Account %s suspended", *suspend)
		return
	case *reactivate != "":
		if err := accounts.SetActive(ctx, *reactivate, true); err != nil {
			log.Fatalf("Failed to reactivate %s: %v", *reactivate, err)
		}
		log.Printf("Account %s reactivated", *reactivate)
		return
	}

	if *seedFile == "" {
		log.Fatal("No seed file given; set SEED_FILE or pass -file")
	}

	seeds, err := config.LoadSeedAccounts(*seedFile, *quota)
	if err != nil {
		log.Fatalf("Failed to load seed accounts: %v", err)
	}
	log.Printf("Loaded %d seed accounts from %s", len(seeds), *seedFile)

	created, skipped, err := accounts.SeedAccounts(ctx, seeds)
	if err != nil {
		log.Fatalf("Failed to seed accounts: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New accounts created: %d", created)
	log.Printf("  - Existing accounts left untouched: %d", skipped)
}
