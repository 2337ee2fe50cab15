package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"documentum/internal/config"
	"documentum/internal/domain/models"
	"documentum/internal/fixtures"
	"documentum/internal/repository/postgres"
	"documentum/internal/service"
	"documentum/internal/store"
	"documentum/internal/task"

	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop the snapshot table before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed default preferences")
	clearData := flag.Bool("clear-data", false, "Delete every stored snapshot (keep schema)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}
	if cfg.DatabaseURL == "" {
		log.Fatalf("DATABASE_URL is required")
	}

	logger := config.NewLogger(cfg, os.Stdout)

	switch {
	case *clearData:
		log.Printf("Clearing snapshots (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	case *schemaOnly:
		log.Printf("Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	default:
		log.Printf("Seeding default preferences (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("Dropping snapshot table...")
		if err := postgres.DropSchema(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
	}

	log.Println("Ensuring database schema is up to date...")
	if err := postgres.CreateSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}

	if *schemaOnly {
		log.Println("Schema setup complete (schema-only mode)")
		return
	}

	repo := postgres.NewSnapshotRepository(&postgres.RepositoryConfig{Pool: pool, Tables: tables, Logger: logger})
	prefs := service.NewPreferencesService(repo, postgres.NewTransactionManager(pool, logger), logger)

	set, err := fixtures.Load(time.Now())
	if err != nil {
		log.Fatalf("Failed to load fixtures: %v", err)
	}

	if *clearData {
		for _, u := range set.Users {
			if err := prefs.ResetAll(ctx, u.ID); err != nil {
				log.Fatalf("Failed to clear snapshots of %s: %v", u.ID, err)
			}
		}
		log.Println("Snapshots cleared")
		return
	}

	written := 0
	for _, u := range set.Users {
		n, err := seedDefaults(ctx, prefs, u.ID, set)
		if err != nil {
			log.Fatalf("Failed to seed %s: %v", u.ID, err)
		}
		written += n
	}
	log.Printf("Seeded %d snapshots for %d users", written, len(set.Users))
}

// seedDefaults writes the default persisted subset of every store for owner
func seedDefaults(ctx context.Context, prefs *service.PreferencesService, owner string, set *fixtures.Set) (int, error) {
	defaults := map[string]interface{}{
		models.KeyDocuments: store.NewDocumentStore().Preferences(),
		models.KeyFolders:   store.NewFolderStore(set.Tree).Preferences(),
		models.KeyUI:        store.NewUIStore(task.NewRealScheduler(), 0).Preferences(),
		models.KeyRecent:    store.NewRecentStore().Preferences(),
		models.KeyShared:    store.NewSharedStore().Preferences(),
		models.KeyStarred:   store.NewStarredStore().Preferences(),
	}

	written := 0
	for _, key := range models.SnapshotKeys {
		ok, err := prefs.Write(ctx, owner, key, defaults[key])
		if err != nil {
			return written, fmt.Errorf("write %s: %w", key, err)
		}
		if ok {
			written++
		}
	}
	return written, nil
}
