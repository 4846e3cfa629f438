package main

import (
	"context"
	"flag"
	"log"
	"time"

	"filevault/internal/config"
	"filevault/internal/repository/postgres"
	"filevault/internal/seed"
	"filevault/internal/service"
	"filevault/internal/storage"

	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed folders and files")
	verify := flag.Bool("verify", true, "Download every seeded file afterwards and compare contents")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("🚫 BLOCKED: Cannot run --drop-tables in production environment")
	}

	// Setup logger
	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if *schemaOnly {
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else {
		log.Printf("🌱 Seeding (environment: %s, store: %s, blobs: %s)", cfg.Environment, cfg.Store, cfg.BlobBackend)
	}

	// Drop tables before storage.Open recreates them
	if *dropTables {
		if cfg.Store != storage.BackendPostgres {
			log.Fatalf("--drop-tables requires STORE=postgres")
		}
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		log.Println("🗑️  Dropping all tables...")
		if err := postgres.DropTables(ctx, pool, postgres.NewTableNames(cfg.TablePrefix)); err != nil {
			pool.Close()
			log.Fatalf("Failed to drop tables: %v", err)
		}
		pool.Close()
		log.Println("✅ Tables dropped")
	}

	// Opening the store runs the schema
	stores, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer stores.Close()
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	svcs, err := service.SetupServices(ctx, stores.Folders, stores.Versions, stores.TxManager, stores.Blobs,
		service.OptionsFromConfig(cfg), logger)
	if err != nil {
		log.Fatalf("Failed to set up services: %v", err)
	}

	fixtures, err := seed.LoadFixtures()
	if err != nil {
		log.Fatalf("Failed to load fixtures: %v", err)
	}

	seeder := seed.NewSeeder(svcs.Folders, svcs.Files, logger)
	result, err := seeder.Seed(ctx, fixtures)
	if err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}
	log.Printf("📝 Folders created: %d, files created: %d, files skipped: %d, versions written: %d",
		result.FoldersCreated, result.FilesCreated, result.FilesSkipped, result.Versions)

	if *verify {
		if err := seeder.Verify(ctx, fixtures); err != nil {
			log.Fatalf("Seed verification failed: %v", err)
		}
		log.Println("✅ Seeded files verified")
	}

	log.Println("🎉 Seeding complete!")
}
