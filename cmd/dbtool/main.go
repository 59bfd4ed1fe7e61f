package main

import (
	"context"
	"database/sql"
	"driver-route-planner/internal/adapters/loadfile"
	"driver-route-planner/internal/adapters/repositories"
	"driver-route-planner/internal/config"
	"driver-route-planner/internal/domain"
	"driver-route-planner/internal/platform/db"
	"flag"
	"fmt"
	"log"
	"strings"
)

// dbtool creates the loads schema and seeds it from a problem file or a
// JSON seed file. Postgres is used when DATABASE_URL is set, SQLite otherwise.
func main() {
	config.LoadDotEnv()

	problemFile := flag.String("problemFile", "", "Seed from a problem file instead of the JSON seed")
	seedPath := flag.String("seed", config.Get("SEED_PATH", "data/seeds/loads.json"), "JSON seed file")
	dbPath := flag.String("db", config.Get("DB_PATH", "data/app.db"), "SQLite database path")
	flag.Parse()

	databaseURL := config.Get("DATABASE_URL", "")
	postgres := strings.TrimSpace(databaseURL) != ""

	var sqlDB *sql.DB
	var err error
	if postgres {
		sqlDB, err = db.Open(databaseURL)
	} else {
		sqlDB, err = db.OpenSQLite(*dbPath)
	}
	if err != nil {
		log.Fatal(err)
	}
	defer sqlDB.Close()

	loads, err := readLoads(*problemFile, *seedPath)
	if err != nil {
		log.Fatal(err)
	}

	if err := initAndSeed(context.Background(), sqlDB, postgres, loads); err != nil {
		log.Fatal(err)
	}
}

func readLoads(problemFile, seedPath string) ([]domain.Load, error) {
	if problemFile != "" {
		return loadfile.ReadFile(problemFile)
	}
	return repositories.ReadSeedJSON(seedPath)
}

func initAndSeed(ctx context.Context, sqlDB *sql.DB, postgres bool, loads []domain.Load) error {
	log.Println("Initializing database schema...")
	initSchema, seed := repositories.InitSchema, repositories.SeedLoads
	if postgres {
		initSchema, seed = repositories.InitPostgresSchema, repositories.SeedLoadsPostgres
	}

	if err := initSchema(sqlDB); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	log.Println("Schema ready.")

	log.Printf("Seeding database... loads=%d", len(loads))
	if err := seed(ctx, sqlDB, loads); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	log.Println("Seeding complete.")

	return nil
}
