package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	"github.com/coachdesk/coachdesk/internal/config"
	"github.com/coachdesk/coachdesk/internal/logger"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

func main() {
	dir := flag.String("dir", "migrations", "Directory with migration files")
	down := flag.Bool("down", false, "Roll back the most recent migration instead of migrating up")
	flag.Parse()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	dsn := cfg.Postgres.GetDSN()
	logger.Infow("Connecting to database", "host", cfg.Postgres.Host)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.Fatalw("Failed to connect to postgres", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := goose.SetDialect("postgres"); err != nil {
		logger.Fatalw("Failed to set migration dialect", "error", err)
	}

	if *down {
		logger.Info("Rolling back the most recent migration...")
		if err := goose.DownContext(ctx, db, *dir); err != nil {
			logger.Fatalw("Failed to roll back migration", "error", err)
		}
		logger.Info("Rollback completed successfully")
		return
	}

	logger.Info("Running database migrations...")
	if err := goose.UpContext(ctx, db, *dir); err != nil {
		logger.Fatalw("Failed to run migrations", "error", err)
	}
	logger.Info("Migration completed successfully")
}
