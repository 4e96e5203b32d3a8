package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/saturnino-fabrica-de-software/facegate/internal/config"
	"github.com/saturnino-fabrica-de-software/facegate/internal/database"
)

const usage = "up, down, version, force"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	action := fs.String("action", "up", "Migration action: "+usage)
	version := fs.Int("version", 0, "Target version (force only)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.InMemory() {
		return fmt.Errorf("DATABASE_URL is required to run migrations")
	}

	logger := config.NewLogger(cfg)

	dbName, err := database.DatabaseName(cfg.DatabaseURL)
	if err != nil {
		return err
	}

	// golang-migrate needs database/sql, not pgxpool
	db, err := database.NewPool(database.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	migrator, err := database.NewMigrator(db, dbName, database.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer func() { _ = migrator.Close() }()

	logger = logger.With(slog.String("database", dbName), slog.String("action", *action))

	switch *action {
	case "up":
		err = migrator.Up()
	case "down":
		err = migrator.Down()
	case "force":
		if *version <= 0 {
			return fmt.Errorf("-version is required for force")
		}
		err = migrator.Force(*version)
	case "version":
	default:
		return fmt.Errorf("invalid action %q (use: %s)", *action, usage)
	}
	if err != nil {
		return err
	}

	current, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	if dirty {
		logger.Warn("schema is dirty, fix the failed migration and force a version",
			slog.Uint64("version", uint64(current)))
		return nil
	}
	logger.Info("schema version", slog.Uint64("version", uint64(current)))
	return nil
}
