package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/riskibarqy/volleyball-bot/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/volleyball-bot/internal/platform/logging"
)

const usage = `usage: migration <command> [arg]

commands:
  up              apply all pending migrations
  down [steps]    roll back steps migrations (default 1)
  version         print the current schema version
  force <version> mark version as applied without running it
  goto <version>  migrate up or down to version`

func main() {
	logger := logging.NewJSON(logging.LevelInfo)
	defer func() { _ = logger.Sync() }()

	if err := run(os.Args[1:], logger); err != nil {
		logger.Error("migration failed", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(args []string, logger *logging.Logger) error {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, usage)
		return errors.New("missing command")
	}

	dbURL := strings.TrimSpace(os.Getenv("DB_URL"))
	if dbURL == "" {
		return errors.New("DB_URL is required")
	}
	disableBinary, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv("DB_DISABLE_PREPARED_BINARY_RESULT")))
	dbURL = postgres.PrepareDSN(dbURL, disableBinary)

	migrationsDir, err := resolveMigrationsDir()
	if err != nil {
		return err
	}

	sourceURL := "file://" + filepath.ToSlash(migrationsDir)
	m, err := migrate.New(sourceURL, dbURL)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			logger.Warn("close migrator", "source_error", srcErr, "db_error", dbErr)
		}
	}()

	cmd := strings.ToLower(strings.TrimSpace(args[0]))
	switch cmd {
	case "up":
		if err := ignoreNoChange(m.Up()); err != nil {
			return err
		}
		logger.Info("migrations applied", "source", sourceURL)
	case "down":
		steps := 1
		if len(args) > 1 {
			if steps, err = strconv.Atoi(strings.TrimSpace(args[1])); err != nil || steps <= 0 {
				return fmt.Errorf("down steps must be a positive integer, got %q", args[1])
			}
		}
		if err := ignoreNoChange(m.Steps(-steps)); err != nil {
			return err
		}
		logger.Info("migrations rolled back", "steps", steps)
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			logger.Info("schema version", "version", "none", "dirty", false)
			return nil
		}
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		logger.Info("schema version", "version", version, "dirty", dirty)
	case "force":
		version, err := versionArg(args, cmd)
		if err != nil {
			return err
		}
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("force version %d: %w", version, err)
		}
		logger.Info("schema version forced", "version", version)
	case "goto":
		version, err := versionArg(args, cmd)
		if err != nil {
			return err
		}
		if err := ignoreNoChange(m.Migrate(version)); err != nil {
			return err
		}
		logger.Info("schema migrated", "version", version)
	default:
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}

	return nil
}

func versionArg(args []string, cmd string) (uint, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("%s requires a version argument", cmd)
	}
	value, err := strconv.ParseUint(strings.TrimSpace(args[1]), 10, 31)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", args[1], err)
	}
	return uint(value), nil
}

func ignoreNoChange(err error) error {
	if err == nil || errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

func resolveMigrationsDir() (string, error) {
	candidates := []string{
		strings.TrimSpace(os.Getenv("MIGRATIONS_DIR")),
		"./db/migrations",
		"/app/db/migrations",
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			return abs, nil
		}
	}

	return "", errors.New("migration directory not found (checked MIGRATIONS_DIR, ./db/migrations, /app/db/migrations)")
}
