// Command migrate applies the SQL files under migrations/ to PostgreSQL.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

const createVersionTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version    VARCHAR(64) PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// migration is one numbered up/down pair on disk.
type migration struct {
	version string
	name    string
	up      string
	down    string
}

func main() {
	_ = godotenv.Load()

	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		dir         = flag.String("dir", "migrations", "Directory holding NNNNNN_name.{up,down}.sql files")
		down        = flag.Bool("down", false, "Roll back the most recently applied migration")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if *databaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	migrations, err := loadMigrations(*dir)
	if err != nil {
		logger.Error("failed to read migrations", "dir", *dir, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := sql.Open("postgres", *databaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if _, err := db.ExecContext(ctx, createVersionTable); err != nil {
		logger.Error("failed to create schema_migrations", "error", err)
		os.Exit(1)
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		logger.Error("failed to read applied versions", "error", err)
		os.Exit(1)
	}

	if *down {
		err = rollbackLast(ctx, db, migrations, applied, logger)
	} else {
		err = applyPending(ctx, db, migrations, applied, logger)
	}
	if err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

// loadMigrations pairs up and down files by version, sorted ascending.
func loadMigrations(dir string) ([]migration, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, err
	}

	byVersion := make(map[string]*migration)
	for _, path := range paths {
		base := filepath.Base(path)
		version, rest, ok := strings.Cut(base, "_")
		if !ok {
			return nil, fmt.Errorf("malformed migration file name: %s", base)
		}

		var direction string
		switch {
		case strings.HasSuffix(rest, ".up.sql"):
			direction = "up"
		case strings.HasSuffix(rest, ".down.sql"):
			direction = "down"
		default:
			return nil, fmt.Errorf("migration %s must end in .up.sql or .down.sql", base)
		}

		body, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		m, ok := byVersion[version]
		if !ok {
			m = &migration{version: version, name: strings.TrimSuffix(rest, "."+direction+".sql")}
			byVersion[version] = m
		}
		if direction == "up" {
			m.up = string(body)
		} else {
			m.down = string(body)
		}
	}

	out := make([]migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.up == "" {
			return nil, fmt.Errorf("migration %s has no up file", m.version)
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

func appliedVersions(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func applyPending(ctx context.Context, db *sql.DB, migrations []migration, applied map[string]bool, logger *slog.Logger) error {
	count := 0
	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		err := inTx(ctx, db, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, m.up); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", m.version)
			return err
		})
		if err != nil {
			return fmt.Errorf("apply %s_%s: %w", m.version, m.name, err)
		}
		logger.Info("applied migration", "version", m.version, "name", m.name)
		count++
	}
	logger.Info("migrations up to date", "applied", count)
	return nil
}

func rollbackLast(ctx context.Context, db *sql.DB, migrations []migration, applied map[string]bool, logger *slog.Logger) error {
	for i := len(migrations) - 1; i >= 0; i-- {
		m := migrations[i]
		if !applied[m.version] {
			continue
		}
		if m.down == "" {
			return fmt.Errorf("migration %s has no down file", m.version)
		}
		err := inTx(ctx, db, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, m.down); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version = $1", m.version)
			return err
		})
		if err != nil {
			return fmt.Errorf("roll back %s_%s: %w", m.version, m.name, err)
		}
		logger.Info("rolled back migration", "version", m.version, "name", m.name)
		return nil
	}
	logger.Info("nothing to roll back")
	return nil
}

func inTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return tx.Commit()
}
