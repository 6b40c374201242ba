package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/alphabank/alphabank-api/internal/cpf"
	"github.com/alphabank/alphabank-api/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 770077

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// MigrationFiles returns the up or down migration paths in apply order.
// Down migrations are returned newest first.
func MigrationFiles(direction string) ([]string, error) {
	root, err := ProjectRoot()
	if err != nil {
		return nil, err
	}

	paths, err := filepath.Glob(filepath.Join(root, "migrations", "*."+direction+".sql"))
	if err != nil {
		return nil, fmt.Errorf("glob migrations: %w", err)
	}
	sort.Strings(paths)
	if direction == "down" {
		for i, j := 0, len(paths)-1; i < j; i, j = i+1, j-1 {
			paths[i], paths[j] = paths[j], paths[i]
		}
	}
	return paths, nil
}

// ResetSchema drops every table and re-applies all migrations.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, direction := range []string{"down", "up"} {
		paths, err := MigrationFiles(direction)
		if err != nil {
			return err
		}
		for _, path := range paths {
			sql, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s migration %s: %w", direction, filepath.Base(path), err)
			}
			if _, err := pool.Exec(ctx, string(sql)); err != nil {
				return fmt.Errorf("apply %s migration %s: %w", direction, filepath.Base(path), err)
			}
		}
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestCPF returns a random checksum-valid CPF.
func NewTestCPF(t testing.TB) string {
	t.Helper()
	for {
		v, err := cpf.Complete(gofakeit.Numerify("#########"))
		if err != nil {
			t.Fatalf("generate cpf: %v", err)
		}
		if cpf.Valid(v) {
			return v
		}
	}
}

// NewTestUser creates a user with fake personal data. The password hash is
// a placeholder; tests that log in should set a real one.
func NewTestUser(t testing.TB) *model.User {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.User{
		ID:           UniqueID(),
		FullName:     gofakeit.Name(),
		Email:        strings.ToLower(fmt.Sprintf("%d.%s", now.UnixNano(), gofakeit.Email())),
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA",
		CPF:          NewTestCPF(t),
		BirthDate:    model.NewDate(gofakeit.DateRange(time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2005, 1, 1, 0, 0, 0, 0, time.UTC))),
		Phone:        gofakeit.Phone(),
		CreatedAt:    now,
	}
}

// NewTestTransaction creates a transaction for userID.
func NewTestTransaction(t testing.TB, userID string, kind model.Kind) *model.Transaction {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.Transaction{
		ID:          UniqueID(),
		UserID:      userID,
		Description: gofakeit.Sentence(3),
		Amount:      decimal.NewFromFloat(gofakeit.Price(1, 5000)).Round(2),
		Kind:        kind,
		Date:        now,
		CreatedAt:   now,
	}
}

// NewTestRecurringRule creates an active rule for userID that has never generated.
func NewTestRecurringRule(t testing.TB, userID string, freq model.Frequency) *model.RecurringRule {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.RecurringRule{
		ID:          UniqueID(),
		UserID:      userID,
		Description: gofakeit.BuzzWord() + " subscription",
		Amount:      decimal.NewFromFloat(gofakeit.Price(1, 500)).Round(2),
		Kind:        model.KindExpense,
		Frequency:   freq,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewTestGoal creates a goal for userID with a deadline a year out.
func NewTestGoal(t testing.TB, userID string) *model.Goal {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.Goal{
		ID:            UniqueID(),
		UserID:        userID,
		Name:          gofakeit.HipsterWord(),
		TargetAmount:  decimal.NewFromInt(int64(gofakeit.Number(1000, 20000))),
		CurrentAmount: decimal.Zero,
		Deadline:      model.NewDate(now.AddDate(1, 0, 0)),
		Icon:          model.DefaultGoalIcon,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// UniqueID generates a new ULID for tests.
func UniqueID() string {
	return ulid.Make().String()
}
