package recurring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/alphabank/alphabank-api/internal/metrics"
	"github.com/alphabank/alphabank-api/internal/model"
)

// ErrWatermarkMoved is returned by UpdateWatermark when the rule's
// LastGenerated no longer matches the value the caller evaluated against.
var ErrWatermarkMoved = errors.New("recurring rule watermark moved")

// Store is the persistence contract the generator depends on.
type Store interface {
	// ListActiveRules returns the user's active rules.
	ListActiveRules(ctx context.Context, userID string) ([]*model.RecurringRule, error)
	// InsertTransaction persists a generated transaction.
	InsertTransaction(ctx context.Context, tx *model.Transaction) error
	// UpdateWatermark sets LastGenerated to next if it still equals prev
	// (nil meaning never generated). Otherwise it returns ErrWatermarkMoved.
	UpdateWatermark(ctx context.Context, ruleID string, prev *time.Time, next time.Time) error
}

// Transactor is implemented by stores that can run a unit of work
// atomically. When available, each rule's insert and watermark update
// commit or roll back together.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}

// Generator materializes due recurring rules into transactions.
type Generator struct {
	store   Store
	logger  *slog.Logger
	metrics metrics.Recorder
	newID   func() string
}

// Option configures a Generator.
type Option func(*Generator)

// WithIDFunc overrides transaction ID generation.
func WithIDFunc(fn func() string) Option {
	return func(g *Generator) { g.newID = fn }
}

// NewGenerator creates a Generator backed by store.
func NewGenerator(store Store, logger *slog.Logger, recorder metrics.Recorder, opts ...Option) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	g := &Generator{
		store:   store,
		logger:  logger,
		metrics: recorder,
		newID:   func() string { return ulid.Make().String() },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GeneratePending creates one transaction for each of the user's active
// rules that is due at now and returns how many succeeded. A failure on
// one rule is logged and does not stop the others. A failure to list the
// rules is returned as an error, as is ctx being done; in that case the
// count covers the rules finished before it.
func (g *Generator) GeneratePending(ctx context.Context, userID string, now time.Time) (int, error) {
	start := time.Now()
	defer func() {
		g.metrics.ObserveGenerateDuration(time.Since(start))
	}()

	rules, err := g.store.ListActiveRules(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list active rules: %w", err)
	}

	count := 0
	for _, rule := range rules {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		due, ok := Evaluate(rule, now)
		if !ok {
			continue
		}

		due.Transaction.ID = g.newID()
		if err := g.apply(ctx, rule, due); err != nil {
			g.metrics.IncRecurringFailed()
			g.logger.Warn("recurring generation failed",
				slog.String("rule_id", rule.ID),
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
			continue
		}

		g.metrics.IncRecurringGenerated()
		count++
	}

	g.logger.Debug("recurring generation finished",
		slog.String("user_id", userID),
		slog.Int("rules", len(rules)),
		slog.Int("generated", count),
	)

	return count, nil
}

func (g *Generator) apply(ctx context.Context, rule *model.RecurringRule, due Due) error {
	write := func(ctx context.Context, s Store) error {
		if err := s.InsertTransaction(ctx, &due.Transaction); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		if err := s.UpdateWatermark(ctx, rule.ID, rule.LastGenerated, due.Watermark); err != nil {
			return fmt.Errorf("update watermark: %w", err)
		}
		return nil
	}

	if tx, ok := g.store.(Transactor); ok {
		return tx.WithinTx(ctx, write)
	}
	return write(ctx, g.store)
}
