package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/alphabank/alphabank-api/internal/model"
	"github.com/alphabank/alphabank-api/internal/recurring"
)

// ErrRecurringRuleNotFound is returned when no recurring rule matches.
var ErrRecurringRuleNotFound = errors.New("recurring rule not found")

const recurringColumns = `id, user_id, description, amount, type, category_id, frequency, active, last_generated, created_at, updated_at`

var (
	_ recurring.Store      = (*Repository)(nil)
	_ recurring.Transactor = (*Repository)(nil)
)

// ListRecurringRules returns all of the user's rules, newest first.
func (r *Repository) ListRecurringRules(ctx context.Context, userID string) ([]*model.RecurringRule, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_transactions WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	return r.queryRules(ctx, query, userID)
}

// ListActiveRules returns the user's active rules in creation order.
func (r *Repository) ListActiveRules(ctx context.Context, userID string) ([]*model.RecurringRule, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_transactions WHERE user_id = $1 AND active = TRUE ORDER BY created_at ASC, id ASC`
	return r.queryRules(ctx, query, userID)
}

func (r *Repository) queryRules(ctx context.Context, query string, args ...any) ([]*model.RecurringRule, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring rules: %w", err)
	}
	defer rows.Close()

	var rules []*model.RecurringRule
	for rows.Next() {
		rule, err := scanRecurringRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recurring rule: %w", err)
		}
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recurring rules: %w", err)
	}

	return rules, nil
}

// GetRecurringRule retrieves one of the user's rules.
func (r *Repository) GetRecurringRule(ctx context.Context, userID, id string) (*model.RecurringRule, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_transactions WHERE id = $1 AND user_id = $2`

	rule, err := scanRecurringRule(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecurringRuleNotFound
		}
		return nil, fmt.Errorf("failed to get recurring rule: %w", err)
	}

	return rule, nil
}

// CreateRecurringRule inserts a rule.
func (r *Repository) CreateRecurringRule(ctx context.Context, rule *model.RecurringRule) error {
	query := `
		INSERT INTO recurring_transactions (id, user_id, description, amount, type, category_id, frequency, active, last_generated, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		rule.ID,
		rule.UserID,
		rule.Description,
		rule.Amount,
		string(rule.Kind),
		rule.CategoryID,
		string(rule.Frequency),
		rule.Active,
		rule.LastGenerated,
		rule.CreatedAt,
		rule.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrInvalidReference
		}
		return fmt.Errorf("failed to create recurring rule: %w", err)
	}

	return nil
}

// UpdateRecurringRule applies the non-nil fields of upd.
func (r *Repository) UpdateRecurringRule(ctx context.Context, userID, id string, upd model.RecurringRuleUpdate) (*model.RecurringRule, error) {
	b := newUpdate("recurring_transactions")
	if upd.Description != nil {
		b.set("description", *upd.Description)
	}
	if upd.Amount != nil {
		b.set("amount", *upd.Amount)
	}
	if upd.Kind != nil {
		b.set("type", string(*upd.Kind))
	}
	if upd.CategoryID != nil {
		b.set("category_id", *upd.CategoryID)
	}
	if upd.Frequency != nil {
		b.set("frequency", string(*upd.Frequency))
	}
	if upd.Active != nil {
		b.set("active", *upd.Active)
	}
	if b.empty() {
		return nil, ErrNoFieldsToUpdate
	}
	b.touch("updated_at = NOW()").where("id", id).where("user_id", userID)

	query, args := b.build(recurringColumns)
	rule, err := scanRecurringRule(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecurringRuleNotFound
		}
		if isForeignKeyViolation(err) {
			return nil, ErrInvalidReference
		}
		return nil, fmt.Errorf("failed to update recurring rule: %w", err)
	}

	return rule, nil
}

// DeleteRecurringRule removes one of the user's rules. Transactions it
// generated keep existing with their back-reference cleared.
func (r *Repository) DeleteRecurringRule(ctx context.Context, userID, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM recurring_transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete recurring rule: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrRecurringRuleNotFound
	}

	return nil
}

// UpdateWatermark advances last_generated from prev to next. The update
// only applies while the stored watermark still equals prev, so two
// concurrent generations cannot both claim the same period.
func (r *Repository) UpdateWatermark(ctx context.Context, ruleID string, prev *time.Time, next time.Time) error {
	query := `
		UPDATE recurring_transactions
		SET last_generated = $2, updated_at = NOW()
		WHERE id = $1 AND last_generated IS NOT DISTINCT FROM $3::timestamptz
	`

	result, err := r.db.Exec(ctx, query, ruleID, next, prev)
	if err != nil {
		return fmt.Errorf("failed to update watermark: %w", err)
	}

	if result.RowsAffected() == 0 {
		return recurring.ErrWatermarkMoved
	}

	return nil
}

// WithinTx implements recurring.Transactor.
func (r *Repository) WithinTx(ctx context.Context, fn func(ctx context.Context, s recurring.Store) error) error {
	return r.InTx(ctx, func(tx *Repository) error {
		return fn(ctx, tx)
	})
}

func scanRecurringRule(row pgx.Row) (*model.RecurringRule, error) {
	var (
		rule      model.RecurringRule
		kind      string
		frequency string
	)
	err := row.Scan(
		&rule.ID,
		&rule.UserID,
		&rule.Description,
		&rule.Amount,
		&kind,
		&rule.CategoryID,
		&frequency,
		&rule.Active,
		&rule.LastGenerated,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rule.Kind = model.Kind(kind)
	rule.Frequency = model.Frequency(frequency)
	return &rule, nil
}
