package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/alphabank/alphabank-api/internal/model"
)

// ErrGoalNotFound is returned when no goal matches.
var ErrGoalNotFound = errors.New("goal not found")

const goalColumns = `id, user_id, name, target_amount, current_amount, deadline, icon, created_at, updated_at`

// ListGoals returns the user's goals ordered by deadline.
func (r *Repository) ListGoals(ctx context.Context, userID string) ([]*model.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE user_id = $1 ORDER BY deadline ASC, id ASC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	var goals []*model.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goals: %w", err)
	}

	return goals, nil
}

// GetGoal retrieves one of the user's goals.
func (r *Repository) GetGoal(ctx context.Context, userID, id string) (*model.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE id = $1 AND user_id = $2`

	g, err := scanGoal(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGoalNotFound
		}
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}

	return g, nil
}

// CreateGoal inserts a goal.
func (r *Repository) CreateGoal(ctx context.Context, g *model.Goal) error {
	query := `
		INSERT INTO goals (id, user_id, name, target_amount, current_amount, deadline, icon, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		g.ID,
		g.UserID,
		g.Name,
		g.TargetAmount,
		g.CurrentAmount,
		g.Deadline.Time,
		g.Icon,
		g.CreatedAt,
		g.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}

	return nil
}

// UpdateGoal applies the non-nil fields of upd.
func (r *Repository) UpdateGoal(ctx context.Context, userID, id string, upd model.GoalUpdate) (*model.Goal, error) {
	b := newUpdate("goals")
	if upd.Name != nil {
		b.set("name", *upd.Name)
	}
	if upd.TargetAmount != nil {
		b.set("target_amount", *upd.TargetAmount)
	}
	if upd.Deadline != nil {
		b.set("deadline", upd.Deadline.Time)
	}
	if upd.Icon != nil {
		b.set("icon", *upd.Icon)
	}
	if b.empty() {
		return nil, ErrNoFieldsToUpdate
	}
	b.touch("updated_at = NOW()").where("id", id).where("user_id", userID)

	query, args := b.build(goalColumns)
	g, err := scanGoal(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGoalNotFound
		}
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}

	return g, nil
}

// AddGoalProgress atomically adds amount to the goal's current amount.
func (r *Repository) AddGoalProgress(ctx context.Context, userID, id string, amount decimal.Decimal) (*model.Goal, error) {
	query := `
		UPDATE goals
		SET current_amount = current_amount + $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + goalColumns

	g, err := scanGoal(r.db.QueryRow(ctx, query, id, userID, amount))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGoalNotFound
		}
		return nil, fmt.Errorf("failed to add goal progress: %w", err)
	}

	return g, nil
}

// DeleteGoal removes one of the user's goals.
func (r *Repository) DeleteGoal(ctx context.Context, userID, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM goals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrGoalNotFound
	}

	return nil
}

func scanGoal(row pgx.Row) (*model.Goal, error) {
	var g model.Goal
	err := row.Scan(
		&g.ID,
		&g.UserID,
		&g.Name,
		&g.TargetAmount,
		&g.CurrentAmount,
		&g.Deadline.Time,
		&g.Icon,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}
