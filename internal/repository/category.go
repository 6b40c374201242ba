package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/alphabank/alphabank-api/internal/model"
)

// ErrCategoryNotFound is returned when no visible category matches.
var ErrCategoryNotFound = errors.New("category not found")

const categoryColumns = `id, user_id, name, icon, color, type, is_default, created_at`

// ListCategories returns the default categories plus the user's own,
// defaults first, then by name.
func (r *Repository) ListCategories(ctx context.Context, userID string) ([]*model.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE is_default = TRUE OR user_id = $1
		ORDER BY is_default DESC, name ASC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// GetCategory returns a category visible to the user.
func (r *Repository) GetCategory(ctx context.Context, userID, id string) (*model.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE id = $1 AND (is_default = TRUE OR user_id = $2)
	`

	c, err := scanCategory(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return c, nil
}

// CreateCategory inserts a user-owned category.
func (r *Repository) CreateCategory(ctx context.Context, c *model.Category) error {
	query := `
		INSERT INTO categories (id, user_id, name, icon, color, type, is_default, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		c.ID,
		c.UserID,
		c.Name,
		c.Icon,
		c.Color,
		string(c.Kind),
		c.IsDefault,
		c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// UpdateCategory applies the non-nil fields of upd to one of the user's
// own categories.
func (r *Repository) UpdateCategory(ctx context.Context, userID, id string, upd model.CategoryUpdate) (*model.Category, error) {
	b := newUpdate("categories")
	if upd.Name != nil {
		b.set("name", *upd.Name)
	}
	if upd.Icon != nil {
		b.set("icon", *upd.Icon)
	}
	if upd.Color != nil {
		b.set("color", *upd.Color)
	}
	if b.empty() {
		return nil, ErrNoFieldsToUpdate
	}
	b.where("id", id).where("user_id", userID)

	query, args := b.build(categoryColumns)
	c, err := scanCategory(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return c, nil
}

// DeleteCategory removes one of the user's own, non-default categories.
func (r *Repository) DeleteCategory(ctx context.Context, userID, id string) error {
	query := `DELETE FROM categories WHERE id = $1 AND user_id = $2 AND is_default = FALSE`

	result, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

func scanCategory(row pgx.Row) (*model.Category, error) {
	var (
		c    model.Category
		kind string
	)
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Name,
		&c.Icon,
		&c.Color,
		&kind,
		&c.IsDefault,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Kind = model.Kind(kind)
	return &c, nil
}
