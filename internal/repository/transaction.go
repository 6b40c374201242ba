package repository

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/alphabank/alphabank-api/internal/model"
)

// ErrTransactionNotFound is returned when no transaction matches.
var ErrTransactionNotFound = errors.New("transaction not found")

const transactionColumns = `id, user_id, description, amount, type, category_id, date, recurring, recurring_id, created_at`

// PaginationCursor represents decoded cursor for pagination.
type PaginationCursor struct {
	ID   string    `json:"id"`
	Date time.Time `json:"date"`
}

// InsertTransaction inserts a new transaction.
func (r *Repository) InsertTransaction(ctx context.Context, tx *model.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, description, amount, type, category_id, date, recurring, recurring_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		tx.ID,
		tx.UserID,
		tx.Description,
		tx.Amount,
		string(tx.Kind),
		tx.CategoryID,
		tx.Date,
		tx.Recurring,
		tx.RecurringID,
		tx.CreatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrInvalidReference
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// GetTransaction retrieves one of the user's transactions.
func (r *Repository) GetTransaction(ctx context.Context, userID, id string) (*model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 AND user_id = $2`

	tx, err := scanTransaction(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return tx, nil
}

// ListTransactions retrieves a page of the user's transactions, newest first.
func (r *Repository) ListTransactions(ctx context.Context, userID string, filter model.TransactionFilter) ([]*model.Transaction, string, error) {
	var cursorData *PaginationCursor
	if filter.Cursor != "" {
		var err error
		cursorData, err = decodeCursor(filter.Cursor)
		if err != nil {
			return nil, "", ErrInvalidCursor
		}
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1`
	args := []any{userID}
	argIndex := 2

	if cursorData != nil {
		query += fmt.Sprintf(" AND (date, id) < ($%d, $%d)", argIndex, argIndex+1)
		args = append(args, cursorData.Date, cursorData.ID)
		argIndex += 2
	}

	if filter.Kind != nil {
		query += fmt.Sprintf(" AND type = $%d", argIndex)
		args = append(args, string(*filter.Kind))
		argIndex++
	}

	if filter.CategoryID != nil {
		query += fmt.Sprintf(" AND category_id = $%d", argIndex)
		args = append(args, *filter.CategoryID)
		argIndex++
	}

	if filter.From != nil {
		query += fmt.Sprintf(" AND date >= $%d", argIndex)
		args = append(args, *filter.From)
		argIndex++
	}

	if filter.To != nil {
		query += fmt.Sprintf(" AND date < $%d", argIndex)
		args = append(args, *filter.To)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY date DESC, id DESC LIMIT $%d", argIndex)
	args = append(args, filter.Limit+1) // Fetch one extra to determine hasMore

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []*model.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, "", fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("error iterating transactions: %w", err)
	}

	var nextCursor string
	if len(txs) > filter.Limit {
		txs = txs[:filter.Limit]
		last := txs[len(txs)-1]
		nextCursor = encodeCursor(&PaginationCursor{ID: last.ID, Date: last.Date})
	}

	return txs, nextCursor, nil
}

// UpdateTransaction applies the non-nil fields of upd.
func (r *Repository) UpdateTransaction(ctx context.Context, userID, id string, upd model.TransactionUpdate) (*model.Transaction, error) {
	b := newUpdate("transactions")
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
	if upd.Date != nil {
		b.set("date", *upd.Date)
	}
	if b.empty() {
		return nil, ErrNoFieldsToUpdate
	}
	b.where("id", id).where("user_id", userID)

	query, args := b.build(transactionColumns)
	tx, err := scanTransaction(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		if isForeignKeyViolation(err) {
			return nil, ErrInvalidReference
		}
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	return tx, nil
}

// DeleteTransaction removes one of the user's transactions.
func (r *Repository) DeleteTransaction(ctx context.Context, userID, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTransactionNotFound
	}

	return nil
}

// SummarizeTransactions totals the user's income and expenses in [from, to).
// Nil bounds are open.
func (r *Repository) SummarizeTransactions(ctx context.Context, userID string, from, to *time.Time) (*model.TransactionSummary, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0),
			COUNT(*)
		FROM transactions
		WHERE user_id = $1
		  AND ($2::timestamptz IS NULL OR date >= $2)
		  AND ($3::timestamptz IS NULL OR date < $3)
	`

	var s model.TransactionSummary
	if err := r.db.QueryRow(ctx, query, userID, from, to).Scan(&s.Income, &s.Expense, &s.Count); err != nil {
		return nil, fmt.Errorf("failed to summarize transactions: %w", err)
	}
	s.Balance = s.Income.Sub(s.Expense)

	return &s, nil
}

func scanTransaction(row pgx.Row) (*model.Transaction, error) {
	var (
		tx   model.Transaction
		kind string
	)
	err := row.Scan(
		&tx.ID,
		&tx.UserID,
		&tx.Description,
		&tx.Amount,
		&kind,
		&tx.CategoryID,
		&tx.Date,
		&tx.Recurring,
		&tx.RecurringID,
		&tx.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	tx.Kind = model.Kind(kind)
	return &tx, nil
}

// encodeCursor encodes pagination cursor to base64.
func encodeCursor(cursor *PaginationCursor) string {
	data, _ := json.Marshal(cursor)
	return base64.URLEncoding.EncodeToString(data)
}

// decodeCursor decodes base64 pagination cursor.
func decodeCursor(s string) (*PaginationCursor, error) {
	data, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}

	var cursor PaginationCursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return nil, err
	}
	if cursor.ID == "" || cursor.Date.IsZero() {
		return nil, ErrInvalidCursor
	}

	return &cursor, nil
}
