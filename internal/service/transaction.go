package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alphabank/alphabank-api/internal/metrics"
	"github.com/alphabank/alphabank-api/internal/model"
	"github.com/alphabank/alphabank-api/internal/repository"
)

// Pagination limits for transaction listings.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// TransactionStore is the persistence the transaction service needs.
type TransactionStore interface {
	InsertTransaction(ctx context.Context, tx *model.Transaction) error
	GetTransaction(ctx context.Context, userID, id string) (*model.Transaction, error)
	ListTransactions(ctx context.Context, userID string, filter model.TransactionFilter) ([]*model.Transaction, string, error)
	UpdateTransaction(ctx context.Context, userID, id string, upd model.TransactionUpdate) (*model.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id string) error
	SummarizeTransactions(ctx context.Context, userID string, from, to *time.Time) (*model.TransactionSummary, error)
}

// CategoryLookup resolves a category visible to a user.
type CategoryLookup interface {
	GetCategory(ctx context.Context, userID, id string) (*model.Category, error)
}

// TransactionService handles transaction business logic.
type TransactionService struct {
	store      TransactionStore
	categories CategoryLookup
	metrics    metrics.Recorder
	now        func() time.Time
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(store TransactionStore, categories CategoryLookup, recorder metrics.Recorder) *TransactionService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &TransactionService{
		store:      store,
		categories: categories,
		metrics:    recorder,
		now:        time.Now,
	}
}

// CreateTransactionInput defines input for creating a transaction.
type CreateTransactionInput struct {
	Description string
	Amount      decimal.Decimal
	Kind        model.Kind
	CategoryID  *string
	// Date defaults to now when nil.
	Date *model.Date
}

// Create validates and stores a transaction.
func (s *TransactionService) Create(ctx context.Context, userID string, input CreateTransactionInput) (*model.Transaction, error) {
	input.Description = strings.TrimSpace(input.Description)

	if err := validateLength("description", input.Description, 1, MaxDescriptionLength); err != nil {
		return nil, err
	}
	if err := validateNonZero("amount", input.Amount); err != nil {
		return nil, err
	}
	if err := validateKind("transaction_type", input.Kind); err != nil {
		return nil, err
	}
	categoryID, err := checkCategory(ctx, s.categories, userID, input.CategoryID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Microsecond)
	date := now
	if input.Date != nil {
		date = input.Date.Time
	}

	tx := &model.Transaction{
		ID:          newID(),
		UserID:      userID,
		Description: input.Description,
		Amount:      input.Amount,
		Kind:        input.Kind,
		CategoryID:  categoryID,
		Date:        date,
		CreatedAt:   now,
	}

	if err := s.store.InsertTransaction(ctx, tx); err != nil {
		return nil, translate(err, "create transaction")
	}

	s.metrics.IncTransactionCreated()
	return tx, nil
}

// Get returns one of the user's transactions.
func (s *TransactionService) Get(ctx context.Context, userID, id string) (*model.Transaction, error) {
	tx, err := s.store.GetTransaction(ctx, userID, id)
	if err != nil {
		return nil, translate(err, "get transaction")
	}
	return tx, nil
}

// ListTransactionsOutput is a page of transactions.
type ListTransactionsOutput struct {
	Transactions []*model.Transaction
	NextCursor   string
	HasMore      bool
}

// List returns a page of the user's transactions, newest first.
func (s *TransactionService) List(ctx context.Context, userID string, filter model.TransactionFilter) (*ListTransactionsOutput, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}
	if filter.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}
	if filter.Kind != nil {
		if err := validateKind("type", *filter.Kind); err != nil {
			return nil, err
		}
	}
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return nil, invalid("to", "must be after from")
	}

	txs, next, err := s.store.ListTransactions(ctx, userID, filter)
	if err != nil {
		return nil, translate(err, "list transactions")
	}
	if txs == nil {
		txs = []*model.Transaction{}
	}

	return &ListTransactionsOutput{
		Transactions: txs,
		NextCursor:   next,
		HasMore:      next != "",
	}, nil
}

// UpdateTransactionInput holds optional transaction changes.
type UpdateTransactionInput struct {
	Description *string
	Amount      *decimal.Decimal
	Kind        *model.Kind
	CategoryID  *string
	Date        *model.Date
}

// Update applies a partial update to one of the user's transactions.
func (s *TransactionService) Update(ctx context.Context, userID, id string, input UpdateTransactionInput) (*model.Transaction, error) {
	var upd model.TransactionUpdate

	if input.Description != nil {
		d := strings.TrimSpace(*input.Description)
		if err := validateLength("description", d, 1, MaxDescriptionLength); err != nil {
			return nil, err
		}
		upd.Description = &d
	}
	if input.Amount != nil {
		if err := validateNonZero("amount", *input.Amount); err != nil {
			return nil, err
		}
		upd.Amount = input.Amount
	}
	if input.Kind != nil {
		if err := validateKind("transaction_type", *input.Kind); err != nil {
			return nil, err
		}
		upd.Kind = input.Kind
	}
	if input.CategoryID != nil {
		categoryID, err := checkCategory(ctx, s.categories, userID, input.CategoryID)
		if err != nil {
			return nil, err
		}
		if categoryID == nil {
			return nil, invalid("category_id", "must not be empty")
		}
		upd.CategoryID = categoryID
	}
	if input.Date != nil {
		t := input.Date.Time
		upd.Date = &t
	}

	if upd.IsEmpty() {
		return nil, ErrNoFieldsToUpdate
	}

	tx, err := s.store.UpdateTransaction(ctx, userID, id, upd)
	if err != nil {
		return nil, translate(err, "update transaction")
	}
	return tx, nil
}

// Delete removes one of the user's transactions.
func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return translate(err, "delete transaction")
	}
	s.metrics.IncTransactionDeleted()
	return nil
}

// Summary totals income and expense over [from, to). Either bound may be nil.
func (s *TransactionService) Summary(ctx context.Context, userID string, from, to *time.Time) (*model.TransactionSummary, error) {
	if from != nil && to != nil && !from.Before(*to) {
		return nil, invalid("to", "must be after from")
	}
	summary, err := s.store.SummarizeTransactions(ctx, userID, from, to)
	if err != nil {
		return nil, translate(err, "summarize transactions")
	}
	return summary, nil
}

// checkCategory returns nil for an absent or empty id, otherwise confirms
// the category is visible to the user.
func checkCategory(ctx context.Context, categories CategoryLookup, userID string, id *string) (*string, error) {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*id)
	if _, err := categories.GetCategory(ctx, userID, trimmed); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, invalid("category_id", "does not exist")
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &trimmed, nil
}
