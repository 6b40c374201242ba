package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alphabank/alphabank-api/internal/model"
)

// RecurringStore is the persistence the recurring service needs.
type RecurringStore interface {
	ListRecurringRules(ctx context.Context, userID string) ([]*model.RecurringRule, error)
	GetRecurringRule(ctx context.Context, userID, id string) (*model.RecurringRule, error)
	CreateRecurringRule(ctx context.Context, rule *model.RecurringRule) error
	UpdateRecurringRule(ctx context.Context, userID, id string, upd model.RecurringRuleUpdate) (*model.RecurringRule, error)
	DeleteRecurringRule(ctx context.Context, userID, id string) error
}

// PendingGenerator materializes due rules into transactions.
type PendingGenerator interface {
	GeneratePending(ctx context.Context, userID string, now time.Time) (int, error)
}

// RecurringService manages recurring rules and triggers generation.
type RecurringService struct {
	store      RecurringStore
	categories CategoryLookup
	generator  PendingGenerator
	now        func() time.Time
}

// NewRecurringService creates a new RecurringService.
func NewRecurringService(store RecurringStore, categories CategoryLookup, generator PendingGenerator) *RecurringService {
	return &RecurringService{
		store:      store,
		categories: categories,
		generator:  generator,
		now:        time.Now,
	}
}

// List returns all of the user's rules, active or not.
func (s *RecurringService) List(ctx context.Context, userID string) ([]*model.RecurringRule, error) {
	rules, err := s.store.ListRecurringRules(ctx, userID)
	if err != nil {
		return nil, translate(err, "list recurring rules")
	}
	if rules == nil {
		rules = []*model.RecurringRule{}
	}
	return rules, nil
}

// Get returns one of the user's rules.
func (s *RecurringService) Get(ctx context.Context, userID, id string) (*model.RecurringRule, error) {
	rule, err := s.store.GetRecurringRule(ctx, userID, id)
	if err != nil {
		return nil, translate(err, "get recurring rule")
	}
	return rule, nil
}

// CreateRecurringInput defines input for creating a rule.
type CreateRecurringInput struct {
	Description string
	Amount      decimal.Decimal
	Kind        model.Kind
	CategoryID  *string
	Frequency   model.Frequency
}

// Create stores an active rule that has never generated.
func (s *RecurringService) Create(ctx context.Context, userID string, input CreateRecurringInput) (*model.RecurringRule, error) {
	input.Description = strings.TrimSpace(input.Description)

	if err := validateLength("description", input.Description, 1, MaxDescriptionLength); err != nil {
		return nil, err
	}
	if err := validatePositive("amount", input.Amount); err != nil {
		return nil, err
	}
	if err := validateKind("transaction_type", input.Kind); err != nil {
		return nil, err
	}
	if err := validateFrequency(input.Frequency); err != nil {
		return nil, err
	}
	categoryID, err := checkCategory(ctx, s.categories, userID, input.CategoryID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Microsecond)
	rule := &model.RecurringRule{
		ID:          newID(),
		UserID:      userID,
		Description: input.Description,
		Amount:      input.Amount,
		Kind:        input.Kind,
		CategoryID:  categoryID,
		Frequency:   input.Frequency,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateRecurringRule(ctx, rule); err != nil {
		return nil, translate(err, "create recurring rule")
	}
	return rule, nil
}

// UpdateRecurringInput holds optional rule changes.
type UpdateRecurringInput struct {
	Description *string
	Amount      *decimal.Decimal
	Kind        *model.Kind
	CategoryID  *string
	Frequency   *model.Frequency
	Active      *bool
}

// Update applies a partial update to one of the user's rules. The
// watermark is never changed here.
func (s *RecurringService) Update(ctx context.Context, userID, id string, input UpdateRecurringInput) (*model.RecurringRule, error) {
	upd := model.RecurringRuleUpdate{Active: input.Active}

	if input.Description != nil {
		d := strings.TrimSpace(*input.Description)
		if err := validateLength("description", d, 1, MaxDescriptionLength); err != nil {
			return nil, err
		}
		upd.Description = &d
	}
	if input.Amount != nil {
		if err := validatePositive("amount", *input.Amount); err != nil {
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
	if input.Frequency != nil {
		if err := validateFrequency(*input.Frequency); err != nil {
			return nil, err
		}
		upd.Frequency = input.Frequency
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

	if upd.IsEmpty() {
		return nil, ErrNoFieldsToUpdate
	}

	rule, err := s.store.UpdateRecurringRule(ctx, userID, id, upd)
	if err != nil {
		return nil, translate(err, "update recurring rule")
	}
	return rule, nil
}

// Delete removes one of the user's rules. Transactions it generated are
// kept.
func (s *RecurringService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteRecurringRule(ctx, userID, id); err != nil {
		return translate(err, "delete recurring rule")
	}
	return nil
}

// Generate creates the transactions due now for the user's active rules
// and returns how many were created.
func (s *RecurringService) Generate(ctx context.Context, userID string) (int, error) {
	return s.generator.GeneratePending(ctx, userID, s.now().UTC().Truncate(time.Microsecond))
}
