package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alphabank/alphabank-api/internal/model"
)

// GoalStore is the persistence the goal service needs.
type GoalStore interface {
	ListGoals(ctx context.Context, userID string) ([]*model.Goal, error)
	GetGoal(ctx context.Context, userID, id string) (*model.Goal, error)
	CreateGoal(ctx context.Context, g *model.Goal) error
	UpdateGoal(ctx context.Context, userID, id string, upd model.GoalUpdate) (*model.Goal, error)
	AddGoalProgress(ctx context.Context, userID, id string, amount decimal.Decimal) (*model.Goal, error)
	DeleteGoal(ctx context.Context, userID, id string) error
}

// GoalService handles savings goal business logic.
type GoalService struct {
	store GoalStore
	now   func() time.Time
}

// NewGoalService creates a new GoalService.
func NewGoalService(store GoalStore) *GoalService {
	return &GoalService{store: store, now: time.Now}
}

// List returns the user's goals ordered by deadline.
func (s *GoalService) List(ctx context.Context, userID string) ([]*model.Goal, error) {
	goals, err := s.store.ListGoals(ctx, userID)
	if err != nil {
		return nil, translate(err, "list goals")
	}
	if goals == nil {
		goals = []*model.Goal{}
	}
	return goals, nil
}

// Get returns one of the user's goals.
func (s *GoalService) Get(ctx context.Context, userID, id string) (*model.Goal, error) {
	g, err := s.store.GetGoal(ctx, userID, id)
	if err != nil {
		return nil, translate(err, "get goal")
	}
	return g, nil
}

// CreateGoalInput defines input for creating a goal.
type CreateGoalInput struct {
	Name         string
	TargetAmount decimal.Decimal
	Deadline     model.Date
	Icon         string
}

// Create stores a new goal with nothing saved yet.
func (s *GoalService) Create(ctx context.Context, userID string, input CreateGoalInput) (*model.Goal, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Icon == "" {
		input.Icon = model.DefaultGoalIcon
	}

	if err := validateLength("name", input.Name, 1, MaxNameLength); err != nil {
		return nil, err
	}
	if err := validatePositive("target_amount", input.TargetAmount); err != nil {
		return nil, err
	}
	if input.Deadline.IsZero() {
		return nil, invalid("deadline", "is required")
	}
	if err := validateIcon(input.Icon); err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Microsecond)
	g := &model.Goal{
		ID:            newID(),
		UserID:        userID,
		Name:          input.Name,
		TargetAmount:  input.TargetAmount,
		CurrentAmount: decimal.Zero,
		Deadline:      input.Deadline,
		Icon:          input.Icon,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.CreateGoal(ctx, g); err != nil {
		return nil, translate(err, "create goal")
	}
	return g, nil
}

// UpdateGoalInput holds optional goal changes.
type UpdateGoalInput struct {
	Name         *string
	TargetAmount *decimal.Decimal
	Deadline     *model.Date
	Icon         *string
}

// Update applies a partial update to one of the user's goals.
func (s *GoalService) Update(ctx context.Context, userID, id string, input UpdateGoalInput) (*model.Goal, error) {
	upd := model.GoalUpdate{Deadline: input.Deadline}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if err := validateLength("name", name, 1, MaxNameLength); err != nil {
			return nil, err
		}
		upd.Name = &name
	}
	if input.TargetAmount != nil {
		if err := validatePositive("target_amount", *input.TargetAmount); err != nil {
			return nil, err
		}
		upd.TargetAmount = input.TargetAmount
	}
	if input.Icon != nil {
		if err := validateIcon(*input.Icon); err != nil {
			return nil, err
		}
		upd.Icon = input.Icon
	}

	if upd.IsEmpty() {
		return nil, ErrNoFieldsToUpdate
	}

	g, err := s.store.UpdateGoal(ctx, userID, id, upd)
	if err != nil {
		return nil, translate(err, "update goal")
	}
	return g, nil
}

// AddProgress adds a positive amount to the goal's saved total.
func (s *GoalService) AddProgress(ctx context.Context, userID, id string, amount decimal.Decimal) (*model.Goal, error) {
	if err := validatePositive("amount", amount); err != nil {
		return nil, err
	}
	g, err := s.store.AddGoalProgress(ctx, userID, id, amount)
	if err != nil {
		return nil, translate(err, "add goal progress")
	}
	return g, nil
}

// Delete removes one of the user's goals.
func (s *GoalService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteGoal(ctx, userID, id); err != nil {
		return translate(err, "delete goal")
	}
	return nil
}
