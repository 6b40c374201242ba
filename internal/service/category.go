package service

import (
	"context"
	"strings"
	"time"

	"github.com/alphabank/alphabank-api/internal/model"
)

// CategoryStore is the persistence the category service needs.
type CategoryStore interface {
	CategoryLookup
	ListCategories(ctx context.Context, userID string) ([]*model.Category, error)
	CreateCategory(ctx context.Context, c *model.Category) error
	UpdateCategory(ctx context.Context, userID, id string, upd model.CategoryUpdate) (*model.Category, error)
	DeleteCategory(ctx context.Context, userID, id string) error
}

// CategoryService handles category business logic.
type CategoryService struct {
	store CategoryStore
	now   func() time.Time
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(store CategoryStore) *CategoryService {
	return &CategoryService{store: store, now: time.Now}
}

// List returns the default categories followed by the user's own.
func (s *CategoryService) List(ctx context.Context, userID string) ([]*model.Category, error) {
	categories, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return nil, translate(err, "list categories")
	}
	if categories == nil {
		categories = []*model.Category{}
	}
	return categories, nil
}

// CreateCategoryInput defines input for creating a category. Empty Icon
// and Color fall back to the defaults.
type CreateCategoryInput struct {
	Name  string
	Icon  string
	Color string
	Kind  model.Kind
}

// Create stores a new category owned by the user.
func (s *CategoryService) Create(ctx context.Context, userID string, input CreateCategoryInput) (*model.Category, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Icon == "" {
		input.Icon = model.DefaultCategoryIcon
	}
	if input.Color == "" {
		input.Color = model.DefaultCategoryColor
	}

	if err := validateLength("name", input.Name, 1, MaxCategoryNameLength); err != nil {
		return nil, err
	}
	if err := validateIcon(input.Icon); err != nil {
		return nil, err
	}
	if err := validateColor(input.Color); err != nil {
		return nil, err
	}
	if err := validateKind("category_type", input.Kind); err != nil {
		return nil, err
	}

	owner := userID
	c := &model.Category{
		ID:        newID(),
		UserID:    &owner,
		Name:      input.Name,
		Icon:      input.Icon,
		Color:     input.Color,
		Kind:      input.Kind,
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	}

	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, translate(err, "create category")
	}
	return c, nil
}

// UpdateCategoryInput holds optional category changes.
type UpdateCategoryInput struct {
	Name  *string
	Icon  *string
	Color *string
}

// Update changes one of the user's own categories. Default categories
// cannot be modified and report ErrCategoryNotFound.
func (s *CategoryService) Update(ctx context.Context, userID, id string, input UpdateCategoryInput) (*model.Category, error) {
	var upd model.CategoryUpdate

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if err := validateLength("name", name, 1, MaxCategoryNameLength); err != nil {
			return nil, err
		}
		upd.Name = &name
	}
	if input.Icon != nil {
		if err := validateIcon(*input.Icon); err != nil {
			return nil, err
		}
		upd.Icon = input.Icon
	}
	if input.Color != nil {
		if err := validateColor(*input.Color); err != nil {
			return nil, err
		}
		upd.Color = input.Color
	}

	if upd.IsEmpty() {
		return nil, ErrNoFieldsToUpdate
	}

	c, err := s.store.UpdateCategory(ctx, userID, id, upd)
	if err != nil {
		return nil, translate(err, "update category")
	}
	return c, nil
}

// Delete removes one of the user's own categories.
func (s *CategoryService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteCategory(ctx, userID, id); err != nil {
		return translate(err, "delete category")
	}
	return nil
}
