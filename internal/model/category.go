package model

import "time"

// Default presentation for categories created without icon or color.
const (
	DefaultCategoryIcon  = "💵"
	DefaultCategoryColor = "#636e72"
)

// Category groups transactions. Default categories have no owner and are
// visible to every user.
type Category struct {
	ID        string    `json:"id"`
	UserID    *string   `json:"user_id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	Color     string    `json:"color"`
	Kind      Kind      `json:"category_type"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

// CategoryUpdate holds optional category fields.
type CategoryUpdate struct {
	Name  *string
	Icon  *string
	Color *string
}

// IsEmpty reports whether no field is set.
func (u CategoryUpdate) IsEmpty() bool {
	return u.Name == nil && u.Icon == nil && u.Color == nil
}
