package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecurringRule is a template that produces transactions on a schedule.
// LastGenerated is the watermark of the most recent generation; nil means
// the rule has never produced a transaction.
type RecurringRule struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Kind          Kind            `json:"transaction_type"`
	CategoryID    *string         `json:"category_id"`
	Frequency     Frequency       `json:"frequency"`
	Active        bool            `json:"active"`
	LastGenerated *time.Time      `json:"last_generated"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// RecurringRuleUpdate holds optional rule fields.
type RecurringRuleUpdate struct {
	Description *string
	Amount      *decimal.Decimal
	Kind        *Kind
	CategoryID  *string
	Frequency   *Frequency
	Active      *bool
}

// IsEmpty reports whether no field is set.
func (u RecurringRuleUpdate) IsEmpty() bool {
	return u.Description == nil && u.Amount == nil && u.Kind == nil &&
		u.CategoryID == nil && u.Frequency == nil && u.Active == nil
}
