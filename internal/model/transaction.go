package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single income or expense entry.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        Kind            `json:"transaction_type"`
	CategoryID  *string         `json:"category_id"`
	Date        time.Time       `json:"date"`
	Recurring   bool            `json:"recurring"`
	RecurringID *string         `json:"recurring_id"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TransactionUpdate holds optional transaction fields.
type TransactionUpdate struct {
	Description *string
	Amount      *decimal.Decimal
	Kind        *Kind
	CategoryID  *string
	Date        *time.Time
}

// IsEmpty reports whether no field is set.
func (u TransactionUpdate) IsEmpty() bool {
	return u.Description == nil && u.Amount == nil && u.Kind == nil &&
		u.CategoryID == nil && u.Date == nil
}

// TransactionFilter narrows a transaction listing.
type TransactionFilter struct {
	Kind       *Kind
	CategoryID *string
	From       *time.Time
	To         *time.Time // exclusive
	Cursor     string
	Limit      int
}

// TransactionSummary aggregates totals over a range.
type TransactionSummary struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
	Count   int64           `json:"count"`
}
