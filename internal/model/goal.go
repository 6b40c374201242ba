package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultGoalIcon is used when a goal is created without an icon.
const DefaultGoalIcon = "🎯"

// Goal is a savings target.
type Goal struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Deadline      Date            `json:"deadline"`
	Icon          string          `json:"icon"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Progress returns current/target as a fraction, capped at 1.
func (g *Goal) Progress() decimal.Decimal {
	if !g.TargetAmount.IsPositive() {
		return decimal.Zero
	}
	p := g.CurrentAmount.Div(g.TargetAmount)
	if p.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return p
}

// IsReached reports whether the saved amount meets the target.
func (g *Goal) IsReached() bool {
	return g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)
}

// GoalUpdate holds optional goal fields.
type GoalUpdate struct {
	Name         *string
	TargetAmount *decimal.Decimal
	Deadline     *Date
	Icon         *string
}

// IsEmpty reports whether no field is set.
func (u GoalUpdate) IsEmpty() bool {
	return u.Name == nil && u.TargetAmount == nil && u.Deadline == nil && u.Icon == nil
}
