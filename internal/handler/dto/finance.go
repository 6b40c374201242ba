package dto

import (
	"github.com/shopspring/decimal"

	"github.com/alphabank/alphabank-api/internal/model"
)

// CreateTransactionRequest is the body of POST /api/transactions.
type CreateTransactionRequest struct {
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionType model.Kind      `json:"transaction_type"`
	CategoryID      *string         `json:"category_id"`
	Date            *model.Date     `json:"date"`
}

// UpdateTransactionRequest is the body of PUT /api/transactions/{id}.
type UpdateTransactionRequest struct {
	Description     *string          `json:"description"`
	Amount          *decimal.Decimal `json:"amount"`
	TransactionType *model.Kind      `json:"transaction_type"`
	CategoryID      *string          `json:"category_id"`
	Date            *model.Date      `json:"date"`
}

// TransactionListResponse is a page of transactions.
type TransactionListResponse struct {
	Data       []*model.Transaction `json:"data"`
	Pagination Pagination           `json:"pagination"`
}

// CreateCategoryRequest is the body of POST /api/categories.
type CreateCategoryRequest struct {
	Name         string     `json:"name"`
	Icon         string     `json:"icon"`
	Color        string     `json:"color"`
	CategoryType model.Kind `json:"category_type"`
}

// UpdateCategoryRequest is the body of PUT /api/categories/{id}.
type UpdateCategoryRequest struct {
	Name  *string `json:"name"`
	Icon  *string `json:"icon"`
	Color *string `json:"color"`
}

// CreateGoalRequest is the body of POST /api/goals.
type CreateGoalRequest struct {
	Name         string          `json:"name"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	Deadline     model.Date      `json:"deadline"`
	Icon         string          `json:"icon"`
}

// UpdateGoalRequest is the body of PUT /api/goals/{id}.
type UpdateGoalRequest struct {
	Name         *string          `json:"name"`
	TargetAmount *decimal.Decimal `json:"target_amount"`
	Deadline     *model.Date      `json:"deadline"`
	Icon         *string          `json:"icon"`
}

// GoalProgressRequest is the body of POST /api/goals/{id}/progress.
type GoalProgressRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// GoalResponse adds derived progress to a goal.
type GoalResponse struct {
	*model.Goal
	// Progress is current/target in [0, 1].
	Progress decimal.Decimal `json:"progress"`
	Reached  bool            `json:"reached"`
}

// ToGoalResponse converts a Goal model to GoalResponse.
func ToGoalResponse(g *model.Goal) *GoalResponse {
	return &GoalResponse{Goal: g, Progress: g.Progress().Round(4), Reached: g.IsReached()}
}

// ToGoalResponses converts a slice of goals.
func ToGoalResponses(goals []*model.Goal) []*GoalResponse {
	out := make([]*GoalResponse, len(goals))
	for i, g := range goals {
		out[i] = ToGoalResponse(g)
	}
	return out
}

// CreateRecurringRequest is the body of POST /api/recurring.
type CreateRecurringRequest struct {
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionType model.Kind      `json:"transaction_type"`
	CategoryID      *string         `json:"category_id"`
	Frequency       model.Frequency `json:"frequency"`
}

// UpdateRecurringRequest is the body of PUT /api/recurring/{id}.
type UpdateRecurringRequest struct {
	Description     *string          `json:"description"`
	Amount          *decimal.Decimal `json:"amount"`
	TransactionType *model.Kind      `json:"transaction_type"`
	CategoryID      *string          `json:"category_id"`
	Frequency       *model.Frequency `json:"frequency"`
	Active          *bool            `json:"active"`
}

// GenerateResponse reports a recurring generation run.
type GenerateResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// CreateNotificationRequest is the body of POST /api/notifications.
type CreateNotificationRequest struct {
	Title            string `json:"title"`
	Message          string `json:"message"`
	NotificationType string `json:"notification_type"`
}
