package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/alphabank/alphabank-api/internal/auth"
	"github.com/alphabank/alphabank-api/internal/handler/dto"
	"github.com/alphabank/alphabank-api/internal/model"
	"github.com/alphabank/alphabank-api/internal/service"
)

// RecurringService is the recurring rule logic used by RecurringHandler.
type RecurringService interface {
	List(ctx context.Context, userID string) ([]*model.RecurringRule, error)
	Get(ctx context.Context, userID, id string) (*model.RecurringRule, error)
	Create(ctx context.Context, userID string, input service.CreateRecurringInput) (*model.RecurringRule, error)
	Update(ctx context.Context, userID, id string, input service.UpdateRecurringInput) (*model.RecurringRule, error)
	Delete(ctx context.Context, userID, id string) error
	Generate(ctx context.Context, userID string) (int, error)
}

// RecurringHandler handles HTTP requests for recurring transactions.
type RecurringHandler struct {
	svc    RecurringService
	logger *slog.Logger
}

// NewRecurringHandler creates a new RecurringHandler.
func NewRecurringHandler(svc RecurringService, logger *slog.Logger) *RecurringHandler {
	return &RecurringHandler{svc: svc, logger: logger}
}

// List handles GET /api/recurring.
func (h *RecurringHandler) List(w http.ResponseWriter, r *http.Request) {
	rules, err := h.svc.List(r.Context(), auth.MustUserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewListResponse(rules))
}

// Get handles GET /api/recurring/{id}.
func (h *RecurringHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	rule, err := h.svc.Get(r.Context(), auth.MustUserIDFromContext(r.Context()), id)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

// Create handles POST /api/recurring.
func (h *RecurringHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRecurringRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rule, err := h.svc.Create(r.Context(), auth.MustUserIDFromContext(r.Context()), service.CreateRecurringInput{
		Description: req.Description,
		Amount:      req.Amount,
		Kind:        req.TransactionType,
		CategoryID:  req.CategoryID,
		Frequency:   req.Frequency,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, rule)
}

// Update handles PUT /api/recurring/{id}.
func (h *RecurringHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dto.UpdateRecurringRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rule, err := h.svc.Update(r.Context(), auth.MustUserIDFromContext(r.Context()), id, service.UpdateRecurringInput{
		Description: req.Description,
		Amount:      req.Amount,
		Kind:        req.TransactionType,
		CategoryID:  req.CategoryID,
		Frequency:   req.Frequency,
		Active:      req.Active,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

// Delete handles DELETE /api/recurring/{id}.
func (h *RecurringHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), auth.MustUserIDFromContext(r.Context()), id); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Recurring transaction deleted successfully"})
}

// Generate handles POST /api/recurring/generate. Rules that fail are
// skipped and do not fail the request.
func (h *RecurringHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserIDFromContext(r.Context())

	count, err := h.svc.Generate(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("recurring_generated",
		slog.String("user_id", userID),
		slog.Int("count", count),
	)
	writeJSON(w, http.StatusOK, dto.GenerateResponse{
		Message: fmt.Sprintf("%d transactions generated", count),
		Count:   count,
	})
}
