package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/alphabank/alphabank-api/internal/auth"
	"github.com/alphabank/alphabank-api/internal/handler/dto"
	"github.com/alphabank/alphabank-api/internal/model"
	"github.com/alphabank/alphabank-api/internal/service"
)

// GoalService is the savings goal logic used by GoalHandler.
type GoalService interface {
	List(ctx context.Context, userID string) ([]*model.Goal, error)
	Get(ctx context.Context, userID, id string) (*model.Goal, error)
	Create(ctx context.Context, userID string, input service.CreateGoalInput) (*model.Goal, error)
	Update(ctx context.Context, userID, id string, input service.UpdateGoalInput) (*model.Goal, error)
	AddProgress(ctx context.Context, userID, id string, amount decimal.Decimal) (*model.Goal, error)
	Delete(ctx context.Context, userID, id string) error
}

// GoalHandler handles HTTP requests for savings goals.
type GoalHandler struct {
	svc    GoalService
	logger *slog.Logger
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(svc GoalService, logger *slog.Logger) *GoalHandler {
	return &GoalHandler{svc: svc, logger: logger}
}

// List handles GET /api/goals.
func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	goals, err := h.svc.List(r.Context(), auth.MustUserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewListResponse(dto.ToGoalResponses(goals)))
}

// Get handles GET /api/goals/{id}.
func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	g, err := h.svc.Get(r.Context(), auth.MustUserIDFromContext(r.Context()), id)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToGoalResponse(g))
}

// Create handles POST /api/goals.
func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateGoalRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	g, err := h.svc.Create(r.Context(), auth.MustUserIDFromContext(r.Context()), service.CreateGoalInput{
		Name:         req.Name,
		TargetAmount: req.TargetAmount,
		Deadline:     req.Deadline,
		Icon:         req.Icon,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.ToGoalResponse(g))
}

// Update handles PUT /api/goals/{id}.
func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dto.UpdateGoalRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	g, err := h.svc.Update(r.Context(), auth.MustUserIDFromContext(r.Context()), id, service.UpdateGoalInput{
		Name:         req.Name,
		TargetAmount: req.TargetAmount,
		Deadline:     req.Deadline,
		Icon:         req.Icon,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToGoalResponse(g))
}

// AddProgress handles POST /api/goals/{id}/progress.
func (h *GoalHandler) AddProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dto.GoalProgressRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	g, err := h.svc.AddProgress(r.Context(), auth.MustUserIDFromContext(r.Context()), id, req.Amount)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToGoalResponse(g))
}

// Delete handles DELETE /api/goals/{id}.
func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), auth.MustUserIDFromContext(r.Context()), id); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Goal deleted successfully"})
}
