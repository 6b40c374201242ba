package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alphabank/alphabank-api/internal/auth"
	"github.com/alphabank/alphabank-api/internal/handler/dto"
	"github.com/alphabank/alphabank-api/internal/model"
	"github.com/alphabank/alphabank-api/internal/service"
)

// CategoryService is the category logic used by CategoryHandler.
type CategoryService interface {
	List(ctx context.Context, userID string) ([]*model.Category, error)
	Create(ctx context.Context, userID string, input service.CreateCategoryInput) (*model.Category, error)
	Update(ctx context.Context, userID, id string, input service.UpdateCategoryInput) (*model.Category, error)
	Delete(ctx context.Context, userID, id string) error
}

// CategoryHandler handles HTTP requests for categories.
type CategoryHandler struct {
	svc    CategoryService
	logger *slog.Logger
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(svc CategoryService, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{svc: svc, logger: logger}
}

// List handles GET /api/categories. Default categories come first.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.List(r.Context(), auth.MustUserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewListResponse(categories))
}

// Create handles POST /api/categories.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.svc.Create(r.Context(), auth.MustUserIDFromContext(r.Context()), service.CreateCategoryInput{
		Name:  req.Name,
		Icon:  req.Icon,
		Color: req.Color,
		Kind:  req.CategoryType,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// Update handles PUT /api/categories/{id}.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dto.UpdateCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.svc.Update(r.Context(), auth.MustUserIDFromContext(r.Context()), id, service.UpdateCategoryInput{
		Name:  req.Name,
		Icon:  req.Icon,
		Color: req.Color,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Delete handles DELETE /api/categories/{id}. Default categories cannot be
// deleted and answer 404.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), auth.MustUserIDFromContext(r.Context()), id); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Category deleted successfully"})
}
