package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/alphabank/alphabank-api/internal/auth"
	"github.com/alphabank/alphabank-api/internal/handler/dto"
	"github.com/alphabank/alphabank-api/internal/model"
	"github.com/alphabank/alphabank-api/internal/service"
)

// NotificationService is the notification logic used by NotificationHandler.
type NotificationService interface {
	List(ctx context.Context, userID string, unreadOnly bool) ([]*model.Notification, error)
	Create(ctx context.Context, userID string, input service.CreateNotificationInput) (*model.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
	Delete(ctx context.Context, userID, id string) error
}

// NotificationHandler handles HTTP requests for notifications.
type NotificationHandler struct {
	svc    NotificationService
	logger *slog.Logger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(svc NotificationService, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{svc: svc, logger: logger}
}

// List handles GET /api/notifications. ?unread=true limits the result to
// unread notifications.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	unreadOnly := false
	if raw := r.URL.Query().Get("unread"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_QUERY", "unread must be true or false")
			return
		}
		unreadOnly = v
	}

	list, err := h.svc.List(r.Context(), auth.MustUserIDFromContext(r.Context()), unreadOnly)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewListResponse(list))
}

// Create handles POST /api/notifications.
func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateNotificationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	n, err := h.svc.Create(r.Context(), auth.MustUserIDFromContext(r.Context()), service.CreateNotificationInput{
		Title:   req.Title,
		Message: req.Message,
		Kind:    req.NotificationType,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// MarkRead handles PUT /api/notifications/{id}/read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.svc.MarkRead(r.Context(), auth.MustUserIDFromContext(r.Context()), id); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Notification marked as read"})
}

// Delete handles DELETE /api/notifications/{id}.
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), auth.MustUserIDFromContext(r.Context()), id); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Notification deleted"})
}
