package service

import (
	"context"
	"strings"
	"time"

	"github.com/alphabank/alphabank-api/internal/model"
)

// NotificationStore is the persistence the notification service needs.
type NotificationStore interface {
	ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]*model.Notification, error)
	CreateNotification(ctx context.Context, n *model.Notification) error
	MarkNotificationRead(ctx context.Context, userID, id string) error
	DeleteNotification(ctx context.Context, userID, id string) error
}

// NotificationService handles user notifications.
type NotificationService struct {
	store NotificationStore
	now   func() time.Time
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(store NotificationStore) *NotificationService {
	return &NotificationService{store: store, now: time.Now}
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]*model.Notification, error) {
	out, err := s.store.ListNotifications(ctx, userID, unreadOnly)
	if err != nil {
		return nil, translate(err, "list notifications")
	}
	if out == nil {
		out = []*model.Notification{}
	}
	return out, nil
}

// CreateNotificationInput defines input for creating a notification.
type CreateNotificationInput struct {
	Title   string
	Message string
	// Kind defaults to "info".
	Kind string
}

// Create stores an unread notification for the user.
func (s *NotificationService) Create(ctx context.Context, userID string, input CreateNotificationInput) (*model.Notification, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Message = strings.TrimSpace(input.Message)
	input.Kind = strings.TrimSpace(input.Kind)
	if input.Kind == "" {
		input.Kind = model.DefaultNotificationKind
	}

	if err := validateLength("title", input.Title, 1, MaxTitleLength); err != nil {
		return nil, err
	}
	if input.Message == "" {
		return nil, invalid("message", "is required")
	}
	if err := validateLength("notification_type", input.Kind, 1, MaxNotificationKind); err != nil {
		return nil, err
	}

	n := &model.Notification{
		ID:        newID(),
		UserID:    userID,
		Title:     input.Title,
		Message:   input.Message,
		Kind:      input.Kind,
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	}

	if err := s.store.CreateNotification(ctx, n); err != nil {
		return nil, translate(err, "create notification")
	}
	return n, nil
}

// MarkRead flags one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	if err := s.store.MarkNotificationRead(ctx, userID, id); err != nil {
		return translate(err, "mark notification read")
	}
	return nil
}

// Delete removes one of the user's notifications.
func (s *NotificationService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteNotification(ctx, userID, id); err != nil {
		return translate(err, "delete notification")
	}
	return nil
}
