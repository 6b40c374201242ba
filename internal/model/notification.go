package model

import "time"

// DefaultNotificationKind is used when a notification is created without a type.
const DefaultNotificationKind = "info"

// Notification is a message shown to a user.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Kind      string    `json:"notification_type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
