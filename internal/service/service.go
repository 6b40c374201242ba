// Package service provides business logic for the application.
package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/alphabank/alphabank-api/internal/repository"
)

// Service errors.
var (
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrLoginLocked           = errors.New("too many failed login attempts")
	ErrEmailTaken            = errors.New("email already registered")
	ErrCPFTaken              = errors.New("cpf already registered")
	ErrWrongPassword         = errors.New("current password is incorrect")
	ErrUserNotFound          = errors.New("user not found")
	ErrTransactionNotFound   = errors.New("transaction not found")
	ErrCategoryNotFound      = errors.New("category not found")
	ErrGoalNotFound          = errors.New("goal not found")
	ErrRecurringRuleNotFound = errors.New("recurring transaction not found")
	ErrNotificationNotFound  = errors.New("notification not found")
	ErrNoFieldsToUpdate      = errors.New("no fields to update")
	ErrInvalidCursor         = errors.New("invalid cursor")
)

// ValidationError reports a malformed input field. It is returned before
// any write happens.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// LockedError is returned by Login while an identity is locked out.
type LockedError struct {
	RetryAfter time.Duration
}

func (e *LockedError) Error() string {
	return ErrLoginLocked.Error()
}

// Is makes errors.Is(err, ErrLoginLocked) match.
func (e *LockedError) Is(target error) bool {
	return target == ErrLoginLocked
}

// translate maps repository errors onto service errors. Anything it does
// not recognize is wrapped with op.
func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repository.ErrTransactionNotFound):
		return ErrTransactionNotFound
	case errors.Is(err, repository.ErrCategoryNotFound):
		return ErrCategoryNotFound
	case errors.Is(err, repository.ErrGoalNotFound):
		return ErrGoalNotFound
	case errors.Is(err, repository.ErrRecurringRuleNotFound):
		return ErrRecurringRuleNotFound
	case errors.Is(err, repository.ErrNotificationNotFound):
		return ErrNotificationNotFound
	case errors.Is(err, repository.ErrEmailExists):
		return ErrEmailTaken
	case errors.Is(err, repository.ErrCPFExists):
		return ErrCPFTaken
	case errors.Is(err, repository.ErrNoFieldsToUpdate):
		return ErrNoFieldsToUpdate
	case errors.Is(err, repository.ErrInvalidCursor):
		return ErrInvalidCursor
	case errors.Is(err, repository.ErrInvalidReference):
		return invalid("category_id", "does not exist")
	}
	return fmt.Errorf("%s: %w", op, err)
}

// newID generates a new entity ID.
func newID() string {
	return ulid.Make().String()
}
