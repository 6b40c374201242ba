package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/alphabank/alphabank-api/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
	ErrCPFExists    = errors.New("cpf already exists")
)

const userColumns = `id, full_name, email, password_hash, cpf, birth_date, phone, created_at`

// CreateUser inserts a new user into the database.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, full_name, email, password_hash, cpf, birth_date, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		user.ID,
		user.FullName,
		user.Email,
		user.PasswordHash,
		user.CPF,
		user.BirthDate.Time,
		user.Phone,
		user.CreatedAt,
	)

	if err != nil {
		return userWriteError(err, "failed to create user")
	}

	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// EmailExists reports whether another user already uses email.
// excludeID may be empty.
func (r *Repository) EmailExists(ctx context.Context, email, excludeID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND id <> $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, email, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return exists, nil
}

// CPFExists reports whether a user with the given CPF exists.
func (r *Repository) CPFExists(ctx context.Context, cpf string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE cpf = $1)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, cpf).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check cpf existence: %w", err)
	}
	return exists, nil
}

// UpdateUser applies the non-nil fields of upd and returns the updated user.
func (r *Repository) UpdateUser(ctx context.Context, id string, upd model.UserUpdate) (*model.User, error) {
	b := newUpdate("users")
	if upd.FullName != nil {
		b.set("full_name", *upd.FullName)
	}
	if upd.Email != nil {
		b.set("email", *upd.Email)
	}
	if upd.Phone != nil {
		b.set("phone", *upd.Phone)
	}
	if upd.BirthDate != nil {
		b.set("birth_date", upd.BirthDate.Time)
	}
	if b.empty() {
		return nil, ErrNoFieldsToUpdate
	}
	b.where("id", id)

	query, args := b.build(userColumns)
	user, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, userWriteError(err, "failed to update user")
	}

	return user, nil
}

// UpdatePassword replaces the user's password hash.
func (r *Repository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	result, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

func userWriteError(err error, msg string) error {
	if isUniqueViolation(err) {
		switch violatedConstraint(err) {
		case "users_cpf_unique":
			return ErrCPFExists
		default:
			return ErrEmailExists
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.PasswordHash,
		&user.CPF,
		&user.BirthDate.Time,
		&user.Phone,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
