package dto

import (
	"github.com/alphabank/alphabank-api/internal/cpf"
	"github.com/alphabank/alphabank-api/internal/model"
)

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	FullName  string     `json:"full_name"`
	Email     string     `json:"email"`
	Password  string     `json:"password"`
	CPF       string     `json:"cpf"`
	BirthDate model.Date `json:"birth_date"`
	Phone     string     `json:"phone"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPasswordRequest is the body of POST /api/auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ChangePasswordRequest is the body of POST /api/auth/change-password.
type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password"`
	NewPassword     string `json:"new_password"`
}

// UpdateProfileRequest is the body of PUT /api/me. Absent fields are kept.
type UpdateProfileRequest struct {
	FullName  *string     `json:"full_name"`
	Email     *string     `json:"email"`
	Phone     *string     `json:"phone"`
	BirthDate *model.Date `json:"birth_date"`
}

// UserResponse is a user without credentials. The CPF is rendered with
// its usual punctuation.
type UserResponse struct {
	*model.User
	CPF string `json:"cpf"`
}

// ToUserResponse converts a User model to its API form.
func ToUserResponse(u *model.User) *UserResponse {
	return &UserResponse{User: u, CPF: cpf.Format(u.CPF)}
}

// SessionResponse is returned by register and login.
type SessionResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}
