package model

import "time"

// User is an account holder.
type User struct {
	ID           string    `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CPF          string    `json:"cpf"`
	BirthDate    Date      `json:"birth_date"`
	Phone        string    `json:"phone"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserUpdate holds optional profile fields. Nil fields are left unchanged.
type UserUpdate struct {
	FullName  *string
	Email     *string
	Phone     *string
	BirthDate *Date
}

// IsEmpty reports whether no field is set.
func (u UserUpdate) IsEmpty() bool {
	return u.FullName == nil && u.Email == nil && u.Phone == nil && u.BirthDate == nil
}
