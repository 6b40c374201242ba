package service

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/alphabank/alphabank-api/internal/model"
)

// Field limits.
const (
	MinNameLength         = 3
	MaxNameLength         = 255
	MaxDescriptionLength  = 255
	MaxCategoryNameLength = 100
	MaxTitleLength        = 255
	MaxEmailLength        = 255
	MinPasswordLength     = 6
	MaxPasswordLength     = 128
	MaxIconLength         = 16
	MaxPhoneLength        = 32
	MaxNotificationKind   = 32
)

// maxAmount is the largest magnitude NUMERIC(15,2) can hold.
var maxAmount = decimal.RequireFromString("9999999999999.99")

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

func validateLength(field, value string, minLen, maxLen int) error {
	n := utf8.RuneCountInString(value)
	if n < minLen || n > maxLen {
		if minLen == maxLen {
			return invalid(field, "must be %d characters", minLen)
		}
		return invalid(field, "must be between %d and %d characters", minLen, maxLen)
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" || len(email) > MaxEmailLength {
		return invalid("email", "must be a valid email address")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return invalid("email", "must be a valid email address")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validatePassword(field, password string) error {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength {
		return invalid(field, "must be at least %d characters", MinPasswordLength)
	}
	if n > MaxPasswordLength {
		return invalid(field, "must be at most %d characters", MaxPasswordLength)
	}
	return nil
}

func validateKind(field string, k model.Kind) error {
	if !k.IsValid() {
		return invalid(field, "must be 'income' or 'expense'")
	}
	return nil
}

func validateFrequency(f model.Frequency) error {
	if !f.IsValid() {
		return invalid("frequency", "must be one of daily, weekly, monthly, yearly")
	}
	return nil
}

// validatePositive requires 0 < amount <= maxAmount with at most two
// decimal places.
func validatePositive(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return invalid(field, "must be greater than zero")
	}
	return validateScale(field, amount)
}

// validateNonZero requires amount != 0 with |amount| <= maxAmount.
func validateNonZero(field string, amount decimal.Decimal) error {
	if amount.IsZero() {
		return invalid(field, "must not be zero")
	}
	return validateScale(field, amount)
}

func validateScale(field string, amount decimal.Decimal) error {
	if amount.Abs().GreaterThan(maxAmount) {
		return invalid(field, "is too large")
	}
	if !amount.Equal(amount.Round(2)) {
		return invalid(field, "must have at most two decimal places")
	}
	return nil
}

func validateColor(color string) error {
	if !hexColorPattern.MatchString(color) {
		return invalid("color", "must be a hex color like #1a2b3c")
	}
	return nil
}

func validateIcon(icon string) error {
	if icon == "" || utf8.RuneCountInString(icon) > MaxIconLength {
		return invalid("icon", "must be a short emoji or symbol")
	}
	return nil
}
