// Package cpf validates Brazilian individual taxpayer numbers (CPF).
package cpf

import (
	"errors"
	"strings"
)

// Length is the number of digits in a CPF.
const Length = 11

// Normalize strips every non-digit character from s.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Valid reports whether s is a structurally valid CPF. Punctuation is
// ignored; the remaining digits must be exactly 11, not all identical,
// and must satisfy both mod-11 check digits.
func Valid(s string) bool {
	digits := Normalize(s)
	if len(digits) != Length {
		return false
	}

	var d [Length]int
	same := true
	for i := 0; i < Length; i++ {
		d[i] = int(digits[i] - '0')
		if d[i] != d[0] {
			same = false
		}
	}
	if same {
		return false
	}

	return checkDigit(d[:9]) == d[9] && checkDigit(d[:10]) == d[10]
}

// ErrInvalidBase is returned by Complete for input that is not nine digits.
var ErrInvalidBase = errors.New("cpf base must be nine digits")

// Complete appends both check digits to a nine-digit base.
func Complete(base string) (string, error) {
	if len(base) != Length-2 {
		return "", ErrInvalidBase
	}
	d := make([]int, 0, Length)
	for i := 0; i < len(base); i++ {
		c := base[i]
		if c < '0' || c > '9' {
			return "", ErrInvalidBase
		}
		d = append(d, int(c-'0'))
	}
	d = append(d, checkDigit(d))
	d = append(d, checkDigit(d))
	return base + string(rune('0'+d[9])) + string(rune('0'+d[10])), nil
}

// checkDigit computes the verifier for the given prefix using weights
// len(prefix)+1 down to 2.
func checkDigit(prefix []int) int {
	sum := 0
	weight := len(prefix) + 1
	for _, v := range prefix {
		sum += v * weight
		weight--
	}
	mod := sum % 11
	if mod < 2 {
		return 0
	}
	return 11 - mod
}

// Format renders an 11-digit CPF as XXX.XXX.XXX-XX. Inputs that do not
// normalize to 11 digits are returned unchanged.
func Format(s string) string {
	d := Normalize(s)
	if len(d) != Length {
		return s
	}
	return d[0:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:11]
}
