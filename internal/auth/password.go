package auth

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/arcanewagers/Auth/internal/errors"
)

const bcryptCost = 10

const specialChars = `!@#$%^&*(),.?":{}|<>`

// HashPassword produces a salted bcrypt digest of the plaintext.
func HashPassword(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword compares plaintext against a stored digest. It returns false
// on any mismatch, including an empty stored hash (OAuth-only accounts).
func VerifyPassword(plaintext, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// ValidatePassword enforces the complexity rule shared by signup, password
// reset and password change: at least 8 characters with one digit, one
// uppercase letter, one lowercase letter and one special character.
func ValidatePassword(plaintext string) error {
	if len(plaintext) < 8 {
		return apperrors.ErrWeakPassword
	}
	var hasDigit, hasUpper, hasLower, hasSpecial bool
	for _, r := range plaintext {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		}
		if strings.ContainsRune(specialChars, r) {
			hasSpecial = true
		}
	}
	if !hasDigit || !hasUpper || !hasLower || !hasSpecial {
		return apperrors.ErrWeakPassword
	}
	return nil
}
