package validator

import (
	"errors"
	"io"
	"strings"
	"sync"
	"unicode"

	"github.com/greencampus/facility-reports/utils"

	playground "github.com/go-playground/validator/v10"
)

// allowedImageMimeTypes photo types accepted by the pipeline
var allowedImageMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// IsImage sniffs file and reports whether it is an accepted photo type.
// The reader is rewound before returning.
func IsImage(file io.ReadSeeker) (bool, string, error) {
	mimeType, err := utils.SniffContentType(file)
	if err != nil {
		return false, "", err
	}
	return allowedImageMimeTypes[mimeType], mimeType, nil
}

var (
	validate     *playground.Validate
	validateOnce sync.Once
)

// Struct returns the shared go-playground validator
func Struct() *playground.Validate {
	validateOnce.Do(func() {
		validate = playground.New(playground.WithRequiredStructEnabled())
	})
	return validate
}

// IsEmail reports a syntactically valid address
func IsEmail(email string) bool {
	return Struct().Var(strings.TrimSpace(email), "required,email") == nil
}

// Password strength errors
var (
	ErrPasswordTooShort = errors.New("Password must be at least 8 characters long")
	ErrPasswordWeak     = errors.New("Password must contain uppercase, lowercase, number and special character")
)

// CheckPasswordStrength enforces the new-password policy: at least 8
// characters with an upper-case letter, a lower-case letter, a digit and
// a special character.
func CheckPasswordStrength(password string) error {
	if len([]rune(password)) < 8 {
		return ErrPasswordTooShort
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}

	if !upper || !lower || !digit || !special {
		return ErrPasswordWeak
	}
	return nil
}
