package validator

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxEmailLength caps what the input field accepts.
const MaxEmailLength = 120

// EmailValidator combines the library's RFC-style check with the puzzle's
// own stricter rules (single @, dotted domain, no edge dots).
type EmailValidator struct {
	validate *validator.Validate
}

func New() *EmailValidator { return &EmailValidator{validate: validator.New()} }

func (v *EmailValidator) Validate(ctx context.Context, email string) (bool, error) {
	if !wellFormed(email) {
		return false, nil
	}
	if err := v.validate.VarCtx(ctx, email, "required,email,max=120"); err != nil {
		if _, ok := err.(validator.ValidationErrors); ok {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func wellFormed(email string) bool {
	if strings.ContainsRune(email, ' ') || len(email) < 5 || len(email) > MaxEmailLength {
		return false
	}
	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return false
	}
	return local != "" &&
		strings.Contains(domain, ".") &&
		!strings.HasPrefix(domain, ".") &&
		!strings.HasSuffix(domain, ".")
}

// IsEmailChar filters keystrokes for the address field.
func IsEmailChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("._-+@", r)
}
