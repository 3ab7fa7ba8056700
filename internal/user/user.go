// Package user holds the Printwise account model and its persistence over
// the shared key-value store. A user is identified by email; the stored
// credential is an argon2id hash, never the plaintext password.
package user

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

// emailPattern accepts local-part "@" domain "." tld with no whitespace.
// Deliberately loose -- real validation happens when the address is used.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// User represents a registered Printwise account. Password holds the
// argon2id PHC string, and CreatedAt serializes as RFC 3339. The JSON
// form is exactly what the repository persists in the user-list key.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"created_at"`
}

// Validation is the outcome of validating prospective account fields:
// a validity flag plus every individual violation found.
type Validation struct {
	OK     bool
	Errors []string
}

// Validate checks prospective account fields against the registration
// rules. It is pure: nothing is mutated and every violation is collected
// rather than stopping at the first.
func Validate(name, email, password string) Validation {
	var errs []string

	if name == "" {
		errs = append(errs, "name must not be empty")
	}
	if !ValidEmail(email) {
		errs = append(errs, "email address is not valid")
	}
	if len(password) < MinPasswordLength {
		errs = append(errs, fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	return Validation{OK: len(errs) == 0, Errors: errs}
}

// ValidEmail reports whether the address has the expected
// local@domain.tld shape.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// New builds a User from validated registration fields, hashing the
// plaintext password. Callers run Validate first; New does not re-check.
func New(name, email, plaintext string) (*User, error) {
	hash, err := HashPassword(plaintext)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	return &User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Password:  hash,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// CheckPassword verifies a candidate password against the stored hash.
func (u *User) CheckPassword(candidate string) bool {
	return verifyPassword(candidate, u.Password)
}
