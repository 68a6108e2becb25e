// Package models holds the recruiter account aggregate.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	id "hireline/pkg/domain"
	dErrors "hireline/pkg/domain-errors"
)

// Account is a recruiter login for the dashboard. Accounts hold only a
// bcrypt hash, never the password itself.
type Account struct {
	ID           id.AccountID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// NewAccount validates inputs and builds an account aggregate. The email is
// normalized to lower case so lookups are case-insensitive.
func NewAccount(email, passwordHash string, now time.Time) (*Account, error) {
	email = NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "a valid email is required")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "password hash is required")
	}

	return &Account{
		ID:           id.AccountID(uuid.New()),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}, nil
}

// NormalizeEmail canonicalizes an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
