// Package store defines the persistence contract for recruiter accounts.
package store

import (
	"context"

	"hireline/internal/account/models"
	id "hireline/pkg/domain"
)

// Store persists accounts. Implementations return sentinel errors for
// infrastructure facts; services translate them into coded domain errors.
// Create must reject a second account on the same email.
type Store interface {
	Create(ctx context.Context, account *models.Account) error
	Get(ctx context.Context, accountID id.AccountID) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
}
