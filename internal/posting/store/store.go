// Package store defines the persistence contract for postings.
package store

import (
	"context"

	"hireline/internal/posting/models"
	id "hireline/pkg/domain"
)

// Store persists postings. Implementations return sentinel errors for
// infrastructure facts; services translate them into coded domain errors.
type Store interface {
	Create(ctx context.Context, posting *models.Posting) error
	Get(ctx context.Context, postingID id.PostingID) (*models.Posting, error)
	List(ctx context.Context) ([]*models.Posting, error)
	Update(ctx context.Context, posting *models.Posting) error
}
