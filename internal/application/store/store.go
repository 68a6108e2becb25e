// Package store defines the persistence contract for applications.
package store

import (
	"context"

	"hireline/internal/application/models"
	id "hireline/pkg/domain"
)

// Store persists applications. Implementations return sentinel errors for
// infrastructure facts; services translate them into coded domain errors.
// Create must reject a second application for the same candidate and posting.
type Store interface {
	Create(ctx context.Context, application *models.Application) error
	Get(ctx context.Context, applicationID id.ApplicationID) (*models.Application, error)
	GetByCandidateAndPosting(ctx context.Context, candidateID id.CandidateID, postingID id.PostingID) (*models.Application, error)
	ListByPosting(ctx context.Context, postingID id.PostingID) ([]*models.Application, error)
	Update(ctx context.Context, application *models.Application) error
}
