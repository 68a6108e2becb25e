// Package store defines the persistence contract for candidates.
package store

import (
	"context"

	"hireline/internal/candidate/models"
	id "hireline/pkg/domain"
)

// Store persists candidates. Implementations return sentinel errors for
// infrastructure facts; services translate them into coded domain errors.
type Store interface {
	Create(ctx context.Context, candidate *models.Candidate) error
	Get(ctx context.Context, candidateID id.CandidateID) (*models.Candidate, error)
	GetByNationalID(ctx context.Context, nationalID string) (*models.Candidate, error)
	List(ctx context.Context) ([]*models.Candidate, error)
	Update(ctx context.Context, candidate *models.Candidate) error
}
