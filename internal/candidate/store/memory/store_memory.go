package memory

import (
	"context"
	"sort"
	"sync"

	"hireline/internal/candidate/models"
	id "hireline/pkg/domain"
	"hireline/pkg/platform/sentinel"
)

// InMemoryStore keeps candidates in process memory. Used in tests and when
// no database is configured.
type InMemoryStore struct {
	mu           sync.RWMutex
	byID         map[id.CandidateID]*models.Candidate
	byNationalID map[string]id.CandidateID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:         make(map[id.CandidateID]*models.Candidate),
		byNationalID: make(map[string]id.CandidateID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, candidate *models.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[candidate.ID]; exists {
		return sentinel.ErrConflict
	}
	if _, exists := s.byNationalID[candidate.NationalID]; exists {
		return sentinel.ErrConflict
	}

	copied := *candidate
	s.byID[candidate.ID] = &copied
	s.byNationalID[candidate.NationalID] = candidate.ID
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, candidateID id.CandidateID) (*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	candidate, ok := s.byID[candidateID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *candidate
	return &copied, nil
}

func (s *InMemoryStore) GetByNationalID(_ context.Context, nationalID string) (*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	candidateID, ok := s.byNationalID[nationalID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *s.byID[candidateID]
	return &copied, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Candidate, 0, len(s.byID))
	for _, candidate := range s.byID {
		copied := *candidate
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) Update(_ context.Context, candidate *models.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.byID[candidate.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if existing.NationalID != candidate.NationalID {
		if _, taken := s.byNationalID[candidate.NationalID]; taken {
			return sentinel.ErrConflict
		}
		delete(s.byNationalID, existing.NationalID)
		s.byNationalID[candidate.NationalID] = candidate.ID
	}

	copied := *candidate
	s.byID[candidate.ID] = &copied
	return nil
}
