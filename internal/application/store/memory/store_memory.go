package memory

import (
	"context"
	"sort"
	"sync"

	"hireline/internal/application/models"
	id "hireline/pkg/domain"
	"hireline/pkg/platform/sentinel"
)

type pairKey struct {
	candidateID id.CandidateID
	postingID   id.PostingID
}

// InMemoryStore keeps applications in process memory.
type InMemoryStore struct {
	mu     sync.RWMutex
	byID   map[id.ApplicationID]*models.Application
	byPair map[pairKey]id.ApplicationID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:   make(map[id.ApplicationID]*models.Application),
		byPair: make(map[pairKey]id.ApplicationID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, application *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{application.CandidateID, application.PostingID}
	if _, exists := s.byID[application.ID]; exists {
		return sentinel.ErrConflict
	}
	if _, exists := s.byPair[key]; exists {
		return sentinel.ErrConflict
	}

	s.byID[application.ID] = clone(application)
	s.byPair[key] = application.ID
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, applicationID id.ApplicationID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	application, ok := s.byID[applicationID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(application), nil
}

func (s *InMemoryStore) GetByCandidateAndPosting(_ context.Context, candidateID id.CandidateID, postingID id.PostingID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	applicationID, ok := s.byPair[pairKey{candidateID, postingID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(s.byID[applicationID]), nil
}

func (s *InMemoryStore) ListByPosting(_ context.Context, postingID id.PostingID) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Application
	for _, application := range s.byID {
		if application.PostingID == postingID {
			out = append(out, clone(application))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) Update(_ context.Context, application *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[application.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.byID[application.ID] = clone(application)
	return nil
}

func clone(a *models.Application) *models.Application {
	copied := *a
	copied.History = append([]models.StageChange(nil), a.History...)
	return &copied
}
