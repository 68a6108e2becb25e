package memory

import (
	"context"
	"sort"
	"sync"

	"hireline/internal/posting/models"
	id "hireline/pkg/domain"
	"hireline/pkg/platform/sentinel"
)

// InMemoryStore keeps postings in process memory.
type InMemoryStore struct {
	mu   sync.RWMutex
	byID map[id.PostingID]*models.Posting
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byID: make(map[id.PostingID]*models.Posting)}
}

func (s *InMemoryStore) Create(_ context.Context, posting *models.Posting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[posting.ID]; exists {
		return sentinel.ErrConflict
	}
	copied := clone(posting)
	s.byID[posting.ID] = copied
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, postingID id.PostingID) (*models.Posting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posting, ok := s.byID[postingID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(posting), nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.Posting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Posting, 0, len(s.byID))
	for _, posting := range s.byID {
		out = append(out, clone(posting))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) Update(_ context.Context, posting *models.Posting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[posting.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.byID[posting.ID] = clone(posting)
	return nil
}

// clone deep-copies a posting, including the optional timestamps.
func clone(p *models.Posting) *models.Posting {
	copied := *p
	if p.OpenedAt != nil {
		openedAt := *p.OpenedAt
		copied.OpenedAt = &openedAt
	}
	if p.ClosedAt != nil {
		closedAt := *p.ClosedAt
		copied.ClosedAt = &closedAt
	}
	return &copied
}
