package memory

import (
	"context"
	"sync"

	"hireline/internal/account/models"
	id "hireline/pkg/domain"
	"hireline/pkg/platform/sentinel"
)

// InMemoryStore keeps accounts in process memory.
type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[id.AccountID]*models.Account
	byEmail map[string]id.AccountID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[id.AccountID]*models.Account),
		byEmail: make(map[string]id.AccountID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[account.ID]; exists {
		return sentinel.ErrConflict
	}
	if _, exists := s.byEmail[account.Email]; exists {
		return sentinel.ErrConflict
	}

	copied := *account
	s.byID[account.ID] = &copied
	s.byEmail[account.Email] = account.ID
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, accountID id.AccountID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.byID[accountID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *account
	return &copied, nil
}

func (s *InMemoryStore) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accountID, ok := s.byEmail[email]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *s.byID[accountID]
	return &copied, nil
}
