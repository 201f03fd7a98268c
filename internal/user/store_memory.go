package user

import (
	"context"
	"strings"
	"sync"

	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
)

// MemoryStore is an in-memory Store for unit tests.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[id.UserID]*User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[id.UserID]*User)}
}

func (s *MemoryStore) Save(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *u
	s.users[u.ID] = &copied
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, userID id.UserID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, sentinel.ErrNotFound
}
