package domain

import (
	"context"
	"sync"

	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
)

// MemoryStore is an in-memory Store for unit tests and local development.
type MemoryStore struct {
	mu       sync.RWMutex
	domains  map[id.DomainID]*Domain
	contacts map[id.DomainID][]*PublicContact
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		domains:  make(map[id.DomainID]*Domain),
		contacts: make(map[id.DomainID][]*PublicContact),
	}
}

func (s *MemoryStore) Save(_ context.Context, d *Domain) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *d
	s.domains[d.ID] = &copied
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, domainID id.DomainID) (*Domain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.domains[domainID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *d
	return &copied, nil
}

func (s *MemoryStore) FindByName(_ context.Context, name id.DomainName) (*Domain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.domains {
		if d.Name == name {
			copied := *d
			return &copied, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *MemoryStore) Delete(_ context.Context, domainID id.DomainID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.domains[domainID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.domains, domainID)
	delete(s.contacts, domainID)
	return nil
}

func (s *MemoryStore) SaveContact(_ context.Context, contact *PublicContact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *contact
	for i, existing := range s.contacts[contact.DomainID] {
		if existing.ContactType == contact.ContactType {
			s.contacts[contact.DomainID][i] = &copied
			return nil
		}
	}
	s.contacts[contact.DomainID] = append(s.contacts[contact.DomainID], &copied)
	return nil
}

func (s *MemoryStore) ContactsByDomain(_ context.Context, domainID id.DomainID) ([]*PublicContact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*PublicContact, 0, len(s.contacts[domainID]))
	for _, c := range s.contacts[domainID] {
		copied := *c
		out = append(out, &copied)
	}
	return out, nil
}
