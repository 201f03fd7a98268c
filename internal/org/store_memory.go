package org

import (
	"context"
	"sync"

	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
)

// MemorySuborgStore is an in-memory SuborgStore for unit tests.
type MemorySuborgStore struct {
	mu      sync.RWMutex
	suborgs map[id.SuborgID]*Suborganization
}

func NewMemorySuborgStore() *MemorySuborgStore {
	return &MemorySuborgStore{suborgs: make(map[id.SuborgID]*Suborganization)}
}

func (s *MemorySuborgStore) Save(_ context.Context, sub *Suborganization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *sub
	s.suborgs[sub.ID] = &copied
	return nil
}

func (s *MemorySuborgStore) FindByID(_ context.Context, subID id.SuborgID) (*Suborganization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.suborgs[subID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *sub
	return &copied, nil
}

func (s *MemorySuborgStore) FindByPortfolioAndName(_ context.Context, portfolioID id.PortfolioID, name string) (*Suborganization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := NormalizeName(name)
	for _, sub := range s.suborgs {
		if sub.PortfolioID == portfolioID && NormalizeName(sub.Name) == key {
			copied := *sub
			return &copied, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *MemorySuborgStore) ListByPortfolio(_ context.Context, portfolioID id.PortfolioID) ([]*Suborganization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Suborganization
	for _, sub := range s.suborgs {
		if sub.PortfolioID == portfolioID {
			copied := *sub
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *MemorySuborgStore) Delete(_ context.Context, subID id.SuborgID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.suborgs[subID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.suborgs, subID)
	return nil
}

// MemoryAgencyStore is an in-memory AgencyStore for unit tests.
type MemoryAgencyStore struct {
	mu       sync.RWMutex
	agencies map[id.AgencyID]*FederalAgency
}

func NewMemoryAgencyStore() *MemoryAgencyStore {
	return &MemoryAgencyStore{agencies: make(map[id.AgencyID]*FederalAgency)}
}

func (s *MemoryAgencyStore) Save(_ context.Context, agency *FederalAgency) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *agency
	s.agencies[agency.ID] = &copied
	return nil
}

func (s *MemoryAgencyStore) FindByID(_ context.Context, agencyID id.AgencyID) (*FederalAgency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agency, ok := s.agencies[agencyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *agency
	return &copied, nil
}

func (s *MemoryAgencyStore) FindByName(_ context.Context, name string) (*FederalAgency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, agency := range s.agencies {
		if agency.Name == name {
			copied := *agency
			return &copied, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// MemoryPortfolioStore is an in-memory PortfolioStore for unit tests.
type MemoryPortfolioStore struct {
	mu         sync.RWMutex
	portfolios map[id.PortfolioID]*Portfolio
}

func NewMemoryPortfolioStore() *MemoryPortfolioStore {
	return &MemoryPortfolioStore{portfolios: make(map[id.PortfolioID]*Portfolio)}
}

func (s *MemoryPortfolioStore) Save(_ context.Context, p *Portfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *p
	s.portfolios[p.ID] = &copied
	return nil
}

func (s *MemoryPortfolioStore) FindByID(_ context.Context, portfolioID id.PortfolioID) (*Portfolio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.portfolios[portfolioID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *p
	return &copied, nil
}
