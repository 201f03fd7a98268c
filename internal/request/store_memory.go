package request

import (
	"context"
	"sync"

	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
)

// MemoryStore is an in-memory Store for unit tests.
type MemoryStore struct {
	mu          sync.RWMutex
	requests    map[id.RequestID]*DomainRequest
	information map[id.DomainID]*DomainInformation
	ccAddresses map[id.PortfolioID][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		requests:    make(map[id.RequestID]*DomainRequest),
		information: make(map[id.DomainID]*DomainInformation),
		ccAddresses: make(map[id.PortfolioID][]string),
	}
}

func (s *MemoryStore) Save(_ context.Context, req *DomainRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *req
	s.requests[req.ID] = &copied
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, requestID id.RequestID) (*DomainRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[requestID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *req
	return &copied, nil
}

func (s *MemoryStore) ListByRequester(_ context.Context, requesterID id.UserID) ([]*DomainRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*DomainRequest
	for _, req := range s.requests {
		if req.RequesterID == requesterID {
			copied := *req
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *MemoryStore) SaveInformation(_ context.Context, info *DomainInformation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *info
	s.information[info.DomainID] = &copied
	return nil
}

func (s *MemoryStore) FindInformationByDomain(_ context.Context, domainID id.DomainID) (*DomainInformation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.information[domainID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *info
	return &copied, nil
}

func (s *MemoryStore) DeleteInformation(_ context.Context, domainID id.DomainID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.information[domainID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.information, domainID)
	return nil
}

func (s *MemoryStore) RepointSuborganization(_ context.Context, from, to id.SuborgID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, req := range s.requests {
		if req.SubOrganizationID == from {
			req.SubOrganizationID = to
		}
	}
	for _, info := range s.information {
		if info.SubOrganizationID == from {
			info.SubOrganizationID = to
		}
	}
	return nil
}

func (s *MemoryStore) CountSuborganizationRefs(_ context.Context, subID id.SuborgID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, req := range s.requests {
		if req.SubOrganizationID == subID {
			n++
		}
	}
	for _, info := range s.information {
		if info.SubOrganizationID == subID {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) PortfolioCCAddresses(_ context.Context, portfolioID id.PortfolioID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.ccAddresses[portfolioID]))
	copy(out, s.ccAddresses[portfolioID])
	return out, nil
}

// SetPortfolioCCAddresses seeds CC recipients for tests.
func (s *MemoryStore) SetPortfolioCCAddresses(portfolioID id.PortfolioID, emails []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ccAddresses[portfolioID] = emails
}
