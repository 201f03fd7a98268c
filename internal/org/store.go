package org

import (
	"context"

	id "registrar/pkg/domain"
)

// SuborgStore persists suborganizations.
type SuborgStore interface {
	Save(ctx context.Context, sub *Suborganization) error
	FindByID(ctx context.Context, subID id.SuborgID) (*Suborganization, error)
	// FindByPortfolioAndName matches case-insensitively with internal
	// whitespace collapsed, the same normalization the dedup rule uses.
	FindByPortfolioAndName(ctx context.Context, portfolioID id.PortfolioID, name string) (*Suborganization, error)
	ListByPortfolio(ctx context.Context, portfolioID id.PortfolioID) ([]*Suborganization, error)
	Delete(ctx context.Context, subID id.SuborgID) error
}

// AgencyStore persists federal agencies.
type AgencyStore interface {
	Save(ctx context.Context, agency *FederalAgency) error
	FindByID(ctx context.Context, agencyID id.AgencyID) (*FederalAgency, error)
	FindByName(ctx context.Context, name string) (*FederalAgency, error)
}

// PortfolioStore persists portfolios.
type PortfolioStore interface {
	Save(ctx context.Context, p *Portfolio) error
	FindByID(ctx context.Context, portfolioID id.PortfolioID) (*Portfolio, error)
}

// ReferenceRepointer moves every request and domain-information reference from
// one suborganization to another. Implemented by the request store, since the
// referencing rows live in its tables.
type ReferenceRepointer interface {
	RepointSuborganization(ctx context.Context, from, to id.SuborgID) error
	CountSuborganizationRefs(ctx context.Context, subID id.SuborgID) (int, error)
}
