// Package org holds portfolios, their suborganizations, and federal agencies,
// plus the resolution rules the approval path depends on: the "Non-Federal
// Agency" sentinel default and suborganization name deduplication.
package org

import (
	"time"

	id "registrar/pkg/domain"
)

// NonFederalAgencyName is the sentinel agency assigned to any request approved
// without a federal agency.
const NonFederalAgencyName = "Non-Federal Agency"

// Portfolio is the top-level organization a request belongs to, e.g. a
// department or a state government.
type Portfolio struct {
	ID        id.PortfolioID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Suborganization is a named sub-unit of a portfolio, e.g. a bureau within an
// agency. AutoCreated marks records the approval path created from free-text
// hints; only those are cleaned up when their last referencing request leaves
// the approved status.
type Suborganization struct {
	ID             id.SuborgID
	PortfolioID    id.PortfolioID
	Name           string
	City           string
	StateTerritory string
	AutoCreated    bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FederalAgency is a known federal agency, or the sentinel record.
type FederalAgency struct {
	ID          id.AgencyID
	Name        string
	FederalType string
	Initials    string
	CreatedAt   time.Time
}

// IsSentinel reports whether this is the "Non-Federal Agency" record.
func (a *FederalAgency) IsSentinel() bool {
	return a != nil && a.Name == NonFederalAgencyName
}

// NewSuborganization creates an auto-created suborganization under a
// portfolio from the approval path's free-text hints.
func NewSuborganization(portfolioID id.PortfolioID, name, city, state string) *Suborganization {
	return &Suborganization{
		ID:             id.NewSuborgID(),
		PortfolioID:    portfolioID,
		Name:           name,
		City:           city,
		StateTerritory: state,
		AutoCreated:    true,
	}
}
