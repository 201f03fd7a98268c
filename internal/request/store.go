package request

import (
	"context"

	id "registrar/pkg/domain"
)

// Store persists domain requests and their approval snapshots. It also owns
// the suborganization reference columns, so the org dedup tooling repoints
// through it.
type Store interface {
	Save(ctx context.Context, req *DomainRequest) error
	FindByID(ctx context.Context, requestID id.RequestID) (*DomainRequest, error)
	ListByRequester(ctx context.Context, requesterID id.UserID) ([]*DomainRequest, error)

	SaveInformation(ctx context.Context, info *DomainInformation) error
	FindInformationByDomain(ctx context.Context, domainID id.DomainID) (*DomainInformation, error)
	DeleteInformation(ctx context.Context, domainID id.DomainID) error

	RepointSuborganization(ctx context.Context, from, to id.SuborgID) error
	CountSuborganizationRefs(ctx context.Context, subID id.SuborgID) (int, error)

	// PortfolioCCAddresses lists the emails of portfolio members holding the
	// view/edit-requests permission; they are CC'd on request notifications.
	PortfolioCCAddresses(ctx context.Context, portfolioID id.PortfolioID) ([]string, error)
}
