package domain

import (
	"context"

	id "registrar/pkg/domain"
)

// Store persists domain records and their registry contacts.
type Store interface {
	Save(ctx context.Context, d *Domain) error
	FindByID(ctx context.Context, domainID id.DomainID) (*Domain, error)
	FindByName(ctx context.Context, name id.DomainName) (*Domain, error)
	Delete(ctx context.Context, domainID id.DomainID) error
	SaveContact(ctx context.Context, contact *PublicContact) error
	ContactsByDomain(ctx context.Context, domainID id.DomainID) ([]*PublicContact, error)
}
