// Package domain holds shared value objects: typed identifiers and the
// DomainName type. Construct values via the Parse* functions at trust
// boundaries; direct casting bypasses validation.
package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Typed UUID identifiers. Distinct types keep a request ID from ever being
// passed where a user ID is expected.
type (
	UserID      uuid.UUID
	RequestID   uuid.UUID
	DomainID    uuid.UUID
	PortfolioID uuid.UUID
	SuborgID    uuid.UUID
	AgencyID    uuid.UUID
)

func (id UserID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id RequestID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id DomainID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id PortfolioID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id SuborgID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id AgencyID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id UserID) String() string      { return uuid.UUID(id).String() }
func (id RequestID) String() string   { return uuid.UUID(id).String() }
func (id DomainID) String() string    { return uuid.UUID(id).String() }
func (id PortfolioID) String() string { return uuid.UUID(id).String() }
func (id SuborgID) String() string    { return uuid.UUID(id).String() }
func (id AgencyID) String() string    { return uuid.UUID(id).String() }

// NewUserID returns a fresh random user ID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewRequestID returns a fresh random request ID.
func NewRequestID() RequestID { return RequestID(uuid.New()) }

// NewDomainID returns a fresh random domain ID.
func NewDomainID() DomainID { return DomainID(uuid.New()) }

// NewPortfolioID returns a fresh random portfolio ID.
func NewPortfolioID() PortfolioID { return PortfolioID(uuid.New()) }

// NewSuborgID returns a fresh random suborganization ID.
func NewSuborgID() SuborgID { return SuborgID(uuid.New()) }

// NewAgencyID returns a fresh random federal agency ID.
func NewAgencyID() AgencyID { return AgencyID(uuid.New()) }

// ParseUserID parses external input into a UserID.
func ParseUserID(s string) (UserID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, fmt.Errorf("parse user id: %w", err)
	}
	return UserID(u), nil
}

// ParseRequestID parses external input into a RequestID.
func ParseRequestID(s string) (RequestID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return RequestID{}, fmt.Errorf("parse request id: %w", err)
	}
	return RequestID(u), nil
}

// ParseDomainID parses external input into a DomainID.
func ParseDomainID(s string) (DomainID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return DomainID{}, fmt.Errorf("parse domain id: %w", err)
	}
	return DomainID(u), nil
}
