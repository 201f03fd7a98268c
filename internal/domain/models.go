// Package domain holds the registrar-side mirror of a registry domain object:
// its state machine, its cached registry-derived fields, and the operations
// that translate intent into EPP commands.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"registrar/internal/epp"
	id "registrar/pkg/domain"
)

// State is the lifecycle state of a registered domain. Values are stored as
// written; transitions are one-directional except for the documented hold
// recovery path.
type State string

const (
	// StateUnknown is the initial state for a domain with no registry-
	// confirmed nameservers.
	StateUnknown State = "unknown"
	// StateDNSNeeded means the domain exists in the registry but has fewer
	// than two nameservers and does not resolve.
	StateDNSNeeded State = "dns needed"
	// StateReady means the domain has nameservers and serves.
	StateReady State = "ready"
	// StateOnHold means a client hold suspends resolution without deleting
	// the registration.
	StateOnHold State = "on hold"
	// StateDeleted is terminal; the registry object is gone.
	StateDeleted State = "deleted"
)

// Domain is the persistent registrar record for one registry domain.
type Domain struct {
	ID             id.DomainID
	Name           id.DomainName
	State          State
	ExpirationDate time.Time
	FirstReady     time.Time
	DeletedAt      time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewDomain creates an unregistered domain record in the initial state.
func NewDomain(name id.DomainName) *Domain {
	return &Domain{
		ID:    id.NewDomainID(),
		Name:  name,
		State: StateUnknown,
	}
}

// IsActive reports whether the domain currently serves: ready or on hold.
// An active domain blocks its request from leaving the approved status.
func (d *Domain) IsActive() bool {
	return d.State == StateReady || d.State == StateOnHold
}

// Nameserver is one host entry on a domain, with glue addresses when the
// host sits inside the domain itself.
type Nameserver struct {
	Host string
	IPs  []string
}

// PublicContact is a registry contact associated with a domain. RegistryID is
// the handle the registry knows it by.
type PublicContact struct {
	RegistryID  string
	DomainID    id.DomainID
	ContactType epp.ContactType
	Name        string
	Org         string
	Street      []string
	City        string
	SP          string
	PC          string
	CC          string
	Email       string
	Voice       string
}

const defaultSecurityEmail = "registrar@dotgov.gov"

// DefaultSecurityContact returns the placeholder security contact registered
// for every new domain until the organization supplies its own.
func DefaultSecurityContact(domainID id.DomainID) *PublicContact {
	return &PublicContact{
		RegistryID:  newRegistryID(),
		DomainID:    domainID,
		ContactType: epp.ContactTypeSecurity,
		Name:        "Registry Customer Service",
		Org:         "Cybersecurity and Infrastructure Security Agency",
		Street:      []string{"CISA NGOV", "1110 N. Glebe Rd"},
		City:        "Arlington",
		SP:          "VA",
		PC:          "22201",
		CC:          "US",
		Email:       defaultSecurityEmail,
	}
}

// newRegistryID generates a registry contact handle. The registry caps
// handles at 16 characters, so a trimmed uuid segment is used.
func newRegistryID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "CISA" + strings.ToUpper(raw[:12])
}
