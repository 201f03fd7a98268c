package domain

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"registrar/internal/epp"
)

// Registry contact handles are 3 to 16 characters.
const (
	registryIDMinLen = 3
	registryIDMaxLen = 16
)

var knownContactTypes = map[epp.ContactType]bool{
	epp.ContactTypeRegistrant:     true,
	epp.ContactTypeAdministrative: true,
	epp.ContactTypeTechnical:      true,
	epp.ContactTypeSecurity:       true,
}

// ValidateContact checks a contact's shape before any registry command is
// built from it. Violations are *epp.ContactError; the command is never sent.
func ValidateContact(c *PublicContact) error {
	if c.ContactType == "" {
		return &epp.ContactError{Code: epp.ContactTypeNone}
	}
	if !knownContactTypes[c.ContactType] {
		return &epp.ContactError{Code: epp.ContactInvalidType}
	}
	if c.RegistryID == "" {
		return &epp.ContactError{Code: epp.ContactIDNone}
	}
	if len(c.RegistryID) < registryIDMinLen || len(c.RegistryID) > registryIDMaxLen {
		return &epp.ContactError{Code: epp.ContactIDInvalidLength}
	}
	return nil
}

// Provision registers an approved domain with the registry: the contact
// object first, then the domain with that contact as registrant. Both
// creates treat an already-existing object as success, so provisioning the
// same domain twice after a review round trip is safe.
func (s *Service) Provision(ctx context.Context, d *Domain, contact *PublicContact) error {
	if err := ValidateContact(contact); err != nil {
		return err
	}
	createContact := epp.CreateContact{
		ID: contact.RegistryID,
		PostalInfo: epp.PostalInfo{
			Name:   contact.Name,
			Org:    contact.Org,
			Street: contact.Street,
			City:   contact.City,
			SP:     contact.SP,
			PC:     contact.PC,
			CC:     contact.CC,
		},
		Email:    contact.Email,
		Voice:    contact.Voice,
		AuthInfo: newAuthInfo(),
		Disclose: &epp.Disclose{
			Flag:   contact.Email != defaultSecurityEmail,
			Fields: []epp.DiscloseField{epp.DiscloseEmail},
		},
	}
	if err := s.sendTolerateExists(ctx, createContact); err != nil {
		return err
	}
	createDomain := epp.CreateDomain{
		Name:       d.Name.String(),
		Registrant: contact.RegistryID,
		AuthInfo:   newAuthInfo(),
		Period:     &epp.Period{Length: 1, Unit: "y"},
	}
	if err := s.sendTolerateExists(ctx, createDomain); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "domain provisioned",
		"domain", d.Name.String(),
		"registrant", contact.RegistryID,
	)
	return nil
}

func (s *Service) sendTolerateExists(ctx context.Context, cmd epp.Command) error {
	_, err := s.client.Send(ctx, cmd, true)
	var regErr *epp.RegistryError
	if err != nil && errors.As(err, &regErr) && regErr.Code == epp.ObjectExists {
		return nil
	}
	return err
}

// newAuthInfo generates a random transfer password for a new registry object.
func newAuthInfo() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:16])
}
