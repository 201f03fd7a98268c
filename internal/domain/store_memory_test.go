package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"registrar/internal/epp"
	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
)

type DomainStoreSuite struct {
	suite.Suite
	store *MemoryStore
	ctx   context.Context
}

func (s *DomainStoreSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.ctx = context.Background()
}

func TestDomainStoreSuite(t *testing.T) {
	suite.Run(t, new(DomainStoreSuite))
}

func (s *DomainStoreSuite) newDomain(name string) *Domain {
	parsed, err := id.ParseDomainName(name)
	s.Require().NoError(err)
	return NewDomain(parsed)
}

func (s *DomainStoreSuite) TestSaveAndLookups() {
	s.Run("saves and finds by id", func() {
		d := s.newDomain("igorville.gov")
		s.Require().NoError(s.store.Save(s.ctx, d))

		found, err := s.store.FindByID(s.ctx, d.ID)
		s.Require().NoError(err)
		s.Equal(d.Name, found.Name)
		s.Equal(StateUnknown, found.State)
	})

	s.Run("finds by name", func() {
		d := s.newDomain("townville.gov")
		s.Require().NoError(s.store.Save(s.ctx, d))

		found, err := s.store.FindByName(s.ctx, d.Name)
		s.Require().NoError(err)
		s.Equal(d.ID, found.ID)
	})

	s.Run("returns ErrNotFound for unknown id", func() {
		_, err := s.store.FindByID(s.ctx, id.NewDomainID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("stored records are isolated from caller mutation", func() {
		d := s.newDomain("cityville.gov")
		s.Require().NoError(s.store.Save(s.ctx, d))

		d.State = StateDeleted
		found, err := s.store.FindByID(s.ctx, d.ID)
		s.Require().NoError(err)
		s.Equal(StateUnknown, found.State)
	})
}

func (s *DomainStoreSuite) TestDelete() {
	s.Run("delete removes the record and its contacts", func() {
		d := s.newDomain("igorville.gov")
		s.Require().NoError(s.store.Save(s.ctx, d))
		s.Require().NoError(s.store.SaveContact(s.ctx, DefaultSecurityContact(d.ID)))

		s.Require().NoError(s.store.Delete(s.ctx, d.ID))

		_, err := s.store.FindByID(s.ctx, d.ID)
		s.ErrorIs(err, sentinel.ErrNotFound)
		contacts, err := s.store.ContactsByDomain(s.ctx, d.ID)
		s.Require().NoError(err)
		s.Empty(contacts)
	})

	s.Run("deleting an unknown domain returns ErrNotFound", func() {
		s.ErrorIs(s.store.Delete(s.ctx, id.NewDomainID()), sentinel.ErrNotFound)
	})
}

func (s *DomainStoreSuite) TestContacts() {
	s.Run("one contact per role is kept", func() {
		d := s.newDomain("igorville.gov")
		s.Require().NoError(s.store.Save(s.ctx, d))

		first := DefaultSecurityContact(d.ID)
		s.Require().NoError(s.store.SaveContact(s.ctx, first))

		second := DefaultSecurityContact(d.ID)
		second.Email = "security@igorville.gov"
		s.Require().NoError(s.store.SaveContact(s.ctx, second))

		contacts, err := s.store.ContactsByDomain(s.ctx, d.ID)
		s.Require().NoError(err)
		s.Require().Len(contacts, 1)
		s.Equal("security@igorville.gov", contacts[0].Email)
	})

	s.Run("roles are kept side by side", func() {
		d := s.newDomain("townville.gov")
		s.Require().NoError(s.store.Save(s.ctx, d))

		security := DefaultSecurityContact(d.ID)
		s.Require().NoError(s.store.SaveContact(s.ctx, security))

		admin := DefaultSecurityContact(d.ID)
		admin.ContactType = epp.ContactTypeAdministrative
		s.Require().NoError(s.store.SaveContact(s.ctx, admin))

		contacts, err := s.store.ContactsByDomain(s.ctx, d.ID)
		s.Require().NoError(err)
		s.Len(contacts, 2)
	})
}
