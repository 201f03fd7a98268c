//go:build integration

package request_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"registrar/internal/domain"
	"registrar/internal/org"
	"registrar/internal/request"
	"registrar/internal/user"
	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
	"registrar/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *request.PostgresStore
	users    *user.PostgresStore
	domains  *domain.PostgresStore
	suborgs  *org.PostgresSuborgStore

	requester *user.User
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = request.NewPostgresStore(s.postgres.DB)
	s.users = user.NewPostgresStore(s.postgres.DB)
	s.domains = domain.NewPostgresStore(s.postgres.DB)
	s.suborgs = org.NewPostgresSuborgStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx,
		"domain_information", "domain_requests", "public_contacts", "domains",
		"portfolio_permissions", "suborganizations", "portfolios",
		"federal_agencies", "users", "audit_outbox")
	s.Require().NoError(err)

	s.requester, err = user.New("meoward@igorville.gov", "Meoward", "Jones", "hunter2hunter2")
	s.Require().NoError(err)
	s.Require().NoError(s.users.Save(ctx, s.requester))
}

func (s *PostgresStoreSuite) TestSaveAndFindRoundTrip() {
	ctx := context.Background()

	req := request.New(s.requester.ID)
	req.Status = request.StatusSubmitted
	req.RequestedDomain = "igorville.gov"
	req.GenericOrgType = request.OrgTypeCity
	req.OrganizationName = "City of Igorville"
	req.City = "Igorville"
	req.StateTerritory = "IL"
	req.SeniorOfficial = request.Contact{Name: "Gaby Dia", Email: "gaby@igorville.gov", Phone: "555-0100"}
	req.OtherContacts = []request.Contact{{Name: "Riley Orr", Email: "riley@igorville.gov"}}
	req.CurrentWebsites = []string{"https://igorville.example.com"}
	req.AlternativeDomains = []string{"cityofigorville.gov"}
	req.Purpose = "Constituent services."
	req.LastSubmittedDate = time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.Save(ctx, req))

	got, err := s.store.FindByID(ctx, req.ID)
	s.Require().NoError(err)
	s.Equal(request.StatusSubmitted, got.Status)
	s.Equal(id.DomainName("igorville.gov"), got.RequestedDomain)
	s.Equal(req.SeniorOfficial, got.SeniorOfficial)
	s.Equal(req.OtherContacts, got.OtherContacts)
	s.Equal(req.CurrentWebsites, got.CurrentWebsites)
	s.Equal(req.AlternativeDomains, got.AlternativeDomains)
	s.True(got.LastSubmittedDate.Equal(req.LastSubmittedDate))
	s.True(got.FederalAgencyID.IsNil())
	s.True(got.ApprovedDomainID.IsNil())

	// Upsert overwrites in place.
	req.Status = request.StatusInReview
	req.RejectionReason = ""
	s.Require().NoError(s.store.Save(ctx, req))
	got, err = s.store.FindByID(ctx, req.ID)
	s.Require().NoError(err)
	s.Equal(request.StatusInReview, got.Status)
}

func (s *PostgresStoreSuite) TestFindByIDNotFound() {
	_, err := s.store.FindByID(context.Background(), id.NewRequestID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListByRequesterOrdersByCreation() {
	ctx := context.Background()

	first := request.New(s.requester.ID)
	second := request.New(s.requester.ID)
	s.Require().NoError(s.store.Save(ctx, first))
	s.Require().NoError(s.store.Save(ctx, second))

	other, err := user.New("other@example.gov", "Dot", "Gov", "hunter2hunter2")
	s.Require().NoError(err)
	s.Require().NoError(s.users.Save(ctx, other))
	theirs := request.New(other.ID)
	s.Require().NoError(s.store.Save(ctx, theirs))

	got, err := s.store.ListByRequester(ctx, s.requester.ID)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(first.ID, got[0].ID)
	s.Equal(second.ID, got[1].ID)
}

func (s *PostgresStoreSuite) TestDomainInformationLifecycle() {
	ctx := context.Background()

	name, err := id.ParseDomainName("igorville.gov")
	s.Require().NoError(err)
	d := domain.NewDomain(name)
	s.Require().NoError(s.domains.Save(ctx, d))

	req := request.New(s.requester.ID)
	req.RequestedDomain = name
	req.OrganizationName = "City of Igorville"
	s.Require().NoError(s.store.Save(ctx, req))

	info := request.NewDomainInformation(req, d.ID)
	s.Require().NoError(s.store.SaveInformation(ctx, info))

	got, err := s.store.FindInformationByDomain(ctx, d.ID)
	s.Require().NoError(err)
	s.Equal(req.ID, got.RequestID)
	s.Equal("City of Igorville", got.OrganizationName)

	s.Require().NoError(s.store.DeleteInformation(ctx, d.ID))
	_, err = s.store.FindInformationByDomain(ctx, d.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.DeleteInformation(ctx, d.ID), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestCountSuborganizationRefs() {
	ctx := context.Background()

	portfolioID := s.seedPortfolio("State of Illinois")
	sub := org.NewSuborganization(portfolioID, "Parks Department", "Igorville", "IL")
	s.Require().NoError(s.suborgs.Save(ctx, sub))

	req := request.New(s.requester.ID)
	req.PortfolioID = portfolioID
	req.SubOrganizationID = sub.ID
	s.Require().NoError(s.store.Save(ctx, req))

	refs, err := s.store.CountSuborganizationRefs(ctx, sub.ID)
	s.Require().NoError(err)
	s.Equal(1, refs)

	name, err := id.ParseDomainName("parks.igorville.gov")
	s.Require().NoError(err)
	d := domain.NewDomain(name)
	s.Require().NoError(s.domains.Save(ctx, d))
	info := request.NewDomainInformation(req, d.ID)
	s.Require().NoError(s.store.SaveInformation(ctx, info))

	refs, err = s.store.CountSuborganizationRefs(ctx, sub.ID)
	s.Require().NoError(err)
	s.Equal(2, refs)
}

func (s *PostgresStoreSuite) TestPortfolioCCAddresses() {
	ctx := context.Background()

	portfolioID := s.seedPortfolio("State of Illinois")

	viewer, err := user.New("viewer@example.gov", "Vic", "Viewer", "hunter2hunter2")
	s.Require().NoError(err)
	s.Require().NoError(s.users.Save(ctx, viewer))
	bystander, err := user.New("bystander@example.gov", "Bea", "Bystander", "hunter2hunter2")
	s.Require().NoError(err)
	s.Require().NoError(s.users.Save(ctx, bystander))

	s.grantPermission(portfolioID, viewer.ID, "view_requests")
	s.grantPermission(portfolioID, viewer.ID, "edit_requests")
	s.grantPermission(portfolioID, bystander.ID, "view_domains")

	got, err := s.store.PortfolioCCAddresses(ctx, portfolioID)
	s.Require().NoError(err)
	s.Equal([]string{"viewer@example.gov"}, got)
}

func (s *PostgresStoreSuite) seedPortfolio(name string) id.PortfolioID {
	s.T().Helper()
	portfolioID := id.NewPortfolioID()
	_, err := s.postgres.DB.Exec(
		`INSERT INTO portfolios (id, name) VALUES ($1, $2)`,
		uuid.UUID(portfolioID), name)
	s.Require().NoError(err)
	return portfolioID
}

func (s *PostgresStoreSuite) grantPermission(portfolioID id.PortfolioID, userID id.UserID, permission string) {
	s.T().Helper()
	_, err := s.postgres.DB.Exec(
		`INSERT INTO portfolio_permissions (portfolio_id, user_id, permission) VALUES ($1, $2, $3)`,
		uuid.UUID(portfolioID), uuid.UUID(userID), permission)
	s.Require().NoError(err)
}
