package request

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
	txcontext "registrar/pkg/platform/tx"
)

// PostgresStore persists requests and their snapshots in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbRunner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) runner(ctx context.Context) dbRunner {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const requestColumns = `
	id, status, requested_domain, generic_org_type, organization_type,
	is_election_board, federal_type, federal_agency_id, portfolio_id,
	sub_organization_id, requester_id, investigator_id, organization_name,
	city, state_territory, senior_official, other_contacts, current_websites,
	alternative_domains, purpose, rejection_reason, action_needed_reason,
	action_needed_reason_email, approved_domain_id, last_submitted_date,
	requested_suborganization, suborganization_city,
	suborganization_state_territory, created_at, updated_at`

func (s *PostgresStore) Save(ctx context.Context, req *DomainRequest) error {
	seniorOfficial, err := json.Marshal(req.SeniorOfficial)
	if err != nil {
		return fmt.Errorf("marshal senior official: %w", err)
	}
	otherContacts, err := json.Marshal(req.OtherContacts)
	if err != nil {
		return fmt.Errorf("marshal other contacts: %w", err)
	}

	query := `
		INSERT INTO domain_requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		        $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			requested_domain = EXCLUDED.requested_domain,
			generic_org_type = EXCLUDED.generic_org_type,
			organization_type = EXCLUDED.organization_type,
			is_election_board = EXCLUDED.is_election_board,
			federal_type = EXCLUDED.federal_type,
			federal_agency_id = EXCLUDED.federal_agency_id,
			portfolio_id = EXCLUDED.portfolio_id,
			sub_organization_id = EXCLUDED.sub_organization_id,
			investigator_id = EXCLUDED.investigator_id,
			organization_name = EXCLUDED.organization_name,
			city = EXCLUDED.city,
			state_territory = EXCLUDED.state_territory,
			senior_official = EXCLUDED.senior_official,
			other_contacts = EXCLUDED.other_contacts,
			current_websites = EXCLUDED.current_websites,
			alternative_domains = EXCLUDED.alternative_domains,
			purpose = EXCLUDED.purpose,
			rejection_reason = EXCLUDED.rejection_reason,
			action_needed_reason = EXCLUDED.action_needed_reason,
			action_needed_reason_email = EXCLUDED.action_needed_reason_email,
			approved_domain_id = EXCLUDED.approved_domain_id,
			last_submitted_date = EXCLUDED.last_submitted_date,
			requested_suborganization = EXCLUDED.requested_suborganization,
			suborganization_city = EXCLUDED.suborganization_city,
			suborganization_state_territory = EXCLUDED.suborganization_state_territory,
			updated_at = NOW()
	`
	_, err = s.runner(ctx).ExecContext(ctx, query,
		uuid.UUID(req.ID), string(req.Status), req.RequestedDomain.String(),
		string(req.GenericOrgType), req.OrganizationType, req.IsElectionBoard,
		req.FederalType, nullID(uuid.UUID(req.FederalAgencyID)), nullID(uuid.UUID(req.PortfolioID)),
		nullID(uuid.UUID(req.SubOrganizationID)), uuid.UUID(req.RequesterID),
		nullID(uuid.UUID(req.InvestigatorID)), req.OrganizationName, req.City,
		req.StateTerritory, seniorOfficial, otherContacts,
		pq.Array(req.CurrentWebsites), pq.Array(req.AlternativeDomains), req.Purpose,
		string(req.RejectionReason), string(req.ActionNeededReason),
		req.ActionNeededReasonEmail, nullID(uuid.UUID(req.ApprovedDomainID)),
		nullTime(req.LastSubmittedDate), req.RequestedSuborganization,
		req.SuborganizationCity, req.SuborganizationStateTerritory)
	if err != nil {
		return fmt.Errorf("save domain request %s: %w", req.ID, err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, requestID id.RequestID) (*DomainRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM domain_requests WHERE id = $1`
	rows, err := s.runner(ctx).QueryContext(ctx, query, uuid.UUID(requestID))
	if err != nil {
		return nil, fmt.Errorf("find domain request: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("find domain request: %w", err)
		}
		return nil, sentinel.ErrNotFound
	}
	return scanRequest(rows)
}

func (s *PostgresStore) ListByRequester(ctx context.Context, requesterID id.UserID) ([]*DomainRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM domain_requests WHERE requester_id = $1 ORDER BY created_at`
	rows, err := s.runner(ctx).QueryContext(ctx, query, uuid.UUID(requesterID))
	if err != nil {
		return nil, fmt.Errorf("list domain requests: %w", err)
	}
	defer rows.Close()

	var out []*DomainRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func scanRequest(rows *sql.Rows) (*DomainRequest, error) {
	var req DomainRequest
	var reqID, requesterID uuid.UUID
	var agencyID, portfolioID, subOrgID, investigatorID, approvedDomainID sql.Null[uuid.UUID]
	var status, requestedDomain, genericOrgType, rejectionReason, actionNeededReason string
	var seniorOfficial, otherContacts []byte
	var lastSubmitted sql.NullTime

	err := rows.Scan(
		&reqID, &status, &requestedDomain, &genericOrgType, &req.OrganizationType,
		&req.IsElectionBoard, &req.FederalType, &agencyID, &portfolioID,
		&subOrgID, &requesterID, &investigatorID, &req.OrganizationName,
		&req.City, &req.StateTerritory, &seniorOfficial, &otherContacts,
		pq.Array(&req.CurrentWebsites), pq.Array(&req.AlternativeDomains), &req.Purpose,
		&rejectionReason, &actionNeededReason, &req.ActionNeededReasonEmail,
		&approvedDomainID, &lastSubmitted, &req.RequestedSuborganization,
		&req.SuborganizationCity, &req.SuborganizationStateTerritory,
		&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan domain request: %w", err)
	}

	req.ID = id.RequestID(reqID)
	req.Status = Status(status)
	req.RequestedDomain = id.DomainName(requestedDomain)
	req.GenericOrgType = GenericOrgType(genericOrgType)
	req.RejectionReason = RejectionReason(rejectionReason)
	req.ActionNeededReason = ActionNeededReason(actionNeededReason)
	req.RequesterID = id.UserID(requesterID)
	req.LastSubmittedDate = lastSubmitted.Time
	if agencyID.Valid {
		req.FederalAgencyID = id.AgencyID(agencyID.V)
	}
	if portfolioID.Valid {
		req.PortfolioID = id.PortfolioID(portfolioID.V)
	}
	if subOrgID.Valid {
		req.SubOrganizationID = id.SuborgID(subOrgID.V)
	}
	if investigatorID.Valid {
		req.InvestigatorID = id.UserID(investigatorID.V)
	}
	if approvedDomainID.Valid {
		req.ApprovedDomainID = id.DomainID(approvedDomainID.V)
	}
	if err := json.Unmarshal(seniorOfficial, &req.SeniorOfficial); err != nil {
		return nil, fmt.Errorf("decode senior official: %w", err)
	}
	if len(otherContacts) > 0 {
		if err := json.Unmarshal(otherContacts, &req.OtherContacts); err != nil {
			return nil, fmt.Errorf("decode other contacts: %w", err)
		}
	}
	return &req, nil
}

func (s *PostgresStore) SaveInformation(ctx context.Context, info *DomainInformation) error {
	seniorOfficial, err := json.Marshal(info.SeniorOfficial)
	if err != nil {
		return fmt.Errorf("marshal senior official: %w", err)
	}
	query := `
		INSERT INTO domain_information
			(domain_id, request_id, generic_org_type, organization_type, is_election_board,
			 federal_type, federal_agency_id, portfolio_id, sub_organization_id,
			 organization_name, city, state_territory, senior_official, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		ON CONFLICT (domain_id) DO UPDATE SET
			generic_org_type = EXCLUDED.generic_org_type,
			organization_type = EXCLUDED.organization_type,
			is_election_board = EXCLUDED.is_election_board,
			federal_type = EXCLUDED.federal_type,
			federal_agency_id = EXCLUDED.federal_agency_id,
			portfolio_id = EXCLUDED.portfolio_id,
			sub_organization_id = EXCLUDED.sub_organization_id,
			organization_name = EXCLUDED.organization_name,
			city = EXCLUDED.city,
			state_territory = EXCLUDED.state_territory,
			senior_official = EXCLUDED.senior_official,
			updated_at = NOW()
	`
	_, err = s.runner(ctx).ExecContext(ctx, query,
		uuid.UUID(info.DomainID), uuid.UUID(info.RequestID), string(info.GenericOrgType),
		info.OrganizationType, info.IsElectionBoard, info.FederalType,
		nullID(uuid.UUID(info.FederalAgencyID)), nullID(uuid.UUID(info.PortfolioID)),
		nullID(uuid.UUID(info.SubOrganizationID)), info.OrganizationName,
		info.City, info.StateTerritory, seniorOfficial)
	if err != nil {
		return fmt.Errorf("save domain information for %s: %w", info.DomainID, err)
	}
	return nil
}

func (s *PostgresStore) FindInformationByDomain(ctx context.Context, domainID id.DomainID) (*DomainInformation, error) {
	query := `
		SELECT domain_id, request_id, generic_org_type, organization_type, is_election_board,
		       federal_type, federal_agency_id, portfolio_id, sub_organization_id,
		       organization_name, city, state_territory, senior_official, created_at, updated_at
		FROM domain_information WHERE domain_id = $1
	`
	var info DomainInformation
	var domID, requestID uuid.UUID
	var agencyID, portfolioID, subOrgID sql.Null[uuid.UUID]
	var genericOrgType string
	var seniorOfficial []byte
	err := s.runner(ctx).QueryRowContext(ctx, query, uuid.UUID(domainID)).Scan(
		&domID, &requestID, &genericOrgType, &info.OrganizationType, &info.IsElectionBoard,
		&info.FederalType, &agencyID, &portfolioID, &subOrgID,
		&info.OrganizationName, &info.City, &info.StateTerritory, &seniorOfficial,
		&info.CreatedAt, &info.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan domain information: %w", err)
	}
	info.DomainID = id.DomainID(domID)
	info.RequestID = id.RequestID(requestID)
	info.GenericOrgType = GenericOrgType(genericOrgType)
	if agencyID.Valid {
		info.FederalAgencyID = id.AgencyID(agencyID.V)
	}
	if portfolioID.Valid {
		info.PortfolioID = id.PortfolioID(portfolioID.V)
	}
	if subOrgID.Valid {
		info.SubOrganizationID = id.SuborgID(subOrgID.V)
	}
	if err := json.Unmarshal(seniorOfficial, &info.SeniorOfficial); err != nil {
		return nil, fmt.Errorf("decode senior official: %w", err)
	}
	return &info, nil
}

func (s *PostgresStore) DeleteInformation(ctx context.Context, domainID id.DomainID) error {
	res, err := s.runner(ctx).ExecContext(ctx,
		`DELETE FROM domain_information WHERE domain_id = $1`, uuid.UUID(domainID))
	if err != nil {
		return fmt.Errorf("delete domain information: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) RepointSuborganization(ctx context.Context, from, to id.SuborgID) error {
	r := s.runner(ctx)
	if _, err := r.ExecContext(ctx,
		`UPDATE domain_requests SET sub_organization_id = $2 WHERE sub_organization_id = $1`,
		uuid.UUID(from), uuid.UUID(to)); err != nil {
		return fmt.Errorf("repoint request suborganization refs: %w", err)
	}
	if _, err := r.ExecContext(ctx,
		`UPDATE domain_information SET sub_organization_id = $2 WHERE sub_organization_id = $1`,
		uuid.UUID(from), uuid.UUID(to)); err != nil {
		return fmt.Errorf("repoint information suborganization refs: %w", err)
	}
	return nil
}

func (s *PostgresStore) CountSuborganizationRefs(ctx context.Context, subID id.SuborgID) (int, error) {
	query := `
		SELECT (SELECT COUNT(*) FROM domain_requests WHERE sub_organization_id = $1)
		     + (SELECT COUNT(*) FROM domain_information WHERE sub_organization_id = $1)
	`
	var n int
	if err := s.runner(ctx).QueryRowContext(ctx, query, uuid.UUID(subID)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count suborganization refs: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) PortfolioCCAddresses(ctx context.Context, portfolioID id.PortfolioID) ([]string, error) {
	query := `
		SELECT u.email
		FROM portfolio_permissions pp
		JOIN users u ON u.id = pp.user_id
		WHERE pp.portfolio_id = $1
		  AND pp.permission IN ('view_requests', 'edit_requests')
		ORDER BY u.email
	`
	rows, err := s.runner(ctx).QueryContext(ctx, query, uuid.UUID(portfolioID))
	if err != nil {
		return nil, fmt.Errorf("list portfolio cc addresses: %w", err)
	}
	defer rows.Close()

	var out []string
	seen := make(map[string]bool)
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan portfolio cc address: %w", err)
		}
		if !seen[email] {
			seen[email] = true
			out = append(out, email)
		}
	}
	return out, rows.Err()
}

func nullID(u uuid.UUID) any {
	if u == uuid.Nil {
		return nil
	}
	return u
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
