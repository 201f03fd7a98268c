package org

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
	txcontext "registrar/pkg/platform/tx"
)

type dbRunner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func runner(ctx context.Context, db *sql.DB) dbRunner {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return db
}

// PostgresSuborgStore persists suborganizations in PostgreSQL.
type PostgresSuborgStore struct {
	db *sql.DB
}

func NewPostgresSuborgStore(db *sql.DB) *PostgresSuborgStore {
	return &PostgresSuborgStore{db: db}
}

func (s *PostgresSuborgStore) Save(ctx context.Context, sub *Suborganization) error {
	query := `
		INSERT INTO suborganizations (id, portfolio_id, name, city, state_territory, auto_created, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			city = EXCLUDED.city,
			state_territory = EXCLUDED.state_territory,
			updated_at = NOW()
	`
	_, err := runner(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(sub.ID), uuid.UUID(sub.PortfolioID), sub.Name, sub.City, sub.StateTerritory, sub.AutoCreated)
	if err != nil {
		return fmt.Errorf("save suborganization %s: %w", sub.Name, err)
	}
	return nil
}

func (s *PostgresSuborgStore) FindByID(ctx context.Context, subID id.SuborgID) (*Suborganization, error) {
	query := `
		SELECT id, portfolio_id, name, city, state_territory, auto_created, created_at, updated_at
		FROM suborganizations WHERE id = $1
	`
	return scanSuborg(runner(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(subID)))
}

func (s *PostgresSuborgStore) FindByPortfolioAndName(ctx context.Context, portfolioID id.PortfolioID, name string) (*Suborganization, error) {
	// The normalization mirrors NormalizeName: lowercase, whitespace collapsed.
	query := `
		SELECT id, portfolio_id, name, city, state_territory, auto_created, created_at, updated_at
		FROM suborganizations
		WHERE portfolio_id = $1
		  AND lower(regexp_replace(trim(name), '\s+', ' ', 'g')) = $2
		LIMIT 1
	`
	return scanSuborg(runner(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(portfolioID), NormalizeName(name)))
}

func (s *PostgresSuborgStore) ListByPortfolio(ctx context.Context, portfolioID id.PortfolioID) ([]*Suborganization, error) {
	query := `
		SELECT id, portfolio_id, name, city, state_territory, auto_created, created_at, updated_at
		FROM suborganizations WHERE portfolio_id = $1
		ORDER BY created_at
	`
	rows, err := runner(ctx, s.db).QueryContext(ctx, query, uuid.UUID(portfolioID))
	if err != nil {
		return nil, fmt.Errorf("list suborganizations: %w", err)
	}
	defer rows.Close()

	var out []*Suborganization
	for rows.Next() {
		sub, err := scanSuborgRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *PostgresSuborgStore) Delete(ctx context.Context, subID id.SuborgID) error {
	res, err := runner(ctx, s.db).ExecContext(ctx, `DELETE FROM suborganizations WHERE id = $1`, uuid.UUID(subID))
	if err != nil {
		return fmt.Errorf("delete suborganization: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func scanSuborg(row *sql.Row) (*Suborganization, error) {
	var sub Suborganization
	var subID, portfolioID uuid.UUID
	err := row.Scan(&subID, &portfolioID, &sub.Name, &sub.City, &sub.StateTerritory,
		&sub.AutoCreated, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan suborganization: %w", err)
	}
	sub.ID = id.SuborgID(subID)
	sub.PortfolioID = id.PortfolioID(portfolioID)
	return &sub, nil
}

func scanSuborgRows(rows *sql.Rows) (*Suborganization, error) {
	var sub Suborganization
	var subID, portfolioID uuid.UUID
	err := rows.Scan(&subID, &portfolioID, &sub.Name, &sub.City, &sub.StateTerritory,
		&sub.AutoCreated, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan suborganization: %w", err)
	}
	sub.ID = id.SuborgID(subID)
	sub.PortfolioID = id.PortfolioID(portfolioID)
	return &sub, nil
}

// PostgresAgencyStore persists federal agencies in PostgreSQL.
type PostgresAgencyStore struct {
	db *sql.DB
}

func NewPostgresAgencyStore(db *sql.DB) *PostgresAgencyStore {
	return &PostgresAgencyStore{db: db}
}

func (s *PostgresAgencyStore) Save(ctx context.Context, agency *FederalAgency) error {
	query := `
		INSERT INTO federal_agencies (id, name, federal_type, initials, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (name) DO UPDATE SET
			federal_type = EXCLUDED.federal_type,
			initials = EXCLUDED.initials
	`
	_, err := runner(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(agency.ID), agency.Name, agency.FederalType, agency.Initials)
	if err != nil {
		return fmt.Errorf("save federal agency %s: %w", agency.Name, err)
	}
	return nil
}

func (s *PostgresAgencyStore) FindByID(ctx context.Context, agencyID id.AgencyID) (*FederalAgency, error) {
	query := `SELECT id, name, federal_type, initials, created_at FROM federal_agencies WHERE id = $1`
	return scanAgency(runner(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(agencyID)))
}

func (s *PostgresAgencyStore) FindByName(ctx context.Context, name string) (*FederalAgency, error) {
	query := `SELECT id, name, federal_type, initials, created_at FROM federal_agencies WHERE name = $1`
	return scanAgency(runner(ctx, s.db).QueryRowContext(ctx, query, name))
}

func scanAgency(row *sql.Row) (*FederalAgency, error) {
	var agency FederalAgency
	var agencyID uuid.UUID
	err := row.Scan(&agencyID, &agency.Name, &agency.FederalType, &agency.Initials, &agency.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan federal agency: %w", err)
	}
	agency.ID = id.AgencyID(agencyID)
	return &agency, nil
}

// PostgresPortfolioStore persists portfolios in PostgreSQL.
type PostgresPortfolioStore struct {
	db *sql.DB
}

func NewPostgresPortfolioStore(db *sql.DB) *PostgresPortfolioStore {
	return &PostgresPortfolioStore{db: db}
}

func (s *PostgresPortfolioStore) Save(ctx context.Context, p *Portfolio) error {
	query := `
		INSERT INTO portfolios (id, name, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, updated_at = NOW()
	`
	_, err := runner(ctx, s.db).ExecContext(ctx, query, uuid.UUID(p.ID), p.Name)
	if err != nil {
		return fmt.Errorf("save portfolio %s: %w", p.Name, err)
	}
	return nil
}

func (s *PostgresPortfolioStore) FindByID(ctx context.Context, portfolioID id.PortfolioID) (*Portfolio, error) {
	query := `SELECT id, name, created_at, updated_at FROM portfolios WHERE id = $1`
	var p Portfolio
	var pid uuid.UUID
	err := runner(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(portfolioID)).
		Scan(&pid, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan portfolio: %w", err)
	}
	p.ID = id.PortfolioID(pid)
	return &p, nil
}
