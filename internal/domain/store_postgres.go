package domain

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"registrar/internal/epp"
	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
	txcontext "registrar/pkg/platform/tx"
)

// PostgresStore persists domains in PostgreSQL. It participates in a
// transaction carried by pkg/platform/tx when one is present.
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

func (s *PostgresStore) Save(ctx context.Context, d *Domain) error {
	query := `
		INSERT INTO domains (id, name, state, expiration_date, first_ready, deleted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			state = EXCLUDED.state,
			expiration_date = EXCLUDED.expiration_date,
			first_ready = EXCLUDED.first_ready,
			deleted_at = EXCLUDED.deleted_at,
			updated_at = NOW()
	`
	_, err := s.runner(ctx).ExecContext(ctx, query,
		uuid.UUID(d.ID), d.Name.String(), string(d.State),
		nullTime(d.ExpirationDate), nullTime(d.FirstReady), nullTime(d.DeletedAt))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("save domain %s: %w", d.Name, sentinel.ErrConflict)
		}
		return fmt.Errorf("save domain %s: %w", d.Name, err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, domainID id.DomainID) (*Domain, error) {
	query := `
		SELECT id, name, state, expiration_date, first_ready, deleted_at, created_at, updated_at
		FROM domains WHERE id = $1
	`
	return s.scanDomain(s.runner(ctx).QueryRowContext(ctx, query, uuid.UUID(domainID)))
}

func (s *PostgresStore) FindByName(ctx context.Context, name id.DomainName) (*Domain, error) {
	query := `
		SELECT id, name, state, expiration_date, first_ready, deleted_at, created_at, updated_at
		FROM domains WHERE name = $1
	`
	return s.scanDomain(s.runner(ctx).QueryRowContext(ctx, query, name.String()))
}

func (s *PostgresStore) Delete(ctx context.Context, domainID id.DomainID) error {
	res, err := s.runner(ctx).ExecContext(ctx, `DELETE FROM domains WHERE id = $1`, uuid.UUID(domainID))
	if err != nil {
		return fmt.Errorf("delete domain: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SaveContact(ctx context.Context, contact *PublicContact) error {
	query := `
		INSERT INTO public_contacts
			(registry_id, domain_id, contact_type, name, org, street, city, sp, pc, cc, email, voice, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		ON CONFLICT (domain_id, contact_type) DO UPDATE SET
			registry_id = EXCLUDED.registry_id,
			name = EXCLUDED.name,
			org = EXCLUDED.org,
			street = EXCLUDED.street,
			city = EXCLUDED.city,
			sp = EXCLUDED.sp,
			pc = EXCLUDED.pc,
			cc = EXCLUDED.cc,
			email = EXCLUDED.email,
			voice = EXCLUDED.voice,
			updated_at = NOW()
	`
	_, err := s.runner(ctx).ExecContext(ctx, query,
		contact.RegistryID, uuid.UUID(contact.DomainID), string(contact.ContactType),
		contact.Name, contact.Org, pq.Array(contact.Street),
		contact.City, contact.SP, contact.PC, contact.CC, contact.Email, contact.Voice)
	if err != nil {
		return fmt.Errorf("save public contact %s: %w", contact.RegistryID, err)
	}
	return nil
}

func (s *PostgresStore) ContactsByDomain(ctx context.Context, domainID id.DomainID) ([]*PublicContact, error) {
	query := `
		SELECT registry_id, domain_id, contact_type, name, org, street, city, sp, pc, cc, email, voice
		FROM public_contacts WHERE domain_id = $1
	`
	rows, err := s.runner(ctx).QueryContext(ctx, query, uuid.UUID(domainID))
	if err != nil {
		return nil, fmt.Errorf("list public contacts: %w", err)
	}
	defer rows.Close()

	var out []*PublicContact
	for rows.Next() {
		var c PublicContact
		var domID uuid.UUID
		var contactType string
		if err := rows.Scan(&c.RegistryID, &domID, &contactType, &c.Name, &c.Org,
			pq.Array(&c.Street), &c.City, &c.SP, &c.PC, &c.CC, &c.Email, &c.Voice); err != nil {
			return nil, fmt.Errorf("scan public contact: %w", err)
		}
		c.DomainID = id.DomainID(domID)
		c.ContactType = epp.ContactType(contactType)
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) scanDomain(row *sql.Row) (*Domain, error) {
	var d Domain
	var domID uuid.UUID
	var name, state string
	var expiration, firstReady, deletedAt sql.NullTime
	err := row.Scan(&domID, &name, &state, &expiration, &firstReady, &deletedAt, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan domain: %w", err)
	}
	d.ID = id.DomainID(domID)
	d.Name = id.DomainName(name)
	d.State = State(state)
	d.ExpirationDate = expiration.Time
	d.FirstReady = firstReady.Time
	d.DeletedAt = deletedAt.Time
	return &d, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
