package domain

import (
	"context"
	"log/slog"

	"registrar/internal/audit"
	"registrar/internal/epp"
	id "registrar/pkg/domain"
	txcontext "registrar/pkg/platform/tx"
)

// Service is the registry-facing entry point for managing active domains. It
// loads the record, runs the aggregate operation against the registry, and
// persists the resulting state with an audit event in one transaction. The
// registry call itself is not transactional; a failed save after a succeeded
// registry call is reconciled by the next refresh.
type Service struct {
	store   Store
	client  epp.Client
	auditor audit.Publisher
	tx      *txcontext.Runner
	logger  *slog.Logger
}

func NewService(store Store, client epp.Client, auditor audit.Publisher, tx *txcontext.Runner, logger *slog.Logger) *Service {
	return &Service{store: store, client: client, auditor: auditor, tx: tx, logger: logger}
}

// Get returns the stored domain record.
func (s *Service) Get(ctx context.Context, domainID id.DomainID) (*Domain, error) {
	return s.store.FindByID(ctx, domainID)
}

// Aggregate loads a domain and binds it to the registry client for reads.
func (s *Service) Aggregate(ctx context.Context, domainID id.DomainID) (*Aggregate, error) {
	d, err := s.store.FindByID(ctx, domainID)
	if err != nil {
		return nil, err
	}
	return NewAggregate(d, s.client, s.logger), nil
}

// PlaceClientHold takes the domain out of the DNS.
func (s *Service) PlaceClientHold(ctx context.Context, domainID id.DomainID) (*Domain, error) {
	return s.mutate(ctx, domainID, audit.ActionDomainHold, func(ctx context.Context, agg *Aggregate) error {
		return agg.PlaceClientHold(ctx)
	})
}

// RevertClientHold puts the domain back in service.
func (s *Service) RevertClientHold(ctx context.Context, domainID id.DomainID) (*Domain, error) {
	return s.mutate(ctx, domainID, audit.ActionDomainReleaseHold, func(ctx context.Context, agg *Aggregate) error {
		return agg.RevertClientHold(ctx)
	})
}

// Delete removes the domain from the registry. Idempotent when the domain is
// already deleted.
func (s *Service) Delete(ctx context.Context, domainID id.DomainID) (*Domain, error) {
	return s.mutate(ctx, domainID, audit.ActionDomainDelete, func(ctx context.Context, agg *Aggregate) error {
		return agg.DeletedInEpp(ctx)
	})
}

// Renew extends the registration by the given number of years.
func (s *Service) Renew(ctx context.Context, domainID id.DomainID, years int) (*Domain, error) {
	return s.mutate(ctx, domainID, audit.ActionDomainRenew, func(ctx context.Context, agg *Aggregate) error {
		return agg.Renew(ctx, years)
	})
}

// SetNameservers validates and replaces the domain's nameserver set.
func (s *Service) SetNameservers(ctx context.Context, domainID id.DomainID, hosts []Nameserver) (*Domain, error) {
	return s.mutate(ctx, domainID, audit.ActionDomainNameservers, func(ctx context.Context, agg *Aggregate) error {
		return agg.SetNameservers(ctx, hosts)
	})
}

// SetDsData validates and replaces the domain's DNSSEC DS records.
func (s *Service) SetDsData(ctx context.Context, domainID id.DomainID, records []epp.DsData, confirmDisable bool) (*Domain, error) {
	return s.mutate(ctx, domainID, audit.ActionDomainDsData, func(ctx context.Context, agg *Aggregate) error {
		return agg.SetDsData(ctx, records, confirmDisable)
	})
}

// SetSecurityEmail updates the security contact's address at the registry.
func (s *Service) SetSecurityEmail(ctx context.Context, domainID id.DomainID, email string) (*Domain, error) {
	return s.mutate(ctx, domainID, audit.ActionDomainSecurityEmail, func(ctx context.Context, agg *Aggregate) error {
		return agg.SetSecurityEmail(ctx, email)
	})
}

func (s *Service) mutate(ctx context.Context, domainID id.DomainID, action audit.Action, op func(ctx context.Context, agg *Aggregate) error) (*Domain, error) {
	d, err := s.store.FindByID(ctx, domainID)
	if err != nil {
		return nil, err
	}
	from := d.State
	agg := NewAggregate(d, s.client, s.logger)
	if err := op(ctx, agg); err != nil {
		return nil, err
	}
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.store.Save(ctx, d); err != nil {
			return err
		}
		return s.auditor.Emit(ctx, audit.Event{
			Action:    action,
			Subject:   d.Name.String(),
			FromState: string(from),
			ToState:   string(d.State),
		})
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}
