package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"registrar/internal/epp"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/requestcontext"
)

// Aggregate pairs a domain record with the registry client and an
// instance-local cache of registry-derived fields. Construct one per request;
// the cache must not outlive it.
type Aggregate struct {
	domain *Domain
	client epp.Client
	logger *slog.Logger
	cache  *registryCache
}

// NewAggregate wraps a domain record for registry-backed operations.
func NewAggregate(d *Domain, client epp.Client, logger *slog.Logger) *Aggregate {
	return &Aggregate{domain: d, client: client, logger: logger, cache: newRegistryCache()}
}

// Record exposes the underlying persistent record for saving.
func (a *Aggregate) Record() *Domain { return a.domain }

// Refresh drops every cached registry-derived field.
func (a *Aggregate) Refresh() { a.cache.clear() }

// --- lazy registry-backed reads ---------------------------------------------

// ExpirationDate returns the registry's expiration date, fetched once per
// aggregate lifetime.
func (a *Aggregate) ExpirationDate(ctx context.Context) (time.Time, error) {
	if v, ok := a.cache.get(cacheFieldExpiration); ok {
		return v.(time.Time), nil
	}
	info, err := a.infoDomain(ctx)
	if err != nil {
		return time.Time{}, err
	}
	a.cache.set(cacheFieldExpiration, info.ExDate)
	return info.ExDate, nil
}

// Nameservers returns the domain's hosts with their glue addresses. Each
// in-domain host costs an extra InfoHost round trip on first access.
func (a *Aggregate) Nameservers(ctx context.Context) ([]Nameserver, error) {
	if v, ok := a.cache.get(cacheFieldHosts); ok {
		return v.([]Nameserver), nil
	}
	info, err := a.infoDomain(ctx)
	if err != nil {
		return nil, err
	}
	hosts := make([]Nameserver, 0, len(info.Hosts))
	for _, host := range info.Hosts {
		ns := Nameserver{Host: host}
		if a.domain.Name.IsParentOf(host) {
			hostInfo, err := a.infoHost(ctx, host)
			if err != nil {
				return nil, err
			}
			for _, addr := range hostInfo.Addrs {
				ns.IPs = append(ns.IPs, addr.Address)
			}
		}
		hosts = append(hosts, ns)
	}
	a.cache.set(cacheFieldHosts, hosts)
	return hosts, nil
}

// Statuses returns the registry-side status labels on the domain.
func (a *Aggregate) Statuses(ctx context.Context) ([]epp.Status, error) {
	if v, ok := a.cache.get(cacheFieldStatuses); ok {
		return v.([]epp.Status), nil
	}
	info, err := a.infoDomain(ctx)
	if err != nil {
		return nil, err
	}
	a.cache.set(cacheFieldStatuses, info.Statuses)
	return info.Statuses, nil
}

// DsData returns the DNSSEC delegation signer records on the domain.
func (a *Aggregate) DsData(ctx context.Context) ([]epp.DsData, error) {
	if v, ok := a.cache.get(cacheFieldDsData); ok {
		return v.([]epp.DsData), nil
	}
	resp, err := a.send(ctx, epp.InfoDomain{Name: a.domain.Name.String()})
	if err != nil {
		return nil, err
	}
	var records []epp.DsData
	for _, ext := range resp.Extensions {
		if sec, ok := ext.(epp.SecDNSData); ok {
			records = sec.DsData
		}
	}
	if data, ok := resp.First().(epp.InfoDomainData); ok {
		a.cache.set(cacheFieldExpiration, data.ExDate)
	}
	a.cache.set(cacheFieldDsData, records)
	return records, nil
}

// SecurityContact returns the security contact registered for the domain.
func (a *Aggregate) SecurityContact(ctx context.Context) (*epp.InfoContactData, error) {
	if v, ok := a.cache.get(cacheFieldSecurityCon); ok {
		return v.(*epp.InfoContactData), nil
	}
	info, err := a.infoDomain(ctx)
	if err != nil {
		return nil, err
	}
	var registryID string
	for _, ref := range info.Contacts {
		if ref.Type == epp.ContactTypeSecurity {
			registryID = ref.Contact
		}
	}
	if registryID == "" {
		return nil, dErrors.New(dErrors.CodeNotFound, "domain has no security contact")
	}
	resp, err := a.send(ctx, epp.InfoContact{ID: registryID})
	if err != nil {
		return nil, err
	}
	contact, ok := resp.First().(epp.InfoContactData)
	if !ok {
		return nil, fmt.Errorf("info contact %s: empty response", registryID)
	}
	a.cache.set(cacheFieldSecurityCon, &contact)
	return &contact, nil
}

// --- mutations ---------------------------------------------------------------

// PlaceClientHold suspends resolution. Allowed from any state but deleted.
func (a *Aggregate) PlaceClientHold(ctx context.Context) error {
	if a.domain.State == StateDeleted {
		return &ActionNotAllowedError{Action: "hold", State: a.domain.State}
	}
	_, err := a.send(ctx, epp.UpdateDomain{
		Name:        a.domain.Name.String(),
		AddStatuses: []epp.Status{{State: "clientHold"}},
	})
	if err != nil {
		return err
	}
	a.domain.setState(StateOnHold)
	a.cache.invalidate(cacheFieldStatuses)
	return nil
}

// RevertClientHold lifts the hold, returning to ready or dns needed
// depending on whether the domain has enough nameservers.
func (a *Aggregate) RevertClientHold(ctx context.Context) error {
	if a.domain.State != StateOnHold {
		return &ActionNotAllowedError{Action: "release", State: a.domain.State, Detail: "only a domain on hold can be released"}
	}
	_, err := a.send(ctx, epp.UpdateDomain{
		Name:        a.domain.Name.String(),
		RemStatuses: []epp.Status{{State: "clientHold"}},
	})
	if err != nil {
		return err
	}
	hosts, err := a.Nameservers(ctx)
	if err != nil {
		return err
	}
	if len(hosts) >= minNameservers {
		a.domain.setState(StateReady)
	} else {
		a.domain.setState(StateDNSNeeded)
	}
	a.cache.invalidate(cacheFieldStatuses)
	return nil
}

// DeletedInEpp removes the domain from the registry. Deleting an already
// deleted domain is an idempotent success. Deleting from ready is refused
// with the intermediate states named; the registry is never contacted.
func (a *Aggregate) DeletedInEpp(ctx context.Context) error {
	switch a.domain.State {
	case StateDeleted:
		return nil
	case StateDNSNeeded, StateOnHold:
	default:
		return &ActionNotAllowedError{
			Action: "delete",
			State:  a.domain.State,
			Detail: "it must be in state dns needed or on hold first",
		}
	}
	_, err := a.send(ctx, epp.DeleteDomain{Name: a.domain.Name.String()})
	if err != nil {
		var regErr *epp.RegistryError
		if errors.As(err, &regErr) && regErr.Code == epp.ObjectAssociationProhibitsOperation {
			return dErrors.Wrap(dErrors.CodeConflict,
				"Error deleting this Domain: objects are associated with this domain", err)
		}
		return err
	}
	a.domain.setState(StateDeleted)
	a.domain.DeletedAt = requestcontext.Now(ctx)
	a.cache.clear()
	return nil
}

// Renew extends the registration by extensionPeriod years and records the
// registry's new expiration date.
func (a *Aggregate) Renew(ctx context.Context, extensionPeriod int) error {
	if extensionPeriod < 1 {
		return &RenewPeriodError{Years: extensionPeriod}
	}
	curExp, err := a.ExpirationDate(ctx)
	if err != nil {
		return err
	}
	resp, err := a.send(ctx, epp.RenewDomain{
		Name:       a.domain.Name.String(),
		CurExpDate: curExp,
		Period:     epp.Period{Length: extensionPeriod, Unit: "y"},
	})
	if err != nil {
		return err
	}
	data, ok := resp.First().(epp.RenewDomainData)
	if !ok {
		return fmt.Errorf("renew %s: response missing renData", a.domain.Name)
	}
	a.domain.ExpirationDate = data.ExDate
	a.cache.set(cacheFieldExpiration, data.ExDate)
	return nil
}

// SetNameservers validates the host set locally, creates missing in-domain
// host objects, diffs against the registry's current set, and applies the
// change with one UpdateDomain. State follows the count: two or more hosts
// makes the domain ready, fewer leaves it dns needed.
func (a *Aggregate) SetNameservers(ctx context.Context, hosts []Nameserver) error {
	if a.domain.State == StateDeleted {
		return &ActionNotAllowedError{Action: "update", State: a.domain.State}
	}
	cleaned, err := validateNameservers(a.domain.Name, hosts)
	if err != nil {
		return err
	}

	current, err := a.Nameservers(ctx)
	if err != nil {
		return err
	}
	currentSet := make(map[string]bool, len(current))
	for _, ns := range current {
		currentSet[ns.Host] = true
	}
	wantSet := make(map[string]bool, len(cleaned))
	for _, ns := range cleaned {
		wantSet[ns.Host] = true
	}

	var toAdd, toRem []string
	for _, ns := range cleaned {
		if !currentSet[ns.Host] {
			if err := a.ensureHost(ctx, ns); err != nil {
				return err
			}
			toAdd = append(toAdd, ns.Host)
		}
	}
	for _, ns := range current {
		if !wantSet[ns.Host] {
			toRem = append(toRem, ns.Host)
		}
	}

	if len(toAdd) > 0 || len(toRem) > 0 {
		update := epp.UpdateDomain{Name: a.domain.Name.String()}
		if len(toAdd) > 0 {
			update.AddHosts = &epp.HostObjSet{Hosts: toAdd}
		}
		if len(toRem) > 0 {
			update.RemHosts = &epp.HostObjSet{Hosts: toRem}
		}
		if _, err := a.send(ctx, update); err != nil {
			return err
		}
	}

	a.cache.invalidate(cacheFieldHosts, cacheFieldStatuses)
	if len(cleaned) >= minNameservers {
		if a.domain.State == StateUnknown || a.domain.State == StateDNSNeeded {
			a.domain.setState(StateReady)
			if a.domain.FirstReady.IsZero() {
				a.domain.FirstReady = requestcontext.Now(ctx)
			}
		}
	} else if a.domain.State == StateReady {
		a.domain.setState(StateDNSNeeded)
	}
	return nil
}

// ensureHost guarantees a host object exists in the registry. In-domain hosts
// are created with their glue addresses; out-of-domain hosts must already
// exist, because the registry will not accept glue for them.
func (a *Aggregate) ensureHost(ctx context.Context, ns Nameserver) error {
	_, err := a.send(ctx, epp.InfoHost{Name: ns.Host})
	if err == nil {
		return nil
	}
	var regErr *epp.RegistryError
	if !errors.As(err, &regErr) || regErr.Code != epp.ObjectDoesNotExist {
		return err
	}
	if !a.domain.Name.IsParentOf(ns.Host) {
		return &NameserverError{Code: NameserverMissingHost, Host: ns.Host}
	}
	addrs := make([]epp.IP, 0, len(ns.IPs))
	for _, ip := range ns.IPs {
		addrs = append(addrs, epp.IP{Address: ip, Version: ipVersion(ip)})
	}
	_, err = a.send(ctx, epp.CreateHost{Name: ns.Host, Addrs: addrs})
	if err != nil {
		var createErr *epp.RegistryError
		if errors.As(err, &createErr) && createErr.Code == epp.ParameterValueRangeError {
			return &NameserverError{Code: NameserverInvalidIP, Host: ns.Host, Value: strings.Join(ns.IPs, ", ")}
		}
		return err
	}
	return nil
}

// SetDsData replaces the domain's DS record set. An empty set while records
// exist disables DNSSEC and is refused unless the caller confirms.
func (a *Aggregate) SetDsData(ctx context.Context, records []epp.DsData, confirmDisable bool) error {
	if a.domain.State == StateDeleted {
		return &ActionNotAllowedError{Action: "update", State: a.domain.State}
	}
	if err := validateDsData(records); err != nil {
		return err
	}
	existing, err := a.DsData(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		if len(existing) == 0 {
			return nil
		}
		if !confirmDisable {
			return &DsDataError{Code: DsEmptyRequiresConfirmation}
		}
	}
	update := epp.UpdateDomain{
		Name:   a.domain.Name.String(),
		SecDNS: &epp.SecDNSUpdate{Add: records},
	}
	if len(existing) > 0 {
		update.SecDNS.Rem = existing
	}
	if len(records) == 0 {
		update.SecDNS = &epp.SecDNSUpdate{RemAll: true}
	}
	if _, err := a.send(ctx, update); err != nil {
		return err
	}
	a.cache.invalidate(cacheFieldDsData)
	return nil
}

// SetSecurityEmail updates the security contact's address and discloses it.
func (a *Aggregate) SetSecurityEmail(ctx context.Context, email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return &SecurityEmailError{Code: SecurityEmailBadData}
	}
	contact, err := a.SecurityContact(ctx)
	if err != nil {
		var regErr *epp.RegistryError
		if errors.As(err, &regErr) {
			return &SecurityEmailError{Code: SecurityEmailCannotContactRegistry}
		}
		return err
	}
	_, err = a.send(ctx, epp.UpdateContact{
		ID:         contact.ID,
		PostalInfo: contact.PostalInfo,
		Email:      email,
		Voice:      contact.Voice,
		Fax:        contact.Fax,
		Disclose: &epp.Disclose{
			Flag:   email != defaultSecurityEmail,
			Fields: []epp.DiscloseField{epp.DiscloseEmail},
		},
	})
	if err != nil {
		var regErr *epp.RegistryError
		if !errors.As(err, &regErr) {
			return &SecurityEmailError{Code: SecurityEmailCannotContactRegistry}
		}
		if regErr.Code.IsClientError() {
			return &GenericRegistryError{Code: GenericError}
		}
		return &GenericRegistryError{Code: GenericCannotContactRegistry}
	}
	a.cache.invalidate(cacheFieldSecurityCon, cacheFieldContacts)
	return nil
}

// --- helpers -----------------------------------------------------------------

func (a *Aggregate) infoDomain(ctx context.Context) (*epp.InfoDomainData, error) {
	resp, err := a.send(ctx, epp.InfoDomain{Name: a.domain.Name.String()})
	if err != nil {
		return nil, err
	}
	data, ok := resp.First().(epp.InfoDomainData)
	if !ok {
		return nil, fmt.Errorf("info domain %s: empty response", a.domain.Name)
	}
	return &data, nil
}

func (a *Aggregate) infoHost(ctx context.Context, host string) (*epp.InfoHostData, error) {
	resp, err := a.send(ctx, epp.InfoHost{Name: host})
	if err != nil {
		return nil, err
	}
	data, ok := resp.First().(epp.InfoHostData)
	if !ok {
		return nil, fmt.Errorf("info host %s: empty response", host)
	}
	return &data, nil
}

func (a *Aggregate) send(ctx context.Context, cmd epp.Command) (*epp.Response, error) {
	resp, err := a.client.Send(ctx, cmd, true)
	if err != nil {
		a.logger.ErrorContext(ctx, "registry command failed",
			"domain", a.domain.Name.String(),
			"command", epp.Name(cmd),
			"error", err,
		)
		return nil, err
	}
	return resp, nil
}
