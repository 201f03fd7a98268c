package epp

import "time"

// Command is a typed EPP command. Implementations map one-to-one onto the
// wire-level command elements.
type Command interface {
	commandName() string
}

// Status is a domain or host status label, e.g. "clientHold", "ok",
// "serverTransferProhibited".
type Status struct {
	State string
}

// ContactType distinguishes the four registry contact roles.
type ContactType string

const (
	ContactTypeRegistrant     ContactType = "registrant"
	ContactTypeAdministrative ContactType = "admin"
	ContactTypeTechnical      ContactType = "tech"
	ContactTypeSecurity       ContactType = "security"
)

// ContactRef associates a contact id with its role on a domain.
type ContactRef struct {
	Contact string
	Type    ContactType
}

// HostObjSet names hosts added to or removed from a domain.
type HostObjSet struct {
	Hosts []string
}

// IP is a glue-record address with its version tag.
type IP struct {
	Address string
	Version string // "v4" or "v6"
}

// PostalInfo is the postal block of a contact.
type PostalInfo struct {
	Name   string
	Org    string
	Street []string
	City   string
	SP     string // state or province
	PC     string // postal code
	CC     string // country code
}

// Disclose lists contact fields the registry may publish. Fields not listed
// follow registry policy.
type Disclose struct {
	Flag   bool
	Fields []DiscloseField
}

// DiscloseField names one disclosable contact field.
type DiscloseField string

const (
	DiscloseEmail DiscloseField = "email"
	DiscloseVoice DiscloseField = "voice"
	DiscloseAddr  DiscloseField = "addr"
)

// Period is a validity period for create and renew commands.
type Period struct {
	Length int
	Unit   string // "y" or "m"
}

// SecDNSUpdate is the secDNS extension payload attached to UpdateDomain.
// Rem lists records to drop, Add records to attach; RemAll drops everything.
type SecDNSUpdate struct {
	RemAll bool
	Rem    []DsData
	Add    []DsData
}

// DsData is one DNSSEC delegation signer record.
type DsData struct {
	KeyTag     int
	Alg        int
	DigestType int
	Digest     string
}

// InfoDomain fetches the registry's view of a domain.
type InfoDomain struct {
	Name string
}

// CreateDomain registers a new domain under the given registrant.
type CreateDomain struct {
	Name       string
	Registrant string
	AuthInfo   string
	Period     *Period
}

// UpdateDomain changes statuses, nameservers, and contacts on a domain.
// SecDNS, when set, rides along as the secDNS extension.
type UpdateDomain struct {
	Name        string
	AddStatuses []Status
	RemStatuses []Status
	AddHosts    *HostObjSet
	RemHosts    *HostObjSet
	AddContacts []ContactRef
	RemContacts []ContactRef
	Registrant  string
	SecDNS      *SecDNSUpdate
}

// DeleteDomain removes a domain from the registry.
type DeleteDomain struct {
	Name string
}

// RenewDomain extends a domain's registration period.
type RenewDomain struct {
	Name       string
	CurExpDate time.Time
	Period     Period
}

// CheckDomain asks whether names are available for registration.
type CheckDomain struct {
	Names []string
}

// InfoContact fetches a contact by registry id.
type InfoContact struct {
	ID string
}

// CreateContact registers a new contact object.
type CreateContact struct {
	ID         string
	PostalInfo PostalInfo
	Email      string
	Voice      string
	Fax        string
	AuthInfo   string
	Disclose   *Disclose
}

// UpdateContact replaces the mutable fields of a contact.
type UpdateContact struct {
	ID         string
	PostalInfo PostalInfo
	Email      string
	Voice      string
	Fax        string
	AuthInfo   string
	Disclose   *Disclose
}

// DeleteContact removes a contact object.
type DeleteContact struct {
	ID string
}

// InfoHost fetches a host object.
type InfoHost struct {
	Name string
}

// CreateHost registers a host, with glue addresses when required.
type CreateHost struct {
	Name  string
	Addrs []IP
}

// UpdateHost adds and removes glue addresses on a host.
type UpdateHost struct {
	Name     string
	AddAddrs []IP
	RemAddrs []IP
}

// DeleteHost removes a host object.
type DeleteHost struct {
	Name string
}

func (InfoDomain) commandName() string    { return "info-domain" }
func (CreateDomain) commandName() string  { return "create-domain" }
func (UpdateDomain) commandName() string  { return "update-domain" }
func (DeleteDomain) commandName() string  { return "delete-domain" }
func (RenewDomain) commandName() string   { return "renew-domain" }
func (CheckDomain) commandName() string   { return "check-domain" }
func (InfoContact) commandName() string   { return "info-contact" }
func (CreateContact) commandName() string { return "create-contact" }
func (UpdateContact) commandName() string { return "update-contact" }
func (DeleteContact) commandName() string { return "delete-contact" }
func (InfoHost) commandName() string      { return "info-host" }
func (CreateHost) commandName() string    { return "create-host" }
func (UpdateHost) commandName() string    { return "update-host" }
func (DeleteHost) commandName() string    { return "delete-host" }

// Name returns the metrics label for a command.
func Name(cmd Command) string {
	if cmd == nil {
		return "unknown"
	}
	return cmd.commandName()
}
