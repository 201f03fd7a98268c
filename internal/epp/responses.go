package epp

import "time"

// ResData is one typed result record from a response's resData element.
type ResData interface {
	resData()
}

// Extension is a typed response extension payload.
type Extension interface {
	extension()
}

// Response is a parsed EPP response. Code is always a success code; failures
// are returned as *RegistryError instead.
type Response struct {
	Code       ErrorCode
	Msg        string
	ResData    []ResData
	Extensions []Extension
}

// First returns the first result record, or nil when the response carried
// none (pure acknowledgements).
func (r *Response) First() ResData {
	if r == nil || len(r.ResData) == 0 {
		return nil
	}
	return r.ResData[0]
}

// InfoDomainData is the resData of an InfoDomain response.
type InfoDomainData struct {
	Name       string
	Roid       string
	Statuses   []Status
	Registrant string
	Contacts   []ContactRef
	Hosts      []string
	ClID       string
	CrDate     time.Time
	ExDate     time.Time
	AuthInfo   string
}

// InfoContactData is the resData of an InfoContact response.
type InfoContactData struct {
	ID         string
	Roid       string
	Statuses   []Status
	PostalInfo PostalInfo
	Email      string
	Voice      string
	Fax        string
	Disclose   *Disclose
}

// InfoHostData is the resData of an InfoHost response.
type InfoHostData struct {
	Name     string
	Roid     string
	Statuses []Status
	Addrs    []IP
}

// CheckDomainData is one name's availability from a CheckDomain response.
type CheckDomainData struct {
	Name   string
	Avail  bool
	Reason string
}

// CreateDomainData is the resData of a CreateDomain response.
type CreateDomainData struct {
	Name   string
	CrDate time.Time
	ExDate time.Time
}

// RenewDomainData is the resData of a RenewDomain response.
type RenewDomainData struct {
	Name   string
	ExDate time.Time
}

// CreateContactData is the resData of a CreateContact response.
type CreateContactData struct {
	ID     string
	CrDate time.Time
}

// SecDNSData is the secDNS extension payload on an InfoDomain response.
type SecDNSData struct {
	DsData []DsData
}

func (InfoDomainData) resData()    {}
func (InfoContactData) resData()   {}
func (InfoHostData) resData()      {}
func (CheckDomainData) resData()   {}
func (CreateDomainData) resData()  {}
func (RenewDomainData) resData()   {}
func (CreateContactData) resData() {}

func (SecDNSData) extension() {}
