package epp

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

// Namespace URIs for the EPP object and extension mappings in use.
const (
	nsEPP     = "urn:ietf:params:xml:ns:epp-1.0"
	nsDomain  = "urn:ietf:params:xml:ns:domain-1.0"
	nsContact = "urn:ietf:params:xml:ns:contact-1.0"
	nsHost    = "urn:ietf:params:xml:ns:host-1.0"
	nsSecDNS  = "urn:ietf:params:xml:ns:secDNS-1.1"
)

const eppDateLayout = "2006-01-02"

// --- request marshalling -----------------------------------------------------

type xmlEPP struct {
	XMLName xml.Name    `xml:"epp"`
	NS      string      `xml:"xmlns,attr"`
	Command *xmlCommand `xml:"command,omitempty"`
	Hello   *struct{}   `xml:"hello,omitempty"`
}

type xmlCommand struct {
	Login     *xmlLogin     `xml:"login,omitempty"`
	Logout    *struct{}     `xml:"logout,omitempty"`
	Check     *xmlObjHolder `xml:"check,omitempty"`
	Info      *xmlObjHolder `xml:"info,omitempty"`
	Create    *xmlObjHolder `xml:"create,omitempty"`
	Update    *xmlObjHolder `xml:"update,omitempty"`
	Delete    *xmlObjHolder `xml:"delete,omitempty"`
	Renew     *xmlObjHolder `xml:"renew,omitempty"`
	Extension *xmlExtension `xml:"extension,omitempty"`
	ClTRID    string        `xml:"clTRID,omitempty"`
}

type xmlLogin struct {
	ClID    string   `xml:"clID"`
	Pw      string   `xml:"pw"`
	Version string   `xml:"options>version"`
	Lang    string   `xml:"options>lang"`
	ObjURIs []string `xml:"svcs>objURI"`
	ExtURIs []string `xml:"svcs>svcExtension>extURI,omitempty"`
}

// xmlObjHolder holds at most one object-mapping payload.
type xmlObjHolder struct {
	Domain  any `xml:",omitempty"`
	Contact any `xml:",omitempty"`
	Host    any `xml:",omitempty"`
}

func (h xmlObjHolder) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, obj := range []any{h.Domain, h.Contact, h.Host} {
		if obj == nil {
			continue
		}
		if err := e.Encode(obj); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

type xmlExtension struct {
	SecDNSUpdate *xmlSecDNSUpdate `xml:"urn:ietf:params:xml:ns:secDNS-1.1 update,omitempty"`
}

type xmlSecDNSUpdate struct {
	XMLName xml.Name      `xml:"urn:ietf:params:xml:ns:secDNS-1.1 update"`
	Rem     *xmlSecDNSRem `xml:"rem,omitempty"`
	Add     *xmlSecDNSAdd `xml:"add,omitempty"`
}

type xmlSecDNSRem struct {
	All    string      `xml:"all,omitempty"`
	DsData []xmlDsData `xml:"dsData,omitempty"`
}

type xmlSecDNSAdd struct {
	DsData []xmlDsData `xml:"dsData"`
}

type xmlDsData struct {
	KeyTag     int    `xml:"keyTag"`
	Alg        int    `xml:"alg"`
	DigestType int    `xml:"digestType"`
	Digest     string `xml:"digest"`
}

type xmlDomainCheck struct {
	XMLName xml.Name `xml:"urn:ietf:params:xml:ns:domain-1.0 check"`
	Names   []string `xml:"name"`
}

type xmlDomainInfo struct {
	XMLName xml.Name `xml:"urn:ietf:params:xml:ns:domain-1.0 info"`
	Name    string   `xml:"name"`
}

type xmlDomainDelete struct {
	XMLName xml.Name `xml:"urn:ietf:params:xml:ns:domain-1.0 delete"`
	Name    string   `xml:"name"`
}

type xmlPeriod struct {
	Unit  string `xml:"unit,attr"`
	Value int    `xml:",chardata"`
}

type xmlDomainCreate struct {
	XMLName    xml.Name   `xml:"urn:ietf:params:xml:ns:domain-1.0 create"`
	Name       string     `xml:"name"`
	Period     *xmlPeriod `xml:"period,omitempty"`
	Registrant string     `xml:"registrant,omitempty"`
	AuthInfo   string     `xml:"authInfo>pw,omitempty"`
}

type xmlDomainRenew struct {
	XMLName    xml.Name  `xml:"urn:ietf:params:xml:ns:domain-1.0 renew"`
	Name       string    `xml:"name"`
	CurExpDate string    `xml:"curExpDate"`
	Period     xmlPeriod `xml:"period"`
}

type xmlStatus struct {
	State string `xml:"s,attr"`
}

type xmlContactRef struct {
	Type    string `xml:"type,attr"`
	Contact string `xml:",chardata"`
}

type xmlDomainAddRem struct {
	HostObjs []string        `xml:"ns>hostObj,omitempty"`
	Contacts []xmlContactRef `xml:"contact,omitempty"`
	Statuses []xmlStatus     `xml:"status,omitempty"`
}

type xmlDomainUpdate struct {
	XMLName xml.Name         `xml:"urn:ietf:params:xml:ns:domain-1.0 update"`
	Name    string           `xml:"name"`
	Add     *xmlDomainAddRem `xml:"add,omitempty"`
	Rem     *xmlDomainAddRem `xml:"rem,omitempty"`
	Chg     *xmlDomainChg    `xml:"chg,omitempty"`
}

type xmlDomainChg struct {
	Registrant string `xml:"registrant,omitempty"`
}

type xmlPostalInfo struct {
	Type   string   `xml:"type,attr"`
	Name   string   `xml:"name"`
	Org    string   `xml:"org,omitempty"`
	Street []string `xml:"addr>street,omitempty"`
	City   string   `xml:"addr>city"`
	SP     string   `xml:"addr>sp,omitempty"`
	PC     string   `xml:"addr>pc,omitempty"`
	CC     string   `xml:"addr>cc"`
}

type xmlDisclose struct {
	Flag  string    `xml:"flag,attr"`
	Email *struct{} `xml:"email,omitempty"`
	Voice *struct{} `xml:"voice,omitempty"`
	Addr  *struct{} `xml:"addr,omitempty"`
}

type xmlContactCreate struct {
	XMLName    xml.Name      `xml:"urn:ietf:params:xml:ns:contact-1.0 create"`
	ID         string        `xml:"id"`
	PostalInfo xmlPostalInfo `xml:"postalInfo"`
	Voice      string        `xml:"voice,omitempty"`
	Fax        string        `xml:"fax,omitempty"`
	Email      string        `xml:"email"`
	AuthInfo   string        `xml:"authInfo>pw"`
	Disclose   *xmlDisclose  `xml:"disclose,omitempty"`
}

type xmlContactChg struct {
	PostalInfo xmlPostalInfo `xml:"postalInfo"`
	Voice      string        `xml:"voice,omitempty"`
	Fax        string        `xml:"fax,omitempty"`
	Email      string        `xml:"email"`
	AuthInfo   string        `xml:"authInfo>pw,omitempty"`
	Disclose   *xmlDisclose  `xml:"disclose,omitempty"`
}

type xmlContactUpdate struct {
	XMLName xml.Name      `xml:"urn:ietf:params:xml:ns:contact-1.0 update"`
	ID      string        `xml:"id"`
	Chg     xmlContactChg `xml:"chg"`
}

type xmlContactInfo struct {
	XMLName xml.Name `xml:"urn:ietf:params:xml:ns:contact-1.0 info"`
	ID      string   `xml:"id"`
}

type xmlContactDelete struct {
	XMLName xml.Name `xml:"urn:ietf:params:xml:ns:contact-1.0 delete"`
	ID      string   `xml:"id"`
}

type xmlHostAddr struct {
	Version string `xml:"ip,attr,omitempty"`
	Address string `xml:",chardata"`
}

type xmlHostCreate struct {
	XMLName xml.Name      `xml:"urn:ietf:params:xml:ns:host-1.0 create"`
	Name    string        `xml:"name"`
	Addrs   []xmlHostAddr `xml:"addr,omitempty"`
}

type xmlHostInfo struct {
	XMLName xml.Name `xml:"urn:ietf:params:xml:ns:host-1.0 info"`
	Name    string   `xml:"name"`
}

type xmlHostDelete struct {
	XMLName xml.Name `xml:"urn:ietf:params:xml:ns:host-1.0 delete"`
	Name    string   `xml:"name"`
}

type xmlHostAddRem struct {
	Addrs []xmlHostAddr `xml:"addr,omitempty"`
}

type xmlHostUpdate struct {
	XMLName xml.Name       `xml:"urn:ietf:params:xml:ns:host-1.0 update"`
	Name    string         `xml:"name"`
	Add     *xmlHostAddRem `xml:"add,omitempty"`
	Rem     *xmlHostAddRem `xml:"rem,omitempty"`
}

// marshalCommand renders a typed command into a full epp envelope.
func marshalCommand(cmd Command, clTRID string) ([]byte, error) {
	c := &xmlCommand{ClTRID: clTRID}
	switch v := cmd.(type) {
	case InfoDomain:
		c.Info = &xmlObjHolder{Domain: xmlDomainInfo{Name: v.Name}}
	case CheckDomain:
		c.Check = &xmlObjHolder{Domain: xmlDomainCheck{Names: v.Names}}
	case CreateDomain:
		create := xmlDomainCreate{Name: v.Name, Registrant: v.Registrant, AuthInfo: v.AuthInfo}
		if v.Period != nil {
			create.Period = &xmlPeriod{Unit: v.Period.Unit, Value: v.Period.Length}
		}
		c.Create = &xmlObjHolder{Domain: create}
	case DeleteDomain:
		c.Delete = &xmlObjHolder{Domain: xmlDomainDelete{Name: v.Name}}
	case RenewDomain:
		c.Renew = &xmlObjHolder{Domain: xmlDomainRenew{
			Name:       v.Name,
			CurExpDate: v.CurExpDate.Format(eppDateLayout),
			Period:     xmlPeriod{Unit: v.Period.Unit, Value: v.Period.Length},
		}}
	case UpdateDomain:
		update := xmlDomainUpdate{Name: v.Name}
		if add := toAddRem(v.AddHosts, v.AddContacts, v.AddStatuses); add != nil {
			update.Add = add
		}
		if rem := toAddRem(v.RemHosts, v.RemContacts, v.RemStatuses); rem != nil {
			update.Rem = rem
		}
		if v.Registrant != "" {
			update.Chg = &xmlDomainChg{Registrant: v.Registrant}
		}
		c.Update = &xmlObjHolder{Domain: update}
		if v.SecDNS != nil {
			c.Extension = &xmlExtension{SecDNSUpdate: toSecDNSUpdate(v.SecDNS)}
		}
	case InfoContact:
		c.Info = &xmlObjHolder{Contact: xmlContactInfo{ID: v.ID}}
	case CreateContact:
		c.Create = &xmlObjHolder{Contact: xmlContactCreate{
			ID:         v.ID,
			PostalInfo: toPostalInfo(v.PostalInfo),
			Voice:      v.Voice,
			Fax:        v.Fax,
			Email:      v.Email,
			AuthInfo:   v.AuthInfo,
			Disclose:   toDisclose(v.Disclose),
		}}
	case UpdateContact:
		c.Update = &xmlObjHolder{Contact: xmlContactUpdate{
			ID: v.ID,
			Chg: xmlContactChg{
				PostalInfo: toPostalInfo(v.PostalInfo),
				Voice:      v.Voice,
				Fax:        v.Fax,
				Email:      v.Email,
				AuthInfo:   v.AuthInfo,
				Disclose:   toDisclose(v.Disclose),
			},
		}}
	case DeleteContact:
		c.Delete = &xmlObjHolder{Contact: xmlContactDelete{ID: v.ID}}
	case InfoHost:
		c.Info = &xmlObjHolder{Host: xmlHostInfo{Name: v.Name}}
	case CreateHost:
		c.Create = &xmlObjHolder{Host: xmlHostCreate{Name: v.Name, Addrs: toHostAddrs(v.Addrs)}}
	case UpdateHost:
		update := xmlHostUpdate{Name: v.Name}
		if len(v.AddAddrs) > 0 {
			update.Add = &xmlHostAddRem{Addrs: toHostAddrs(v.AddAddrs)}
		}
		if len(v.RemAddrs) > 0 {
			update.Rem = &xmlHostAddRem{Addrs: toHostAddrs(v.RemAddrs)}
		}
		c.Update = &xmlObjHolder{Host: update}
	case DeleteHost:
		c.Delete = &xmlObjHolder{Host: xmlHostDelete{Name: v.Name}}
	default:
		return nil, fmt.Errorf("unsupported command type %T", cmd)
	}
	return xml.Marshal(xmlEPP{NS: nsEPP, Command: c})
}

func toAddRem(hosts *HostObjSet, contacts []ContactRef, statuses []Status) *xmlDomainAddRem {
	if hosts == nil && len(contacts) == 0 && len(statuses) == 0 {
		return nil
	}
	out := &xmlDomainAddRem{}
	if hosts != nil {
		out.HostObjs = hosts.Hosts
	}
	for _, c := range contacts {
		out.Contacts = append(out.Contacts, xmlContactRef{Type: string(c.Type), Contact: c.Contact})
	}
	for _, s := range statuses {
		out.Statuses = append(out.Statuses, xmlStatus{State: s.State})
	}
	return out
}

func toSecDNSUpdate(u *SecDNSUpdate) *xmlSecDNSUpdate {
	out := &xmlSecDNSUpdate{}
	if u.RemAll {
		out.Rem = &xmlSecDNSRem{All: "true"}
	} else if len(u.Rem) > 0 {
		out.Rem = &xmlSecDNSRem{DsData: toXMLDsData(u.Rem)}
	}
	if len(u.Add) > 0 {
		out.Add = &xmlSecDNSAdd{DsData: toXMLDsData(u.Add)}
	}
	return out
}

func toXMLDsData(records []DsData) []xmlDsData {
	out := make([]xmlDsData, 0, len(records))
	for _, r := range records {
		out = append(out, xmlDsData(r))
	}
	return out
}

func toPostalInfo(p PostalInfo) xmlPostalInfo {
	return xmlPostalInfo{
		Type:   "loc",
		Name:   p.Name,
		Org:    p.Org,
		Street: p.Street,
		City:   p.City,
		SP:     p.SP,
		PC:     p.PC,
		CC:     p.CC,
	}
}

func toDisclose(d *Disclose) *xmlDisclose {
	if d == nil {
		return nil
	}
	out := &xmlDisclose{Flag: "0"}
	if d.Flag {
		out.Flag = "1"
	}
	present := &struct{}{}
	for _, f := range d.Fields {
		switch f {
		case DiscloseEmail:
			out.Email = present
		case DiscloseVoice:
			out.Voice = present
		case DiscloseAddr:
			out.Addr = present
		}
	}
	return out
}

func toHostAddrs(addrs []IP) []xmlHostAddr {
	out := make([]xmlHostAddr, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, xmlHostAddr{Version: a.Version, Address: a.Address})
	}
	return out
}

// --- response parsing --------------------------------------------------------

type xmlResponseEnvelope struct {
	XMLName  xml.Name `xml:"epp"`
	Greeting *struct {
		SvID string `xml:"svID"`
	} `xml:"greeting"`
	Response *xmlResponse `xml:"response"`
}

type xmlResponse struct {
	Result struct {
		Code int    `xml:"code,attr"`
		Msg  string `xml:"msg"`
	} `xml:"result"`
	ResData   xmlResData `xml:"resData"`
	Extension struct {
		SecDNSInfo *struct {
			DsData []xmlDsData `xml:"dsData"`
		} `xml:"urn:ietf:params:xml:ns:secDNS-1.1 infData"`
	} `xml:"extension"`
}

// xmlResData captures every object mapping's infData/creData/chkData; the
// mappings share element names, so fields are matched by namespace. Only the
// ones matching the issued command are populated.
type xmlResData struct {
	DomainInf *struct {
		Name       string          `xml:"name"`
		Roid       string          `xml:"roid"`
		Statuses   []xmlStatus     `xml:"status"`
		Registrant string          `xml:"registrant"`
		Contacts   []xmlContactRef `xml:"contact"`
		Hosts      []string        `xml:"ns>hostObj"`
		ClID       string          `xml:"clID"`
		CrDate     string          `xml:"crDate"`
		ExDate     string          `xml:"exDate"`
	} `xml:"urn:ietf:params:xml:ns:domain-1.0 infData"`
	DomainCre *struct {
		Name   string `xml:"name"`
		CrDate string `xml:"crDate"`
		ExDate string `xml:"exDate"`
	} `xml:"urn:ietf:params:xml:ns:domain-1.0 creData"`
	DomainRen *struct {
		Name   string `xml:"name"`
		ExDate string `xml:"exDate"`
	} `xml:"urn:ietf:params:xml:ns:domain-1.0 renData"`
	DomainChk *struct {
		CDs []struct {
			Name struct {
				Avail string `xml:"avail,attr"`
				Value string `xml:",chardata"`
			} `xml:"name"`
			Reason string `xml:"reason"`
		} `xml:"cd"`
	} `xml:"urn:ietf:params:xml:ns:domain-1.0 chkData"`
	ContactInf *struct {
		ID       string      `xml:"id"`
		Roid     string      `xml:"roid"`
		Statuses []xmlStatus `xml:"status"`
		Postal   struct {
			Name   string   `xml:"name"`
			Org    string   `xml:"org"`
			Street []string `xml:"addr>street"`
			City   string   `xml:"addr>city"`
			SP     string   `xml:"addr>sp"`
			PC     string   `xml:"addr>pc"`
			CC     string   `xml:"addr>cc"`
		} `xml:"postalInfo"`
		Voice string `xml:"voice"`
		Fax   string `xml:"fax"`
		Email string `xml:"email"`
	} `xml:"urn:ietf:params:xml:ns:contact-1.0 infData"`
	HostInf *struct {
		Name     string        `xml:"name"`
		Roid     string        `xml:"roid"`
		Statuses []xmlStatus   `xml:"status"`
		Addrs    []xmlHostAddr `xml:"addr"`
	} `xml:"urn:ietf:params:xml:ns:host-1.0 infData"`
}

// parseResponse converts raw response XML into a typed Response or a
// *RegistryError for non-success result codes.
func parseResponse(cmd Command, raw []byte) (*Response, error) {
	var envelope xmlResponseEnvelope
	if err := xml.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("parse epp response: %w", err)
	}
	if envelope.Response == nil {
		return nil, fmt.Errorf("epp response missing response element")
	}
	res := envelope.Response
	code := ErrorCode(res.Result.Code)
	if !code.IsSuccess() {
		return nil, &RegistryError{Code: code, Note: res.Result.Msg}
	}
	out := &Response{Code: code, Msg: res.Result.Msg}

	switch cmd.(type) {
	case InfoDomain:
		if inf := res.ResData.DomainInf; inf != nil {
			data := InfoDomainData{
				Name:       inf.Name,
				Roid:       inf.Roid,
				Registrant: inf.Registrant,
				Hosts:      inf.Hosts,
				ClID:       inf.ClID,
				CrDate:     parseEppTime(inf.CrDate),
				ExDate:     parseEppTime(inf.ExDate),
			}
			for _, s := range inf.Statuses {
				data.Statuses = append(data.Statuses, Status{State: s.State})
			}
			for _, c := range inf.Contacts {
				data.Contacts = append(data.Contacts, ContactRef{Contact: strings.TrimSpace(c.Contact), Type: ContactType(c.Type)})
			}
			out.ResData = append(out.ResData, data)
		}
		if sec := res.Extension.SecDNSInfo; sec != nil {
			ext := SecDNSData{}
			for _, d := range sec.DsData {
				ext.DsData = append(ext.DsData, DsData(d))
			}
			out.Extensions = append(out.Extensions, ext)
		}
	case CreateDomain:
		if cre := res.ResData.DomainCre; cre != nil {
			out.ResData = append(out.ResData, CreateDomainData{
				Name:   cre.Name,
				CrDate: parseEppTime(cre.CrDate),
				ExDate: parseEppTime(cre.ExDate),
			})
		}
	case RenewDomain:
		if ren := res.ResData.DomainRen; ren != nil {
			out.ResData = append(out.ResData, RenewDomainData{
				Name:   ren.Name,
				ExDate: parseEppTime(ren.ExDate),
			})
		}
	case InfoContact:
		if inf := res.ResData.ContactInf; inf != nil {
			data := InfoContactData{
				ID:    inf.ID,
				Roid:  inf.Roid,
				Email: inf.Email,
				Voice: inf.Voice,
				Fax:   inf.Fax,
				PostalInfo: PostalInfo{
					Name:   inf.Postal.Name,
					Org:    inf.Postal.Org,
					Street: inf.Postal.Street,
					City:   inf.Postal.City,
					SP:     inf.Postal.SP,
					PC:     inf.Postal.PC,
					CC:     inf.Postal.CC,
				},
			}
			for _, s := range inf.Statuses {
				data.Statuses = append(data.Statuses, Status{State: s.State})
			}
			out.ResData = append(out.ResData, data)
		}
	case InfoHost:
		if inf := res.ResData.HostInf; inf != nil {
			data := InfoHostData{Name: inf.Name, Roid: inf.Roid}
			for _, s := range inf.Statuses {
				data.Statuses = append(data.Statuses, Status{State: s.State})
			}
			for _, a := range inf.Addrs {
				data.Addrs = append(data.Addrs, IP{Address: a.Address, Version: a.Version})
			}
			out.ResData = append(out.ResData, data)
		}
	case CheckDomain:
		if chk := res.ResData.DomainChk; chk != nil {
			for _, cd := range chk.CDs {
				out.ResData = append(out.ResData, CheckDomainData{
					Name:   cd.Name.Value,
					Avail:  cd.Name.Avail == "1" || cd.Name.Avail == "true",
					Reason: cd.Reason,
				})
			}
		}
	}
	return out, nil
}

// parseEppTime accepts both date-only and full timestamp forms used by
// registries.
func parseEppTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, eppDateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
