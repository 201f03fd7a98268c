package epp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodeClassification(t *testing.T) {
	assert.True(t, CommandCompletedSuccessfully.IsSuccess())
	assert.True(t, ObjectExists.IsClientError())
	assert.True(t, ObjectAssociationProhibitsOperation.IsClientError())
	assert.False(t, ObjectExists.IsServerError())
	assert.True(t, CommandFailed.IsServerError())
	assert.True(t, SessionLimitExceededServerClosing.IsSessionError())
	assert.False(t, CommandFailed.IsSessionError())
}

func TestParseRenewResponse(t *testing.T) {
	raw := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<epp xmlns="urn:ietf:params:xml:ns:epp-1.0">
  <response>
    <result code="1000"><msg>Command completed successfully</msg></result>
    <resData>
      <renData xmlns="urn:ietf:params:xml:ns:domain-1.0">
        <name>fake.gov</name>
        <exDate>2025-05-25T00:00:00Z</exDate>
      </renData>
    </resData>
  </response>
</epp>`)

	resp, err := parseResponse(RenewDomain{Name: "fake.gov"}, raw)
	require.NoError(t, err)
	require.Len(t, resp.ResData, 1)
	data, ok := resp.First().(RenewDomainData)
	require.True(t, ok)
	assert.Equal(t, "fake.gov", data.Name)
	assert.Equal(t, time.Date(2025, 5, 25, 0, 0, 0, 0, time.UTC), data.ExDate)
}

func TestParseInfoDomainWithSecDNS(t *testing.T) {
	raw := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<epp xmlns="urn:ietf:params:xml:ns:epp-1.0">
  <response>
    <result code="1000"><msg>Command completed successfully</msg></result>
    <resData>
      <infData xmlns="urn:ietf:params:xml:ns:domain-1.0">
        <name>igorville.gov</name>
        <roid>DF1234-GOV</roid>
        <status s="ok"/>
        <registrant>regContact</registrant>
        <contact type="security">secContact</contact>
        <ns><hostObj>ns1.example.com</hostObj><hostObj>ns2.example.com</hostObj></ns>
        <exDate>2026-01-02</exDate>
      </infData>
    </resData>
    <extension>
      <infData xmlns="urn:ietf:params:xml:ns:secDNS-1.1">
        <dsData>
          <keyTag>1234</keyTag><alg>3</alg><digestType>1</digestType>
          <digest>ec0bdd990b39feead889f0ba613db4adec0bdd99</digest>
        </dsData>
      </infData>
    </extension>
  </response>
</epp>`)

	resp, err := parseResponse(InfoDomain{Name: "igorville.gov"}, raw)
	require.NoError(t, err)
	data, ok := resp.First().(InfoDomainData)
	require.True(t, ok)
	assert.Equal(t, "igorville.gov", data.Name)
	assert.Equal(t, []string{"ns1.example.com", "ns2.example.com"}, data.Hosts)
	assert.Equal(t, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), data.ExDate)
	require.Len(t, data.Contacts, 1)
	assert.Equal(t, ContactTypeSecurity, data.Contacts[0].Type)

	require.Len(t, resp.Extensions, 1)
	sec, ok := resp.Extensions[0].(SecDNSData)
	require.True(t, ok)
	require.Len(t, sec.DsData, 1)
	assert.Equal(t, 1234, sec.DsData[0].KeyTag)
}

func TestParseFailureReturnsRegistryError(t *testing.T) {
	raw := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<epp xmlns="urn:ietf:params:xml:ns:epp-1.0">
  <response>
    <result code="2305"><msg>Object association prohibits operation</msg></result>
  </response>
</epp>`)

	_, err := parseResponse(DeleteHost{Name: "ns1.igorville.gov"}, raw)
	require.Error(t, err)
	var regErr *RegistryError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, ObjectAssociationProhibitsOperation, regErr.Code)
	assert.Equal(t, "Object association prohibits operation", regErr.Note)
}

func TestMarshalUpdateDomainWithSecDNS(t *testing.T) {
	cmd := UpdateDomain{
		Name:        "igorville.gov",
		AddStatuses: []Status{{State: "clientHold"}},
		SecDNS: &SecDNSUpdate{
			RemAll: true,
			Add:    []DsData{{KeyTag: 1234, Alg: 3, DigestType: 1, Digest: "ec0bdd990b39feead889f0ba613db4adec0bdd99"}},
		},
	}
	out, err := marshalCommand(cmd, "registrar-test")
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, `<status s="clientHold">`)
	assert.Contains(t, s, "igorville.gov")
	assert.Contains(t, s, "urn:ietf:params:xml:ns:secDNS-1.1")
	assert.Contains(t, s, "<keyTag>1234</keyTag>")
	assert.Contains(t, s, "registrar-test")
}

func TestContactErrorMessages(t *testing.T) {
	assert.Equal(t, "contact type is None", (&ContactError{Code: ContactTypeNone}).Error())
	assert.Equal(t, "contact id is None", (&ContactError{Code: ContactIDNone}).Error())
	assert.Equal(t, "contact id is not of valid length", (&ContactError{Code: ContactIDInvalidLength}).Error())
}
