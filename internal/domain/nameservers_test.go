package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "registrar/pkg/domain"
)

func mustName(t *testing.T, s string) id.DomainName {
	t.Helper()
	name, err := id.ParseDomainName(s)
	require.NoError(t, err)
	return name
}

func TestValidateNameservers(t *testing.T) {
	name := mustName(t, "igorville.gov")

	tests := []struct {
		desc     string
		hosts    []Nameserver
		wantCode NameserverErrorCode
	}{
		{
			desc:     "one host is too few",
			hosts:    []Nameserver{{Host: "ns1.igorville.gov", IPs: []string{"177.0.0.1"}}},
			wantCode: NameserverTooFewHosts,
		},
		{
			desc:     "empty set is too few",
			hosts:    nil,
			wantCode: NameserverTooFewHosts,
		},
		{
			desc: "duplicate host is rejected after normalization",
			hosts: []Nameserver{
				{Host: "ns1.example.com"},
				{Host: "NS1.example.com."},
			},
			wantCode: NameserverDuplicateHost,
		},
		{
			desc: "in-domain host requires glue",
			hosts: []Nameserver{
				{Host: "ns1.igorville.gov"},
				{Host: "ns2.example.com"},
			},
			wantCode: NameserverMissingIP,
		},
		{
			desc: "out-of-domain host must not carry glue",
			hosts: []Nameserver{
				{Host: "ns1.example.com", IPs: []string{"177.0.0.1"}},
				{Host: "ns2.example.com"},
			},
			wantCode: NameserverGlueRecordNotAllowed,
		},
		{
			desc: "malformed glue address is rejected",
			hosts: []Nameserver{
				{Host: "ns1.igorville.gov", IPs: []string{"not-an-ip"}},
				{Host: "ns2.example.com"},
			},
			wantCode: NameserverInvalidIP,
		},
		{
			desc: "bare label is not a host name",
			hosts: []Nameserver{
				{Host: "ns1"},
				{Host: "ns2.example.com"},
			},
			wantCode: NameserverInvalidHost,
		},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := validateNameservers(name, tc.hosts)
			var nsErr *NameserverError
			require.ErrorAs(t, err, &nsErr)
			assert.Equal(t, tc.wantCode, nsErr.Code)
		})
	}

	t.Run("valid set is normalized", func(t *testing.T) {
		cleaned, err := validateNameservers(name, []Nameserver{
			{Host: " NS1.Igorville.gov. ", IPs: []string{" 177.0.0.1 "}},
			{Host: "ns2.example.com"},
		})
		require.NoError(t, err)
		require.Len(t, cleaned, 2)
		assert.Equal(t, "ns1.igorville.gov", cleaned[0].Host)
		assert.Equal(t, []string{"177.0.0.1"}, cleaned[0].IPs)
		assert.Equal(t, "ns2.example.com", cleaned[1].Host)
	})

	t.Run("subdomain glue counts as in-domain", func(t *testing.T) {
		cleaned, err := validateNameservers(name, []Nameserver{
			{Host: "ns1.sub.igorville.gov", IPs: []string{"2001:db8::1"}},
			{Host: "ns2.example.com"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"2001:db8::1"}, cleaned[0].IPs)
	})

	t.Run("internal whitespace in an address is stripped", func(t *testing.T) {
		cleaned, err := validateNameservers(name, []Nameserver{
			{Host: "ns1.igorville.gov", IPs: []string{"177 .0.0. 1"}},
			{Host: "ns2.example.com"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"177.0.0.1"}, cleaned[0].IPs)
	})
}

func TestIPVersion(t *testing.T) {
	assert.Equal(t, "v4", ipVersion("177.0.0.1"))
	assert.Equal(t, "v6", ipVersion("2001:db8::1"))
}
