package domain

import (
	"strings"

	"github.com/miekg/dns"

	dErrors "registrar/pkg/domain-errors"
)

// DomainName is a registerable .gov name, stored lowercase without a trailing
// dot. Invariant: two labels minimum, last label "gov", each label 1-63
// characters of letters, digits, and interior hyphens.
//
// Usage: construct via ParseDomainName at trust boundaries; direct casting
// bypasses validation.
type DomainName string

// ParseDomainName constructs a DomainName from external input.
//
// Errors: returns CodeInvalidInput when the value is empty, not under .gov,
// or violates label syntax; no other errors are expected.
func ParseDomainName(s string) (DomainName, error) {
	name := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(s), "."))
	if name == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "domain name cannot be empty")
	}
	if _, ok := dns.IsDomainName(name); !ok {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid domain name: "+name)
	}
	labels := dns.SplitDomainName(name)
	if len(labels) < 2 || labels[len(labels)-1] != "gov" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "domain name must end in .gov: "+name)
	}
	for _, label := range labels {
		if !validLabel(label) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "invalid domain label: "+label)
		}
	}
	return DomainName(name), nil
}

func validLabel(label string) bool {
	if len(label) == 0 || len(label) > 63 {
		return false
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for i := 0; i < len(label); i++ {
		c := label[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-':
		default:
			return false
		}
	}
	return true
}

func (d DomainName) String() string { return string(d) }

// FQDN returns the name with a trailing dot, the form the registry wire
// protocol and DNS libraries expect.
func (d DomainName) FQDN() string { return dns.Fqdn(string(d)) }

// IsParentOf reports whether host sits strictly below this domain, e.g.
// "igorville.gov" is parent of "ns1.igorville.gov". Such hosts need glue
// records when used as nameservers.
func (d DomainName) IsParentOf(host string) bool {
	h := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(host), "."))
	if h == string(d) {
		return false
	}
	return dns.IsSubDomain(d.FQDN(), dns.Fqdn(h))
}
