package domain

import (
	"net/netip"
	"strings"

	"github.com/miekg/dns"

	id "registrar/pkg/domain"
)

// minNameservers is the registry's floor for a resolving domain.
const minNameservers = 2

// maxNameservers mirrors the registry-side cap on host associations.
const maxNameservers = 13

// validateNameservers enforces every local nameserver rule before any EPP
// command is constructed:
//   - at least two hosts, at most thirteen
//   - no duplicate hostnames
//   - hosts inside the domain carry at least one IP (glue record)
//   - hosts outside the domain carry none
//   - IPs are syntactically valid after internal whitespace is stripped
//
// Host existence for out-of-domain servers is a registry fact and is checked
// separately by the aggregate with InfoHost.
func validateNameservers(name id.DomainName, hosts []Nameserver) ([]Nameserver, error) {
	if len(hosts) < minNameservers {
		return nil, &NameserverError{Code: NameserverTooFewHosts}
	}
	if len(hosts) > maxNameservers {
		return nil, &NameserverError{Code: NameserverInvalidHost, Host: hosts[maxNameservers].Host}
	}

	seen := make(map[string]bool, len(hosts))
	cleaned := make([]Nameserver, 0, len(hosts))
	for _, ns := range hosts {
		host := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(ns.Host), "."))
		if host == "" {
			return nil, &NameserverError{Code: NameserverInvalidHost, Host: ns.Host}
		}
		if _, ok := dns.IsDomainName(host); !ok || !strings.Contains(host, ".") {
			return nil, &NameserverError{Code: NameserverInvalidHost, Host: host}
		}
		if seen[host] {
			return nil, &NameserverError{Code: NameserverDuplicateHost, Host: host}
		}
		seen[host] = true

		ips, err := cleanHostIPs(host, ns.IPs)
		if err != nil {
			return nil, err
		}
		if name.IsParentOf(host) {
			if len(ips) == 0 {
				return nil, &NameserverError{Code: NameserverMissingIP, Host: host}
			}
		} else if len(ips) > 0 {
			return nil, &NameserverError{Code: NameserverGlueRecordNotAllowed, Host: host}
		}
		cleaned = append(cleaned, Nameserver{Host: host, IPs: ips})
	}
	return cleaned, nil
}

// cleanHostIPs strips internal whitespace from each address, drops empties,
// and validates syntax.
func cleanHostIPs(host string, ips []string) ([]string, error) {
	out := make([]string, 0, len(ips))
	for _, raw := range ips {
		ip := strings.Join(strings.Fields(raw), "")
		if ip == "" {
			continue
		}
		if _, err := netip.ParseAddr(ip); err != nil {
			return nil, &NameserverError{Code: NameserverInvalidIP, Host: host, Value: ip}
		}
		out = append(out, ip)
	}
	return out, nil
}

// ipVersion tags an address for the host mapping's addr element.
func ipVersion(ip string) string {
	addr, err := netip.ParseAddr(ip)
	if err == nil && addr.Is6() {
		return "v6"
	}
	return "v4"
}
