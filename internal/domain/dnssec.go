package domain

import "registrar/internal/epp"

// DS digest types the registrar accepts (RFC 4034 registry values).
const (
	digestTypeSHA1   = 1
	digestTypeSHA256 = 2
)

const (
	sha1HexLen   = 40
	sha256HexLen = 64
)

// validateDsData enforces DS record shape before the secDNS extension is
// built: keyTag within the unsigned 16-bit range, digest hex-only, and digest
// length matching the declared digest type.
func validateDsData(records []epp.DsData) error {
	for _, r := range records {
		if r.KeyTag < 0 || r.KeyTag > 65535 {
			return &DsDataError{Code: DsInvalidKeytagSize}
		}
		if !isHex(r.Digest) {
			return &DsDataError{Code: DsInvalidDigestChars}
		}
		switch r.DigestType {
		case digestTypeSHA1:
			if len(r.Digest) != sha1HexLen {
				return &DsDataError{Code: DsInvalidDigestSha1}
			}
		case digestTypeSHA256:
			if len(r.Digest) != sha256HexLen {
				return &DsDataError{Code: DsInvalidDigestSha256}
			}
		}
	}
	return nil
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
