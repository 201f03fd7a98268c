package domain

import "fmt"

// The errors in this file are part of the public contract: their Error()
// strings are rendered verbatim in the UI (summary and inline), so the text
// must stay stable and descriptive.

// NameserverErrorCode identifies which nameserver validation rule failed.
type NameserverErrorCode int

const (
	NameserverMissingIP NameserverErrorCode = iota + 1
	NameserverMissingHost
	NameserverDuplicateHost
	NameserverGlueRecordNotAllowed
	NameserverInvalidIP
	NameserverInvalidHost
	NameserverTooFewHosts
)

// NameserverError reports a nameserver set that cannot be sent to the
// registry. Host carries the offending nameserver where applicable.
type NameserverError struct {
	Code  NameserverErrorCode
	Host  string
	Value string
}

func (e *NameserverError) Error() string {
	switch e.Code {
	case NameserverTooFewHosts:
		return "At least two name servers are required."
	case NameserverMissingIP:
		return fmt.Sprintf("Name server %s is part of this domain and requires a glue record (IP address).", e.Host)
	case NameserverGlueRecordNotAllowed:
		return fmt.Sprintf("Name server %s is outside this domain and must not have IP addresses.", e.Host)
	case NameserverInvalidIP:
		return fmt.Sprintf("Name server %s has an invalid IP address: %s.", e.Host, e.Value)
	case NameserverInvalidHost:
		return fmt.Sprintf("Name server %s is not a valid host name.", e.Host)
	case NameserverDuplicateHost:
		return fmt.Sprintf("Name server %s was entered more than once.", e.Host)
	case NameserverMissingHost:
		return fmt.Sprintf("Name server %s does not exist in the registry.", e.Host)
	default:
		return "Name server data could not be validated."
	}
}

// DsDataErrorCode identifies which DNSSEC DS record validation rule failed.
type DsDataErrorCode int

const (
	DsInvalidKeytagSize DsDataErrorCode = iota + 1
	DsInvalidDigestChars
	DsInvalidDigestSha1
	DsInvalidDigestSha256
	DsEmptyRequiresConfirmation
)

// DsDataError reports an invalid DS record set.
type DsDataError struct {
	Code DsDataErrorCode
}

func (e *DsDataError) Error() string {
	switch e.Code {
	case DsInvalidKeytagSize:
		return "Key tag must be an integer between 0 and 65535."
	case DsInvalidDigestChars:
		return "Digest must contain only hexadecimal characters."
	case DsInvalidDigestSha1:
		return "SHA-1 digest must be exactly 40 hexadecimal characters."
	case DsInvalidDigestSha256:
		return "SHA-256 digest must be exactly 64 hexadecimal characters."
	case DsEmptyRequiresConfirmation:
		return "Removing all DS records disables DNSSEC and requires confirmation."
	default:
		return "DS data could not be validated."
	}
}

// SecurityEmailErrorCode distinguishes bad data from registry unavailability.
type SecurityEmailErrorCode int

const (
	SecurityEmailBadData SecurityEmailErrorCode = iota + 1
	SecurityEmailCannotContactRegistry
)

// SecurityEmailError reports a failed security-contact email update.
type SecurityEmailError struct {
	Code SecurityEmailErrorCode
}

func (e *SecurityEmailError) Error() string {
	switch e.Code {
	case SecurityEmailBadData:
		return "Enter an email address in the required format, like name@example.com."
	case SecurityEmailCannotContactRegistry:
		return "Update failed. Cannot contact the registry."
	default:
		return "Security email could not be updated."
	}
}

// GenericErrorCode covers registry failures with no more specific taxonomy.
type GenericErrorCode int

const (
	GenericCannotContactRegistry GenericErrorCode = iota + 1
	GenericError
)

// GenericRegistryError is the catch-all user-facing registry failure.
type GenericRegistryError struct {
	Code GenericErrorCode
}

func (e *GenericRegistryError) Error() string {
	switch e.Code {
	case GenericCannotContactRegistry:
		return "Update failed. Cannot contact the registry."
	default:
		return "Value entered was wrong."
	}
}

// RenewPeriodError reports a renewal extension below the one-year minimum.
type RenewPeriodError struct {
	Years int
}

func (e *RenewPeriodError) Error() string {
	return "Renewal period must be at least one year."
}

// ActionNotAllowedError reports a domain state transition that the state
// machine forbids.
type ActionNotAllowedError struct {
	Action string
	State  State
	Detail string
}

func (e *ActionNotAllowedError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("Cannot %s a domain in state %s: %s", e.Action, e.State, e.Detail)
	}
	return fmt.Sprintf("Cannot %s a domain in state %s.", e.Action, e.State)
}
