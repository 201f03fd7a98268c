package epp

import "fmt"

// RegistryError is any registry-side rejection of a command. Code is the
// machine-readable EPP result code; Note carries the registry's message.
type RegistryError struct {
	Code ErrorCode
	Note string
}

func (e *RegistryError) Error() string {
	if e.Note == "" {
		return fmt.Sprintf("registry error %d", e.Code)
	}
	return fmt.Sprintf("registry error %d: %s", e.Code, e.Note)
}

// ContactErrorCode identifies a contact-shape validation failure raised
// before a contact command is constructed.
type ContactErrorCode int

const (
	ContactErrorUnknown ContactErrorCode = iota
	ContactTypeNone
	ContactIDNone
	ContactIDInvalidLength
	ContactInvalidType
)

// ContactError reports a malformed registry contact. Distinct from
// RegistryError: the command was never sent.
type ContactError struct {
	Code ContactErrorCode
}

func (e *ContactError) Error() string {
	switch e.Code {
	case ContactTypeNone:
		return "contact type is None"
	case ContactIDNone:
		return "contact id is None"
	case ContactIDInvalidLength:
		return "contact id is not of valid length"
	case ContactInvalidType:
		return "contact type is not a valid choice"
	default:
		return "unknown contact error"
	}
}
