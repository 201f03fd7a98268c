// Package epp is the wire bridge to the authoritative .gov registry. It
// marshals typed commands to EPP (RFC 5730-5734) XML, frames them over TLS,
// and parses typed responses back. It performs no business validation beyond
// what the registry enforces; the domain aggregate validates before a command
// is constructed.
package epp

// ErrorCode is the four-digit EPP result code carried on every registry
// response (RFC 5730 section 3).
type ErrorCode int

const (
	CommandCompletedSuccessfully              ErrorCode = 1000
	CommandCompletedSuccessfullyActionPending ErrorCode = 1001
	CommandCompletedSuccessfullyNoMessages    ErrorCode = 1300
	CommandCompletedSuccessfullyAckToDequeue  ErrorCode = 1301
	CommandCompletedSuccessfullyEndingSession ErrorCode = 1500

	UnknownCommand                       ErrorCode = 2000
	CommandSyntaxError                   ErrorCode = 2001
	CommandUseError                      ErrorCode = 2002
	RequiredParameterMissing             ErrorCode = 2003
	ParameterValueRangeError             ErrorCode = 2004
	ParameterValueSyntaxError            ErrorCode = 2005
	UnimplementedProtocolVersion         ErrorCode = 2100
	UnimplementedCommand                 ErrorCode = 2101
	UnimplementedOption                  ErrorCode = 2102
	UnimplementedExtension               ErrorCode = 2103
	BillingFailure                       ErrorCode = 2104
	ObjectIsNotEligibleForRenewal        ErrorCode = 2105
	ObjectIsNotEligibleForTransfer       ErrorCode = 2106
	AuthenticationError                  ErrorCode = 2200
	AuthorizationError                   ErrorCode = 2201
	InvalidAuthorizationInformation      ErrorCode = 2202
	ObjectPendingTransfer                ErrorCode = 2300
	ObjectNotPendingTransfer             ErrorCode = 2301
	ObjectExists                         ErrorCode = 2302
	ObjectDoesNotExist                   ErrorCode = 2303
	ObjectStatusProhibitsOperation       ErrorCode = 2304
	ObjectAssociationProhibitsOperation  ErrorCode = 2305
	ParameterValuePolicyError            ErrorCode = 2306
	UnimplementedObjectService           ErrorCode = 2307
	DataManagementPolicyViolation        ErrorCode = 2308
	CommandFailed                        ErrorCode = 2400
	CommandFailedServerClosingConnection ErrorCode = 2500
	AuthenticationErrorServerClosing     ErrorCode = 2501
	SessionLimitExceededServerClosing    ErrorCode = 2502
)

// IsSuccess reports whether the code is in the 1xxx success range.
func (c ErrorCode) IsSuccess() bool {
	return c >= 1000 && c < 2000
}

// IsClientError reports whether the registry blamed the command itself
// (2000-2308): resending the same command will fail again.
func (c ErrorCode) IsClientError() bool {
	return c >= 2000 && c <= 2308
}

// IsServerError reports whether the failure is registry-side (2400+).
func (c ErrorCode) IsServerError() bool {
	return c >= 2400
}

// IsSessionError reports whether the registry is closing the session; the
// transport must reconnect before issuing further commands.
func (c ErrorCode) IsSessionError() bool {
	return c >= 2500 && c <= 2502
}
