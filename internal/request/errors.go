package request

import "fmt"

// Error strings in this file are rendered verbatim in the admin UI.

const (
	msgDomainActive   = "This action is not permitted. The domain is already active."
	msgReasonRequired = "A reason is required for this status."
	msgDomainInUse    = "Cannot approve. Requested domain is already in use."
	msgDomainMissing  = "A requested domain is required before the request can be submitted."
	msgInvestigator   = "This action is not permitted. An investigator must be assigned, and must be staff."
)

// TransitionNotAllowedError reports a workflow move the transition table or a
// guard forbids. No state is mutated when it is returned.
type TransitionNotAllowedError struct {
	Event  Event
	From   Status
	Detail string
}

func (e *TransitionNotAllowedError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("The %s action is not allowed from the %s status.", e.Event, e.From)
}

// ValidationError reports missing or malformed request data caught before any
// transition runs.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ApprovalConflictError reports an approval attempt for a name that already
// has a registered domain.
type ApprovalConflictError struct {
	Domain string
}

func (e *ApprovalConflictError) Error() string { return msgDomainInUse }
