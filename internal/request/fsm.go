package request

import (
	"fmt"
)

// Event is one workflow action a caller can trigger.
type Event string

const (
	EventSubmit              Event = "submit"
	EventInReview            Event = "in_review"
	EventActionNeeded        Event = "action_needed"
	EventApprove             Event = "approve"
	EventReject              Event = "reject"
	EventRejectWithPrejudice Event = "reject_with_prejudice"
	EventWithdraw            Event = "withdraw"
)

// guardEnv is what guards may inspect. The service resolves the investigator
// and the approved domain's activity before running guards, so guards stay
// pure checks with no I/O.
type guardEnv struct {
	req               *DomainRequest
	investigatorStaff bool
	domainActive      bool
}

// guard returns nil to allow the transition. Guards run before any write.
type guard func(env *guardEnv) error

// transition is one row of the workflow table.
type transition struct {
	target Status
	guards []guard
}

type transitionKey struct {
	from  Status
	event Event
}

// transitionTable is the single source of truth for the request workflow.
// Every legal (status, event) pair appears here; anything else is refused
// with TransitionNotAllowedError.
var transitionTable = map[transitionKey]transition{
	{StatusStarted, EventSubmit}:      {target: StatusSubmitted, guards: []guard{guardRequestedDomain}},
	{StatusWithdrawn, EventSubmit}:    {target: StatusSubmitted, guards: []guard{guardRequestedDomain}},
	{StatusInReview, EventSubmit}:     {target: StatusSubmitted, guards: []guard{guardRequestedDomain}},
	{StatusActionNeeded, EventSubmit}: {target: StatusSubmitted, guards: []guard{guardRequestedDomain}},

	{StatusSubmitted, EventInReview}:    {target: StatusInReview, guards: []guard{guardInvestigatorStaff}},
	{StatusActionNeeded, EventInReview}: {target: StatusInReview, guards: []guard{guardInvestigatorStaff}},
	{StatusApproved, EventInReview}:     {target: StatusInReview, guards: []guard{guardInvestigatorStaff, guardDomainNotActive}},
	{StatusRejected, EventInReview}:     {target: StatusInReview, guards: []guard{guardInvestigatorStaff}},
	{StatusIneligible, EventInReview}:   {target: StatusInReview, guards: []guard{guardInvestigatorStaff}},

	{StatusInReview, EventActionNeeded}:   {target: StatusActionNeeded, guards: []guard{guardInvestigatorStaff}},
	{StatusApproved, EventActionNeeded}:   {target: StatusActionNeeded, guards: []guard{guardInvestigatorStaff, guardDomainNotActive}},
	{StatusRejected, EventActionNeeded}:   {target: StatusActionNeeded, guards: []guard{guardInvestigatorStaff}},
	{StatusIneligible, EventActionNeeded}: {target: StatusActionNeeded, guards: []guard{guardInvestigatorStaff}},

	{StatusSubmitted, EventApprove}:    {target: StatusApproved, guards: []guard{guardInvestigatorStaff}},
	{StatusInReview, EventApprove}:     {target: StatusApproved, guards: []guard{guardInvestigatorStaff}},
	{StatusActionNeeded, EventApprove}: {target: StatusApproved, guards: []guard{guardInvestigatorStaff}},
	{StatusRejected, EventApprove}:     {target: StatusApproved, guards: []guard{guardInvestigatorStaff}},

	{StatusInReview, EventReject}:     {target: StatusRejected, guards: []guard{guardInvestigatorStaff, guardRejectionReason}},
	{StatusActionNeeded, EventReject}: {target: StatusRejected, guards: []guard{guardInvestigatorStaff, guardRejectionReason}},
	{StatusApproved, EventReject}:     {target: StatusRejected, guards: []guard{guardInvestigatorStaff, guardDomainNotActive, guardRejectionReason}},

	{StatusInReview, EventRejectWithPrejudice}:     {target: StatusIneligible, guards: []guard{guardInvestigatorStaff}},
	{StatusActionNeeded, EventRejectWithPrejudice}: {target: StatusIneligible, guards: []guard{guardInvestigatorStaff}},
	{StatusApproved, EventRejectWithPrejudice}:     {target: StatusIneligible, guards: []guard{guardInvestigatorStaff, guardDomainNotActive}},

	{StatusSubmitted, EventWithdraw}:    {target: StatusWithdrawn},
	{StatusInReview, EventWithdraw}:     {target: StatusWithdrawn},
	{StatusActionNeeded, EventWithdraw}: {target: StatusWithdrawn},
}

var knownStatuses = map[Status]bool{
	StatusStarted:      true,
	StatusSubmitted:    true,
	StatusInReview:     true,
	StatusActionNeeded: true,
	StatusApproved:     true,
	StatusWithdrawn:    true,
	StatusRejected:     true,
	StatusIneligible:   true,
}

// validateTransitionTable checks the table at service construction: every
// source and target is a known status and every row has a non-nil guard list
// entry set. A bad table is a programming error, caught before serving.
func validateTransitionTable() error {
	events := make(map[Event]bool)
	for key, tr := range transitionTable {
		if !knownStatuses[key.from] {
			return fmt.Errorf("transition table: unknown source status %q", key.from)
		}
		if !knownStatuses[tr.target] {
			return fmt.Errorf("transition table: unknown target status %q", tr.target)
		}
		for i, g := range tr.guards {
			if g == nil {
				return fmt.Errorf("transition table: nil guard %d on (%s, %s)", i, key.from, key.event)
			}
		}
		events[key.event] = true
	}
	for _, event := range []Event{EventSubmit, EventInReview, EventActionNeeded, EventApprove, EventReject, EventRejectWithPrejudice, EventWithdraw} {
		if !events[event] {
			return fmt.Errorf("transition table: event %q has no transitions", event)
		}
	}
	return nil
}

// lookupTransition resolves one (status, event) pair.
func lookupTransition(from Status, event Event) (transition, error) {
	tr, ok := transitionTable[transitionKey{from, event}]
	if !ok {
		return transition{}, &TransitionNotAllowedError{Event: event, From: from}
	}
	return tr, nil
}

func guardRequestedDomain(env *guardEnv) error {
	if !env.req.HasRequestedDomain() {
		return &ValidationError{Message: msgDomainMissing}
	}
	return nil
}

func guardInvestigatorStaff(env *guardEnv) error {
	if env.req.InvestigatorID.IsNil() || !env.investigatorStaff {
		return &TransitionNotAllowedError{From: env.req.Status, Detail: msgInvestigator}
	}
	return nil
}

func guardDomainNotActive(env *guardEnv) error {
	if env.domainActive {
		return &TransitionNotAllowedError{From: env.req.Status, Detail: msgDomainActive}
	}
	return nil
}

func guardRejectionReason(env *guardEnv) error {
	if env.req.RejectionReason == "" {
		return &ValidationError{Message: msgReasonRequired}
	}
	return nil
}
