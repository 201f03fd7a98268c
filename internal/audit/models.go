// Package audit records who did what to which request or domain. Events are
// written to a transactional outbox in the same transaction as the change
// they describe; a worker publishes them to Kafka afterwards.
package audit

import (
	"time"

	"github.com/google/uuid"

	id "registrar/pkg/domain"
)

// Action names the recorded operation, e.g. "request.approve" or
// "domain.place_client_hold".
type Action string

const (
	ActionRequestSubmit       Action = "request.submit"
	ActionRequestInReview     Action = "request.in_review"
	ActionRequestActionNeeded Action = "request.action_needed"
	ActionRequestApprove      Action = "request.approve"
	ActionRequestReject       Action = "request.reject"
	ActionRequestIneligible   Action = "request.reject_with_prejudice"
	ActionRequestWithdraw     Action = "request.withdraw"

	ActionDomainHold          Action = "domain.place_client_hold"
	ActionDomainReleaseHold   Action = "domain.revert_client_hold"
	ActionDomainDelete        Action = "domain.delete"
	ActionDomainRenew         Action = "domain.renew"
	ActionDomainNameservers   Action = "domain.set_nameservers"
	ActionDomainDsData        Action = "domain.set_ds_data"
	ActionDomainSecurityEmail Action = "domain.set_security_email"
)

// Event is one append-only audit record.
type Event struct {
	ID        uuid.UUID
	Action    Action
	ActorID   id.UserID
	Subject   string // request id or domain name
	FromState string
	ToState   string
	Detail    string
	ClientIP  string
	UserAgent string
	Timestamp time.Time
}
