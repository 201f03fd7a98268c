package request

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"registrar/internal/audit"
	"registrar/internal/domain"
	"registrar/internal/email"
	"registrar/internal/org"
	"registrar/internal/user"
	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
	pstrings "registrar/pkg/platform/strings"
	txcontext "registrar/pkg/platform/tx"
	"registrar/pkg/requestcontext"
)

// Service runs the request approval workflow. Every transition validates the
// table and guards first, applies the state change and its record side
// effects in one transaction, and sends any notification after commit.
// A failed notification is returned to the caller but the committed state
// change stands.
// Provisioner registers an approved domain and its security contact with the
// registry. Implemented by the domain service.
type Provisioner interface {
	Provision(ctx context.Context, d *domain.Domain, contact *domain.PublicContact) error
}

type Service struct {
	requests Store
	domains  domain.Store
	suborgs  org.SuborgStore
	agencies org.AgencyStore
	users    user.Store
	auditor  audit.Publisher
	tx       *txcontext.Runner
	registry Provisioner
	dedupe   *org.Deduplicator
	notify   *notifier
	logger   *slog.Logger
}

type ServiceConfig struct {
	Requests   Store
	Domains    domain.Store
	Suborgs    org.SuborgStore
	Agencies   org.AgencyStore
	Users      user.Store
	Sender     email.Sender
	Auditor    audit.Publisher
	Tx         *txcontext.Runner
	Registrar  Provisioner
	OpsBCC     string
	Production bool
	Logger     *slog.Logger
}

// NewService validates the transition table before serving; a malformed table
// fails construction rather than a request.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := validateTransitionTable(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		requests: cfg.Requests,
		domains:  cfg.Domains,
		suborgs:  cfg.Suborgs,
		agencies: cfg.Agencies,
		users:    cfg.Users,
		auditor:  cfg.Auditor,
		tx:       cfg.Tx,
		registry: cfg.Registrar,
		dedupe:   org.NewDeduplicator(cfg.Suborgs, cfg.Requests),
		notify: &notifier{
			sender:     cfg.Sender,
			users:      cfg.Users,
			requests:   cfg.Requests,
			opsBCC:     cfg.OpsBCC,
			production: cfg.Production,
			logger:     logger,
		},
		logger: logger,
	}, nil
}

// Create opens a new draft request for a requester.
func (s *Service) Create(ctx context.Context, requesterID id.UserID) (*DomainRequest, error) {
	req := New(requesterID)
	if err := s.requests.Save(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Get returns one request.
func (s *Service) Get(ctx context.Context, requestID id.RequestID) (*DomainRequest, error) {
	return s.requests.FindByID(ctx, requestID)
}

// ListForRequester returns a requester's requests, oldest first.
func (s *Service) ListForRequester(ctx context.Context, requesterID id.UserID) ([]*DomainRequest, error) {
	return s.requests.ListByRequester(ctx, requesterID)
}

// editableStatuses are the statuses in which the requester may change the
// request's content.
var editableStatuses = map[Status]bool{
	StatusStarted:      true,
	StatusActionNeeded: true,
	StatusWithdrawn:    true,
}

// SaveDraft persists requester edits. The derived organization type is
// resynchronized on every save.
func (s *Service) SaveDraft(ctx context.Context, req *DomainRequest) error {
	if !editableStatuses[req.Status] {
		return &TransitionNotAllowedError{From: req.Status,
			Detail: fmt.Sprintf("The request cannot be edited in the %s status.", req.Status)}
	}
	req.SyncOrganizationType()
	req.CurrentWebsites = pstrings.DedupeAndTrim(req.CurrentWebsites)
	req.AlternativeDomains = pstrings.DedupeAndTrimLower(req.AlternativeDomains)
	return s.requests.Save(ctx, req)
}

// Submit moves a request into the submitted status. A confirmation email is
// sent only on first submission from started or withdrawn; resubmitting after
// review feedback is silent.
func (s *Service) Submit(ctx context.Context, requestID id.RequestID) (*DomainRequest, error) {
	req, from, err := s.apply(ctx, requestID, EventSubmit, audit.ActionRequestSubmit,
		func(ctx context.Context, req *DomainRequest, from Status) error {
			req.LastSubmittedDate = requestcontext.Now(ctx)
			return nil
		})
	if err != nil {
		return nil, err
	}
	if from == StatusStarted || from == StatusWithdrawn {
		if err := s.notify.submissionReceived(ctx, req); err != nil {
			return req, err
		}
	}
	return req, nil
}

// InReview moves a request into review. The investigator guard applies, and a
// still-active approved domain blocks the move.
func (s *Service) InReview(ctx context.Context, requestID id.RequestID) (*DomainRequest, error) {
	req, _, err := s.apply(ctx, requestID, EventInReview, audit.ActionRequestInReview,
		func(ctx context.Context, req *DomainRequest, from Status) error {
			if from == StatusRejected {
				req.RejectionReason = ""
			}
			return s.leaveApproved(ctx, req, from)
		})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ActionNeeded asks the requester for more information. The email template
// follows the reason; custom content overrides it; reason OTHER without
// custom content sends nothing. Setting the same reason and content again
// does not re-send.
func (s *Service) ActionNeeded(ctx context.Context, requestID id.RequestID, reason ActionNeededReason, customEmail string) (*DomainRequest, error) {
	var resend bool
	req, _, err := s.apply(ctx, requestID, EventActionNeeded, audit.ActionRequestActionNeeded,
		func(ctx context.Context, req *DomainRequest, from Status) error {
			resend = req.ActionNeededReason != reason || req.ActionNeededReasonEmail != customEmail
			req.ActionNeededReason = reason
			req.ActionNeededReasonEmail = customEmail
			if from == StatusRejected {
				req.RejectionReason = ""
			}
			return s.leaveApproved(ctx, req, from)
		})
	if err != nil {
		return nil, err
	}
	if resend {
		if err := s.notify.actionNeeded(ctx, req); err != nil {
			return req, err
		}
	}
	return req, nil
}

// Approve turns the request into a registered domain record: the domain row,
// its information snapshot, the default security contact, the federal-agency
// default, and any requested suborganization are created in one transaction.
func (s *Service) Approve(ctx context.Context, requestID id.RequestID, sendEmail bool) (*DomainRequest, error) {
	req, _, err := s.apply(ctx, requestID, EventApprove, audit.ActionRequestApprove, s.approveEffects)
	if err != nil {
		return nil, err
	}
	if sendEmail {
		if err := s.notify.approved(ctx, req); err != nil {
			return req, err
		}
	}
	return req, nil
}

// Reject refuses the request for a reason; the reason drives the email body.
// An empty reason blocks the transition before any write.
func (s *Service) Reject(ctx context.Context, requestID id.RequestID, reason RejectionReason) (*DomainRequest, error) {
	req, _, err := s.applyPrepared(ctx, requestID, EventReject, audit.ActionRequestReject,
		func(req *DomainRequest) { req.RejectionReason = reason },
		func(ctx context.Context, req *DomainRequest, from Status) error {
			return s.leaveApproved(ctx, req, from)
		})
	if err != nil {
		return nil, err
	}
	if err := s.notify.rejected(ctx, req); err != nil {
		return req, err
	}
	return req, nil
}

// RejectWithPrejudice marks the request ineligible and restricts the
// requester's account. No email is sent.
func (s *Service) RejectWithPrejudice(ctx context.Context, requestID id.RequestID) (*DomainRequest, error) {
	req, _, err := s.apply(ctx, requestID, EventRejectWithPrejudice, audit.ActionRequestIneligible,
		func(ctx context.Context, req *DomainRequest, from Status) error {
			if err := s.leaveApproved(ctx, req, from); err != nil {
				return err
			}
			requester, err := s.users.FindByID(ctx, req.RequesterID)
			if err != nil {
				if errors.Is(err, sentinel.ErrNotFound) {
					return nil
				}
				return err
			}
			requester.Restrict()
			return s.users.Save(ctx, requester)
		})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Withdraw pulls the request back at the requester's initiative. No
// investigator guard applies; the requester is always notified.
func (s *Service) Withdraw(ctx context.Context, requestID id.RequestID) (*DomainRequest, error) {
	req, _, err := s.apply(ctx, requestID, EventWithdraw, audit.ActionRequestWithdraw, nil)
	if err != nil {
		return nil, err
	}
	if err := s.notify.withdrawn(ctx, req); err != nil {
		return req, err
	}
	return req, nil
}

type effect func(ctx context.Context, req *DomainRequest, from Status) error

func (s *Service) apply(ctx context.Context, requestID id.RequestID, event Event, action audit.Action, fx effect) (*DomainRequest, Status, error) {
	return s.applyPrepared(ctx, requestID, event, action, nil, fx)
}

// applyPrepared is the single transition path: load, prepare caller fields,
// resolve guard inputs, check the table and all guards, then run the effect,
// save, and record the audit event inside one transaction. Nothing is written
// when a guard refuses.
func (s *Service) applyPrepared(ctx context.Context, requestID id.RequestID, event Event, action audit.Action, prepare func(*DomainRequest), fx effect) (*DomainRequest, Status, error) {
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, "", err
	}
	if prepare != nil {
		prepare(req)
	}

	tr, err := lookupTransition(req.Status, event)
	if err != nil {
		return nil, "", err
	}
	env, err := s.guardInputs(ctx, req)
	if err != nil {
		return nil, "", err
	}
	for _, g := range tr.guards {
		if err := g(env); err != nil {
			return nil, "", err
		}
	}

	from := req.Status
	req.Status = tr.target
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if fx != nil {
			if err := fx(ctx, req, from); err != nil {
				return err
			}
		}
		if err := s.requests.Save(ctx, req); err != nil {
			return err
		}
		return s.auditor.Emit(ctx, audit.Event{
			Action:    action,
			Subject:   req.ID.String(),
			FromState: string(from),
			ToState:   string(req.Status),
		})
	})
	if err != nil {
		return nil, "", err
	}
	return req, from, nil
}

// guardInputs resolves the facts guards need: whether the assigned
// investigator is staff and whether the approved domain is active. Guards
// themselves never perform I/O.
func (s *Service) guardInputs(ctx context.Context, req *DomainRequest) (*guardEnv, error) {
	env := &guardEnv{req: req}
	if !req.InvestigatorID.IsNil() {
		investigator, err := s.users.FindByID(ctx, req.InvestigatorID)
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
		case err != nil:
			return nil, err
		default:
			env.investigatorStaff = investigator.IsStaff
		}
	}
	if !req.ApprovedDomainID.IsNil() {
		d, err := s.domains.FindByID(ctx, req.ApprovedDomainID)
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
		case err != nil:
			return nil, err
		default:
			env.domainActive = d.IsActive()
		}
	}
	return env, nil
}

// approveEffects creates everything approval owns. Runs inside the
// transition's transaction, so a failure leaves no partial records.
func (s *Service) approveEffects(ctx context.Context, req *DomainRequest, from Status) error {
	existing, err := s.domains.FindByName(ctx, req.RequestedDomain)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
	case err != nil:
		return err
	case existing.ID != req.ApprovedDomainID:
		return &ApprovalConflictError{Domain: req.RequestedDomain.String()}
	}

	if req.FederalAgencyID.IsNil() {
		agency, err := org.EnsureNonFederalAgency(ctx, s.agencies)
		if err != nil {
			return err
		}
		req.FederalAgencyID = agency.ID
	}

	if req.ApprovedDomainID.IsNil() {
		d := domain.NewDomain(req.RequestedDomain)
		if err := s.domains.Save(ctx, d); err != nil {
			return err
		}
		contact := domain.DefaultSecurityContact(d.ID)
		if err := s.domains.SaveContact(ctx, contact); err != nil {
			return err
		}
		// A registry refusal aborts the transition and rolls the new
		// records back.
		if err := s.registry.Provision(ctx, d, contact); err != nil {
			return err
		}
		req.ApprovedDomainID = d.ID
	}

	if err := s.resolveSuborganization(ctx, req); err != nil {
		return err
	}

	return s.requests.SaveInformation(ctx, NewDomainInformation(req, req.ApprovedDomainID))
}

// resolveSuborganization honors the requester's free-text suborganization
// hint at approval: reuse an existing record in the portfolio when the
// normalized name matches, otherwise create one. City and state fall back
// from the suborganization hints to the request's own values.
func (s *Service) resolveSuborganization(ctx context.Context, req *DomainRequest) error {
	if !req.SubOrganizationID.IsNil() || req.RequestedSuborganization == "" || req.PortfolioID.IsNil() {
		return nil
	}
	sub, err := s.suborgs.FindByPortfolioAndName(ctx, req.PortfolioID, req.RequestedSuborganization)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		city := req.SuborganizationCity
		if city == "" {
			city = req.City
		}
		state := req.SuborganizationStateTerritory
		if state == "" {
			state = req.StateTerritory
		}
		sub = org.NewSuborganization(req.PortfolioID, req.RequestedSuborganization, city, state)
		if err := s.suborgs.Save(ctx, sub); err != nil {
			return err
		}
		// A concurrent approval can slip a name variant past the normalized
		// lookup. Collapse duplicates and link whichever record survived.
		if _, err := s.dedupe.Deduplicate(ctx, req.PortfolioID); err != nil {
			return err
		}
		sub, err = s.suborgs.FindByPortfolioAndName(ctx, req.PortfolioID, req.RequestedSuborganization)
		if err != nil {
			return err
		}
	case err != nil:
		return err
	}
	req.SubOrganizationID = sub.ID
	return nil
}

// leaveApproved undoes approval's record side effects when a request moves
// out of the approved status. The active-domain guard has already refused the
// move when the domain serves, so by here the domain is safe to remove. A
// suborganization created just for this request is cleaned up with it.
func (s *Service) leaveApproved(ctx context.Context, req *DomainRequest, from Status) error {
	if from != StatusApproved || req.ApprovedDomainID.IsNil() {
		return nil
	}
	if err := s.requests.DeleteInformation(ctx, req.ApprovedDomainID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return err
	}
	if err := s.domains.Delete(ctx, req.ApprovedDomainID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return err
	}
	req.ApprovedDomainID = id.DomainID{}

	if req.SubOrganizationID.IsNil() {
		return nil
	}
	sub, err := s.suborgs.FindByID(ctx, req.SubOrganizationID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			req.SubOrganizationID = id.SuborgID{}
			return nil
		}
		return err
	}
	if !sub.AutoCreated {
		return nil
	}
	refs, err := s.requests.CountSuborganizationRefs(ctx, sub.ID)
	if err != nil {
		return err
	}
	if refs > 1 {
		return nil
	}
	req.SubOrganizationID = id.SuborgID{}
	if err := s.suborgs.Delete(ctx, sub.ID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return err
	}
	return nil
}
