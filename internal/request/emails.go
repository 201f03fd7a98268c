package request

import (
	"context"
	"errors"
	"log/slog"

	"registrar/internal/email"
	"registrar/internal/user"
	"registrar/pkg/platform/sentinel"
)

// Templates for lifecycle notices, keyed by the reason driving the notice.
var rejectionTemplates = map[RejectionReason]string{
	RejectionDomainPurpose:      "rejection_domain_purpose.txt",
	RejectionRequestor:          "rejection_requestor.txt",
	RejectionSecondDomain:       "rejection_second_domain.txt",
	RejectionOrgLegitimacy:      "rejection_org_legitimacy.txt",
	RejectionOrgEligibility:     "rejection_org_eligibility.txt",
	RejectionNamingRequirements: "rejection_naming_requirements.txt",
	RejectionOther:              "rejection_other.txt",
}

var actionNeededTemplates = map[ActionNeededReason]string{
	ActionNeededEligibilityUnclear:         "action_needed_eligibility.txt",
	ActionNeededQuestionableSeniorOfficial: "action_needed_questionable_senior_official.txt",
	ActionNeededAlreadyHasDomains:          "action_needed_already_has_domains.txt",
	ActionNeededBadName:                    "action_needed_bad_name.txt",
}

// notifier builds and sends lifecycle emails to the requester, with portfolio
// members on CC and an operations mailbox on BCC in production.
type notifier struct {
	sender     email.Sender
	users      user.Store
	requests   Store
	opsBCC     string
	production bool
	logger     *slog.Logger
}

// notify sends one lifecycle email for the request. A requester without a
// known email address is logged and skipped. Send failures propagate to the
// caller; by then the status change has already been committed.
func (n *notifier) notify(ctx context.Context, req *DomainRequest, bodyTemplate, subjectTemplate string, extra map[string]any) error {
	requester, err := n.users.FindByID(ctx, req.RequesterID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			n.logger.Warn("requester has no account, skipping notification",
				"request_id", req.ID, "template", bodyTemplate)
			return nil
		}
		return err
	}
	if requester.Email == "" {
		n.logger.Warn("requester has no email address, skipping notification",
			"request_id", req.ID, "template", bodyTemplate)
		return nil
	}

	msg := email.Message{
		BodyTemplate:    bodyTemplate,
		SubjectTemplate: subjectTemplate,
		To:              requester.Email,
		Context: map[string]any{
			"RequesterName":    requester.FullName(),
			"DomainName":       req.RequestedDomain.String(),
			"OrganizationName": req.OrganizationName,
		},
	}
	for k, v := range extra {
		msg.Context[k] = v
	}

	if !req.PortfolioID.IsNil() {
		cc, err := n.requests.PortfolioCCAddresses(ctx, req.PortfolioID)
		if err != nil {
			return err
		}
		for _, addr := range cc {
			if addr != requester.Email {
				msg.CC = append(msg.CC, addr)
			}
		}
	}
	if n.production {
		msg.BCC = n.opsBCC
	}
	return n.sender.Send(ctx, msg)
}

func (n *notifier) submissionReceived(ctx context.Context, req *DomainRequest) error {
	return n.notify(ctx, req, "submission_received.txt", "submission_received_subject.txt", nil)
}

func (n *notifier) approved(ctx context.Context, req *DomainRequest) error {
	return n.notify(ctx, req, "request_approved.txt", "request_approved_subject.txt", nil)
}

func (n *notifier) withdrawn(ctx context.Context, req *DomainRequest) error {
	return n.notify(ctx, req, "request_withdrawn.txt", "request_withdrawn_subject.txt", nil)
}

func (n *notifier) rejected(ctx context.Context, req *DomainRequest) error {
	tmpl, ok := rejectionTemplates[req.RejectionReason]
	if !ok {
		n.logger.Warn("no template for rejection reason, skipping notification",
			"request_id", req.ID, "reason", req.RejectionReason)
		return nil
	}
	return n.notify(ctx, req, tmpl, "rejection_subject.txt", nil)
}

// actionNeeded picks between the canned per-reason template and free-form
// custom content supplied by an analyst. Reason OTHER without custom content
// sends nothing.
func (n *notifier) actionNeeded(ctx context.Context, req *DomainRequest) error {
	if req.ActionNeededReasonEmail != "" {
		return n.notify(ctx, req, "custom_content.txt", "action_needed_subject.txt",
			map[string]any{"Content": req.ActionNeededReasonEmail})
	}
	tmpl, ok := actionNeededTemplates[req.ActionNeededReason]
	if !ok {
		return nil
	}
	return n.notify(ctx, req, tmpl, "action_needed_subject.txt", nil)
}
