// Package request implements the domain request approval workflow: the
// status state machine, its guards, and the side effects each transition
// carries (emails, domain creation, suborganization resolution).
package request

import (
	"time"

	id "registrar/pkg/domain"
)

// Status is the workflow state of a domain request.
type Status string

const (
	StatusStarted      Status = "started"
	StatusSubmitted    Status = "submitted"
	StatusInReview     Status = "in review"
	StatusActionNeeded Status = "action needed"
	StatusApproved     Status = "approved"
	StatusWithdrawn    Status = "withdrawn"
	StatusRejected     Status = "rejected"
	StatusIneligible   Status = "ineligible"
)

// RejectionReason drives the rejection email body.
type RejectionReason string

const (
	RejectionDomainPurpose      RejectionReason = "purpose_not_met"
	RejectionRequestor          RejectionReason = "requestor_not_eligible"
	RejectionSecondDomain       RejectionReason = "second_domain_reasoning"
	RejectionOrgLegitimacy      RejectionReason = "contacts_or_organization_legitimacy"
	RejectionOrgEligibility     RejectionReason = "organization_eligibility"
	RejectionNamingRequirements RejectionReason = "naming_not_met"
	RejectionOther              RejectionReason = "other"
)

// ActionNeededReason drives the action-needed email body.
type ActionNeededReason string

const (
	ActionNeededEligibilityUnclear         ActionNeededReason = "eligibility_unclear"
	ActionNeededQuestionableSeniorOfficial ActionNeededReason = "questionable_senior_official"
	ActionNeededAlreadyHasDomains          ActionNeededReason = "already_has_domains"
	ActionNeededBadName                    ActionNeededReason = "bad_name"
	ActionNeededOther                      ActionNeededReason = "other"
)

// GenericOrgType is the organization category the requester picked.
type GenericOrgType string

const (
	OrgTypeFederal          GenericOrgType = "federal"
	OrgTypeInterstate       GenericOrgType = "interstate"
	OrgTypeStateOrTerritory GenericOrgType = "state_or_territory"
	OrgTypeTribal           GenericOrgType = "tribal"
	OrgTypeCounty           GenericOrgType = "county"
	OrgTypeCity             GenericOrgType = "city"
	OrgTypeSpecialDistrict  GenericOrgType = "special_district"
	OrgTypeSchoolDistrict   GenericOrgType = "school_district"
)

// electionCapable lists the org types that can run an election office.
var electionCapable = map[GenericOrgType]bool{
	OrgTypeStateOrTerritory: true,
	OrgTypeTribal:           true,
	OrgTypeCounty:           true,
	OrgTypeCity:             true,
	OrgTypeSpecialDistrict:  true,
}

// Contact is a non-account person attached to a request.
type Contact struct {
	Name  string
	Email string
	Phone string
}

// DomainRequest is one application for a .gov domain.
type DomainRequest struct {
	ID     id.RequestID
	Status Status

	// RequestedDomain is empty until the requester names a domain; submit
	// refuses an empty name.
	RequestedDomain id.DomainName

	GenericOrgType GenericOrgType
	// OrganizationType is derived from GenericOrgType and IsElectionBoard;
	// use SyncOrganizationType after changing either.
	OrganizationType string
	IsElectionBoard  *bool
	FederalType      string

	FederalAgencyID   id.AgencyID
	PortfolioID       id.PortfolioID
	SubOrganizationID id.SuborgID

	RequesterID    id.UserID
	InvestigatorID id.UserID

	OrganizationName string
	City             string
	StateTerritory   string
	SeniorOfficial   Contact
	OtherContacts    []Contact

	CurrentWebsites    []string
	AlternativeDomains []string
	Purpose            string

	RejectionReason         RejectionReason
	ActionNeededReason      ActionNeededReason
	ActionNeededReasonEmail string

	ApprovedDomainID  id.DomainID
	LastSubmittedDate time.Time

	// Free-text hints for suborganization creation at approval.
	RequestedSuborganization      string
	SuborganizationCity           string
	SuborganizationStateTerritory string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates a request in the started status for a requester.
func New(requesterID id.UserID) *DomainRequest {
	return &DomainRequest{
		ID:          id.NewRequestID(),
		Status:      StatusStarted,
		RequesterID: requesterID,
	}
}

// SyncOrganizationType recomputes the derived organization type. Org types
// that cannot run an election office force IsElectionBoard to nil.
func (r *DomainRequest) SyncOrganizationType() {
	if r.GenericOrgType == "" {
		r.OrganizationType = ""
		return
	}
	if !electionCapable[r.GenericOrgType] {
		r.IsElectionBoard = nil
	}
	if r.IsElectionBoard != nil && *r.IsElectionBoard {
		r.OrganizationType = string(r.GenericOrgType) + "_election"
		return
	}
	r.OrganizationType = string(r.GenericOrgType)
}

// HasRequestedDomain reports whether the requester has named a domain.
func (r *DomainRequest) HasRequestedDomain() bool {
	return r.RequestedDomain != ""
}

// DomainInformation is the snapshot of request data attached one-to-one to an
// approved domain. It has the request's shape minus the workflow fields.
type DomainInformation struct {
	DomainID  id.DomainID
	RequestID id.RequestID

	GenericOrgType   GenericOrgType
	OrganizationType string
	IsElectionBoard  *bool
	FederalType      string

	FederalAgencyID   id.AgencyID
	PortfolioID       id.PortfolioID
	SubOrganizationID id.SuborgID

	OrganizationName string
	City             string
	StateTerritory   string
	SeniorOfficial   Contact

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewDomainInformation snapshots a request for its newly created domain.
func NewDomainInformation(req *DomainRequest, domainID id.DomainID) *DomainInformation {
	return &DomainInformation{
		DomainID:          domainID,
		RequestID:         req.ID,
		GenericOrgType:    req.GenericOrgType,
		OrganizationType:  req.OrganizationType,
		IsElectionBoard:   req.IsElectionBoard,
		FederalType:       req.FederalType,
		FederalAgencyID:   req.FederalAgencyID,
		PortfolioID:       req.PortfolioID,
		SubOrganizationID: req.SubOrganizationID,
		OrganizationName:  req.OrganizationName,
		City:              req.City,
		StateTerritory:    req.StateTerritory,
		SeniorOfficial:    req.SeniorOfficial,
	}
}
