package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"registrar/internal/domain"
	"registrar/internal/platform/metrics"
	"registrar/internal/request"
	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/platform/httputil"
	"registrar/pkg/requestcontext"
)

type requestHandler struct {
	svc          *request.Service
	availability *domain.AvailabilityChecker
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

type requestResponse struct {
	ID                 string     `json:"id"`
	Status             string     `json:"status"`
	RequestedDomain    string     `json:"requested_domain,omitempty"`
	OrganizationName   string     `json:"organization_name,omitempty"`
	RejectionReason    string     `json:"rejection_reason,omitempty"`
	ActionNeededReason string     `json:"action_needed_reason,omitempty"`
	ApprovedDomainID   string     `json:"approved_domain_id,omitempty"`
	LastSubmittedDate  *time.Time `json:"last_submitted_date,omitempty"`
}

func toRequestResponse(req *request.DomainRequest) requestResponse {
	resp := requestResponse{
		ID:                 req.ID.String(),
		Status:             string(req.Status),
		RequestedDomain:    req.RequestedDomain.String(),
		OrganizationName:   req.OrganizationName,
		RejectionReason:    string(req.RejectionReason),
		ActionNeededReason: string(req.ActionNeededReason),
	}
	if !req.ApprovedDomainID.IsNil() {
		resp.ApprovedDomainID = req.ApprovedDomainID.String()
	}
	if !req.LastSubmittedDate.IsZero() {
		t := req.LastSubmittedDate
		resp.LastSubmittedDate = &t
	}
	return resp
}

func (h *requestHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := h.svc.Create(ctx, requestcontext.UserID(ctx))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toRequestResponse(req))
}

func (h *requestHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqs, err := h.svc.ListForRequester(ctx, requestcontext.UserID(ctx))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]requestResponse, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, toRequestResponse(req))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *requestHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	req, err := h.loadOwned(r)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRequestResponse(req))
}

type draftPayload struct {
	RequestedDomain               string            `json:"requested_domain"`
	GenericOrgType                string            `json:"generic_org_type"`
	IsElectionBoard               *bool             `json:"is_election_board"`
	OrganizationName              string            `json:"organization_name"`
	City                          string            `json:"city"`
	StateTerritory                string            `json:"state_territory"`
	SeniorOfficial                request.Contact   `json:"senior_official"`
	OtherContacts                 []request.Contact `json:"other_contacts"`
	CurrentWebsites               []string          `json:"current_websites"`
	AlternativeDomains            []string          `json:"alternative_domains"`
	Purpose                       string            `json:"purpose"`
	RequestedSuborganization      string            `json:"requested_suborganization"`
	SuborganizationCity           string            `json:"suborganization_city"`
	SuborganizationStateTerritory string            `json:"suborganization_state_territory"`
}

func (h *requestHandler) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := h.loadOwned(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload draftPayload
	if err := httputil.DecodeJSON(r, &payload); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if payload.RequestedDomain != "" {
		name, err := id.ParseDomainName(payload.RequestedDomain)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		req.RequestedDomain = name
	}
	req.GenericOrgType = request.GenericOrgType(payload.GenericOrgType)
	req.IsElectionBoard = payload.IsElectionBoard
	req.OrganizationName = payload.OrganizationName
	req.City = payload.City
	req.StateTerritory = payload.StateTerritory
	req.SeniorOfficial = payload.SeniorOfficial
	req.OtherContacts = payload.OtherContacts
	req.CurrentWebsites = payload.CurrentWebsites
	req.AlternativeDomains = payload.AlternativeDomains
	req.Purpose = payload.Purpose
	req.RequestedSuborganization = payload.RequestedSuborganization
	req.SuborganizationCity = payload.SuborganizationCity
	req.SuborganizationStateTerritory = payload.SuborganizationStateTerritory

	if err := h.svc.SaveDraft(ctx, req); err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRequestResponse(req))
}

func (h *requestHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	h.applicantTransition(w, r, "submit", h.svc.Submit)
}

func (h *requestHandler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	h.applicantTransition(w, r, "withdraw", h.svc.Withdraw)
}

func (h *requestHandler) applicantTransition(w http.ResponseWriter, r *http.Request, event string, fn func(ctx context.Context, requestID id.RequestID) (*request.DomainRequest, error)) {
	ctx := r.Context()
	req, err := h.loadOwned(r)
	if err != nil {
		writeError(w, err)
		return
	}
	got, err := fn(ctx, req.ID)
	h.metrics.RecordTransition(event, err)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRequestResponse(got))
}

func (h *requestHandler) handleAvailability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name, err := id.ParseDomainName(chi.URLParam(r, "domain"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	avail, err := h.availability.Check(ctx, name)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, avail)
}

func (h *requestHandler) handleInReview(w http.ResponseWriter, r *http.Request) {
	h.staffTransition(w, r, "in_review", h.svc.InReview)
}

type actionNeededPayload struct {
	Reason      string `json:"reason"`
	CustomEmail string `json:"custom_email"`
}

func (h *requestHandler) handleActionNeeded(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID, err := requestIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var payload actionNeededPayload
	if err := httputil.DecodeJSON(r, &payload); err != nil {
		httputil.WriteError(w, err)
		return
	}
	got, err := h.svc.ActionNeeded(ctx, requestID, request.ActionNeededReason(payload.Reason), payload.CustomEmail)
	h.metrics.RecordTransition("action_needed", err)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRequestResponse(got))
}

type approvePayload struct {
	SendEmail *bool `json:"send_email"`
}

func (h *requestHandler) handleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID, err := requestIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	sendEmail := true
	if r.ContentLength > 0 {
		var payload approvePayload
		if err := httputil.DecodeJSON(r, &payload); err != nil {
			httputil.WriteError(w, err)
			return
		}
		if payload.SendEmail != nil {
			sendEmail = *payload.SendEmail
		}
	}
	got, err := h.svc.Approve(ctx, requestID, sendEmail)
	h.metrics.RecordTransition("approve", err)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRequestResponse(got))
}

type rejectPayload struct {
	Reason string `json:"reason"`
}

func (h *requestHandler) handleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID, err := requestIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var payload rejectPayload
	if err := httputil.DecodeJSON(r, &payload); err != nil {
		httputil.WriteError(w, err)
		return
	}
	got, err := h.svc.Reject(ctx, requestID, request.RejectionReason(payload.Reason))
	h.metrics.RecordTransition("reject", err)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRequestResponse(got))
}

func (h *requestHandler) handleRejectWithPrejudice(w http.ResponseWriter, r *http.Request) {
	h.staffTransition(w, r, "reject_with_prejudice", h.svc.RejectWithPrejudice)
}

func (h *requestHandler) staffTransition(w http.ResponseWriter, r *http.Request, event string, fn func(ctx context.Context, requestID id.RequestID) (*request.DomainRequest, error)) {
	ctx := r.Context()
	requestID, err := requestIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	got, err := fn(ctx, requestID)
	h.metrics.RecordTransition(event, err)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRequestResponse(got))
}

// loadOwned fetches the request and enforces that the caller owns it; staff
// may read any request.
func (h *requestHandler) loadOwned(r *http.Request) (*request.DomainRequest, error) {
	ctx := r.Context()
	requestID, err := requestIDParam(r)
	if err != nil {
		return nil, err
	}
	req, err := h.svc.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.RequesterID != requestcontext.UserID(ctx) && !requestcontext.IsStaff(ctx) {
		return nil, dErrors.New(dErrors.CodeForbidden, "You do not have access to this request.")
	}
	return req, nil
}

func requestIDParam(r *http.Request) (id.RequestID, error) {
	requestID, err := id.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		return id.RequestID{}, dErrors.New(dErrors.CodeBadRequest, "Invalid request id.")
	}
	return requestID, nil
}
