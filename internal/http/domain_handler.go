package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"registrar/internal/domain"
	"registrar/internal/epp"
	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/platform/httputil"
)

type domainHandler struct {
	svc    *domain.Service
	logger *slog.Logger
}

type domainResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	State          string     `json:"state"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
}

func toDomainResponse(d *domain.Domain) domainResponse {
	resp := domainResponse{
		ID:    d.ID.String(),
		Name:  d.Name.String(),
		State: string(d.State),
	}
	if !d.ExpirationDate.IsZero() {
		t := d.ExpirationDate
		resp.ExpirationDate = &t
	}
	return resp
}

func (h *domainHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	domainID, err := domainIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	d, err := h.svc.Get(ctx, domainID)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDomainResponse(d))
}

type nameserverPayload struct {
	Host string   `json:"host"`
	IPs  []string `json:"ips"`
}

type setNameserversPayload struct {
	Nameservers []nameserverPayload `json:"nameservers"`
}

func (h *domainHandler) handleSetNameservers(w http.ResponseWriter, r *http.Request) {
	var payload setNameserversPayload
	if err := httputil.DecodeJSON(r, &payload); err != nil {
		httputil.WriteError(w, err)
		return
	}
	hosts := make([]domain.Nameserver, 0, len(payload.Nameservers))
	for _, ns := range payload.Nameservers {
		hosts = append(hosts, domain.Nameserver{Host: ns.Host, IPs: ns.IPs})
	}
	h.mutate(w, r, func(ctx context.Context, domainID id.DomainID) (*domain.Domain, error) {
		return h.svc.SetNameservers(ctx, domainID, hosts)
	})
}

type dsRecordPayload struct {
	KeyTag     int    `json:"key_tag"`
	Algorithm  int    `json:"algorithm"`
	DigestType int    `json:"digest_type"`
	Digest     string `json:"digest"`
}

type setDsDataPayload struct {
	Records        []dsRecordPayload `json:"records"`
	ConfirmDisable bool              `json:"confirm_disable"`
}

func (h *domainHandler) handleSetDsData(w http.ResponseWriter, r *http.Request) {
	var payload setDsDataPayload
	if err := httputil.DecodeJSON(r, &payload); err != nil {
		httputil.WriteError(w, err)
		return
	}
	records := make([]epp.DsData, 0, len(payload.Records))
	for _, rec := range payload.Records {
		records = append(records, epp.DsData{
			KeyTag:     rec.KeyTag,
			Alg:        rec.Algorithm,
			DigestType: rec.DigestType,
			Digest:     rec.Digest,
		})
	}
	h.mutate(w, r, func(ctx context.Context, domainID id.DomainID) (*domain.Domain, error) {
		return h.svc.SetDsData(ctx, domainID, records, payload.ConfirmDisable)
	})
}

type securityEmailPayload struct {
	Email string `json:"email"`
}

func (h *domainHandler) handleSetSecurityEmail(w http.ResponseWriter, r *http.Request) {
	var payload securityEmailPayload
	if err := httputil.DecodeJSON(r, &payload); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.mutate(w, r, func(ctx context.Context, domainID id.DomainID) (*domain.Domain, error) {
		return h.svc.SetSecurityEmail(ctx, domainID, payload.Email)
	})
}

type renewPayload struct {
	Years int `json:"years"`
}

func (h *domainHandler) handleRenew(w http.ResponseWriter, r *http.Request) {
	payload := renewPayload{Years: 1}
	if r.ContentLength > 0 {
		if err := httputil.DecodeJSON(r, &payload); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	h.mutate(w, r, func(ctx context.Context, domainID id.DomainID) (*domain.Domain, error) {
		return h.svc.Renew(ctx, domainID, payload.Years)
	})
}

func (h *domainHandler) handlePlaceHold(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.svc.PlaceClientHold)
}

func (h *domainHandler) handleReleaseHold(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.svc.RevertClientHold)
}

func (h *domainHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.svc.Delete)
}

func (h *domainHandler) mutate(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, domainID id.DomainID) (*domain.Domain, error)) {
	ctx := r.Context()
	domainID, err := domainIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	d, err := fn(ctx, domainID)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDomainResponse(d))
}

func domainIDParam(r *http.Request) (id.DomainID, error) {
	domainID, err := id.ParseDomainID(chi.URLParam(r, "domainID"))
	if err != nil {
		return id.DomainID{}, dErrors.New(dErrors.CodeBadRequest, "Invalid domain id.")
	}
	return domainID, nil
}
