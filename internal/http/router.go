// Package httpapi is the thin HTTP layer over the request workflow and
// domain management services. Handlers translate wire payloads and map
// domain errors to statuses; business rules stay in the services.
package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"registrar/internal/domain"
	"registrar/internal/epp"
	"registrar/internal/platform/metrics"
	"registrar/internal/platform/middleware"
	"registrar/internal/request"
	"registrar/internal/user"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/platform/httputil"
	"registrar/pkg/platform/sentinel"
)

// Deps carries everything the router needs.
type Deps struct {
	Requests     *request.Service
	Domains      *domain.Service
	Availability *domain.AvailabilityChecker
	Users        user.Store
	Auth         *middleware.Authenticator
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
}

// NewRouter wires all endpoints. Applicant routes require a valid token;
// staff routes additionally require the staff claim.
func NewRouter(d Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	auth := &authHandler{users: d.Users, auth: d.Auth, logger: d.Logger}
	r.Post("/auth/login", auth.handleLogin)

	requests := &requestHandler{svc: d.Requests, availability: d.Availability, metrics: d.Metrics, logger: d.Logger}
	domains := &domainHandler{svc: d.Domains, logger: d.Logger}

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(d.Auth, d.Logger))

		r.Post("/requests", requests.handleCreate)
		r.Get("/requests", requests.handleList)
		r.Get("/requests/{requestID}", requests.handleGet)
		r.Put("/requests/{requestID}", requests.handleSaveDraft)
		r.Post("/requests/{requestID}/submit", requests.handleSubmit)
		r.Post("/requests/{requestID}/withdraw", requests.handleWithdraw)
		r.Get("/availability/{domain}", requests.handleAvailability)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireStaff(d.Logger))

			r.Post("/requests/{requestID}/in-review", requests.handleInReview)
			r.Post("/requests/{requestID}/action-needed", requests.handleActionNeeded)
			r.Post("/requests/{requestID}/approve", requests.handleApprove)
			r.Post("/requests/{requestID}/reject", requests.handleReject)
			r.Post("/requests/{requestID}/reject-with-prejudice", requests.handleRejectWithPrejudice)

			r.Get("/domains/{domainID}", domains.handleGet)
			r.Post("/domains/{domainID}/nameservers", domains.handleSetNameservers)
			r.Post("/domains/{domainID}/dsdata", domains.handleSetDsData)
			r.Post("/domains/{domainID}/security-email", domains.handleSetSecurityEmail)
			r.Post("/domains/{domainID}/renew", domains.handleRenew)
			r.Post("/domains/{domainID}/hold", domains.handlePlaceHold)
			r.Post("/domains/{domainID}/release-hold", domains.handleReleaseHold)
			r.Delete("/domains/{domainID}", domains.handleDelete)
		})
	})

	return r
}

// writeError maps domain error values to wire responses, preserving their
// user-facing message text.
func writeError(w http.ResponseWriter, err error) {
	var (
		validation *request.ValidationError
		transition *request.TransitionNotAllowedError
		conflict   *request.ApprovalConflictError
		nsErr      *domain.NameserverError
		dsErr      *domain.DsDataError
		secErr     *domain.SecurityEmailError
		genErr     *domain.GenericRegistryError
		actionErr  *domain.ActionNotAllowedError
		renewErr   *domain.RenewPeriodError
		contactErr *epp.ContactError
		regErr     *epp.RegistryError
	)
	switch {
	case errors.As(err, &validation):
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, validation.Error()))
	case errors.As(err, &transition):
		httputil.WriteError(w, dErrors.New(dErrors.CodeConflict, transition.Error()))
	case errors.As(err, &conflict):
		httputil.WriteError(w, dErrors.New(dErrors.CodeConflict, conflict.Error()))
	case errors.As(err, &nsErr):
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, nsErr.Error()))
	case errors.As(err, &dsErr):
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, dsErr.Error()))
	case errors.As(err, &secErr):
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, secErr.Error()))
	case errors.As(err, &genErr):
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, genErr.Error()))
	case errors.As(err, &actionErr):
		httputil.WriteError(w, dErrors.New(dErrors.CodeConflict, actionErr.Error()))
	case errors.As(err, &renewErr):
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, renewErr.Error()))
	case errors.As(err, &contactErr):
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, contactErr.Error()))
	case errors.As(err, &regErr):
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnavailable, regErr.Error()))
	case errors.Is(err, sentinel.ErrNotFound):
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "not found"))
	case errors.Is(err, sentinel.ErrUnavailable):
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "Update failed. Cannot contact the registry."))
	default:
		httputil.WriteError(w, err)
	}
}
