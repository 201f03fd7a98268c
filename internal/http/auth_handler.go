package httpapi

import (
	"log/slog"
	"net/http"

	"registrar/internal/platform/middleware"
	"registrar/internal/user"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/platform/httputil"
	"registrar/pkg/requestcontext"
)

type authHandler struct {
	users  user.Store
	auth   *middleware.Authenticator
	logger *slog.Logger
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	Staff bool   `json:"staff"`
}

func (h *authHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	account, err := h.users.FindByEmail(ctx, req.Email)
	if err != nil || !account.CheckPassword(req.Password) {
		h.logger.WarnContext(ctx, "login refused",
			"request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Invalid email or password."))
		return
	}
	if account.IsRestricted() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "This account is restricted."))
		return
	}

	token, err := h.auth.IssueToken(account.ID, account.IsStaff, requestcontext.Now(ctx))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "issue token", err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, loginResponse{Token: token, Staff: account.IsStaff})
}
