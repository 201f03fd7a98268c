// Package httputil writes wire-format JSON responses. Domain error codes map
// to HTTP statuses in one place so handlers stay declarative.
package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"

	dErrors "registrar/pkg/domain-errors"
)

var statusByCode = map[dErrors.Code]int{
	dErrors.CodeBadRequest:   http.StatusBadRequest,
	dErrors.CodeInvalidInput: http.StatusBadRequest,
	dErrors.CodeUnauthorized: http.StatusUnauthorized,
	dErrors.CodeForbidden:    http.StatusForbidden,
	dErrors.CodeNotFound:     http.StatusNotFound,
	dErrors.CodeConflict:     http.StatusConflict,
	dErrors.CodeUnavailable:  http.StatusServiceUnavailable,
	dErrors.CodeInternal:     http.StatusInternalServerError,
}

var wireByCode = map[dErrors.Code]string{
	dErrors.CodeBadRequest:   "bad_request",
	dErrors.CodeInvalidInput: "invalid_input",
	dErrors.CodeUnauthorized: "unauthorized",
	dErrors.CodeForbidden:    "forbidden",
	dErrors.CodeNotFound:     "not_found",
	dErrors.CodeConflict:     "conflict",
	dErrors.CodeUnavailable:  "unavailable",
	dErrors.CodeInternal:     "internal_error",
}

type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// WriteError renders a coded error. Internal errors omit the description so
// infrastructure detail never reaches a client.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
		code = dErrors.CodeInternal
	}
	body := errorBody{Error: wireByCode[code]}
	if code != dErrors.CodeInternal {
		body.Description = dErrors.MessageOf(err)
	}
	WriteJSON(w, status, body)
}

// WriteJSON renders v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeJSON reads a bounded request body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return dErrors.Wrap(dErrors.CodeBadRequest, fmt.Sprintf("invalid request body: %v", err), err)
	}
	return nil
}
