// Package httpserver builds the API server with shared timeout defaults.
package httpserver

import (
	"net/http"
	"time"
)

// New returns an HTTP server for the given handler. Slow-header clients are
// cut off early; request bodies are bounded by the JSON decoder instead.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
