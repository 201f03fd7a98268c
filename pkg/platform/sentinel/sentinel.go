package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and transport layers return
// these (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: row or registry object does not exist
// - ErrConflict: unique constraint or already-registered name
// - ErrInvalidState: entity in wrong state for requested operation
// - ErrUnavailable: registry, broker, or store temporarily unreachable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
