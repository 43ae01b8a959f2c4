package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Adapters (ledger, pinning service,
// mirror node, redis) return these, optionally wrapped, so services can
// translate them into domain errors without parsing upstream messages.
//
//   - ErrNotFound: the upstream has no such entity
//   - ErrConflict: the upstream already holds the requested state
//   - ErrInvalidState: entity in wrong state for requested operation
//   - ErrUnavailable: the upstream timed out or refused the call
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
