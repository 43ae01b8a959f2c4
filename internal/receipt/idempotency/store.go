// Package idempotency replays completed mint responses for a repeated
// Idempotency-Key so a client retry does not mint a second receipt.
package idempotency

import (
	"context"
	"errors"
	"time"
)

// ErrInFlight is returned by Begin while another request holds the key.
var ErrInFlight = errors.New("request with this idempotency key is in flight")

// Record is a stored response.
type Record struct {
	Fingerprint string `json:"fingerprint"`
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

// Store tracks idempotency keys through pending and completed states.
type Store interface {
	// Begin claims key. It returns (nil, nil) when the caller now owns the
	// key, the stored record when the key completed earlier, or ErrInFlight.
	Begin(ctx context.Context, key string, lease time.Duration) (*Record, error)
	// Complete stores rec under key for ttl.
	Complete(ctx context.Context, key string, rec Record, ttl time.Duration) error
	// Abandon releases a claimed key without storing a response.
	Abandon(ctx context.Context, key string) error
}
