package idempotency

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	dErrors "receiptmint/pkg/domain-errors"
	"receiptmint/pkg/platform/httputil"
	"receiptmint/pkg/requestcontext"
)

const (
	// HeaderKey is the request header carrying the client's key.
	HeaderKey = "Idempotency-Key"
	// HeaderReplayed marks a response served from the store.
	HeaderReplayed = "Idempotent-Replayed"

	maxKeyLength  = 255
	maxBodyToHash = 1 << 20
)

// Config tunes the middleware.
type Config struct {
	// Lease bounds how long a key stays pending if the process dies mid-request.
	Lease time.Duration
	// TTL is how long a completed response is replayed.
	TTL time.Duration
}

// Middleware replays the stored 200 response for a repeated Idempotency-Key.
// Requests without the header pass straight through. Non-200 responses
// release the key so the client can retry.
func Middleware(store Store, cfg Config, logger *slog.Logger) func(http.Handler) http.Handler {
	if cfg.Lease <= 0 {
		cfg.Lease = 5 * time.Minute
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(HeaderKey)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			if len(key) > maxKeyLength {
				httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "Idempotency-Key is too long"))
				return
			}

			body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyToHash))
			if err != nil {
				httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "failed to read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			fingerprint := fingerprintOf(r.Method, r.URL.Path, body)

			rec, err := store.Begin(ctx, key, cfg.Lease)
			switch {
			case errors.Is(err, ErrInFlight):
				httputil.WriteError(w, dErrors.New(dErrors.CodeConflict, "a request with this Idempotency-Key is in progress"))
				return
			case err != nil:
				logger.ErrorContext(ctx, "idempotency store unavailable",
					"request_id", requestID,
					"error", err,
				)
				httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "idempotency store unavailable"))
				return
			case rec != nil:
				if rec.Fingerprint != fingerprint {
					httputil.WriteError(w, dErrors.New(dErrors.CodeConflict, "Idempotency-Key was used with a different request"))
					return
				}
				logger.InfoContext(ctx, "replaying idempotent response",
					"request_id", requestID,
				)
				w.Header().Set("Content-Type", rec.ContentType)
				w.Header().Set(HeaderReplayed, "true")
				w.WriteHeader(rec.Status)
				_, _ = w.Write(rec.Body)
				return
			}

			capture := &capturingWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(capture, r)

			// the client may be gone; the outcome still has to be recorded
			storeCtx := context.WithoutCancel(ctx)
			if capture.status == http.StatusOK {
				err = store.Complete(storeCtx, key, Record{
					Fingerprint: fingerprint,
					Status:      capture.status,
					ContentType: capture.Header().Get("Content-Type"),
					Body:        capture.body.Bytes(),
				}, cfg.TTL)
			} else {
				err = store.Abandon(storeCtx, key)
			}
			if err != nil {
				logger.WarnContext(ctx, "failed to record idempotency outcome",
					"request_id", requestID,
					"status", capture.status,
					"error", err,
				)
			}
		})
	}
}

func fingerprintOf(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

type capturingWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (c *capturingWriter) WriteHeader(status int) {
	if !c.wroteHeader {
		c.status = status
		c.wroteHeader = true
	}
	c.ResponseWriter.WriteHeader(status)
}

func (c *capturingWriter) Write(p []byte) (int, error) {
	c.wroteHeader = true
	c.body.Write(p)
	return c.ResponseWriter.Write(p)
}
