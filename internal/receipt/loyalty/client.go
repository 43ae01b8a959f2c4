// Package loyalty notifies the external points service about delivered
// receipts. Point balances and tiers live in that service.
package loyalty

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"receiptmint/internal/receipt/models"
	"receiptmint/pkg/platform/sentinel"
	"receiptmint/pkg/requestcontext"
)

const earnPath = "/points/earn"

// ErrCircuitOpen is returned while recent calls keep failing.
var ErrCircuitOpen = errors.New("loyalty service circuit open")

// Client posts earnings to <baseURL>/points/earn.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	breaker *breaker
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(l *Client) {
		if c != nil {
			l.http = c
		}
	}
}

// WithBreaker overrides the failure threshold and cooldown.
func WithBreaker(threshold int, cooldown time.Duration) Option {
	return func(l *Client) {
		l.breaker = newBreaker(threshold, cooldown)
	}
}

func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	c := &Client{
		baseURL: baseURL,
		timeout: timeout,
		http:    http.DefaultClient,
		breaker: newBreaker(5, time.Minute),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Earn reports one delivered receipt. Any non-2xx answer is an error.
func (c *Client) Earn(ctx context.Context, earning models.Earning) error {
	if !c.breaker.allow() {
		return ErrCircuitOpen
	}
	err := c.post(ctx, earning)
	if err != nil {
		c.breaker.failure()
		return err
	}
	c.breaker.success()
	return nil
}

func (c *Client) post(ctx context.Context, earning models.Earning) error {
	body, err := json.Marshal(earning)
	if err != nil {
		return fmt.Errorf("encode earning: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+earnPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build loyalty request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if id := requestcontext.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("loyalty service timed out: %w", sentinel.ErrUnavailable)
		}
		return fmt.Errorf("loyalty request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("loyalty service returned %d", resp.StatusCode)
	}
	return nil
}
