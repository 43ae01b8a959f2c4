package loyalty

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"receiptmint/internal/receipt/models"
	"receiptmint/pkg/platform/sentinel"
)

var earning = models.Earning{
	Account:    "0.0.1001",
	ReceiptNFT: "0.0.7002::12",
	Total:      4.5,
	Merchant:   "Cafe X",
}

func TestEarn_PostsEarning(t *testing.T) {
	var got models.Earning
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/points/earn", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, WithHTTPClient(srv.Client()))
	require.NoError(t, c.Earn(context.Background(), earning))
	assert.Equal(t, earning, got)
}

func TestEarn_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := New(srv.URL, time.Second).Earn(context.Background(), earning)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestEarn_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	err := New(srv.URL, 20*time.Millisecond).Earn(context.Background(), earning)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sentinel.ErrUnavailable))
}

func TestEarn_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	c := New(srv.URL, time.Second, WithBreaker(2, time.Minute))
	c.breaker.now = func() time.Time { return now }

	require.Error(t, c.Earn(context.Background(), earning))
	require.Error(t, c.Earn(context.Background(), earning))
	assert.ErrorIs(t, c.Earn(context.Background(), earning), ErrCircuitOpen)
	assert.Equal(t, int32(2), calls.Load())

	now = now.Add(time.Minute)
	require.Error(t, c.Earn(context.Background(), earning))
	assert.Equal(t, int32(3), calls.Load())
}

func TestBreaker_HalfOpenAdmitsOneTrialCall(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	b := newBreaker(1, time.Minute)
	b.now = func() time.Time { return now }

	require.True(t, b.allow())
	b.failure()
	assert.False(t, b.allow(), "open during cooldown")

	now = now.Add(time.Minute)
	assert.True(t, b.allow(), "first caller after cooldown is the trial")
	assert.False(t, b.allow(), "second caller waits for the trial")

	b.failure()
	assert.False(t, b.allow(), "failed trial re-arms the cooldown")

	now = now.Add(time.Minute)
	require.True(t, b.allow())
	b.success()
	assert.True(t, b.allow())
	assert.True(t, b.allow(), "closed after a successful trial")
}
