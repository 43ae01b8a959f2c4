package ipfs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"receiptmint/internal/receipt/models"
)

const maxDocumentSize = 1 << 20

// Fetcher resolves a metadata URI into a JSON document. ipfs:// URIs are
// read through the configured gateway.
type Fetcher struct {
	gatewayURL string
	timeout    time.Duration
	client     *http.Client
}

func NewFetcher(gatewayURL string, timeout time.Duration, client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Fetcher{
		gatewayURL: strings.TrimRight(gatewayURL, "/"),
		timeout:    timeout,
		client:     client,
	}
}

// IsPointer reports whether a decoded payload should be fetched rather than
// parsed inline.
func IsPointer(payload string) bool {
	return strings.HasPrefix(payload, "http") || strings.HasPrefix(payload, "ipfs://")
}

// Fetch GETs uri and returns its body if it is valid JSON. Every failure is a
// metadata_fetch StageError.
func (f *Fetcher) Fetch(ctx context.Context, uri string) (json.RawMessage, error) {
	target := f.resolve(uri)

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, models.NewStageError(models.StageMetadataFetch, "", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, models.NewStageError(models.StageMetadataFetch, "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, models.NewStageError(models.StageMetadataFetch, resp.Status, nil)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, models.NewStageError(models.StageMetadataFetch, "", err)
	}
	if len(body) > maxDocumentSize {
		return nil, models.NewStageError(models.StageMetadataFetch, "", fmt.Errorf("document exceeds %d bytes", maxDocumentSize))
	}
	if !json.Valid(body) {
		return nil, models.NewStageError(models.StageMetadataFetch, "", errors.New("document is not JSON"))
	}
	return json.RawMessage(body), nil
}

func (f *Fetcher) resolve(uri string) string {
	if cid, ok := strings.CutPrefix(uri, "ipfs://"); ok {
		return f.gatewayURL + "/ipfs/" + strings.TrimPrefix(cid, "ipfs/")
	}
	return uri
}
