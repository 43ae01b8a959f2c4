// Package mirror reads token ownership from the ledger's mirror node REST API.
package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"receiptmint/internal/receipt/models"
	"receiptmint/pkg/platform/sentinel"
)

const (
	pageLimit    = 100
	maxPages     = 50
	maxErrorBody = 64 << 10
)

// NFT is one serial as the mirror node reports it. Metadata is base64.
type NFT struct {
	AccountID        string `json:"account_id"`
	CreatedTimestamp string `json:"created_timestamp"`
	Metadata         string `json:"metadata"`
	SerialNumber     int64  `json:"serial_number"`
	TokenID          string `json:"token_id"`
}

type page struct {
	NFTs  []NFT `json:"nfts"`
	Links struct {
		Next *string `json:"next"`
	} `json:"links"`
}

// APIError is a non-success mirror response. Body is the raw JSON the node
// returned, when it returned JSON.
type APIError struct {
	StatusCode int
	Messages   []string
	Body       json.RawMessage
}

func (e *APIError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("mirror node status %d: %s", e.StatusCode, strings.Join(e.Messages, "; "))
	}
	return fmt.Sprintf("mirror node status %d", e.StatusCode)
}

// Client queries one mirror node.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// ListNFTs returns every serial of collection held by account, following the
// node's pagination links and keeping its order. The caller's ctx bounds the
// whole listing.
func (c *Client) ListNFTs(ctx context.Context, account, collection string) ([]NFT, error) {
	q := url.Values{}
	q.Set("token.id", collection)
	q.Set("limit", strconv.Itoa(pageLimit))
	next := fmt.Sprintf("%s/api/v1/accounts/%s/nfts?%s", c.baseURL, url.PathEscape(account), q.Encode())

	var out []NFT
	for pages := 0; next != ""; pages++ {
		if pages == maxPages {
			return nil, models.NewStageError(models.StageIndexer, "", fmt.Errorf("more than %d pages", maxPages))
		}
		p, err := c.get(ctx, next)
		if err != nil {
			return nil, err
		}
		out = append(out, p.NFTs...)
		next = ""
		if p.Links.Next != nil && *p.Links.Next != "" {
			next = c.baseURL + *p.Links.Next
		}
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, target string) (*page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, models.NewStageError(models.StageIndexer, "", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, models.NewStageError(models.StageIndexer, "timeout", fmt.Errorf("%w: %w", sentinel.ErrUnavailable, err))
		}
		return nil, models.NewStageError(models.StageIndexer, "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := parseAPIError(resp)
		return nil, models.NewStageError(models.StageIndexer, strings.Join(apiErr.Messages, "; "), apiErr)
	}

	var p page
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, models.NewStageError(models.StageIndexer, "", fmt.Errorf("decode nfts page: %w", err))
	}
	return &p, nil
}

func parseAPIError(resp *http.Response) *APIError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if !json.Valid(raw) {
		return apiErr
	}
	apiErr.Body = json.RawMessage(raw)

	var envelope struct {
		Status struct {
			Messages []struct {
				Message string `json:"message"`
			} `json:"messages"`
		} `json:"_status"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		for _, m := range envelope.Status.Messages {
			apiErr.Messages = append(apiErr.Messages, m.Message)
		}
	}
	return apiErr
}

// AsAPIError returns the mirror response carried by err, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
