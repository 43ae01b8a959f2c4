// Package ipfs publishes receipt documents to a pinning service and resolves
// metadata URIs back into JSON through an IPFS gateway.
package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"receiptmint/internal/receipt/models"
	"receiptmint/pkg/platform/sentinel"
)

const (
	pinFilePath      = "/pinning/pinFileToIPFS"
	maxErrorBodySize = 64 << 10
)

// PublisherConfig configures the pinning client.
type PublisherConfig struct {
	PinningURL string
	GatewayURL string
	JWT        string
	Timeout    time.Duration
}

// Publisher uploads JSON documents as named files to a Pinata-compatible
// pinning API. Each Publish is a single attempt.
type Publisher struct {
	pinningURL string
	gatewayURL string
	jwt        string
	timeout    time.Duration
	client     *http.Client
	logger     *slog.Logger
}

type PublisherOption func(*Publisher)

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithHTTPClient overrides the transport, mostly for tests.
func WithHTTPClient(c *http.Client) PublisherOption {
	return func(p *Publisher) {
		p.client = c
	}
}

func NewPublisher(cfg PublisherConfig, opts ...PublisherOption) (*Publisher, error) {
	if cfg.PinningURL == "" || cfg.GatewayURL == "" {
		return nil, errors.New("pinning and gateway URLs are required")
	}
	if cfg.JWT == "" {
		return nil, errors.New("pinning credential is required")
	}
	p := &Publisher{
		pinningURL: strings.TrimRight(cfg.PinningURL, "/"),
		gatewayURL: strings.TrimRight(cfg.GatewayURL, "/"),
		jwt:        cfg.JWT,
		timeout:    cfg.Timeout,
		client:     &http.Client{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.timeout <= 0 {
		p.timeout = 30 * time.Second
	}
	return p, nil
}

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

// Publish pretty-prints doc, uploads it as filename and returns the gateway
// URL of the pinned content. Failures are storage StageErrors carrying the
// service's own message.
func (p *Publisher) Publish(ctx context.Context, doc any, filename string) (string, error) {
	if filename == "" {
		return "", models.NewStageError(models.StageStorage, "", errors.New("filename is required"))
	}
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", models.NewStageError(models.StageStorage, "", fmt.Errorf("encode document: %w", err))
	}

	body, contentType, err := multipartBody(payload, filename)
	if err != nil {
		return "", models.NewStageError(models.StageStorage, "", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.pinningURL+pinFilePath, body)
	if err != nil {
		return "", models.NewStageError(models.StageStorage, "", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+p.jwt)

	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", models.NewStageError(models.StageStorage, "timeout", fmt.Errorf("%w: %w", sentinel.ErrUnavailable, err))
		}
		return "", models.NewStageError(models.StageStorage, "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		upstream := upstreamMessage(raw, resp.Status)
		if p.logger != nil {
			p.logger.WarnContext(ctx, "pinning service rejected upload",
				"status", resp.StatusCode,
				"filename", filename,
				"upstream", upstream,
			)
		}
		return "", models.NewStageError(models.StageStorage, upstream, fmt.Errorf("status %d", resp.StatusCode))
	}

	var pinned pinResponse
	if err := json.NewDecoder(resp.Body).Decode(&pinned); err != nil {
		return "", models.NewStageError(models.StageStorage, "", fmt.Errorf("decode pin response: %w", err))
	}
	if pinned.IpfsHash == "" {
		return "", models.NewStageError(models.StageStorage, "", errors.New("pin response has no content hash"))
	}
	return p.gatewayURL + "/ipfs/" + pinned.IpfsHash, nil
}

func multipartBody(payload []byte, filename string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", "application/json")
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(payload); err != nil {
		return nil, "", fmt.Errorf("write file part: %w", err)
	}

	meta, _ := json.Marshal(map[string]string{"name": filename})
	if err := mw.WriteField("pinataMetadata", string(meta)); err != nil {
		return nil, "", fmt.Errorf("write metadata field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

// upstreamMessage pulls the service's error text out of an error body. Pinata
// answers with either {"error":"..."} or {"error":{"reason":..,"details":..}}.
func upstreamMessage(raw []byte, fallback string) string {
	var envelope struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		var s string
		if json.Unmarshal(envelope.Error, &s) == nil && s != "" {
			return s
		}
		var obj struct {
			Reason  string `json:"reason"`
			Details string `json:"details"`
		}
		if json.Unmarshal(envelope.Error, &obj) == nil && (obj.Reason != "" || obj.Details != "") {
			if obj.Reason != "" && obj.Details != "" {
				return obj.Reason + ": " + obj.Details
			}
			return obj.Reason + obj.Details
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		return text
	}
	return fallback
}
