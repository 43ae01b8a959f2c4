package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"receiptmint/internal/ledger"
	"receiptmint/internal/receipt/ipfs"
	"receiptmint/internal/receipt/metrics"
	"receiptmint/internal/receipt/mirror"
	"receiptmint/internal/receipt/models"
	dErrors "receiptmint/pkg/domain-errors"
)

// maxConcurrentFetches bounds metadata fetches per listing. The listing as a
// whole is bounded by resolveTimeout.
const maxConcurrentFetches = 64

// Resolver rebuilds the receipts an account owns from the mirror index.
type Resolver struct {
	index          OwnershipIndex
	fetcher        MetadataFetcher
	collection     ledger.TokenID
	listTimeout    time.Duration
	resolveTimeout time.Duration

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// ListOwned returns every receipt serial held by account in index order.
// Only the index query can fail the call; an unresolvable payload, or one
// still pending when resolveTimeout elapses, yields a view with null metadata.
func (r *Resolver) ListOwned(ctx context.Context, account string) (*models.OwnedListing, error) {
	addr, err := models.ParseAccountAddress(account)
	if err != nil {
		return nil, err
	}

	ctx, span := r.tracer.Start(ctx, "receipt.list_owned", trace.WithAttributes(
		attribute.String("account", addr.Normalized),
		attribute.String("format", addr.Format.String()),
	))
	defer span.End()

	nfts, err := r.list(ctx, addr.Normalized)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "index query failed")
		r.logger.ErrorContext(ctx, "failed to list owned receipts",
			"account", addr.Normalized,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "failed to fetch NFTs")
	}

	views := make([]models.OwnedAssetView, len(nfts))
	var failures atomic.Int64
	var g errgroup.Group
	g.SetLimit(maxConcurrentFetches)

	fetchCtx, cancel := context.WithTimeout(ctx, r.resolveTimeout)
	defer cancel()

	for i, nft := range nfts {
		views[i] = models.OwnedAssetView{
			CollectionID: nft.TokenID,
			Serial:       nft.SerialNumber,
			CreatedAt:    nft.CreatedTimestamp,
		}
		payload, ok := decodePayload(nft.Metadata)
		if !ok {
			failures.Add(1)
			continue
		}
		views[i].MetadataURI = payload

		if !ipfs.IsPointer(payload) {
			if json.Valid([]byte(payload)) {
				views[i].Metadata = json.RawMessage(payload)
			} else {
				failures.Add(1)
			}
			continue
		}

		g.Go(func() error {
			doc, err := r.fetcher.Fetch(fetchCtx, payload)
			if err != nil {
				failures.Add(1)
				r.logger.DebugContext(ctx, "receipt metadata unavailable",
					"serial", nft.SerialNumber,
					"metadata_uri", payload,
					"error", err,
				)
				return nil
			}
			views[i].Metadata = doc
			return nil
		})
	}
	_ = g.Wait()

	r.metrics.ObserveOwned(len(views))
	r.metrics.AddMetadataFailures(int(failures.Load()))
	span.SetAttributes(attribute.Int("count", len(views)))

	return &models.OwnedListing{
		Account:         addr.Normalized,
		OriginalAccount: addr.Original,
		Format:          addr.Format,
		Assets:          views,
	}, nil
}

func (r *Resolver) list(ctx context.Context, account string) ([]mirror.NFT, error) {
	ctx, cancel := context.WithTimeout(ctx, r.listTimeout)
	defer cancel()

	start := time.Now()
	nfts, err := r.index.ListNFTs(ctx, account, string(r.collection))
	r.metrics.ObserveStage(string(models.StageIndexer), time.Since(start))
	return nfts, err
}

// decodePayload base64-decodes an on-ledger payload. An empty or undecodable
// payload reports ok=false.
func decodePayload(encoded string) (string, bool) {
	if encoded == "" {
		return "", false
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", false
	}
	return string(raw), true
}
