package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"receiptmint/internal/ledger"
	"receiptmint/internal/receipt/metrics"
	"receiptmint/internal/receipt/models"
)

const statusMetadataTooLong = "METADATA_TOO_LONG"

// Minter creates receipt serials.
type Minter struct {
	ledger  ledger.Client
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Mint creates exactly one serial of collection carrying payload. A payload
// over the ledger limit is rejected before submission. An asset is returned
// only for a successful confirmation reporting a single positive serial.
func (m *Minter) Mint(ctx context.Context, collection ledger.TokenID, payload []byte) (models.MintedAsset, error) {
	ctx, span := m.tracer.Start(ctx, "receipt.mint",
		trace.WithAttributes(attribute.String("collection", string(collection))))
	defer span.End()

	asset, err := m.mint(ctx, collection, payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "mint failed")
		return models.MintedAsset{}, err
	}
	span.SetAttributes(attribute.Int64("serial", asset.Serial))
	return asset, nil
}

func (m *Minter) mint(ctx context.Context, collection ledger.TokenID, payload []byte) (models.MintedAsset, error) {
	if len(payload) == 0 {
		return models.MintedAsset{}, models.NewStageError(models.StageMint, "", fmt.Errorf("empty metadata payload"))
	}
	if len(payload) > ledger.MaxMetadataBytes {
		return models.MintedAsset{}, models.NewStageError(models.StageMint, statusMetadataTooLong,
			fmt.Errorf("payload is %d bytes, limit is %d", len(payload), ledger.MaxMetadataBytes))
	}

	start := time.Now()
	receipt, err := m.ledger.MintNFT(ctx, collection, payload)
	m.metrics.ObserveStage(string(models.StageMint), time.Since(start))
	if err != nil {
		return models.MintedAsset{}, models.NewStageError(models.StageMint, ledger.StatusOf(err), err)
	}
	if receipt.Status != ledger.StatusSuccess {
		return models.MintedAsset{}, models.NewStageError(models.StageMint, receipt.Status, nil)
	}
	if len(receipt.Serials) != 1 || receipt.Serials[0] <= 0 {
		return models.MintedAsset{}, models.NewStageError(models.StageMint, "",
			fmt.Errorf("confirmation reported serials %v", receipt.Serials))
	}

	return models.MintedAsset{
		CollectionID: collection,
		Serial:       receipt.Serials[0],
		MetadataURI:  string(payload),
	}, nil
}
