package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"receiptmint/internal/ledger"
	"receiptmint/internal/receipt/metrics"
	"receiptmint/internal/receipt/models"
)

// maxMemoBytes is the ledger's transaction memo limit.
const maxMemoBytes = 100

// TransferExecutor delivers a minted serial and its reward in one transaction.
type TransferExecutor struct {
	ledger  ledger.Client
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Transfer submits req atomically. A self-transfer is skipped without
// touching the ledger. On failure the outcome is not executed and the error
// is a transfer StageError carrying the ledger status.
func (t *TransferExecutor) Transfer(ctx context.Context, req ledger.TransferRequest) (models.TransferOutcome, error) {
	if req.From == req.To {
		return models.TransferOutcome{Executed: false, Status: models.TxStatusSelfMint}, nil
	}

	ctx, span := t.tracer.Start(ctx, "receipt.transfer", trace.WithAttributes(
		attribute.String("to", string(req.To)),
		attribute.Int64("serial", req.Serial),
	))
	defer span.End()

	req.Memo = truncateMemo(req.Memo)

	start := time.Now()
	receipt, err := t.ledger.Transfer(ctx, req)
	t.metrics.ObserveStage(string(models.StageTransfer), time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transfer failed")
		return models.TransferOutcome{Status: models.TxStatusTransferFailed},
			models.NewStageError(models.StageTransfer, ledger.StatusOf(err), err)
	}

	return models.TransferOutcome{
		Executed:     true,
		Status:       receipt.Status,
		RewardAmount: req.RewardAmount,
	}, nil
}

func truncateMemo(memo string) string {
	if len(memo) <= maxMemoBytes {
		return memo
	}
	cut := maxMemoBytes
	// back off to a rune boundary
	for cut > 0 && memo[cut]&0xC0 == 0x80 {
		cut--
	}
	return memo[:cut]
}
