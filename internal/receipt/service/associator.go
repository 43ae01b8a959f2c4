package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"receiptmint/internal/ledger"
	"receiptmint/internal/receipt/metrics"
	"receiptmint/internal/receipt/models"
	pstrings "receiptmint/pkg/platform/strings"
)

// Associator makes sure an account may hold the receipt and reward tokens.
type Associator struct {
	ledger  ledger.Client
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// EnsureAssociated associates account with tokens, signed with key. The
// ledger's "already associated" conflict is a success; any other failure is
// returned as AssociationFailed rather than an error so callers decide
// whether it matters. Repeated token ids are collapsed because the ledger
// rejects a list that names a token twice.
func (a *Associator) EnsureAssociated(ctx context.Context, account ledger.AccountID, key ledger.KeyRef, tokens []ledger.TokenID) models.AssociationResult {
	ctx, span := a.tracer.Start(ctx, "receipt.associate",
		trace.WithAttributes(attribute.String("account", string(account))))
	defer span.End()

	start := time.Now()
	receipt, err := a.ledger.AssociateTokens(ctx, account, key, pstrings.DedupeAndTrim(tokens))
	a.metrics.ObserveStage(string(models.StageAssociation), time.Since(start))

	var result models.AssociationResult
	switch {
	case err == nil:
		result = models.AssociationResult{Status: models.Associated, TransactionID: receipt.TransactionID}
	case ledger.IsAlreadyAssociated(err):
		result = models.AssociationResult{Status: models.AlreadyAssociated}
	default:
		result = models.AssociationResult{
			Status: models.AssociationFailed,
			Err:    models.NewStageError(models.StageAssociation, ledger.StatusOf(err), err),
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "association failed")
	}

	span.SetAttributes(attribute.String("result", result.Status.String()))
	a.metrics.IncrementAssociation(result.Status.String())
	return result
}
