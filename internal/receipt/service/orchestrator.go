package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"receiptmint/internal/ledger"
	"receiptmint/internal/receipt/metrics"
	"receiptmint/internal/receipt/models"
	dErrors "receiptmint/pkg/domain-errors"
)

// Orchestrator runs the mint pipeline as a state machine:
//
//	START -> ASSOCIATING -> PUBLISHING -> MINTING -> TRANSFERRING -> DONE
//
// with MINTING -> DONE for a treasury customer, TRANSFERRING -> PARTIAL when
// delivery fails after the mint, and FAILED reachable before a serial exists.
//
// Failure policy:
//   - association failures are logged and the run continues
//   - publish and mint failures end the run in FAILED
//   - transfer failures end the run in PARTIAL; the serial stays with the treasury
type Orchestrator struct {
	associator *Associator
	publisher  MetadataPublisher
	minter     *Minter
	transfer   *TransferExecutor

	treasury     ledger.AccountID
	collection   ledger.TokenID
	rewardToken  ledger.TokenID
	rewardAmount int64
	imageURL     string

	now     func() time.Time
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// run is the mutable state of one pipeline execution.
type run struct {
	req    models.MintRequest
	result *models.MintResult
	uri    string
	err    error
}

func (r *run) advance(next models.State) error {
	cur := r.result.State
	if !cur.CanTransitionTo(next) {
		return fmt.Errorf("illegal pipeline transition %s -> %s", cur, next)
	}
	r.result.State = next
	r.result.Trail = append(r.result.Trail, next)
	return nil
}

type stepFunc func(ctx context.Context, r *run) models.State

func (o *Orchestrator) steps() map[models.State]stepFunc {
	return map[models.State]stepFunc{
		models.StateStart:        o.start,
		models.StateAssociating:  o.associate,
		models.StatePublishing:   o.publish,
		models.StateMinting:      o.mint,
		models.StateTransferring: o.deliver,
	}
}

// Run executes the pipeline for req. The result is always non-nil and ends
// in a terminal state. The error is non-nil exactly when that state is FAILED.
func (o *Orchestrator) Run(ctx context.Context, req models.MintRequest) (*models.MintResult, error) {
	ctx, span := o.tracer.Start(ctx, "receipt.mint_pipeline", trace.WithAttributes(
		attribute.String("customer", string(req.Customer)),
		attribute.String("merchant", req.Merchant),
	))
	defer span.End()

	r := &run{
		req: req,
		result: &models.MintResult{
			State:    models.StateStart,
			Trail:    []models.State{models.StateStart},
			TestMode: req.Customer == o.treasury,
		},
	}

	steps := o.steps()
	for !r.result.State.Terminal() {
		step, ok := steps[r.result.State]
		if !ok {
			r.err = fmt.Errorf("no step for state %s", r.result.State)
			r.result.State = models.StateFailed
			r.result.Trail = append(r.result.Trail, models.StateFailed)
			break
		}
		next := step(ctx, r)
		if err := r.advance(next); err != nil {
			r.err = err
			r.result.State = models.StateFailed
			r.result.Trail = append(r.result.Trail, models.StateFailed)
		}
	}

	span.SetAttributes(attribute.String("state", string(r.result.State)))
	o.metrics.IncrementMintOutcome(string(r.result.State), r.result.TestMode)

	if r.result.State == models.StateFailed {
		span.RecordError(r.err)
		span.SetStatus(codes.Error, "mint pipeline failed")
		return r.result, r.err
	}
	return r.result, nil
}

func (o *Orchestrator) start(_ context.Context, _ *run) models.State {
	return models.StateAssociating
}

func (o *Orchestrator) associate(ctx context.Context, r *run) models.State {
	res := o.associator.EnsureAssociated(ctx, r.req.Customer, ledger.OperatorKey,
		[]ledger.TokenID{o.rewardToken, o.collection})
	if !res.OK() {
		o.logger.WarnContext(ctx, "token association failed, continuing with mint",
			"customer", r.req.Customer,
			"error", res.Err,
		)
	}
	return models.StatePublishing
}

func (o *Orchestrator) publish(ctx context.Context, r *run) models.State {
	now := o.now()
	doc := models.NewReceiptDocument(r.req.Merchant, r.req.Items, r.req.Total, o.imageURL, now)
	r.result.Document = doc

	start := time.Now()
	uri, err := o.publisher.Publish(ctx, doc, models.FileName(r.req.Merchant, now))
	o.metrics.ObserveStage(string(models.StageStorage), time.Since(start))
	if err != nil {
		o.logger.ErrorContext(ctx, "receipt metadata upload failed",
			"merchant", r.req.Merchant,
			"error", err,
		)
		r.err = dErrors.Wrap(err, dErrors.CodeUpstream, "failed to upload receipt metadata")
		return models.StateFailed
	}
	r.uri = uri
	return models.StateMinting
}

func (o *Orchestrator) mint(ctx context.Context, r *run) models.State {
	asset, err := o.minter.Mint(ctx, o.collection, []byte(r.uri))
	if err != nil {
		o.logger.ErrorContext(ctx, "receipt mint failed",
			"collection", o.collection,
			"metadata_uri", r.uri,
			"error", err,
		)
		r.err = dErrors.Wrap(err, dErrors.CodeUpstream, "failed to mint receipt NFT")
		return models.StateFailed
	}
	r.result.Asset = asset

	if r.result.TestMode {
		r.result.Transfer = models.TransferOutcome{Executed: false, Status: models.TxStatusSelfMint}
		o.logger.InfoContext(ctx, "receipt minted to treasury, transfer skipped",
			"receipt_nft", asset.Ref(),
		)
		return models.StateDone
	}
	return models.StateTransferring
}

func (o *Orchestrator) deliver(ctx context.Context, r *run) models.State {
	asset := r.result.Asset
	outcome, err := o.transfer.Transfer(ctx, ledger.TransferRequest{
		Collection:   asset.CollectionID,
		Serial:       asset.Serial,
		From:         o.treasury,
		To:           r.req.Customer,
		RewardToken:  o.rewardToken,
		RewardAmount: o.rewardAmount,
		Memo:         fmt.Sprintf("Receipt %s from %s", asset.Ref(), r.req.Merchant),
	})
	r.result.Transfer = outcome
	if err != nil {
		o.logger.ErrorContext(ctx, "receipt minted but transfer failed",
			"receipt_nft", asset.Ref(),
			"customer", r.req.Customer,
			"error", err,
		)
		r.result.TransferErr = err
		return models.StatePartial
	}

	o.logger.InfoContext(ctx, "receipt delivered",
		"receipt_nft", asset.Ref(),
		"customer", r.req.Customer,
		"reward_amount", outcome.RewardAmount,
	)
	return models.StateDone
}
