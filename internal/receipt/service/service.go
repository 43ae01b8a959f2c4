// Package service implements the receipt write path (associate, publish,
// mint, deliver) and read path (owned receipts) over the ledger port.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"receiptmint/internal/ledger"
	"receiptmint/internal/receipt/metrics"
	"receiptmint/internal/receipt/models"
	dErrors "receiptmint/pkg/domain-errors"
)

const tracerName = "receiptmint/internal/receipt/service"

// Config holds the fixed identifiers and display settings of a deployment.
type Config struct {
	CollectionID   ledger.TokenID
	RewardTokenID  ledger.TokenID
	RewardAmount   int64
	RewardSymbol   string
	RewardDecimals int32
	ImageURL       string
	ExplorerURL    string
	ListTimeout    time.Duration
	// ResolveTimeout bounds the metadata fan-out of one listing.
	ResolveTimeout time.Duration
}

// notifyTimeout caps a background loyalty notification once the request that
// started it has returned.
const notifyTimeout = 10 * time.Second

// Service is the entry point the HTTP layer uses.
type Service struct {
	cfg          Config
	treasury     ledger.AccountID
	associator   *Associator
	orchestrator *Orchestrator
	resolver     *Resolver

	events     EventPublisher
	loyalty    LoyaltyNotifier
	background sync.WaitGroup
	now        func() time.Time
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithEventPublisher enables receipt events.
func WithEventPublisher(p EventPublisher) Option {
	return func(s *Service) {
		s.events = p
	}
}

// WithLoyalty enables loyalty notifications for delivered receipts.
func WithLoyalty(n LoyaltyNotifier) Option {
	return func(s *Service) {
		s.loyalty = n
	}
}

// WithClock overrides the time source used for receipt dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New wires the pipeline components around one ledger handle.
func New(ledgerClient ledger.Client, publisher MetadataPublisher, index OwnershipIndex, fetcher MetadataFetcher, cfg Config, opts ...Option) (*Service, error) {
	switch {
	case ledgerClient == nil:
		return nil, errors.New("ledger client is required")
	case publisher == nil:
		return nil, errors.New("metadata publisher is required")
	case index == nil:
		return nil, errors.New("ownership index is required")
	case fetcher == nil:
		return nil, errors.New("metadata fetcher is required")
	case cfg.CollectionID == "" || cfg.RewardTokenID == "":
		return nil, errors.New("collection and reward token ids are required")
	case cfg.RewardAmount <= 0:
		return nil, errors.New("reward amount must be positive")
	}
	if cfg.ListTimeout <= 0 {
		cfg.ListTimeout = 10 * time.Second
	}
	if cfg.ResolveTimeout <= 0 {
		cfg.ResolveTimeout = 10 * time.Second
	}

	s := &Service{
		cfg:      cfg,
		treasury: ledgerClient.Treasury(),
		now:      time.Now,
		logger:   slog.Default(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.associator = &Associator{ledger: ledgerClient, logger: s.logger, metrics: s.metrics, tracer: s.tracer}
	s.orchestrator = &Orchestrator{
		associator:   s.associator,
		publisher:    publisher,
		minter:       &Minter{ledger: ledgerClient, metrics: s.metrics, tracer: s.tracer},
		transfer:     &TransferExecutor{ledger: ledgerClient, metrics: s.metrics, tracer: s.tracer},
		treasury:     s.treasury,
		collection:   cfg.CollectionID,
		rewardToken:  cfg.RewardTokenID,
		rewardAmount: cfg.RewardAmount,
		imageURL:     cfg.ImageURL,
		now:          s.now,
		logger:       s.logger,
		metrics:      s.metrics,
		tracer:       s.tracer,
	}
	s.resolver = &Resolver{
		index:          index,
		fetcher:        fetcher,
		collection:     cfg.CollectionID,
		listTimeout:    cfg.ListTimeout,
		resolveTimeout: cfg.ResolveTimeout,
		logger:         s.logger,
		metrics:        s.metrics,
		tracer:         s.tracer,
	}
	return s, nil
}

// MintReceipt runs the mint pipeline. It returns an error only when no serial
// was created; a failed delivery is reported in the summary.
func (s *Service) MintReceipt(ctx context.Context, req models.MintRequest) (*models.MintSummary, error) {
	result, err := s.orchestrator.Run(ctx, req)
	if err != nil {
		return nil, err
	}

	summary := s.summarize(result)
	s.emit(ctx, req, result, summary)
	if result.State == models.StateDone && result.Transfer.Executed && s.loyalty != nil {
		s.background.Go(func() {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
			defer cancel()
			s.notifyLoyalty(ctx, req, summary)
		})
	}
	return summary, nil
}

// Wait blocks until background notifications started by MintReceipt finish.
// Each notification is bounded by notifyTimeout.
func (s *Service) Wait() {
	s.background.Wait()
}

// AssociateTokens associates account with the receipt collection and the
// reward token using the operator key. An existing association succeeds.
func (s *Service) AssociateTokens(ctx context.Context, account string) ([]ledger.TokenID, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "accountId is required")
	}
	tokens := []ledger.TokenID{s.cfg.CollectionID, s.cfg.RewardTokenID}

	res := s.associator.EnsureAssociated(ctx, ledger.AccountID(account), ledger.OperatorKey, tokens)
	if !res.OK() {
		s.logger.ErrorContext(ctx, "token association failed",
			"account", account,
			"error", res.Err,
		)
		return nil, dErrors.Wrap(res.Err, dErrors.CodeUpstream, "failed to associate tokens")
	}
	s.logger.InfoContext(ctx, "tokens associated",
		"account", account,
		"result", res.Status.String(),
	)
	return tokens, nil
}

// ListOwned returns the receipts held by account, native or hex form.
func (s *Service) ListOwned(ctx context.Context, account string) (*models.OwnedListing, error) {
	return s.resolver.ListOwned(ctx, account)
}

func (s *Service) summarize(result *models.MintResult) *models.MintSummary {
	asset := result.Asset
	summary := &models.MintSummary{
		Result:      result,
		ReceiptNFT:  asset.Ref(),
		MetadataURL: asset.MetadataURI,
		TestMode:    result.TestMode,
		NFTViewURL:  fmt.Sprintf("%s/token/%s/%d", strings.TrimRight(s.cfg.ExplorerURL, "/"), asset.CollectionID, asset.Serial),
	}
	switch {
	case result.TestMode:
		summary.Reward = models.RewardLabelTestMode
		summary.TxStatus = models.TxStatusSelfMint
	case result.State == models.StatePartial:
		summary.Reward = models.RewardLabelFailed
		summary.TxStatus = models.TxStatusTransferFailed
	default:
		summary.Reward = s.rewardLabel(result.Transfer.RewardAmount)
		summary.TxStatus = result.Transfer.Status
	}
	return summary
}

func (s *Service) rewardLabel(amount int64) string {
	units := models.RewardUnits(amount, s.cfg.RewardDecimals)
	if s.cfg.RewardSymbol == "" {
		return units.String()
	}
	return units.String() + " " + s.cfg.RewardSymbol
}

func (s *Service) emit(ctx context.Context, req models.MintRequest, result *models.MintResult, summary *models.MintSummary) {
	if s.events == nil {
		return
	}
	event := models.ReceiptEvent{
		Type:           models.EventReceiptMinted,
		ReceiptNFT:     summary.ReceiptNFT,
		CollectionID:   result.Asset.CollectionID,
		Serial:         result.Asset.Serial,
		MetadataURI:    result.Asset.MetadataURI,
		Customer:       req.Customer,
		Merchant:       req.Merchant,
		Total:          req.Total,
		State:          result.State,
		TransferStatus: summary.TxStatus,
		RewardAmount:   result.Transfer.RewardAmount,
		TestMode:       result.TestMode,
		OccurredAt:     s.now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish receipt event",
			"receipt_nft", summary.ReceiptNFT,
			"error", err,
		)
	}
}

func (s *Service) notifyLoyalty(ctx context.Context, req models.MintRequest, summary *models.MintSummary) {
	err := s.loyalty.Earn(ctx, models.Earning{
		Account:    req.Customer,
		ReceiptNFT: summary.ReceiptNFT,
		Total:      req.Total,
		Merchant:   req.Merchant,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to notify loyalty service",
			"receipt_nft", summary.ReceiptNFT,
			"customer", req.Customer,
			"error", err,
		)
	}
}
