// Package hedera implements ledger.Client on top of the Hedera Token Service.
package hedera

import (
	"context"
	"errors"
	"fmt"
	"time"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	"receiptmint/internal/ledger"
	"receiptmint/pkg/platform/sentinel"
)

// Config configures the operator handle.
type Config struct {
	Network       string
	OperatorID    string
	OperatorKey   string
	MaxTxFeeHbar  float64
	ValidDuration time.Duration
	Timeout       time.Duration
}

var _ ledger.Client = (*Client)(nil)

// Client is the process-wide ledger handle. It is immutable after New and
// safe for concurrent use; the SDK client serializes node selection itself.
type Client struct {
	sdk       *hedera.Client
	treasury  ledger.AccountID
	keys      map[ledger.KeyRef]hedera.PrivateKey
	maxTxFee  hedera.Hbar
	validFor  time.Duration
	opTimeout time.Duration
}

// New parses the operator credentials and connects an SDK client to network.
func New(cfg Config) (*Client, error) {
	operatorID, err := hedera.AccountIDFromString(cfg.OperatorID)
	if err != nil {
		return nil, fmt.Errorf("parse operator id: %w", err)
	}
	operatorKey, err := hedera.PrivateKeyFromString(cfg.OperatorKey)
	if err != nil {
		return nil, fmt.Errorf("parse operator key: %w", err)
	}
	if cfg.Timeout <= 0 {
		return nil, errors.New("ledger operation timeout must be positive")
	}

	sdk, err := hedera.ClientForName(cfg.Network)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Network, err)
	}
	sdk.SetOperator(operatorID, operatorKey)

	return &Client{
		sdk:      sdk,
		treasury: ledger.AccountID(operatorID.String()),
		keys: map[ledger.KeyRef]hedera.PrivateKey{
			ledger.OperatorKey: operatorKey,
		},
		maxTxFee:  hedera.NewHbar(cfg.MaxTxFeeHbar),
		validFor:  cfg.ValidDuration,
		opTimeout: cfg.Timeout,
	}, nil
}

// Close releases the SDK's node connections.
func (c *Client) Close() error {
	return c.sdk.Close()
}

// Treasury returns the operator account.
func (c *Client) Treasury() ledger.AccountID {
	return c.treasury
}

// AssociateTokens submits a token association for account signed with key.
func (c *Client) AssociateTokens(ctx context.Context, account ledger.AccountID, key ledger.KeyRef, tokens []ledger.TokenID) (ledger.Receipt, error) {
	const op = "associate"

	accountID, err := hedera.AccountIDFromString(string(account))
	if err != nil {
		return ledger.Receipt{}, fmt.Errorf("%s: invalid account %q: %w", op, account, err)
	}
	tokenIDs, err := parseTokenIDs(tokens)
	if err != nil {
		return ledger.Receipt{}, fmt.Errorf("%s: %w", op, err)
	}
	signer, ok := c.keys[key]
	if !ok {
		return ledger.Receipt{}, fmt.Errorf("%s: unknown signing key %q", op, key)
	}

	tx, err := hedera.NewTokenAssociateTransaction().
		SetAccountID(accountID).
		SetTokenIDs(tokenIDs...).
		SetMaxTransactionFee(c.maxTxFee).
		SetTransactionValidDuration(c.validFor).
		FreezeWith(c.sdk)
	if err != nil {
		return ledger.Receipt{}, fmt.Errorf("%s: freeze: %w", op, err)
	}

	res, err := c.execute(ctx, op, func() (hedera.TransactionResponse, error) {
		return tx.Sign(signer).Execute(c.sdk)
	})
	if err != nil {
		return ledger.Receipt{}, err
	}
	return res.toReceipt(), nil
}

// MintNFT mints one serial of collection with metadata as its payload.
func (c *Client) MintNFT(ctx context.Context, collection ledger.TokenID, metadata []byte) (ledger.MintReceipt, error) {
	const op = "mint"

	if len(metadata) > ledger.MaxMetadataBytes {
		return ledger.MintReceipt{}, fmt.Errorf("%s: metadata is %d bytes, limit is %d", op, len(metadata), ledger.MaxMetadataBytes)
	}
	tokenID, err := hedera.TokenIDFromString(string(collection))
	if err != nil {
		return ledger.MintReceipt{}, fmt.Errorf("%s: invalid token %q: %w", op, collection, err)
	}

	tx, err := hedera.NewTokenMintTransaction().
		SetTokenID(tokenID).
		SetMetadata(metadata).
		SetMaxTransactionFee(c.maxTxFee).
		SetTransactionValidDuration(c.validFor).
		FreezeWith(c.sdk)
	if err != nil {
		return ledger.MintReceipt{}, fmt.Errorf("%s: freeze: %w", op, err)
	}

	res, err := c.execute(ctx, op, func() (hedera.TransactionResponse, error) {
		return tx.Execute(c.sdk)
	})
	if err != nil {
		return ledger.MintReceipt{}, err
	}
	return ledger.MintReceipt{
		Receipt: res.toReceipt(),
		Serials: res.receipt.SerialNumbers,
	}, nil
}

// Transfer moves an NFT serial and a fungible reward in one transaction.
// The operator key signs; req.From must be the treasury.
func (c *Client) Transfer(ctx context.Context, req ledger.TransferRequest) (ledger.Receipt, error) {
	const op = "transfer"

	if req.From != c.treasury {
		return ledger.Receipt{}, fmt.Errorf("%s: only the treasury %s can be debited, got %s", op, c.treasury, req.From)
	}
	from, err := hedera.AccountIDFromString(string(req.From))
	if err != nil {
		return ledger.Receipt{}, fmt.Errorf("%s: invalid sender %q: %w", op, req.From, err)
	}
	to, err := hedera.AccountIDFromString(string(req.To))
	if err != nil {
		return ledger.Receipt{}, fmt.Errorf("%s: invalid recipient %q: %w", op, req.To, err)
	}
	collectionID, err := hedera.TokenIDFromString(string(req.Collection))
	if err != nil {
		return ledger.Receipt{}, fmt.Errorf("%s: invalid collection %q: %w", op, req.Collection, err)
	}
	rewardID, err := hedera.TokenIDFromString(string(req.RewardToken))
	if err != nil {
		return ledger.Receipt{}, fmt.Errorf("%s: invalid reward token %q: %w", op, req.RewardToken, err)
	}

	nft := hedera.NftID{TokenID: collectionID, SerialNumber: req.Serial}
	tx, err := hedera.NewTransferTransaction().
		AddNftTransfer(nft, from, to).
		AddTokenTransfer(rewardID, from, -req.RewardAmount).
		AddTokenTransfer(rewardID, to, req.RewardAmount).
		SetTransactionMemo(req.Memo).
		SetMaxTransactionFee(c.maxTxFee).
		SetTransactionValidDuration(c.validFor).
		FreezeWith(c.sdk)
	if err != nil {
		return ledger.Receipt{}, fmt.Errorf("%s: freeze: %w", op, err)
	}

	res, err := c.execute(ctx, op, func() (hedera.TransactionResponse, error) {
		return tx.Execute(c.sdk)
	})
	if err != nil {
		return ledger.Receipt{}, err
	}
	return res.toReceipt(), nil
}

type executed struct {
	receipt hedera.TransactionReceipt
	txID    string
}

func (e executed) toReceipt() ledger.Receipt {
	return ledger.Receipt{TransactionID: e.txID, Status: e.receipt.Status.String()}
}

// execute submits a frozen transaction and waits for its receipt, bounded by
// the operation timeout. The SDK call is not cancellable, so on timeout the
// submission may still land; callers treat that as an unknown outcome.
func (c *Client) execute(ctx context.Context, op string, submit func() (hedera.TransactionResponse, error)) (executed, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	res, err := await(ctx, func() (executed, error) {
		resp, err := submit()
		if err != nil {
			return executed{}, err
		}
		out := executed{txID: resp.TransactionID.String()}
		out.receipt, err = resp.GetReceipt(c.sdk)
		return out, err
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return executed{}, fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, ctxErr)
		}
		return executed{}, translate(op, res.txID, err)
	}
	if res.receipt.Status != hedera.StatusSuccess {
		return executed{}, &ledger.StatusError{Op: op, Status: res.receipt.Status.String(), TransactionID: res.txID}
	}
	return res, nil
}

// translate lifts SDK status errors into ledger.StatusError so services can
// match on status names without importing the SDK.
func translate(op, txID string, err error) error {
	var receiptErr hedera.ErrHederaReceiptStatus
	if errors.As(err, &receiptErr) {
		return &ledger.StatusError{Op: op, Status: receiptErr.Status.String(), TransactionID: txID, Err: err}
	}
	var precheckErr hedera.ErrHederaPreCheckStatus
	if errors.As(err, &precheckErr) {
		return &ledger.StatusError{Op: op, Status: precheckErr.Status.String(), TransactionID: txID, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func parseTokenIDs(tokens []ledger.TokenID) ([]hedera.TokenID, error) {
	if len(tokens) == 0 {
		return nil, errors.New("no tokens to associate")
	}
	out := make([]hedera.TokenID, 0, len(tokens))
	for _, t := range tokens {
		id, err := hedera.TokenIDFromString(string(t))
		if err != nil {
			return nil, fmt.Errorf("invalid token %q: %w", t, err)
		}
		out = append(out, id)
	}
	return out, nil
}

type result[T any] struct {
	val T
	err error
}

// await runs fn in its own goroutine and returns early if ctx ends first.
func await[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	ch := make(chan result[T], 1)
	go func() {
		v, err := fn()
		ch <- result[T]{val: v, err: err}
	}()
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case r := <-ch:
		return r.val, r.err
	}
}
