// Package ledger defines the port the receipt services use to talk to the
// distributed ledger. Adapters (see ledger/hedera) translate SDK types and
// errors into the values below so services never import an SDK.
package ledger

import (
	"context"
	"errors"
	"fmt"
)

// AccountID is a native ledger account identifier ("shard.realm.num").
type AccountID string

// TokenID identifies a token type: the receipt collection or the reward token.
type TokenID string

// KeyRef names a signing key held by the ledger client. Keys never leave the
// adapter; callers pick one by reference.
type KeyRef string

// OperatorKey is the treasury/operator key every client is built with.
const OperatorKey KeyRef = "operator"

// Ledger status names services care about. Adapters report upstream status
// codes verbatim in StatusError.Status.
const (
	StatusSuccess                = "SUCCESS"
	StatusTokenAlreadyAssociated = "TOKEN_ALREADY_ASSOCIATED_TO_ACCOUNT"
)

// MaxMetadataBytes is the ledger's per-serial metadata limit.
const MaxMetadataBytes = 100

// Receipt is the confirmation record of one submitted transaction.
type Receipt struct {
	TransactionID string
	Status        string
}

// MintReceipt is a confirmation record carrying the serials created by a mint.
type MintReceipt struct {
	Receipt
	Serials []int64
}

// TransferRequest describes one atomic transaction moving an NFT serial and a
// fungible reward from one account to another.
type TransferRequest struct {
	Collection   TokenID
	Serial       int64
	From         AccountID
	To           AccountID
	RewardToken  TokenID
	RewardAmount int64
	Memo         string
}

// Client is the long-lived, authenticated handle bound to the treasury account.
// Implementations must be safe for concurrent use.
type Client interface {
	// Treasury returns the operator account that owns freshly minted serials.
	Treasury() AccountID

	// AssociateTokens registers account to hold tokens, signed with key, and
	// waits for the confirmation record.
	AssociateTokens(ctx context.Context, account AccountID, key KeyRef, tokens []TokenID) (Receipt, error)

	// MintNFT creates exactly one serial under collection carrying metadata,
	// and waits for the confirmation record.
	MintNFT(ctx context.Context, collection TokenID, metadata []byte) (MintReceipt, error)

	// Transfer submits req as a single transaction and waits for confirmation.
	Transfer(ctx context.Context, req TransferRequest) (Receipt, error)
}

// StatusError reports a ledger rejection (precheck or receipt) with the
// upstream status code kept verbatim.
type StatusError struct {
	Op            string
	Status        string
	TransactionID string
	Err           error
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: ledger status %s: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: ledger status %s", e.Op, e.Status)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// StatusOf returns the upstream status carried by err, or "" if none.
func StatusOf(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return ""
}

// IsAlreadyAssociated reports whether err is the ledger's "account already
// holds this token" conflict. It is the only place that knows the status name.
func IsAlreadyAssociated(err error) bool {
	return StatusOf(err) == StatusTokenAlreadyAssociated
}
