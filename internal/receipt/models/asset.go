package models

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"receiptmint/internal/ledger"
)

// MintedAsset is one receipt serial created by a successful mint.
//
// Invariants:
//   - Only constructed from a mint confirmation reporting success
//   - Serial is positive and unique within CollectionID
//   - Owned by the treasury at creation
type MintedAsset struct {
	CollectionID ledger.TokenID
	Serial       int64
	MetadataURI  string
}

// Ref is the "<collection>::<serial>" form clients use to identify a receipt.
func (a MintedAsset) Ref() string {
	return fmt.Sprintf("%s::%d", a.CollectionID, a.Serial)
}

// TransferOutcome reports what happened to the NFT + reward transfer.
// Executed is false with RewardAmount 0 exactly when the customer is the
// treasury and the transfer was skipped.
type TransferOutcome struct {
	Executed     bool
	Status       string
	RewardAmount int64
}

// RewardUnits converts a raw token amount into display units for a token
// with the given number of decimals.
func RewardUnits(amount int64, decimals int32) decimal.Decimal {
	return decimal.New(amount, -decimals)
}

// OwnedAssetView is a receipt NFT held by an account, rebuilt per request.
// Metadata is null when the payload could not be resolved to JSON.
type OwnedAssetView struct {
	CollectionID string          `json:"collectionId"`
	Serial       int64           `json:"serial"`
	CreatedAt    string          `json:"createdAt"`
	MetadataURI  string          `json:"metadataUri"`
	Metadata     json.RawMessage `json:"metadata"`
}

// MintRequest is a validated request to issue one receipt.
type MintRequest struct {
	Merchant string
	Items    []Item
	Total    float64
	Customer ledger.AccountID
}

// MintResult is the terminal outcome of one orchestration run. Asset is set
// for StateDone and StatePartial; TransferErr is set only for StatePartial.
type MintResult struct {
	State       State
	Trail       []State
	Asset       MintedAsset
	Document    ReceiptDocument
	Transfer    TransferOutcome
	TestMode    bool
	TransferErr error
}

// Partial reports whether the receipt was minted but not delivered.
func (r *MintResult) Partial() bool {
	return r.State == StatePartial
}
