package models

import (
	"time"

	"receiptmint/internal/ledger"
)

// Display values for the transfer status of a minted receipt.
const (
	TxStatusSelfMint       = "NFT_MINTED_ONLY"
	TxStatusTransferFailed = "TRANSFER_FAILED"
	RewardLabelTestMode    = "No reward (testing mode)"
	RewardLabelFailed      = "Reward transfer failed"
)

// MintSummary is what a caller is told about a mint that reached the ledger.
type MintSummary struct {
	Result      *MintResult
	ReceiptNFT  string
	MetadataURL string
	Reward      string
	TxStatus    string
	NFTViewURL  string
	TestMode    bool
}

// OwnedListing is the result of an ownership query.
type OwnedListing struct {
	Account         string
	OriginalAccount string
	Format          AddressFormat
	Assets          []OwnedAssetView
}

// EventReceiptMinted is the type of ReceiptEvent emitted for every mint.
const EventReceiptMinted = "receipt.minted"

// ReceiptEvent is the record published to the receipt event stream once a
// serial exists, whether or not it reached the customer.
type ReceiptEvent struct {
	Type           string           `json:"type"`
	ReceiptNFT     string           `json:"receiptNFT"`
	CollectionID   ledger.TokenID   `json:"collectionId"`
	Serial         int64            `json:"serial"`
	MetadataURI    string           `json:"metadataUri"`
	Customer       ledger.AccountID `json:"customer"`
	Merchant       string           `json:"merchant"`
	Total          float64          `json:"total"`
	State          State            `json:"state"`
	TransferStatus string           `json:"transferStatus"`
	RewardAmount   int64            `json:"rewardAmount"`
	TestMode       bool             `json:"testMode"`
	OccurredAt     time.Time        `json:"occurredAt"`
}

// Earning is the notification sent to the loyalty collaborator for a
// delivered receipt.
type Earning struct {
	Account    ledger.AccountID `json:"account"`
	ReceiptNFT string           `json:"receiptNFT"`
	Total      float64          `json:"total"`
	Merchant   string           `json:"merchant"`
}
