package service

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks MetadataPublisher,MetadataFetcher,OwnershipIndex,EventPublisher,LoyaltyNotifier
//go:generate mockgen -destination=mocks/ledger.go -package=mocks receiptmint/internal/ledger Client

import (
	"context"
	"encoding/json"

	"receiptmint/internal/receipt/mirror"
	"receiptmint/internal/receipt/models"
)

// MetadataPublisher uploads a JSON document and returns a resolvable URI.
type MetadataPublisher interface {
	Publish(ctx context.Context, doc any, filename string) (string, error)
}

// MetadataFetcher resolves a metadata URI into a JSON document.
type MetadataFetcher interface {
	Fetch(ctx context.Context, uri string) (json.RawMessage, error)
}

// OwnershipIndex lists the serials of a collection held by an account.
type OwnershipIndex interface {
	ListNFTs(ctx context.Context, account, collection string) ([]mirror.NFT, error)
}

// EventPublisher emits receipt events. Failures are logged, never surfaced.
type EventPublisher interface {
	Publish(ctx context.Context, event models.ReceiptEvent) error
}

// LoyaltyNotifier tells the points collaborator about a delivered receipt.
type LoyaltyNotifier interface {
	Earn(ctx context.Context, earning models.Earning) error
}
