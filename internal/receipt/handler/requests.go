package handler

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"receiptmint/internal/ledger"
	"receiptmint/internal/receipt/models"
	dErrors "receiptmint/pkg/domain-errors"
)

const (
	maxMerchantLength = 100
	maxItems          = 200
)

// ItemRequest is one purchased line in a mint request.
type ItemRequest struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// MintReceiptRequest is the HTTP request body for POST /mint-receipt.
type MintReceiptRequest struct {
	Merchant       string        `json:"merchant"`
	Items          []ItemRequest `json:"items"`
	Total          *float64      `json:"total"`
	CustomerWallet string        `json:"customerWallet"`
}

// Validate normalizes and checks the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *MintReceiptRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.Merchant = strings.TrimSpace(r.Merchant)
	r.CustomerWallet = strings.TrimSpace(r.CustomerWallet)
	switch {
	case r.Merchant == "":
		return dErrors.New(dErrors.CodeValidation, "merchant is required")
	case len(r.Merchant) > maxMerchantLength:
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("merchant must be at most %d characters", maxMerchantLength))
	case r.CustomerWallet == "":
		return dErrors.New(dErrors.CodeValidation, "customerWallet is required")
	case !models.IsNativeAccountID(r.CustomerWallet):
		return dErrors.New(dErrors.CodeValidation, "customerWallet must be an account id of the form shard.realm.num")
	case r.Total == nil:
		return dErrors.New(dErrors.CodeValidation, "total is required")
	case decimal.NewFromFloat(*r.Total).IsNegative():
		return dErrors.New(dErrors.CodeValidation, "total must not be negative")
	case len(r.Items) == 0:
		return dErrors.New(dErrors.CodeValidation, "items must not be empty")
	case len(r.Items) > maxItems:
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("at most %d items are allowed", maxItems))
	}

	for i := range r.Items {
		item := &r.Items[i]
		item.Name = strings.TrimSpace(item.Name)
		if item.Name == "" {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("items[%d].name is required", i))
		}
		if decimal.NewFromFloat(item.Price).IsNegative() {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("items[%d].price must not be negative", i))
		}
		if item.Quantity < 1 {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("items[%d].quantity must be at least 1", i))
		}
	}
	return nil
}

// ToModel converts a validated request.
func (r *MintReceiptRequest) ToModel() models.MintRequest {
	items := make([]models.Item, len(r.Items))
	for i, it := range r.Items {
		items[i] = models.Item{Name: it.Name, Price: it.Price, Quantity: it.Quantity}
	}
	return models.MintRequest{
		Merchant: r.Merchant,
		Items:    items,
		Total:    *r.Total,
		Customer: ledger.AccountID(r.CustomerWallet),
	}
}

// AssociateTokensRequest is the HTTP request body for POST /associate-tokens.
type AssociateTokensRequest struct {
	AccountID string `json:"accountId"`
}

func (r *AssociateTokensRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.AccountID = strings.TrimSpace(r.AccountID)
	if r.AccountID == "" {
		return dErrors.New(dErrors.CodeValidation, "accountId is required")
	}
	return nil
}
