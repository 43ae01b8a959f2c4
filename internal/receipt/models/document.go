package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Item is one purchased line on a receipt.
type Item struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Attribute is a display trait in the token metadata convention wallets read.
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// Properties carries the purchase itself.
type Properties struct {
	Merchant string  `json:"merchant"`
	Items    []Item  `json:"items"`
	Total    float64 `json:"total"`
	Date     string  `json:"date"`
}

// ReceiptDocument is the off-ledger metadata document a receipt NFT points to.
//
// Invariants:
//   - Immutable once published; identified externally by its storage URI
//   - Properties.Date is the UTC RFC 3339 time the document was built
type ReceiptDocument struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       string      `json:"image,omitempty"`
	Attributes  []Attribute `json:"attributes"`
	Properties  Properties  `json:"properties"`
}

// NewReceiptDocument builds the document for one purchase at now.
func NewReceiptDocument(merchant string, items []Item, total float64, imageURL string, now time.Time) ReceiptDocument {
	date := now.UTC().Format(time.RFC3339)
	return ReceiptDocument{
		Name:        fmt.Sprintf("Receipt - %s", merchant),
		Description: fmt.Sprintf("Digital purchase receipt from %s", merchant),
		Image:       imageURL,
		Attributes: []Attribute{
			{TraitType: "Merchant", Value: merchant},
			{TraitType: "Total", Value: FormatAmount(total)},
			{TraitType: "Items", Value: strconv.Itoa(len(items))},
			{TraitType: "Date", Value: date},
		},
		Properties: Properties{
			Merchant: merchant,
			Items:    items,
			Total:    total,
			Date:     date,
		},
	}
}

// FormatAmount renders a currency amount with two decimal places.
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// FileName is the upload name hint for a receipt document.
func FileName(merchant string, now time.Time) string {
	return fmt.Sprintf("receipt-%s-%d.json", slug(merchant), now.UnixMilli())
}

func slug(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		default:
			if len(out) > 0 && out[len(out)-1] != '-' {
				out = append(out, '-')
			}
		}
	}
	for len(out) > 0 && out[len(out)-1] == '-' {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return "merchant"
	}
	return string(out)
}
