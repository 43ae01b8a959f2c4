package models

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	dErrors "receiptmint/pkg/domain-errors"
)

// AddressFormat is the closed set of account address forms the read path
// accepts.
type AddressFormat int

const (
	// FormatNative is the ledger's "shard.realm.num" account identifier.
	FormatNative AddressFormat = iota + 1
	// FormatAlternateHex is a 0x-prefixed EVM-style address.
	FormatAlternateHex
)

func (f AddressFormat) String() string {
	switch f {
	case FormatNative:
		return "native"
	case FormatAlternateHex:
		return "alternate_hex"
	default:
		return "unknown"
	}
}

// DetectFormat classifies raw. It never fails for a non-empty address.
func DetectFormat(raw string) AddressFormat {
	if has0xPrefix(raw) {
		return FormatAlternateHex
	}
	return FormatNative
}

// Normalize returns the canonical form of raw under f. Hex addresses are
// lower-cased; well-formed 20-byte addresses are also left-padded to full
// width. Native identifiers pass through trimmed.
func (f AddressFormat) Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if f != FormatAlternateHex {
		return raw
	}
	if common.IsHexAddress(raw) {
		return strings.ToLower(common.HexToAddress(raw).Hex())
	}
	return strings.ToLower(raw)
}

// AccountAddress is an account address detected and normalized once.
type AccountAddress struct {
	Original   string
	Normalized string
	Format     AddressFormat
}

// ParseAccountAddress detects and normalizes raw.
func ParseAccountAddress(raw string) (AccountAddress, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return AccountAddress{}, dErrors.New(dErrors.CodeValidation, "accountId is required")
	}
	format := DetectFormat(trimmed)
	return AccountAddress{
		Original:   raw,
		Normalized: format.Normalize(trimmed),
		Format:     format,
	}, nil
}

// IsNativeAccountID reports whether raw is a "shard.realm.num" identifier
// made of three unsigned decimal parts.
func IsNativeAccountID(raw string) bool {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return false
	}
	for _, part := range parts {
		if part == "" || len(part) > 19 {
			return false
		}
		for _, c := range part {
			if c < '0' || c > '9' {
				return false
			}
		}
	}
	return true
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
