package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "receiptmint/pkg/domain-errors"
)

func TestParseAccountAddress(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		format     AddressFormat
		normalized string
	}{
		{name: "native id passes through", raw: "0.0.1001", format: FormatNative, normalized: "0.0.1001"},
		{name: "native id is trimmed", raw: " 0.0.1001 ", format: FormatNative, normalized: "0.0.1001"},
		{name: "short hex is lower-cased", raw: "0xABC", format: FormatAlternateHex, normalized: "0xabc"},
		{
			name:       "full hex address is lower-cased",
			raw:        "0x00000000000000000000000000000000000003E9",
			format:     FormatAlternateHex,
			normalized: "0x00000000000000000000000000000000000003e9",
		},
		{
			name:       "upper-case prefix is recognized",
			raw:        "0X5AAEB6053F3E94C9B9A09F33669435E7EF1BEAED",
			format:     FormatAlternateHex,
			normalized: "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := ParseAccountAddress(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.format, addr.Format)
			assert.Equal(t, tt.normalized, addr.Normalized)
			assert.Equal(t, tt.raw, addr.Original)
		})
	}

	t.Run("empty address is a validation error", func(t *testing.T) {
		_, err := ParseAccountAddress("  ")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestIsNativeAccountID(t *testing.T) {
	for _, raw := range []string{"0.0.1001", "0.0.0", "1.2.3"} {
		assert.True(t, IsNativeAccountID(raw), raw)
	}
	for _, raw := range []string{"", "not-an-account", "0.0", "0.0.1001.1", "0.0.-1", "0..1", "0.0.abc", "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", "0.0.12345678901234567890"} {
		assert.False(t, IsNativeAccountID(raw), raw)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	for _, raw := range []string{"0xAbC", "0.0.77", "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"} {
		f := DetectFormat(raw)
		once := f.Normalize(raw)
		assert.Equal(t, once, f.Normalize(once), raw)
	}
}

func TestNewReceiptDocument(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 30, 0, 0, time.FixedZone("X", 3600))
	items := []Item{{Name: "Latte", Price: 4.5, Quantity: 1}}

	doc := NewReceiptDocument("Cafe X", items, 4.5, "https://img.example/r.png", now)

	assert.Equal(t, "Receipt - Cafe X", doc.Name)
	assert.Equal(t, "2024-03-01T11:30:00Z", doc.Properties.Date)
	assert.Equal(t, items, doc.Properties.Items)
	assert.Contains(t, doc.Attributes, Attribute{TraitType: "Total", Value: "4.50"})
	assert.Contains(t, doc.Attributes, Attribute{TraitType: "Items", Value: "1"})

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"trait_type":"Merchant"`)
	assert.Contains(t, string(raw), `"image":"https://img.example/r.png"`)
}

func TestFileName(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	assert.Equal(t, "receipt-cafe-x-1700000000000.json", FileName("Cafe X!", now))
	assert.Equal(t, "receipt-merchant-1700000000000.json", FileName("!!!", now))
}

func TestStageError(t *testing.T) {
	cause := errors.New("401 Unauthorized")
	err := fmt.Errorf("publish: %w", NewStageError(StageStorage, "INVALID_CREDENTIALS", cause))

	assert.ErrorIs(t, err, ErrStorageUpload)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrMint)
	stage, ok := StageOf(err)
	require.True(t, ok)
	assert.Equal(t, StageStorage, stage)
	assert.Equal(t, "publish: storage upload failed: INVALID_CREDENTIALS: 401 Unauthorized", err.Error())
}

func TestStateTransitions(t *testing.T) {
	assert.True(t, StateStart.CanTransitionTo(StateAssociating))
	assert.True(t, StateMinting.CanTransitionTo(StateDone))
	assert.True(t, StateTransferring.CanTransitionTo(StatePartial))
	assert.False(t, StatePublishing.CanTransitionTo(StatePartial))
	assert.False(t, StateDone.CanTransitionTo(StateFailed))
	assert.True(t, StatePartial.Terminal())
	assert.False(t, StateMinting.Terminal())
}

func TestMintedAssetRef(t *testing.T) {
	a := MintedAsset{CollectionID: "0.0.7002", Serial: 12}
	assert.Equal(t, "0.0.7002::12", a.Ref())
}

func TestRewardUnits(t *testing.T) {
	assert.Equal(t, "10", RewardUnits(10, 0).String())
	assert.Equal(t, "0.25", RewardUnits(25, 2).String())
}

func TestOwnedAssetView_NullMetadata(t *testing.T) {
	raw, err := json.Marshal(OwnedAssetView{CollectionID: "0.0.7002", Serial: 1})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"metadata":null`)
}
