package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/mock/gomock"

	"receiptmint/internal/ledger"
	"receiptmint/internal/receipt/models"
	"receiptmint/internal/receipt/service/mocks"
)

func TestTransferExecutor_SelfTransferIsSkipped(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(0)
	exec := &TransferExecutor{ledger: client, tracer: noop.NewTracerProvider().Tracer("test")}

	outcome, err := exec.Transfer(context.Background(), ledger.TransferRequest{
		From: treasury, To: treasury, Serial: 1, RewardAmount: 10,
	})

	require.NoError(t, err)
	assert.False(t, outcome.Executed)
	assert.Zero(t, outcome.RewardAmount)
	assert.Equal(t, models.TxStatusSelfMint, outcome.Status)
}

func TestTransferExecutor_MemoIsBounded(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().Transfer(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req ledger.TransferRequest) (ledger.Receipt, error) {
			assert.LessOrEqual(t, len(req.Memo), maxMemoBytes)
			return ledger.Receipt{Status: ledger.StatusSuccess}, nil
		})
	exec := &TransferExecutor{ledger: client, tracer: noop.NewTracerProvider().Tracer("test")}

	outcome, err := exec.Transfer(context.Background(), ledger.TransferRequest{
		From: treasury, To: customer, Serial: 1, RewardAmount: 10,
		Memo: "Receipt 0.0.7002::1 from " + strings.Repeat("é", 80),
	})

	require.NoError(t, err)
	assert.True(t, outcome.Executed)
	assert.Equal(t, int64(10), outcome.RewardAmount)
}

func TestTruncateMemo(t *testing.T) {
	assert.Equal(t, "short", truncateMemo("short"))
	long := strings.Repeat("a", 99) + "é"
	got := truncateMemo(long)
	assert.Equal(t, strings.Repeat("a", 99), got)
}
