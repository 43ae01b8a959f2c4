package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"receiptmint/internal/receipt/models"
	"receiptmint/pkg/requestcontext"
)

type fakeProducer struct {
	records []*kgo.Record
	ctxErr  error
	err     error
}

func (f *fakeProducer) TryProduce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error)) {
	f.records = append(f.records, r)
	f.ctxErr = ctx.Err()
	promise(r, f.err)
}

func sampleEvent() models.ReceiptEvent {
	return models.ReceiptEvent{
		Type:           models.EventReceiptMinted,
		ReceiptNFT:     "0.0.7002::12",
		CollectionID:   "0.0.7002",
		Serial:         12,
		Customer:       "0.0.1001",
		Merchant:       "Cafe X",
		Total:          4.5,
		State:          models.StateDone,
		TransferStatus: "SUCCESS",
		RewardAmount:   10,
		OccurredAt:     time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestPublish_RecordShape(t *testing.T) {
	producer := &fakeProducer{}
	p := NewPublisher(producer, "receipt-events", nil)

	ctx := requestcontext.WithRequestID(context.Background(), "req-1")
	require.NoError(t, p.Publish(ctx, sampleEvent()))
	require.Len(t, producer.records, 1)

	rec := producer.records[0]
	assert.Equal(t, "receipt-events", rec.Topic)
	assert.Equal(t, []byte("0.0.1001"), rec.Key)
	assert.Contains(t, rec.Headers, kgo.RecordHeader{Key: "type", Value: []byte("receipt.minted")})
	assert.Contains(t, rec.Headers, kgo.RecordHeader{Key: "request_id", Value: []byte("req-1")})

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Value, &decoded))
	assert.Equal(t, "0.0.7002::12", decoded["receiptNFT"])
	assert.Equal(t, "DONE", decoded["state"])
	assert.Equal(t, float64(12), decoded["serial"])
}

func TestPublish_DetachesFromRequestCancellation(t *testing.T) {
	producer := &fakeProducer{}
	p := NewPublisher(producer, "receipt-events", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, p.Publish(ctx, sampleEvent()))
	assert.NoError(t, producer.ctxErr)
}

func TestPublish_DeliveryFailureIsNotReturned(t *testing.T) {
	producer := &fakeProducer{err: errors.New("broker down")}
	p := NewPublisher(producer, "receipt-events", nil)

	assert.NoError(t, p.Publish(context.Background(), sampleEvent()))
	assert.Len(t, producer.records, 1)
}

func TestPublish_FullBufferDropsWithoutBlocking(t *testing.T) {
	producer := &fakeProducer{err: kgo.ErrMaxBuffered}
	p := NewPublisher(producer, "receipt-events", nil)

	assert.NoError(t, p.Publish(context.Background(), sampleEvent()))
	assert.Len(t, producer.records, 1)
}

func TestPublish_UnreachableBrokerDoesNotBlockCaller(t *testing.T) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers("127.0.0.1:1"),
		kgo.MaxBufferedRecords(1),
		kgo.RecordDeliveryTimeout(time.Second),
	)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	p := NewPublisher(client, "receipt-events", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 3 {
			_ = p.Publish(ctx, sampleEvent())
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full producer buffer")
	}
}
