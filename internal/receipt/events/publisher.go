// Package events publishes receipt lifecycle records to Kafka.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"receiptmint/internal/receipt/models"
	"receiptmint/pkg/requestcontext"
)

// Producer is the subset of *kgo.Client the publisher needs. TryProduce
// fails fast with kgo.ErrMaxBuffered instead of waiting for buffer space.
type Producer interface {
	TryProduce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
}

// Publisher writes receipt events to a single topic, keyed by customer
// account so one customer's events stay ordered within a partition.
type Publisher struct {
	producer Producer
	topic    string
	logger   *slog.Logger
}

func NewPublisher(producer Producer, topic string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{producer: producer, topic: topic, logger: logger}
}

// Publish enqueues the event and returns without waiting for broker acks or
// buffer space. A full buffer drops the event. Delivery failures are logged
// from the produce callback; the client's delivery timeout bounds retries.
func (p *Publisher) Publish(ctx context.Context, event models.ReceiptEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode receipt event: %w", err)
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.Customer),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "type", Value: []byte(event.Type)},
		},
	}
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		record.Headers = append(record.Headers, kgo.RecordHeader{Key: "request_id", Value: []byte(requestID)})
	}

	// the HTTP request may finish before the broker acks
	p.producer.TryProduce(context.WithoutCancel(ctx), record, func(r *kgo.Record, err error) {
		if errors.Is(err, kgo.ErrMaxBuffered) {
			p.logger.Warn("receipt event dropped, producer buffer full",
				"request_id", requestID,
				"receipt_nft", event.ReceiptNFT,
			)
			return
		}
		if err != nil {
			p.logger.Error("failed to deliver receipt event",
				"request_id", requestID,
				"receipt_nft", event.ReceiptNFT,
				"topic", r.Topic,
				"error", err,
			)
			return
		}
		p.logger.Debug("receipt event delivered",
			"request_id", requestID,
			"receipt_nft", event.ReceiptNFT,
			"partition", r.Partition,
			"offset", r.Offset,
		)
	})
	return nil
}
