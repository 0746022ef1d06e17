// internal/adapters/messaging/kafka.go
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ammerola/mfg-erp/internal/core/domain"
	"github.com/ammerola/mfg-erp/internal/core/ports"
)

// EventTypeLowStock is the event-type header of reorder alerts.
const EventTypeLowStock = "low_stock"

// KafkaConfig configures the alert producer.
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
	WriteTimeout time.Duration
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaAlertPublisher writes reorder alerts to a Kafka topic, keyed by
// product and warehouse so alerts for one record stay ordered.
type KafkaAlertPublisher struct {
	writer       messageWriter
	topic        string
	writeTimeout time.Duration
	logger       *slog.Logger
}

var _ ports.AlertPublisher = (*KafkaAlertPublisher)(nil)

// NewKafkaAlertPublisher creates a publisher for cfg.Topic.
func NewKafkaAlertPublisher(cfg KafkaConfig, logger *slog.Logger) *KafkaAlertPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafka.RequireOne,
	}
	return newKafkaAlertPublisher(writer, cfg.Topic, cfg.WriteTimeout, logger)
}

func newKafkaAlertPublisher(writer messageWriter, topic string, writeTimeout time.Duration, logger *slog.Logger) *KafkaAlertPublisher {
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	return &KafkaAlertPublisher{
		writer:       writer,
		topic:        topic,
		writeTimeout: writeTimeout,
		logger:       logger.With(slog.String("component", "kafka_publisher"), slog.String("topic", topic)),
	}
}

// PublishLowStock writes all alerts in one batch.
func (p *KafkaAlertPublisher) PublishLowStock(ctx context.Context, alerts ...domain.LowStockAlert) error {
	if len(alerts) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(alerts))
	for _, a := range alerts {
		msg, err := alertMessage(a)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	ctx, cancel := context.WithTimeout(ctx, p.writeTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to write low stock alerts to kafka: %w", err)
	}

	p.logger.DebugContext(ctx, "low stock alerts written", slog.Int("count", len(msgs)))
	return nil
}

// Close flushes pending writes.
func (p *KafkaAlertPublisher) Close() error {
	return p.writer.Close()
}

// AlertKey is the partition key of an alert.
func AlertKey(productID, warehouseID int64) string {
	return strconv.FormatInt(productID, 10) + ":" + strconv.FormatInt(warehouseID, 10)
}

func alertMessage(a domain.LowStockAlert) (kafka.Message, error) {
	value, err := json.Marshal(a)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal low stock alert: %w", err)
	}
	return kafka.Message{
		Key:   []byte(AlertKey(a.ProductID, a.WarehouseID)),
		Value: value,
		Time:  a.DetectedAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(EventTypeLowStock)},
		},
	}, nil
}

// LogAlertPublisher logs alerts instead of sending them. It is used when
// no broker is configured.
type LogAlertPublisher struct {
	logger *slog.Logger
}

var _ ports.AlertPublisher = (*LogAlertPublisher)(nil)

// NewLogAlertPublisher creates a publisher that only logs.
func NewLogAlertPublisher(logger *slog.Logger) *LogAlertPublisher {
	return &LogAlertPublisher{logger: logger.With(slog.String("component", "log_publisher"))}
}

func (p *LogAlertPublisher) PublishLowStock(ctx context.Context, alerts ...domain.LowStockAlert) error {
	for _, a := range alerts {
		p.logger.WarnContext(ctx, "low stock",
			slog.Int64("product_id", a.ProductID),
			slog.String("sku", a.SKU),
			slog.Int64("warehouse_id", a.WarehouseID),
			slog.Int("quantity_on_hand", a.QuantityOnHand),
			slog.Int("reorder_level", a.ReorderLevel))
	}
	return nil
}

func (p *LogAlertPublisher) Close() error { return nil }
