package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/mfg-erp/internal/core/domain"
	"github.com/ammerola/mfg-erp/test/helpers"
)

type fakeWriter struct {
	written  []kafka.Message
	deadline bool
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	_, w.deadline = ctx.Deadline()
	if w.err != nil {
		return w.err
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func testAlert(productID, warehouseID int64) domain.LowStockAlert {
	return domain.LowStockAlert{
		InventoryID:    7,
		ProductID:      productID,
		SKU:            "BRK-001",
		ProductName:    "Steel Bracket",
		WarehouseID:    warehouseID,
		WarehouseName:  "Main Warehouse",
		QuantityOnHand: 12,
		ReorderLevel:   25,
		DetectedAt:     time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestKafkaAlertPublisher_PublishLowStock(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaAlertPublisher(w, "inventory.low-stock", time.Second, helpers.TestLogger())

	err := p.PublishLowStock(context.Background(), testAlert(1, 2), testAlert(3, 1))
	require.NoError(t, err)

	require.Len(t, w.written, 2)
	assert.True(t, w.deadline)

	msg := w.written[0]
	assert.Equal(t, "1:2", string(msg.Key))
	assert.Equal(t, "3:1", string(w.written[1].Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event-type", msg.Headers[0].Key)
	assert.Equal(t, EventTypeLowStock, string(msg.Headers[0].Value))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "BRK-001", decoded["sku"])
	assert.EqualValues(t, 12, decoded["quantityOnHand"])
	assert.EqualValues(t, 25, decoded["reorderLevel"])
}

func TestKafkaAlertPublisher_Empty(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaAlertPublisher(w, "inventory.low-stock", 0, helpers.TestLogger())

	require.NoError(t, p.PublishLowStock(context.Background()))
	assert.Empty(t, w.written)
}

func TestKafkaAlertPublisher_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	p := newKafkaAlertPublisher(w, "inventory.low-stock", time.Second, helpers.TestLogger())

	err := p.PublishLowStock(context.Background(), testAlert(1, 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
}

func TestKafkaAlertPublisher_Close(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaAlertPublisher(w, "inventory.low-stock", time.Second, helpers.TestLogger())

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaAlertPublisher_PartitionsByRecordKey(t *testing.T) {
	p := NewKafkaAlertPublisher(KafkaConfig{
		Brokers: []string{"localhost:9092"},
		Topic:   "inventory.low-stock",
	}, helpers.TestLogger())
	defer p.Close()

	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	require.IsType(t, &kafka.Hash{}, w.Balancer)

	first, err := alertMessage(testAlert(1, 2))
	require.NoError(t, err)
	later := testAlert(1, 2)
	later.QuantityOnHand = 3
	second, err := alertMessage(later)
	require.NoError(t, err)

	partitions := []int{0, 1, 2, 3, 4, 5, 6, 7}
	assert.Equal(t, w.Balancer.Balance(first, partitions...), w.Balancer.Balance(second, partitions...))
}

func TestLogAlertPublisher(t *testing.T) {
	p := NewLogAlertPublisher(helpers.TestLogger())
	assert.NoError(t, p.PublishLowStock(context.Background(), testAlert(1, 1)))
	assert.NoError(t, p.Close())
}
