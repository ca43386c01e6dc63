// Package kafka provides a driven.IndexSink that publishes index events to
// a Kafka topic for downstream indexers.
//
// Every message is keyed by project id so a project's events stay ordered
// within one partition. The "event" header is "create_index" (value: the
// schema JSON) or "upsert" (value: the record JSON, "id" header set).
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
	"github.com/custodia-labs/docere-indexer/internal/core/ports/driven"
)

// Event names carried in the "event" header.
const (
	EventCreateIndex = "create_index"
	EventUpsert      = "upsert"
)

// Ensure Sink implements the interface.
var _ driven.IndexSink = (*Sink)(nil)

// Config configures the Kafka sink.
type Config struct {
	Brokers []string
	Topic   string
}

// Sink publishes index events synchronously.
type Sink struct {
	producer sarama.SyncProducer
	topic    string
}

// NewConfig returns the producer configuration the sink requires.
func NewConfig() *sarama.Config {
	sc := sarama.NewConfig()
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Return.Successes = true
	sc.Producer.Partitioner = sarama.NewHashPartitioner
	return sc
}

// New connects a producer to the brokers.
func New(cfg Config) (*Sink, error) {
	if cfg.Topic == "" {
		return nil, fmt.Errorf("%w: kafka topic is required", domain.ErrInvalidInput)
	}
	p, err := sarama.NewSyncProducer(cfg.Brokers, NewConfig())
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return NewWithProducer(p, cfg.Topic), nil
}

// NewWithProducer creates a sink over an existing producer.
func NewWithProducer(p sarama.SyncProducer, topic string) *Sink {
	return &Sink{producer: p, topic: topic}
}

// CreateIndex publishes a create_index event carrying the schema.
func (s *Sink) CreateIndex(ctx context.Context, projectID string, schema *domain.Schema) error {
	value, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("marshalling schema: %w", err)
	}
	return s.send(ctx, projectID, EventCreateIndex, "", value)
}

// Upsert publishes an upsert event carrying the record.
func (s *Sink) Upsert(ctx context.Context, projectID string, record *domain.IndexRecord) error {
	value, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshalling record: %w", err)
	}
	return s.send(ctx, projectID, EventUpsert, record.ID, value)
}

func (s *Sink) send(ctx context.Context, projectID, event, id string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	headers := []sarama.RecordHeader{
		{Key: []byte("event"), Value: []byte(event)},
	}
	if id != "" {
		headers = append(headers, sarama.RecordHeader{Key: []byte("id"), Value: []byte(id)})
	}

	_, _, err := s.producer.SendMessage(&sarama.ProducerMessage{
		Topic:   s.topic,
		Key:     sarama.StringEncoder(projectID),
		Value:   sarama.ByteEncoder(value),
		Headers: headers,
	})
	if err != nil {
		return fmt.Errorf("kafka %s %s: %w", event, projectID, err)
	}
	return nil
}

// Close flushes and closes the producer.
func (s *Sink) Close() error {
	return s.producer.Close()
}
