package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
)

func TestNew_RequiresTopic(t *testing.T) {
	_, err := New(Config{Brokers: []string{"localhost:9092"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSink_PublishesEvents(t *testing.T) {
	producer := mocks.NewSyncProducer(t, NewConfig())
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "records" {
			return fmt.Errorf("topic %q", msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != "letters" {
			return fmt.Errorf("key %q", key)
		}
		if header(msg, "event") != EventCreateIndex {
			return fmt.Errorf("event %q", header(msg, "event"))
		}
		return nil
	})
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var body map[string]any
		if err := json.Unmarshal(val, &body); err != nil {
			return err
		}
		if body["id"] != "letter-1" {
			return fmt.Errorf("id %v", body["id"])
		}
		return nil
	})

	sink := NewWithProducer(producer, "records")
	ctx := context.Background()

	require.NoError(t, sink.CreateIndex(ctx, "letters", domain.NewSchema()))
	require.NoError(t, sink.Upsert(ctx, "letters", &domain.IndexRecord{ID: "letter-1"}))
	require.NoError(t, sink.Close())
}

func TestSink_SendFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, NewConfig())
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	sink := NewWithProducer(producer, "records")
	err := sink.Upsert(context.Background(), "letters", &domain.IndexRecord{ID: "a"})
	assert.True(t, errors.Is(err, sarama.ErrOutOfBrokers))
	require.NoError(t, sink.Close())
}

func TestSink_CancelledContext(t *testing.T) {
	producer := mocks.NewSyncProducer(t, NewConfig())
	sink := NewWithProducer(producer, "records")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := sink.Upsert(ctx, "letters", &domain.IndexRecord{ID: "a"})
	assert.ErrorIs(t, err, context.Canceled)
	require.NoError(t, sink.Close())
}

func header(msg *sarama.ProducerMessage, key string) string {
	for _, h := range msg.Headers {
		if string(h.Key) == key {
			return string(h.Value)
		}
	}
	return ""
}
