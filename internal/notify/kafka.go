package notify

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the subset of kafka.Writer used by the dispatcher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// kafkaDispatcher publishes events to a Kafka topic with an async writer.
type kafkaDispatcher struct {
	writer messageWriter
	logger zerolog.Logger
}

// NewKafkaDispatcher creates a dispatcher publishing to the given brokers and
// topic. The writer is asynchronous; delivery failures are logged through the
// completion callback.
func NewKafkaDispatcher(brokers []string, topic string, logger zerolog.Logger) Dispatcher {
	logger = logger.With().Str("component", "kafka-dispatcher").Logger()

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error().
					Err(err).
					Int("count", len(messages)).
					Msg("failed to deliver order events")
			}
		},
	}

	logger.Info().
		Strs("brokers", brokers).
		Str("topic", topic).
		Msg("kafka dispatcher initialised")

	return &kafkaDispatcher{
		writer: writer,
		logger: logger,
	}
}

// newKafkaDispatcherWithWriter is used by tests to inject a capturing writer.
func newKafkaDispatcherWithWriter(writer messageWriter, logger zerolog.Logger) Dispatcher {
	return &kafkaDispatcher{
		writer: writer,
		logger: logger.With().Str("component", "kafka-dispatcher").Logger(),
	}
}

// Dispatch publishes one event keyed by order ID so that events for the same
// order stay ordered within a partition.
func (d *kafkaDispatcher) Dispatch(ctx context.Context, event Envelope) {
	value, err := json.Marshal(event)
	if err != nil {
		d.logger.Error().
			Err(err).
			Str("event_type", event.EventType).
			Str("order_id", event.OrderID.String()).
			Msg("failed to marshal order event")
		return
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID.String()),
		Value: value,
		Time:  event.OccurredAt,
	}

	if err := d.writer.WriteMessages(ctx, msg); err != nil {
		// Async writer only fails here on enqueue problems; delivery errors
		// arrive via the completion callback.
		d.logger.Error().
			Err(err).
			Str("event_type", event.EventType).
			Str("order_id", event.OrderID.String()).
			Msg("failed to enqueue order event")
		return
	}

	d.logger.Debug().
		Str("event_type", event.EventType).
		Str("order_id", event.OrderID.String()).
		Msg("order event dispatched")
}

// Close flushes buffered events and releases the writer.
func (d *kafkaDispatcher) Close() error {
	return d.writer.Close()
}
