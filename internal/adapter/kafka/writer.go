package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/water-deficit-service/internal/config"
	"github.com/couchcryptid/water-deficit-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes deficit forecasts to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes forecasts in a single WriteMessages
// call. Messages are keyed by request ID so that forecasts for one request
// land on one partition.
func (w *Writer) LoadBatch(ctx context.Context, forecasts []domain.DeficitForecast) error {
	if len(forecasts) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(forecasts))
	for i := range forecasts {
		msg, err := serializeToMessage(forecasts[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write forecasts: %w", err)
	}
	w.logger.Debug("forecasts published", "count", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a DeficitForecast into a Kafka message.
func serializeToMessage(fc domain.DeficitForecast) (kafkago.Message, error) {
	data, err := json.Marshal(fc)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize deficit forecast: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(fc.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "soil", Value: []byte(fc.Request.Soil)},
			{Key: "crop", Value: []byte(fc.Request.Crop)},
			{Key: "processed_at", Value: []byte(fc.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}
