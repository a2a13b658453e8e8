package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/atharvamohekar/guardian-ai/pkg/common/config"
	"github.com/atharvamohekar/guardian-ai/pkg/common/logger"
	"github.com/atharvamohekar/guardian-ai/pkg/common/models"
	"github.com/segmentio/kafka-go"
)

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(topic string) *Producer {
	cfg := config.Load()
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBrokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{writer: writer}
}

// PublishSample writes one vitals sample to the stream. Samples are keyed by
// user so a single user's readings stay in emission order.
func (p *Producer) PublishSample(ctx context.Context, sample models.VitalsSample) error {
	payload, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("failed to marshal vitals sample: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(fmt.Sprintf("user-%d", sample.UserID)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "sample-id", Value: []byte(sample.ID)},
			{Key: "source", Value: []byte(string(sample.Source))},
		},
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"sample_id": sample.ID,
			"user_id":   sample.UserID,
		}).Error("Failed to publish vitals sample")
		return err
	}

	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
