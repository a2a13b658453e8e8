package kafka

import (
	"context"
	"encoding/json"

	"github.com/atharvamohekar/guardian-ai/pkg/common/config"
	"github.com/atharvamohekar/guardian-ai/pkg/common/logger"
	"github.com/atharvamohekar/guardian-ai/pkg/common/models"
	"github.com/segmentio/kafka-go"
)

type Consumer struct {
	reader *kafka.Reader
}

type SampleHandler func(ctx context.Context, sample models.VitalsSample) error

func NewConsumer(topic string, groupID string) *Consumer {
	cfg := config.Load()
	if groupID == "" {
		groupID = cfg.KafkaGroupID
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})

	return &Consumer{reader: reader}
}

// Consume delivers samples to the handler one at a time, in partition order.
// Handler errors are logged and the message is committed anyway: a sample
// that fails evaluation must not stall the stream behind it.
func (c *Consumer) Consume(ctx context.Context, handler SampleHandler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			message, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logger.Log.WithError(err).Error("Failed to fetch message")
				continue
			}

			var sample models.VitalsSample
			if err := json.Unmarshal(message.Value, &sample); err != nil {
				logger.Log.WithError(err).Error("Failed to unmarshal vitals sample")
				c.reader.CommitMessages(ctx, message)
				continue
			}

			if err := handler(ctx, sample); err != nil {
				logger.Log.WithError(err).WithFields(map[string]interface{}{
					"sample_id": sample.ID,
				}).Error("Failed to process vitals sample")
			}

			if err := c.reader.CommitMessages(ctx, message); err != nil {
				logger.Log.WithError(err).Error("Failed to commit message")
			}
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
