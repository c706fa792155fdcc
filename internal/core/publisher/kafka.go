package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"

	"github.com/tevslin/emailai/internal/core"
	"github.com/tevslin/emailai/internal/core/mailpage"
	"github.com/tevslin/emailai/internal/models"
)

var _ core.PagePublisher = (*KafkaPublisher)(nil)

// KafkaConfig holds client-side producer settings.
type KafkaConfig struct {
	Brokers       []string
	Topic         string
	RetryAttempts int
}

// KafkaPublisher sends every page as one JSON message keyed by its source, so
// all pages of a document land on the same partition in order.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      logrus.FieldLogger
	now      func() time.Time
}

// NewKafkaPublisher connects a synchronous, idempotent producer.
func NewKafkaPublisher(cfg KafkaConfig, log logrus.FieldLogger) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers cannot be empty")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka topic cannot be empty")
	}

	sc := sarama.NewConfig()
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = max(cfg.RetryAttempts, 1)
	sc.Producer.Return.Successes = true
	sc.Producer.Return.Errors = true
	sc.Producer.Idempotent = true
	sc.Net.MaxOpenRequests = 1
	sc.Producer.Compression = sarama.CompressionSnappy

	sp, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync producer: %w", err)
	}
	return NewKafkaPublisherWithProducer(sp, cfg.Topic, log), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer.
func NewKafkaPublisherWithProducer(sp sarama.SyncProducer, topic string, log logrus.FieldLogger) *KafkaPublisher {
	return &KafkaPublisher{producer: sp, topic: topic, log: log, now: time.Now}
}

func (p *KafkaPublisher) Publish(ctx context.Context, pages ...mailpage.PageRecord) error {
	if len(pages) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msgs := make([]*sarama.ProducerMessage, 0, len(pages))
	for _, page := range pages {
		now := p.now()
		payload, err := json.Marshal(models.NewPageMessage(page, now))
		if err != nil {
			return fmt.Errorf("failed to marshal page %s/%d: %w", page.SourceID, page.PageIndex, err)
		}
		msgs = append(msgs, &sarama.ProducerMessage{
			Topic:     p.topic,
			Key:       sarama.StringEncoder(page.SourceID),
			Value:     sarama.ByteEncoder(payload),
			Timestamp: now,
		})
	}

	if err := p.producer.SendMessages(msgs); err != nil {
		p.log.WithError(err).WithFields(logrus.Fields{
			"topic":  p.topic,
			"source": pages[0].SourceID,
			"pages":  len(pages),
		}).Error("failed to send pages")
		return fmt.Errorf("failed to send pages: %w", err)
	}

	p.log.WithFields(logrus.Fields{
		"topic":  p.topic,
		"source": pages[0].SourceID,
		"pages":  len(pages),
	}).Debug("pages sent")
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
