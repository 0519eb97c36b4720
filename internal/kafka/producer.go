package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"alerting-destinations/internal/events"
	"alerting-destinations/internal/logging"
)

const writeTimeout = 10 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes config changed events keyed by config id.
type Producer struct {
	writer messageWriter
	topic  string
	logger *logging.Logger
}

func NewProducer(brokers []string, topic string, logger *logging.Logger) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("brokers cannot be empty")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: writeTimeout,
		RequiredAcks: kafka.RequireOne,
	}
	logger.Infof("Kafka producer configured: brokers=%v topic=%s", brokers, topic)
	return &Producer{writer: writer, topic: topic, logger: logger}, nil
}

// Publish writes e synchronously.
func (p *Producer) Publish(ctx context.Context, e events.ConfigChanged) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal config changed event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(e.ConfigID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "action", Value: []byte(e.Action)},
			{Key: "config_type", Value: []byte(e.ConfigType)},
		},
		Time: time.UnixMilli(e.Timestamp),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}
	p.logger.Infof("Published config changed event: config_id=%s action=%s", e.ConfigID, e.Action)
	return nil
}

func (p *Producer) Close() error {
	p.logger.Infof("Closing Kafka producer for topic %s", p.topic)
	return p.writer.Close()
}
