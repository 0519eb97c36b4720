// Package kafka carries config changed events between the API and the
// projection workers.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"alerting-destinations/internal/events"
	"alerting-destinations/internal/logging"
	"alerting-destinations/internal/models"
)

type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

// TaskQueue accepts projection tasks.
type TaskQueue interface {
	QueueTask(task models.Task)
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Consumer struct {
	reader messageReader
	queue  TaskQueue
	logger *logging.Logger
}

func NewConsumer(cfg Config, queue TaskQueue, logger *logging.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers cannot be empty")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}
	if cfg.GroupID == "" {
		return nil, fmt.Errorf("group id cannot be empty")
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})
	return &Consumer{reader: reader, queue: queue, logger: logger}, nil
}

// Start reads messages until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.logger.Infof("Kafka consumer started")
		for {
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, context.Canceled) {
					c.logger.Infof("Kafka consumer stopped")
					return
				}
				c.logger.Errorf("Read message failed: %v", err)
				continue
			}
			c.handle(msg)
		}
	}()
}

func (c *Consumer) handle(msg kafka.Message) {
	e, err := events.Decode(msg.Value)
	if err != nil {
		c.logger.Errorf("Invalid message at offset %d: %v", msg.Offset, err)
		return
	}
	c.queue.QueueTask(e.Task(uuid.NewString()))
	c.logger.WithField("config_id", e.ConfigID).Debugf("Processed Kafka message")
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
