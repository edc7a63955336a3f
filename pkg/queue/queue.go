package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Producer pushes JSON-encoded jobs onto a redis list.
type Producer struct {
	client *redis.Client
	name   string
}

func NewProducer(client *redis.Client, name string) *Producer {
	return &Producer{client: client, name: name}
}

func (p *Producer) Enqueue(ctx context.Context, job any) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return p.client.LPush(ctx, p.name, data).Err()
}

// Handler processes one raw message. A non-nil error moves the message
// to the dead-letter list; processing of later messages continues.
type Handler func(ctx context.Context, data []byte) error

type Consumer struct {
	client    *redis.Client
	name      string
	dlqSuffix string
	log       *logrus.Logger
}

func NewConsumer(client *redis.Client, name, dlqSuffix string, log *logrus.Logger) *Consumer {
	return &Consumer{client: client, name: name, dlqSuffix: dlqSuffix, log: log}
}

// Run blocks, popping messages until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context, handler Handler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		result, err := c.client.BRPop(ctx, 5*time.Second, c.name).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.WithError(err).WithField("queue", c.name).Error("queue: failed to consume message")
			continue
		}
		if len(result) < 2 {
			continue
		}

		message := result[1]
		if err := handler(ctx, []byte(message)); err != nil {
			c.log.WithError(err).WithField("queue", c.name).Error("queue: failed to process message")
			dlq := c.name + c.dlqSuffix
			if dlqErr := c.client.LPush(ctx, dlq, message).Err(); dlqErr != nil {
				c.log.WithError(dlqErr).WithField("dlq", dlq).Error("queue: failed to move message to dead-letter list")
			}
		}
	}
}
