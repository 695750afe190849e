package kafka

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
)

type MessageHandler interface {
	Handle(ctx context.Context, msg *sarama.ConsumerMessage) error
}

// Consumer runs a consumer group over a handler. Failed messages are retried
// with Backoff; a message still failing afterwards is logged and skipped so
// one poison message cannot stall its partition.
type Consumer struct {
	group   sarama.ConsumerGroup
	handler MessageHandler
	Backoff []time.Duration
	Logger  *slog.Logger
}

func NewConsumerConfig(clientID string) *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.ClientID = clientID
	cfg.Version = sarama.V2_5_0_0
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Return.Errors = true
	return cfg
}

func NewConsumer(brokers []string, groupID string, cfg *sarama.Config, handler MessageHandler) (*Consumer, error) {
	if cfg == nil {
		cfg = NewConsumerConfig(groupID)
	}
	g, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}
	return &Consumer{group: g, handler: handler}, nil
}

func (c *Consumer) Run(ctx context.Context, topics []string) error {
	go c.drainErrors(ctx)
	for {
		err := c.group.Consume(ctx, topics, groupHandler{handler: c.handler, backoff: c.Backoff, logger: c.Logger})
		if err != nil && !errors.Is(err, sarama.ErrClosedConsumerGroup) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, sarama.ErrClosedConsumerGroup) {
			return nil
		}
	}
}

func (c *Consumer) drainErrors(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-c.group.Errors():
			if !ok {
				return
			}
			if c.Logger != nil {
				c.Logger.Warn("consumer group error", "error", err)
			}
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

type groupHandler struct {
	handler MessageHandler
	backoff []time.Duration
	logger  *slog.Logger
}

func (h groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := sess.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := h.handleWithRetry(ctx, message); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				if h.logger != nil {
					h.logger.Error("message dropped after retries",
						"topic", message.Topic,
						"partition", message.Partition,
						"offset", message.Offset,
						"error", err,
					)
				}
			}
			sess.MarkMessage(message, "")
		}
	}
}

func (h groupHandler) handleWithRetry(ctx context.Context, msg *sarama.ConsumerMessage) error {
	err := h.handler.Handle(ctx, msg)
	for _, wait := range h.backoff {
		if err == nil {
			return nil
		}
		if h.logger != nil {
			h.logger.Warn("message handling failed, retrying", "offset", msg.Offset, "in", wait, "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		err = h.handler.Handle(ctx, msg)
	}
	return err
}
