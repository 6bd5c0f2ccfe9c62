package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.uber.org/zap"
)

// Handler processes a single event.
type Handler[T any] func(ctx context.Context, event *T) error

// DefaultRetry retries a failing handler three times with exponential
// backoff starting at 100ms.
func DefaultRetry() middleware.Retry {
	return middleware.Retry{
		MaxRetries:      3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Multiplier:      2,
	}
}

// Consumer subscribes to one topic and feeds decoded events to a Handler.
// A failing handler is retried with backoff; once the retries are used up
// the event is acked and dropped so it cannot block the topic. Undecodable
// payloads are dropped at once.
type Consumer[T any] struct {
	subscriber message.Subscriber
	topic      string
	handler    Handler[T]
	retry      middleware.Retry
	logger     *zap.Logger
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewConsumer creates a consumer for topic.
func NewConsumer[T any](
	subscriber message.Subscriber,
	topic string,
	handler Handler[T],
	logger *zap.Logger,
) *Consumer[T] {
	logger = logger.With(zap.String("topic", topic))

	retry := DefaultRetry()
	retry.Logger = NewZapLogger(logger)

	return &Consumer[T]{
		subscriber: subscriber,
		topic:      topic,
		handler:    handler,
		retry:      retry,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// WithRetry replaces the retry policy. It must be called before Start.
func (c *Consumer[T]) WithRetry(retry middleware.Retry) *Consumer[T] {
	c.retry = retry

	return c
}

// Topic returns the topic this consumer subscribes to.
func (c *Consumer[T]) Topic() string {
	return c.topic
}

// Start subscribes and processes messages in the background until ctx is
// cancelled or Shutdown is called.
func (c *Consumer[T]) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)

	msgs, err := c.subscriber.Subscribe(ctx, c.topic)
	if err != nil {
		c.cancel()
		close(c.done)

		return err
	}

	go c.consumeLoop(ctx, msgs)

	return nil
}

func (c *Consumer[T]) consumeLoop(ctx context.Context, msgs <-chan *message.Message) {
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}

			c.handleMessage(ctx, msg)
		}
	}
}

func (c *Consumer[T]) handleMessage(ctx context.Context, msg *message.Message) {
	var event T
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		// Redelivery cannot fix a malformed payload.
		c.logger.Error("dropping undecodable event",
			zap.String("message_id", msg.UUID),
			zap.Error(err),
		)
		msg.Ack()

		return
	}

	// Retry stops waiting once the message context is done.
	msg.SetContext(ctx)

	process := c.retry.Middleware(func(*message.Message) ([]*message.Message, error) {
		return nil, c.handler(ctx, &event)
	})

	if _, err := process(msg); err != nil {
		if ctx.Err() != nil {
			// Shutting down: leave it for redelivery.
			msg.Nack()

			return
		}

		c.logger.Error("dropping event after retries",
			zap.String("message_id", msg.UUID),
			zap.Int("max_retries", c.retry.MaxRetries),
			zap.Error(err),
		)
		msg.Ack()

		return
	}

	msg.Ack()

	c.logger.Debug("processed event", zap.String("message_id", msg.UUID))
}

// Shutdown stops the consumer and waits for the in-flight message.
func (c *Consumer[T]) Shutdown() error {
	if c.cancel != nil {
		c.cancel()
	}

	<-c.done

	return nil
}
