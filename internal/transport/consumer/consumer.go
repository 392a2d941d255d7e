package consumer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"github.com/yashraj9595/zyntherraa/order/internal/dal/rabbitmq"
	"github.com/yashraj9595/zyntherraa/order/internal/service/errs"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/inbox"
	"github.com/yashraj9595/zyntherraa/order/pkg/backoff"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

const defaultInboxRetries = 5

// service represents the service layer interface.
type service interface {
	ProcessEvent(ctx context.Context, payload []byte) error
}

// inboxRepository parks messages whose processing failed.
type inboxRepository interface {
	Insert(ctx context.Context, msg inbox.InboxMessage) error
}

// Consumer represents the RabbitMQ consumer transport.
type Consumer struct {
	client     *rabbitmq.Client
	service    service
	inbox      inboxRepository
	queue      amqp.Queue
	maxRetries int
	stop       chan struct{}
	done       chan struct{}
}

// NewConsumer creates a new Consumer.
func NewConsumer(client *rabbitmq.Client, service service, inboxRepo inboxRepository) *Consumer {
	queue, err := client.QueueDeclareFromConfig()
	if err != nil {
		panic(err)
	}

	maxRetries := viper.GetInt("rabbitmq.inbox.max_retries")
	if maxRetries == 0 {
		maxRetries = defaultInboxRetries
	}

	return &Consumer{
		client:     client,
		service:    service,
		inbox:      inboxRepo,
		queue:      queue,
		maxRetries: maxRetries,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Run starts consuming messages from RabbitMQ.
func (c *Consumer) Run(ctx context.Context) error {
	consumerTag := viper.GetString("rabbitmq.consumer_tag")
	if consumerTag == "" {
		consumerTag = "audit-consumer"
	}

	concurrency := viper.GetInt("rabbitmq.concurrency")
	if concurrency == 0 {
		concurrency = 50
	}
	if err := c.client.Qos(concurrency); err != nil {
		return err
	}

	msgs, err := c.client.Consume(rabbitmq.ConsumeConfig{
		Queue:    c.queue.Name,
		Consumer: consumerTag,
	})
	if err != nil {
		return err
	}

	slog.Info("Consumer started", "queue", c.queue.Name, "consumer_tag", consumerTag)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		defer close(c.done)
		for {
			select {
			case <-c.stop:
				slog.Info("Stopping consumer")

				return
			case <-ctx.Done():
				slog.Info("Consumer context cancelled")

				return
			case msg, ok := <-msgs:
				if !ok {
					slog.Info("Message channel closed")

					return
				}

				g.Go(func() error {
					c.processMessage(gctx, msg)

					return nil
				})
			}
		}
	}()

	<-c.done

	return g.Wait()
}

// processMessage processes a single message from RabbitMQ.
// Every delivery is acknowledged once it is either stored or parked in the inbox.
func (c *Consumer) processMessage(ctx context.Context, msg amqp.Delivery) {
	ctx, span := otel.Tracer("consumer").Start(ctx, "Consumer.processMessage")
	defer span.End()

	slog.Info("Received message", "delivery_tag", msg.DeliveryTag, "message_id", msg.MessageId)

	err := c.service.ProcessEvent(ctx, msg.Body)
	switch {
	case err == nil:
	case errors.Is(err, errs.ErrValidation):
		slog.Error("Dropping malformed message", "message_id", msg.MessageId, "error", err)
		if err := msg.Nack(false, false); err != nil {
			slog.Error("Failed to nack message", "error", err)
		}

		return
	default:
		if perr := c.park(ctx, msg, err); perr != nil {
			slog.Error("Failed to park message in inbox, requeueing", "message_id", msg.MessageId, "error", perr)
			if err := msg.Nack(false, true); err != nil {
				slog.Error("Failed to nack message", "error", err)
			}

			return
		}
	}

	if err := msg.Ack(false); err != nil {
		slog.Error("Failed to ack message", "error", err)

		return
	}

	slog.Info("Message processed successfully", "message_id", msg.MessageId)
}

// park stores a failed message so the inbox worker can retry it later.
func (c *Consumer) park(ctx context.Context, msg amqp.Delivery, cause error) error {
	now := time.Now()
	slog.Warn("Failed to process message, parking in inbox", "message_id", msg.MessageId, "error", cause)

	return c.inbox.Insert(ctx, inbox.InboxMessage{
		MessageID:   msg.MessageId,
		QueueName:   c.queue.Name,
		Payload:     msg.Body,
		ContentType: msg.ContentType,
		RetryCount:  0,
		MaxRetries:  c.maxRetries,
		LastError:   cause.Error(),
		CreatedAt:   now,
		UpdatedAt:   now,
		NextRetryAt: now.Add(backoff.Exponential(1)),
	})
}

// Shutdown gracefully shuts down the consumer.
func (c *Consumer) Shutdown() error {
	slog.Info("Shutting down consumer")
	close(c.stop)

	// Wait for processing to finish with timeout
	select {
	case <-c.done:
		slog.Info("Consumer stopped successfully")
	case <-time.After(10 * time.Second):
		slog.Warn("Consumer shutdown timeout")
	}

	return nil
}
