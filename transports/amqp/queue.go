package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/glimte/testbus-go/contracts"
	"github.com/glimte/testbus-go/internal/reliability"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Queue is a contracts.MessageQueue backed by a RabbitMQ queue.
type Queue struct {
	name    string
	conn    *amqp.Connection
	channel *amqp.Channel

	retryPolicy reliability.RetryPolicy
	breaker     *reliability.CircuitBreaker
	logger      *slog.Logger

	mu         sync.Mutex
	deliveries <-chan amqp.Delivery
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) QueueOption {
	return func(q *Queue) {
		q.logger = logger
	}
}

// WithRetryPolicy sets the publish retry policy.
func WithRetryPolicy(policy reliability.RetryPolicy) QueueOption {
	return func(q *Queue) {
		q.retryPolicy = policy
	}
}

// WithCircuitBreaker guards publishes with a circuit breaker.
func WithCircuitBreaker(cb *reliability.CircuitBreaker) QueueOption {
	return func(q *Queue) {
		q.breaker = cb
	}
}

// Connect dials the broker and declares the queue.
func Connect(url, queueName string, options ...QueueOption) (*Queue, error) {
	if queueName == "" {
		return nil, fmt.Errorf("queue name must not be empty")
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := channel.QueueDeclare(queueName, false, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue '%s': %w", queueName, err)
	}

	q := &Queue{
		name:        queueName,
		conn:        conn,
		channel:     channel,
		retryPolicy: reliability.NewExponentialBackoff(100*time.Millisecond, 2*time.Second, 2.0, 3),
		logger:      slog.Default(),
	}
	for _, opt := range options {
		opt(q)
	}
	q.logger = q.logger.With("queue", queueName)
	return q, nil
}

// Name implements contracts.MessageQueue.
func (q *Queue) Name() string {
	return q.name
}

// Send implements contracts.MessageQueue. Broker rejection surfaces as a
// DeliveryError after the retry policy is exhausted.
func (q *Queue) Send(ctx context.Context, msg contracts.Message) error {
	if msg == nil {
		return contracts.ErrEmptyMessage
	}

	body, err := encodeMessage(msg)
	if err != nil {
		return &contracts.DeliveryError{Queue: q.name, Err: err}
	}

	publish := func() error {
		return q.channel.PublishWithContext(ctx, "", q.name, false, false, amqp.Publishing{
			ContentType:   "application/json",
			MessageId:     msg.GetID(),
			Timestamp:     msg.GetTimestamp(),
			Body:          body,
		})
	}

	attempt := func() error {
		return reliability.Retry(ctx, q.retryPolicy, publish)
	}
	if q.breaker != nil {
		inner := attempt
		attempt = func() error { return q.breaker.Execute(inner) }
	}

	if err := attempt(); err != nil {
		return &contracts.DeliveryError{Queue: q.name, Err: err}
	}

	q.logger.Debug("message published", "id", msg.GetID())
	return nil
}

// Receive implements contracts.MessageQueue.
func (q *Queue) Receive(ctx context.Context, timeout time.Duration) (contracts.Message, error) {
	return q.ReceiveSelected(ctx, nil, timeout)
}

// ReceiveSelected implements contracts.MessageQueue. Non-matching messages
// are requeued, so selection over a broker does not preserve strict queue
// order among non-matching messages.
func (q *Queue) ReceiveSelected(ctx context.Context, selector contracts.MessageSelector, timeout time.Duration) (contracts.Message, error) {
	deliveries, err := q.consume()
	if err != nil {
		return nil, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case delivery, ok := <-deliveries:
			if !ok {
				return nil, fmt.Errorf("consumer channel closed for queue '%s'", q.name)
			}

			msg, err := decodeMessage(delivery.Body)
			if err != nil {
				q.logger.Warn("dropping undecodable message", "error", err)
				_ = delivery.Nack(false, false)
				continue
			}
			if selector != nil && !selector(msg) {
				_ = delivery.Nack(false, true)
				continue
			}

			if err := delivery.Ack(false); err != nil {
				return nil, fmt.Errorf("failed to ack message '%s': %w", msg.GetID(), err)
			}
			return msg, nil

		case <-timer.C:
			return nil, nil

		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// consume starts the delivery stream on first use.
func (q *Queue) consume() (<-chan amqp.Delivery, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.deliveries != nil {
		return q.deliveries, nil
	}

	deliveries, err := q.channel.Consume(q.name, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to consume from queue '%s': %w", q.name, err)
	}
	q.deliveries = deliveries
	return deliveries, nil
}

// Close releases the channel and connection.
func (q *Queue) Close() error {
	if err := q.channel.Close(); err != nil {
		q.conn.Close()
		return err
	}
	return q.conn.Close()
}
