package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/glimte/testbus-go/contracts"
	"github.com/glimte/testbus-go/harness"
)

// Consumer receives messages within a test execution.
type Consumer interface {
	Receive(ctx context.Context, tc *harness.TestContext, timeout time.Duration) (contracts.Message, error)
}

// DirectConsumer receives messages from the endpoint's destination queue.
type DirectConsumer struct {
	name   string
	config *DirectEndpointConfig
	logger *slog.Logger
}

// NewDirectConsumer creates a consumer for the endpoint.
func NewDirectConsumer(name string, config *DirectEndpointConfig) *DirectConsumer {
	return &DirectConsumer{
		name:   name,
		config: config,
		logger: config.Logger.With("endpoint", name),
	}
}

// Name returns the endpoint name.
func (c *DirectConsumer) Name() string {
	return c.name
}

// Receive implements Consumer. Absence of a message within the timeout is a
// TimeoutError: the test action asked for a message that never came.
func (c *DirectConsumer) Receive(ctx context.Context, tc *harness.TestContext, timeout time.Duration) (contracts.Message, error) {
	return c.ReceiveSelected(ctx, nil, tc, timeout)
}

// ReceiveSelected receives the next message matching the selector.
func (c *DirectConsumer) ReceiveSelected(ctx context.Context, selector contracts.MessageSelector, tc *harness.TestContext, timeout time.Duration) (contracts.Message, error) {
	queue, err := c.config.destinationQueue()
	if err != nil {
		return nil, err
	}

	queueName := c.config.destinationQueueName()
	c.logger.Debug("waiting for message", "queue", queueName, "timeout", timeout)

	msg, err := queue.ReceiveSelected(ctx, selector, timeout)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, &contracts.TimeoutError{
			Op:      fmt.Sprintf("receiving message on queue '%s'", queueName),
			Timeout: timeout,
		}
	}

	tc.OnInbound(msg)
	c.logger.Info("message received", "queue", queueName, "id", msg.GetID())
	return msg, nil
}
