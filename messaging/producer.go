package messaging

import (
	"context"
	"log/slog"

	"github.com/glimte/testbus-go/contracts"
	"github.com/glimte/testbus-go/harness"
)

// Producer sends messages within a test execution.
type Producer interface {
	Send(ctx context.Context, msg contracts.Message, tc *harness.TestContext) error
}

// DirectProducer sends messages one-way onto the endpoint's destination
// queue.
type DirectProducer struct {
	name   string
	config *DirectEndpointConfig
	logger *slog.Logger
}

// NewDirectProducer creates a producer for the endpoint.
func NewDirectProducer(name string, config *DirectEndpointConfig) *DirectProducer {
	return &DirectProducer{
		name:   name,
		config: config,
		logger: config.Logger.With("endpoint", name),
	}
}

// Name returns the endpoint name.
func (p *DirectProducer) Name() string {
	return p.name
}

// Send implements Producer.
func (p *DirectProducer) Send(ctx context.Context, msg contracts.Message, tc *harness.TestContext) error {
	if msg == nil {
		return contracts.ErrEmptyMessage
	}

	queue, err := p.config.destinationQueue()
	if err != nil {
		return err
	}

	queueName := p.config.destinationQueueName()
	p.logger.Debug("sending message", "queue", queueName, "id", msg.GetID())

	if err := queue.Send(ctx, msg); err != nil {
		return &contracts.DeliveryError{Queue: queueName, Err: err}
	}

	tc.OnOutbound(msg)
	p.logger.Info("message sent", "queue", queueName, "id", msg.GetID())
	return nil
}
