package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/glimte/testbus-go/contracts"
	"github.com/glimte/testbus-go/harness"
)

// DirectSyncConsumer receives requests from the destination queue and routes
// replies back through the reply destination remembered per correlation key.
type DirectSyncConsumer struct {
	name        string
	config      *DirectEndpointConfig
	consumer    *DirectConsumer
	correlation CorrelationManager[contracts.MessageQueue]
	logger      *slog.Logger
}

// NewDirectSyncConsumer creates a sync consumer for the endpoint.
func NewDirectSyncConsumer(name string, config *DirectEndpointConfig) *DirectSyncConsumer {
	return &DirectSyncConsumer{
		name:        name,
		config:      config,
		consumer:    NewDirectConsumer(name, config),
		correlation: NewPollingCorrelationManager[contracts.MessageQueue](config, "reply queue not set up yet"),
		logger:      config.Logger.With("endpoint", name),
	}
}

// Name returns the endpoint name.
func (c *DirectSyncConsumer) Name() string {
	return c.name
}

// Receive consumes the next request and remembers its reply route.
func (c *DirectSyncConsumer) Receive(ctx context.Context, tc *harness.TestContext, timeout time.Duration) (contracts.Message, error) {
	return c.ReceiveSelected(ctx, nil, tc, timeout)
}

// ReceiveSelected consumes the next matching request and remembers its reply
// route.
func (c *DirectSyncConsumer) ReceiveSelected(ctx context.Context, selector contracts.MessageSelector, tc *harness.TestContext, timeout time.Duration) (contracts.Message, error) {
	msg, err := c.consumer.ReceiveSelected(ctx, selector, tc, timeout)
	if err != nil {
		return nil, err
	}

	if err := c.saveReplyQueue(msg, tc); err != nil {
		return nil, err
	}
	return msg, nil
}

// saveReplyQueue stores the (correlation key -> reply queue) association of a
// received request. A request without a reply destination is allowed: the
// consumer logs a warning and skips reply routing.
func (c *DirectSyncConsumer) saveReplyQueue(msg contracts.Message, tc *harness.TestContext) error {
	var replyQueue contracts.MessageQueue

	dest := contracts.ReplyDestinationOf(msg)
	switch dest.Kind() {
	case contracts.ReplyQueueRef:
		replyQueue, _ = dest.Queue()
	case contracts.ReplyNamed:
		name, _ := dest.QueueName()
		resolved, err := c.config.resolveQueue(name)
		if err != nil {
			return err
		}
		replyQueue = resolved
	default:
		c.logger.Warn("no reply destination found in message headers, skipping reply routing", "id", msg.GetID())
		return nil
	}

	keyName := c.config.Correlator.CorrelationKeyName(c.name)
	key := c.config.Correlator.CorrelationKey(msg)
	c.correlation.SaveCorrelationKey(keyName, key, tc)
	c.correlation.Store(key, replyQueue)

	c.logger.Debug("saved reply route", "correlationKey", key, "replyQueue", replyQueue.Name())
	return nil
}

// Send routes a reply back through the reply queue remembered for the
// context's pending correlation key.
func (c *DirectSyncConsumer) Send(ctx context.Context, msg contracts.Message, tc *harness.TestContext) error {
	if msg == nil {
		return contracts.ErrEmptyMessage
	}

	keyName := c.config.Correlator.CorrelationKeyName(c.name)
	key, err := c.correlation.CorrelationKey(keyName, tc)
	if err != nil {
		return err
	}

	replyQueue, err := c.correlation.Find(ctx, key, c.config.Timeout)
	if err != nil {
		if contracts.IsTimeout(err) {
			return &contracts.NotFoundError{Kind: "reply queue", Name: key}
		}
		return err
	}

	c.logger.Debug("sending reply", "replyQueue", replyQueue.Name(), "id", msg.GetID())

	if err := replyQueue.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send message to reply queue '%s': %w", replyQueue.Name(), err)
	}

	tc.OnOutbound(msg)
	c.logger.Info("reply sent", "replyQueue", replyQueue.Name(), "id", msg.GetID())
	return nil
}

// ReceiveTimeout consumes the next request using the endpoint timeout.
func (c *DirectSyncConsumer) ReceiveTimeout(ctx context.Context, tc *harness.TestContext) (contracts.Message, error) {
	return c.Receive(ctx, tc, c.config.Timeout)
}

// CorrelationManager returns the reply route store.
func (c *DirectSyncConsumer) CorrelationManager() CorrelationManager[contracts.MessageQueue] {
	return c.correlation
}

// SetCorrelationManager replaces the reply route store.
func (c *DirectSyncConsumer) SetCorrelationManager(manager CorrelationManager[contracts.MessageQueue]) {
	c.correlation = manager
}
