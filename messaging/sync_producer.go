package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/glimte/testbus-go/contracts"
	"github.com/glimte/testbus-go/harness"
)

// DirectSyncProducer sends a request onto the destination queue and blocks on
// a reply queue until the correlated reply arrives or the endpoint timeout
// elapses. The reply is stored in the correlation manager so a later Receive
// call of the same test execution retrieves it by correlation key.
type DirectSyncProducer struct {
	name        string
	config      *DirectEndpointConfig
	correlation CorrelationManager[contracts.Message]
	logger      *slog.Logger
}

// NewDirectSyncProducer creates a sync producer for the endpoint.
func NewDirectSyncProducer(name string, config *DirectEndpointConfig) *DirectSyncProducer {
	return &DirectSyncProducer{
		name:        name,
		config:      config,
		correlation: NewPollingCorrelationManager[contracts.Message](config, "reply message did not arrive yet"),
		logger:      config.Logger.With("endpoint", name),
	}
}

// Name returns the endpoint name.
func (p *DirectSyncProducer) Name() string {
	return p.name
}

// Send sends msg and waits for the correlated reply.
//
// The correlation key is computed and registered against the test context
// before the message leaves, so a separate Receive call can pick it up even
// when send and receive run as distinct test actions. When the message
// carries no reply destination a temporary queue is synthesized and attached
// as a header for the consumer to discover.
func (p *DirectSyncProducer) Send(ctx context.Context, msg contracts.Message, tc *harness.TestContext) error {
	if msg == nil {
		return contracts.ErrEmptyMessage
	}

	keyName := p.config.Correlator.CorrelationKeyName(p.name)
	key := p.config.Correlator.CorrelationKey(msg)
	p.correlation.SaveCorrelationKey(keyName, key, tc)

	replyQueue, err := p.replyQueue(msg)
	if err != nil {
		return err
	}

	destination, err := p.config.destinationQueue()
	if err != nil {
		return err
	}

	queueName := p.config.destinationQueueName()
	p.logger.Debug("sending message", "queue", queueName, "id", msg.GetID(), "correlationKey", key)

	if err := destination.Send(ctx, msg); err != nil {
		return &contracts.DeliveryError{Queue: queueName, Err: err}
	}

	tc.OnOutbound(msg)
	p.logger.Info("message sent, awaiting reply", "queue", queueName, "replyQueue", replyQueue.Name(), "timeout", p.config.Timeout)

	reply, err := replyQueue.Receive(ctx, p.config.Timeout)
	if err != nil {
		return err
	}
	if reply == nil {
		return &contracts.TimeoutError{
			Op:      fmt.Sprintf("did not receive reply on queue '%s'", replyQueue.Name()),
			Timeout: p.config.Timeout,
		}
	}

	tc.OnInbound(reply)
	p.logger.Info("received synchronous reply", "replyQueue", replyQueue.Name(), "id", reply.GetID())

	p.correlation.Store(key, reply)
	return nil
}

// replyQueue determines the reply destination of a request. Without a reply
// destination header a temporary queue is created and attached; a queue
// reference is used as-is; a name is resolved through the configured
// resolver.
func (p *DirectSyncProducer) replyQueue(msg contracts.Message) (contracts.MessageQueue, error) {
	dest := contracts.ReplyDestinationOf(msg)
	switch dest.Kind() {
	case contracts.ReplyQueueRef:
		queue, _ := dest.Queue()
		return queue, nil
	case contracts.ReplyNamed:
		name, _ := dest.QueueName()
		return p.config.resolveQueue(name)
	default:
		queue := NewTemporaryQueue()
		contracts.SetReplyDestination(msg, contracts.ReplyTo(queue))
		return queue, nil
	}
}

// Receive returns the reply correlated with the context's pending key.
func (p *DirectSyncProducer) Receive(ctx context.Context, tc *harness.TestContext) (contracts.Message, error) {
	return p.ReceiveTimeout(ctx, tc, p.config.Timeout)
}

// ReceiveTimeout returns the correlated reply, waiting up to timeout.
func (p *DirectSyncProducer) ReceiveTimeout(ctx context.Context, tc *harness.TestContext, timeout time.Duration) (contracts.Message, error) {
	keyName := p.config.Correlator.CorrelationKeyName(p.name)
	key, err := p.correlation.CorrelationKey(keyName, tc)
	if err != nil {
		return nil, err
	}
	return p.ReceiveSelected(ctx, key, tc, timeout)
}

// ReceiveSelected bypasses the context's pending-key lookup and queries the
// correlation manager directly, treating selector as the key.
func (p *DirectSyncProducer) ReceiveSelected(ctx context.Context, selector string, tc *harness.TestContext, timeout time.Duration) (contracts.Message, error) {
	reply, err := p.correlation.Find(ctx, selector, timeout)
	if err != nil {
		return nil, err
	}
	return reply, nil
}

// CorrelationManager returns the reply store.
func (p *DirectSyncProducer) CorrelationManager() CorrelationManager[contracts.Message] {
	return p.correlation
}

// SetCorrelationManager replaces the reply store.
func (p *DirectSyncProducer) SetCorrelationManager(manager CorrelationManager[contracts.Message]) {
	p.correlation = manager
}
