package messaging

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/glimte/testbus-go/contracts"
)

// Defaults shared by direct endpoints.
const (
	DefaultTimeout         = 5000 * time.Millisecond
	DefaultPollingInterval = 500 * time.Millisecond
)

// DirectEndpointConfig holds the immutable parameters shared by the producer
// and consumer side of one logical direct endpoint.
type DirectEndpointConfig struct {
	// Queue is the destination queue instance. Takes precedence over QueueName.
	Queue contracts.MessageQueue

	// QueueName is the destination queue name, resolved through Resolver.
	QueueName string

	// Timeout bounds synchronous reply waits and reply-route lookups.
	Timeout time.Duration

	// PollingInterval is the sleep between correlation store polls.
	PollingInterval time.Duration

	// Correlator derives correlation keys. Defaults to DefaultCorrelator.
	Correlator Correlator

	// Resolver resolves queue names. Required when QueueName or named reply
	// destinations are used.
	Resolver QueueResolver

	// Logger receives endpoint debug and info logs.
	Logger *slog.Logger
}

// EndpointOption configures a DirectEndpointConfig.
type EndpointOption func(*DirectEndpointConfig)

// WithQueue sets the destination queue instance.
func WithQueue(queue contracts.MessageQueue) EndpointOption {
	return func(c *DirectEndpointConfig) {
		c.Queue = queue
	}
}

// WithQueueName sets the destination queue name.
func WithQueueName(name string) EndpointOption {
	return func(c *DirectEndpointConfig) {
		c.QueueName = name
	}
}

// WithTimeout sets the synchronous reply timeout.
func WithTimeout(timeout time.Duration) EndpointOption {
	return func(c *DirectEndpointConfig) {
		c.Timeout = timeout
	}
}

// WithPollingInterval sets the correlation poll interval.
func WithPollingInterval(interval time.Duration) EndpointOption {
	return func(c *DirectEndpointConfig) {
		c.PollingInterval = interval
	}
}

// WithCorrelator sets the correlator strategy.
func WithCorrelator(correlator Correlator) EndpointOption {
	return func(c *DirectEndpointConfig) {
		c.Correlator = correlator
	}
}

// WithResolver sets the queue resolver.
func WithResolver(resolver QueueResolver) EndpointOption {
	return func(c *DirectEndpointConfig) {
		c.Resolver = resolver
	}
}

// WithEndpointLogger sets the logger.
func WithEndpointLogger(logger *slog.Logger) EndpointOption {
	return func(c *DirectEndpointConfig) {
		c.Logger = logger
	}
}

// NewDirectEndpointConfig creates a config with defaults applied.
func NewDirectEndpointConfig(options ...EndpointOption) *DirectEndpointConfig {
	config := &DirectEndpointConfig{
		Timeout:         DefaultTimeout,
		PollingInterval: DefaultPollingInterval,
		Correlator:      DefaultCorrelator{},
		Logger:          slog.Default(),
	}
	for _, opt := range options {
		opt(config)
	}
	return config
}

// destinationQueue resolves the destination queue of the endpoint.
func (c *DirectEndpointConfig) destinationQueue() (contracts.MessageQueue, error) {
	if c.Queue != nil {
		return c.Queue, nil
	}
	if c.QueueName == "" {
		return nil, fmt.Errorf("direct endpoint has neither queue nor queue name configured")
	}
	if c.Resolver == nil {
		return nil, fmt.Errorf("direct endpoint has queue name '%s' but no resolver configured", c.QueueName)
	}
	return c.Resolver.ResolveQueue(c.QueueName)
}

// destinationQueueName returns the destination name for logging.
func (c *DirectEndpointConfig) destinationQueueName() string {
	if c.Queue != nil {
		return c.Queue.Name()
	}
	return c.QueueName
}

// resolveQueue resolves a named reply destination.
func (c *DirectEndpointConfig) resolveQueue(name string) (contracts.MessageQueue, error) {
	if c.Resolver == nil {
		return nil, &contracts.NotFoundError{Kind: "queue", Name: name}
	}
	return c.Resolver.ResolveQueue(name)
}

// DirectEndpoint bundles the one-way producer/consumer pair of one logical
// destination.
type DirectEndpoint struct {
	name     string
	config   *DirectEndpointConfig
	producer *DirectProducer
	consumer *DirectConsumer
}

// NewDirectEndpoint creates a direct endpoint.
func NewDirectEndpoint(name string, config *DirectEndpointConfig) *DirectEndpoint {
	return &DirectEndpoint{name: name, config: config}
}

// Name returns the endpoint name.
func (e *DirectEndpoint) Name() string {
	return e.name
}

// Config returns the endpoint configuration.
func (e *DirectEndpoint) Config() *DirectEndpointConfig {
	return e.config
}

// Producer returns the endpoint's producer, creating it on first use.
func (e *DirectEndpoint) Producer() *DirectProducer {
	if e.producer == nil {
		e.producer = NewDirectProducer(e.name, e.config)
	}
	return e.producer
}

// Consumer returns the endpoint's consumer, creating it on first use.
func (e *DirectEndpoint) Consumer() *DirectConsumer {
	if e.consumer == nil {
		e.consumer = NewDirectConsumer(e.name, e.config)
	}
	return e.consumer
}

// DirectSyncEndpoint bundles the synchronous request/reply pair of one
// logical destination.
type DirectSyncEndpoint struct {
	name     string
	config   *DirectEndpointConfig
	producer *DirectSyncProducer
	consumer *DirectSyncConsumer
}

// NewDirectSyncEndpoint creates a synchronous direct endpoint.
func NewDirectSyncEndpoint(name string, config *DirectEndpointConfig) *DirectSyncEndpoint {
	return &DirectSyncEndpoint{name: name, config: config}
}

// Name returns the endpoint name.
func (e *DirectSyncEndpoint) Name() string {
	return e.name
}

// Config returns the endpoint configuration.
func (e *DirectSyncEndpoint) Config() *DirectEndpointConfig {
	return e.config
}

// Producer returns the endpoint's sync producer, creating it on first use.
func (e *DirectSyncEndpoint) Producer() *DirectSyncProducer {
	if e.producer == nil {
		e.producer = NewDirectSyncProducer(e.name, e.config)
	}
	return e.producer
}

// Consumer returns the endpoint's sync consumer, creating it on first use.
func (e *DirectSyncEndpoint) Consumer() *DirectSyncConsumer {
	if e.consumer == nil {
		e.consumer = NewDirectSyncConsumer(e.name, e.config)
	}
	return e.consumer
}
