// Package testbus is the entry point for building direct messaging endpoints
// used in integration tests: in-memory queues, synchronous request/reply
// pairs with correlation-based reply matching, and the harness collaborators
// (test contexts, reporters) around them.
package testbus

import (
	"log/slog"

	"github.com/glimte/testbus-go/config"
	"github.com/glimte/testbus-go/harness"
	"github.com/glimte/testbus-go/messaging"
)

// Client bundles a queue registry, a reference resolver and a reporter, and
// constructs endpoints bound to them.
type Client struct {
	registry *messaging.QueueRegistry
	resolver *harness.SimpleReferenceResolver
	reporter *harness.LoggingReporter
	logger   *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	logger           *slog.Logger
	reportingEnabled bool
}

// WithClientLogger sets the logger used by endpoints and the reporter.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithReporting toggles the lifecycle reporter.
func WithReporting(enabled bool) ClientOption {
	return func(c *clientConfig) {
		c.reportingEnabled = enabled
	}
}

// NewClient creates a client with an empty registry.
func NewClient(options ...ClientOption) *Client {
	cfg := &clientConfig{
		logger:           slog.Default(),
		reportingEnabled: true,
	}
	for _, opt := range options {
		opt(cfg)
	}

	return &Client{
		registry: messaging.NewQueueRegistry(),
		resolver: harness.NewSimpleReferenceResolver(),
		reporter: harness.NewLoggingReporter(
			harness.WithReporterLogger(cfg.logger),
			harness.WithEnabled(cfg.reportingEnabled),
		),
		logger: cfg.logger,
	}
}

// Registry returns the queue registry.
func (c *Client) Registry() *messaging.QueueRegistry {
	return c.registry
}

// Resolver returns the reference resolver.
func (c *Client) Resolver() *harness.SimpleReferenceResolver {
	return c.resolver
}

// Reporter returns the lifecycle reporter.
func (c *Client) Reporter() *harness.LoggingReporter {
	return c.reporter
}

// NewTestContext creates a test context wired to the client's resolver and
// reporter.
func (c *Client) NewTestContext() *harness.TestContext {
	return harness.NewTestContext(
		harness.WithReferenceResolver(c.resolver),
		harness.WithReporter(c.reporter),
	)
}

// endpointConfig builds a config bound to the client's registry and logger.
func (c *Client) endpointConfig(queueName string, options []messaging.EndpointOption) (*messaging.DirectEndpointConfig, error) {
	queue, err := c.registry.GetOrCreate(queueName)
	if err != nil {
		return nil, err
	}
	opts := append([]messaging.EndpointOption{
		messaging.WithQueue(queue),
		messaging.WithResolver(c.registry),
		messaging.WithEndpointLogger(c.logger),
	}, options...)
	return messaging.NewDirectEndpointConfig(opts...), nil
}

// DirectEndpoint creates a one-way endpoint on the named queue, creating the
// queue in the registry when it does not exist yet.
func (c *Client) DirectEndpoint(name, queueName string, options ...messaging.EndpointOption) (*messaging.DirectEndpoint, error) {
	cfg, err := c.endpointConfig(queueName, options)
	if err != nil {
		return nil, err
	}
	return messaging.NewDirectEndpoint(name, cfg), nil
}

// DirectSyncEndpoint creates a request/reply endpoint on the named queue,
// creating the queue in the registry when it does not exist yet.
func (c *Client) DirectSyncEndpoint(name, queueName string, options ...messaging.EndpointOption) (*messaging.DirectSyncEndpoint, error) {
	cfg, err := c.endpointConfig(queueName, options)
	if err != nil {
		return nil, err
	}
	return messaging.NewDirectSyncEndpoint(name, cfg), nil
}

// LoadEndpoints builds every endpoint declared in a YAML configuration file
// against the client's registry.
func (c *Client) LoadEndpoints(path string) (map[string]*messaging.DirectEndpoint, map[string]*messaging.DirectSyncEndpoint, error) {
	file, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	return file.Build(c.registry, messaging.WithEndpointLogger(c.logger))
}
