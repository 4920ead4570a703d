package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/glimte/testbus-go/contracts"
	"github.com/glimte/testbus-go/harness"
)

// Correlator derives the correlation key pairing a request with its reply.
// Keys computed for a request and its reply must be equal.
type Correlator interface {
	// CorrelationKeyName returns the context variable name under which the
	// pending key of the given endpoint is registered.
	CorrelationKeyName(endpointName string) string

	// CorrelationKey computes the correlation key of a message.
	CorrelationKey(msg contracts.Message) string
}

// DefaultCorrelator derives correlation keys from the message ID.
type DefaultCorrelator struct{}

// CorrelationKeyName implements Correlator.
func (c DefaultCorrelator) CorrelationKeyName(endpointName string) string {
	return fmt.Sprintf("testbus_correlation_key_%s", endpointName)
}

// CorrelationKey implements Correlator.
func (c DefaultCorrelator) CorrelationKey(msg contracts.Message) string {
	return fmt.Sprintf("id = '%s'", msg.GetID())
}

// ObjectStore holds correlated values keyed by correlation key.
type ObjectStore[T any] interface {
	// Add publishes a value for a key.
	Add(key string, value T)

	// Remove takes the value for a key out of the store, if present.
	Remove(key string) (T, bool)
}

// DefaultObjectStore is a mutex-guarded in-memory ObjectStore. Entries are
// consumed (removed) by the first successful lookup; entries never claimed
// stay in the store for its lifetime — there is no eviction.
type DefaultObjectStore[T any] struct {
	mu      sync.Mutex
	entries map[string]T
}

// NewDefaultObjectStore creates an empty store.
func NewDefaultObjectStore[T any]() *DefaultObjectStore[T] {
	return &DefaultObjectStore[T]{entries: make(map[string]T)}
}

// Add implements ObjectStore.
func (s *DefaultObjectStore[T]) Add(key string, value T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
}

// Remove implements ObjectStore.
func (s *DefaultObjectStore[T]) Remove(key string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.entries[key]
	if ok {
		delete(s.entries, key)
	}
	return value, ok
}

// Len returns the number of unclaimed entries.
func (s *DefaultObjectStore[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// CorrelationManager pairs requests with their correlated values across
// independently scheduled producer and consumer goroutines. One side saves
// the pending key against the test context at send time; the other publishes
// the value; Find bridges the race through bounded polling.
//
// The manager is the primary extension point of the sync endpoints: a harness
// may substitute any implementation (for example a distributed store) via the
// endpoints' SetCorrelationManager.
type CorrelationManager[T any] interface {
	// SaveCorrelationKey registers the pending key for an execution context.
	SaveCorrelationKey(keyName, key string, tc *harness.TestContext)

	// CorrelationKey returns the pending key saved for an execution context.
	CorrelationKey(keyName string, tc *harness.TestContext) (string, error)

	// Store publishes a value for a key.
	Store(key string, value T)

	// Find polls for the value of a key until it appears or timeout elapses.
	Find(ctx context.Context, key string, timeout time.Duration) (T, error)
}

// PollingCorrelationManager is the default CorrelationManager. Find is a
// sleep-and-retry poll rather than a blocking wait, so an external cancel on
// the enclosing test aborts the lookup between polls.
type PollingCorrelationManager[T any] struct {
	store        ObjectStore[T]
	pollInterval time.Duration
	retryHint    string
	logger       *slog.Logger
}

// NewPollingCorrelationManager creates a manager polling at the endpoint's
// configured interval. retryHint names what the poll is waiting for and is
// used in debug logs and timeout errors.
func NewPollingCorrelationManager[T any](config *DirectEndpointConfig, retryHint string) *PollingCorrelationManager[T] {
	return &PollingCorrelationManager[T]{
		store:        NewDefaultObjectStore[T](),
		pollInterval: config.PollingInterval,
		retryHint:    retryHint,
		logger:       config.Logger,
	}
}

// SaveCorrelationKey implements CorrelationManager. The key is stored as a
// context variable, so the pending-key registry is scoped to one execution.
func (m *PollingCorrelationManager[T]) SaveCorrelationKey(keyName, key string, tc *harness.TestContext) {
	tc.SetVariable(keyName, key)
}

// CorrelationKey implements CorrelationManager.
func (m *PollingCorrelationManager[T]) CorrelationKey(keyName string, tc *harness.TestContext) (string, error) {
	key, ok := tc.GetVariableString(keyName)
	if !ok {
		return "", &contracts.NotFoundError{Kind: "correlation key", Name: keyName}
	}
	return key, nil
}

// Store implements CorrelationManager.
func (m *PollingCorrelationManager[T]) Store(key string, value T) {
	m.store.Add(key, value)
}

// Find implements CorrelationManager. A value stored after Find begins but
// before the timeout elapses is still found.
func (m *PollingCorrelationManager[T]) Find(ctx context.Context, key string, timeout time.Duration) (T, error) {
	var zero T
	deadline := time.Now().Add(timeout)

	for {
		if value, ok := m.store.Remove(key); ok {
			return value, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return zero, &contracts.TimeoutError{Op: fmt.Sprintf("%s (key '%s')", m.retryHint, key), Timeout: timeout}
		}

		m.logger.Debug(m.retryHint, "key", key, "remaining", remaining)

		wait := m.pollInterval
		if wait > remaining {
			wait = remaining
		}
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		}
	}
}
