// Package reliability provides retry policies and a circuit breaker used by
// testbus transports.
//
// Retry executes an operation under a pluggable RetryPolicy with context
// cancellation support. The CircuitBreaker guards brokered sends against a
// repeatedly failing transport so that test runs fail fast instead of
// exhausting their timeout budget on a dead broker.
package reliability
