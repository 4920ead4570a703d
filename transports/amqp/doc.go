// Package amqp provides a brokered contracts.MessageQueue over RabbitMQ.
//
// The same direct sync producer/consumer pairs that run against in-memory
// queues can address a broker-backed queue: Send publishes a JSON envelope,
// Receive consumes with the same timeout semantics (nil result on timeout).
// Queue-reference reply destinations cannot cross a process boundary; only
// named reply destinations survive the broker round trip.
package amqp
