// Package contracts defines the message and queue contracts shared by all
// testbus endpoints.
//
// A Message is an envelope of payload plus headers that travels between
// producers and consumers. A MessageQueue is an ordered destination supporting
// blocking receive with timeout and optional selector-based filtering. The
// ReplyDestination variant carries routing information for synchronous
// request/reply exchanges inside a reserved message header.
//
// Error types in this package form the taxonomy used across the module:
//   - TimeoutError: a bounded wait elapsed without a result
//   - NotFoundError: a named queue, key or reference could not be resolved
//   - DeliveryError: an underlying transport rejected a send
package contracts
