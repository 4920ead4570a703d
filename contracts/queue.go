package contracts

import (
	"context"
	"time"
)

// MessageSelector filters messages during a selective receive.
type MessageSelector func(Message) bool

// HeaderEquals returns a selector matching messages whose header name equals
// the given value.
func HeaderEquals(name string, value any) MessageSelector {
	return func(msg Message) bool {
		actual, ok := msg.GetHeader(name)
		return ok && actual == value
	}
}

// MessageQueue is an ordered message destination.
//
// Send enqueues without blocking on in-process queues; a non-nil error means
// the underlying transport rejected the message. Receive and ReceiveSelected
// block the calling goroutine until a message is available or the timeout
// elapses; a (nil, nil) result means the timeout elapsed — absence is not an
// error, callers decide whether it is fatal.
type MessageQueue interface {
	// Name returns the queue name, empty for temporary queues.
	Name() string

	// Send enqueues a message.
	Send(ctx context.Context, msg Message) error

	// Receive dequeues the oldest message, waiting up to timeout.
	Receive(ctx context.Context, timeout time.Duration) (Message, error)

	// ReceiveSelected dequeues the oldest message matching the selector,
	// waiting up to timeout. Non-matching messages are left in place.
	ReceiveSelected(ctx context.Context, selector MessageSelector, timeout time.Duration) (Message, error)
}
