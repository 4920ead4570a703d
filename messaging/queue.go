package messaging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/glimte/testbus-go/contracts"
	"github.com/google/uuid"
)

// InMemoryQueue is an unbounded, FIFO, in-process message queue. Many
// producers and consumers may use it concurrently; synchronization is
// internal. Receivers block cooperatively: the goroutine waits on a
// notification channel rearmed on every send, never busy-spinning.
type InMemoryQueue struct {
	name string

	mu       sync.Mutex
	messages []contracts.Message
	notify   chan struct{}
}

// NewQueue creates a named in-memory queue.
func NewQueue(name string) *InMemoryQueue {
	return &InMemoryQueue{
		name:   name,
		notify: make(chan struct{}),
	}
}

// NewTemporaryQueue creates an anonymous queue for a single request/reply
// exchange. Temporary queues are owned by the producer that created them and
// are reclaimed by the garbage collector once the exchange completes.
func NewTemporaryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		name:   fmt.Sprintf("temporary.%s", uuid.New().String()[:8]),
		notify: make(chan struct{}),
	}
}

// Name returns the queue name.
func (q *InMemoryQueue) Name() string {
	return q.name
}

// Send enqueues a message. It never blocks.
func (q *InMemoryQueue) Send(ctx context.Context, msg contracts.Message) error {
	if msg == nil {
		return contracts.ErrEmptyMessage
	}

	q.mu.Lock()
	q.messages = append(q.messages, msg)
	// Wake all pending receivers; each rearms on its next pass.
	close(q.notify)
	q.notify = make(chan struct{})
	q.mu.Unlock()
	return nil
}

// Receive dequeues the oldest message, waiting up to timeout. A (nil, nil)
// result means the timeout elapsed.
func (q *InMemoryQueue) Receive(ctx context.Context, timeout time.Duration) (contracts.Message, error) {
	return q.ReceiveSelected(ctx, nil, timeout)
}

// ReceiveSelected dequeues the oldest message matching the selector, waiting
// up to timeout. Non-matching messages keep their position in the queue.
func (q *InMemoryQueue) ReceiveSelected(ctx context.Context, selector contracts.MessageSelector, timeout time.Duration) (contracts.Message, error) {
	deadline := time.Now().Add(timeout)

	for {
		q.mu.Lock()
		for i, msg := range q.messages {
			if selector != nil && !selector(msg) {
				continue
			}
			q.messages = append(q.messages[:i], q.messages[i+1:]...)
			q.mu.Unlock()
			return msg, nil
		}
		wakeup := q.notify
		q.mu.Unlock()

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, nil
		}

		timer := time.NewTimer(remaining)
		select {
		case <-wakeup:
			timer.Stop()
		case <-timer.C:
			return nil, nil
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}
}

// Len returns the number of pending messages.
func (q *InMemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.messages)
}
