package messaging

import (
	"fmt"
	"sync"

	"github.com/glimte/testbus-go/contracts"
)

// QueueResolver resolves queue names to queue instances.
type QueueResolver interface {
	ResolveQueue(name string) (contracts.MessageQueue, error)
}

// QueueRegistry is a name-to-queue registry doubling as the default
// QueueResolver for direct endpoints.
type QueueRegistry struct {
	mu     sync.RWMutex
	queues map[string]contracts.MessageQueue
}

// NewQueueRegistry creates an empty registry.
func NewQueueRegistry() *QueueRegistry {
	return &QueueRegistry{queues: make(map[string]contracts.MessageQueue)}
}

// Register adds a queue under a name. Registering the same name twice is an
// error so tests fail loudly on conflicting destinations.
func (r *QueueRegistry) Register(name string, queue contracts.MessageQueue) error {
	if name == "" {
		return fmt.Errorf("queue name must not be empty")
	}
	if queue == nil {
		return fmt.Errorf("queue must not be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.queues[name]; exists {
		return fmt.Errorf("queue already registered: '%s'", name)
	}
	r.queues[name] = queue
	return nil
}

// Create registers a new in-memory queue under the given name.
func (r *QueueRegistry) Create(name string) (*InMemoryQueue, error) {
	queue := NewQueue(name)
	if err := r.Register(name, queue); err != nil {
		return nil, err
	}
	return queue, nil
}

// GetOrCreate returns the queue registered under name, creating an in-memory
// queue when none exists yet.
func (r *QueueRegistry) GetOrCreate(name string) (contracts.MessageQueue, error) {
	if name == "" {
		return nil, fmt.Errorf("queue name must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if queue, exists := r.queues[name]; exists {
		return queue, nil
	}
	queue := NewQueue(name)
	r.queues[name] = queue
	return queue, nil
}

// ResolveQueue implements QueueResolver.
func (r *QueueRegistry) ResolveQueue(name string) (contracts.MessageQueue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	queue, exists := r.queues[name]
	if !exists {
		return nil, &contracts.NotFoundError{Kind: "queue", Name: name}
	}
	return queue, nil
}
