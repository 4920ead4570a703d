package messaging

import (
	"testing"

	"github.com/glimte/testbus-go/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRegistry(t *testing.T) {
	t.Run("registered queues resolve by name", func(t *testing.T) {
		registry := NewQueueRegistry()
		queue := NewQueue("orders")
		require.NoError(t, registry.Register("orders", queue))

		resolved, err := registry.ResolveQueue("orders")
		require.NoError(t, err)
		assert.Same(t, contracts.MessageQueue(queue), resolved)
	})

	t.Run("unknown name yields not-found with the requested name", func(t *testing.T) {
		registry := NewQueueRegistry()

		_, err := registry.ResolveQueue("ghost")
		assert.True(t, contracts.IsNotFound(err))
		assert.Contains(t, err.Error(), "ghost")
	})

	t.Run("duplicate registration fails", func(t *testing.T) {
		registry := NewQueueRegistry()
		_, err := registry.Create("orders")
		require.NoError(t, err)

		err = registry.Register("orders", NewQueue("orders"))
		assert.Error(t, err)
	})

	t.Run("GetOrCreate reuses existing queues", func(t *testing.T) {
		registry := NewQueueRegistry()

		first, err := registry.GetOrCreate("events")
		require.NoError(t, err)
		second, err := registry.GetOrCreate("events")
		require.NoError(t, err)

		assert.Same(t, first, second)
	})

	t.Run("empty names are rejected", func(t *testing.T) {
		registry := NewQueueRegistry()

		assert.Error(t, registry.Register("", NewQueue("x")))
		_, err := registry.GetOrCreate("")
		assert.Error(t, err)
	})
}
