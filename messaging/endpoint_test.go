package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/glimte/testbus-go/contracts"
	"github.com/glimte/testbus-go/harness"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectEndpointConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		config := NewDirectEndpointConfig()

		assert.Equal(t, 5000*time.Millisecond, config.Timeout)
		assert.Equal(t, 500*time.Millisecond, config.PollingInterval)
		assert.IsType(t, DefaultCorrelator{}, config.Correlator)
		assert.NotNil(t, config.Logger)
	})

	t.Run("options override defaults", func(t *testing.T) {
		registry := NewQueueRegistry()
		config := NewDirectEndpointConfig(
			WithQueueName("orders"),
			WithResolver(registry),
			WithTimeout(time.Second),
			WithPollingInterval(50*time.Millisecond),
		)

		assert.Equal(t, "orders", config.QueueName)
		assert.Equal(t, time.Second, config.Timeout)
		assert.Equal(t, 50*time.Millisecond, config.PollingInterval)
	})

	t.Run("destination resolution fails without queue or name", func(t *testing.T) {
		config := NewDirectEndpointConfig()
		_, err := config.destinationQueue()
		assert.Error(t, err)
	})

	t.Run("queue name resolves through the resolver", func(t *testing.T) {
		registry := NewQueueRegistry()
		queue, err := registry.Create("orders")
		require.NoError(t, err)

		config := NewDirectEndpointConfig(WithQueueName("orders"), WithResolver(registry))
		resolved, err := config.destinationQueue()
		require.NoError(t, err)
		assert.Same(t, contracts.MessageQueue(queue), resolved)
	})
}

func TestDirectEndpoint(t *testing.T) {
	t.Run("producer and consumer are cached", func(t *testing.T) {
		endpoint := NewDirectEndpoint("orders", NewDirectEndpointConfig(WithQueue(NewQueue("orders"))))

		assert.Same(t, endpoint.Producer(), endpoint.Producer())
		assert.Same(t, endpoint.Consumer(), endpoint.Consumer())
		assert.Equal(t, "orders", endpoint.Name())
	})

	t.Run("one-way send and receive", func(t *testing.T) {
		ctx := context.Background()
		endpoint := NewDirectEndpoint("oneway", NewDirectEndpointConfig(WithQueue(NewQueue("oneway"))))

		tc := harness.NewTestContext()
		msg := contracts.NewMessage("fire and forget")
		require.NoError(t, endpoint.Producer().Send(ctx, msg, tc))

		got, err := endpoint.Consumer().Receive(ctx, tc, time.Second)
		require.NoError(t, err)
		assert.Equal(t, msg.GetID(), got.GetID())
	})

	t.Run("one-way receive times out as an error", func(t *testing.T) {
		ctx := context.Background()
		endpoint := NewDirectEndpoint("empty", NewDirectEndpointConfig(WithQueue(NewQueue("empty"))))

		_, err := endpoint.Consumer().Receive(ctx, harness.NewTestContext(), 50*time.Millisecond)
		assert.True(t, contracts.IsTimeout(err))
	})
}

func TestDirectSyncEndpoint(t *testing.T) {
	t.Run("producer and consumer share the configuration", func(t *testing.T) {
		config := NewDirectEndpointConfig(WithQueue(NewQueue("shared")), WithTimeout(time.Second))
		endpoint := NewDirectSyncEndpoint("shared", config)

		assert.Same(t, endpoint.Producer(), endpoint.Producer())
		assert.Same(t, endpoint.Consumer(), endpoint.Consumer())
		assert.Same(t, config, endpoint.Config())
	})
}
