package testbus

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glimte/testbus-go/contracts"
	"github.com/glimte/testbus-go/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient(t *testing.T) {
	ctx := context.Background()

	t.Run("sync endpoint round trip through the client", func(t *testing.T) {
		client := NewClient(WithReporting(false))

		endpoint, err := client.DirectSyncEndpoint("greeter", "greetings",
			messaging.WithTimeout(time.Second),
			messaging.WithPollingInterval(10*time.Millisecond))
		require.NoError(t, err)

		go func() {
			tc := client.NewTestContext()
			request, err := endpoint.Consumer().Receive(ctx, tc, 2*time.Second)
			if err != nil {
				return
			}
			reply := contracts.NewMessage("hello " + request.GetPayload().(string))
			_ = endpoint.Consumer().Send(ctx, reply, tc)
		}()

		tc := client.NewTestContext()
		require.NoError(t, endpoint.Producer().Send(ctx, contracts.NewMessage("world"), tc))

		reply, err := endpoint.Producer().Receive(ctx, tc)
		require.NoError(t, err)
		assert.Equal(t, "hello world", reply.GetPayload())
	})

	t.Run("endpoints on the same queue name share the queue", func(t *testing.T) {
		client := NewClient(WithReporting(false))

		a, err := client.DirectEndpoint("a", "shared")
		require.NoError(t, err)
		b, err := client.DirectEndpoint("b", "shared")
		require.NoError(t, err)

		tc := client.NewTestContext()
		msg := contracts.NewMessage("cross")
		require.NoError(t, a.Producer().Send(ctx, msg, tc))

		got, err := b.Consumer().Receive(ctx, tc, time.Second)
		require.NoError(t, err)
		assert.Equal(t, msg.GetID(), got.GetID())
	})

	t.Run("test context reports through the client reporter", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		client := NewClient(WithClientLogger(logger))

		endpoint, err := client.DirectEndpoint("audited", "audit")
		require.NoError(t, err)

		tc := client.NewTestContext()
		require.NoError(t, endpoint.Producer().Send(ctx, contracts.NewMessage("event"), tc))

		assert.Contains(t, buf.String(), "message sent")
	})

	t.Run("reporting can be disabled up front", func(t *testing.T) {
		client := NewClient(WithReporting(false))
		assert.False(t, client.Reporter().Enabled())
	})

	t.Run("endpoints load from a YAML file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "endpoints.yaml")
		yaml := "endpoints:\n  - name: orders\n    queue: orders.inbound\n    sync: true\n    timeoutMillis: 1500\n"
		require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

		client := NewClient(WithReporting(false))
		endpoints, syncEndpoints, err := client.LoadEndpoints(path)
		require.NoError(t, err)

		assert.Empty(t, endpoints)
		require.Contains(t, syncEndpoints, "orders")
		assert.Equal(t, 1500*time.Millisecond, syncEndpoints["orders"].Config().Timeout)

		_, err = client.Registry().ResolveQueue("orders.inbound")
		assert.NoError(t, err)
	})
}
