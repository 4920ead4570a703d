package messaging

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/glimte/testbus-go/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryQueue(t *testing.T) {
	ctx := context.Background()

	t.Run("messages dequeue in FIFO order", func(t *testing.T) {
		queue := NewQueue("fifo")
		first := contracts.NewMessage("first")
		second := contracts.NewMessage("second")

		require.NoError(t, queue.Send(ctx, first))
		require.NoError(t, queue.Send(ctx, second))

		got, err := queue.Receive(ctx, time.Second)
		require.NoError(t, err)
		assert.Equal(t, first.GetID(), got.GetID())

		got, err = queue.Receive(ctx, time.Second)
		require.NoError(t, err)
		assert.Equal(t, second.GetID(), got.GetID())
	})

	t.Run("receive times out with nil result", func(t *testing.T) {
		queue := NewQueue("empty")

		start := time.Now()
		got, err := queue.Receive(ctx, 50*time.Millisecond)
		elapsed := time.Since(start)

		assert.NoError(t, err)
		assert.Nil(t, got)
		assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
		assert.Less(t, elapsed, 500*time.Millisecond)
	})

	t.Run("receive picks up a message sent while waiting", func(t *testing.T) {
		queue := NewQueue("late")
		msg := contracts.NewMessage("late arrival")

		go func() {
			time.Sleep(30 * time.Millisecond)
			_ = queue.Send(ctx, msg)
		}()

		got, err := queue.Receive(ctx, time.Second)
		require.NoError(t, err)
		assert.Equal(t, msg.GetID(), got.GetID())
	})

	t.Run("selector skips non-matching without removing them", func(t *testing.T) {
		queue := NewQueue("selective")
		plain := contracts.NewMessage("plain")
		tagged := contracts.NewMessage("tagged")
		tagged.SetHeader("operation", "greet")

		require.NoError(t, queue.Send(ctx, plain))
		require.NoError(t, queue.Send(ctx, tagged))

		got, err := queue.ReceiveSelected(ctx, contracts.HeaderEquals("operation", "greet"), time.Second)
		require.NoError(t, err)
		assert.Equal(t, tagged.GetID(), got.GetID())

		// The skipped message is still first in line.
		got, err = queue.Receive(ctx, time.Second)
		require.NoError(t, err)
		assert.Equal(t, plain.GetID(), got.GetID())
	})

	t.Run("selector preserves order among matching messages", func(t *testing.T) {
		queue := NewQueue("ordered")
		var matching []string
		for i := 0; i < 3; i++ {
			noise := contracts.NewMessage(fmt.Sprintf("noise-%d", i))
			require.NoError(t, queue.Send(ctx, noise))

			msg := contracts.NewMessage(fmt.Sprintf("match-%d", i))
			msg.SetHeader("kind", "wanted")
			matching = append(matching, msg.GetID())
			require.NoError(t, queue.Send(ctx, msg))
		}

		for _, want := range matching {
			got, err := queue.ReceiveSelected(ctx, contracts.HeaderEquals("kind", "wanted"), time.Second)
			require.NoError(t, err)
			assert.Equal(t, want, got.GetID())
		}
	})

	t.Run("send rejects nil messages", func(t *testing.T) {
		queue := NewQueue("strict")
		assert.ErrorIs(t, queue.Send(ctx, nil), contracts.ErrEmptyMessage)
	})

	t.Run("receive aborts on context cancellation", func(t *testing.T) {
		queue := NewQueue("cancelled")
		cancelCtx, cancel := context.WithCancel(ctx)

		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()

		_, err := queue.Receive(cancelCtx, 5*time.Second)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("concurrent senders and receivers drain every message", func(t *testing.T) {
		queue := NewQueue("busy")
		const senders, perSender = 4, 25

		var wg sync.WaitGroup
		for s := 0; s < senders; s++ {
			wg.Add(1)
			go func(s int) {
				defer wg.Done()
				for i := 0; i < perSender; i++ {
					_ = queue.Send(ctx, contracts.NewMessage(fmt.Sprintf("%d-%d", s, i)))
				}
			}(s)
		}

		received := make(chan string, senders*perSender)
		for r := 0; r < 4; r++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					msg, err := queue.Receive(ctx, 200*time.Millisecond)
					if err != nil || msg == nil {
						return
					}
					received <- msg.GetID()
				}
			}()
		}

		wg.Wait()
		close(received)

		seen := make(map[string]bool)
		for id := range received {
			assert.False(t, seen[id], "message delivered twice: %s", id)
			seen[id] = true
		}
		assert.Len(t, seen, senders*perSender)
	})

	t.Run("temporary queues get distinct names", func(t *testing.T) {
		a := NewTemporaryQueue()
		b := NewTemporaryQueue()

		assert.NotEqual(t, a.Name(), b.Name())
		assert.Contains(t, a.Name(), "temporary.")
	})
}
