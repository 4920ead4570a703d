package harness

import (
	"sync"
	"testing"

	"github.com/glimte/testbus-go/contracts"
	"github.com/stretchr/testify/assert"
)

func TestTestContext(t *testing.T) {
	t.Run("variables can be set and read", func(t *testing.T) {
		tc := NewTestContext()
		tc.SetVariable("orderId", "42")

		value, ok := tc.GetVariableString("orderId")
		assert.True(t, ok)
		assert.Equal(t, "42", value)

		_, ok = tc.GetVariable("missing")
		assert.False(t, ok)
	})

	t.Run("concurrent variable access is safe", func(t *testing.T) {
		tc := NewTestContext()
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				tc.SetVariable("key", n)
				tc.GetVariable("key")
			}(i)
		}
		wg.Wait()

		_, ok := tc.GetVariable("key")
		assert.True(t, ok)
	})

	t.Run("reporters receive message events", func(t *testing.T) {
		recorder := &recordingReporter{}
		tc := NewTestContext(WithReporter(recorder))

		out := contracts.NewMessage("request")
		in := contracts.NewMessage("reply")
		tc.OnOutbound(out)
		tc.OnInbound(in)

		assert.Equal(t, []string{out.GetID()}, recorder.outbound)
		assert.Equal(t, []string{in.GetID()}, recorder.inbound)
	})
}

func TestSimpleReferenceResolver(t *testing.T) {
	t.Run("resolves bound references", func(t *testing.T) {
		resolver := NewSimpleReferenceResolver()
		resolver.Bind("queue.orders", "the-queue")

		ref, err := resolver.Resolve("queue.orders")
		assert.NoError(t, err)
		assert.Equal(t, "the-queue", ref)
	})

	t.Run("unbound name yields not-found", func(t *testing.T) {
		resolver := NewSimpleReferenceResolver()

		_, err := resolver.Resolve("missing")
		assert.True(t, contracts.IsNotFound(err))
	})
}

type recordingReporter struct {
	mu       sync.Mutex
	inbound  []string
	outbound []string
}

func (r *recordingReporter) OnTestStart(name string)          {}
func (r *recordingReporter) OnTestFinish(name string)         {}
func (r *recordingReporter) OnTestFailure(name string, _ error) {}

func (r *recordingReporter) OnInboundMessage(msg contracts.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inbound = append(r.inbound, msg.GetID())
}

func (r *recordingReporter) OnOutboundMessage(msg contracts.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outbound = append(r.outbound, msg.GetID())
}
