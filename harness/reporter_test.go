package harness

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/glimte/testbus-go/contracts"
	"github.com/stretchr/testify/assert"
)

func newBufferReporter(options ...ReporterOption) (*LoggingReporter, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	opts := append([]ReporterOption{WithReporterLogger(logger)}, options...)
	return NewLoggingReporter(opts...), &buf
}

func TestLoggingReporter(t *testing.T) {
	t.Run("emits lifecycle events when enabled", func(t *testing.T) {
		reporter, buf := newBufferReporter()

		reporter.OnTestStart("roundtrip")
		reporter.OnTestFailure("roundtrip", errors.New("boom"))
		reporter.OnTestFinish("roundtrip")

		out := buf.String()
		assert.Contains(t, out, "test started")
		assert.Contains(t, out, "test failed")
		assert.Contains(t, out, "boom")
		assert.Contains(t, out, "test finished")
	})

	t.Run("emits message events when enabled", func(t *testing.T) {
		reporter, buf := newBufferReporter()
		msg := contracts.NewMessage("hello")

		reporter.OnOutboundMessage(msg)
		reporter.OnInboundMessage(msg)

		out := buf.String()
		assert.Contains(t, out, "message sent")
		assert.Contains(t, out, "message received")
		assert.Contains(t, out, msg.GetID())
	})

	t.Run("disabled reporter emits nothing", func(t *testing.T) {
		reporter, buf := newBufferReporter(WithEnabled(false))

		reporter.OnTestStart("silent")
		reporter.OnOutboundMessage(contracts.NewMessage("quiet"))

		assert.Empty(t, buf.String())
	})

	t.Run("enabled flag can be toggled per call site", func(t *testing.T) {
		reporter, buf := newBufferReporter()

		reporter.SetEnabled(false)
		reporter.OnTestStart("muted")
		assert.Empty(t, buf.String())

		reporter.SetEnabled(true)
		reporter.OnTestStart("audible")
		assert.Contains(t, buf.String(), "audible")
	})
}
