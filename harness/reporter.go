package harness

import (
	"log/slog"
	"sync/atomic"

	"github.com/glimte/testbus-go/contracts"
)

// Reporter receives lifecycle and message events. Reporters impose no
// contract back onto the messaging core.
type Reporter interface {
	OnTestStart(name string)
	OnTestFinish(name string)
	OnTestFailure(name string, err error)
	OnInboundMessage(msg contracts.Message)
	OnOutboundMessage(msg contracts.Message)
}

// LoggingReporter writes lifecycle events through slog. Reporting is gated by
// an explicit enabled flag checked on every call, so a harness can silence
// reporting without swapping logger instances.
type LoggingReporter struct {
	logger  *slog.Logger
	enabled atomic.Bool
}

// ReporterOption configures a LoggingReporter.
type ReporterOption func(*LoggingReporter)

// WithReporterLogger sets the logger.
func WithReporterLogger(logger *slog.Logger) ReporterOption {
	return func(r *LoggingReporter) {
		r.logger = logger
	}
}

// WithEnabled sets the initial enabled state.
func WithEnabled(enabled bool) ReporterOption {
	return func(r *LoggingReporter) {
		r.enabled.Store(enabled)
	}
}

// NewLoggingReporter creates an enabled reporter on slog.Default.
func NewLoggingReporter(options ...ReporterOption) *LoggingReporter {
	r := &LoggingReporter{logger: slog.Default()}
	r.enabled.Store(true)
	for _, opt := range options {
		opt(r)
	}
	return r
}

// SetEnabled toggles reporting.
func (r *LoggingReporter) SetEnabled(enabled bool) {
	r.enabled.Store(enabled)
}

// Enabled reports whether the reporter emits events.
func (r *LoggingReporter) Enabled() bool {
	return r.enabled.Load()
}

// OnTestStart implements Reporter.
func (r *LoggingReporter) OnTestStart(name string) {
	if !r.enabled.Load() {
		return
	}
	r.logger.Info("test started", "test", name)
}

// OnTestFinish implements Reporter.
func (r *LoggingReporter) OnTestFinish(name string) {
	if !r.enabled.Load() {
		return
	}
	r.logger.Info("test finished", "test", name)
}

// OnTestFailure implements Reporter.
func (r *LoggingReporter) OnTestFailure(name string, err error) {
	if !r.enabled.Load() {
		return
	}
	r.logger.Error("test failed", "test", name, "error", err)
}

// OnInboundMessage implements Reporter.
func (r *LoggingReporter) OnInboundMessage(msg contracts.Message) {
	if !r.enabled.Load() {
		return
	}
	r.logger.Info("message received", "id", msg.GetID(), "payload", msg.GetPayload())
}

// OnOutboundMessage implements Reporter.
func (r *LoggingReporter) OnOutboundMessage(msg contracts.Message) {
	if !r.enabled.Load() {
		return
	}
	r.logger.Info("message sent", "id", msg.GetID(), "payload", msg.GetPayload())
}
