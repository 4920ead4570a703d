package harness

import (
	"sync"

	"github.com/glimte/testbus-go/contracts"
)

// ReferenceResolver resolves a collaborator by name. It is the seam through
// which a DI container or test harness hands named components to endpoints.
type ReferenceResolver interface {
	Resolve(name string) (any, error)
}

// SimpleReferenceResolver is a map-backed ReferenceResolver.
type SimpleReferenceResolver struct {
	mu   sync.RWMutex
	refs map[string]any
}

// NewSimpleReferenceResolver creates an empty resolver.
func NewSimpleReferenceResolver() *SimpleReferenceResolver {
	return &SimpleReferenceResolver{refs: make(map[string]any)}
}

// Bind registers a reference under a name, replacing any previous binding.
func (r *SimpleReferenceResolver) Bind(name string, ref any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refs[name] = ref
}

// Resolve implements ReferenceResolver.
func (r *SimpleReferenceResolver) Resolve(name string) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ref, ok := r.refs[name]
	if !ok {
		return nil, &contracts.NotFoundError{Kind: "reference", Name: name}
	}
	return ref, nil
}

// TestContext carries the state of one logical test execution. Test actions
// running in parallel containers each hold their own context; the context
// itself is safe for use by the goroutines of one execution.
type TestContext struct {
	mu        sync.RWMutex
	variables map[string]any
	resolver  ReferenceResolver
	reporters []Reporter
}

// ContextOption configures a TestContext.
type ContextOption func(*TestContext)

// WithReferenceResolver sets the reference resolver.
func WithReferenceResolver(resolver ReferenceResolver) ContextOption {
	return func(tc *TestContext) {
		tc.resolver = resolver
	}
}

// WithReporter registers a reporter.
func WithReporter(reporter Reporter) ContextOption {
	return func(tc *TestContext) {
		tc.reporters = append(tc.reporters, reporter)
	}
}

// NewTestContext creates a test context.
func NewTestContext(options ...ContextOption) *TestContext {
	tc := &TestContext{
		variables: make(map[string]any),
		resolver:  NewSimpleReferenceResolver(),
	}
	for _, opt := range options {
		opt(tc)
	}
	return tc
}

// SetVariable stores a variable, replacing any previous value.
func (tc *TestContext) SetVariable(name string, value any) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.variables[name] = value
}

// GetVariable returns a variable if present.
func (tc *TestContext) GetVariable(name string) (any, bool) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	value, ok := tc.variables[name]
	return value, ok
}

// GetVariableString returns a string variable if present.
func (tc *TestContext) GetVariableString(name string) (string, bool) {
	value, ok := tc.GetVariable(name)
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	return s, ok
}

// ReferenceResolver returns the configured resolver.
func (tc *TestContext) ReferenceResolver() ReferenceResolver {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.resolver
}

// AddReporter registers a reporter after construction.
func (tc *TestContext) AddReporter(reporter Reporter) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.reporters = append(tc.reporters, reporter)
}

// OnOutbound notifies reporters of a sent message.
func (tc *TestContext) OnOutbound(msg contracts.Message) {
	for _, r := range tc.snapshot() {
		r.OnOutboundMessage(msg)
	}
}

// OnInbound notifies reporters of a received message.
func (tc *TestContext) OnInbound(msg contracts.Message) {
	for _, r := range tc.snapshot() {
		r.OnInboundMessage(msg)
	}
}

func (tc *TestContext) snapshot() []Reporter {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	reporters := make([]Reporter, len(tc.reporters))
	copy(reporters, tc.reporters)
	return reporters
}
