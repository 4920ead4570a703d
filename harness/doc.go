// Package harness holds the collaborator surface a test runner wires around
// testbus endpoints.
//
// TestContext is the shared mutable state of one logical test execution:
// variables (including pending correlation keys saved at send time),
// a ReferenceResolver for named collaborators, and registered Reporters
// receiving lifecycle and message events.
package harness
