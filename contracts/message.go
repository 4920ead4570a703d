package contracts

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Reserved header names used by testbus endpoints.
const (
	// HeaderReplyDestination carries the ReplyDestination of a synchronous
	// request. Absence means the sender does not expect a reply.
	HeaderReplyDestination = "testbus_reply_destination"
)

// Message is the envelope passed between producers and consumers.
type Message interface {
	// GetID returns the unique message identifier.
	GetID() string

	// GetTimestamp returns the creation time of the message.
	GetTimestamp() time.Time

	// GetPayload returns the message body.
	GetPayload() any

	// SetPayload replaces the message body.
	SetPayload(payload any)

	// GetHeader returns the header value for name if present.
	GetHeader(name string) (any, bool)

	// SetHeader sets a header value.
	SetHeader(name string, value any)

	// GetHeaders returns a copy of all headers.
	GetHeaders() map[string]any
}

// DefaultMessage is the standard Message implementation.
type DefaultMessage struct {
	id        string
	timestamp time.Time
	payload   any
	headers   map[string]any
}

// NewMessage creates a message with a generated ID and current timestamp.
func NewMessage(payload any) *DefaultMessage {
	return &DefaultMessage{
		id:        uuid.New().String(),
		timestamp: time.Now().UTC(),
		payload:   payload,
		headers:   make(map[string]any),
	}
}

// ReconstructMessage rebuilds a message received from a transport, keeping
// its original identity so correlation keys derived from the ID still match.
func ReconstructMessage(id string, timestamp time.Time, payload any, headers map[string]any) *DefaultMessage {
	m := &DefaultMessage{
		id:        id,
		timestamp: timestamp,
		payload:   payload,
		headers:   make(map[string]any, len(headers)),
	}
	for name, value := range headers {
		m.headers[name] = value
	}
	return m
}

// NewMessageWithHeaders creates a message carrying the given headers.
func NewMessageWithHeaders(payload any, headers map[string]any) *DefaultMessage {
	m := NewMessage(payload)
	for name, value := range headers {
		m.headers[name] = value
	}
	return m
}

// GetID returns the message ID.
func (m *DefaultMessage) GetID() string {
	return m.id
}

// GetTimestamp returns the message timestamp.
func (m *DefaultMessage) GetTimestamp() time.Time {
	return m.timestamp
}

// GetPayload returns the message body.
func (m *DefaultMessage) GetPayload() any {
	return m.payload
}

// SetPayload replaces the message body.
func (m *DefaultMessage) SetPayload(payload any) {
	m.payload = payload
}

// GetHeader returns the header value for name if present.
func (m *DefaultMessage) GetHeader(name string) (any, bool) {
	value, ok := m.headers[name]
	return value, ok
}

// SetHeader sets a header value.
func (m *DefaultMessage) SetHeader(name string, value any) {
	m.headers[name] = value
}

// GetHeaders returns a copy of all headers.
func (m *DefaultMessage) GetHeaders() map[string]any {
	headers := make(map[string]any, len(m.headers))
	for name, value := range m.headers {
		headers[name] = value
	}
	return headers
}

// String renders the message for logs.
func (m *DefaultMessage) String() string {
	return fmt.Sprintf("message[id=%s, payload=%v, headers=%d]", m.id, m.payload, len(m.headers))
}
