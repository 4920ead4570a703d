package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/glimte/testbus-go/contracts"
)

// envelope is the wire format of a message crossing the broker.
type envelope struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   any            `json:"payload"`
	Headers   map[string]any `json:"headers,omitempty"`
	ReplyTo   string         `json:"replyTo,omitempty"`
}

// encodeMessage marshals a message into its wire envelope. A queue-reference
// reply destination is rejected: the handle is meaningless on the other side
// of the broker.
func encodeMessage(msg contracts.Message) ([]byte, error) {
	env := envelope{
		ID:        msg.GetID(),
		Timestamp: msg.GetTimestamp(),
		Payload:   msg.GetPayload(),
		Headers:   msg.GetHeaders(),
	}

	dest := contracts.ReplyDestinationOf(msg)
	switch dest.Kind() {
	case contracts.ReplyQueueRef:
		return nil, fmt.Errorf("queue-reference reply destinations cannot cross a broker, use a named destination")
	case contracts.ReplyNamed:
		env.ReplyTo, _ = dest.QueueName()
	}
	delete(env.Headers, contracts.HeaderReplyDestination)

	return json.Marshal(env)
}

// decodeMessage rebuilds a message from its wire envelope, preserving the
// original message identity and re-attaching a named reply destination.
func decodeMessage(body []byte) (contracts.Message, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode message envelope: %w", err)
	}
	if env.ID == "" {
		return nil, fmt.Errorf("message envelope has no id")
	}

	msg := contracts.ReconstructMessage(env.ID, env.Timestamp, env.Payload, env.Headers)
	if env.ReplyTo != "" {
		contracts.SetReplyDestination(msg, contracts.ReplyToNamed(env.ReplyTo))
	}
	return msg, nil
}
