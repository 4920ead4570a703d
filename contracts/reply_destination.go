package contracts

import "fmt"

// ReplyDestinationKind discriminates the ReplyDestination variant.
type ReplyDestinationKind int

const (
	// ReplyNone means no reply is expected.
	ReplyNone ReplyDestinationKind = iota
	// ReplyQueueRef references a queue instance directly.
	ReplyQueueRef
	// ReplyNamed references a queue by name, resolved at the point of use.
	ReplyNamed
)

// ReplyDestination says where the reply to a request should be sent. It is a
// tagged variant of {queue reference, queue name, none} stored under the
// HeaderReplyDestination message header.
type ReplyDestination struct {
	kind  ReplyDestinationKind
	queue MessageQueue
	name  string
}

// ReplyTo references the given queue instance directly.
func ReplyTo(queue MessageQueue) ReplyDestination {
	return ReplyDestination{kind: ReplyQueueRef, queue: queue}
}

// ReplyToNamed references a queue by name.
func ReplyToNamed(name string) ReplyDestination {
	return ReplyDestination{kind: ReplyNamed, name: name}
}

// NoReply means the sender does not expect a reply.
func NoReply() ReplyDestination {
	return ReplyDestination{kind: ReplyNone}
}

// Kind returns the variant discriminator.
func (d ReplyDestination) Kind() ReplyDestinationKind {
	return d.kind
}

// Queue returns the referenced queue instance for ReplyQueueRef destinations.
func (d ReplyDestination) Queue() (MessageQueue, bool) {
	return d.queue, d.kind == ReplyQueueRef
}

// QueueName returns the referenced queue name for ReplyNamed destinations.
func (d ReplyDestination) QueueName() (string, bool) {
	return d.name, d.kind == ReplyNamed
}

// IsNone reports whether no reply is expected.
func (d ReplyDestination) IsNone() bool {
	return d.kind == ReplyNone
}

// String renders the destination for logs.
func (d ReplyDestination) String() string {
	switch d.kind {
	case ReplyQueueRef:
		if d.queue.Name() != "" {
			return fmt.Sprintf("queue(%s)", d.queue.Name())
		}
		return "queue(temporary)"
	case ReplyNamed:
		return fmt.Sprintf("named(%s)", d.name)
	default:
		return "none"
	}
}

// ReplyDestinationOf reads the reply destination header of a message. A
// missing header or a header of an unexpected type yields NoReply.
func ReplyDestinationOf(msg Message) ReplyDestination {
	value, ok := msg.GetHeader(HeaderReplyDestination)
	if !ok {
		return NoReply()
	}
	dest, ok := value.(ReplyDestination)
	if !ok {
		return NoReply()
	}
	return dest
}

// SetReplyDestination attaches a reply destination to a message.
func SetReplyDestination(msg Message, dest ReplyDestination) {
	msg.SetHeader(HeaderReplyDestination, dest)
}
