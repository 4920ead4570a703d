// Package messaging implements the synchronous direct-channel core of
// testbus: in-memory message queues, correlation-based reply matching, and
// the direct producer/consumer endpoint pairs built on both.
//
// A DirectSyncProducer sends a request onto a destination queue and blocks on
// a reply queue (named, referenced, or a synthesized temporary queue) until a
// correlated reply arrives or the endpoint timeout elapses. The matching
// DirectSyncConsumer receives the request, remembers which reply queue
// answers it, and routes a later reply back through that stored association.
// Correlation state lives in a swappable CorrelationManager so a harness can
// substitute its own store without touching producer or consumer code.
//
// Basic usage:
//
//	registry := messaging.NewQueueRegistry()
//	queue, _ := registry.Create("greetings")
//
//	config := messaging.NewDirectEndpointConfig(
//		messaging.WithQueue(queue),
//		messaging.WithTimeout(2*time.Second),
//	)
//	producer := messaging.NewDirectSyncProducer("hello", config)
//	consumer := messaging.NewDirectSyncConsumer("hello", config)
//
//	// consumer side, typically another goroutine:
//	request, _ := consumer.Receive(ctx, consumerCtx, 2*time.Second)
//	_ = consumer.Send(ctx, contracts.NewMessage("hi back"), consumerCtx)
//
//	// producer side:
//	_ = producer.Send(ctx, contracts.NewMessage("hi"), producerCtx)
//	reply, _ := producer.Receive(ctx, producerCtx)
package messaging
