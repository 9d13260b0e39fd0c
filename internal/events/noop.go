package events

import "context"

// NoopPublisher discards every event. It stands in for NATS when no bus
// URL is configured, so the workflow never has to nil-check its publisher.
type NoopPublisher struct{}

func (n *NoopPublisher) Publish(ctx context.Context, topic string, event any) error {
	return nil
}

func (n *NoopPublisher) Close() error {
	return nil
}
