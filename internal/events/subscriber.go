package events

// Subscriber is the consuming side of the event bus. The batch-close
// orchestrator and the activity exporter read from it.
type Subscriber interface {
	// Subscribe delivers raw payloads for one topic on the returned
	// channel until the cancel function is called. Cancel also closes
	// the channel.
	Subscribe(topic string) (<-chan []byte, func(), error)
	Close() error
}
