package events

// Subscriber receives raw event payloads. NATSSubscriber is the production
// implementation; tl watch depends only on this interface.
type Subscriber interface {
	// Subscribe delivers payloads published on topic. The cancel function
	// unsubscribes and closes the channel.
	Subscribe(topic string) (<-chan []byte, func(), error)
	Close() error
}
