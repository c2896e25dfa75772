package mq

// MessageQueue is the publish side of the event transport.
type MessageQueue interface {
	Publish(topic string, message []byte) error
	Close() error
}
