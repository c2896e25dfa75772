package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/voisin/friendgraph/pkg/log"
	"github.com/voisin/friendgraph/pkg/mq"
)

// Event names emitted on relationship state changes.
const (
	EventNewFriendRequest = "newFriendRequest"
)

// Notifier pushes a real-time event to interested collaborators after a
// successful mutation. Delivery is fire-and-forget: a notifier must never
// fail the graph mutation that triggered it.
type Notifier interface {
	Notify(ctx context.Context, event string, payload any)
}

// Envelope is the wire form of a relationship event.
type Envelope struct {
	ID        string    `json:"id"`
	Event     string    `json:"event"`
	Payload   any       `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// KafkaNotifier publishes relationship events to a Kafka topic.
type KafkaNotifier struct {
	logger *slog.Logger
	queue  mq.MessageQueue
	topic  string
}

var _ Notifier = (*KafkaNotifier)(nil)

// NewKafkaNotifier creates a notifier publishing to the given topic.
func NewKafkaNotifier(queue mq.MessageQueue, topic string) *KafkaNotifier {
	return &KafkaNotifier{
		logger: log.Logger("notify"),
		queue:  queue,
		topic:  topic,
	}
}

// Notify publishes the event. Failures are logged and swallowed.
func (n *KafkaNotifier) Notify(_ context.Context, event string, payload any) {
	envelope := Envelope{
		ID:        uuid.NewString(),
		Event:     event,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		n.logger.Error("failed to marshal event", "event", event, "error", err)
		return
	}

	if err := n.queue.Publish(n.topic, data); err != nil {
		n.logger.Error("failed to publish event", "event", event, "topic", n.topic, "error", err)
		return
	}

	n.logger.Debug("event published", "event", event, "topic", n.topic)
}

// NopNotifier discards all events. Used when Kafka is disabled.
type NopNotifier struct{}

var _ Notifier = (*NopNotifier)(nil)

// Notify does nothing.
func (NopNotifier) Notify(context.Context, string, any) {}
