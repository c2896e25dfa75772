package notify

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/voisin/friendgraph/internal/domain"
)

// mockQueue implements mq.MessageQueue for tests.
type mockQueue struct {
	publishFunc func(topic string, message []byte) error

	topics   []string
	messages [][]byte
}

func (m *mockQueue) Publish(topic string, message []byte) error {
	m.topics = append(m.topics, topic)
	m.messages = append(m.messages, message)
	if m.publishFunc != nil {
		return m.publishFunc(topic, message)
	}
	return nil
}

func (m *mockQueue) Close() error { return nil }

func TestKafkaNotifier(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes envelope", func(t *testing.T) {
		queue := &mockQueue{}
		notifier := NewKafkaNotifier(queue, "friend-events")

		notifier.Notify(ctx, EventNewFriendRequest, domain.FriendRequest{FromID: "u1", ToID: "u2"})

		assert.Equal(t, []string{"friend-events"}, queue.topics)

		var envelope Envelope
		assert.NoError(t, json.Unmarshal(queue.messages[0], &envelope))
		assert.Equal(t, EventNewFriendRequest, envelope.Event)
		assert.NotEmpty(t, envelope.ID)
		assert.False(t, envelope.CreatedAt.IsZero())

		payload, ok := envelope.Payload.(map[string]any)
		assert.True(t, ok)
		assert.Equal(t, "u1", payload["from_id"])
		assert.Equal(t, "u2", payload["to_id"])
	})

	// Delivery is fire-and-forget: a broken broker must not surface to
	// the mutation that triggered the event.
	t.Run("publish failure is swallowed", func(t *testing.T) {
		queue := &mockQueue{
			publishFunc: func(string, []byte) error {
				return errors.New("broker down")
			},
		}
		notifier := NewKafkaNotifier(queue, "friend-events")

		assert.NotPanics(t, func() {
			notifier.Notify(ctx, EventNewFriendRequest, domain.FriendRequest{FromID: "u1", ToID: "u2"})
		})
	})
}

func TestNopNotifier(t *testing.T) {
	assert.NotPanics(t, func() {
		NopNotifier{}.Notify(context.Background(), EventNewFriendRequest, nil)
	})
}
