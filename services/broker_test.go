package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroker_PublishReachesTopicSubscribersOnly(t *testing.T) {
	broker := NewBroker[int]()

	a, cancelA := broker.Subscribe("topic-a")
	defer cancelA()
	b, cancelB := broker.Subscribe("topic-b")
	defer cancelB()

	broker.Publish("topic-a", 1)

	assert.Equal(t, 1, <-a)
	assert.Empty(t, b)
}

func TestBroker_SlowConsumerGetsLatest(t *testing.T) {
	broker := NewBroker[int]()
	ch, cancel := broker.Subscribe("topic")
	defer cancel()

	// Nobody reads between publishes; stale snapshots are replaced.
	broker.Publish("topic", 1)
	broker.Publish("topic", 2)
	broker.Publish("topic", 3)

	assert.Equal(t, 3, <-ch)
}

func TestBroker_OfferDoesNotClobberPending(t *testing.T) {
	broker := NewBroker[int]()
	ch, cancel := broker.Subscribe("topic")
	defer cancel()

	broker.Publish("topic", 2)
	broker.Offer(ch, 1)

	assert.Equal(t, 2, <-ch)

	// With nothing pending the offer lands.
	broker.Offer(ch, 5)
	assert.Equal(t, 5, <-ch)
}

func TestBroker_CancelStopsDelivery(t *testing.T) {
	broker := NewBroker[int]()
	ch, cancel := broker.Subscribe("topic")

	cancel()
	broker.Publish("topic", 1)

	select {
	case v := <-ch:
		require.Fail(t, "unexpected delivery", "got %d", v)
	default:
	}
}
