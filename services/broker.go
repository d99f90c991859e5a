package services

import "sync"

// Broker fans full snapshots out to per-topic subscribers. Publishing never
// blocks: each subscriber channel holds one pending snapshot and a newer one
// replaces it, so a slow consumer always wakes up to the latest state.
type Broker[T any] struct {
	mu          sync.Mutex
	subscribers map[string]map[int]chan T
	nextID      int
}

func NewBroker[T any]() *Broker[T] {
	return &Broker[T]{subscribers: make(map[string]map[int]chan T)}
}

// Subscribe registers a subscriber on topic. The returned cancel func stops
// delivery and releases the subscription.
func (b *Broker[T]) Subscribe(topic string) (chan T, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subscribers[topic] == nil {
		b.subscribers[topic] = make(map[int]chan T)
	}
	id := b.nextID
	b.nextID++
	ch := make(chan T, 1)
	b.subscribers[topic][id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if subs, ok := b.subscribers[topic]; ok {
			delete(subs, id)
			if len(subs) == 0 {
				delete(b.subscribers, topic)
			}
		}
	}
	return ch, cancel
}

// Publish delivers snapshot to every subscriber of topic, replacing any
// pending undelivered snapshot.
func (b *Broker[T]) Publish(topic string, snapshot T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subscribers[topic] {
		deliverLatest(ch, snapshot)
	}
}

// Offer delivers snapshot only if the subscriber has nothing pending. Used
// for initial snapshots so a concurrent Publish is never overwritten by
// older data.
func (b *Broker[T]) Offer(ch chan T, snapshot T) {
	select {
	case ch <- snapshot:
	default:
	}
}

func deliverLatest[T any](ch chan T, snapshot T) {
	for {
		select {
		case ch <- snapshot:
			return
		default:
		}
		select {
		case <-ch: // drop the stale pending snapshot
		default:
		}
	}
}
