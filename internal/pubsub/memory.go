package pubsub

import (
	"context"
	"sync"
)

const memoryBufferSize = 64

// MemoryBroker - in-process broker with the same delivery rules as the hosted one:
// publishers subscribed to a channel receive their own messages, order is kept per subscriber.
type MemoryBroker struct {
	mu       sync.Mutex
	channels map[string]map[*memorySubscription]struct{}
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{
		channels: make(map[string]map[*memorySubscription]struct{}),
	}
}

func (that *MemoryBroker) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	for sub := range that.channels[channel] {
		msg := Message{Channel: channel, Payload: append([]byte(nil), payload...)}
		select {
		case sub.messages <- msg:
		default:
			// slow subscriber, the hosted service drops in the same situation
		}
	}

	return nil
}

func (that *MemoryBroker) Subscribe(ctx context.Context, channel string) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sub := &memorySubscription{
		broker:   that,
		channel:  channel,
		messages: make(chan Message, memoryBufferSize),
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.channels[channel] == nil {
		that.channels[channel] = make(map[*memorySubscription]struct{})
	}
	that.channels[channel][sub] = struct{}{}

	return sub, nil
}

func (that *MemoryBroker) Occupancy(ctx context.Context, channel string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.channels[channel]), nil
}

func (that *MemoryBroker) unsubscribe(sub *memorySubscription) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	subs, ok := that.channels[sub.channel]
	if !ok {
		return false
	}

	if _, ok = subs[sub]; !ok {
		return false
	}

	delete(subs, sub)
	if len(subs) == 0 {
		delete(that.channels, sub.channel)
	}
	close(sub.messages)

	return true
}

type memorySubscription struct {
	broker   *MemoryBroker
	channel  string
	messages chan Message
}

func (that *memorySubscription) Channel() string {
	return that.channel
}

func (that *memorySubscription) Messages() <-chan Message {
	return that.messages
}

func (that *memorySubscription) Close() error {
	if !that.broker.unsubscribe(that) {
		return ErrSubscriptionClosed
	}
	return nil
}
