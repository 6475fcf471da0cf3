// Package pubsub describes the messaging service the peers talk through.
package pubsub

import (
	"context"
	"errors"
)

var ErrSubscriptionClosed = errors.New("subscription is closed")

// Message - one payload received on a channel.
type Message struct {
	Channel string
	Payload []byte
}

type Subscription interface {
	Channel() string
	// Messages - closed once the subscription is closed.
	Messages() <-chan Message
	Close() error
}

type Broker interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (Subscription, error)
	Occupancy(ctx context.Context, channel string) (int, error)
}
