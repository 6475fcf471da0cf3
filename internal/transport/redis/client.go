package redis

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-peer/internal/pubsub"
)

// Client - pub/sub access to the messaging service: publish, subscribe and channel occupancy.
type Client struct {
	logger *slog.Logger
	client *redis.Client
}

func New(logger *slog.Logger, client *redis.Client) *Client {
	return &Client{
		logger: logger.With("component", "broker"),
		client: client,
	}
}

// Publish - sends payload to every subscriber of channel.
func (that *Client) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := that.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", channel, err)
	}

	return nil
}

// Occupancy - number of subscribers currently listening on channel.
func (that *Client) Occupancy(ctx context.Context, channel string) (int, error) {
	counts, err := that.client.PubSubNumSub(ctx, channel).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get occupancy of %s: %w", channel, err)
	}

	return int(counts[channel]), nil
}

// Subscribe - subscribes to channel and waits for the server to confirm it.
func (that *Client) Subscribe(ctx context.Context, channel string) (pubsub.Subscription, error) {
	conn := that.client.Subscribe(ctx, channel)

	if _, err := conn.Receive(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	sub := &Subscription{
		channel:  channel,
		conn:     conn,
		messages: make(chan pubsub.Message),
		done:     make(chan struct{}),
	}

	go sub.forward(that.logger.With("channel", channel), conn.Channel())

	return sub, nil
}

// Subscription - messages of one channel, delivered in the order the server sends them.
type Subscription struct {
	channel  string
	conn     *redis.PubSub
	messages chan pubsub.Message
	done     chan struct{}
	once     sync.Once
}

func (that *Subscription) Channel() string {
	return that.channel
}

// Messages - closed once the subscription is closed.
func (that *Subscription) Messages() <-chan pubsub.Message {
	return that.messages
}

// Close - unsubscribes without waiting for pending messages to be consumed.
func (that *Subscription) Close() error {
	err := pubsub.ErrSubscriptionClosed

	that.once.Do(func() {
		close(that.done)

		err = that.conn.Close()
		if err != nil {
			err = fmt.Errorf("failed to unsubscribe from %s: %w", that.channel, err)
		}
	})

	return err
}

func (that *Subscription) forward(log *slog.Logger, incoming <-chan *redis.Message) {
	defer close(that.messages)

	for {
		select {
		case <-that.done:
			return
		case msg, ok := <-incoming:
			if !ok {
				log.Debug("subscription stopped")
				return
			}

			select {
			case that.messages <- pubsub.Message{Channel: msg.Channel, Payload: []byte(msg.Payload)}:
			case <-that.done:
				return
			}
		}
	}
}
