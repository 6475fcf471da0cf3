package pubsub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBroker(t *testing.T) {
	ctx := context.Background()

	t.Run("Subscribers receive payloads in publish order, including the publisher", func(t *testing.T) {
		// Given: two subscribers on the same channel
		broker := NewMemoryBroker()
		first, err := broker.Subscribe(ctx, "room")
		require.NoError(t, err)
		second, err := broker.Subscribe(ctx, "room")
		require.NoError(t, err)

		// When: two payloads are published
		require.NoError(t, broker.Publish(ctx, "room", []byte("1")))
		require.NoError(t, broker.Publish(ctx, "room", []byte("2")))

		// Then: both get them in order
		for _, sub := range []Subscription{first, second} {
			assert.Equal(t, "1", string((<-sub.Messages()).Payload))
			assert.Equal(t, "2", string((<-sub.Messages()).Payload))
		}
	})

	t.Run("Occupancy counts live subscriptions", func(t *testing.T) {
		broker := NewMemoryBroker()
		sub, err := broker.Subscribe(ctx, "lobby")
		require.NoError(t, err)

		occupancy, err := broker.Occupancy(ctx, "lobby")
		require.NoError(t, err)
		assert.Equal(t, 1, occupancy)

		require.NoError(t, sub.Close())

		occupancy, err = broker.Occupancy(ctx, "lobby")
		require.NoError(t, err)
		assert.Equal(t, 0, occupancy)
	})

	t.Run("Closing twice reports ErrSubscriptionClosed", func(t *testing.T) {
		broker := NewMemoryBroker()
		sub, err := broker.Subscribe(ctx, "lobby")
		require.NoError(t, err)

		require.NoError(t, sub.Close())
		require.ErrorIs(t, sub.Close(), ErrSubscriptionClosed)

		_, open := <-sub.Messages()
		assert.False(t, open)
	})

	t.Run("Other channels are not delivered", func(t *testing.T) {
		broker := NewMemoryBroker()
		sub, err := broker.Subscribe(ctx, "a")
		require.NoError(t, err)

		require.NoError(t, broker.Publish(ctx, "b", []byte("x")))

		assert.Empty(t, sub.Messages())
	})
}
