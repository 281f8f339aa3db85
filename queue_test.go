package msgbus

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/msgbus/key"
)

func TestQueue_EnqueueDrain(t *testing.T) {
	bus := New()
	q := NewQueue(bus, 16)
	ctx := context.Background()

	var got []int
	_, err := SubscribeTargeted(bus, key.EntityID(42), "owner",
		func(ctx context.Context, msg takeDamage) error {
			got = append(got, msg.Amount)
			return nil
		})
	require.NoError(t, err)

	require.NoError(t, q.EnqueueTargeted(takeDamage{Amount: 5}, key.EntityID(42)))
	require.NoError(t, q.EnqueueTargeted(takeDamage{Amount: 7}, key.EntityID(42)))
	assert.Equal(t, 2, q.Len())

	// Nothing is dispatched until the owner drains.
	assert.Empty(t, got)

	require.NoError(t, q.Drain(ctx))
	assert.Equal(t, []int{5, 7}, got, "drain preserves admission order")
	assert.Equal(t, 0, q.Len())
}

func TestQueue_CrossGoroutineAdmission(t *testing.T) {
	bus := New()
	q := NewQueue(bus, 128)
	ctx := context.Background()

	invoked := 0
	_, err := SubscribeUntargeted(bus, "owner", countingHandler(&invoked))
	require.NoError(t, err)

	const producers = 8
	const perProducer = 10

	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				_ = q.EnqueueUntargeted(playerDied{})
			}
		}()
	}
	wg.Wait()

	require.NoError(t, q.Drain(ctx))
	assert.Equal(t, producers*perProducer, invoked)
}

func TestQueue_FullDrops(t *testing.T) {
	bus := New()
	q := NewQueue(bus, 1)

	require.NoError(t, q.EnqueueUntargeted(playerDied{}))

	err := q.EnqueueUntargeted(playerDied{})
	assert.ErrorIs(t, err, ErrQueueFull)

	stats := q.Stats()
	assert.Equal(t, uint64(1), stats.Enqueued)
	assert.Equal(t, uint64(1), stats.Dropped)
	assert.Equal(t, 1, stats.Depth)
}

func TestQueue_AdmissionValidation(t *testing.T) {
	bus := New()
	q := NewQueue(bus, 4)

	assert.ErrorIs(t, q.EnqueueUntargeted(nil), ErrNilMessage)
	assert.ErrorIs(t, q.EnqueueUntargeted(undeclared{}), ErrUnknownMessageType)
	assert.ErrorIs(t, q.EnqueueUntargeted(takeDamage{}), ErrKindMismatch)
	assert.ErrorIs(t, q.EnqueueTargeted(playerDied{}, 1), ErrKindMismatch)
	assert.Equal(t, 0, q.Len(), "rejected messages must not be admitted")
}

func TestQueue_DrainCollectsFaults(t *testing.T) {
	bus := New()
	q := NewQueue(bus, 4)
	ctx := context.Background()

	invoked := 0
	_, err := SubscribeUntargeted(bus, "crasher", func(ctx context.Context, msg playerDied) error {
		invoked++
		panic("boom")
	})
	require.NoError(t, err)

	require.NoError(t, q.EnqueueUntargeted(playerDied{}))
	require.NoError(t, q.EnqueueUntargeted(playerDied{}))

	err = q.Drain(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHandlerPanic)
	assert.Equal(t, 2, invoked, "a faulting drain still dispatches the rest of the queue")
}

func TestQueue_CloseStopsAdmission(t *testing.T) {
	bus := New()
	q := NewQueue(bus, 4)
	ctx := context.Background()

	invoked := 0
	_, err := SubscribeUntargeted(bus, "owner", countingHandler(&invoked))
	require.NoError(t, err)

	require.NoError(t, q.EnqueueUntargeted(playerDied{}))
	q.Close()

	assert.ErrorIs(t, q.EnqueueUntargeted(playerDied{}), ErrQueueClosed)

	// Already-admitted messages still drain.
	require.NoError(t, q.Drain(ctx))
	assert.Equal(t, 1, invoked)
}

func TestQueue_DefaultCapacity(t *testing.T) {
	q := NewQueue(New(), 0)
	assert.Equal(t, DefaultQueueCapacity, cap(q.ch))
}

func TestQueue_DrainCancelledContext(t *testing.T) {
	bus := New()
	q := NewQueue(bus, 4)

	require.NoError(t, q.EnqueueUntargeted(playerDied{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := q.Drain(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
