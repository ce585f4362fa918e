package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/storefront/internal/messaging"
)

type failingPublisher struct{ calls atomic.Int32 }

func (f *failingPublisher) PublishEvent(context.Context, string, string, any) error {
	f.calls.Add(1)
	return errors.New("broker down")
}

func (f *failingPublisher) Close() error { return nil }

func TestEventDispatcherDrainsOnStop(t *testing.T) {
	pub := &messaging.MemoryPublisher{}
	d := NewEventDispatcher(pub, 16, time.Second)
	stop := d.Start(2)
	for i := 0; i < 10; i++ {
		d.Enqueue(messaging.TopicOrderPlaced, "k", i)
	}
	require.NoError(t, stop(context.Background()))
	assert.Len(t, pub.Messages(), 10)
	published, failed, dropped := d.Stats()
	assert.Equal(t, int64(10), published)
	assert.Zero(t, failed)
	assert.Zero(t, dropped)
}

func TestEventDispatcherDropsWhenFull(t *testing.T) {
	d := NewEventDispatcher(&messaging.MemoryPublisher{}, 2, time.Second)
	// 未启动 worker，队列只能容纳两条
	d.Enqueue("t", "a", 1)
	d.Enqueue("t", "b", 2)
	d.Enqueue("t", "c", 3)
	assert.Equal(t, 2, d.QueueLen())
	_, _, dropped := d.Stats()
	assert.Equal(t, int64(1), dropped)
}

func TestEventDispatcherCountsFailures(t *testing.T) {
	pub := &failingPublisher{}
	d := NewEventDispatcher(pub, 4, time.Second)
	stop := d.Start(1)
	d.Enqueue("t", "a", 1)
	require.NoError(t, stop(context.Background()))
	_, failed, _ := d.Stats()
	assert.Equal(t, int64(1), failed)
	assert.Equal(t, int32(1), pub.calls.Load())
}

func TestNilDispatcherIsNoop(t *testing.T) {
	var d *EventDispatcher
	assert.NotPanics(t, func() { d.Enqueue("t", "k", nil) })
}
