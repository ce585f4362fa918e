package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client), mr
}

func TestRememberLoadsOnce(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	calls := 0
	load := func() (item, error) {
		calls++
		return item{Name: "kettle", Price: "499.00"}, nil
	}

	first, err := Remember(ctx, c, PrefixProduct+"kettle", time.Minute, load)
	require.NoError(t, err)
	second, err := Remember(ctx, c, PrefixProduct+"kettle", time.Minute, load)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	assert.Equal(t, Counters{Hits: 1, Misses: 1, Loads: 1}, c.Counters())
}

func TestRememberDoesNotCacheErrors(t *testing.T) {
	c, mr := newTestCache(t)
	boom := errors.New("db down")

	_, err := Remember(context.Background(), c, PrefixHome+"page", time.Minute, func() (item, error) {
		return item{}, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists(PrefixHome+"page"))
}

func TestTTLExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	c.Set(ctx, PrefixCategory+"kitchen", item{Name: "kitchen"}, time.Minute)

	var got item
	assert.True(t, c.Get(ctx, PrefixCategory+"kitchen", &got))

	mr.FastForward(2 * time.Minute)
	assert.False(t, c.Get(ctx, PrefixCategory+"kitchen", &got))
}

func TestDeletePrefix(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	c.Set(ctx, PrefixProduct+"a", item{Name: "a"}, time.Minute)
	c.Set(ctx, PrefixProduct+"b", item{Name: "b"}, time.Minute)
	c.Set(ctx, PrefixCategory+"c", item{Name: "c"}, time.Minute)

	c.DeletePrefix(ctx, PrefixProduct)

	assert.False(t, mr.Exists(PrefixProduct+"a"))
	assert.False(t, mr.Exists(PrefixProduct+"b"))
	assert.True(t, mr.Exists(PrefixCategory+"c"))
}

func TestCorruptEntryIsMiss(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set(PrefixProduct+"bad", "{not json"))

	var got item
	assert.False(t, c.Get(context.Background(), PrefixProduct+"bad", &got))
}

func TestNopCache(t *testing.T) {
	calls := 0
	for i := 0; i < 2; i++ {
		_, err := Remember(context.Background(), Nop{}, "k", time.Minute, func() (int, error) {
			calls++
			return 1, nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
}
