package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedPage struct {
	Data  []map[string]any `json:"data"`
	Total int64            `json:"total"`
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func stores(t *testing.T) map[string]Store {
	rs, _ := newRedisStore(t)
	return map[string]Store{
		"redis":  rs,
		"memory": NewMemoryStore(),
	}
}

func TestStore_RoundTrip(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			in := cachedPage{
				Data:  []map[string]any{{"id": "p1", "name": "Runner"}},
				Total: 1,
			}

			require.NoError(t, store.Set(ctx, "k1", in, time.Minute, "entity:products"))

			var out cachedPage
			hit, err := store.Get(ctx, "k1", &out)
			require.NoError(t, err)
			assert.True(t, hit)
			assert.Equal(t, in.Total, out.Total)
			require.Len(t, out.Data, 1)
			assert.Equal(t, "p1", out.Data[0]["id"])
		})
	}
}

func TestStore_MissIsNotAnError(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			var out cachedPage
			hit, err := store.Get(context.Background(), "absent", &out)
			require.NoError(t, err)
			assert.False(t, hit)
		})
	}
}

func TestStore_InvalidateTagEvictsMembers(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Set(ctx, "p:page1", cachedPage{Total: 1}, time.Minute, "entity:products"))
			require.NoError(t, store.Set(ctx, "p:page2", cachedPage{Total: 2}, time.Minute, "entity:products", "entity:brands"))
			require.NoError(t, store.Set(ctx, "c:page1", cachedPage{Total: 3}, time.Minute, "entity:customers"))

			require.NoError(t, store.InvalidateTag(ctx, "entity:products"))

			var out cachedPage
			hit, err := store.Get(ctx, "p:page1", &out)
			require.NoError(t, err)
			assert.False(t, hit)

			hit, err = store.Get(ctx, "p:page2", &out)
			require.NoError(t, err)
			assert.False(t, hit)

			hit, err = store.Get(ctx, "c:page1", &out)
			require.NoError(t, err)
			assert.True(t, hit)
		})
	}
}

func TestStore_InvalidateUnknownTagIsNoop(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.InvalidateTag(context.Background(), "entity:ghost"))
		})
	}
}

func TestRedisStore_EntryExpires(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k1", cachedPage{Total: 1}, time.Second, "entity:products"))

	mr.FastForward(2 * time.Second)

	var out cachedPage
	hit, err := store.Get(ctx, "k1", &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

// A Get that observes an expired entry must not evict a fresh value
// written for the same key in between; the lazy delete re-checks
// expiry under the write lock.
func TestMemoryStore_ConcurrentSetSurvivesLazyExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 200; i++ {
		require.NoError(t, store.Set(ctx, "k1", cachedPage{Total: 1}, -time.Second))

		done := make(chan struct{})
		go func() {
			defer close(done)
			var out cachedPage
			_, _ = store.Get(ctx, "k1", &out)
		}()
		require.NoError(t, store.Set(ctx, "k1", cachedPage{Total: 2}, time.Minute))
		<-done

		var out cachedPage
		hit, err := store.Get(ctx, "k1", &out)
		require.NoError(t, err)
		require.True(t, hit)
		require.Equal(t, int64(2), out.Total)
	}
}

func TestMemoryStore_EntryExpires(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k1", cachedPage{Total: 1}, -time.Second))

	var out cachedPage
	hit, err := store.Get(ctx, "k1", &out)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 0, store.Len())
}
