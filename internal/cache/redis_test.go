package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devidclub/devid-go/pkg/models"
)

func setupRedisStore(t *testing.T, ttl time.Duration) (*Redis[models.User], *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedis[models.User](client, "devid:user", ttl), mr
}

func testUser(id, name string) models.User {
	return models.User{
		ID:          id,
		UserName:    name,
		DisplayName: "Test User",
		Joined:      time.UnixMilli(1561234567890).UTC(),
	}
}

func TestRedisPutGet(t *testing.T) {
	ctx := context.Background()
	store, _ := setupRedisStore(t, time.Minute)
	user := testUser("5d1d2339e710560cdf5c5b80", "sandtler")

	require.NoError(t, store.Put(ctx, user.ID, user))

	got, ok, err := store.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, user, got)
}

func TestRedisMiss(t *testing.T) {
	ctx := context.Background()
	store, _ := setupRedisStore(t, time.Minute)

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisTTLExpiry(t *testing.T) {
	ctx := context.Background()
	store, mr := setupRedisStore(t, time.Minute)
	user := testUser("5d1d2339e710560cdf5c5b80", "sandtler")

	require.NoError(t, store.Put(ctx, user.ID, user))
	mr.FastForward(2 * time.Minute)

	_, ok, err := store.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisRemove(t *testing.T) {
	ctx := context.Background()
	store, _ := setupRedisStore(t, time.Minute)
	user := testUser("5d1d2339e710560cdf5c5b80", "sandtler")

	require.NoError(t, store.Put(ctx, user.ID, user))
	require.NoError(t, store.Remove(ctx, user.ID))

	_, ok, err := store.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisLenAndClear(t *testing.T) {
	ctx := context.Background()
	store, _ := setupRedisStore(t, time.Minute)

	require.NoError(t, store.Put(ctx, "a", testUser("5d1d2339e710560cdf5c5b80", "user_a")))
	require.NoError(t, store.Put(ctx, "b", testUser("5d1d2339e710560cdf5c5b81", "user_b")))

	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, store.Clear(ctx))
	n, err = store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
