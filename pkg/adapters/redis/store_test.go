package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/njchilds90/termwise"
	"github.com/njchilds90/termwise/pkg/adapters/redis"
	"github.com/njchilds90/termwise/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, opts ...redis.Option) (*miniredis.Miniredis, *redis.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, redis.NewFromClient(client, opts...)
}

func TestRedisStore_Contract(t *testing.T) {
	_, store := setup(t)
	ports.RunSessionStoreContract(t, store)
}

func TestRedisStore_PrefixAndTTL(t *testing.T) {
	ctx := context.Background()
	mr, store := setup(t, redis.WithPrefix("test:"), redis.WithTTL(time.Minute))

	s := termwise.NewSession([]string{"x"})
	s.Add(termwise.S("x"), termwise.N(4))
	require.NoError(t, store.Save(ctx, s))

	assert.True(t, mr.Exists("test:"+s.ID))
	assert.Equal(t, time.Minute, mr.TTL("test:"+s.ID))

	mr.FastForward(2 * time.Minute)
	_, err := store.Load(ctx, s.ID)
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestRedisStore_CorruptPayload(t *testing.T) {
	mr, store := setup(t)
	require.NoError(t, mr.Set(redis.DefaultPrefix+"broken", "{not json"))

	_, err := store.Load(context.Background(), "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ports.ErrSessionNotFound)
}
