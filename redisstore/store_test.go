package redisstore

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Eugene-Usachev/go-expect"
	"github.com/Eugene-Usachev/go-expect/internal/status"
)

func TestKey(t *testing.T) {
	require.Equal(t, "7:user", Key(7, []byte("user")))
	require.Equal(t, "0:", Key(0, nil))
}

func TestNewWithoutServer(t *testing.T) {
	res := New(Config{Addrs: []string{"127.0.0.1:1"}})
	require.True(t, res.HoldsError())
	require.Contains(t, res.Fail().Get(), "redis: ")
}

// Needs a Redis server in REDIS_ADDR.
func TestStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()

	res := New(Config{Addrs: []string{addr}})
	require.True(t, res.Bool(), res.String())
	defer res.Destroy()
	s := res.Success()

	key := []byte("go-expect-test")
	_ = s.Delete(ctx, 1, key)

	require.False(t, s.Ping(ctx).HoldsError())
	require.Equal(t, status.NotFound, s.Get(ctx, 1, key).Fail().Get())
	require.False(t, s.Insert(ctx, 1, key, []byte("a")).HoldsError())
	require.Equal(t, status.BadRequest, s.Insert(ctx, 1, key, []byte("b")).Get())
	require.False(t, s.Set(ctx, 1, key, []byte("c")).HoldsError())
	require.Equal(t, []byte("c"), s.Get(ctx, 1, key).Success())
	require.Equal(t, status.NotFound, s.Get(ctx, 2, key).Fail().Get())
	require.False(t, s.Delete(ctx, 1, key).HoldsError())
	require.Equal(t, status.NotFound, s.Delete(ctx, 1, key).Get())
}

func TestZeroStoreExpectDestroy(t *testing.T) {
	var res expect.Expect[*Store]
	require.NotPanics(t, res.Destroy)
}
