package client

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Eugene-Usachev/go-expect"
	"github.com/Eugene-Usachev/go-expect/internal/nimbletest"
	"github.com/Eugene-Usachev/go-expect/internal/status"
)

func newClient(t *testing.T) (*Client, *nimbletest.Server) {
	t.Helper()
	srv, err := nimbletest.Start()
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	res := New(context.Background(), Config{Addr: srv.Addr(), Pipes: 2})
	require.True(t, res.Bool(), res.String())
	t.Cleanup(res.Destroy)
	return res.Success(), srv
}

func TestClient(t *testing.T) {
	ctx := context.Background()
	c, srv := newClient(t)

	require.False(t, c.Ping(ctx).HoldsError())

	s := &Scheme{
		SizedFields:   map[string]SizedFieldType{"age": "Uint8"},
		UnsizedFields: map[string]UnsizedFieldType{"name": "String"},
	}
	users := c.CreateSpace(ctx, InMemory, "users", s)
	require.True(t, users.Bool(), users.String())
	stored, ok := srv.Scheme("users")
	require.True(t, ok)
	require.Equal(t, *s, stored)

	cache := c.CreateSpace(ctx, Cache, "cache", nil)
	require.Equal(t, users.Success()+1, cache.Success())

	names := c.GetSpacesNames(ctx)
	require.Equal(t, []string{"users", "cache"}, names.Success())

	id := users.Success()
	require.False(t, c.Insert(ctx, id, []byte("1"), []byte("alice")).HoldsError())
	require.Equal(t, status.BadRequest, c.Insert(ctx, id, []byte("1"), []byte("bob")).Get())
	require.False(t, c.Set(ctx, id, []byte("1"), []byte("carol")).HoldsError())
	require.Equal(t, []byte("carol"), c.Get(ctx, id, []byte("1")).Success())

	require.False(t, c.Delete(ctx, id, []byte("1")).HoldsError())
	require.Equal(t, status.NotFound, c.Delete(ctx, id, []byte("1")).Get())
	require.Equal(t, status.NotFound, c.Get(ctx, id, []byte("1")).Fail().Get())
}

func TestClientEmptySpaceList(t *testing.T) {
	c, _ := newClient(t)
	names := c.GetSpacesNames(context.Background())
	require.True(t, names.Bool())
	require.Empty(t, names.Success())
}

func TestCreateSpaceRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	c, _ := newClient(t)

	res := c.CreateSpace(ctx, SpaceEngineType(9), "x", nil)
	require.Equal(t, "client: unknown engine type 9", res.Fail().Get())

	res = c.CreateSpace(ctx, OnDisk, "x", &Scheme{SizedFields: map[string]SizedFieldType{"f": "Uint7"}})
	require.True(t, res.HoldsError())

	require.False(t, c.CreateSpace(ctx, OnDisk, "x", nil).HoldsError())
	require.Equal(t, status.BadRequest, c.CreateSpace(ctx, OnDisk, "x", nil).Fail().Get())
}

func TestNewFailures(t *testing.T) {
	t.Run("empty address", func(t *testing.T) {
		res := New(context.Background(), Config{})
		require.Equal(t, "client: empty address", res.Fail().Get())
	})

	t.Run("nothing listening", func(t *testing.T) {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		addr := l.Addr().String()
		require.NoError(t, l.Close())

		res := New(context.Background(), Config{Addr: addr, Pipes: 1, DialTimeout: time.Second})
		require.True(t, res.HoldsError())
		require.Contains(t, res.Fail().Get(), "dial: ")
	})
}

func TestClientContext(t *testing.T) {
	c, _ := newClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Equal(t, context.Canceled.Error(), c.Ping(ctx).Get())
}

func TestClientClosed(t *testing.T) {
	c, _ := newClient(t)
	c.Close()
	require.Equal(t, status.Closed, c.Ping(context.Background()).Get())
}

func TestZeroClientExpectDestroy(t *testing.T) {
	var res expect.Expect[*Client]
	require.NotPanics(t, res.Destroy)
}
