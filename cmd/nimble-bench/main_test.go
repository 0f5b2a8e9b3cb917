package main

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Eugene-Usachev/go-expect"
	"github.com/Eugene-Usachev/go-expect/internal/nimbletest"
)

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("counts every operation", func(t *testing.T) {
		var calls atomic.Int64
		failure := run(ctx, config{Par: 4, N: 100}, "count", func(context.Context, int) expect.VoidError {
			calls.Add(1)
			return expect.VoidError{}
		})
		require.False(t, failure.HoldsError())
		require.EqualValues(t, 100, calls.Load())
	})

	t.Run("stops on failure", func(t *testing.T) {
		failure := run(ctx, config{Par: 2, N: 10}, "fail", func(_ context.Context, i int) expect.VoidError {
			if i == 3 {
				return expect.NewVoidError("boom")
			}
			return expect.VoidError{}
		})
		require.Equal(t, "fail: boom", failure.Get())
	})

	t.Run("rejects zero workers", func(t *testing.T) {
		require.True(t, run(ctx, config{}, "none", nil).HoldsError())
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown backend", func(t *testing.T) {
		res := open(ctx, config{Backend: "memcached"})
		require.Equal(t, `unknown backend "memcached"`, res.Fail().Get())
	})

	t.Run("nimble", func(t *testing.T) {
		srv, err := nimbletest.Start()
		require.NoError(t, err)
		defer srv.Close()

		res := open(ctx, config{Backend: "nimble", Addr: srv.Addr(), Pipes: 1})
		require.True(t, res.Bool(), res.String())
		defer res.Destroy()

		s := res.Success()
		require.False(t, s.Ping(ctx).HoldsError())
		require.False(t, s.Set(ctx, []byte("k"), []byte("v")).HoldsError())
	})
}

func TestExitCode(t *testing.T) {
	require.Equal(t, 0, exitCode(expect.VoidError{}))
	require.Equal(t, 1, exitCode(expect.NewVoidError("boom")))
}
