package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/Eugene-Usachev/fastbytes"
	nested "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Eugene-Usachev/go-expect"
	"github.com/Eugene-Usachev/go-expect/client"
	"github.com/Eugene-Usachev/go-expect/redisstore"
)

type config struct {
	Debug   bool
	Backend string
	Addr    string
	Pipes   int
	Par     int
	N       int
}

// store is what both backends offer the benchmark.
type store interface {
	Ping(ctx context.Context) expect.VoidError
	Set(ctx context.Context, key, value []byte) expect.VoidError
	Destroy()
}

// nimbleStore writes into a space created for the run.
type nimbleStore struct {
	*client.Client
	space uint16
}

func (s nimbleStore) Set(ctx context.Context, key, value []byte) expect.VoidError {
	return s.Client.Set(ctx, s.space, key, value)
}

type redisStore struct {
	*redisstore.Store
}

func (s redisStore) Set(ctx context.Context, key, value []byte) expect.VoidError {
	return s.Store.Set(ctx, 0, key, value)
}

type logFormatter struct {
	base *nested.Formatter
}

func (f *logFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	entry.Data["component"] = "nimble-bench"
	return f.base.Format(entry)
}

func main() {
	os.Exit(runMain())
}

// runMain returns instead of exiting so that deferred cleanup runs.
func runMain() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	return exitCode(do(ctx))
}

func exitCode(failure expect.VoidError) int {
	if failure.HoldsError() {
		logrus.Error(failure.Get())
		return 1
	}
	return 0
}

func do(ctx context.Context) expect.VoidError {
	var cfg config
	flag.BoolVar(&cfg.Debug, "debug", false, "enable debug logging")
	flag.StringVar(&cfg.Backend, "backend", "nimble", "nimble or redis")
	flag.StringVar(&cfg.Addr, "addr", "127.0.0.1:8081", "server address")
	flag.IntVar(&cfg.Pipes, "pipes", 4, "pipelined connections (nimble only)")
	flag.IntVar(&cfg.Par, "par", 128, "concurrent workers")
	flag.IntVar(&cfg.N, "n", 3*1000*1000, "operations per phase")
	flag.Parse()

	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logFormatter{&nested.Formatter{}})
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	opened := open(ctx, cfg)
	if opened.HoldsError() {
		return opened.Fail()
	}
	defer opened.Destroy()
	s := opened.Success()

	if failure := run(ctx, cfg, "ping", func(ctx context.Context, i int) expect.VoidError {
		return s.Ping(ctx)
	}); failure.HoldsError() {
		return failure
	}

	value := fastbytes.S2B("12345678901234567890")
	return run(ctx, cfg, "set", func(ctx context.Context, i int) expect.VoidError {
		return s.Set(ctx, fastbytes.I2B(i), value)
	})
}

func open(ctx context.Context, cfg config) expect.Expect[store] {
	switch cfg.Backend {
	case "nimble":
		c := client.New(ctx, client.Config{Addr: cfg.Addr, Pipes: cfg.Pipes})
		if c.HoldsError() {
			return expect.Err[store](c.Fail())
		}
		space := c.Success().CreateSpace(ctx, client.Cache, "nimble-bench-"+strconv.FormatInt(time.Now().UnixNano(), 36), nil)
		if space.HoldsError() {
			c.Destroy()
			return expect.Err[store](space.Fail())
		}
		return expect.Ok[store](nimbleStore{Client: c.Success(), space: space.Success()})
	case "redis":
		r := redisstore.New(redisstore.Config{Addrs: []string{cfg.Addr}})
		if r.HoldsError() {
			return expect.Err[store](r.Fail())
		}
		return expect.Ok[store](redisStore{Store: r.Success()})
	}
	return expect.Errorf[store]("unknown backend %q", cfg.Backend)
}

// run spreads cfg.N calls of op over cfg.Par workers and logs the throughput.
// The first failure stops the phase.
func run(ctx context.Context, cfg config, name string, op func(ctx context.Context, i int) expect.VoidError) expect.VoidError {
	if cfg.Par <= 0 {
		return expect.NewVoidError("par must be positive")
	}
	logrus.Infof("Testing %s...", name)

	count := cfg.N / cfg.Par
	g, ctx := errgroup.WithContext(ctx)
	start := time.Now()
	for w := 0; w < cfg.Par; w++ {
		g.Go(func() error {
			for j := 0; j < count; j++ {
				if failure := op(ctx, w*count+j); failure.HoldsError() {
					return failure.Err()
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return expect.VoidErrorf("%s: %v", name, err)
	}

	elapsed := time.Since(start)
	total := count * cfg.Par
	logrus.WithFields(logrus.Fields{
		"ops":     total,
		"elapsed": elapsed,
		"ns/op":   elapsed.Nanoseconds() / int64(max(total, 1)),
	}).Infof("%s done", name)
	return expect.VoidError{}
}
