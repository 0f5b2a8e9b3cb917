// Package client is a NimbleDB client whose operations report their outcome
// as expect values instead of Go errors.
package client

import (
	"context"
	"encoding/binary"
	"net"
	"time"

	"github.com/Eugene-Usachev/fastbytes"
	"github.com/sirupsen/logrus"

	"github.com/Eugene-Usachev/go-expect"
	"github.com/Eugene-Usachev/go-expect/internal/constants"
	"github.com/Eugene-Usachev/go-expect/internal/pipe"
	"github.com/Eugene-Usachev/go-expect/internal/scheme"
	"github.com/Eugene-Usachev/go-expect/internal/status"
)

type (
	SpaceEngineType  = constants.SpaceEngineType
	Scheme           = scheme.Scheme
	SizedFieldType   = scheme.SizedFieldType
	UnsizedFieldType = scheme.UnsizedFieldType
)

const (
	Cache    = constants.Cache
	InMemory = constants.InMemory
	OnDisk   = constants.OnDisk
)

const (
	defaultPipes       = 4
	defaultDialTimeout = 5 * time.Second
)

type Config struct {
	Addr string
	// Pipes is the number of pipelined connections.
	Pipes              int
	DialTimeout        time.Duration
	MaxQueueSize       int
	MaxWriteBufferSize int
	FlushInterval      time.Duration
	Timeout            time.Duration
	Log                *logrus.Entry
}

func (cfg Config) withDefaults() Config {
	if cfg.Pipes <= 0 {
		cfg.Pipes = defaultPipes
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaultDialTimeout
	}
	if cfg.Log == nil {
		cfg.Log = logrus.NewEntry(logrus.StandardLogger())
	}
	return cfg
}

type Client struct {
	pool  chan *pipe.Pipe
	pipes []*pipe.Pipe
	log   *logrus.Entry
}

// New starts the pipes and pings the server once.
func New(ctx context.Context, cfg Config) expect.Expect[*Client] {
	cfg = cfg.withDefaults()
	if cfg.Addr == "" {
		return expect.Err[*Client](expect.NewVoidError("client: empty address"))
	}

	c := &Client{
		pool: make(chan *pipe.Pipe, cfg.Pipes),
		log:  cfg.Log.WithField("addr", cfg.Addr),
	}
	dialer := &net.Dialer{Timeout: cfg.DialTimeout}
	for i := 0; i < cfg.Pipes; i++ {
		p := pipe.NewPipe(pipe.Config{
			Dial: func() (net.Conn, error) {
				return dialer.Dial("tcp", cfg.Addr)
			},
			MaxQueueSize:       cfg.MaxQueueSize,
			MaxWriteBufferSize: cfg.MaxWriteBufferSize,
			FlushInterval:      cfg.FlushInterval,
			Timeout:            cfg.Timeout,
			Log:                c.log,
		})
		go p.Start()
		c.pipes = append(c.pipes, p)
		c.pool <- p
	}

	if failure := c.Ping(ctx); failure.HoldsError() {
		c.log.WithField("error", failure.Get()).Error("Error connecting to NimbleDB")
		c.Close()
		return expect.Err[*Client](failure)
	}
	return expect.Ok(c)
}

// Close stops every pipe. Pending and later operations fail.
func (c *Client) Close() {
	for _, p := range c.pipes {
		p.Close()
	}
}

// Destroy closes the client when the Expect holding it is destroyed.
func (c *Client) Destroy() {
	if c == nil {
		return
	}
	c.Close()
}

func (c *Client) do(ctx context.Context, send func(ctx context.Context, p *pipe.Pipe) *pipe.Slot) expect.Expect[[]byte] {
	if err := ctx.Err(); err != nil {
		return expect.Err[[]byte](expect.FromError(err))
	}
	var p *pipe.Pipe
	select {
	case p = <-c.pool:
	case <-ctx.Done():
		return expect.Err[[]byte](expect.FromError(ctx.Err()))
	}
	slot := send(ctx, p)
	c.pool <- p
	return slot.Wait(ctx)
}

func void(res expect.Expect[[]byte]) expect.VoidError {
	if res.HoldsError() {
		return res.Fail()
	}
	return expect.VoidError{}
}

// Ping reports whether the server answers.
func (c *Client) Ping(ctx context.Context) expect.VoidError {
	return void(c.do(ctx, func(ctx context.Context, p *pipe.Pipe) *pipe.Slot {
		return p.Ping(ctx)
	}))
}

// CreateSpace creates a space and returns its id. s may be nil.
func (c *Client) CreateSpace(ctx context.Context, engine SpaceEngineType, name string, s *Scheme) expect.Expect[uint16] {
	action, ok := engine.CreateAction()
	if !ok {
		return expect.Errorf[uint16]("client: unknown engine type %d", engine)
	}
	var encoded []byte
	if s != nil {
		res := scheme.Encode(*s)
		if res.HoldsError() {
			return expect.Err[uint16](res.Fail())
		}
		encoded = res.Success()
	}

	res := c.do(ctx, func(ctx context.Context, p *pipe.Pipe) *pipe.Slot {
		return p.CreateSpace(ctx, action, name, encoded)
	})
	if res.HoldsError() {
		return expect.Err[uint16](res.Fail())
	}
	body := res.Success()
	if len(body) != 2 {
		return expect.Err[uint16](expect.NewVoidError(status.Truncated))
	}
	return expect.Ok(binary.LittleEndian.Uint16(body))
}

// GetSpacesNames returns the names of all spaces.
func (c *Client) GetSpacesNames(ctx context.Context) expect.Expect[[]string] {
	res := c.do(ctx, func(ctx context.Context, p *pipe.Pipe) *pipe.Slot {
		return p.GetSpacesNames(ctx)
	})
	if res.HoldsError() {
		return expect.Err[[]string](res.Fail())
	}

	body := res.Success()
	names := make([]string, 0)
	for offset := 0; offset < len(body); {
		if len(body)-offset < 2 {
			return expect.Err[[]string](expect.NewVoidError(status.Truncated))
		}
		size := int(binary.LittleEndian.Uint16(body[offset:]))
		offset += 2
		if len(body)-offset < size {
			return expect.Err[[]string](expect.NewVoidError(status.Truncated))
		}
		// body is owned by this call, so the names may alias it.
		names = append(names, fastbytes.B2S(body[offset:offset+size]))
		offset += size
	}
	return expect.Ok(names)
}

// Get returns the value stored under key.
func (c *Client) Get(ctx context.Context, spaceId uint16, key []byte) expect.Expect[[]byte] {
	return c.do(ctx, func(ctx context.Context, p *pipe.Pipe) *pipe.Slot {
		return p.Get(ctx, key, spaceId)
	})
}

// Insert stores value under key unless the key already exists.
func (c *Client) Insert(ctx context.Context, spaceId uint16, key, value []byte) expect.VoidError {
	return void(c.do(ctx, func(ctx context.Context, p *pipe.Pipe) *pipe.Slot {
		return p.Insert(ctx, key, value, spaceId)
	}))
}

// Set stores value under key.
func (c *Client) Set(ctx context.Context, spaceId uint16, key, value []byte) expect.VoidError {
	return void(c.do(ctx, func(ctx context.Context, p *pipe.Pipe) *pipe.Slot {
		return p.Set(ctx, key, value, spaceId)
	}))
}

// Delete removes key.
func (c *Client) Delete(ctx context.Context, spaceId uint16, key []byte) expect.VoidError {
	return void(c.do(ctx, func(ctx context.Context, p *pipe.Pipe) *pipe.Slot {
		return p.Delete(ctx, key, spaceId)
	}))
}
