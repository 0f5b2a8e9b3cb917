// Package pipe batches requests over a single connection.
//
// Requests are queued and written together as one request frame; responses
// come back in the same order and are handed out through Slots. A response
// carries the body of a Done message, any other status becomes a failure.
package pipe

import (
	"bytes"
	"context"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Eugene-Usachev/go-expect"
	"github.com/Eugene-Usachev/go-expect/internal/reader"
	"github.com/Eugene-Usachev/go-expect/internal/status"
)

const (
	bufferSize = 64 * 1024

	defaultMaxQueueSize  = 256
	defaultFlushInterval = 100 * time.Microsecond
	defaultTimeout       = 5 * time.Second
)

type Config struct {
	// Dial opens the connection. It is called lazily and again after the
	// connection breaks.
	Dial               func() (net.Conn, error)
	MaxQueueSize       int
	MaxWriteBufferSize int
	FlushInterval      time.Duration
	// Timeout bounds writing a batch and reading all of its responses.
	Timeout            time.Duration
	Log                *logrus.Entry
}

func (cfg Config) withDefaults() Config {
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = defaultMaxQueueSize
	}
	if cfg.MaxWriteBufferSize <= 0 {
		cfg.MaxWriteBufferSize = bufferSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = defaultFlushInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Log == nil {
		cfg.Log = logrus.NewEntry(logrus.StandardLogger())
	}
	return cfg
}

type request struct {
	data []byte
	slot *Slot
}

type Pipe struct {
	cfg Config
	log *logrus.Entry

	conn     net.Conn
	reader   *reader.BufReader
	writeBuf []byte
	pending  []*Slot

	queue     chan request
	done      chan struct{}
	closeOnce sync.Once
}

func NewPipe(cfg Config) *Pipe {
	cfg = cfg.withDefaults()
	return &Pipe{
		cfg:      cfg,
		log:      cfg.Log.WithField("component", "pipe"),
		reader:   reader.NewBufReader(),
		writeBuf: make([]byte, 0, bufferSize),
		pending:  make([]*Slot, 0, cfg.MaxQueueSize),
		queue:    make(chan request),
		done:     make(chan struct{}),
	}
}

// Start runs the pipe until Close is called.
func (pipe *Pipe) Start() {
	ticker := time.NewTicker(pipe.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-pipe.done:
			pipe.fail(pipe.pending, expect.NewVoidError(status.Closed))
			pipe.pending = pipe.pending[:0]
			pipe.disconnect()
			return
		case req := <-pipe.queue:
			pipe.enqueue(req)
		case <-ticker.C:
			pipe.flush()
		}
	}
}

// Close stops the pipe. Queued and later requests fail.
func (pipe *Pipe) Close() {
	pipe.closeOnce.Do(func() {
		close(pipe.done)
	})
}

// Send queues one message and returns the slot its response arrives in. If
// ctx ends before the pipe takes the message, the slot holds ctx's error.
func (pipe *Pipe) Send(ctx context.Context, msg []byte) *Slot {
	slot := NewSlot()
	select {
	case pipe.queue <- request{data: msg, slot: slot}:
	case <-pipe.done:
		slot.Set(expect.Err[[]byte](expect.NewVoidError(status.Closed)))
	case <-ctx.Done():
		slot.Set(expect.Err[[]byte](expect.FromError(ctx.Err())))
	}
	return slot
}

func (pipe *Pipe) enqueue(req request) {
	if len(pipe.pending) > 0 && len(pipe.writeBuf)+len(req.data)+6 > pipe.cfg.MaxWriteBufferSize {
		pipe.flush()
	}
	if len(pipe.pending) == 0 {
		pipe.writeBuf, _ = reader.BeginRequest(pipe.writeBuf[:0])
	}

	pipe.writeBuf = reader.AppendMessage(pipe.writeBuf, req.data)
	pipe.pending = append(pipe.pending, req.slot)

	if len(pipe.pending) >= pipe.cfg.MaxQueueSize {
		pipe.flush()
	}
}

func (pipe *Pipe) flush() {
	if len(pipe.pending) == 0 {
		return
	}
	pending := pipe.pending
	defer func() {
		pipe.writeBuf = pipe.writeBuf[:0]
		pipe.pending = pending[:0]
	}()

	if failure := pipe.connect(); failure.HoldsError() {
		pipe.fail(pending, failure)
		return
	}

	if err := pipe.conn.SetDeadline(time.Now().Add(pipe.cfg.Timeout)); err != nil {
		pipe.broken(pending, status.IO("deadline", err))
		return
	}
	if _, err := pipe.conn.Write(reader.EndRequest(pipe.writeBuf, 0)); err != nil {
		pipe.broken(pending, status.IO("write", err))
		return
	}

	for i, slot := range pending {
		msg := pipe.reader.ReadResponse()
		if msg.HoldsError() {
			pipe.broken(pending[i:], msg.Fail())
			return
		}
		if failure, body := status.Split(msg.Success()); failure.HoldsError() {
			slot.Set(expect.Err[[]byte](failure))
		} else {
			slot.Set(expect.Ok(bytes.Clone(body)))
		}
	}
}

func (pipe *Pipe) connect() expect.VoidError {
	if pipe.conn != nil {
		return expect.VoidError{}
	}
	conn, err := pipe.cfg.Dial()
	if err != nil {
		pipe.log.WithError(err).Warn("Can't connect")
		return status.IO("dial", err)
	}
	pipe.conn = conn
	pipe.reader.Reset()
	pipe.reader.SetReader(conn)
	return expect.VoidError{}
}

func (pipe *Pipe) disconnect() {
	if pipe.conn == nil {
		return
	}
	if err := pipe.conn.Close(); err != nil {
		pipe.log.WithError(err).Debug("Error closing connection")
	}
	pipe.conn = nil
}

// broken drops the connection after an I/O failure; the next flush redials.
func (pipe *Pipe) broken(slots []*Slot, failure expect.VoidError) {
	pipe.log.WithField("error", failure.Get()).Warn("Connection broken, failing pending requests")
	pipe.disconnect()
	pipe.fail(slots, failure)
}

func (pipe *Pipe) fail(slots []*Slot, failure expect.VoidError) {
	for _, slot := range slots {
		slot.Set(expect.Err[[]byte](failure))
	}
}
