// Package reader reads length-prefixed messages from a connection.
//
// A message is a u16 little-endian length followed by the payload. Lengths of
// math.MaxUint16 and above are written as 0xFFFF followed by a u32 length. A
// request is a u32 little-endian size, counting itself, followed by messages.
package reader

import (
	"encoding/binary"
	"errors"
	"io"
	"math"

	"github.com/Eugene-Usachev/go-expect"
	"github.com/Eugene-Usachev/go-expect/internal/status"
)

const BufferSize = math.MaxUint16

// MaxMessageSize bounds the payload of a single message.
const MaxMessageSize = 64 << 20

const (
	noMessages     = "request has no more messages"
	tooLarge       = "message too large"
	exceedsRequest = "message exceeds its request"
)

// BufReader buffers reads from a connection. Returned messages alias the
// internal buffer and are only valid until the next read.
type BufReader struct {
	buf         []byte
	reader      io.Reader
	readOffset  int
	writeOffset int
	requestSize int
}

func NewBufReader() *BufReader {
	return &BufReader{
		buf: make([]byte, BufferSize),
	}
}

func (r *BufReader) SetReader(reader io.Reader) {
	r.reader = reader
}

// fill makes sure at least needed unread bytes are buffered.
func (r *BufReader) fill(needed int) expect.VoidError {
	unread := r.writeOffset - r.readOffset
	if unread >= needed {
		return expect.VoidError{}
	}

	if needed > len(r.buf)-r.readOffset {
		buf := r.buf
		if needed > len(buf) {
			buf = make([]byte, needed)
		}
		copy(buf, r.buf[r.readOffset:r.writeOffset])
		r.buf = buf
		r.readOffset = 0
		r.writeOffset = unread
	}

	for r.writeOffset-r.readOffset < needed {
		n, err := r.reader.Read(r.buf[r.writeOffset:])
		r.writeOffset += n
		if err == nil {
			continue
		}
		if r.writeOffset-r.readOffset >= needed {
			break
		}
		if errors.Is(err, io.EOF) {
			if r.writeOffset == r.readOffset {
				return expect.NewVoidError(status.Closed)
			}
			return expect.NewVoidError(status.Truncated)
		}
		return status.IO("read", err)
	}
	return expect.VoidError{}
}

// readLength reads a message header and returns the payload length together
// with the header size.
func (r *BufReader) readLength() (int, int, expect.VoidError) {
	if failure := r.fill(2); failure.HoldsError() {
		return 0, 0, failure
	}
	length := int(binary.LittleEndian.Uint16(r.buf[r.readOffset:]))
	r.readOffset += 2
	if length != math.MaxUint16 {
		return length, 2, expect.VoidError{}
	}

	if failure := r.fill(4); failure.HoldsError() {
		return 0, 0, failure
	}
	length = int(binary.LittleEndian.Uint32(r.buf[r.readOffset:]))
	r.readOffset += 4
	return length, 6, expect.VoidError{}
}

// readFrame reads one message of at most limit bytes including its header.
// A negative limit means no limit besides MaxMessageSize.
func (r *BufReader) readFrame(limit int) (expect.Expect[[]byte], int) {
	length, header, failure := r.readLength()
	if failure.HoldsError() {
		return expect.Err[[]byte](failure), 0
	}
	if length > MaxMessageSize {
		return expect.Err[[]byte](expect.NewVoidError(tooLarge)), 0
	}
	if limit >= 0 && header+length > limit {
		return expect.Err[[]byte](expect.NewVoidError(exceedsRequest)), 0
	}
	if failure = r.fill(length); failure.HoldsError() {
		return expect.Err[[]byte](failure), 0
	}
	r.readOffset += length
	return expect.Ok(r.buf[r.readOffset-length : r.readOffset]), header + length
}

// ReadRequest reads the size header of the next request.
func (r *BufReader) ReadRequest() expect.VoidError {
	if failure := r.fill(4); failure.HoldsError() {
		return failure
	}
	r.requestSize = int(binary.LittleEndian.Uint32(r.buf[r.readOffset:])) - 4
	r.readOffset += 4
	if r.requestSize < 0 {
		r.requestSize = 0
		return expect.NewVoidError(status.BadRequest)
	}
	return expect.VoidError{}
}

// Remaining returns how many bytes of the current request are still unread.
func (r *BufReader) Remaining() int {
	return r.requestSize
}

// ReadMessage reads the next message of the current request.
func (r *BufReader) ReadMessage() expect.Expect[[]byte] {
	if r.requestSize <= 0 {
		return expect.Err[[]byte](expect.NewVoidError(noMessages))
	}
	msg, size := r.readFrame(r.requestSize)
	if msg.HoldsError() {
		// The stream can't be trusted past a bad message.
		r.requestSize = 0
		return msg
	}
	r.requestSize -= size
	return msg
}

// ReadResponse reads a single message that is not part of a request.
func (r *BufReader) ReadResponse() expect.Expect[[]byte] {
	msg, _ := r.readFrame(-1)
	return msg
}

// Reset drops everything buffered and shrinks the buffer back to BufferSize.
func (r *BufReader) Reset() {
	if len(r.buf) != BufferSize {
		r.buf = make([]byte, BufferSize)
	}
	r.requestSize = 0
	r.readOffset = 0
	r.writeOffset = 0
}
