package reader

import (
	"encoding/binary"
	"math"
)

// AppendMessage appends payload to dst as a single message.
func AppendMessage(dst, payload []byte) []byte {
	if len(payload) < math.MaxUint16 {
		dst = binary.LittleEndian.AppendUint16(dst, uint16(len(payload)))
	} else {
		dst = binary.LittleEndian.AppendUint16(dst, math.MaxUint16)
		dst = binary.LittleEndian.AppendUint32(dst, uint32(len(payload)))
	}
	return append(dst, payload...)
}

// BeginRequest appends a placeholder for the request size header and returns
// its offset.
func BeginRequest(dst []byte) ([]byte, int) {
	return append(dst, 0, 0, 0, 0), len(dst)
}

// EndRequest fills the size header written by BeginRequest at offset.
func EndRequest(dst []byte, offset int) []byte {
	binary.LittleEndian.PutUint32(dst[offset:], uint32(len(dst)-offset))
	return dst
}
