package pipe

import (
	"context"
	"encoding/binary"

	"github.com/Eugene-Usachev/fastbytes"

	"github.com/Eugene-Usachev/go-expect/internal/constants"
)

func (pipe *Pipe) Ping(ctx context.Context) *Slot {
	return pipe.Send(ctx, []byte{constants.Ping})
}

// CreateSpace asks for a new space. The response body is the u16 id of the
// space. scheme may be nil.
func (pipe *Pipe) CreateSpace(ctx context.Context, action uint8, name string, scheme []byte) *Slot {
	msg := make([]byte, 0, 3+len(name)+len(scheme))
	msg = append(msg, action)
	msg = binary.LittleEndian.AppendUint16(msg, uint16(len(name)))
	msg = append(msg, fastbytes.S2B(name)...)
	msg = append(msg, scheme...)
	return pipe.Send(ctx, msg)
}

// GetSpacesNames asks for the names of all spaces. The response body is a
// sequence of u16 length prefixed names.
func (pipe *Pipe) GetSpacesNames(ctx context.Context) *Slot {
	return pipe.Send(ctx, []byte{constants.GetSpacesNames})
}

func (pipe *Pipe) Insert(ctx context.Context, key []byte, value []byte, spaceId uint16) *Slot {
	return pipe.Send(ctx, keyValue(constants.Insert, key, value, spaceId))
}

func (pipe *Pipe) Set(ctx context.Context, key []byte, value []byte, spaceId uint16) *Slot {
	return pipe.Send(ctx, keyValue(constants.Set, key, value, spaceId))
}

func (pipe *Pipe) Get(ctx context.Context, key []byte, spaceId uint16) *Slot {
	return pipe.Send(ctx, keyOnly(constants.Get, key, spaceId))
}

func (pipe *Pipe) Delete(ctx context.Context, key []byte, spaceId uint16) *Slot {
	return pipe.Send(ctx, keyOnly(constants.Delete, key, spaceId))
}

// action (1) + spaceId (2) + key length (2) + key + value
func keyValue(action uint8, key, value []byte, spaceId uint16) []byte {
	msg := make([]byte, 0, 5+len(key)+len(value))
	msg = append(msg, action)
	msg = binary.LittleEndian.AppendUint16(msg, spaceId)
	msg = binary.LittleEndian.AppendUint16(msg, uint16(len(key)))
	msg = append(msg, key...)
	return append(msg, value...)
}

// action (1) + spaceId (2) + key
func keyOnly(action uint8, key []byte, spaceId uint16) []byte {
	msg := make([]byte, 0, 3+len(key))
	msg = append(msg, action)
	msg = binary.LittleEndian.AppendUint16(msg, spaceId)
	return append(msg, key...)
}
