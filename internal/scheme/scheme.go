package scheme

import (
	"github.com/goccy/go-json"

	"github.com/Eugene-Usachev/go-expect"
)

type Scheme struct {
	SizedFields   map[string]SizedFieldType   `json:"sized_fields"`
	UnsizedFields map[string]UnsizedFieldType `json:"unsized_fields"`
}

type SizedFieldType string

const (
	Byte    SizedFieldType = "Byte"
	Bool    SizedFieldType = "Bool"
	Uint8   SizedFieldType = "Uint8"
	Uint16  SizedFieldType = "Uint16"
	Uint32  SizedFieldType = "Uint32"
	Uint64  SizedFieldType = "Uint64"
	Uint128 SizedFieldType = "Uint128"
	Int8    SizedFieldType = "Int8"
	Int16   SizedFieldType = "Int16"
	Int32   SizedFieldType = "Int32"
	Int64   SizedFieldType = "Int64"
	Int128  SizedFieldType = "Int128"
	Float32 SizedFieldType = "Float32"
	Float64 SizedFieldType = "Float64"
)

var sizes = map[SizedFieldType]int{
	Byte: 1, Bool: 1, Uint8: 1, Int8: 1,
	Uint16: 2, Int16: 2,
	Uint32: 4, Int32: 4, Float32: 4,
	Uint64: 8, Int64: 8, Float64: 8,
	Uint128: 16, Int128: 16,
}

// Size returns the encoded size of t, 0 for an unknown type.
func (t SizedFieldType) Size() int {
	return sizes[t]
}

type UnsizedFieldType string

const (
	String    UnsizedFieldType = "String"
	ByteSlice UnsizedFieldType = "ByteSlice"
)

// Validate reports the first unknown field type.
func (s Scheme) Validate() expect.VoidError {
	for name, t := range s.SizedFields {
		if t.Size() == 0 {
			return expect.VoidErrorf("field %q: unknown sized type %q", name, t)
		}
	}
	for name, t := range s.UnsizedFields {
		if t != String && t != ByteSlice {
			return expect.VoidErrorf("field %q: unknown unsized type %q", name, t)
		}
	}
	return expect.VoidError{}
}

// Parse decodes and validates a scheme.
func Parse(data []byte) expect.Expect[Scheme] {
	var s Scheme
	if err := json.Unmarshal(data, &s); err != nil {
		return expect.Err[Scheme](expect.FromError(err))
	}
	if failure := s.Validate(); failure.HoldsError() {
		return expect.Err[Scheme](failure)
	}
	return expect.Ok(s)
}

// Encode validates and encodes a scheme.
func Encode(s Scheme) expect.Expect[[]byte] {
	if failure := s.Validate(); failure.HoldsError() {
		return expect.Err[[]byte](failure)
	}
	data, err := json.Marshal(s)
	return expect.FromResult(data, err)
}
