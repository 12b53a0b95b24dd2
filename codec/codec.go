// Package codec encodes container elements into fixed-size byte slots.
//
// Containers store elements in raw blocks the garbage collector does not
// scan, so every element type is flattened into Size() bytes by a Codec.
// All built-in codecs are little-endian.
package codec

import (
	"errors"
	"fmt"
	"math"

	"github.com/joshuapare/tierkit/internal/buf"
)

// ErrTooLong indicates a value does not fit the fixed width of its codec.
var ErrTooLong = errors.New("codec: value exceeds slot width")

// Codec converts between T and a fixed-size slot.
//
// Put writes exactly Size() bytes into dst; Get reads them back. dst and src
// are always exactly Size() bytes long.
type Codec[T any] interface {
	Size() int
	Put(dst []byte, v T)
	Get(src []byte) T
}

type int64Codec struct{}

// Int64 stores int64 values in 8 bytes.
func Int64() Codec[int64] { return int64Codec{} }

func (int64Codec) Size() int { return 8 }
func (int64Codec) Put(dst []byte, v int64) { buf.PutU64(dst, uint64(v)) }
func (int64Codec) Get(src []byte) int64 { return int64(buf.U64(src)) }

type uint64Codec struct{}

// Uint64 stores uint64 values in 8 bytes.
func Uint64() Codec[uint64] { return uint64Codec{} }

func (uint64Codec) Size() int { return 8 }
func (uint64Codec) Put(dst []byte, v uint64) { buf.PutU64(dst, v) }
func (uint64Codec) Get(src []byte) uint64 { return buf.U64(src) }

type int32Codec struct{}

// Int32 stores int32 values in 4 bytes.
func Int32() Codec[int32] { return int32Codec{} }

func (int32Codec) Size() int { return 4 }
func (int32Codec) Put(dst []byte, v int32) { buf.PutU32(dst, uint32(v)) }
func (int32Codec) Get(src []byte) int32 { return int32(buf.U32(src)) }

type uint32Codec struct{}

// Uint32 stores uint32 values in 4 bytes.
func Uint32() Codec[uint32] { return uint32Codec{} }

func (uint32Codec) Size() int { return 4 }
func (uint32Codec) Put(dst []byte, v uint32) { buf.PutU32(dst, v) }
func (uint32Codec) Get(src []byte) uint32 { return buf.U32(src) }

type float64Codec struct{}

// Float64 stores float64 values as their IEEE 754 bits.
func Float64() Codec[float64] { return float64Codec{} }

func (float64Codec) Size() int { return 8 }
func (float64Codec) Put(dst []byte, v float64) { buf.PutU64(dst, math.Float64bits(v)) }
func (float64Codec) Get(src []byte) float64 { return math.Float64frombits(buf.U64(src)) }

type boolCodec struct{}

// Bool stores a bool in one byte.
func Bool() Codec[bool] { return boolCodec{} }

func (boolCodec) Size() int { return 1 }

func (boolCodec) Put(dst []byte, v bool) {
	if v {
		dst[0] = 1
	} else {
		dst[0] = 0
	}
}

func (boolCodec) Get(src []byte) bool { return src[0] != 0 }

// stringCodec lays a string out as a uint16 length followed by width bytes.
type stringCodec struct {
	width int
}

// String stores strings of up to width bytes. Put panics with ErrTooLong for
// longer values. width must be in [0, 65535].
func String(width int) Codec[string] {
	if width < 0 || width > math.MaxUint16 {
		panic(fmt.Sprintf("codec: string width %d out of range", width))
	}
	return stringCodec{width: width}
}

func (c stringCodec) Size() int { return 2 + c.width }

func (c stringCodec) Put(dst []byte, v string) {
	if len(v) > c.width {
		panic(fmt.Errorf("%w: %d bytes, width %d", ErrTooLong, len(v), c.width))
	}
	buf.PutU16(dst, uint16(len(v)))
	n := copy(dst[2:], v)
	clear(dst[2+n:])
}

func (c stringCodec) Get(src []byte) string {
	n := int(buf.U16(src))
	if n > c.width {
		n = c.width
	}
	return string(src[2 : 2+n])
}
