// Package array implements a growable array whose storage is a single block
// from a tierkit allocator.
//
// Elements are encoded into fixed-size slots by a codec.Codec. Slots
// [0, Len()) hold live elements; slots [Len(), Cap()) are uninitialized and
// are never decoded. When the array is full, Append moves the live slots into
// a block twice the size and only then returns the old block to the
// allocator.
//
// An Array allocates through the alloc.Local it was created with and is
// therefore bound to that Local's goroutine.
package array

import (
	"fmt"
	"iter"
	"strings"

	"github.com/joshuapare/tierkit/alloc"
	"github.com/joshuapare/tierkit/codec"
	"github.com/joshuapare/tierkit/internal/buf"
)

// DefaultCapacity is the capacity of a new Array when Options does not set one.
const DefaultCapacity = 4

// Options configures a new Array. A nil *Options selects the defaults.
type Options[T any] struct {
	// InitialCapacity is the number of slots in the first block. Must be > 0
	// when set. Default: DefaultCapacity.
	InitialCapacity int

	// Drop is called once for every element the array destroys: the old
	// value on Set and every live element on Free. Moves during growth do
	// not call it.
	Drop func(T)
}

// Array is a growable sequence of T stored in an allocator block.
type Array[T any] struct {
	local    *alloc.Local
	codec    codec.Codec[T]
	drop     func(T)
	block    *alloc.Block
	slotSize int
	length   int
	capacity int
}

// New creates an empty Array backed by a block from l.
func New[T any](l *alloc.Local, c codec.Codec[T], opts *Options[T]) *Array[T] {
	if c.Size() <= 0 {
		panic(fmt.Sprintf("array: codec slot size %d must be positive", c.Size()))
	}

	capacity := DefaultCapacity
	a := &Array[T]{local: l, codec: c, slotSize: c.Size()}
	if opts != nil {
		if opts.InitialCapacity < 0 {
			panic(fmt.Sprintf("array: negative initial capacity %d", opts.InitialCapacity))
		}
		if opts.InitialCapacity > 0 {
			capacity = opts.InitialCapacity
		}
		a.drop = opts.Drop
	}

	a.block = l.Alloc(buf.BlockSize(capacity, a.slotSize))
	a.capacity = capacity
	return a
}

// Len returns the number of elements.
func (a *Array[T]) Len() int {
	a.checkLive()
	return a.length
}

// Cap returns the number of slots in the current block.
func (a *Array[T]) Cap() int {
	a.checkLive()
	return a.capacity
}

// Append adds v at the end, doubling the capacity first if the array is full.
func (a *Array[T]) Append(v T) {
	a.checkLive()
	if a.length == a.capacity {
		a.grow()
	}
	a.codec.Put(a.slot(a.length), v)
	a.length++
}

// Get returns the element at index i.
func (a *Array[T]) Get(i int) (T, error) {
	a.checkLive()
	if err := a.checkIndex(i); err != nil {
		var zero T
		return zero, err
	}
	return a.codec.Get(a.slot(i)), nil
}

// Set replaces the element at index i, destroying the previous one.
func (a *Array[T]) Set(i int, v T) error {
	a.checkLive()
	if err := a.checkIndex(i); err != nil {
		return err
	}
	// Encode first so a panicking codec leaves the old element in place.
	scratch := make([]byte, a.slotSize)
	a.codec.Put(scratch, v)

	s := a.slot(i)
	if a.drop != nil {
		a.drop(a.codec.Get(s))
	}
	copy(s, scratch)
	return nil
}

// Free destroys every element in index order and returns the block to the
// allocator. Calling Free again is a no-op.
func (a *Array[T]) Free() {
	if a.block == nil {
		return
	}
	if a.drop != nil {
		for i := range a.length {
			a.drop(a.codec.Get(a.slot(i)))
		}
	}
	release(a.local, a.block)
	a.block = nil
	a.length = 0
	a.capacity = 0
}

// All iterates over the elements present when All is called, in order.
func (a *Array[T]) All() iter.Seq2[int, T] {
	a.checkLive()
	n := a.length
	return func(yield func(int, T) bool) {
		for i := range n {
			if !yield(i, a.codec.Get(a.slot(i))) {
				return
			}
		}
	}
}

// Values returns a copy of the elements as a Go slice.
func (a *Array[T]) Values() []T {
	out := make([]T, 0, a.Len())
	for _, v := range a.All() {
		out = append(out, v)
	}
	return out
}

// String formats the array as Array[e0 e1 ...].
func (a *Array[T]) String() string {
	if a.block == nil {
		return "Array(freed)"
	}
	var sb strings.Builder
	sb.WriteString("Array[")
	for i, v := range a.All() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprint(&sb, v)
	}
	sb.WriteByte(']')
	return sb.String()
}

// grow moves the live slots into a block of twice the capacity. The new
// block is acquired before anything changes, so an allocation panic leaves
// the array intact.
func (a *Array[T]) grow() {
	capacity := a.capacity * 2
	next := a.local.Alloc(buf.BlockSize(capacity, a.slotSize))

	used := a.length * a.slotSize
	copy(next.Bytes()[:used], a.block.Bytes()[:used])

	old := a.block
	a.block = next
	a.capacity = capacity
	release(a.local, old)
}

func (a *Array[T]) slot(i int) []byte {
	return buf.Slot(a.block.Bytes(), i, a.slotSize)
}

func (a *Array[T]) checkIndex(i int) error {
	if i < 0 || i >= a.length {
		return fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, i, a.length)
	}
	return nil
}

func (a *Array[T]) checkLive() {
	if a.block == nil {
		panic(ErrFreed)
	}
}

// release hands a block the array exclusively owns back to l.
func release(l *alloc.Local, b *alloc.Block) {
	if err := l.Free(b); err != nil {
		panic(fmt.Errorf("array: releasing block: %w", err))
	}
}
