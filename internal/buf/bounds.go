// Package buf holds the slot arithmetic and little-endian helpers used to
// lay fixed-size records out in raw blocks.
package buf

import (
	"fmt"
	"math"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// MulOverflowSafe multiplies two non-negative ints, returning ok = false on
// overflow or when either operand is negative.
func MulOverflowSafe(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

// BlockSize returns the bytes needed for count slots of slotSize bytes.
// It panics when the product overflows; callers size blocks from capacities
// they control, so an overflow is a broken invariant.
func BlockSize(count, slotSize int) int {
	n, ok := MulOverflowSafe(count, slotSize)
	if !ok {
		panic(fmt.Sprintf("buf: block size overflow: count=%d * slot=%d", count, slotSize))
	}
	return n
}

// SlotRange returns [off, end) of slot index in a buffer of bufLen bytes.
//
//	off, end, err := buf.SlotRange(len(data), i, entrySize)
//	if err != nil {
//	    return fmt.Errorf("entry: %w", err)
//	}
func SlotRange(bufLen, index, slotSize int) (int, int, error) {
	if index < 0 {
		return 0, 0, fmt.Errorf("negative slot index: %d", index)
	}
	if slotSize <= 0 {
		return 0, 0, fmt.Errorf("non-positive slot size: %d", slotSize)
	}
	off, ok := MulOverflowSafe(index, slotSize)
	if !ok {
		return 0, 0, fmt.Errorf("overflow: index=%d * slot=%d", index, slotSize)
	}
	end, ok := AddOverflowSafe(off, slotSize)
	if !ok {
		return 0, 0, fmt.Errorf("overflow: offset=%d + slot=%d", off, slotSize)
	}
	if end > bufLen {
		return 0, 0, fmt.Errorf("bounds: end=%d > len=%d", end, bufLen)
	}
	return off, end, nil
}

// Slot returns the slotSize-byte window of slot index in b.
// It panics if the slot does not fit: containers check indices against
// their own length and capacity before reaching here.
func Slot(b []byte, index, slotSize int) []byte {
	off, end, err := SlotRange(len(b), index, slotSize)
	if err != nil {
		panic("buf: " + err.Error())
	}
	return b[off:end:end]
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end], true
}
