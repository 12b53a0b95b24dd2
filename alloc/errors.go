package alloc

import "errors"

var (
	// ErrOutOfMemory indicates the raw source could not supply a block.
	// It is fatal: the allocator panics with an error wrapping it and never retries.
	ErrOutOfMemory = errors.New("alloc: out of memory")

	// ErrNegativeSize indicates Alloc was called with a size below zero.
	ErrNegativeSize = errors.New("alloc: negative size")

	// ErrReleased indicates the block handle was already returned to the allocator.
	ErrReleased = errors.New("alloc: block already released")

	// ErrClosed indicates use of a Local after Close.
	ErrClosed = errors.New("alloc: local tier closed")
)
