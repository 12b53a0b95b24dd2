package array

import "errors"

var (
	// ErrIndexOutOfRange is returned by Get and Set for an index outside [0, Len()).
	ErrIndexOutOfRange = errors.New("array: index out of range")

	// ErrFreed is the panic value for any use of an Array after Free.
	ErrFreed = errors.New("array: use after Free")
)
