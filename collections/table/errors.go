package table

import "errors"

var (
	// ErrKeyNotFound is returned by Get and Delete for an absent key.
	ErrKeyNotFound = errors.New("table: key not found")

	// ErrFreed is the panic value for any use of a Table after Free.
	ErrFreed = errors.New("table: use after Free")
)
