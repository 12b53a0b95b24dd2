package main

import (
	"fmt"
	"math"

	"github.com/c2h5oh/datasize"
)

// parseByteSize accepts plain byte counts and human sizes such as "4KB" or "1MB".
func parseByteSize(s string) (datasize.ByteSize, error) {
	var v datasize.ByteSize
	if err := v.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return v, nil
}

func parseSize(s string) (int, error) {
	v, err := parseByteSize(s)
	if err != nil {
		return 0, err
	}
	if v.Bytes() > math.MaxInt32 {
		return 0, fmt.Errorf("size %q too large", s)
	}
	return int(v.Bytes()), nil
}
