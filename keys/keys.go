// Package keys supplies the hash and equality functions hash tables use to
// place and compare keys.
//
// A table only requires a stable hash and an equality test that agree:
// Equal(a, b) implies Hash(a) == Hash(b).
package keys

import (
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/segmentio/fasthash/fnv1a"
	"golang.org/x/text/cases"
)

// Hasher hashes and compares keys of type K.
type Hasher[K any] interface {
	Hash(k K) uint64
	Equal(a, b K) bool
}

type funcHasher[K any] struct {
	hash  func(K) uint64
	equal func(a, b K) bool
}

// Func builds a Hasher from caller-supplied functions.
func Func[K any](hash func(K) uint64, equal func(a, b K) bool) Hasher[K] {
	return funcHasher[K]{hash: hash, equal: equal}
}

func (h funcHasher[K]) Hash(k K) uint64 { return h.hash(k) }
func (h funcHasher[K]) Equal(a, b K) bool { return h.equal(a, b) }

type int64Hasher struct{}

// Int64 hashes int64 keys with FNV-1a.
func Int64() Hasher[int64] { return int64Hasher{} }

func (int64Hasher) Hash(k int64) uint64 { return fnv1a.HashUint64(uint64(k)) }
func (int64Hasher) Equal(a, b int64) bool { return a == b }

type uint64Hasher struct{}

// Uint64 hashes uint64 keys with FNV-1a.
func Uint64() Hasher[uint64] { return uint64Hasher{} }

func (uint64Hasher) Hash(k uint64) uint64 { return fnv1a.HashUint64(k) }
func (uint64Hasher) Equal(a, b uint64) bool { return a == b }

type float64Hasher struct{}

// Float64 hashes float64 keys by value. +0 and -0 are the same key; NaN is
// never equal to anything, so a NaN key can be stored but not found again.
func Float64() Hasher[float64] { return float64Hasher{} }

func (float64Hasher) Hash(k float64) uint64 {
	if k == 0 {
		k = 0 // fold -0 into +0
	}
	return fnv1a.HashUint64(math.Float64bits(k))
}

func (float64Hasher) Equal(a, b float64) bool { return a == b }

type stringHasher struct{}

// String hashes string keys with xxhash.
func String() Hasher[string] { return stringHasher{} }

func (stringHasher) Hash(k string) uint64 { return xxhash.Sum64String(k) }
func (stringHasher) Equal(a, b string) bool { return a == b }

type foldedHasher struct{}

// FoldedString treats keys that differ only in case as equal, using Unicode
// case folding.
func FoldedString() Hasher[string] { return foldedHasher{} }

func (foldedHasher) Hash(k string) uint64 {
	return xxhash.Sum64String(fold(k))
}

func (foldedHasher) Equal(a, b string) bool {
	if a == b {
		return true
	}
	return fold(a) == fold(b)
}

func fold(s string) string {
	return cases.Fold().String(s)
}
