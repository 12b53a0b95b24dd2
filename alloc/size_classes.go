package alloc

import "math"

// ClassConfig describes the size-class table used to bucket cached blocks in
// Stats. Blocks are always cached under their exact size; classes only group
// them for reporting.
type ClassConfig struct {
	// Name for this configuration (shown by tierctl classes)
	Name string

	// Small sizes use linear increments
	SmallMin       int
	SmallMax       int
	SmallIncrement int

	// Medium sizes grow geometrically up to MediumMax; anything larger is "large"
	MediumMax    int
	GrowthFactor float64
}

// DefaultClasses mirrors the allocator routing: linear steps of 8 up to the
// local-tier Threshold, doubling from there to 1 MiB.
var DefaultClasses = ClassConfig{
	Name:           "Default",
	SmallMin:       8,
	SmallMax:       Threshold,
	SmallIncrement: 8,
	MediumMax:      1 << 20,
	GrowthFactor:   2.0,
}

// classTable holds the computed upper bound (inclusive) of each class.
type classTable struct {
	config     ClassConfig
	boundaries []int
}

func newClassTable(config ClassConfig) *classTable {
	t := &classTable{config: config, boundaries: make([]int, 0, 64)}

	for size := config.SmallMin; size < config.SmallMax; size += config.SmallIncrement {
		t.boundaries = append(t.boundaries, size+config.SmallIncrement-1)
	}
	// Threshold-sized blocks belong to the last small class.
	if n := len(t.boundaries); n > 0 && t.boundaries[n-1] < config.SmallMax {
		t.boundaries[n-1] = config.SmallMax
	}

	size := config.SmallMax
	for size < config.MediumMax {
		next := int(math.Ceil(float64(size) * config.GrowthFactor))
		if next <= size {
			next = size + 1
		}
		if next > config.MediumMax {
			next = config.MediumMax
		}
		t.boundaries = append(t.boundaries, next)
		size = next
	}
	return t
}

// classOf returns the class index for size, or len(boundaries) for large blocks.
func (t *classTable) classOf(size int) int {
	lo, hi := 0, len(t.boundaries)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		if size <= t.boundaries[mid] {
			if mid == 0 || size > t.boundaries[mid-1] {
				return mid
			}
			hi = mid - 1
		} else {
			lo = mid + 1
		}
	}
	return len(t.boundaries)
}

// ClassBounds returns the inclusive upper bound of every class in cfg.
// Sizes above the last bound fall in the large class.
func ClassBounds(cfg ClassConfig) []int {
	t := newClassTable(cfg)
	out := make([]int, len(t.boundaries))
	copy(out, t.boundaries)
	return out
}

// ClassStats reports cached blocks falling in one size class.
type ClassStats struct {
	Upper  int   `json:"upper"`  // inclusive upper bound, -1 for the large class
	Blocks int   `json:"blocks"` // cached blocks
	Bytes  int64 `json:"bytes"`  // cached bytes
}

// histogram buckets the cache contents by class, skipping empty classes.
func (t *classTable) histogram(c *sizeCache) []ClassStats {
	buckets := make([]ClassStats, len(t.boundaries)+1)
	for i, b := range t.boundaries {
		buckets[i].Upper = b
	}
	buckets[len(t.boundaries)].Upper = -1

	c.each(func(size, count int) {
		b := &buckets[t.classOf(size)]
		b.Blocks += count
		b.Bytes += int64(size) * int64(count)
	})

	out := buckets[:0]
	for _, b := range buckets {
		if b.Blocks > 0 {
			out = append(out, b)
		}
	}
	return out
}
