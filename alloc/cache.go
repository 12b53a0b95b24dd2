package alloc

import "github.com/dolthub/swiss"

// sizeCache maps an exact block size to a stack of released buffers.
// The most recently released buffer of a size is reused first.
//
// sizeCache is not synchronized; the global tier wraps it in a mutex and
// each Local owns one outright.
type sizeCache struct {
	stacks *swiss.Map[int, [][]byte]
	blocks int
	bytes  int64
}

func newSizeCache() *sizeCache {
	return &sizeCache{stacks: swiss.NewMap[int, [][]byte](16)}
}

// pop removes and returns the most recently pushed buffer of exactly size bytes.
func (c *sizeCache) pop(size int) ([]byte, bool) {
	stack, ok := c.stacks.Get(size)
	if !ok || len(stack) == 0 {
		return nil, false
	}
	n := len(stack) - 1
	buf := stack[n]
	stack[n] = nil
	c.stacks.Put(size, stack[:n])
	c.blocks--
	c.bytes -= int64(size)
	return buf, true
}

// push caches buf under its length.
func (c *sizeCache) push(buf []byte) {
	size := len(buf)
	stack, _ := c.stacks.Get(size)
	c.stacks.Put(size, append(stack, buf))
	c.blocks++
	c.bytes += int64(size)
}

// drain empties the cache, passing every buffer to release.
func (c *sizeCache) drain(release func([]byte)) {
	c.stacks.Iter(func(_ int, stack [][]byte) bool {
		for _, buf := range stack {
			release(buf)
		}
		return false
	})
	c.stacks.Clear()
	c.blocks = 0
	c.bytes = 0
}

// each calls fn for every size with at least one cached buffer.
func (c *sizeCache) each(fn func(size, count int)) {
	c.stacks.Iter(func(size int, stack [][]byte) bool {
		if len(stack) > 0 {
			fn(size, len(stack))
		}
		return false
	})
}
