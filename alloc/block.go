package alloc

// Block is a size-tagged byte buffer handed out by the allocator.
//
// A Block is owned by exactly one holder at a time: a cache or a single
// container. Contents are zero only when the block was freshly allocated;
// a block recycled from a cache carries whatever its previous owner left.
type Block struct {
	data     []byte
	size     int
	released bool
}

func newBlock(buf []byte) *Block {
	return &Block{data: buf, size: len(buf)}
}

// Size returns the block size in bytes. It never changes.
func (b *Block) Size() int {
	return b.size
}

// Released reports whether the block was handed back to the allocator.
func (b *Block) Released() bool {
	return b.released
}

// Bytes returns the backing buffer. Panics if the block was released.
func (b *Block) Bytes() []byte {
	if b.released {
		panic(ErrReleased)
	}
	return b.data
}

// Copy returns a copy of the block contents.
func (b *Block) Copy() ([]byte, error) {
	if b.released {
		return nil, ErrReleased
	}
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out, nil
}

// take detaches the buffer from the handle so it cannot be freed twice.
func (b *Block) take() ([]byte, bool) {
	if b.released {
		return nil, false
	}
	buf := b.data
	b.data = nil
	b.released = true
	return buf, true
}
