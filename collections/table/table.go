package table

import (
	"fmt"
	"iter"
	"strings"

	"github.com/joshuapare/tierkit/alloc"
	"github.com/joshuapare/tierkit/codec"
	"github.com/joshuapare/tierkit/internal/buf"
	"github.com/joshuapare/tierkit/keys"
)

// DefaultCapacity is the number of entries in a new Table.
const DefaultCapacity = 8

// Load factor limit, as a ratio: count/capacity stays below loadNum/loadDen.
const (
	loadNum = 7
	loadDen = 10
)

// Options configures a new Table. A nil *Options selects the defaults.
type Options[K, V any] struct {
	// InitialCapacity is the number of entries in the first block. Must be > 0
	// when set. Default: DefaultCapacity.
	InitialCapacity int

	// KeyDrop and ValueDrop are called for every key and value the table
	// destroys (Delete, overwritten values, Free). Rehash moves do not call them.
	KeyDrop   func(K)
	ValueDrop func(V)
}

// Table maps K to V with linear probing.
type Table[K, V any] struct {
	local     *alloc.Local
	kc        codec.Codec[K]
	vc        codec.Codec[V]
	hasher    keys.Hasher[K]
	keyDrop   func(K)
	valueDrop func(V)

	block    *alloc.Block
	entry    int // bytes per entry
	capacity int
	count    int
}

// New creates an empty Table backed by a block from l.
func New[K, V any](l *alloc.Local, kc codec.Codec[K], vc codec.Codec[V], h keys.Hasher[K], opts *Options[K, V]) *Table[K, V] {
	if kc.Size() < 0 || vc.Size() < 0 {
		panic(fmt.Sprintf("table: negative codec size (key %d, value %d)", kc.Size(), vc.Size()))
	}

	t := &Table[K, V]{
		local:  l,
		kc:     kc,
		vc:     vc,
		hasher: h,
		entry:  1 + kc.Size() + vc.Size(),
	}
	capacity := DefaultCapacity
	if opts != nil {
		if opts.InitialCapacity < 0 {
			panic(fmt.Sprintf("table: negative initial capacity %d", opts.InitialCapacity))
		}
		if opts.InitialCapacity > 0 {
			capacity = opts.InitialCapacity
		}
		t.keyDrop = opts.KeyDrop
		t.valueDrop = opts.ValueDrop
	}

	t.block = t.acquire(capacity)
	t.capacity = capacity
	return t
}

// Len returns the number of entries.
func (t *Table[K, V]) Len() int {
	t.checkLive()
	return t.count
}

// Cap returns the number of entry slots.
func (t *Table[K, V]) Cap() int {
	t.checkLive()
	return t.capacity
}

// Set inserts k or overwrites its value. Overwriting destroys the old value
// and never grows the table.
func (t *Table[K, V]) Set(k K, v V) {
	t.checkLive()

	i, found := t.find(k)
	if found {
		scratch := make([]byte, t.vc.Size())
		t.vc.Put(scratch, v)

		val := t.valueOf(t.entryAt(i))
		if t.valueDrop != nil {
			t.valueDrop(t.vc.Get(val))
		}
		copy(val, scratch)
		return
	}

	if i < 0 || !t.fits(t.count+1, t.capacity) {
		target := t.capacity * 2
		for !t.fits(t.count+1, target) {
			target *= 2
		}
		t.rehash(target)
		i, _ = t.find(k)
	}

	e := t.entryAt(i)
	t.kc.Put(t.keyOf(e), k)
	t.vc.Put(t.valueOf(e), v)
	e[0] = 1
	t.count++
}

// Get returns the value stored for k.
func (t *Table[K, V]) Get(k K) (V, error) {
	t.checkLive()
	i, found := t.find(k)
	if !found {
		var zero V
		return zero, fmt.Errorf("%w: %v", ErrKeyNotFound, k)
	}
	return t.vc.Get(t.valueOf(t.entryAt(i))), nil
}

// Has reports whether k is present.
func (t *Table[K, V]) Has(k K) bool {
	t.checkLive()
	_, found := t.find(k)
	return found
}

// Delete removes k, destroying its key and value, then rebuilds the table at
// the same capacity.
func (t *Table[K, V]) Delete(k K) error {
	t.checkLive()
	i, found := t.find(k)
	if !found {
		return fmt.Errorf("%w: %v", ErrKeyNotFound, k)
	}

	e := t.entryAt(i)
	if t.keyDrop != nil {
		t.keyDrop(t.kc.Get(t.keyOf(e)))
	}
	if t.valueDrop != nil {
		t.valueDrop(t.vc.Get(t.valueOf(e)))
	}
	e[0] = 0
	t.count--

	t.rehash(t.capacity)
	return nil
}

// Keys returns the keys in storage order.
func (t *Table[K, V]) Keys() []K {
	out := make([]K, 0, t.Len())
	for k := range t.All() {
		out = append(out, k)
	}
	return out
}

// All iterates over the entries in storage order. The table must not be
// modified during iteration.
func (t *Table[K, V]) All() iter.Seq2[K, V] {
	t.checkLive()
	return func(yield func(K, V) bool) {
		for i := range t.capacity {
			e := t.entryAt(i)
			if e[0] == 0 {
				continue
			}
			if !yield(t.kc.Get(t.keyOf(e)), t.vc.Get(t.valueOf(e))) {
				return
			}
		}
	}
}

// String formats the table as Table{k: v, ...} in storage order.
func (t *Table[K, V]) String() string {
	if t.block == nil {
		return "Table(freed)"
	}
	var sb strings.Builder
	sb.WriteString("Table{")
	first := true
	for k, v := range t.All() {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&sb, "%v: %v", k, v)
	}
	sb.WriteByte('}')
	return sb.String()
}

// Free destroys every entry and returns the block to the allocator. Calling
// Free again is a no-op.
func (t *Table[K, V]) Free() {
	if t.block == nil {
		return
	}
	if t.keyDrop != nil || t.valueDrop != nil {
		for i := range t.capacity {
			e := t.entryAt(i)
			if e[0] == 0 {
				continue
			}
			if t.keyDrop != nil {
				t.keyDrop(t.kc.Get(t.keyOf(e)))
			}
			if t.valueDrop != nil {
				t.valueDrop(t.vc.Get(t.valueOf(e)))
			}
		}
	}
	release(t.local, t.block)
	t.block = nil
	t.capacity = 0
	t.count = 0
}

// find probes for k from its home slot. It returns the key's index, or the
// first unoccupied index with found=false. -1 means the probe wrapped around
// a full table.
func (t *Table[K, V]) find(k K) (int, bool) {
	i := t.home(k, t.capacity)
	for range t.capacity {
		e := t.entryAt(i)
		if e[0] == 0 {
			return i, false
		}
		if t.hasher.Equal(t.kc.Get(t.keyOf(e)), k) {
			return i, true
		}
		i = (i + 1) % t.capacity
	}
	return -1, false
}

// rehash moves every occupied entry into a fresh block of capacity entries,
// in storage order. The new block is acquired before anything changes.
func (t *Table[K, V]) rehash(capacity int) {
	next := t.acquire(capacity)
	src := t.block.Bytes()
	dst := next.Bytes()

	count := 0
	for i := range t.capacity {
		e := buf.Slot(src, i, t.entry)
		if e[0] == 0 {
			continue
		}
		j := t.home(t.kc.Get(t.keyOf(e)), capacity)
		for buf.Slot(dst, j, t.entry)[0] != 0 {
			j = (j + 1) % capacity
		}
		copy(buf.Slot(dst, j, t.entry), e)
		count++
	}

	old := t.block
	t.block = next
	t.capacity = capacity
	t.count = count
	release(t.local, old)
}

// acquire allocates a block for capacity entries with every occupancy flag cleared.
func (t *Table[K, V]) acquire(capacity int) *alloc.Block {
	b := t.local.Alloc(buf.BlockSize(capacity, t.entry))
	data := b.Bytes()
	for i := range capacity {
		data[i*t.entry] = 0
	}
	return b
}

func (t *Table[K, V]) fits(count, capacity int) bool {
	return count*loadDen < capacity*loadNum
}

func (t *Table[K, V]) home(k K, capacity int) int {
	return int(t.hasher.Hash(k) % uint64(capacity))
}

func (t *Table[K, V]) entryAt(i int) []byte {
	return buf.Slot(t.block.Bytes(), i, t.entry)
}

func (t *Table[K, V]) keyOf(e []byte) []byte {
	return field(e, 1, t.kc.Size())
}

func (t *Table[K, V]) valueOf(e []byte) []byte {
	return field(e, 1+t.kc.Size(), t.vc.Size())
}

// field returns e[off:off+n]; entries are sized from the codecs, so a miss
// is a broken layout.
func field(e []byte, off, n int) []byte {
	f, ok := buf.Slice(e, off, n)
	if !ok {
		panic(fmt.Sprintf("table: field [%d:+%d] outside %d-byte entry", off, n, len(e)))
	}
	return f
}

func (t *Table[K, V]) checkLive() {
	if t.block == nil {
		panic(ErrFreed)
	}
}

func release(l *alloc.Local, b *alloc.Block) {
	if err := l.Free(b); err != nil {
		panic(fmt.Errorf("table: releasing block: %w", err))
	}
}
