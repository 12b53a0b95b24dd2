package alloc

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/joshuapare/tierkit/internal/logger"
)

// Threshold is the largest block size served by the local tier. Larger
// sizes go to the global tier.
const Threshold = 256

// Runtime debug flag for allocation logging - controlled by TIERKIT_LOG_ALLOC env var.
var logAlloc = os.Getenv("TIERKIT_LOG_ALLOC") != ""

// Config configures an Allocator. A nil *Config selects the defaults.
type Config struct {
	// Source supplies fresh blocks on a cache miss. Default: HeapSource.
	Source Source

	// Logger receives debug events. Default: logger.L at the time of logging.
	Logger *slog.Logger
}

// Allocator is the shared allocation service. It owns the global tier and
// the raw source, and hands out Local tiers to workers.
//
// Allocator methods are safe for concurrent use. The Locals it returns are not.
type Allocator struct {
	source  Source
	log     *slog.Logger
	global  globalTier
	classes *classTable

	mu      sync.Mutex // guards locals and retired folding
	locals  map[*Local]struct{}
	retired tierCounters
}

// New creates an Allocator with empty caches.
func New(config *Config) *Allocator {
	a := &Allocator{
		source:  HeapSource{},
		global:  globalTier{cache: newSizeCache()},
		classes: newClassTable(DefaultClasses),
		locals:  make(map[*Local]struct{}),
	}
	if config != nil {
		if config.Source != nil {
			a.source = config.Source
		}
		a.log = config.Logger
	}
	return a
}

// Route reports which tier serves blocks of size bytes.
func Route(size int) Tier {
	if size <= Threshold {
		return TierLocal
	}
	return TierGlobal
}

// NewLocal returns a new local tier bound to a. The caller owns it and must
// not share it between goroutines without external synchronization.
func (a *Allocator) NewLocal() *Local {
	l := &Local{a: a, cache: newSizeCache()}
	a.mu.Lock()
	a.locals[l] = struct{}{}
	a.mu.Unlock()
	return l
}

// Cleanup clears the global cache and hands its buffers back to the source.
// Local caches are cleared through Local.Cleanup by their owners.
func (a *Allocator) Cleanup() {
	evicted := a.global.clear()
	for _, buf := range evicted {
		a.source.Free(buf)
	}
	a.logger().Debug("global cache cleared", "blocks", len(evicted))
}

// Stats returns a snapshot of both tiers.
func (a *Allocator) Stats() Stats {
	a.mu.Lock()
	local := a.retired.snapshot()
	for l := range a.locals {
		local = local.add(l.stats.snapshot())
	}
	n := len(a.locals)
	a.mu.Unlock()

	return Stats{
		Local:   local,
		Global:  a.global.stats.snapshot(),
		Locals:  n,
		Classes: a.global.histogram(a.classes),
	}
}

func (a *Allocator) logger() *slog.Logger {
	if a.log != nil {
		return a.log
	}
	return logger.L
}

// fresh draws a zero-filled buffer from the source.
func (a *Allocator) fresh(size int, tier Tier) []byte {
	buf := a.source.Alloc(size)
	if len(buf) != size {
		panic(fmt.Errorf("%w: source returned %d bytes for %d", ErrOutOfMemory, len(buf), size))
	}
	if logAlloc {
		a.logger().Debug("fresh block", "size", size, "tier", tier.String())
	}
	return buf
}

// unregister folds l's counters into the retired totals and forgets it.
func (a *Allocator) unregister(l *Local) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.locals[l]; !ok {
		return
	}
	a.retired.retire(&l.stats)
	delete(a.locals, l)
}
