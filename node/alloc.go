package node

import (
	"sync"
	"unsafe"
)

// Allocator acquires and releases the memory behind values, text payloads,
// object keys and serializer buffers. Implementations signal exhaustion by
// returning nil. Memory acquired from an Allocator is always released
// through the same Allocator.
type Allocator interface {
	AllocValue() *Value
	FreeValue(v *Value)
	// AllocText returns a slice of length n, n > 0.
	AllocText(n int) []byte
	FreeText(b []byte)
}

// valueSize is the accounting size of one Value node.
const valueSize = int64(unsafe.Sizeof(Value{}))

// HeapAllocator allocates from the Go heap. It is the default.
type HeapAllocator struct{}

func (HeapAllocator) AllocValue() *Value     { return new(Value) }
func (HeapAllocator) FreeValue(*Value)       {}
func (HeapAllocator) AllocText(n int) []byte { return make([]byte, n) }
func (HeapAllocator) FreeText([]byte)        {}

var hooks struct {
	mu     sync.Mutex
	alloc  Allocator
	frozen bool
}

// InitHooks installs the process-wide allocator. It must be called at most
// once and before any value is created through the default allocator;
// afterwards it returns ErrHooksFrozen. Factories built with NewFactory are
// not affected.
func InitHooks(a Allocator) error {
	if a == nil {
		return opError("init hooks", ErrNilValue)
	}
	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if hooks.frozen {
		return opError("init hooks", ErrHooksFrozen)
	}
	hooks.alloc = a
	hooks.frozen = true
	return nil
}

// defaultAllocator returns the configured allocator and freezes the hooks.
func defaultAllocator() Allocator {
	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if hooks.alloc == nil {
		hooks.alloc = HeapAllocator{}
	}
	hooks.frozen = true
	return hooks.alloc
}

// AllocStats is a snapshot of a CountingAllocator.
type AllocStats struct {
	LiveValues   int64
	LiveBytes    int64
	TotalValues  int64
	TotalBytes   int64
	InvalidFrees int64
}

// CountingAllocator wraps another allocator and tracks outstanding
// allocations. Frees of memory it never handed out, or handed out and already
// took back, are counted in InvalidFrees and not forwarded.
type CountingAllocator struct {
	inner Allocator

	mu     sync.Mutex
	values map[*Value]struct{}
	texts  map[*byte]int
	stats  AllocStats
}

// NewCountingAllocator wraps inner. A nil inner uses the heap.
func NewCountingAllocator(inner Allocator) *CountingAllocator {
	if inner == nil {
		inner = HeapAllocator{}
	}
	return &CountingAllocator{
		inner:  inner,
		values: make(map[*Value]struct{}),
		texts:  make(map[*byte]int),
	}
}

func (c *CountingAllocator) AllocValue() *Value {
	v := c.inner.AllocValue()
	if v == nil {
		return nil
	}
	c.mu.Lock()
	c.values[v] = struct{}{}
	c.stats.LiveValues++
	c.stats.TotalValues++
	c.mu.Unlock()
	return v
}

func (c *CountingAllocator) FreeValue(v *Value) {
	c.mu.Lock()
	if _, ok := c.values[v]; !ok {
		c.stats.InvalidFrees++
		c.mu.Unlock()
		return
	}
	delete(c.values, v)
	c.stats.LiveValues--
	c.mu.Unlock()
	c.inner.FreeValue(v)
}

func (c *CountingAllocator) AllocText(n int) []byte {
	b := c.inner.AllocText(n)
	if len(b) == 0 {
		return b
	}
	c.mu.Lock()
	c.texts[&b[0]] = len(b)
	c.stats.LiveBytes += int64(len(b))
	c.stats.TotalBytes += int64(len(b))
	c.mu.Unlock()
	return b
}

func (c *CountingAllocator) FreeText(b []byte) {
	if len(b) == 0 {
		return
	}
	c.mu.Lock()
	n, ok := c.texts[&b[0]]
	if !ok {
		c.stats.InvalidFrees++
		c.mu.Unlock()
		return
	}
	delete(c.texts, &b[0])
	c.stats.LiveBytes -= int64(n)
	c.mu.Unlock()
	c.inner.FreeText(b)
}

// Stats returns the current counters.
func (c *CountingAllocator) Stats() AllocStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// BudgetAllocator fails allocations once the outstanding total would exceed
// Limit bytes. Value nodes are accounted at their in-memory size.
type BudgetAllocator struct {
	inner Allocator
	limit int64

	mu   sync.Mutex
	used int64
}

// NewBudgetAllocator wraps inner with a byte budget. A nil inner uses the heap.
func NewBudgetAllocator(inner Allocator, limit int64) *BudgetAllocator {
	if inner == nil {
		inner = HeapAllocator{}
	}
	return &BudgetAllocator{inner: inner, limit: limit}
}

func (b *BudgetAllocator) reserve(n int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.used+n > b.limit {
		return false
	}
	b.used += n
	return true
}

func (b *BudgetAllocator) unreserve(n int64) {
	b.mu.Lock()
	b.used -= n
	b.mu.Unlock()
}

func (b *BudgetAllocator) AllocValue() *Value {
	if !b.reserve(valueSize) {
		return nil
	}
	v := b.inner.AllocValue()
	if v == nil {
		b.unreserve(valueSize)
	}
	return v
}

func (b *BudgetAllocator) FreeValue(v *Value) {
	b.unreserve(valueSize)
	b.inner.FreeValue(v)
}

func (b *BudgetAllocator) AllocText(n int) []byte {
	if !b.reserve(int64(n)) {
		return nil
	}
	buf := b.inner.AllocText(n)
	if buf == nil {
		b.unreserve(int64(n))
	}
	return buf
}

func (b *BudgetAllocator) FreeText(buf []byte) {
	b.unreserve(int64(len(buf)))
	b.inner.FreeText(buf)
}

// Used returns the bytes currently accounted against the budget.
func (b *BudgetAllocator) Used() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used
}
