package robinhash

import (
	"errors"
	"hash/maphash"
	"unsafe"
)

// HashFunc is the typed-API convenience hash function shape: a plain
// func(K) uint64 hashing an arbitrary comparable key, backed by
// hash/maphash by default.
type HashFunc[K comparable] func(K) uint64

// Option configures a Map[K, V] at construction time.
type Option[K comparable, V any] func(*mapConfig[K, V])

type mapConfig[K comparable, V any] struct {
	hashFunc  HashFunc[K]
	allocator Allocator
}

// WithHashFunc overrides the default maphash-backed hash function.
func WithHashFunc[K comparable, V any](f HashFunc[K]) Option[K, V] {
	return func(c *mapConfig[K, V]) {
		c.hashFunc = f
	}
}

// WithAllocator overrides the default heap-backed Allocator.
func WithAllocator[K comparable, V any](a Allocator) Option[K, V] {
	return func(c *mapConfig[K, V]) {
		c.allocator = a
	}
}

// Map is the monomorphic, compile-time-typed surface over a RawMap. It
// inlines nothing itself — the descriptor's Hasher/Equals closures still
// dispatch through function pointers — but K and V are statically known to
// every caller.
type Map[K comparable, V any] struct {
	raw     *RawMap
	info    *MapInfo
	initErr error
}

// New constructs a Map. A capacity of 0 defers allocation to the first
// Set call. Any capacity > 0 allocates up front through Reserve, which on a
// never-allocated map always allocates 1<<MinLog2Capacity slots, whatever
// capacity was asked for; a larger size takes a later Reserve call.
//
// If capacity > 0 and the up-front reservation fails (e.g. the allocator
// rejects the request), the failure is not discarded: it is returned by
// the first Set/Reserve call made against the Map, after which the Map
// falls back to its normal lazy-allocation behavior.
func New[K comparable, V any](capacity int, opts ...Option[K, V]) *Map[K, V] {
	cfg := mapConfig[K, V]{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.hashFunc == nil {
		seed := maphash.MakeSeed()
		cfg.hashFunc = func(k K) uint64 {
			return maphash.Comparable(seed, k)
		}
	}
	if cfg.allocator == nil {
		cfg.allocator = NewDefaultAllocator()
	}

	var zeroK K
	var zeroV V

	hasher := func(keyPtr unsafe.Pointer, seed uint64) Hash {
		k := *(*K)(keyPtr)
		return finalize(cfg.hashFunc(k) ^ seed)
	}
	equals := func(a, b unsafe.Pointer) bool {
		return *(*K)(a) == *(*K)(b)
	}

	info := NewMapInfo(unsafe.Sizeof(zeroK), unsafe.Alignof(zeroK), unsafe.Sizeof(zeroV), unsafe.Alignof(zeroV), hasher, equals)

	m := &Map[K, V]{
		raw:  NewRawMap(cfg.allocator),
		info: info,
	}

	if capacity > 0 {
		m.initErr = Reserve(m.raw, m.info, uintptr(capacity))
	}

	return m
}

// takeInitErr returns and clears any reservation failure recorded by New,
// so it surfaces exactly once through the first mutating call made after
// construction.
func (m *Map[K, V]) takeInitErr() error {
	err := m.initErr
	m.initErr = nil
	return err
}

// Get returns the value stored for key, and whether it was present.
func (m *Map[K, V]) Get(key K) (V, bool) {
	addr, ok := Lookup(m.raw, m.info, unsafe.Pointer(&key))
	if !ok {
		var zero V
		return zero, false
	}
	return *(*V)(addr), true
}

// Set inserts or updates key with value. If New's initial reservation had
// failed, that error is joined into the result of this first call.
func (m *Map[K, V]) Set(key K, value V) error {
	_, err := Insert(m.raw, m.info, unsafe.Pointer(&key), unsafe.Pointer(&value))
	if m.initErr != nil {
		err = errors.Join(m.takeInitErr(), err)
	}
	return err
}

// Delete removes key, reporting whether it was present.
func (m *Map[K, V]) Delete(key K) bool {
	return Erase(m.raw, m.info, unsafe.Pointer(&key))
}

// Has reports whether key is present.
func (m *Map[K, V]) Has(key K) bool {
	return Exists(m.raw, m.info, unsafe.Pointer(&key))
}

// Clear removes every entry without releasing the backing allocation.
func (m *Map[K, V]) Clear() {
	Clear(m.raw, m.info)
}

// Reserve ensures capacity for at least n entries. If New's initial
// reservation had failed, that error is joined into the result of this
// first call.
func (m *Map[K, V]) Reserve(n int) error {
	err := Reserve(m.raw, m.info, uintptr(n))
	if m.initErr != nil {
		err = errors.Join(m.takeInitErr(), err)
	}
	return err
}

// Free releases the backing allocation. The Map must not be used
// afterwards except through another call to Reserve/Set, which reallocates.
func (m *Map[K, V]) Free() error {
	return Free(m.raw, m.info)
}

// Len returns the number of live entries.
func (m *Map[K, V]) Len() int {
	return int(m.raw.Len())
}

// Cap returns the current capacity in slots.
func (m *Map[K, V]) Cap() int {
	return int(m.raw.Cap())
}

// Stats returns an on-demand occupancy snapshot.
func (m *Map[K, V]) Stats() Stats {
	return ComputeStats(m.raw, m.info)
}

// Raw exposes the underlying RawMap, letting a caller build an ErasedMap
// over the exact same storage as this Map.
func (m *Map[K, V]) Raw() *RawMap {
	return m.raw
}

// Info exposes the underlying MapInfo for the same purpose as Raw.
func (m *Map[K, V]) Info() *MapInfo {
	return m.info
}
