package robinhash

import (
	"errors"
	"unsafe"
)

// ErasedMap is the type-erased, runtime-descriptor-driven surface over a
// RawMap. It operates on the identical in-memory layout a Map[K, V] uses,
// so an ErasedMap and a Map[K, V] can share one *RawMap and observe each
// other's writes (see ErasedViewOf).
type ErasedMap struct {
	raw     *RawMap
	info    *MapInfo
	initErr error
}

// NewErasedMap builds a fresh ErasedMap from raw key/value sizes,
// alignments and hash/equality function pointers, with no compile-time
// knowledge of the concrete K, V.
//
// If capacity > 0 and the up-front reservation fails, the failure is not
// discarded: it is returned by the first Insert/Add/Reserve call made
// against the ErasedMap, after which it falls back to its normal
// lazy-allocation behavior.
func NewErasedMap(keySize, keyAlign, valSize, valAlign uintptr, hasher HasherFunc, equals EqualsFunc, capacity uintptr, allocator Allocator) *ErasedMap {
	if allocator == nil {
		allocator = NewDefaultAllocator()
	}

	info := NewMapInfo(keySize, keyAlign, valSize, valAlign, hasher, equals)
	raw := NewRawMap(allocator)

	e := &ErasedMap{raw: raw, info: info}
	if capacity > 0 {
		e.initErr = Reserve(raw, info, capacity)
	}
	return e
}

// ErasedViewOf returns an ErasedMap that shares the same backing RawMap and
// MapInfo as m: mutations through either handle are visible through the
// other.
func ErasedViewOf[K comparable, V any](m *Map[K, V]) *ErasedMap {
	return &ErasedMap{raw: m.raw, info: m.info}
}

func (e *ErasedMap) takeInitErr() error {
	err := e.initErr
	e.initErr = nil
	return err
}

func (e *ErasedMap) Insert(keyPtr, valPtr unsafe.Pointer) (unsafe.Pointer, error) {
	addr, err := Insert(e.raw, e.info, keyPtr, valPtr)
	if e.initErr != nil {
		err = errors.Join(e.takeInitErr(), err)
	}
	return addr, err
}

func (e *ErasedMap) Add(keyPtr, valPtr unsafe.Pointer) error {
	err := Add(e.raw, e.info, keyPtr, valPtr)
	if e.initErr != nil {
		err = errors.Join(e.takeInitErr(), err)
	}
	return err
}

func (e *ErasedMap) Lookup(keyPtr unsafe.Pointer) (unsafe.Pointer, bool) {
	return Lookup(e.raw, e.info, keyPtr)
}

func (e *ErasedMap) Exists(keyPtr unsafe.Pointer) bool {
	return Exists(e.raw, e.info, keyPtr)
}

func (e *ErasedMap) Erase(keyPtr unsafe.Pointer) bool {
	return Erase(e.raw, e.info, keyPtr)
}

func (e *ErasedMap) Clear() {
	Clear(e.raw, e.info)
}

func (e *ErasedMap) Reserve(n uintptr) error {
	err := Reserve(e.raw, e.info, n)
	if e.initErr != nil {
		err = errors.Join(e.takeInitErr(), err)
	}
	return err
}

func (e *ErasedMap) Grow() error {
	return Grow(e.raw, e.info)
}

func (e *ErasedMap) Shrink() error {
	return Shrink(e.raw, e.info)
}

func (e *ErasedMap) Free() error {
	return Free(e.raw, e.info)
}

func (e *ErasedMap) Len() int {
	return int(e.raw.Len())
}

func (e *ErasedMap) Cap() int {
	return int(e.raw.Cap())
}

func (e *ErasedMap) Stats() Stats {
	return ComputeStats(e.raw, e.info)
}

func (e *ErasedMap) Raw() *RawMap {
	return e.raw
}

func (e *ErasedMap) Info() *MapInfo {
	return e.info
}
