package robinhash

import "unsafe"

const log2Mask = 63

// RawMap is the mutable, type-erased container header shared by both the
// typed and type-erased APIs: a tagged base pointer, the live-entry count,
// and the allocator capability.
type RawMap struct {
	data      uintptr // 0 (unallocated), or base | log2Capacity
	len       uintptr
	allocator Allocator
}

// NewRawMap returns a zero-initialized container optionally bound to a
// caller-supplied allocator. It allocates nothing; the first Insert/Add or
// Reserve call triggers the lazy initial allocation.
func NewRawMap(allocator Allocator) *RawMap {
	if allocator == nil {
		allocator = NewDefaultAllocator()
	}
	return &RawMap{allocator: allocator}
}

// Log2Cap returns the log2 of the current capacity, or 0 if unallocated.
func (m *RawMap) Log2Cap() uintptr {
	return m.data & log2Mask
}

// Cap returns the current capacity in slots, or 0 if unallocated.
func (m *RawMap) Cap() uintptr {
	if m.data == 0 {
		return 0
	}
	return uintptr(1) << m.Log2Cap()
}

// Base returns the base address of the current allocation, or nil if
// unallocated.
func (m *RawMap) Base() unsafe.Pointer {
	if m.data == 0 {
		return nil
	}
	return unsafe.Pointer(m.data &^ log2Mask)
}

// Len returns the number of valid (non-empty, non-tombstone) entries.
func (m *RawMap) Len() uintptr {
	return m.len
}

func (m *RawMap) setAllocation(base unsafe.Pointer, log2Cap uintptr) {
	m.data = uintptr(base) | log2Cap
}

func (m *RawMap) isAllocated() bool {
	return m.data != 0
}

// layout describes the byte offsets of each segment within a RawMap's
// current allocation: C key slots, C value slots, C hash words, 2 scratch
// key slots, 2 scratch value slots, each segment rounded up to a
// cache-line multiple before the next one starts.
type layout struct {
	keysOff     uintptr
	valuesOff   uintptr
	hashesOff   uintptr
	scratchKOff uintptr
	scratchVOff uintptr
	totalSize   uintptr
}

func computeLayout(info *MapInfo, cap uintptr) layout {
	var l layout

	keysSize := roundUp(info.Key.sizeFor(cap), DefaultCacheLineSize)
	l.keysOff = 0

	valuesSize := roundUp(info.Value.sizeFor(cap), DefaultCacheLineSize)
	l.valuesOff = l.keysOff + keysSize

	hashesSize := roundUp(info.Hash.sizeFor(cap), DefaultCacheLineSize)
	l.hashesOff = l.valuesOff + valuesSize

	scratchKSize := roundUp(info.Key.sizeFor(2), DefaultCacheLineSize)
	l.scratchKOff = l.hashesOff + hashesSize

	scratchVSize := roundUp(info.Value.sizeFor(2), DefaultCacheLineSize)
	l.scratchVOff = l.scratchKOff + scratchKSize

	l.totalSize = l.scratchVOff + scratchVSize

	return l
}

// TotalSize returns the number of bytes a RawMap allocation for the given
// descriptor and capacity occupies.
func TotalSize(info *MapInfo, cap uintptr) uintptr {
	return computeLayout(info, cap).totalSize
}

func (m *RawMap) keySlot(info *MapInfo, i uintptr) unsafe.Pointer {
	l := computeLayout(info, m.Cap())
	return unsafe.Add(m.Base(), l.keysOff+info.Key.offset(i))
}

func (m *RawMap) valueSlot(info *MapInfo, i uintptr) unsafe.Pointer {
	l := computeLayout(info, m.Cap())
	return unsafe.Add(m.Base(), l.valuesOff+info.Value.offset(i))
}

func (m *RawMap) hashSlot(info *MapInfo, i uintptr) *Hash {
	l := computeLayout(info, m.Cap())
	return (*Hash)(unsafe.Add(m.Base(), l.hashesOff+info.Hash.offset(i)))
}

func (m *RawMap) scratchKey(info *MapInfo, i uintptr) unsafe.Pointer {
	l := computeLayout(info, m.Cap())
	return unsafe.Add(m.Base(), l.scratchKOff+info.Key.offset(i))
}

func (m *RawMap) scratchValue(info *MapInfo, i uintptr) unsafe.Pointer {
	l := computeLayout(info, m.Cap())
	return unsafe.Add(m.Base(), l.scratchVOff+info.Value.offset(i))
}

// copyBytes performs the non-overlapping bytewise copy every key/value
// transfer into or out of table storage uses.
func copyBytes(dst, src unsafe.Pointer, size uintptr) {
	if size == 0 {
		return
	}
	dstSlice := unsafe.Slice((*byte)(dst), size)
	srcSlice := unsafe.Slice((*byte)(src), size)
	copy(dstSlice, srcSlice)
}
