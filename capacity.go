package robinhash

import (
	"fmt"
	"math/bits"
)

// loadFactorThreshold returns floor(cap * 75 / 100), the point at which len
// must not exceed before a grow is triggered.
func loadFactorThreshold(cap uintptr) uintptr {
	return cap * 75 / 100
}

// ceilLog2 returns the smallest log2Cap such that 1<<log2Cap >= n, with a
// floor of MinLog2Capacity.
func ceilLog2(n uintptr) uintptr {
	if n <= 1<<MinLog2Capacity {
		return MinLog2Capacity
	}
	l := uintptr(bits.Len64(uint64(n - 1)))
	if l < MinLog2Capacity {
		l = MinLog2Capacity
	}
	return l
}

// allocateRegion requests a fresh, cache-line-aligned region sized for
// log2Cap and zeroes its hash-word segment so every slot starts Empty.
func allocateRegion(m *RawMap, info *MapInfo, log2Cap uintptr) error {
	if log2Cap > log2Mask {
		return fmt.Errorf("robinhash: %w: log2 capacity %d exceeds 63", ErrOutOfMemory, log2Cap)
	}

	cap := uintptr(1) << log2Cap
	size := TotalSize(info, cap)

	ptr, err := m.allocator.Alloc(size, DefaultCacheLineSize)
	if err != nil {
		return fmt.Errorf("robinhash: %w: %w", ErrOutOfMemory, err)
	}
	if ptr == nil && size > 0 {
		return ErrOutOfMemory
	}
	if size > 0 {
		assertAligned(ptr, DefaultCacheLineSize)
	}

	m.setAllocation(ptr, log2Cap)

	for i := uintptr(0); i < cap; i++ {
		*m.hashSlot(info, i) = 0
	}

	return nil
}

// Allocate constructs a fresh RawMap with the given initial capacity,
// rounded up per ceilLog2.
func Allocate(info *MapInfo, requestedCap uintptr, allocator Allocator) (*RawMap, error) {
	m := NewRawMap(allocator)
	log2Cap := ceilLog2(requestedCap)
	if err := allocateRegion(m, info, log2Cap); err != nil {
		return nil, err
	}
	return m, nil
}

// ensureInitialized performs the lazy initial allocation at MinLog2Capacity
// the first time a mutating operation touches an empty RawMap.
func ensureInitialized(m *RawMap, info *MapInfo) error {
	if m.isAllocated() {
		return nil
	}
	return allocateRegion(m, info, MinLog2Capacity)
}

// migrate walks every valid slot of the old region and re-adds it to the
// freshly allocated new region using its stored hash (never rehashing),
// then frees the old region. Used by Grow, Shrink and Reserve alike.
func migrate(m *RawMap, info *MapInfo, newLog2Cap uintptr) error {
	oldBase := m.Base()
	oldCap := m.Cap()
	oldData := m.data
	oldAlloc := m.allocator
	oldLen := m.len

	newMap := &RawMap{allocator: m.allocator}
	if err := allocateRegion(newMap, info, newLog2Cap); err != nil {
		return err
	}

	old := &RawMap{data: oldData, allocator: oldAlloc}
	for i := uintptr(0); i < oldCap; i++ {
		h := *old.hashSlot(info, i)
		if !IsValid(h) {
			continue
		}
		keyPtr := old.keySlot(info, i)
		valPtr := old.valueSlot(info, i)
		addInto(newMap, info, h, keyPtr, valPtr)
	}
	newMap.len = oldLen

	oldSize := TotalSize(info, oldCap)
	oldAlloc.Free(oldBase, oldSize)

	m.data = newMap.data
	m.len = newMap.len

	return nil
}

// Grow reallocates to the next capacity (log2Cap+1) and re-probes every
// live entry. Called automatically by Insert/Add when the load factor
// threshold would be crossed.
func Grow(m *RawMap, info *MapInfo) error {
	if err := ensureInitialized(m, info); err != nil {
		return err
	}
	newLog2 := m.Log2Cap() + 1
	if newLog2 > log2Mask {
		return ErrCapacityOverflow
	}
	return migrate(m, info, newLog2)
}

// Reserve grows the table so its capacity is at least n. If the current
// capacity already covers n, it is a no-op and `m.data` is left unchanged.
//
// If the container has never been allocated, the initial allocation is made
// at MinLog2Capacity regardless of n rather than at ceilLog2(n). Callers
// that want a large up-front capacity on a brand-new map should allocate
// first (Insert once, or call Reserve again after the lazy allocation has
// happened) rather than relying on the very first Reserve call to size it.
func Reserve(m *RawMap, info *MapInfo, n uintptr) error {
	log2New := ceilLog2(n)

	if m.isAllocated() {
		if log2New <= log2Mask && m.Cap() >= uintptr(1)<<log2New {
			return nil
		}
		return migrate(m, info, log2New)
	}

	return allocateRegion(m, info, MinLog2Capacity)
}

// Shrink halves the capacity if doing so would keep len under the new
// threshold. Refusing (a no-op success) is the defined behavior when len
// is too large to shrink into.
func Shrink(m *RawMap, info *MapInfo) error {
	if !m.isAllocated() {
		return nil
	}

	newCap := m.Cap() / 2
	if newCap < 1<<MinLog2Capacity {
		return nil
	}
	if m.len >= loadFactorThreshold(newCap) {
		return nil
	}

	return migrate(m, info, m.Log2Cap()-1)
}

// Free releases the current region, if any, back to the allocator.
func Free(m *RawMap, info *MapInfo) error {
	if !m.isAllocated() {
		return nil
	}
	size := TotalSize(info, m.Cap())
	m.allocator.Free(m.Base(), size)
	m.data = 0
	m.len = 0
	return nil
}

// Clear zeroes the hash-word array and resets len to zero. Keys and values
// are left in place as dead data.
func Clear(m *RawMap, info *MapInfo) {
	if !m.isAllocated() {
		return
	}
	cap := m.Cap()
	for i := uintptr(0); i < cap; i++ {
		*m.hashSlot(info, i) = 0
	}
	m.len = 0
}
