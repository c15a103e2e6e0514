package robinhash

import (
	"fmt"
	"unsafe"
)

// Allocator is the abstract allocation capability a RawMap is built with.
// Alloc must return memory aligned to at least `align` bytes; Free is
// handed back the exact size that was requested from Alloc so size-
// tracking allocators can reuse their own bookkeeping.
type Allocator interface {
	Alloc(size, align uintptr) (unsafe.Pointer, error)
	Free(ptr unsafe.Pointer, size uintptr)
}

// DefaultAllocator is a heap-backed Allocator. Go's runtime allocator gives
// no alignment control, so DefaultAllocator over-allocates by `align` extra
// bytes and slides the returned pointer forward to the next aligned
// address, keeping the original backing slice alive via a side table keyed
// by the aligned pointer so Free can recover it.
type DefaultAllocator struct {
	live map[unsafe.Pointer][]byte
}

// NewDefaultAllocator returns a ready-to-use heap-backed Allocator.
func NewDefaultAllocator() *DefaultAllocator {
	return &DefaultAllocator{live: make(map[unsafe.Pointer][]byte)}
}

func (a *DefaultAllocator) Alloc(size, align uintptr) (unsafe.Pointer, error) {
	if size == 0 {
		return nil, nil
	}
	if !isPowerOfTwo(align) {
		align = DefaultCacheLineSize
	}

	buf := make([]byte, size+align)
	base := uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
	aligned := roundUp(base, align)
	ptr := unsafe.Pointer(aligned)

	if a.live == nil {
		a.live = make(map[unsafe.Pointer][]byte)
	}
	a.live[ptr] = buf

	return ptr, nil
}

func (a *DefaultAllocator) Free(ptr unsafe.Pointer, size uintptr) {
	if ptr == nil {
		return
	}
	delete(a.live, ptr)
}

// assertAligned panics if ptr is not aligned to align bytes. An allocator
// that breaks its alignment contract is a programming error, not a
// recoverable condition.
func assertAligned(ptr unsafe.Pointer, align uintptr) {
	if uintptr(ptr)%align != 0 {
		panic(fmt.Sprintf("robinhash: allocator returned misaligned pointer %p (want align %d)", ptr, align))
	}
}
