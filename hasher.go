package robinhash

import "unsafe"

// FNV-1a 64-bit constants.
const (
	fnvOffsetBasis64 uint64 = 0xcbf29ce484222325
	fnvPrime64       uint64 = 0x100000001b3
)

func fnvMix(h uint64, b byte) uint64 {
	return (h ^ uint64(b)) * fnvPrime64
}

// finalize applies the post-processing every hasher composed into a MapInfo
// must honor: mask off the top bit (reserved for the tombstone tag) and
// coerce a zero result to 1 (reserved for empty).
func finalize(h uint64) Hash {
	h &^= uint64(hashTopBit)
	if h == 0 {
		h = 1
	}
	return Hash(h)
}

// HashBytes is the variable-length byte-slice FNV-1a variant.
func HashBytes(seed uint64, data []byte) Hash {
	h := fnvOffsetBasis64 + seed
	for _, b := range data {
		h = fnvMix(h, b)
	}
	return finalize(h)
}

// HashString is the length-prefixed string FNV-1a variant: the string's
// byte length is mixed in (little-endian, one byte at a time) before the
// string's own bytes, so two strings that are prefixes of one another
// never collide purely on content.
func HashString(seed uint64, s string) Hash {
	h := fnvOffsetBasis64 + seed
	n := uint64(len(s))
	h = fnvMix(h, byte(n))
	h = fnvMix(h, byte(n>>8))
	h = fnvMix(h, byte(n>>16))
	h = fnvMix(h, byte(n>>24))
	h = fnvMix(h, byte(n>>32))
	h = fnvMix(h, byte(n>>40))
	h = fnvMix(h, byte(n>>48))
	h = fnvMix(h, byte(n>>56))
	for i := 0; i < len(s); i++ {
		h = fnvMix(h, s[i])
	}
	return finalize(h)
}

// HashCString is the NUL-terminated variant: it walks bytes starting at p
// until it reads a zero byte. The caller must guarantee p points at a
// NUL-terminated byte sequence.
func HashCString(seed uint64, p unsafe.Pointer) Hash {
	h := fnvOffsetBasis64 + seed
	for i := uintptr(0); ; i++ {
		b := *(*byte)(unsafe.Add(p, i))
		if b == 0 {
			break
		}
		h = fnvMix(h, b)
	}
	return finalize(h)
}

// Fixed-length unrolled FNV-1a variants for input lengths 1..16. Each reads
// directly from p via unsafe, one mix per byte, with no loop so the
// compiler can inline and schedule every mix independently.

func HashFixed1(seed uint64, p unsafe.Pointer) Hash {
	b := (*[1]byte)(p)
	h := fnvOffsetBasis64 + seed
	h = fnvMix(h, b[0])
	return finalize(h)
}

func HashFixed2(seed uint64, p unsafe.Pointer) Hash {
	b := (*[2]byte)(p)
	h := fnvOffsetBasis64 + seed
	h = fnvMix(h, b[0])
	h = fnvMix(h, b[1])
	return finalize(h)
}

func HashFixed3(seed uint64, p unsafe.Pointer) Hash {
	b := (*[3]byte)(p)
	h := fnvOffsetBasis64 + seed
	h = fnvMix(h, b[0])
	h = fnvMix(h, b[1])
	h = fnvMix(h, b[2])
	return finalize(h)
}

func HashFixed4(seed uint64, p unsafe.Pointer) Hash {
	b := (*[4]byte)(p)
	h := fnvOffsetBasis64 + seed
	h = fnvMix(h, b[0])
	h = fnvMix(h, b[1])
	h = fnvMix(h, b[2])
	h = fnvMix(h, b[3])
	return finalize(h)
}

func HashFixed5(seed uint64, p unsafe.Pointer) Hash {
	b := (*[5]byte)(p)
	h := fnvOffsetBasis64 + seed
	h = fnvMix(h, b[0])
	h = fnvMix(h, b[1])
	h = fnvMix(h, b[2])
	h = fnvMix(h, b[3])
	h = fnvMix(h, b[4])
	return finalize(h)
}

func HashFixed6(seed uint64, p unsafe.Pointer) Hash {
	b := (*[6]byte)(p)
	h := fnvOffsetBasis64 + seed
	h = fnvMix(h, b[0])
	h = fnvMix(h, b[1])
	h = fnvMix(h, b[2])
	h = fnvMix(h, b[3])
	h = fnvMix(h, b[4])
	h = fnvMix(h, b[5])
	return finalize(h)
}

func HashFixed7(seed uint64, p unsafe.Pointer) Hash {
	b := (*[7]byte)(p)
	h := fnvOffsetBasis64 + seed
	h = fnvMix(h, b[0])
	h = fnvMix(h, b[1])
	h = fnvMix(h, b[2])
	h = fnvMix(h, b[3])
	h = fnvMix(h, b[4])
	h = fnvMix(h, b[5])
	h = fnvMix(h, b[6])
	return finalize(h)
}

func HashFixed8(seed uint64, p unsafe.Pointer) Hash {
	b := (*[8]byte)(p)
	h := fnvOffsetBasis64 + seed
	h = fnvMix(h, b[0])
	h = fnvMix(h, b[1])
	h = fnvMix(h, b[2])
	h = fnvMix(h, b[3])
	h = fnvMix(h, b[4])
	h = fnvMix(h, b[5])
	h = fnvMix(h, b[6])
	h = fnvMix(h, b[7])
	return finalize(h)
}

func HashFixed9(seed uint64, p unsafe.Pointer) Hash {
	b := (*[9]byte)(p)
	h := fnvOffsetBasis64 + seed
	h = fnvMix(h, b[0])
	h = fnvMix(h, b[1])
	h = fnvMix(h, b[2])
	h = fnvMix(h, b[3])
	h = fnvMix(h, b[4])
	h = fnvMix(h, b[5])
	h = fnvMix(h, b[6])
	h = fnvMix(h, b[7])
	h = fnvMix(h, b[8])
	return finalize(h)
}

func HashFixed10(seed uint64, p unsafe.Pointer) Hash {
	b := (*[10]byte)(p)
	h := fnvOffsetBasis64 + seed
	h = fnvMix(h, b[0])
	h = fnvMix(h, b[1])
	h = fnvMix(h, b[2])
	h = fnvMix(h, b[3])
	h = fnvMix(h, b[4])
	h = fnvMix(h, b[5])
	h = fnvMix(h, b[6])
	h = fnvMix(h, b[7])
	h = fnvMix(h, b[8])
	h = fnvMix(h, b[9])
	return finalize(h)
}

func HashFixed11(seed uint64, p unsafe.Pointer) Hash {
	b := (*[11]byte)(p)
	h := fnvOffsetBasis64 + seed
	h = fnvMix(h, b[0])
	h = fnvMix(h, b[1])
	h = fnvMix(h, b[2])
	h = fnvMix(h, b[3])
	h = fnvMix(h, b[4])
	h = fnvMix(h, b[5])
	h = fnvMix(h, b[6])
	h = fnvMix(h, b[7])
	h = fnvMix(h, b[8])
	h = fnvMix(h, b[9])
	h = fnvMix(h, b[10])
	return finalize(h)
}

func HashFixed12(seed uint64, p unsafe.Pointer) Hash {
	b := (*[12]byte)(p)
	h := fnvOffsetBasis64 + seed
	h = fnvMix(h, b[0])
	h = fnvMix(h, b[1])
	h = fnvMix(h, b[2])
	h = fnvMix(h, b[3])
	h = fnvMix(h, b[4])
	h = fnvMix(h, b[5])
	h = fnvMix(h, b[6])
	h = fnvMix(h, b[7])
	h = fnvMix(h, b[8])
	h = fnvMix(h, b[9])
	h = fnvMix(h, b[10])
	h = fnvMix(h, b[11])
	return finalize(h)
}

func HashFixed13(seed uint64, p unsafe.Pointer) Hash {
	b := (*[13]byte)(p)
	h := fnvOffsetBasis64 + seed
	h = fnvMix(h, b[0])
	h = fnvMix(h, b[1])
	h = fnvMix(h, b[2])
	h = fnvMix(h, b[3])
	h = fnvMix(h, b[4])
	h = fnvMix(h, b[5])
	h = fnvMix(h, b[6])
	h = fnvMix(h, b[7])
	h = fnvMix(h, b[8])
	h = fnvMix(h, b[9])
	h = fnvMix(h, b[10])
	h = fnvMix(h, b[11])
	h = fnvMix(h, b[12])
	return finalize(h)
}

func HashFixed14(seed uint64, p unsafe.Pointer) Hash {
	b := (*[14]byte)(p)
	h := fnvOffsetBasis64 + seed
	h = fnvMix(h, b[0])
	h = fnvMix(h, b[1])
	h = fnvMix(h, b[2])
	h = fnvMix(h, b[3])
	h = fnvMix(h, b[4])
	h = fnvMix(h, b[5])
	h = fnvMix(h, b[6])
	h = fnvMix(h, b[7])
	h = fnvMix(h, b[8])
	h = fnvMix(h, b[9])
	h = fnvMix(h, b[10])
	h = fnvMix(h, b[11])
	h = fnvMix(h, b[12])
	h = fnvMix(h, b[13])
	return finalize(h)
}

func HashFixed15(seed uint64, p unsafe.Pointer) Hash {
	b := (*[15]byte)(p)
	h := fnvOffsetBasis64 + seed
	h = fnvMix(h, b[0])
	h = fnvMix(h, b[1])
	h = fnvMix(h, b[2])
	h = fnvMix(h, b[3])
	h = fnvMix(h, b[4])
	h = fnvMix(h, b[5])
	h = fnvMix(h, b[6])
	h = fnvMix(h, b[7])
	h = fnvMix(h, b[8])
	h = fnvMix(h, b[9])
	h = fnvMix(h, b[10])
	h = fnvMix(h, b[11])
	h = fnvMix(h, b[12])
	h = fnvMix(h, b[13])
	h = fnvMix(h, b[14])
	return finalize(h)
}

func HashFixed16(seed uint64, p unsafe.Pointer) Hash {
	b := (*[16]byte)(p)
	h := fnvOffsetBasis64 + seed
	h = fnvMix(h, b[0])
	h = fnvMix(h, b[1])
	h = fnvMix(h, b[2])
	h = fnvMix(h, b[3])
	h = fnvMix(h, b[4])
	h = fnvMix(h, b[5])
	h = fnvMix(h, b[6])
	h = fnvMix(h, b[7])
	h = fnvMix(h, b[8])
	h = fnvMix(h, b[9])
	h = fnvMix(h, b[10])
	h = fnvMix(h, b[11])
	h = fnvMix(h, b[12])
	h = fnvMix(h, b[13])
	h = fnvMix(h, b[14])
	h = fnvMix(h, b[15])
	return finalize(h)
}

var fixedHashers = [17]func(seed uint64, p unsafe.Pointer) Hash{
	nil,
	HashFixed1, HashFixed2, HashFixed3, HashFixed4,
	HashFixed5, HashFixed6, HashFixed7, HashFixed8,
	HashFixed9, HashFixed10, HashFixed11, HashFixed12,
	HashFixed13, HashFixed14, HashFixed15, HashFixed16,
}

// DefaultByteHasher returns the default byte-wise hasher for a fixed-size
// key of the given size: one of the unrolled HashFixedN variants for
// size in [1, 16], or the variable-length HashBytes variant otherwise.
func DefaultByteHasher(size uintptr) HasherFunc {
	if size >= 1 && size <= 16 {
		fn := fixedHashers[size]
		return func(keyPtr unsafe.Pointer, seed uint64) Hash {
			return fn(seed, keyPtr)
		}
	}
	return func(keyPtr unsafe.Pointer, seed uint64) Hash {
		return HashBytes(seed, unsafe.Slice((*byte)(keyPtr), size))
	}
}
