package robinhash

import "unsafe"

// HasherFunc computes a slot hash for the key at keyPtr, mixed with seed.
// Implementations MUST mask off the top bit and coerce a zero result to 1 —
// every hasher composed into a MapInfo must honor that contract or the
// empty/tombstone tags collide with real data.
type HasherFunc func(keyPtr unsafe.Pointer, seed uint64) Hash

// EqualsFunc reports whether the keys at a and b are equal.
type EqualsFunc func(a, b unsafe.Pointer) bool

// MapInfo is the immutable runtime descriptor that lets the probing engine,
// indexer and hash-slot protocol operate without static knowledge of K or
// V. The typed API (typedmap.go) builds one at construction time from the
// compiler's knowledge of K and V; the type-erased API (erasedmap.go)
// builds one from caller-supplied sizes/alignments/function pointers.
type MapInfo struct {
	Key   CellInfo
	Value CellInfo
	Hash  CellInfo // layout descriptor for the Hash word array

	Hasher HasherFunc
	Equals EqualsFunc
}

// NewMapInfo builds a MapInfo from key/value sizes and alignments plus the
// hash/equality functions that operate on them. Both the typed and erased
// constructors funnel through here so the two paths can never diverge in
// how they compute cell packing.
func NewMapInfo(keySize, keyAlign, valSize, valAlign uintptr, hasher HasherFunc, equals EqualsFunc) *MapInfo {
	return &MapInfo{
		Key:    NewCellInfo(keySize, keyAlign),
		Value:  NewCellInfo(valSize, valAlign),
		Hash:   NewCellInfo(unsafe.Sizeof(Hash(0)), unsafe.Alignof(Hash(0))),
		Hasher: hasher,
		Equals: equals,
	}
}
