package robinhash

import (
	"math/rand"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestInsertLookup_RoundTrip(t *testing.T) {
	m, info := newIntMap(t)

	for i := 0; i < 500; i++ {
		_, err := Insert(m, info, unsafe.Pointer(&i), unsafe.Pointer(&i))
		require.NoError(t, err)
	}

	for i := 0; i < 500; i++ {
		addr, ok := Lookup(m, info, unsafe.Pointer(&i))
		require.True(t, ok)
		require.Equal(t, i, *(*int)(addr))
	}
}

func TestInsert_DuplicateUpdatesInPlace(t *testing.T) {
	m, info := newIntMap(t)

	k, v1, v2 := 7, 100, 200

	_, err := Insert(m, info, unsafe.Pointer(&k), unsafe.Pointer(&v1))
	require.NoError(t, err)
	require.Equal(t, uintptr(1), m.Len())

	_, err = Insert(m, info, unsafe.Pointer(&k), unsafe.Pointer(&v2))
	require.NoError(t, err)
	require.Equal(t, uintptr(1), m.Len(), "len must increment only on the first insert of a key")

	addr, ok := Lookup(m, info, unsafe.Pointer(&k))
	require.True(t, ok)
	require.Equal(t, v2, *(*int)(addr))
}

func TestLookup_OnEmptyContainerMisses(t *testing.T) {
	var m RawMap
	m.allocator = NewDefaultAllocator()
	info := intInfo()

	k := 1
	_, ok := Lookup(&m, info, unsafe.Pointer(&k))
	require.False(t, ok)
}

func TestErase_MissingKeyReturnsFalse(t *testing.T) {
	m, info := newIntMap(t)
	k := 1
	require.False(t, Erase(m, info, unsafe.Pointer(&k)))
}

func TestErase_ThenLookupMisses(t *testing.T) {
	m, info := newIntMap(t)
	k, v := 9, 9

	_, err := Insert(m, info, unsafe.Pointer(&k), unsafe.Pointer(&v))
	require.NoError(t, err)

	require.True(t, Erase(m, info, unsafe.Pointer(&k)))
	_, ok := Lookup(m, info, unsafe.Pointer(&k))
	require.False(t, ok)

	require.False(t, Erase(m, info, unsafe.Pointer(&k)), "erasing twice must return false")
}

// collidingInfo returns a MapInfo whose hasher always returns the same
// desired slot (1), forcing every key into the same probe chain.
func collidingInfo() *MapInfo {
	hasher := func(keyPtr unsafe.Pointer, seed uint64) Hash {
		return finalize(1 ^ seed)
	}
	equals := func(a, b unsafe.Pointer) bool {
		return *(*int)(a) == *(*int)(b)
	}
	return NewMapInfo(unsafe.Sizeof(int(0)), unsafe.Alignof(int(0)), unsafe.Sizeof(int(0)), unsafe.Alignof(int(0)), hasher, equals)
}

func TestInsert_TombstoneProbeChainSurvivesDeletion(t *testing.T) {
	m := NewRawMap(NewDefaultAllocator())
	info := collidingInfo()

	a, b, c := 1, 2, 3
	_, err := Insert(m, info, unsafe.Pointer(&a), unsafe.Pointer(&a))
	require.NoError(t, err)
	_, err = Insert(m, info, unsafe.Pointer(&b), unsafe.Pointer(&b))
	require.NoError(t, err)
	_, err = Insert(m, info, unsafe.Pointer(&c), unsafe.Pointer(&c))
	require.NoError(t, err)

	require.True(t, Erase(m, info, unsafe.Pointer(&b)))

	addr, ok := Lookup(m, info, unsafe.Pointer(&c))
	require.True(t, ok, "probe chain broken: could not find 'c' after deleting the bridge 'b'")
	require.Equal(t, 3, *(*int)(addr))
}

func TestInsert_AfterEraseOfCollidingKey(t *testing.T) {
	m := NewRawMap(NewDefaultAllocator())
	info := collidingInfo()

	a, b := 1, 2
	_, err := Insert(m, info, unsafe.Pointer(&a), unsafe.Pointer(&a))
	require.NoError(t, err)
	require.True(t, Erase(m, info, unsafe.Pointer(&a)))
	require.Zero(t, m.Len())

	_, err = Insert(m, info, unsafe.Pointer(&b), unsafe.Pointer(&b))
	require.NoError(t, err)
	require.Equal(t, uintptr(1), m.Len())

	addr, ok := Lookup(m, info, unsafe.Pointer(&b))
	require.True(t, ok)
	require.Equal(t, 2, *(*int)(addr))
}

func TestScenario_EraseEvensThenReinsert(t *testing.T) {
	m, info := newIntMap(t)

	for i := 0; i < 1000; i++ {
		_, err := Insert(m, info, unsafe.Pointer(&i), unsafe.Pointer(&i))
		require.NoError(t, err)
	}
	require.Equal(t, uintptr(1000), m.Len())

	for i := 0; i < 1000; i += 2 {
		require.True(t, Erase(m, info, unsafe.Pointer(&i)))
	}
	require.Equal(t, uintptr(500), m.Len())

	for i := 0; i < 1000; i++ {
		_, ok := Lookup(m, info, unsafe.Pointer(&i))
		if i%2 == 0 {
			require.False(t, ok)
		} else {
			require.True(t, ok)
		}
	}

	for i := 0; i < 1000; i += 2 {
		_, err := Insert(m, info, unsafe.Pointer(&i), unsafe.Pointer(&i))
		require.NoError(t, err)
	}
	require.Equal(t, uintptr(1000), m.Len())

	for i := 0; i < 1000; i++ {
		addr, ok := Lookup(m, info, unsafe.Pointer(&i))
		require.True(t, ok)
		require.Equal(t, i, *(*int)(addr))
	}
}

// k3 is a 3-byte key used to check that a displaced key/value pair during a
// Robin Hood swap is copied with its OWN descriptor, not the other type's.
// The key is 3 bytes and the value is 8, so mixing up the descriptors would
// read/write the wrong number of bytes and corrupt the migrated entry.
type k3 [3]byte

func TestInsert_SwapUsesOwnDescriptors(t *testing.T) {
	hasher := func(keyPtr unsafe.Pointer, seed uint64) Hash {
		k := *(*k3)(keyPtr)
		return finalize(1 ^ seed ^ uint64(k[0]))
	}
	equals := func(a, b unsafe.Pointer) bool {
		return *(*k3)(a) == *(*k3)(b)
	}
	info := NewMapInfo(unsafe.Sizeof(k3{}), 1, unsafe.Sizeof(uint64(0)), unsafe.Alignof(uint64(0)), hasher, equals)
	m := NewRawMap(NewDefaultAllocator())

	// The first key (k[0]==3) hashes to desired slot 2 and sits there at
	// probe distance 0. Every later key (k[0]==0) hashes to desired slot 1,
	// so each one from the second on reaches that entry with a longer probe
	// distance, swaps into its slot and carries it one slot further along.
	keys := []k3{{3, 1, 2}, {0, 3, 4}, {0, 5, 6}, {0, 7, 8}, {0, 9, 10}}
	for i, k := range keys {
		v := uint64(1000 + i)
		_, err := Insert(m, info, unsafe.Pointer(&k), unsafe.Pointer(&v))
		require.NoError(t, err)
	}

	for i, k := range keys {
		addr, ok := Lookup(m, info, unsafe.Pointer(&k))
		require.True(t, ok)
		require.Equal(t, uint64(1000+i), *(*uint64)(addr))
	}
}

func TestInsert_RandomizedFuzzAgainstGoMap(t *testing.T) {
	m, info := newIntMap(t)
	reference := make(map[int]int)

	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 5000; i++ {
		k := rng.Intn(300)
		switch rng.Intn(3) {
		case 0, 1:
			v := rng.Int()
			_, err := Insert(m, info, unsafe.Pointer(&k), unsafe.Pointer(&v))
			require.NoError(t, err)
			reference[k] = v
		case 2:
			Erase(m, info, unsafe.Pointer(&k))
			delete(reference, k)
		}
	}

	require.Equal(t, uintptr(len(reference)), m.Len())
	for k, v := range reference {
		addr, ok := Lookup(m, info, unsafe.Pointer(&k))
		require.True(t, ok)
		require.Equal(t, v, *(*int)(addr))
	}
}
