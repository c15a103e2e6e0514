package robinhash

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func referenceFNV1a(seed uint64, data []byte) uint64 {
	h := fnvOffsetBasis64 + seed
	for _, b := range data {
		h = (h ^ uint64(b)) * fnvPrime64
	}
	return h
}

func TestHashBytes_NeverTopBitOrZero(t *testing.T) {
	inputs := [][]byte{
		{},
		[]byte("a"),
		[]byte("abc"),
		[]byte("the quick brown fox jumps over the lazy dog"),
	}

	for _, in := range inputs {
		h := HashBytes(0, in)
		require.False(t, IsTombstone(h), "top bit must be masked off")
		require.NotZero(t, h, "result must never be zero")
	}
}

func TestHashBytes_MatchesReferenceAfterMasking(t *testing.T) {
	data := []byte("abc")

	want := finalize(referenceFNV1a(0, data))
	got := HashBytes(0, data)

	require.Equal(t, want, got)
}

func TestHashFixedVariants_MatchHashBytes(t *testing.T) {
	for size := 1; size <= 16; size++ {
		data := make([]byte, size)
		for i := range data {
			data[i] = byte(i*7 + 1)
		}

		want := HashBytes(0, data)
		got := fixedHashers[size](0, unsafe.Pointer(&data[0]))

		require.Equal(t, want, got, "size %d", size)
	}
}

func TestDefaultByteHasher_DispatchesFixedAndVariable(t *testing.T) {
	data8 := [8]byte{1, 2, 3, 4, 5, 6, 7, 8}
	fixed := DefaultByteHasher(8)
	require.Equal(t, HashBytes(0, data8[:]), fixed(unsafe.Pointer(&data8), 0))

	data32 := make([]byte, 32)
	for i := range data32 {
		data32[i] = byte(i)
	}
	variable := DefaultByteHasher(32)
	require.Equal(t, HashBytes(0, data32), variable(unsafe.Pointer(&data32[0]), 0))
}

func TestHashString_MixesLengthBeforeContent(t *testing.T) {
	h1 := HashString(0, "ab")
	h2 := HashString(0, "ab")
	require.Equal(t, h1, h2, "identical strings hash identically")

	manual := fnvOffsetBasis64 + uint64(0)
	n := uint64(2)
	for i := 0; i < 8; i++ {
		manual = fnvMix(manual, byte(n>>(8*i)))
	}
	manual = fnvMix(manual, 'a')
	manual = fnvMix(manual, 'b')

	require.Equal(t, finalize(manual), h1)
}

func TestHashCString_StopsAtNUL(t *testing.T) {
	buf := append([]byte("abc\x00trailing-garbage"), 0)

	want := HashBytes(0, []byte("abc"))
	got := HashCString(0, unsafe.Pointer(&buf[0]))

	require.Equal(t, want, got)
}

func TestHashFixed_SeedChangesResult(t *testing.T) {
	var b [4]byte = [4]byte{1, 2, 3, 4}

	h1 := HashFixed4(0, unsafe.Pointer(&b))
	h2 := HashFixed4(1, unsafe.Pointer(&b))

	require.NotEqual(t, h1, h2)
}

func TestScenario_StringKeyFNV1a(t *testing.T) {
	// Insert string key "abc" with value 7 using the default byte-wise
	// hasher; hasher("abc", 0) must equal fnv1a("abc") masked and
	// non-zero-coerced.
	key := []byte("abc")
	want := finalize(referenceFNV1a(0, key))

	equals := func(a, b unsafe.Pointer) bool {
		return *(*[3]byte)(a) == *(*[3]byte)(b)
	}
	hasher := DefaultByteHasher(3)

	info := NewMapInfo(3, 1, unsafe.Sizeof(int(0)), unsafe.Alignof(int(0)), hasher, equals)
	m := NewRawMap(nil)

	var k [3]byte
	copy(k[:], key)
	v := 7

	require.Equal(t, want, hasher(unsafe.Pointer(&k), 0))

	_, err := Insert(m, info, unsafe.Pointer(&k), unsafe.Pointer(&v))
	require.NoError(t, err)

	addr, ok := Lookup(m, info, unsafe.Pointer(&k))
	require.True(t, ok)
	require.Equal(t, 7, *(*int)(addr))
}
