package robinhash

import "unsafe"

// writeSlot copies key, value and hash into slot, overwriting whatever was
// there. Callers are responsible for having preserved any prior contents
// they still need (see robinHoodPlace's scratch dance).
func (m *RawMap) writeSlot(info *MapInfo, slot uintptr, keyPtr, valPtr unsafe.Pointer, h Hash) {
	copyBytes(m.keySlot(info, slot), keyPtr, info.Key.SizeOfType)
	copyBytes(m.valueSlot(info, slot), valPtr, info.Value.SizeOfType)
	*m.hashSlot(info, slot) = h
}

// robinHoodPlace runs the Robin Hood insertion loop: walk the probe chain
// from the key's home slot, stealing a slot from (or overwriting a
// tombstone ahead of) any entry with a shorter probe distance, and carrying
// the displaced entry onward through a double-buffered scratch area so a
// chain of successive steals never clobbers an entry still in flight.
//
// When checkDup is true, an existing entry with the same hash and an equal
// key is updated in place instead of triggering a new insertion; this is
// what gives Insert/Add their "update on duplicate key" semantics. Callers
// migrating already-unique entries (capacity.go's migrate) pass false.
//
// Returns the address of the value slot the ORIGINALLY supplied (keyPtr,
// valPtr) ultimately occupies, and whether an existing entry was updated
// (true) rather than a new one inserted (false). Once the original triple
// is swapped into some slot, it never moves again — later swaps only carry
// forward the entry it displaced — so the first slot written with the
// original triple is the permanent answer.
func robinHoodPlace(m *RawMap, info *MapInfo, h Hash, keyPtr, valPtr unsafe.Pointer, checkDup bool) (unsafe.Pointer, bool) {
	cap := m.Cap()
	mask := cap - 1
	slot := Desired(h, cap)
	d := uintptr(0)

	curH := h
	curKey := keyPtr
	curVal := valPtr
	isOriginal := true

	var resultAddr unsafe.Pointer
	placed := false
	scratchToggle := uintptr(0)

	for {
		e := *m.hashSlot(info, slot)

		if checkDup && isOriginal && IsValid(e) && e == curH && info.Equals(m.keySlot(info, slot), curKey) {
			copyBytes(m.valueSlot(info, slot), curVal, info.Value.SizeOfType)
			return m.valueSlot(info, slot), true
		}

		if IsEmpty(e) {
			m.writeSlot(info, slot, curKey, curVal, curH)
			if !placed {
				resultAddr = m.valueSlot(info, slot)
				placed = true
			}
			return resultAddr, false
		}

		if pd := ProbeDistance(e, slot, cap); pd < d {
			if IsTombstone(e) {
				m.writeSlot(info, slot, curKey, curVal, curH)
				if !placed {
					resultAddr = m.valueSlot(info, slot)
					placed = true
				}
				return resultAddr, false
			}

			savedKey := m.scratchKey(info, scratchToggle)
			savedVal := m.scratchValue(info, scratchToggle)
			copyBytes(savedKey, m.keySlot(info, slot), info.Key.SizeOfType)
			copyBytes(savedVal, m.valueSlot(info, slot), info.Value.SizeOfType)
			savedHash := e

			m.writeSlot(info, slot, curKey, curVal, curH)
			if !placed {
				resultAddr = m.valueSlot(info, slot)
				placed = true
			}

			curKey, curVal, curH = savedKey, savedVal, savedHash
			isOriginal = false
			d = pd
			scratchToggle = 1 - scratchToggle
		}

		slot = (slot + 1) & mask
		d++
	}
}

// addInto places an already-known-unique (hash, key, value) triple into m
// without any duplicate check or len bookkeeping. Used exclusively by
// capacity.go's migrate, which re-derives len from the source table once
// every live entry has been moved.
func addInto(m *RawMap, info *MapInfo, h Hash, keyPtr, valPtr unsafe.Pointer) {
	robinHoodPlace(m, info, h, keyPtr, valPtr, false)
}

// Insert writes (keyPtr, valPtr), growing the table first if the load
// factor threshold would otherwise be crossed. Returns the address of the
// stored value. An existing entry with an equal key is updated in place and
// len is left unchanged; otherwise len is incremented.
func Insert(m *RawMap, info *MapInfo, keyPtr, valPtr unsafe.Pointer) (unsafe.Pointer, error) {
	if err := ensureInitialized(m, info); err != nil {
		return nil, err
	}
	if m.len+1 >= loadFactorThreshold(m.Cap()) {
		if err := Grow(m, info); err != nil {
			return nil, err
		}
	}

	h := info.Hasher(keyPtr, 0)
	addr, updated := robinHoodPlace(m, info, h, keyPtr, valPtr, true)
	if !updated {
		m.len++
	}
	return addr, nil
}

// Add is Insert without a returned address, for callers that only care
// whether the write succeeded.
func Add(m *RawMap, info *MapInfo, keyPtr, valPtr unsafe.Pointer) error {
	_, err := Insert(m, info, keyPtr, valPtr)
	return err
}

// Lookup returns the address of the stored value for keyPtr, or (nil,
// false) on a miss.
func Lookup(m *RawMap, info *MapInfo, keyPtr unsafe.Pointer) (unsafe.Pointer, bool) {
	if !m.isAllocated() {
		return nil, false
	}

	cap := m.Cap()
	mask := cap - 1
	h := info.Hasher(keyPtr, 0)
	slot := Desired(h, cap)
	d := uintptr(0)

	for {
		e := *m.hashSlot(info, slot)
		if IsEmpty(e) {
			return nil, false
		}
		if d > ProbeDistance(e, slot, cap) {
			return nil, false
		}
		if IsValid(e) && e == h && info.Equals(m.keySlot(info, slot), keyPtr) {
			return m.valueSlot(info, slot), true
		}

		slot = (slot + 1) & mask
		d++
	}
}

// Exists reports whether keyPtr is present.
func Exists(m *RawMap, info *MapInfo, keyPtr unsafe.Pointer) bool {
	_, ok := Lookup(m, info, keyPtr)
	return ok
}

// Erase removes keyPtr if present by setting its slot's tombstone bit,
// leaving the low bits (and therefore ProbeDistance) intact for entries
// that probed past it. Reports whether the key was present.
func Erase(m *RawMap, info *MapInfo, keyPtr unsafe.Pointer) bool {
	if !m.isAllocated() {
		return false
	}

	cap := m.Cap()
	mask := cap - 1
	h := info.Hasher(keyPtr, 0)
	slot := Desired(h, cap)
	d := uintptr(0)

	for {
		e := *m.hashSlot(info, slot)
		if IsEmpty(e) {
			return false
		}
		if d > ProbeDistance(e, slot, cap) {
			return false
		}
		if IsValid(e) && e == h && info.Equals(m.keySlot(info, slot), keyPtr) {
			*m.hashSlot(info, slot) = AsTombstone(e)
			m.len--
			return true
		}

		slot = (slot + 1) & mask
		d++
	}
}
