package robinhash

import "errors"

// ErrOutOfMemory is returned when the allocator refuses a request or when
// the requested log2 capacity would exceed the range a tagged pointer can
// encode.
var ErrOutOfMemory = errors.New("robinhash: out of memory")

// ErrCapacityOverflow is returned by Grow when the next capacity would
// require a log2 capacity greater than 63, the maximum this package's
// tagged base pointer can represent. Reserve reports the same condition as
// ErrOutOfMemory.
var ErrCapacityOverflow = errors.New("robinhash: capacity overflow")
