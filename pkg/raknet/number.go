package raknet

// U24 is a 24-bit number that wraps modulo 2^24. Datagram numbers, reliable
// message numbers, and ordering/sequencing indices are all U24s on the wire
// and in memory, so that a sender can run forever without ever needing a
// wider counter.
type U24 uint32

const (
	u24Mask      = 1<<24 - 1
	u24HalfRange = 1 << 23
)

// newU24 masks v down into the 24-bit range.
func newU24(v uint32) U24 {
	return U24(v & u24Mask)
}

// add returns n+delta, wrapping modulo 2^24.
func (n U24) add(delta uint32) U24 {
	return U24((uint32(n) + delta) & u24Mask)
}

// sub returns n-delta, wrapping modulo 2^24.
func (n U24) sub(delta uint32) U24 {
	return U24((uint32(n) - delta) & u24Mask)
}

// next is shorthand for add(1), used when advancing a counter by one datagram
// or message.
func (n U24) next() U24 {
	return n.add(1)
}

// less reports whether n wrapping-precedes other: their modular difference
// must fall in the lower half of the ring, (0, 2^23). A difference of exactly
// half the range is ambiguous and never compares less in either direction.
func (n U24) less(other U24) bool {
	diff := (uint32(other) - uint32(n)) & u24Mask
	return diff > 0 && diff < u24HalfRange
}

// lessOrEqual is less() with equality folded in, useful for sequencing
// windows where "not older than" is the test that matters.
func (n U24) lessOrEqual(other U24) bool {
	return n == other || n.less(other)
}

// putUint24LE writes n into b[0:3] as little-endian.
func (n U24) putUint24LE(b []byte) {
	b[0] = byte(n)
	b[1] = byte(n >> 8)
	b[2] = byte(n >> 16)
}

// u24FromBytesLE reads a little-endian 24-bit number out of b[0:3].
func u24FromBytesLE(b []byte) U24 {
	return U24(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16)
}
