package raknet

// maxReliableWindow bounds how far ahead of base a single accept() call
// will extend the hole window, protecting memory against a peer that
// claims a wildly out-of-range message number.
const maxReliableWindow = 1_000_000

// reliableNumberFilter is the per-connection duplicate suppressor for
// reliable message numbers: a sliding window anchored at base, with holes
// recording which of the numbers just ahead of base are still missing.
type reliableNumberFilter struct {
	base  U24
	holes []bool // holes[i] corresponds to message number base+1+i; true = not yet received
}

func newReliableNumberFilter() *reliableNumberFilter {
	return &reliableNumberFilter{}
}

// accept reports whether n is new. A false return means n is a duplicate
// (or too old to plausibly be real) and the caller should drop the packet
// without delivering it.
func (f *reliableNumberFilter) accept(n U24) bool {
	offset := (uint32(n) - uint32(f.base)) & u24Mask

	if offset == 0 {
		f.base = f.base.next()
		// holes[0], if present, was recorded against the number that has
		// now become the new base; fold it into the base itself so later
		// offsets keep indexing from base+1. If it was already filled, that
		// number is done too, so keep collapsing forward.
		for len(f.holes) > 0 {
			wasFilled := !f.holes[0]
			f.holes = f.holes[1:]
			if !wasFilled {
				break
			}
			f.base = f.base.next()
		}
		return true
	}

	if offset > u24HalfRange {
		return false
	}

	idx := int(offset) - 1
	if idx < len(f.holes) {
		if f.holes[idx] {
			f.holes[idx] = false
			return true
		}
		return false
	}

	if idx >= maxReliableWindow {
		return false
	}
	for len(f.holes) < idx {
		f.holes = append(f.holes, true)
	}
	f.holes = append(f.holes, false)
	return true
}
