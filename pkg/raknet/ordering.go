package raknet

import "container/heap"

// maxOrderingChannels is the number of independent ordering channels a
// connection multiplexes; the wire channel byte selects one of these.
const maxOrderingChannels = 32

// orderedItem is one payload buffered in a channel's heap while it waits
// for its turn to be delivered.
type orderedItem struct {
	ord     U24
	hasSeq  bool
	seq     U24
	payload []byte
}

// orderedItemHeap ranks buffered items by distance from the channel's
// anchor (set to expectedOrd whenever the heap empties), with sequencing
// index as a tiebreaker among items sharing one ordering index. Ranking by
// distance rather than raw ord keeps the heap correct across a 24-bit wrap.
type orderedItemHeap struct {
	items  []orderedItem
	anchor U24
}

func (h *orderedItemHeap) Len() int { return len(h.items) }

func (h *orderedItemHeap) Less(i, j int) bool {
	di := (uint32(h.items[i].ord) - uint32(h.anchor)) & u24Mask
	dj := (uint32(h.items[j].ord) - uint32(h.anchor)) & u24Mask
	if di != dj {
		return di < dj
	}
	si, sj := uint32(0xFFFFFFFF), uint32(0xFFFFFFFF)
	if h.items[i].hasSeq {
		si = uint32(h.items[i].seq)
	}
	if h.items[j].hasSeq {
		sj = uint32(h.items[j].seq)
	}
	return si < sj
}

func (h *orderedItemHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *orderedItemHeap) Push(x interface{}) { h.items = append(h.items, x.(orderedItem)) }

func (h *orderedItemHeap) Pop() interface{} {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}

// orderingChannel reorders one channel's reliable-ordered and
// reliable/unreliable-sequenced traffic into delivery order.
type orderingChannel struct {
	expectedOrd U24
	expectedSeq U24
	pending     orderedItemHeap
}

func newOrderingChannel() *orderingChannel {
	return &orderingChannel{}
}

// processIncoming feeds one packet's ordering (and, for sequenced kinds,
// sequencing) index into the channel and returns every payload that became
// deliverable as a result, in delivery order.
func (c *orderingChannel) processIncoming(ord U24, hasSeq bool, seq U24, payload []byte) [][]byte {
	if ord == c.expectedOrd {
		return c.acceptAtExpectedOrd(hasSeq, seq, payload)
	}
	if ord.less(c.expectedOrd) {
		return nil
	}
	if c.pending.Len() == 0 {
		c.pending.anchor = c.expectedOrd
	}
	heap.Push(&c.pending, orderedItem{ord: ord, hasSeq: hasSeq, seq: seq, payload: payload})
	return nil
}

// acceptAtExpectedOrd delivers (or drops) one packet already known to carry
// the channel's current ordering index, then drains whatever that made
// deliverable from the buffer.
func (c *orderingChannel) acceptAtExpectedOrd(hasSeq bool, seq U24, payload []byte) [][]byte {
	if hasSeq {
		if !seqAtLeast(seq, c.expectedSeq) {
			return nil
		}
		c.expectedSeq = seq.next()
		return [][]byte{payload}
	}
	c.expectedOrd = c.expectedOrd.next()
	c.expectedSeq = 0
	out := [][]byte{payload}
	return append(out, c.drain()...)
}

// seqAtLeast reports whether seq is not older than expected, under wrapping
// comparison.
func seqAtLeast(seq, expected U24) bool {
	return seq == expected || expected.less(seq)
}

// drain pops every buffered item that is now next in line. A sequenced
// item at the current ordering index is delivered or dropped without
// advancing expectedOrd; an ordered item advances it and continues the
// drain, since that may expose the next buffered item in turn.
func (c *orderingChannel) drain() [][]byte {
	var out [][]byte
	for c.pending.Len() > 0 && c.pending.items[0].ord == c.expectedOrd {
		item := heap.Pop(&c.pending).(orderedItem)
		if item.hasSeq {
			if seqAtLeast(item.seq, c.expectedSeq) {
				out = append(out, item.payload)
				c.expectedSeq = item.seq.next()
			}
			continue
		}
		out = append(out, item.payload)
		c.expectedOrd = c.expectedOrd.next()
		c.expectedSeq = 0
	}
	return out
}

// orderingSystem owns the fixed set of ordering channels a connection
// multiplexes.
type orderingSystem struct {
	channels [maxOrderingChannels]*orderingChannel
}

func newOrderingSystem() *orderingSystem {
	s := &orderingSystem{}
	for i := range s.channels {
		s.channels[i] = newOrderingChannel()
	}
	return s
}

// processIncoming routes to the channel named by ch. Callers are expected
// to have already validated ch < maxOrderingChannels.
func (s *orderingSystem) processIncoming(ch uint8, ord U24, hasSeq bool, seq U24, payload []byte) [][]byte {
	return s.channels[ch].processIncoming(ord, hasSeq, seq, payload)
}
