package raknet

import (
	"sort"
	"time"
)

// rangeListHeaderSize is the u16 range_count prefix shared by ACK and NACK
// wire payloads.
const rangeListHeaderSize = 2

// worstCaseRangeSize is the largest a single encoded range can be: a flag
// byte plus two 3-byte numbers (the single-number case is smaller, but the
// batchers budget for the worst case so a flush never overshoots the MTU).
const worstCaseRangeSize = 1 + 3 + 3

// sortedNumbers returns the keys of a pending set in wrapping ascending
// order. The batchers only ever hold numbers clustered within one send
// window, so ordering by the wrapping less() relation is well defined.
func sortedNumbers(pending map[U24]struct{}) []U24 {
	nums := make([]U24, 0, len(pending))
	for n := range pending {
		nums = append(nums, n)
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i].less(nums[j]) })
	return nums
}

// drainRanges compresses as much of pending as fits in maxBytes into
// ranges, removing the numbers it consumed. Call repeatedly until pending
// is empty to flush everything across multiple datagrams.
func drainRanges(pending map[U24]struct{}, maxBytes int) []numberRange {
	ranges := buildRanges(sortedNumbers(pending))
	budget := maxBytes - rangeListHeaderSize

	out := make([]numberRange, 0, len(ranges))
	for _, r := range ranges {
		if budget < worstCaseRangeSize {
			break
		}
		out = append(out, r)
		budget -= worstCaseRangeSize
	}
	for _, r := range out {
		for n := r.start; ; n = n.next() {
			delete(pending, n)
			if n == r.end {
				break
			}
		}
	}
	return out
}

// ackBatcher coalesces datagram numbers the peer needs acknowledged. Inserts
// are free; the reliability update loop decides when T_ACK has elapsed and
// drains the batcher into one or more ACK datagrams.
type ackBatcher struct {
	pending map[U24]struct{}
	oldest  time.Time
}

func newAckBatcher() *ackBatcher {
	return &ackBatcher{pending: make(map[U24]struct{})}
}

// insert records n as needing acknowledgement. The first insert into an
// empty batcher stamps the oldest-pending time; later inserts reuse it so a
// steady trickle of traffic can't indefinitely postpone a flush.
func (a *ackBatcher) insert(n U24, now time.Time) {
	if len(a.pending) == 0 {
		a.oldest = now
	}
	a.pending[n] = struct{}{}
}

func (a *ackBatcher) empty() bool {
	return len(a.pending) == 0
}

// shouldFlush reports whether the oldest pending ACK has waited longer than
// tAck.
func (a *ackBatcher) shouldFlush(now time.Time, tAck time.Duration) bool {
	return !a.empty() && now.Sub(a.oldest) > tAck
}

// drain pops one budget's worth of ranges. Once pending empties, the oldest
// timestamp resets so the next arrival starts a fresh waiting period.
func (a *ackBatcher) drain(maxBytes int) []numberRange {
	ranges := drainRanges(a.pending, maxBytes)
	if a.empty() {
		a.oldest = time.Time{}
	}
	return ranges
}

// nackBatcher detects gaps in the incoming datagram-number sequence and
// queues NACKs for the missing numbers, capped per gap so that one huge
// jump (or a malicious peer) can't queue unbounded work; anything beyond
// the cap is left to fall back on retransmission timeout.
type nackBatcher struct {
	pending      map[U24]struct{}
	expectedNext U24
	perGapCap    int
}

// maxNackPerGap is the fallback per-gap cap for callers that don't have a
// Config handy (e.g. tests constructing a batcher directly).
const maxNackPerGap = 1000

func newNackBatcher(perGapCap int) *nackBatcher {
	if perGapCap <= 0 {
		perGapCap = maxNackPerGap
	}
	return &nackBatcher{pending: make(map[U24]struct{}), perGapCap: perGapCap}
}

// onDatagramReceived feeds the arrival of datagram number n. A number
// strictly before expectedNext is a duplicate or a reordered retransmit and
// is ignored; otherwise every number in [expectedNext, n) is queued as a
// NACK, up to the per-gap cap, and expectedNext advances past n.
func (b *nackBatcher) onDatagramReceived(n U24) {
	if n.less(b.expectedNext) {
		return
	}
	gapCount := 0
	for m := b.expectedNext; m != n; m = m.next() {
		if gapCount >= b.perGapCap {
			break
		}
		b.pending[m] = struct{}{}
		gapCount++
	}
	b.expectedNext = n.next()
}

func (b *nackBatcher) empty() bool {
	return len(b.pending) == 0
}

func (b *nackBatcher) drain(maxBytes int) []numberRange {
	return drainRanges(b.pending, maxBytes)
}
