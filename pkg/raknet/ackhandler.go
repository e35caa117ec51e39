package raknet

import (
	"sort"
	"time"
)

// DefaultRTO is the retransmission timeout used until a future revision
// derives it from measured round-trip time (see SPEC_FULL.md's RTO hook
// open question).
const DefaultRTO = 1000 * time.Millisecond

// datagramEntry is what the acknowledge handler remembers about one
// outstanding datagram: its packets (for resend or receipt bookkeeping) and
// the deadline at which it's considered lost.
type datagramEntry struct {
	deadline time.Time
	packets  []*internalPacket
}

// ackHandler is the per-connection retransmission table: a map from
// in-flight datagram number to the packets it carried, plus the monotonic
// counter used to mint the next number.
type ackHandler struct {
	rto                time.Duration
	entries            map[U24]*datagramEntry
	nextDatagramNumber U24
}

func newAckHandler(rto time.Duration) *ackHandler {
	return &ackHandler{rto: rto, entries: make(map[U24]*datagramEntry)}
}

// sortedEntryNumbers lists in-flight datagram numbers in wrapping ascending
// order, so resend and receipt events surface in original send order.
func (h *ackHandler) sortedEntryNumbers() []U24 {
	nums := make([]U24, 0, len(h.entries))
	for n := range h.entries {
		nums = append(nums, n)
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i].less(nums[j]) })
	return nums
}

// processOutgoingDatagram records that packets were just sent under
// nextDatagramNumber, due for retransmission at now+RTO, and advances the
// counter.
func (h *ackHandler) processOutgoingDatagram(packets []*internalPacket, now time.Time) U24 {
	n := h.nextDatagramNumber
	h.entries[n] = &datagramEntry{deadline: now.Add(h.rto), packets: packets}
	h.nextDatagramNumber = n.next()
	return n
}

// processIncomingAck retires every present entry named by ranges and emits
// an acked-receipt event for each receipt-tagged packet it carried.
func (h *ackHandler) processIncomingAck(ranges []numberRange) []Event {
	var events []Event
	for _, r := range ranges {
		for n := r.start; ; n = n.next() {
			if entry, ok := h.entries[n]; ok {
				delete(h.entries, n)
				for _, p := range entry.packets {
					if p.hasReceipt {
						events = append(events, Event{Kind: EventSendReceiptAcked, Receipt: p.receipt})
					}
				}
			}
			if n == r.end {
				break
			}
		}
	}
	return events
}

// processIncomingNack resets the deadline of every present entry named by
// ranges to now, so the next update() call treats it as due for resend.
func (h *ackHandler) processIncomingNack(ranges []numberRange, now time.Time) {
	for _, r := range ranges {
		for n := r.start; ; n = n.next() {
			if entry, ok := h.entries[n]; ok {
				entry.deadline = now
			}
			if n == r.end {
				break
			}
		}
	}
}

// getPacketsToResend scans for entries whose deadline has expired, or
// whose number sits wrapping-after nextDatagramNumber (a defensive guard
// against a runaway counter reset), removes them, and splits their packets:
// unreliable ones are dropped (yielding a loss receipt if tagged), reliable
// ones are returned for re-enqueueing.
func (h *ackHandler) getPacketsToResend(now time.Time) ([]*internalPacket, []Event) {
	var resend []*internalPacket
	var events []Event

	for _, n := range h.sortedEntryNumbers() {
		entry := h.entries[n]
		expired := !entry.deadline.After(now)
		stale := h.nextDatagramNumber.less(n)
		if !expired && !stale {
			continue
		}
		delete(h.entries, n)
		for _, p := range entry.packets {
			if !p.kind.reliable() {
				if p.hasReceipt {
					events = append(events, Event{Kind: EventSendReceiptLoss, Receipt: p.receipt})
				}
				continue
			}
			resend = append(resend, p)
		}
	}
	return resend, events
}

// hasRoomForDatagram is true iff nextDatagramNumber isn't already in use by
// an unacknowledged entry, which would mean the 24-bit counter wrapped all
// the way around while that datagram was still in flight.
func (h *ackHandler) hasRoomForDatagram() bool {
	_, inUse := h.entries[h.nextDatagramNumber]
	return !inUse
}
