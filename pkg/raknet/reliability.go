package raknet

import (
	"bytes"
	"time"
)

// reliabilityLayer is the per-connection engine: it owns every piece built
// so far (acknowledge handler, ACK/NACK batchers, duplicate filter, ordering
// system, split handler, priority scheduler) and exposes the two operations
// a connection actually needs — send() to enqueue a outbound message,
// handleIncomingDatagram() to feed a received one — plus the update() tick
// the manager drives on every process() pass.
type reliabilityLayer struct {
	mtu     int
	cfg     Config
	metrics *Metrics

	ack   *ackHandler
	acks  *ackBatcher
	nacks *nackBatcher
	dedup *reliableNumberFilter
	order *orderingSystem
	split *splitHandler
	out   *priorityQueue

	nextMessageNumber  U24
	nextOrderingIndex  [maxOrderingChannels]U24
	nextSequencingIndex [maxOrderingChannels]U24
	nextSplitID        uint16
}

// newReliabilityLayer constructs a reliability engine for one connection.
// metrics may be nil, in which case the layer simply doesn't record any.
func newReliabilityLayer(mtu int, cfg Config, metrics *Metrics) *reliabilityLayer {
	return &reliabilityLayer{
		mtu:     mtu,
		cfg:     cfg,
		metrics: metrics,
		ack:     newAckHandler(cfg.RTO),
		acks:    newAckBatcher(),
		nacks:   newNackBatcher(cfg.NackPerGapCap),
		dedup:   newReliableNumberFilter(),
		order:   newOrderingSystem(),
		split:   newSplitHandler(),
		out:     newPriorityQueue(),
	}
}

// datagramOverhead is the bytes a packet datagram's envelope costs beyond
// the UDP header: 1 flag byte + 3-byte datagram number.
const datagramOverhead = 4

// packetBudget is the largest a single internal packet's wire size may be
// and still stand a chance of fitting, alone, into one MTU-bound datagram.
func (r *reliabilityLayer) packetBudget() int {
	return r.mtu - udpHeaderSize - datagramOverhead
}

// headerOverhead returns the wire size write() would produce for a packet of
// this kind, with or without a split header, carrying a zero-length payload, i.e. everything
// sizeInBytes() counts except the payload itself.
func headerOverhead(kind packetKind, split bool) int {
	p := &internalPacket{kind: kind, hasMessageNumber: kind.reliable(), split: split}
	return p.sizeInBytes()
}

// send enqueues payload for outbound delivery at the given priority, kind,
// and channel. A payload too large for one datagram is transparently split
// into sequentially indexed fragments sharing one split id; each fragment is
// itself a full reliable/ordering-tagged internalPacket, so loss and
// reordering of individual fragments are handled by the usual machinery.
func (r *reliabilityLayer) send(priority Priority, kind packetKind, channel uint8, receipt *uint32, payload []byte) {
	// A message's ordering/sequencing index is assigned once per send() and
	// shared by every fragment it's split into, so the receiver's ordering
	// channel sees one logical item regardless of how many wire packets it
	// took to carry it. Each fragment still gets its own reliable message
	// number, since ACK/resend bookkeeping operates at the wire-packet level.
	ord, hasSeq, seq := r.nextOrdering(channel, kind)

	budget := r.packetBudget()
	maxWhole := budget - headerOverhead(kind, false)
	if len(payload) <= maxWhole {
		p := r.buildPacket(kind, channel, ord, hasSeq, seq, payload)
		if receipt != nil {
			p.hasReceipt = true
			p.receipt = *receipt
		}
		p.priority = priority
		r.out.push(priority, p)
		return
	}

	maxFragment := budget - headerOverhead(kind, true)
	if maxFragment < 1 {
		maxFragment = 1
	}
	count := (len(payload) + maxFragment - 1) / maxFragment
	id := r.nextSplitID
	r.nextSplitID++

	for i := 0; i < count; i++ {
		start := i * maxFragment
		end := start + maxFragment
		if end > len(payload) {
			end = len(payload)
		}
		p := r.buildPacket(kind, channel, ord, hasSeq, seq, payload[start:end])
		p.split = true
		p.splitHeader = splitHeader{count: uint32(count), id: id, index: uint32(i)}
		if i == count-1 && receipt != nil {
			p.hasReceipt = true
			p.receipt = *receipt
		}
		p.priority = priority
		r.out.push(priority, p)
	}
}

// nextOrdering assigns the ordering (and, for sequenced kinds, sequencing)
// index a new message of this kind and channel should carry, advancing
// whichever counter it consumed. Ordered sends advance the channel's
// ordering index on every call; sequenced sends instead advance a separate
// sequencing index while reusing whatever ordering index is currently
// active for that channel.
func (r *reliabilityLayer) nextOrdering(channel uint8, kind packetKind) (ord U24, hasSeq bool, seq U24) {
	if !kind.hasChannel() {
		return 0, false, 0
	}
	ord = r.nextOrderingIndex[channel]
	if kind.sequenced() {
		seq = r.nextSequencingIndex[channel]
		r.nextSequencingIndex[channel] = r.nextSequencingIndex[channel].next()
		return ord, true, seq
	}
	r.nextOrderingIndex[channel] = r.nextOrderingIndex[channel].next()
	return ord, false, 0
}

// buildPacket stamps a fresh internalPacket with a new reliable message
// number (if applicable) and the ordering/sequencing indices the caller
// already resolved via nextOrdering.
func (r *reliabilityLayer) buildPacket(kind packetKind, channel uint8, ord U24, hasSeq bool, seq U24, payload []byte) *internalPacket {
	p := &internalPacket{kind: kind, channel: channel, payload: payload}
	if kind.reliable() {
		p.hasMessageNumber = true
		p.messageNumber = r.nextMessageNumber
		r.nextMessageNumber = r.nextMessageNumber.next()
	}
	if kind.hasChannel() {
		p.orderingIndex = ord
		p.sequencingIndex = seq
	}
	return p
}

// handleIncomingDatagram classifies and processes one received UDP payload
// already known to belong to this connection (offline handshake framing is
// the manager's job, not this layer's).
func (r *reliabilityLayer) handleIncomingDatagram(data []byte, now time.Time) ([]Event, error) {
	buf := bytes.NewBuffer(data)
	hdr, err := readDatagramHeader(buf)
	if err != nil {
		return nil, err
	}

	switch hdr.kind {
	case datagramACK:
		ranges, err := readRangeList(buf)
		if err != nil {
			return nil, err
		}
		return r.ack.processIncomingAck(ranges), nil

	case datagramNACK:
		ranges, err := readRangeList(buf)
		if err != nil {
			return nil, err
		}
		r.ack.processIncomingNack(ranges, now)
		return nil, nil

	default:
		r.acks.insert(hdr.number, now)
		r.nacks.onDatagramReceived(hdr.number)

		var events []Event
		for buf.Len() > 0 {
			p, err := readInternalPacket(buf, now)
			if err != nil {
				return events, err
			}
			events = append(events, r.consumeInternalPacket(p)...)
		}
		return events, nil
	}
}

// consumeInternalPacket runs one decoded packet through duplicate
// suppression, split reassembly, and ordering, in that order, producing
// zero or more deliverable-payload events.
func (r *reliabilityLayer) consumeInternalPacket(p *internalPacket) []Event {
	if p.kind.reliable() && !r.dedup.accept(p.messageNumber) {
		if r.metrics != nil {
			r.metrics.DuplicatesDropped.Inc()
		}
		return nil
	}

	if p.split {
		reassembled, err := r.split.insert(p)
		if err != nil || reassembled == nil {
			return nil
		}
		p = reassembled
	}

	return r.deliver(p)
}

func (r *reliabilityLayer) deliver(p *internalPacket) []Event {
	if !p.kind.hasChannel() {
		return []Event{{Kind: EventPacket, Payload: p.payload}}
	}
	if int(p.channel) >= maxOrderingChannels {
		return nil
	}
	payloads := r.order.processIncoming(p.channel, p.orderingIndex, p.kind.sequenced(), p.sequencingIndex, p.payload)
	events := make([]Event, len(payloads))
	for i, payload := range payloads {
		events[i] = Event{Kind: EventPacket, Payload: payload}
	}
	return events
}

// update runs the four-step periodic maintenance sequence: flush due ACKs,
// flush any pending NACKs, hand timed-out or NACKed packets back to the
// scheduler for resend, then pack as many fresh datagrams as the priority
// heap and the acknowledge handler's window allow. It returns the raw bytes
// of every datagram that should now be sent, plus any receipt/loss events
// the resend step produced.
func (r *reliabilityLayer) update(now time.Time) ([][]byte, []Event) {
	var datagrams [][]byte
	var events []Event

	if r.acks.shouldFlush(now, r.cfg.TAck) {
		for !r.acks.empty() {
			ranges := r.acks.drain(r.mtu - udpHeaderSize)
			if len(ranges) == 0 {
				break
			}
			var buf bytes.Buffer
			writeAckHeader(&buf, nil)
			writeRangeList(&buf, ranges)
			datagrams = append(datagrams, buf.Bytes())
			if r.metrics != nil {
				r.metrics.AcksSent.Inc()
			}
		}
	}

	for !r.nacks.empty() {
		ranges := r.nacks.drain(r.mtu - 1)
		if len(ranges) == 0 {
			break
		}
		var buf bytes.Buffer
		writeNackHeader(&buf)
		writeRangeList(&buf, ranges)
		datagrams = append(datagrams, buf.Bytes())
		if r.metrics != nil {
			r.metrics.NacksSent.Inc()
		}
	}

	resend, lossEvents := r.ack.getPacketsToResend(now)
	events = append(events, lossEvents...)
	if r.metrics != nil && len(resend) > 0 {
		r.metrics.Retransmissions.Add(float64(len(resend)))
	}
	for _, p := range resend {
		r.out.push(p.priority, p)
	}

	budget := r.packetBudget()
	for r.out.len() > 0 && r.ack.hasRoomForDatagram() {
		var packets []*internalPacket
		size := 0
		for r.out.len() > 0 {
			next := r.out.peek()
			sz := next.sizeInBytes()
			if len(packets) > 0 && size+sz > budget {
				break
			}
			size += sz
			packets = append(packets, r.out.pop())
		}

		number := r.ack.processOutgoingDatagram(packets, now)
		var buf bytes.Buffer
		d := &packetDatagram{header: datagramHeader{number: number}, packets: packets}
		if err := d.write(&buf); err != nil {
			continue
		}
		datagrams = append(datagrams, buf.Bytes())
	}

	return datagrams, events
}
