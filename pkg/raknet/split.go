package raknet

// splitChannel accumulates the fragments of one oversize message, keyed by
// the split id carried in each fragment's split header.
type splitChannel struct {
	kind             packetKind
	hasMessageNumber bool
	messageNumber    U24
	orderingIndex    U24
	sequencingIndex  U24
	channel          uint8

	count         uint32
	receivedCount uint32
	parts         [][]byte
	filled        []bool
}

// splitHandler reassembles fragmented internal packets. Every fragment of a
// given id must agree on reliability and ordering; that invariant is
// enforced by construction, since the channel is seeded once from the
// first-seen fragment and every later fragment only ever contributes its
// payload bytes.
type splitHandler struct {
	channels map[uint16]*splitChannel
}

func newSplitHandler() *splitHandler {
	return &splitHandler{channels: make(map[uint16]*splitChannel)}
}

// insert feeds one fragment. It returns a non-nil internalPacket once the
// fragment it was given completes reassembly, at which point the channel is
// deleted; otherwise it returns (nil, nil) while the channel keeps waiting.
func (h *splitHandler) insert(p *internalPacket) (*internalPacket, error) {
	idx := p.splitHeader.index
	count := p.splitHeader.count

	ch, ok := h.channels[p.splitHeader.id]
	if !ok {
		if idx >= count {
			return nil, ErrSplitPacketIndexOutOfRange
		}
		ch = &splitChannel{
			kind:             p.kind,
			hasMessageNumber: p.hasMessageNumber,
			messageNumber:    p.messageNumber,
			orderingIndex:    p.orderingIndex,
			sequencingIndex:  p.sequencingIndex,
			channel:          p.channel,
			count:            count,
			parts:            make([][]byte, count),
			filled:           make([]bool, count),
		}
		h.channels[p.splitHeader.id] = ch
	}

	// idx and count are validated against the channel's own established
	// length, not the incoming fragment's (possibly attacker-controlled)
	// declared count, so a later fragment can't widen the slices out from
	// under the first fragment's allocation.
	if count != ch.count || idx >= uint32(len(ch.filled)) {
		return nil, ErrSplitPacketIndexOutOfRange
	}

	if ch.filled[idx] {
		return nil, ErrDuplicateSplitPacketIndex
	}
	ch.parts[idx] = p.payload
	ch.filled[idx] = true
	ch.receivedCount++

	if ch.receivedCount < ch.count {
		return nil, nil
	}

	delete(h.channels, p.splitHeader.id)
	payload := make([]byte, 0, totalLen(ch.parts))
	for _, part := range ch.parts {
		payload = append(payload, part...)
	}
	return &internalPacket{
		kind:             ch.kind,
		hasMessageNumber: ch.hasMessageNumber,
		messageNumber:    ch.messageNumber,
		orderingIndex:    ch.orderingIndex,
		sequencingIndex:  ch.sequencingIndex,
		channel:          ch.channel,
		payload:          payload,
		created:          p.created,
	}, nil
}

func totalLen(parts [][]byte) int {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	return n
}
