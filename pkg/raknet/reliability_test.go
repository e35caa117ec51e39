package raknet

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func decodeDatagramNumber(t *testing.T, datagram []byte) U24 {
	t.Helper()
	hdr, err := readDatagramHeader(bytes.NewBuffer(datagram))
	require.NoError(t, err)
	require.Equal(t, datagramPacket, hdr.kind)
	return hdr.number
}

func decodeSoleInternalPacket(t *testing.T, datagram []byte) *internalPacket {
	t.Helper()
	buf := bytes.NewBuffer(datagram)
	_, err := readDatagramHeader(buf)
	require.NoError(t, err)
	p, err := readInternalPacket(buf, time.Unix(0, 0))
	require.NoError(t, err)
	require.Equal(t, 0, buf.Len())
	return p
}

// TestReliabilityLayerNackTriggersResendOfLostDatagram reproduces the
// "reliable with one loss" scenario: four reliable messages are sent, each
// forced into its own datagram by a tight MTU; the peer's NACK for the
// missing number 1 causes the next update() to resend exactly that
// datagram's packet under a fresh datagram number.
func TestReliabilityLayerNackTriggersResendOfLostDatagram(t *testing.T) {
	const mtu = 47 // budget = 47 - 28 - 4 = 15; one 10-byte reliable packet fits, two (20) don't
	cfg := DefaultConfig()
	r := newReliabilityLayer(mtu, cfg, nil)

	t0 := time.Unix(0, 0)
	payloads := [][]byte{[]byte("pkt0"), []byte("pkt1"), []byte("pkt2"), []byte("pkt3")}
	for _, pl := range payloads {
		r.send(PriorityMedium, kindReliable, 0, nil, pl)
	}

	datagrams, events := r.update(t0)
	require.Len(t, datagrams, 4)
	require.Empty(t, events)
	for i, d := range datagrams {
		require.Equal(t, U24(i), decodeDatagramNumber(t, d))
	}

	var nack bytes.Buffer
	require.NoError(t, writeNackHeader(&nack))
	require.NoError(t, writeRangeList(&nack, []numberRange{{start: 1, end: 1}}))

	ackEvents, err := r.handleIncomingDatagram(nack.Bytes(), t0.Add(5*time.Millisecond))
	require.NoError(t, err)
	require.Empty(t, ackEvents)

	datagrams2, events2 := r.update(t0.Add(6 * time.Millisecond))
	require.Len(t, datagrams2, 1)
	require.Empty(t, events2)
	require.Equal(t, U24(4), decodeDatagramNumber(t, datagrams2[0]))

	resent := decodeSoleInternalPacket(t, datagrams2[0])
	require.Equal(t, []byte("pkt1"), resent.payload)
}

// TestReliabilityLayerRetransmitsAfterRTOWithoutNack checks the timeout path
// independently of any NACK: with nothing received back at all, every sent
// datagram is resent once RTO has elapsed.
func TestReliabilityLayerRetransmitsAfterRTOWithoutNack(t *testing.T) {
	const mtu = 47
	cfg := DefaultConfig()
	r := newReliabilityLayer(mtu, cfg, nil)

	t0 := time.Unix(0, 0)
	r.send(PriorityMedium, kindReliable, 0, nil, []byte("hello"))
	datagrams, _ := r.update(t0)
	require.Len(t, datagrams, 1)

	datagrams2, _ := r.update(t0.Add(cfg.RTO / 2))
	require.Empty(t, datagrams2)

	datagrams3, _ := r.update(t0.Add(cfg.RTO + time.Millisecond))
	require.Len(t, datagrams3, 1)
	require.Equal(t, U24(1), decodeDatagramNumber(t, datagrams3[0]))
}

// TestReliabilityLayerFragmentationRoundTrip sends one payload five times
// larger than a single datagram can carry and feeds the resulting fragment
// datagrams into a second layer out of order; it must reassemble to exactly
// the original bytes, delivered once.
func TestReliabilityLayerFragmentationRoundTrip(t *testing.T) {
	const mtu = 100 // budget = 100 - 28 - 4 = 68
	cfg := DefaultConfig()
	sender := newReliabilityLayer(mtu, cfg, nil)
	receiver := newReliabilityLayer(mtu, cfg, nil)

	payload := make([]byte, 240) // 5 fragments of 48 bytes each, exactly
	for i := range payload {
		payload[i] = byte(i)
	}

	t0 := time.Unix(0, 0)
	sender.send(PriorityMedium, kindReliableOrdered, 0, nil, payload)
	datagrams, _ := sender.update(t0)
	require.Len(t, datagrams, 5)

	shuffled := []int{4, 1, 3, 0, 2}
	var delivered []byte
	for _, idx := range shuffled {
		events, err := receiver.handleIncomingDatagram(datagrams[idx], t0)
		require.NoError(t, err)
		for _, ev := range events {
			require.Equal(t, EventPacket, ev.Kind)
			delivered = append(delivered, ev.Payload...)
		}
	}

	require.Equal(t, payload, delivered)
}

// TestReliabilityLayerMTUCeiling checks that no datagram update() emits
// exceeds MTU - UDP header, across a mix of small and large reliable sends.
func TestReliabilityLayerMTUCeiling(t *testing.T) {
	const mtu = 300
	cfg := DefaultConfig()
	r := newReliabilityLayer(mtu, cfg, nil)

	r.send(PriorityHighest, kindReliable, 0, nil, []byte("tiny"))
	r.send(PriorityLow, kindReliableOrdered, 1, nil, bytes.Repeat([]byte{0x42}, 1000))
	r.send(PriorityMedium, kindUnreliableSequenced, 2, nil, bytes.Repeat([]byte{0x07}, 50))

	datagrams, _ := r.update(time.Unix(0, 0))
	require.NotEmpty(t, datagrams)
	for _, d := range datagrams {
		require.LessOrEqual(t, len(d), mtu-udpHeaderSize)
	}
}

// TestReliabilityLayerAckRetiresEntryAndEmitsReceipt exercises the plain
// ACK path end to end, including the send-receipt event.
func TestReliabilityLayerAckRetiresEntryAndEmitsReceipt(t *testing.T) {
	const mtu = 1200
	cfg := DefaultConfig()
	r := newReliabilityLayer(mtu, cfg, nil)

	receipt := uint32(77)
	r.send(PriorityMedium, kindReliable, 0, &receipt, []byte("payload"))
	datagrams, _ := r.update(time.Unix(0, 0))
	require.Len(t, datagrams, 1)
	num := decodeDatagramNumber(t, datagrams[0])

	var ack bytes.Buffer
	require.NoError(t, writeAckHeader(&ack, nil))
	require.NoError(t, writeRangeList(&ack, []numberRange{{start: num, end: num}}))

	events, err := r.handleIncomingDatagram(ack.Bytes(), time.Unix(1, 0))
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, EventSendReceiptAcked, events[0].Kind)
	require.Equal(t, receipt, events[0].Receipt)

	require.True(t, r.ack.hasRoomForDatagram())
}
