package raknet

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInternalPacketRoundTripAllKinds(t *testing.T) {
	now := time.Now()
	cases := []*internalPacket{
		{kind: kindUnreliable, payload: []byte("hello")},
		{
			kind:            kindUnreliableSequenced,
			sequencingIndex: newU24(0x123456),
			orderingIndex:   newU24(0x112233),
			channel:         3,
			payload:         []byte("sequenced"),
		},
		{
			kind:             kindReliable,
			hasMessageNumber: true,
			messageNumber:    newU24(42),
			payload:          []byte("reliable"),
		},
		{
			kind:             kindReliableOrdered,
			hasMessageNumber: true,
			messageNumber:    newU24(99),
			orderingIndex:    newU24(7),
			channel:          1,
			payload:          []byte("ordered"),
		},
		{
			kind:             kindReliableSequenced,
			hasMessageNumber: true,
			messageNumber:    newU24(1000),
			sequencingIndex:  newU24(5),
			orderingIndex:    newU24(6),
			channel:          2,
			payload:          []byte("reliable sequenced"),
		},
	}

	for _, want := range cases {
		want.created = now
		var buf bytes.Buffer
		require.NoError(t, want.write(&buf))

		got, err := readInternalPacket(&buf, now)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestInternalPacketSplitRoundTrip(t *testing.T) {
	now := time.Now()
	want := &internalPacket{
		kind:             kindReliableOrdered,
		hasMessageNumber: true,
		messageNumber:    newU24(1),
		orderingIndex:    newU24(2),
		channel:          0,
		split:            true,
		splitHeader:      splitHeader{count: 5, id: 0xBEEF, index: 2},
		payload:          []byte("fragment"),
		created:          now,
	}

	var buf bytes.Buffer
	require.NoError(t, want.write(&buf))

	got, err := readInternalPacket(&buf, now)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestInternalPacketBitLengthIsPayloadBytesTimesEight(t *testing.T) {
	// A one-byte payload should read back as exactly one byte even though
	// the wire field counts bits.
	now := time.Now()
	want := &internalPacket{kind: kindUnreliable, payload: []byte{0xAB}, created: now}

	var buf bytes.Buffer
	require.NoError(t, want.write(&buf))
	require.Equal(t, uint16(8), bufUint16BE(buf.Bytes()[1:3]))

	got, err := readInternalPacket(&buf, now)
	require.NoError(t, err)
	require.Equal(t, []byte{0xAB}, got.payload)
}

func bufUint16BE(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}

func TestInternalPacketRejectsZeroLengthPayloadOnRead(t *testing.T) {
	buf := bytes.NewBuffer([]byte{byte(kindUnreliable) << 5, 0x00, 0x00})
	_, err := readInternalPacket(buf, time.Now())
	require.ErrorIs(t, err, ErrInvalidHeader)
}

func TestInternalPacketRejectsPayloadTooLargeOnWrite(t *testing.T) {
	p := &internalPacket{kind: kindUnreliable, payload: make([]byte, maxInternalPayload+1)}
	var buf bytes.Buffer
	require.ErrorIs(t, p.write(&buf), ErrPayloadTooLarge)
}

func TestInternalPacketRejectsReliableWithoutMessageNumber(t *testing.T) {
	p := &internalPacket{kind: kindReliable, payload: []byte("x")}
	var buf bytes.Buffer
	require.ErrorIs(t, p.write(&buf), ErrInvalidHeader)
}

func TestInternalPacketSizeInBytesMatchesWireSize(t *testing.T) {
	p := &internalPacket{
		kind:             kindReliableSequenced,
		hasMessageNumber: true,
		messageNumber:    newU24(1),
		sequencingIndex:  newU24(2),
		orderingIndex:    newU24(3),
		channel:          4,
		split:            true,
		splitHeader:      splitHeader{count: 2, id: 1, index: 0},
		payload:          []byte("payload bytes"),
	}
	var buf bytes.Buffer
	require.NoError(t, p.write(&buf))
	require.Equal(t, buf.Len(), p.sizeInBytes())
}
