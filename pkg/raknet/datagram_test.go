package raknet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDatagramHeaderRoundTripPacket(t *testing.T) {
	want := datagramHeader{
		kind:                 datagramPacket,
		number:               newU24(0xABCDEF),
		isPacketPair:         true,
		isContinuousSend:     true,
		needsDataArrivalRate: true,
	}

	var buf bytes.Buffer
	require.NoError(t, writePacketDatagramHeader(&buf, want))

	got, err := readDatagramHeader(&buf)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestDatagramHeaderRoundTripAckWithoutRate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeAckHeader(&buf, nil))

	got, err := readDatagramHeader(&buf)
	require.NoError(t, err)
	require.Equal(t, datagramHeader{kind: datagramACK}, got)
}

func TestDatagramHeaderRoundTripAckWithRate(t *testing.T) {
	rate := float32(1234.5)
	var buf bytes.Buffer
	require.NoError(t, writeAckHeader(&buf, &rate))

	got, err := readDatagramHeader(&buf)
	require.NoError(t, err)
	require.True(t, got.hasDataArrivalRate)
	require.Equal(t, rate, got.dataArrivalRate)
	require.Equal(t, datagramACK, got.kind)
}

func TestDatagramHeaderRoundTripNack(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeNackHeader(&buf))

	got, err := readDatagramHeader(&buf)
	require.NoError(t, err)
	require.Equal(t, datagramHeader{kind: datagramNACK}, got)
}

func TestDatagramHeaderRejectsMissingValidBit(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0x00, 0x00, 0x00, 0x00})
	_, err := readDatagramHeader(buf)
	require.ErrorIs(t, err, ErrInvalidHeader)
}

func TestPacketDatagramSizeAndRoundTrip(t *testing.T) {
	d := &packetDatagram{
		header: datagramHeader{kind: datagramPacket, number: newU24(7)},
		packets: []*internalPacket{
			{kind: kindUnreliable, payload: []byte("abc")},
			{kind: kindReliable, hasMessageNumber: true, messageNumber: newU24(1), payload: []byte("defgh")},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, d.write(&buf))
	require.Equal(t, buf.Len(), d.sizeInBytes())

	hdr, err := readDatagramHeader(&buf)
	require.NoError(t, err)
	require.Equal(t, d.header, hdr)

	first, err := readInternalPacket(&buf, d.packets[0].created)
	require.NoError(t, err)
	require.Equal(t, d.packets[0], first)

	second, err := readInternalPacket(&buf, d.packets[1].created)
	require.NoError(t, err)
	require.Equal(t, d.packets[1], second)
}
