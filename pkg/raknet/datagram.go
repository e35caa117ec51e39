package raknet

import (
	"bytes"
)

const (
	flagValid    = 0x80
	flagACK      = 0x40
	flagHasRate  = 0x20 // ACK class only: data-arrival-rate field follows
	flagNACK     = 0x20 // packet class only: NACK, no further fields
	flagPair     = 0x10
	flagContinuous = 0x08
	flagNeedsRate  = 0x04
)

// datagramKind distinguishes the three shapes a received datagram can take.
type datagramKind uint8

const (
	datagramACK datagramKind = iota
	datagramNACK
	datagramPacket
)

// datagramHeader is the 1- or 4-byte envelope in front of a packet datagram,
// or the flag byte in front of an ACK/NACK range list.
type datagramHeader struct {
	kind datagramKind

	// ACK-class only.
	hasDataArrivalRate bool
	dataArrivalRate    float32

	// packet-class only.
	number               U24
	isPacketPair         bool
	isContinuousSend     bool
	needsDataArrivalRate bool
}

// writeAckHeader writes the flag byte (and optional data-arrival-rate field)
// in front of an ACK range list.
func writeAckHeader(b *bytes.Buffer, rate *float32) error {
	flags := byte(flagValid | flagACK)
	if rate != nil {
		flags |= flagHasRate
	}
	if err := b.WriteByte(flags); err != nil {
		return err
	}
	if rate != nil {
		return writeFloat32BE(b, *rate)
	}
	return nil
}

// writeNackHeader writes the flag byte in front of a NACK range list.
func writeNackHeader(b *bytes.Buffer) error {
	return b.WriteByte(flagValid | flagNACK)
}

// writePacketDatagramHeader writes the 4-byte header in front of a packet
// datagram's internal packets.
func writePacketDatagramHeader(b *bytes.Buffer, h datagramHeader) error {
	flags := byte(flagValid)
	if h.isPacketPair {
		flags |= flagPair
	}
	if h.isContinuousSend {
		flags |= flagContinuous
	}
	if h.needsDataArrivalRate {
		flags |= flagNeedsRate
	}
	if err := b.WriteByte(flags); err != nil {
		return err
	}
	return writeUint24(b, h.number)
}

// readDatagramHeader parses the first byte (and any class-specific fields)
// of a received datagram, classifying it as ACK, NACK, or PACKET.
func readDatagramHeader(b *bytes.Buffer) (datagramHeader, error) {
	flags, err := b.ReadByte()
	if err != nil {
		return datagramHeader{}, ErrInvalidHeader
	}
	if flags&flagValid == 0 {
		return datagramHeader{}, ErrInvalidHeader
	}

	if flags&flagACK != 0 {
		h := datagramHeader{kind: datagramACK}
		if flags&flagHasRate != 0 {
			rate, err := readFloat32BE(b)
			if err != nil {
				return datagramHeader{}, err
			}
			h.hasDataArrivalRate = true
			h.dataArrivalRate = rate
		}
		return h, nil
	}

	if flags&flagNACK != 0 {
		return datagramHeader{kind: datagramNACK}, nil
	}

	number, err := readUint24(b)
	if err != nil {
		return datagramHeader{}, err
	}
	return datagramHeader{
		kind:                 datagramPacket,
		number:               number,
		isPacketPair:         flags&flagPair != 0,
		isContinuousSend:     flags&flagContinuous != 0,
		needsDataArrivalRate: flags&flagNeedsRate != 0,
	}, nil
}

// packetDatagram is an outbound collection of internal packets sealed behind
// one header, built up to the MTU ceiling by the priority scheduler.
type packetDatagram struct {
	header  datagramHeader
	packets []*internalPacket
}

// sizeInBytes is the header plus every packet's wire size, used while
// packing to decide whether one more packet still fits under the MTU.
func (d *packetDatagram) sizeInBytes() int {
	size := 4 // flags + 24-bit datagram number
	for _, p := range d.packets {
		size += p.sizeInBytes()
	}
	return size
}

// write serializes the full packet datagram: header then each packet in
// send order.
func (d *packetDatagram) write(b *bytes.Buffer) error {
	if err := writePacketDatagramHeader(b, d.header); err != nil {
		return err
	}
	for _, p := range d.packets {
		if err := p.write(b); err != nil {
			return err
		}
	}
	return nil
}
