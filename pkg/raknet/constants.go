package raknet

import "time"

// offlineMessageMagic prefixes every offline handshake message; a mismatch
// means the payload wasn't meant for this protocol at all.
var offlineMessageMagic = [16]byte{
	0x00, 0xFF, 0xFF, 0x00, 0xFE, 0xFE, 0xFE, 0xFE,
	0xFD, 0xFD, 0xFD, 0xFD, 0x12, 0x34, 0x56, 0x78,
}

// ProtocolVersion is exchanged during the handshake; a mismatch elicits
// IncompatibleProtocolVersion rather than a silent drop.
const ProtocolVersion uint8 = 10

const (
	udpHeaderSize  = 28
	MaximumMTU     = 1492
	minimumDatagramMTU = 1 + 3 // flag byte + 24-bit datagram number, the smallest a PACKET datagram header can be
)

// Offline handshake message ids (first byte of payload).
const (
	msgIDUnconnectedPing             byte = 0x01
	msgIDOpenConnectionRequest1      byte = 0x05
	msgIDOpenConnectionReply1        byte = 0x06
	msgIDOpenConnectionRequest2      byte = 0x07
	msgIDOpenConnectionReply2        byte = 0x08
	msgIDIncompatibleProtocolVersion byte = 0x19
	msgIDUnconnectedPong             byte = 0x1C
)

// defaultMaxPingResponseBytes bounds the application-supplied payload
// attached to an Unconnected Pong, absent an explicit Config override.
const defaultMaxPingResponseBytes = 399

// DefaultTAck is how long an outgoing ACK batcher waits for more numbers
// to coalesce before it must flush.
const DefaultTAck = 10 * time.Millisecond

// DefaultIncomingConnectionTimeout bounds how long a connection may sit in
// UnverifiedSender before the manager drops it.
const DefaultIncomingConnectionTimeout = 10 * time.Second

// DefaultConnectedTimeout bounds how long a Connected connection may go
// without traffic before the manager considers it dead.
const DefaultConnectedTimeout = 30 * time.Second

// DefaultProcessInterval is how long the peer's processing loop sleeps
// between process() calls when no command wakes it early.
const DefaultProcessInterval = 1 * time.Millisecond
