package raknet

import "net"

// EventKind discriminates the values a Connection or Peer surfaces to its
// caller through the event channel.
type EventKind uint8

const (
	// EventSendReceiptAcked fires once per receipt-tagged packet whose
	// containing datagram has been acknowledged by the peer.
	EventSendReceiptAcked EventKind = iota
	// EventSendReceiptLoss fires once per receipt-tagged packet that was
	// discarded rather than resent (an unreliable send that timed out).
	EventSendReceiptLoss
	// EventIncomingConnection fires once the first datagram from a remote
	// address that completed the offline handshake is processed without
	// error, marking its Connection connected.
	EventIncomingConnection
	// EventPacket fires for every payload the reliability layer delivers
	// to the application, in delivery order.
	EventPacket
	// EventDisconnected fires when the manager drops a connection that has
	// timed out; there is no other path that drops a connection.
	EventDisconnected
)

// Event is the single type carried over a Peer's event channel; callers
// switch on Kind and read the field(s) that kind populates.
type Event struct {
	Kind       EventKind
	RemoteAddr net.Addr
	GUID       uint64
	Receipt    uint32
	Payload    []byte
}
