package raknet

import (
	"net"
	"time"
)

// connectionState is the small state machine a connection moves through
// between the offline handshake completing and either full establishment
// or a timeout.
type connectionState uint8

const (
	stateUnverifiedSender connectionState = iota
	stateConnected
)

// Connection is one established (or establishing) peer: the per-connection
// reliability engine plus the bookkeeping the manager needs to drive it —
// remote address, negotiated MTU, and the timestamps that decide when it's
// gone stale. Unlike the teacher's Session, state here is never touched
// concurrently: every Connection is owned exclusively by the manager
// goroutine that calls process(), so no mutex guards these fields.
type Connection struct {
	RemoteAddr net.Addr
	RemoteGUID uint64
	MTU        int

	state          connectionState
	connectionTime time.Time
	lastActivity   time.Time

	reliability *reliabilityLayer
}

func newConnection(addr net.Addr, guid uint64, mtu int, cfg Config, metrics *Metrics, now time.Time) *Connection {
	return &Connection{
		RemoteAddr:     addr,
		RemoteGUID:     guid,
		MTU:            mtu,
		state:          stateUnverifiedSender,
		connectionTime: now,
		lastActivity:   now,
		reliability:    newReliabilityLayer(mtu, cfg, metrics),
	}
}

// markConnected transitions a freshly created connection once its first
// real datagram arrives, proving the remote side can actually receive our
// replies (not just spoof a source address on the handshake).
func (c *Connection) markConnected() {
	c.state = stateConnected
}

func (c *Connection) isConnected() bool {
	return c.state == stateConnected
}

// handleDatagram feeds one received UDP payload into the reliability layer
// and bumps the idle timer.
func (c *Connection) handleDatagram(data []byte, now time.Time) ([]Event, error) {
	c.lastActivity = now
	return c.reliability.handleIncomingDatagram(data, now)
}

// send enqueues an outbound user message at the given priority, reliability
// kind, and ordering channel.
func (c *Connection) send(priority Priority, kind packetKind, channel uint8, receipt *uint32, payload []byte) {
	c.reliability.send(priority, kind, channel, receipt, payload)
}

// update runs the reliability layer's periodic maintenance and returns the
// raw datagrams it produced, ready to hand to the socket.
func (c *Connection) update(now time.Time) ([][]byte, []Event) {
	return c.reliability.update(now)
}

// timedOut reports whether this connection has been idle longer than
// timeout, using the handshake's completion state to pick between the
// (shorter) unverified-sender grace period and the full connected timeout.
func (c *Connection) timedOut(now time.Time, incomingTimeout, connectedTimeout time.Duration) bool {
	timeout := connectedTimeout
	if !c.isConnected() {
		timeout = incomingTimeout
	}
	return now.Sub(c.lastActivity) > timeout
}
