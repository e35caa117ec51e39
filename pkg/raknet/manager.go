package raknet

import (
	"net"
	"time"

	"github.com/sirupsen/logrus"
)

// receiveBufferSize is sized to the largest datagram the manager will ever
// be asked to parse.
const receiveBufferSize = MaximumMTU

// manager owns the datagram socket, the address-keyed connection table, and
// the offline handshake handler. It is driven entirely by process(now) —
// see the teacher's Server.listen/updateLoop/sessionCleanupLoop for the
// goroutine shape the public Peer wraps this in.
type manager struct {
	socket      Socket
	offline     *offlineHandler
	connections map[string]*Connection
	cfg         Config
	metrics     *Metrics
	log         *logrus.Entry

	recvBuf []byte
}

func newManager(socket Socket, guid uint64, cfg Config, metrics *Metrics, log *logrus.Entry) *manager {
	offline := newOfflineHandler(guid, cfg.MaximumMTU, cfg.MaxPingResponseBytes)
	if metrics == nil {
		metrics = NewMetrics("raknet")
	}
	return &manager{
		socket:      socket,
		offline:     offline,
		connections: make(map[string]*Connection),
		cfg:         cfg,
		metrics:     metrics,
		log:         log,
		recvBuf:     make([]byte, receiveBufferSize),
	}
}

// process runs one iteration of the manager's work: drain the socket,
// update every connection, and drop whoever has timed out. It returns
// every event produced this round.
func (m *manager) process(now time.Time) []Event {
	var events []Event

	for {
		n, addr, ok, err := m.socket.ReadFrom(m.recvBuf)
		if err != nil {
			m.log.WithError(err).Error("socket read failed")
			break
		}
		if !ok {
			break
		}
		m.metrics.DatagramsReceived.Inc()
		events = append(events, m.routeIncoming(m.recvBuf[:n], addr, now)...)
	}

	for key, conn := range m.connections {
		datagrams, connEvents := conn.update(now)
		events = append(events, connEvents...)
		for _, d := range datagrams {
			if err := m.socket.WriteTo(d, conn.RemoteAddr); err != nil {
				m.log.WithError(err).WithField("remote_addr", key).Error("socket write failed")
				continue
			}
			m.metrics.DatagramsSent.Inc()
		}
	}

	events = append(events, m.dropTimedOut(now)...)
	return events
}

// routeIncoming tries the offline handshake first; anything it doesn't
// consume is routed to an existing connection keyed by source address, or
// dropped.
func (m *manager) routeIncoming(data []byte, addr net.Addr, now time.Time) []Event {
	response, pending, consumed := m.offline.handle(data, now)
	if consumed {
		if response != nil {
			if err := m.socket.WriteTo(response, addr); err != nil {
				m.log.WithError(err).Error("socket write failed")
			} else {
				m.metrics.DatagramsSent.Inc()
			}
		}
		if pending != nil {
			m.acceptConnection(addr, pending, now)
		}
		return nil
	}

	conn, ok := m.connections[addr.String()]
	if !ok {
		return nil
	}
	events, err := conn.handleDatagram(data, now)
	for i := range events {
		events[i].RemoteAddr = addr
	}
	if err != nil {
		m.log.WithError(err).WithField("remote_addr", addr.String()).Warn("dropping malformed datagram")
		return events
	}
	if !conn.isConnected() {
		conn.markConnected()
		m.log.WithFields(logrus.Fields{"remote_addr": addr.String(), "guid": conn.RemoteGUID}).Info("connection established")
		events = append(events, Event{Kind: EventIncomingConnection, RemoteAddr: addr, GUID: conn.RemoteGUID})
	}
	return events
}

func (m *manager) acceptConnection(addr net.Addr, pending *pendingConnection, now time.Time) {
	conn := newConnection(addr, pending.guid, pending.mtu, m.cfg, m.metrics, now)
	m.connections[addr.String()] = conn
	m.metrics.ActiveConnections.Set(float64(len(m.connections)))
	m.log.WithFields(logrus.Fields{"remote_addr": addr.String(), "guid": pending.guid, "mtu": pending.mtu}).Debug("handshake completed, awaiting first datagram")
}

// dropTimedOut evicts every connection that has gone idle past its timeout,
// emitting an EventDisconnected for each so the application can clean up
// whatever it keeps keyed on that remote address.
func (m *manager) dropTimedOut(now time.Time) []Event {
	var events []Event
	for key, conn := range m.connections {
		if conn.timedOut(now, m.cfg.IncomingConnectionTimeout, m.cfg.ConnectedTimeout) {
			delete(m.connections, key)
			m.log.WithField("remote_addr", key).Info("connection timed out")
			events = append(events, Event{Kind: EventDisconnected, RemoteAddr: conn.RemoteAddr, GUID: conn.RemoteGUID})
		}
	}
	m.metrics.ActiveConnections.Set(float64(len(m.connections)))
	return events
}

// setOfflinePingResponse updates the bytes echoed back in an unconnected
// pong.
func (m *manager) setOfflinePingResponse(b []byte) {
	m.offline.setPingResponse(b)
}

// send looks up the connection for addr and enqueues payload on it. It is a
// no-op if no connection is currently tracked for that address.
func (m *manager) send(addr net.Addr, priority Priority, kind packetKind, channel uint8, receipt *uint32, payload []byte) {
	conn, ok := m.connections[addr.String()]
	if !ok {
		return
	}
	conn.send(priority, kind, channel, receipt, payload)
}
