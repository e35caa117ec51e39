package raknet

import (
	"encoding/binary"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// commandKind is the small vocabulary the application can use to steer the
// peer's loop thread from the outside.
type commandKind uint8

const (
	commandProcessNow commandKind = iota
	commandSetOfflinePingResponse
	commandStopProcessing
)

type command struct {
	kind     commandKind
	pingResp []byte
}

// Peer is the public handle to one RakNet endpoint: bind it to a local
// address, start its processing loop, then exchange commands and events
// with it exclusively through the two channels it hands back. Per §5 of the
// design, there are no locks in the hot path — every mutation of manager
// state happens inside the loop goroutine started by StartProcessing.
type Peer struct {
	manager *manager
	socket  Socket
	guid    uint64
	log     *logrus.Entry

	commands chan command
	events   chan Event
	stopped  chan struct{}
}

// bind opens a UDP socket at addr and constructs a Peer ready to process.
// The peer's GUID is derived from a fresh UUID's first 8 bytes, giving
// better collision resistance than a bare random 64-bit read.
func bind(addr string, cfg Config, metrics *Metrics) (*Peer, error) {
	socket, err := bindUDP(addr)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	guid := binary.BigEndian.Uint64(id[:8])

	log := logrus.NewEntry(logrus.StandardLogger())
	m := newManager(socket, guid, cfg, metrics, log)

	return &Peer{
		manager:  m,
		socket:   socket,
		guid:     guid,
		log:      log,
		commands: make(chan command, 8),
		events:   make(chan Event, 256),
		stopped:  make(chan struct{}),
	}, nil
}

// Bind is the exported constructor: bind(addr) → Peer.
func Bind(addr string, cfg Config, metrics *Metrics) (*Peer, error) {
	return bind(addr, cfg, metrics)
}

// GUID returns this peer's locally generated 64-bit identifier.
func (p *Peer) GUID() uint64 {
	return p.guid
}

// CommandSender returns the channel used to steer the processing loop.
func (p *Peer) CommandSender() chan<- command {
	return p.commands
}

// EventReceiver returns the channel the processing loop delivers events on.
func (p *Peer) EventReceiver() <-chan Event {
	return p.events
}

// SetOfflinePingResponse updates the bytes echoed back in an unconnected
// pong, via the command channel so the change takes effect inside the loop
// thread rather than racing it.
func (p *Peer) SetOfflinePingResponse(b []byte) {
	p.commands <- command{kind: commandSetOfflinePingResponse, pingResp: b}
}

// ProcessNow wakes the loop early instead of waiting out its bounded sleep.
func (p *Peer) ProcessNow() {
	select {
	case p.commands <- command{kind: commandProcessNow}:
	default:
	}
}

// Send enqueues a message for the connection at addr, if one exists, at the
// given priority, reliability, and ordering channel.
func (p *Peer) Send(addr net.Addr, priority Priority, reliability Reliability, channel uint8, payload []byte) {
	p.manager.send(addr, priority, reliability.kind(), channel, nil, payload)
}

// StartProcessing launches the loop goroutine: alternating process(now)
// with a bounded sleep (interval, default 1ms), early-woken by any command.
func (p *Peer) StartProcessing(interval time.Duration) {
	if interval <= 0 {
		interval = p.manager.cfg.ProcessInterval
	}
	go p.loop(interval)
}

func (p *Peer) loop(interval time.Duration) {
	defer close(p.stopped)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case cmd := <-p.commands:
			switch cmd.kind {
			case commandStopProcessing:
				p.drainFinalEvents()
				return
			case commandSetOfflinePingResponse:
				p.manager.setOfflinePingResponse(cmd.pingResp)
			case commandProcessNow:
			}
			p.runOnce()
		case <-ticker.C:
			p.runOnce()
		}
	}
}

func (p *Peer) runOnce() {
	for _, ev := range p.manager.process(time.Now()) {
		select {
		case p.events <- ev:
		default:
			p.log.Warn("event channel full, dropping event")
		}
	}
}

func (p *Peer) drainFinalEvents() {
	for _, ev := range p.manager.process(time.Now()) {
		select {
		case p.events <- ev:
		default:
		}
	}
}

// StopProcessing requests the loop return at its next iteration boundary.
// In-flight datagrams already handed to the socket are not revoked.
func (p *Peer) StopProcessing() {
	p.commands <- command{kind: commandStopProcessing}
	<-p.stopped
	p.socket.Close()
}
