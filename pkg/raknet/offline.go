package raknet

import (
	"bytes"
	"encoding/binary"
	"net"
	"time"
)

// pendingConnection is handed back to the connection manager when an Open
// Connection Request 2 completes the handshake, carrying everything needed
// to create the Connection.
type pendingConnection struct {
	remoteAddr net.Addr
	guid       uint64
	mtu        int
}

// offlineHandler answers the pre-connection handshake: pings, and the two
// round trips of Open Connection Request/Reply that negotiate MTU and
// protocol version before a Connection exists.
type offlineHandler struct {
	guid                 uint64
	maximumMTU           int
	maxPingResponseBytes int
	pingResponse         []byte
}

func newOfflineHandler(guid uint64, maximumMTU int, maxPingResponseBytes int) *offlineHandler {
	if maximumMTU <= 0 || maximumMTU > MaximumMTU {
		maximumMTU = MaximumMTU
	}
	if maxPingResponseBytes <= 0 {
		maxPingResponseBytes = defaultMaxPingResponseBytes
	}
	return &offlineHandler{guid: guid, maximumMTU: maximumMTU, maxPingResponseBytes: maxPingResponseBytes}
}

// setPingResponse sets the payload an Unconnected Pong attaches, truncated
// to maxPingResponseBytes.
func (h *offlineHandler) setPingResponse(b []byte) {
	if len(b) > h.maxPingResponseBytes {
		b = b[:h.maxPingResponseBytes]
	}
	h.pingResponse = b
}

// handle inspects one received payload. consumed is true when the payload
// was (or should be treated as) an offline message; response, if non-nil,
// is the datagram to send back; conn is non-nil exactly when this call
// completed the handshake.
func (h *offlineHandler) handle(payload []byte, now time.Time) (response []byte, conn *pendingConnection, consumed bool) {
	if len(payload) == 0 {
		return nil, nil, true
	}
	if len(payload) <= 2 {
		return nil, nil, true
	}

	switch payload[0] {
	case msgIDUnconnectedPing:
		return h.handlePing(payload)
	case msgIDOpenConnectionRequest1:
		return h.handleOpenConnectionRequest1(payload)
	case msgIDOpenConnectionRequest2:
		return h.handleOpenConnectionRequest2(payload)
	default:
		return nil, nil, false
	}
}

func verifyMagic(b *bytes.Buffer) error {
	var got [16]byte
	if _, err := readFull(b, got[:]); err != nil {
		return err
	}
	if got != offlineMessageMagic {
		return ErrCompareFailed
	}
	return nil
}

func (h *offlineHandler) handlePing(payload []byte) (response []byte, conn *pendingConnection, consumed bool) {
	b := bytes.NewBuffer(payload[1:])
	var pingTime uint64
	if err := binary.Read(b, binary.BigEndian, &pingTime); err != nil {
		return nil, nil, true
	}
	if err := verifyMagic(b); err != nil {
		return nil, nil, true
	}

	var out bytes.Buffer
	out.WriteByte(msgIDUnconnectedPong)
	binary.Write(&out, binary.BigEndian, pingTime)
	binary.Write(&out, binary.BigEndian, h.guid)
	out.Write(offlineMessageMagic[:])
	out.Write(h.pingResponse)
	return out.Bytes(), nil, true
}

func (h *offlineHandler) handleOpenConnectionRequest1(payload []byte) (response []byte, conn *pendingConnection, consumed bool) {
	b := bytes.NewBuffer(payload[1:])
	if err := verifyMagic(b); err != nil {
		return nil, nil, true
	}
	clientProtocol, err := b.ReadByte()
	if err != nil {
		return nil, nil, true
	}
	padding := b.Len()

	if clientProtocol != ProtocolVersion {
		var out bytes.Buffer
		out.WriteByte(msgIDIncompatibleProtocolVersion)
		out.WriteByte(ProtocolVersion)
		out.Write(offlineMessageMagic[:])
		binary.Write(&out, binary.BigEndian, h.guid)
		return out.Bytes(), nil, true
	}

	mtu := udpHeaderSize + 1 + 16 + 1 + padding
	if mtu > h.maximumMTU {
		mtu = h.maximumMTU
	}

	var out bytes.Buffer
	out.WriteByte(msgIDOpenConnectionReply1)
	out.Write(offlineMessageMagic[:])
	binary.Write(&out, binary.BigEndian, h.guid)
	out.WriteByte(0) // no cookie
	binary.Write(&out, binary.BigEndian, uint16(mtu))
	return out.Bytes(), nil, true
}

func (h *offlineHandler) handleOpenConnectionRequest2(payload []byte) (response []byte, conn *pendingConnection, consumed bool) {
	b := bytes.NewBuffer(payload[1:])
	if err := verifyMagic(b); err != nil {
		return nil, nil, true
	}
	bindingAddr, err := readAddr(b)
	if err != nil {
		return nil, nil, true
	}
	var mtu uint16
	if err := binary.Read(b, binary.BigEndian, &mtu); err != nil {
		return nil, nil, true
	}
	var clientGUID uint64
	if err := binary.Read(b, binary.BigEndian, &clientGUID); err != nil {
		return nil, nil, true
	}

	var out bytes.Buffer
	out.WriteByte(msgIDOpenConnectionReply2)
	out.Write(offlineMessageMagic[:])
	binary.Write(&out, binary.BigEndian, h.guid)
	if err := writeAddr(&out, bindingAddr); err != nil {
		return nil, nil, true
	}
	binary.Write(&out, binary.BigEndian, mtu)
	out.WriteByte(0) // no encryption

	return out.Bytes(), &pendingConnection{guid: clientGUID, mtu: int(mtu)}, true
}
