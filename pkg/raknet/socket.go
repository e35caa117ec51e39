package raknet

import (
	"errors"
	"net"
	"time"
)

// Socket is the datagram transport the manager drains each process() call.
// It is an external collaborator: the reliability layer only needs
// non-blocking receive and addressed send, so tests can substitute an
// in-memory fake without touching a real UDP socket.
type Socket interface {
	// ReadFrom reads one datagram into b without blocking. It returns
	// (0, nil, false, nil) when nothing is currently available.
	ReadFrom(b []byte) (n int, addr net.Addr, ok bool, err error)
	WriteTo(b []byte, addr net.Addr) error
	Close() error
}

// udpSocket is Socket backed by a real net.UDPConn in non-blocking mode.
type udpSocket struct {
	conn *net.UDPConn
}

// bindUDP opens a UDP socket at addr for Socket use.
func bindUDP(addr string) (*udpSocket, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, err
	}
	return &udpSocket{conn: conn}, nil
}

func (s *udpSocket) ReadFrom(b []byte) (int, net.Addr, bool, error) {
	if err := s.conn.SetReadDeadline(time.Now()); err != nil {
		return 0, nil, false, err
	}
	n, addr, err := s.conn.ReadFrom(b)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return 0, nil, false, nil
		}
		return 0, nil, false, err
	}
	return n, addr, true, nil
}

func (s *udpSocket) WriteTo(b []byte, addr net.Addr) error {
	_, err := s.conn.WriteTo(b, addr)
	return err
}

func (s *udpSocket) Close() error {
	return s.conn.Close()
}
