package raknet

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
)

// writeAddr encodes a UDP address in RakNet's wire format: IPv4 addresses are
// written byte-inverted (a RakNet historical quirk carried through to stay
// wire-compatible), IPv6 addresses carry the extra sockaddr_in6 fields
// untouched.
func writeAddr(b *bytes.Buffer, addr *net.UDPAddr) error {
	if ip4 := addr.IP.To4(); ip4 != nil {
		if err := b.WriteByte(0x04); err != nil {
			return err
		}
		for _, octet := range ip4 {
			if err := b.WriteByte(^octet); err != nil {
				return err
			}
		}
		return binary.Write(b, binary.BigEndian, uint16(addr.Port))
	}

	ip16 := addr.IP.To16()
	if ip16 == nil {
		return fmt.Errorf("%w: address %v is neither IPv4 nor IPv6", ErrInvalidIPVersion, addr.IP)
	}
	if err := b.WriteByte(0x06); err != nil {
		return err
	}
	if err := binary.Write(b, binary.LittleEndian, uint16(24)); err != nil { // address family
		return err
	}
	if err := binary.Write(b, binary.BigEndian, uint16(addr.Port)); err != nil {
		return err
	}
	if err := binary.Write(b, binary.LittleEndian, uint32(0)); err != nil { // flowinfo
		return err
	}
	if _, err := b.Write(ip16); err != nil {
		return err
	}
	zone := uint32(0)
	if addr.Zone != "" {
		if iface, err := net.InterfaceByName(addr.Zone); err == nil {
			zone = uint32(iface.Index)
		}
	}
	return binary.Write(b, binary.LittleEndian, zone)
}

// readAddr decodes a UDP address written by writeAddr.
func readAddr(b *bytes.Buffer) (*net.UDPAddr, error) {
	version, err := b.ReadByte()
	if err != nil {
		return nil, ErrInvalidHeader
	}
	switch version {
	case 0x04:
		var raw [4]byte
		if _, err := readFull(b, raw[:]); err != nil {
			return nil, err
		}
		ip := make(net.IP, 4)
		for i, octet := range raw {
			ip[i] = ^octet
		}
		var port uint16
		if err := binary.Read(b, binary.BigEndian, &port); err != nil {
			return nil, ErrInvalidHeader
		}
		return &net.UDPAddr{IP: ip, Port: int(port)}, nil
	case 0x06:
		var family, port uint16
		var flowinfo, scope uint32
		if err := binary.Read(b, binary.LittleEndian, &family); err != nil {
			return nil, ErrInvalidHeader
		}
		if err := binary.Read(b, binary.BigEndian, &port); err != nil {
			return nil, ErrInvalidHeader
		}
		if err := binary.Read(b, binary.LittleEndian, &flowinfo); err != nil {
			return nil, ErrInvalidHeader
		}
		ip := make(net.IP, 16)
		if _, err := readFull(b, ip); err != nil {
			return nil, err
		}
		if err := binary.Read(b, binary.LittleEndian, &scope); err != nil {
			return nil, ErrInvalidHeader
		}
		return &net.UDPAddr{IP: ip, Port: int(port)}, nil
	default:
		return nil, ErrInvalidIPVersion
	}
}
