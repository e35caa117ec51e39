package raknet

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// writeUint24 writes v as a little-endian 24-bit integer.
func writeUint24(b *bytes.Buffer, v U24) error {
	var buf [3]byte
	v.putUint24LE(buf[:])
	_, err := b.Write(buf[:])
	return err
}

// readUint24 reads a little-endian 24-bit integer.
func readUint24(b *bytes.Buffer) (U24, error) {
	var buf [3]byte
	if _, err := readFull(b, buf[:]); err != nil {
		return 0, err
	}
	return u24FromBytesLE(buf[:]), nil
}

// readFull reads exactly len(buf) bytes, returning ErrInvalidHeader rather
// than io.EOF/io.ErrUnexpectedEOF so callers see one consistent codec error.
func readFull(b *bytes.Buffer, buf []byte) (int, error) {
	n, err := b.Read(buf)
	if err != nil || n != len(buf) {
		return n, ErrInvalidHeader
	}
	return n, nil
}

// writeFloat32BE writes f as a big-endian IEEE-754 single precision float.
func writeFloat32BE(b *bytes.Buffer, f float32) error {
	return binary.Write(b, binary.BigEndian, math.Float32bits(f))
}

// readFloat32BE reads a big-endian IEEE-754 single precision float.
func readFloat32BE(b *bytes.Buffer) (float32, error) {
	var bits uint32
	if err := binary.Read(b, binary.BigEndian, &bits); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}
	return math.Float32frombits(bits), nil
}
