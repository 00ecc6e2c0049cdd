package wire

import (
	"encoding/binary"
	"fmt"
	"net/netip"
)

// Accept record layout (little-endian, packed):
//
//	offset 0   error   int16
//	offset 2   connID  uint32
//	offset 6   addr    4×uint32 (packed socket address, see addr.go)
//	offset 22  port    uint16
const (
	// RecordSize is the exact length of an accept record in bytes.
	// A record must never be decoded from fewer bytes.
	RecordSize = 24

	recordErrorOffset = 0
	recordConnOffset  = 2
	recordAddrOffset  = 6
	recordPortOffset  = 22
)

// AcceptRecord describes the outcome of one inbound connection attempt.
type AcceptRecord struct {
	// Error is the raw accept error code. AcceptCodeNone means a
	// connection was accepted.
	Error AcceptCode

	// ConnID is the opaque stream id of the accepted connection.
	// Meaningful only when Error is AcceptCodeNone.
	ConnID uint32

	// Peer is the client's socket address.
	// Meaningful only when Error is AcceptCodeNone.
	Peer netip.AddrPort
}

// DecodeAcceptRecord decodes one complete accept record.
// data must be exactly RecordSize bytes.
func DecodeAcceptRecord(data []byte) (AcceptRecord, error) {
	if len(data) != RecordSize {
		return AcceptRecord{}, fmt.Errorf("accept record must be %d bytes, got %d", RecordSize, len(data))
	}

	code := AcceptCode(binary.LittleEndian.Uint16(data[recordErrorOffset:]))
	connID := binary.LittleEndian.Uint32(data[recordConnOffset:])

	a := binary.LittleEndian.Uint32(data[recordAddrOffset:])
	b := binary.LittleEndian.Uint32(data[recordAddrOffset+4:])
	c := binary.LittleEndian.Uint32(data[recordAddrOffset+8:])
	d := binary.LittleEndian.Uint32(data[recordAddrOffset+12:])
	port := binary.LittleEndian.Uint16(data[recordPortOffset:])

	return AcceptRecord{
		Error:  code,
		ConnID: connID,
		Peer:   UnpackAddr(a, b, c, d, port),
	}, nil
}

// AppendAcceptRecord appends the wire form of r to dst.
// Used by hosts and test harnesses; the guest side only decodes.
func AppendAcceptRecord(dst []byte, r AcceptRecord) []byte {
	var buf [RecordSize]byte
	binary.LittleEndian.PutUint16(buf[recordErrorOffset:], uint16(r.Error))
	binary.LittleEndian.PutUint32(buf[recordConnOffset:], r.ConnID)

	a, b, c, d, port := PackAddr(r.Peer)
	binary.LittleEndian.PutUint32(buf[recordAddrOffset:], a)
	binary.LittleEndian.PutUint32(buf[recordAddrOffset+4:], b)
	binary.LittleEndian.PutUint32(buf[recordAddrOffset+8:], c)
	binary.LittleEndian.PutUint32(buf[recordAddrOffset+12:], d)
	binary.LittleEndian.PutUint16(buf[recordPortOffset:], port)

	return append(dst, buf[:]...)
}
