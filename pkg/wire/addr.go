package wire

import "net/netip"

// PackAddr packs a socket address into the four 32-bit words and port
// carried by an accept record.
//
// IPv4 addresses occupy word a (big-endian byte order within the word)
// with b, c and d zero. IPv6 addresses fill a..d in order, each word
// holding two consecutive 16-bit groups, high group in the high half.
func PackAddr(addr netip.AddrPort) (a, b, c, d uint32, port uint16) {
	ip := addr.Addr()
	if !ip.IsValid() {
		return 0, 0, 0, 0, addr.Port()
	}
	if ip.Is4() || ip.Is4In6() {
		v4 := ip.As4()
		a = uint32(v4[0])<<24 | uint32(v4[1])<<16 | uint32(v4[2])<<8 | uint32(v4[3])
		return a, 0, 0, 0, addr.Port()
	}

	v6 := ip.As16()
	words := [4]uint32{}
	for i := range words {
		o := i * 4
		words[i] = uint32(v6[o])<<24 | uint32(v6[o+1])<<16 | uint32(v6[o+2])<<8 | uint32(v6[o+3])
	}
	return words[0], words[1], words[2], words[3], addr.Port()
}

// UnpackAddr reconstructs a socket address from the packed wire form.
//
// The discrimination rule is a heuristic, not a tagged format: if b, c
// and d are all zero the address is interpreted as IPv4 held in a.
// An IPv6 address whose low 96 bits are zero therefore cannot be
// represented and decodes as IPv4. The original protocol does not
// disambiguate; the heuristic is preserved exactly for compatibility.
// Callers must not rely on round-tripping such addresses.
func UnpackAddr(a, b, c, d uint32, port uint16) netip.AddrPort {
	if b == 0 && c == 0 && d == 0 {
		v4 := [4]byte{byte(a >> 24), byte(a >> 16), byte(a >> 8), byte(a)}
		return netip.AddrPortFrom(netip.AddrFrom4(v4), port)
	}

	var v6 [16]byte
	for i, w := range [4]uint32{a, b, c, d} {
		o := i * 4
		v6[o] = byte(w >> 24)
		v6[o+1] = byte(w >> 16)
		v6[o+2] = byte(w >> 8)
		v6[o+3] = byte(w)
	}
	// Scope and flow information are not carried on the wire.
	return netip.AddrPortFrom(netip.AddrFrom16(v6), port)
}
