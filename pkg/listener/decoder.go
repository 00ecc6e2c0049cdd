package listener

import (
	"github.com/gate-protocol/listener-go/pkg/wire"
)

// recordAssembler accumulates fragments of one accept record. The
// receive primitive may hand back any number of bytes per delivery;
// the assembler appends each fragment and reports how many bytes are
// still desired, which doubles as the backpressure feedback keeping
// the host from delivering bytes of a later record.
//
// An assembler is scoped to a single Accept call. Record boundaries
// align with call boundaries on the wire, so nothing is carried over.
type recordAssembler struct {
	buf [wire.RecordSize]byte
	n   int
}

// remaining returns the number of bytes still needed for a full record.
func (a *recordAssembler) remaining() int {
	return wire.RecordSize - a.n
}

// complete reports whether a full record has been accumulated.
func (a *recordAssembler) complete() bool {
	return a.n == wire.RecordSize
}

// feed appends one delivered fragment and returns the bytes still
// desired. Bytes beyond the record boundary are never consumed; the
// delivery contract prevents the host from sending them once 0 has
// been reported.
func (a *recordAssembler) feed(p []byte) int {
	c := copy(a.buf[a.n:], p)
	a.n += c
	return a.remaining()
}

// record decodes the accumulated bytes. Must only be called once
// complete() is true; a partial record is never interpreted.
func (a *recordAssembler) record() (wire.AcceptRecord, error) {
	return wire.DecodeAcceptRecord(a.buf[:a.n])
}
