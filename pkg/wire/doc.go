// Package wire implements the binary wire protocol spoken over the
// host capability channel.
//
// Two encodings coexist:
//   - Bind calls and their responses are CBOR maps with integer keys,
//     encoded deterministically (see codec.go).
//   - Accept records are fixed-layout little-endian binary structures
//     of exactly RecordSize bytes (see accept.go), so the accept stream
//     can be consumed with a byte-counting decoder.
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│  Bind call / Binding (CBOR)    │  one-shot call channel
//	├────────────────────────────────┤
//	│  Accept records (fixed binary) │  streaming receive channel
//	├────────────────────────────────┤
//	│  Host capability channel       │
//	└────────────────────────────────┘
//
// The package also defines the closed sets of wire error codes and the
// packed socket-address representation used by accept records.
package wire
