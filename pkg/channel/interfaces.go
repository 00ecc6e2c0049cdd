package channel

import (
	"context"
	"io"
)

// Channel is a handle to the host capability channel.
// Implementations must be safe for concurrent use.
type Channel interface {
	// Call performs a one-shot request/response exchange. The call
	// suspends until the host replies or ctx is done. An empty (nil or
	// zero-length) response is a valid outcome meaning the host does
	// not implement the requested function.
	Call(ctx context.Context, req []byte) ([]byte, error)

	// InputStream resolves an opaque id to a receive-only stream.
	// Used for the accept record stream of a binding. bufsize is the
	// guest's receive buffer capacity hint in bytes; implementations
	// may buffer up to that much undelivered data.
	InputStream(id uint32, bufsize int) RecvStream

	// Stream resolves an opaque id to a bidirectional byte stream.
	// Used for accepted connections.
	Stream(id uint32) Stream
}

// DeliverFunc consumes one delivered chunk and returns the number of
// bytes still desired. Returning 0 tells the host to stop delivering;
// the host must not hand over bytes belonging to a later record once
// the desired count reaches 0.
type DeliverFunc func(p []byte) (want int)

// RecvStream is a receive-only view of a host stream. It is strictly
// single-consumer: at most one Recv may be in flight at a time.
type RecvStream interface {
	// Recv suspends until the host delivers bytes, then invokes deliver
	// with each chunk (possibly empty, never spanning past the desired
	// count). Recv returns when the desired count reaches 0, when ctx
	// is done, or when the stream is closed by the host. A clean host
	// close is reported as io.EOF.
	Recv(ctx context.Context, want int, deliver DeliverFunc) error

	// Close releases the guest side of the stream.
	// Safe to call concurrently with a pending Recv, which then
	// resolves with io.EOF once delivery stops.
	Close() error
}

// Stream is a bidirectional byte channel to a connected peer.
type Stream = io.ReadWriteCloser
