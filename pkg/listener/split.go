package listener

import (
	"context"
)

// Acceptor is the receive-only view of a split Listener. It supports
// repeated Accept calls, serialized (one outstanding at a time), and
// carries a copy of the binding's address information.
type Acceptor struct {
	core *acceptCore
}

// Hostname returns the host-assigned fully-qualified DNS name.
func (a *Acceptor) Hostname() string {
	return a.core.binding.Hostname
}

// Port returns the bound listening port.
func (a *Acceptor) Port() uint16 {
	return a.core.binding.Port
}

// Accept resolves the next client connection. Once the paired
// CloseHandle has been closed - before this call or while it is
// suspended - Accept resolves with an AcceptError of kind
// AcceptClosed, and so does every subsequent call.
func (a *Acceptor) Accept(ctx context.Context) (*Conn, error) {
	return a.core.accept(ctx)
}

// CloseHandle is the close-only capability paired 1:1 with an Acceptor
// from the same Split. Closing it is a one-shot, irreversible signal;
// it may be called from any goroutine, concurrently with a pending
// Accept on the paired Acceptor.
type CloseHandle struct {
	core *acceptCore
}

// Close arms the closed condition. The next Accept on the paired
// Acceptor - whether already suspended or called afterwards - resolves
// as AcceptClosed. Close is idempotent.
func (h *CloseHandle) Close() error {
	h.core.markClosed("close handle released")
	return nil
}
