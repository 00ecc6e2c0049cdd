// Package listener implements the guest-side TLS connection-listener
// abstraction over a host capability channel.
//
// A Listener is created by Bind, which performs one call/response
// exchange with the host and yields the host-assigned hostname and
// bound port. Connections are then drawn with Accept, which consumes
// fixed-size accept records from a receive stream, tolerating arbitrary
// fragmentation of delivered bytes.
//
// # Lifecycle
//
//	Unbound ── Bind ──► Bound ── Split ──► (Acceptor, CloseHandle)
//	                      │                     │
//	                   Accept*               Accept* ── Close ──► Closed
//
// Split irreversibly divides a Listener into an Acceptor (receive-only)
// and a CloseHandle (close-only), the pair sharing one underlying
// channel. Closing the CloseHandle is the sole cancellation mechanism:
// it resolves any pending Accept as Closed and makes every later Accept
// resolve as Closed too. The core has no timeouts and never retries;
// every failure is a typed BindError or AcceptError.
//
// The core implements no TLS, sockets or DNS. Those are performed by
// the host; this package only encodes requests for them and decodes
// their results.
package listener
