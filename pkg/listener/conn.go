package listener

import (
	"net"
	"net/netip"
	"time"

	"github.com/gate-protocol/listener-go/pkg/channel"
)

// Conn is an accepted client connection: a bidirectional byte stream
// and the decoded peer address. The stream is independently owned by
// the caller; the listener holds no reference to it after Accept
// returns.
type Conn struct {
	// Stream is the bidirectional byte channel to the client.
	Stream channel.Stream

	// PeerAddr is the client's socket address as reconstructed from
	// the accept record (see wire.UnpackAddr for the IPv4/IPv6
	// discrimination caveat).
	PeerAddr netip.AddrPort

	local netip.AddrPort
}

// NetConn wraps the connection as a net.Conn so it can feed APIs like
// net/http. Deadlines are not supported by channel streams; the
// deadline methods return ErrNoDeadline.
func (c *Conn) NetConn() net.Conn {
	return &netConn{conn: c}
}

type netConn struct {
	conn *Conn
}

func (n *netConn) Read(p []byte) (int, error)  { return n.conn.Stream.Read(p) }
func (n *netConn) Write(p []byte) (int, error) { return n.conn.Stream.Write(p) }
func (n *netConn) Close() error                { return n.conn.Stream.Close() }

func (n *netConn) LocalAddr() net.Addr {
	return net.TCPAddrFromAddrPort(n.conn.local)
}

func (n *netConn) RemoteAddr() net.Addr {
	return net.TCPAddrFromAddrPort(n.conn.PeerAddr)
}

func (n *netConn) SetDeadline(time.Time) error      { return ErrNoDeadline }
func (n *netConn) SetReadDeadline(time.Time) error  { return ErrNoDeadline }
func (n *netConn) SetWriteDeadline(time.Time) error { return ErrNoDeadline }

// Compile-time interface satisfaction check.
var _ net.Conn = (*netConn)(nil)
