package hostsim

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"sync"

	"github.com/gate-protocol/listener-go/pkg/channel"
	"github.com/gate-protocol/listener-go/pkg/wire"
)

// Live is a host simulator backed by real loopback TCP listeners.
// Each BindTLS call opens an OS listener on an ephemeral port and the
// accept stream carries one record per inbound TCP connection. The
// response reports the ephemeral port (binding a privileged requested
// port locally is rarely possible) and a hostname under Domain.
type Live struct {
	// Domain is the suffix for assigned hostnames (default "localhost").
	Domain string

	mu         sync.Mutex
	nextListen uint32
	nextConn   uint32
	listens    map[uint32]*liveListen
	conns      map[uint32]net.Conn
	bound      map[string]bool
	closed     bool
}

type liveListen struct {
	ln     net.Listener
	stream *recordStream
}

// NewLive creates a live host simulator.
func NewLive() *Live {
	return &Live{
		Domain:  "localhost",
		listens: make(map[uint32]*liveListen),
		conns:   make(map[uint32]net.Conn),
		bound:   make(map[string]bool),
	}
}

// Call implements channel.Channel.
func (h *Live) Call(ctx context.Context, req []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bind, err := wire.DecodeBindRequest(req)
	if err != nil {
		return nil, err
	}
	if int(bind.AcceptSize) != wire.RecordSize {
		return wire.EncodeBindResponse(wire.Binding{}, wire.BindCodeSizeNotSupported)
	}
	if bind.Name != "" {
		if err := wire.ValidatePrefix(bind.Name); err != nil {
			code := wire.BindCodeInvalidName
			if errors.Is(err, wire.ErrPrefixTooLong) {
				code = wire.BindCodeNameTooLong
			}
			return wire.EncodeBindResponse(wire.Binding{}, code)
		}
	}

	key := fmt.Sprintf("%s:%d", bind.Name, bind.Port)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.bound[key] {
		return wire.EncodeBindResponse(wire.Binding{}, wire.BindCodeAlreadyBound)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("host listen failed: %w", err)
	}

	h.nextListen++
	id := h.nextListen
	listen := &liveListen{ln: ln, stream: newRecordStream(0)}
	h.listens[id] = listen
	h.bound[key] = true

	go h.acceptLoop(listen)

	hostname := h.Domain
	if bind.Name != "" {
		hostname = bind.Name + "." + h.Domain
	}
	port := uint16(ln.Addr().(*net.TCPAddr).Port)

	return wire.EncodeBindResponse(wire.Binding{
		Hostname: hostname,
		Port:     port,
		ListenID: id,
	}, wire.BindCodeNone)
}

// acceptLoop turns inbound TCP connections into accept records.
func (h *Live) acceptLoop(listen *liveListen) {
	for {
		conn, err := listen.ln.Accept()
		if err != nil {
			listen.stream.finish()
			return
		}

		peer := conn.RemoteAddr().(*net.TCPAddr).AddrPort()

		h.mu.Lock()
		h.nextConn++
		id := h.nextConn
		h.conns[id] = conn
		h.mu.Unlock()

		listen.stream.push(wire.AppendAcceptRecord(nil, wire.AcceptRecord{
			Error:  wire.AcceptCodeNone,
			ConnID: id,
			Peer:   netip.AddrPortFrom(peer.Addr().Unmap(), peer.Port()),
		}))
	}
}

// InputStream implements channel.Channel. The bufsize hint is ignored;
// queued records are buffered without bound.
func (h *Live) InputStream(id uint32, bufsize int) channel.RecvStream {
	h.mu.Lock()
	defer h.mu.Unlock()
	listen := h.listens[id]
	if listen == nil {
		return nil
	}
	return &liveStream{recordStream: listen.stream, ln: listen.ln}
}

// Stream implements channel.Channel.
func (h *Live) Stream(id uint32) channel.Stream {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.conns[id]
}

// Close shuts down all listeners and connections.
func (h *Live) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	for _, l := range h.listens {
		l.ln.Close()
	}
	for _, c := range h.conns {
		c.Close()
	}
	return nil
}

// liveStream ties the guest's stream close to the OS listener, so a
// CloseHandle release stops the host accepting new connections.
type liveStream struct {
	*recordStream
	ln net.Listener
}

func (s *liveStream) Close() error {
	s.ln.Close()
	return s.recordStream.Close()
}

// Compile-time interface satisfaction check.
var _ channel.Channel = (*Live)(nil)
