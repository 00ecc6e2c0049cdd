package hostsim

import (
	"context"
	"fmt"
	"net/netip"
	"sync"

	"github.com/gate-protocol/listener-go/pkg/channel"
	"github.com/gate-protocol/listener-go/pkg/wire"
)

// Scripted is a canned host: bind calls pop queued responses and the
// accept stream replays queued records, delivered in fragments of at
// most Fragment bytes (0 = unlimited). Safe for concurrent use.
type Scripted struct {
	// Fragment caps the chunk size handed to the guest per delivery.
	// Must be set before the first InputStream call.
	Fragment int

	mu        sync.Mutex
	responses [][]byte
	callErrs  []error
	calls     [][]byte
	stream    *recordStream
	streams   map[uint32]channel.Stream
}

// NewScripted creates an empty scripted host.
func NewScripted() *Scripted {
	return &Scripted{streams: make(map[uint32]channel.Stream)}
}

// QueueBindSuccess queues a successful bind response.
func (s *Scripted) QueueBindSuccess(hostname string, port uint16, listenID uint32) {
	data, err := wire.EncodeBindResponse(wire.Binding{
		Hostname: hostname,
		Port:     port,
		ListenID: listenID,
	}, wire.BindCodeNone)
	if err != nil {
		panic(err)
	}
	s.queueResponse(data, nil)
}

// QueueBindError queues a bind response carrying the given error code.
func (s *Scripted) QueueBindError(code wire.BindCode) {
	data, err := wire.EncodeBindResponse(wire.Binding{}, code)
	if err != nil {
		panic(err)
	}
	s.queueResponse(data, nil)
}

// QueueBindEmpty queues an empty response, meaning the host does not
// implement the function.
func (s *Scripted) QueueBindEmpty() {
	s.queueResponse(nil, nil)
}

// QueueCallError queues a transport-level call failure.
func (s *Scripted) QueueCallError(err error) {
	s.queueResponse(nil, err)
}

func (s *Scripted) queueResponse(data []byte, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, data)
	s.callErrs = append(s.callErrs, err)
}

// QueueRecord appends one accept record to the accept stream.
func (s *Scripted) QueueRecord(r wire.AcceptRecord) {
	s.acceptStream().push(wire.AppendAcceptRecord(nil, r))
}

// QueueAccept appends a successful accept record for the given
// connection id and peer address.
func (s *Scripted) QueueAccept(connID uint32, peer netip.AddrPort) {
	s.QueueRecord(wire.AcceptRecord{Error: wire.AcceptCodeNone, ConnID: connID, Peer: peer})
}

// QueueBytes appends raw bytes to the accept stream, bypassing record
// encoding. Lets tests feed partial records.
func (s *Scripted) QueueBytes(p []byte) {
	s.acceptStream().push(p)
}

// FinishAccepts ends the accept stream: after queued data drains, the
// guest observes a clean close.
func (s *Scripted) FinishAccepts() {
	s.acceptStream().finish()
}

// RegisterStream makes a connection stream resolvable by id.
func (s *Scripted) RegisterStream(id uint32, stream channel.Stream) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streams[id] = stream
}

// Calls returns the raw call messages received so far.
func (s *Scripted) Calls() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.calls...)
}

func (s *Scripted) acceptStream() *recordStream {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream == nil {
		s.stream = newRecordStream(s.Fragment)
	}
	return s.stream
}

// Call implements channel.Channel.
func (s *Scripted) Call(ctx context.Context, req []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, append([]byte(nil), req...))
	if len(s.responses) == 0 {
		return nil, fmt.Errorf("scripted host: no response queued for call %d", len(s.calls))
	}
	resp, err := s.responses[0], s.callErrs[0]
	s.responses = s.responses[1:]
	s.callErrs = s.callErrs[1:]
	return resp, err
}

// InputStream implements channel.Channel. The bufsize hint is ignored;
// the scripted stream buffers everything queued.
func (s *Scripted) InputStream(id uint32, bufsize int) channel.RecvStream {
	return s.acceptStream()
}

// Stream implements channel.Channel.
func (s *Scripted) Stream(id uint32) channel.Stream {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streams[id]
}

// Compile-time interface satisfaction check.
var _ channel.Channel = (*Scripted)(nil)
