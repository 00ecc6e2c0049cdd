package hostsim

import (
	"context"
	"io"
	"sync"

	"github.com/gate-protocol/listener-go/pkg/channel"
)

// recordStream is an in-memory receive stream feeding accept record
// bytes to the guest. The host side appends with push; the guest side
// drains through Recv. Fragment controls the maximum chunk handed to
// the deliver callback, so tests can force arbitrary fragmentation.
type recordStream struct {
	mu       sync.Mutex
	buf      []byte
	fragment int
	eof      bool // host ends the stream once buf drains

	dataCh chan struct{} // signaled on push/finish
	closed chan struct{}

	closeOnce sync.Once
}

func newRecordStream(fragment int) *recordStream {
	return &recordStream{
		fragment: fragment,
		dataCh:   make(chan struct{}, 1),
		closed:   make(chan struct{}),
	}
}

// push appends host-side bytes and wakes a pending Recv.
func (s *recordStream) push(p []byte) {
	s.mu.Lock()
	s.buf = append(s.buf, p...)
	s.mu.Unlock()
	s.signal()
}

// finish marks the host side done: once the buffer drains, Recv
// reports io.EOF.
func (s *recordStream) finish() {
	s.mu.Lock()
	s.eof = true
	s.mu.Unlock()
	s.signal()
}

func (s *recordStream) signal() {
	select {
	case s.dataCh <- struct{}{}:
	default:
	}
}

// Recv implements channel.RecvStream.
func (s *recordStream) Recv(ctx context.Context, want int, deliver channel.DeliverFunc) error {
	for want > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.mu.Lock()
		for len(s.buf) == 0 {
			eof := s.eof
			s.mu.Unlock()
			if eof {
				return io.EOF
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-s.closed:
				return io.EOF
			case <-s.dataCh:
			}
			s.mu.Lock()
		}

		n := min(want, len(s.buf))
		if s.fragment > 0 {
			n = min(n, s.fragment)
		}
		chunk := s.buf[:n:n]
		s.buf = s.buf[n:]
		s.mu.Unlock()

		want = deliver(chunk)
	}
	return nil
}

// Close implements channel.RecvStream.
func (s *recordStream) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

// Compile-time interface satisfaction check.
var _ channel.RecvStream = (*recordStream)(nil)
