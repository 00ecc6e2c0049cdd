package listener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gate-protocol/listener-go/pkg/channel"
	"github.com/gate-protocol/listener-go/pkg/log"
	"github.com/gate-protocol/listener-go/pkg/wire"
)

// acceptCore is the accept machinery shared by Listener and Acceptor.
// It owns the receive stream and the one-shot closed signal armed by
// the CloseHandle (or by observing the host closing the stream).
type acceptCore struct {
	ch      channel.Channel
	stream  channel.RecvStream
	binding wire.Binding
	logger  log.Logger
	id      string

	// busy enforces the single-consumer contract: one outstanding
	// Accept per instance.
	busy atomic.Bool

	closeOnce sync.Once
	closed    chan struct{}
}

func newAcceptCore(ch channel.Channel, stream channel.RecvStream, binding wire.Binding, logger log.Logger, id string) *acceptCore {
	if logger == nil {
		logger = log.NoopLogger{}
	}
	return &acceptCore{
		ch:      ch,
		stream:  stream,
		binding: binding,
		logger:  logger,
		id:      id,
		closed:  make(chan struct{}),
	}
}

// markClosed arms the closed condition. One-shot: later calls are no-ops.
// It does not touch any in-flight accumulator, which is exclusively
// owned by the current accept call.
func (c *acceptCore) markClosed(reason string) {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.stream.Close()
		c.logger.Log(log.Event{
			Timestamp:  time.Now(),
			ListenerID: c.id,
			Hostname:   c.binding.Hostname,
			Category:   log.CategoryState,
			StateChange: &log.StateChangeEvent{
				Entity:   log.StateEntityAcceptor,
				OldState: "BOUND",
				NewState: "CLOSED",
				Reason:   reason,
			},
		})
	})
}

// isClosed reports whether the closed condition has been armed.
func (c *acceptCore) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// closedError is the terminal result every accept resolves to once the
// closed condition holds. The code is the wire sentinel (see AcceptError).
func (c *acceptCore) closedError() *AcceptError {
	return &AcceptError{Kind: AcceptClosed, Code: wire.AcceptCodeNone}
}

// accept resolves one accept record into a connection or a typed error.
func (c *acceptCore) accept(ctx context.Context) (*Conn, error) {
	if !c.busy.CompareAndSwap(false, true) {
		return nil, ErrAcceptBusy
	}
	defer c.busy.Store(false)

	if c.isClosed() {
		return nil, c.closedError()
	}

	// Cancel the receive when the close handle fires mid-call.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-c.closed:
			cancel()
		case <-stop:
		}
	}()

	// Fresh accumulator per call; no partial data survives between calls.
	var asm recordAssembler
	for !asm.complete() {
		err := c.stream.Recv(ctx, asm.remaining(), asm.feed)
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) {
			// Host closed the channel before a full record: the single
			// designed path to the Closed result on this side.
			c.markClosed("host closed stream")
			return nil, c.closedError()
		}
		if c.isClosed() {
			return nil, c.closedError()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logError("accept", err)
		return nil, fmt.Errorf("receive failed: %w", err)
	}

	record, err := asm.record()
	if err != nil {
		c.logError("accept", err)
		return nil, fmt.Errorf("malformed accept record: %w", err)
	}

	c.logger.Log(log.Event{
		Timestamp:  time.Now(),
		ListenerID: c.id,
		Hostname:   c.binding.Hostname,
		Direction:  log.DirectionIn,
		Category:   log.CategoryRecord,
		Record: &log.RecordEvent{
			Code:   record.Error,
			ConnID: record.ConnID,
			Peer:   peerString(record),
		},
	})

	if record.Error != wire.AcceptCodeNone {
		return nil, &AcceptError{Kind: AcceptOther, Code: record.Error}
	}

	return &Conn{
		Stream:   c.ch.Stream(record.ConnID),
		PeerAddr: record.Peer,
		local:    netip.AddrPortFrom(netip.IPv6Unspecified(), c.binding.Port),
	}, nil
}

func (c *acceptCore) logError(op string, err error) {
	c.logger.Log(log.Event{
		Timestamp:  time.Now(),
		ListenerID: c.id,
		Hostname:   c.binding.Hostname,
		Category:   log.CategoryError,
		Error: &log.ErrorEventData{
			Message: err.Error(),
			Context: op,
		},
	})
}

func peerString(r wire.AcceptRecord) string {
	if r.Error != wire.AcceptCodeNone || !r.Peer.IsValid() {
		return ""
	}
	return r.Peer.String()
}
