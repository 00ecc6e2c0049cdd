package listener

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gate-protocol/listener-go/pkg/channel"
	"github.com/gate-protocol/listener-go/pkg/log"
	"github.com/gate-protocol/listener-go/pkg/wire"
)

// Config configures a bind request.
type Config struct {
	// Port is the TLS port to listen on.
	Port uint16

	// Prefix is an optional name prefix prepended to the host-assigned
	// name. See wire.ValidatePrefix for the naming contract; the host
	// is authoritative and rejects bad prefixes with InvalidName or
	// NameTooLong.
	Prefix string

	// Backlog is the minimum accept queue length in records (default 1).
	Backlog int

	// Logger for protocol logging (optional).
	Logger log.Logger
}

// Listener is a bound TLS connection listener.
//
// A Listener is consumed by Split; afterwards only the returned
// Acceptor and CloseHandle may be used.
type Listener struct {
	core *acceptCore

	mu    sync.Mutex
	split bool
}

// Bind listens to TLS connections at the configured port. The calling
// goroutine suspends until the host responds or ctx is done. There is
// no retry: a failure returns a typed error and no listener.
//
// The host-assigned fully-qualified DNS name is available from
// Hostname afterwards. The channel handle is caller-owned; its
// lifecycle is the caller's concern and it may be shared across many
// listeners.
func Bind(ctx context.Context, ch channel.Channel, cfg Config) (*Listener, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NoopLogger{}
	}
	if cfg.Backlog < 1 {
		cfg.Backlog = 1
	}
	id := uuid.NewString()

	req, err := wire.EncodeBindRequest(cfg.Port, cfg.Prefix)
	if err != nil {
		return nil, err
	}

	logger.Log(log.Event{
		Timestamp:  time.Now(),
		ListenerID: id,
		Direction:  log.DirectionOut,
		Category:   log.CategoryCall,
		Call:       &log.CallEvent{Function: wire.FunctionBindTLS, Size: len(req)},
	})

	resp, err := ch.Call(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("bind call failed: %w", err)
	}

	binding, code, err := wire.DecodeBindResponse(resp)

	respCode := code
	logger.Log(log.Event{
		Timestamp:  time.Now(),
		ListenerID: id,
		Direction:  log.DirectionIn,
		Category:   log.CategoryCall,
		Hostname:   binding.Hostname,
		Call:       &log.CallEvent{Function: wire.FunctionBindTLS, Size: len(resp), Code: &respCode},
	})

	if err != nil {
		return nil, err
	}
	if code != wire.BindCodeNone {
		return nil, newBindError(code)
	}

	logger.Log(log.Event{
		Timestamp:  time.Now(),
		ListenerID: id,
		Hostname:   binding.Hostname,
		Category:   log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityListener,
			OldState: "UNBOUND",
			NewState: "BOUND",
		},
	})

	// Buffer capacity follows the requested accept queue length.
	stream := ch.InputStream(binding.ListenID, cfg.Backlog*wire.RecordSize)
	return &Listener{
		core: newAcceptCore(ch, stream, binding, logger, id),
	}, nil
}

// Hostname returns the host-assigned fully-qualified DNS name.
func (l *Listener) Hostname() string {
	return l.core.binding.Hostname
}

// Port returns the bound listening port.
func (l *Listener) Port() uint16 {
	return l.core.binding.Port
}

// Accept resolves the next client connection, suspending until the
// host delivers a full accept record. Only one Accept may be
// outstanding at a time. Callers typically loop until IsClosed reports
// a terminal result.
func (l *Listener) Accept(ctx context.Context) (*Conn, error) {
	l.mu.Lock()
	split := l.split
	l.mu.Unlock()
	if split {
		return nil, ErrListenerSplit
	}
	return l.core.accept(ctx)
}

// Split irreversibly divides the Listener into an Acceptor and its
// paired CloseHandle, two narrower views over the same underlying
// channel. The Listener is consumed: further Accept, Split or Close
// calls on it fail with ErrListenerSplit.
func (l *Listener) Split() (*Acceptor, *CloseHandle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.split {
		return nil, nil, ErrListenerSplit
	}
	l.split = true

	l.core.logger.Log(log.Event{
		Timestamp:  time.Now(),
		ListenerID: l.core.id,
		Hostname:   l.core.binding.Hostname,
		Category:   log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityListener,
			OldState: "BOUND",
			NewState: "SPLIT",
		},
	})

	return &Acceptor{core: l.core}, &CloseHandle{core: l.core}, nil
}

// Close releases an unsplit Listener, arming the closed condition.
// After Split, closing is the CloseHandle's job.
func (l *Listener) Close() error {
	l.mu.Lock()
	split := l.split
	l.mu.Unlock()
	if split {
		return ErrListenerSplit
	}
	l.core.markClosed("listener closed")
	return nil
}
