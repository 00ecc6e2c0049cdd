package listener

import (
	"errors"
	"fmt"

	"github.com/gate-protocol/listener-go/pkg/wire"
)

// Usage errors.
var (
	// ErrListenerSplit indicates use of a Listener after Split consumed it.
	ErrListenerSplit = errors.New("listener has been split")

	// ErrAcceptBusy indicates a second Accept while one is outstanding.
	// The accept channel is single-consumer; serialize via one loop.
	ErrAcceptBusy = errors.New("accept already in progress")

	// ErrNoDeadline indicates deadlines are unsupported on channel streams.
	ErrNoDeadline = errors.New("deadlines not supported on channel streams")
)

// BindErrorKind is the closed set of recoverable bind failures.
//
// The SIZE_NOT_SUPPORTED wire code is deliberately not represented
// here: the accept size tag is fixed inside this library, so the host
// rejecting it is a contract violation handled by panic, never a
// recoverable result.
type BindErrorKind uint8

const (
	// BindTooManyBindings indicates the host's binding quota is exhausted.
	BindTooManyBindings BindErrorKind = iota

	// BindAlreadyBound indicates the name/port pair is already bound.
	BindAlreadyBound

	// BindInvalidName indicates the requested name prefix is malformed.
	BindInvalidName

	// BindNameTooLong indicates the requested name prefix is too long.
	BindNameTooLong

	// BindUnsupportedPort indicates the host refuses the requested port.
	BindUnsupportedPort

	// BindOther covers codes outside the known set; the raw code is
	// preserved on the BindError.
	BindOther
)

// String returns a human-readable kind name.
func (k BindErrorKind) String() string {
	switch k {
	case BindTooManyBindings:
		return "too many bindings"
	case BindAlreadyBound:
		return "already bound"
	case BindInvalidName:
		return "invalid name"
	case BindNameTooLong:
		return "name too long"
	case BindUnsupportedPort:
		return "unsupported port"
	case BindOther:
		return "bind error"
	default:
		return "unknown"
	}
}

// BindError is a typed bind failure reported by the host.
type BindError struct {
	// Kind classifies the failure.
	Kind BindErrorKind

	// Code is the raw wire code, preserved for introspection.
	Code wire.BindCode
}

// Error implements the error interface.
func (e *BindError) Error() string {
	if e.Kind == BindOther {
		return fmt.Sprintf("bind error %d", e.Code)
	}
	return e.Kind.String()
}

// newBindError maps a non-success wire code into the closed taxonomy.
func newBindError(code wire.BindCode) *BindError {
	kind := BindOther
	switch code {
	case wire.BindCodeTooManyBindings:
		kind = BindTooManyBindings
	case wire.BindCodeAlreadyBound:
		kind = BindAlreadyBound
	case wire.BindCodeInvalidName:
		kind = BindInvalidName
	case wire.BindCodeNameTooLong:
		kind = BindNameTooLong
	case wire.BindCodeUnsupportedPort:
		kind = BindUnsupportedPort
	}
	return &BindError{Kind: kind, Code: code}
}

// AcceptErrorKind is the closed set of accept failures. The only
// branching decision a caller makes on accept failure is whether to
// keep looping, so everything that is not Closed collapses to Other
// with the raw code preserved.
type AcceptErrorKind uint8

const (
	// AcceptClosed indicates the accept channel has been closed, either
	// through the CloseHandle or by the host ending the stream. Every
	// subsequent Accept also resolves as AcceptClosed.
	AcceptClosed AcceptErrorKind = iota

	// AcceptOther covers all other record error codes.
	AcceptOther
)

// String returns a human-readable kind name.
func (k AcceptErrorKind) String() string {
	switch k {
	case AcceptClosed:
		return "listener closed"
	case AcceptOther:
		return "accept error"
	default:
		return "unknown"
	}
}

// AcceptError is a typed accept failure.
//
// For AcceptClosed the Code is the wire sentinel 0, which the protocol
// also uses for "no error" in bind responses. The two meanings are kept
// apart here by the Kind; the shared wire value is a protocol legacy.
type AcceptError struct {
	// Kind classifies the failure.
	Kind AcceptErrorKind

	// Code is the raw wire code, preserved for introspection.
	Code wire.AcceptCode
}

// Error implements the error interface.
func (e *AcceptError) Error() string {
	if e.Kind == AcceptOther {
		return fmt.Sprintf("accept error %d", e.Code)
	}
	return e.Kind.String()
}

// IsClosed reports whether err is an AcceptError of kind AcceptClosed.
// Accept loops typically terminate on it.
func IsClosed(err error) bool {
	var ae *AcceptError
	return errors.As(err, &ae) && ae.Kind == AcceptClosed
}
