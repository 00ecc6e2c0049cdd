package log

import (
	"time"

	"github.com/gate-protocol/listener-go/pkg/wire"
)

// Event represents a protocol log event captured by the listener core.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ListenerID uniquely identifies the listener (UUID).
	ListenerID string `cbor:"2,keyasint"`

	// Direction indicates message flow relative to the guest.
	Direction Direction `cbor:"3,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// Hostname is the host-assigned listener name (set once bound).
	Hostname string `cbor:"5,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Call        *CallEvent        `cbor:"6,keyasint,omitempty"` // Bind call exchange
	Record      *RecordEvent      `cbor:"7,keyasint,omitempty"` // Decoded accept record
	StateChange *StateChangeEvent `cbor:"8,keyasint,omitempty"` // Lifecycle transitions
	Error       *ErrorEventData   `cbor:"9,keyasint,omitempty"` // Errors at any point
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates data arriving from the host.
	DirectionIn Direction = 0
	// DirectionOut indicates data sent to the host.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryCall indicates a bind call or its response.
	CategoryCall Category = 0
	// CategoryRecord indicates a decoded accept record.
	CategoryRecord Category = 1
	// CategoryState indicates a lifecycle state change.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryCall:
		return "CALL"
	case CategoryRecord:
		return "RECORD"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// CallEvent captures one half of a bind call exchange.
type CallEvent struct {
	// Function is the host function invoked.
	Function wire.Function `cbor:"1,keyasint"`

	// Size is the encoded message size in bytes.
	Size int `cbor:"2,keyasint"`

	// Code is the bind result code (response events only).
	Code *wire.BindCode `cbor:"3,keyasint,omitempty"`
}

// RecordEvent captures a fully decoded accept record.
type RecordEvent struct {
	// Code is the raw accept error code.
	Code wire.AcceptCode `cbor:"1,keyasint"`

	// ConnID is the accepted connection's stream id (success only).
	ConnID uint32 `cbor:"2,keyasint,omitempty"`

	// Peer is the client address as "ip:port" (success only).
	Peer string `cbor:"3,keyasint,omitempty"`
}

// StateChangeEvent captures listener lifecycle transitions.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityListener indicates a listener state change.
	StateEntityListener StateEntity = 0
	// StateEntityAcceptor indicates an acceptor state change.
	StateEntityAcceptor StateEntity = 1
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityListener:
		return "LISTENER"
	case StateEntityAcceptor:
		return "ACCEPTOR"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures an error surfaced to the caller.
type ErrorEventData struct {
	// Message is the error text.
	Message string `cbor:"1,keyasint"`

	// Context describes where the error occurred (e.g. "bind", "accept").
	Context string `cbor:"2,keyasint,omitempty"`

	// Code is the raw wire code, if one was involved.
	Code *int `cbor:"3,keyasint,omitempty"`
}
