package wire

// Function identifies the host function invoked by a call message.
type Function uint8

const (
	// FunctionBindTLS requests a TLS connection listener.
	FunctionBindTLS Function = 1
)

// String returns the function name.
func (f Function) String() string {
	switch f {
	case FunctionBindTLS:
		return "BIND_TLS"
	default:
		return "UNKNOWN"
	}
}

// IsValid returns true if the function is a known value.
func (f Function) IsValid() bool {
	return f == FunctionBindTLS
}

// AcceptSize selects the accept record layout requested from the host.
// The value doubles as the record length in bytes.
type AcceptSize uint8

const (
	// AcceptSizeBasic is the basic accept record layout (RecordSize bytes).
	// It is the only layout this library requests.
	AcceptSizeBasic AcceptSize = RecordSize
)

// String returns the accept size name.
func (s AcceptSize) String() string {
	switch s {
	case AcceptSizeBasic:
		return "BASIC"
	default:
		return "UNKNOWN"
	}
}

// BindCode is a raw bind error code as carried on the wire.
//
// BindCodeNone means success. BindCodeSizeNotSupported can only be
// produced by a library defect (the accept size tag is fixed, not
// user-supplied) and is never surfaced as a recoverable error.
type BindCode int8

const (
	// BindCodeNone indicates a successful bind.
	BindCodeNone BindCode = 0

	// BindCodeSizeNotSupported indicates the requested accept record
	// size is not supported by the host.
	BindCodeSizeNotSupported BindCode = 1

	// BindCodeTooManyBindings indicates the host's binding quota is exhausted.
	BindCodeTooManyBindings BindCode = 2

	// BindCodeAlreadyBound indicates the name/port pair is already bound.
	BindCodeAlreadyBound BindCode = 3

	// BindCodeInvalidName indicates the requested name prefix is malformed.
	BindCodeInvalidName BindCode = 4

	// BindCodeNameTooLong indicates the requested name prefix is too long.
	BindCodeNameTooLong BindCode = 5

	// BindCodeUnsupportedPort indicates the host refuses the requested port.
	BindCodeUnsupportedPort BindCode = 6
)

// String returns the bind code name.
func (c BindCode) String() string {
	switch c {
	case BindCodeNone:
		return "NONE"
	case BindCodeSizeNotSupported:
		return "SIZE_NOT_SUPPORTED"
	case BindCodeTooManyBindings:
		return "TOO_MANY_BINDINGS"
	case BindCodeAlreadyBound:
		return "ALREADY_BOUND"
	case BindCodeInvalidName:
		return "INVALID_NAME"
	case BindCodeNameTooLong:
		return "NAME_TOO_LONG"
	case BindCodeUnsupportedPort:
		return "UNSUPPORTED_PORT"
	default:
		return "UNKNOWN"
	}
}

// AcceptCode is a raw accept error code as carried in an accept record.
//
// The zero value is a dual-meaning sentinel inherited from the wire
// protocol: inside a record it means "no error" (a connection was
// accepted), but the same value also tags the "channel closed" outcome
// reported when the accept stream ends before a record completes. The
// wire value is kept for compatibility; the listener package surfaces
// the two meanings as distinct results rather than one merged code.
type AcceptCode int16

const (
	// AcceptCodeNone indicates a successfully accepted connection.
	// Doubles as the closed-channel sentinel (see type comment).
	AcceptCodeNone AcceptCode = 0
)

// String returns the accept code name.
func (c AcceptCode) String() string {
	if c == AcceptCodeNone {
		return "NONE"
	}
	return "OTHER"
}
