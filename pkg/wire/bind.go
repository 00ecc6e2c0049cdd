package wire

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// Name prefix constraints. Validation here is advisory: the host is
// authoritative and rejects bad prefixes with INVALID_NAME or
// NAME_TOO_LONG regardless of what the guest checks.
const (
	// MaxPrefixLen is the maximum name prefix length in bytes.
	MaxPrefixLen = 31

	// reservedPrefix is the IDNA automatic-name prefix; host-assigned
	// names may start with it, requested prefixes may not.
	reservedPrefix = "xn--"
)

// Prefix validation errors.
var (
	// ErrPrefixEmpty indicates an empty (but present) name prefix.
	ErrPrefixEmpty = errors.New("name prefix is empty")

	// ErrPrefixTooLong indicates the prefix exceeds MaxPrefixLen.
	ErrPrefixTooLong = errors.New("name prefix too long")

	// ErrPrefixCharset indicates a character outside [a-z0-9-].
	ErrPrefixCharset = errors.New("name prefix contains invalid character")

	// ErrPrefixDash indicates a leading or trailing dash.
	ErrPrefixDash = errors.New("name prefix starts or ends with dash")

	// ErrPrefixReserved indicates the prefix starts with "xn--".
	ErrPrefixReserved = errors.New("name prefix starts with reserved sequence")
)

// ErrBindUnsupported indicates the host does not implement the bind
// function: it replied with an empty response where a Binding record
// was expected.
var ErrBindUnsupported = errors.New("bind not supported by host")

// CBOR map keys for the call envelope.
const (
	KeyCallFunction = 1
	KeyCallBody     = 2
)

// CBOR map keys for the BindTLS call body.
const (
	KeyBindAcceptSize = 1
	KeyBindName       = 2
	KeyBindPort       = 3
)

// CBOR map keys for the Binding response.
const (
	KeyBindingError    = 1
	KeyBindingHost     = 2
	KeyBindingPort     = 3
	KeyBindingListenID = 4
)

// call is the CBOR envelope for a host function call.
//
// CBOR encoding:
//
//	{
//	  1: function,   // uint8: 1=BindTLS
//	  2: body        // function-specific map
//	}
type call struct {
	Function Function `cbor:"1,keyasint"`
	Body     any      `cbor:"2,keyasint"`
}

// rawCall is the decode-side envelope, deferring the body.
type rawCall struct {
	Function Function        `cbor:"1,keyasint"`
	Body     cbor.RawMessage `cbor:"2,keyasint"`
}

// BindRequest is the BindTLS call body.
//
// CBOR encoding:
//
//	{
//	  1: acceptSize,  // uint8: fixed, RecordSize
//	  2: name,        // string, omitted when no prefix is requested
//	  3: port         // uint16
//	}
type BindRequest struct {
	AcceptSize AcceptSize `cbor:"1,keyasint"`
	Name       string     `cbor:"2,keyasint,omitempty"`
	Port       uint16     `cbor:"3,keyasint"`
}

// bindingResponse is the host's reply to a BindTLS call.
//
// CBOR encoding:
//
//	{
//	  1: error,      // int8 bind code, 0=success
//	  2: host,       // string, present iff success
//	  3: port,       // uint16
//	  4: listenId    // uint32, present iff success
//	}
type bindingResponse struct {
	Error    BindCode `cbor:"1,keyasint"`
	Host     string   `cbor:"2,keyasint,omitempty"`
	Port     uint16   `cbor:"3,keyasint"`
	ListenID uint32   `cbor:"4,keyasint,omitempty"`
}

// Binding is a successful bind result: the host-assigned fully-qualified
// name, the bound port and the opaque id of the accept stream.
type Binding struct {
	Hostname string
	Port     uint16
	ListenID uint32
}

// ValidatePrefix checks a name prefix against the naming contract:
// 1–31 bytes of lowercase alphanumeric ASCII and dash, no leading or
// trailing dash, not starting with "xn--".
//
// The check is advisory. Encoding does not reject bad prefixes; the
// host does, surfacing INVALID_NAME or NAME_TOO_LONG.
func ValidatePrefix(prefix string) error {
	if prefix == "" {
		return ErrPrefixEmpty
	}
	if len(prefix) > MaxPrefixLen {
		return fmt.Errorf("%w: %d > %d", ErrPrefixTooLong, len(prefix), MaxPrefixLen)
	}
	for i := 0; i < len(prefix); i++ {
		c := prefix[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '-' {
			return fmt.Errorf("%w: %q", ErrPrefixCharset, c)
		}
	}
	if prefix[0] == '-' || prefix[len(prefix)-1] == '-' {
		return ErrPrefixDash
	}
	if strings.HasPrefix(prefix, reservedPrefix) {
		return ErrPrefixReserved
	}
	return nil
}

// EncodeBindRequest encodes a BindTLS call for the given port and
// optional name prefix (empty string for none). The accept size tag is
// fixed to the basic record layout.
func EncodeBindRequest(port uint16, prefix string) ([]byte, error) {
	data, err := Marshal(call{
		Function: FunctionBindTLS,
		Body: BindRequest{
			AcceptSize: AcceptSizeBasic,
			Name:       prefix,
			Port:       port,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode bind request: %w", err)
	}
	return data, nil
}

// DecodeBindResponse decodes the host's reply to a BindTLS call.
//
// An empty reply means the host does not implement the function and
// yields ErrBindUnsupported. A reply carrying a bind code other than
// BindCodeNone yields the zero Binding and that code. A reply carrying
// BindCodeSizeNotSupported panics: the accept size tag is fixed inside
// this library, so the host rejecting it is an unrecoverable contract
// violation, not a caller error.
func DecodeBindResponse(data []byte) (Binding, BindCode, error) {
	if len(data) == 0 {
		return Binding{}, BindCodeNone, ErrBindUnsupported
	}

	var resp bindingResponse
	if err := Unmarshal(data, &resp); err != nil {
		return Binding{}, BindCodeNone, fmt.Errorf("failed to decode bind response: %w", err)
	}

	if resp.Error == BindCodeSizeNotSupported {
		panic(fmt.Sprintf("host rejected fixed accept record size %d", RecordSize))
	}
	if resp.Error != BindCodeNone {
		return Binding{}, resp.Error, nil
	}

	return Binding{
		Hostname: resp.Host,
		Port:     resp.Port,
		ListenID: resp.ListenID,
	}, BindCodeNone, nil
}

// DecodeBindRequest decodes a BindTLS call envelope.
// Used by hosts and test harnesses; the guest side only encodes.
func DecodeBindRequest(data []byte) (BindRequest, error) {
	var env rawCall
	if err := Unmarshal(data, &env); err != nil {
		return BindRequest{}, fmt.Errorf("failed to decode call envelope: %w", err)
	}
	if env.Function != FunctionBindTLS {
		return BindRequest{}, fmt.Errorf("unexpected function %d", env.Function)
	}
	var req BindRequest
	if err := Unmarshal(env.Body, &req); err != nil {
		return BindRequest{}, fmt.Errorf("failed to decode bind request: %w", err)
	}
	return req, nil
}

// EncodeBindResponse encodes a host reply to a BindTLS call: either a
// successful binding (code BindCodeNone) or a bare error code.
// Used by hosts and test harnesses; the guest side only decodes.
func EncodeBindResponse(binding Binding, code BindCode) ([]byte, error) {
	resp := bindingResponse{Error: code, Port: binding.Port}
	if code == BindCodeNone {
		resp.Host = binding.Hostname
		resp.ListenID = binding.ListenID
	}
	data, err := Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to encode bind response: %w", err)
	}
	return data, nil
}
