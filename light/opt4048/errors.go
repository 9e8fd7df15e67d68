package opt4048

import (
	"errors"
	"fmt"
)

var (
	// ErrBufferOverflow is returned before any bus call when a register write
	// would not fit the 5-byte transfer buffer (address + 4 data bytes).
	ErrBufferOverflow = errors.New("opt4048: register write exceeds transfer buffer")
	// ErrCRC matches every *CRCError.
	ErrCRC = errors.New("opt4048: measurement crc mismatch")
)

// ConversionError reports a field value with no valid mapping: a code read
// back from the device outside the field's set, or a value that does not fit
// the field's bit width.
type ConversionError struct {
	Field string
	Value uint32
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("opt4048: invalid %s value %d", e.Field, e.Value)
}

// CRCError carries the check value read from the device and the one computed
// from the decoded exponent, mantissa and counter.
type CRCError struct {
	Channel  Channel
	Read     uint8
	Computed uint8
}

func (e *CRCError) Error() string {
	return fmt.Sprintf("opt4048: %s crc mismatch: read %#x, computed %#x", e.Channel, e.Read, e.Computed)
}

func (e *CRCError) Is(target error) bool {
	return target == ErrCRC
}

// TransportError wraps a bus failure; Unwrap returns it unchanged.
type TransportError struct {
	Op       string
	Register byte
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("opt4048: %s register 0x%02x: %v", e.Op, e.Register, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
