package ds1302

import (
	"errors"
	"fmt"
)

// Package errors.
var (
	// ErrClosed is returned when an operation is attempted on a device
	// that has been closed or never finished initializing.
	ErrClosed = errors.New("ds1302: device closed")

	// ErrYearOutOfRange is returned by SetTime for dates the chip cannot
	// represent with its two-digit year.
	ErrYearOutOfRange = errors.New("ds1302: year out of range")
)

// DecodeError reports a clock register that does not decode to a valid
// calendar field. The raw register value is preserved for diagnostics.
type DecodeError struct {
	Field string
	Value byte
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("ds1302: invalid %s register 0x%02x", e.Field, e.Value)
}
