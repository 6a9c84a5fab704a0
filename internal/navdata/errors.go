package navdata

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncatedFrame is returned when decoding would read past the end of the datagram
	ErrTruncatedFrame = errors.New("truncated navdata frame")

	// ErrInvalidHeader is returned when the frame does not start with the navdata magic
	ErrInvalidHeader = errors.New("invalid navdata header")

	// ErrInvalidRecord is returned when an option record declares a size smaller than its own prefix
	ErrInvalidRecord = errors.New("invalid navdata option record")

	// ErrChecksumMismatch is returned by Frame.Verify when the computed checksum differs from the transmitted one
	ErrChecksumMismatch = errors.New("navdata checksum mismatch")

	// ErrMissingChecksum is returned by Frame.Verify when the frame carried no checksum record
	ErrMissingChecksum = errors.New("navdata checksum record missing")
)

// FrameError locates a decoding failure inside a datagram
type FrameError struct {
	Offset  int    // byte offset of the part that failed
	Section string // "header" or the option record being decoded, e.g. "demo", "option 0x0010"
	Err     error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("%s: %s at offset %d", e.Err, e.Section, e.Offset)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

func sectionName(tag uint16) string {
	switch tag {
	case TagDemo:
		return "demo"
	case TagChecksum:
		return "checksum"
	default:
		return fmt.Sprintf("option 0x%04x", tag)
	}
}
