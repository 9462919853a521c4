package serialization

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrChecksumMismatch   = errors.New("checksum mismatch: file may be corrupted")
	ErrPayloadTooLarge    = errors.New("payload exceeds maximum size")
	ErrTooManyNodes       = errors.New("too many nodes in snapshot")
	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrValueMismatch      = errors.New("recorded value differs from replayed value")
)

// ValidationError provides detailed information about validation failures.
type ValidationError struct {
	Type    string // Type of error (e.g., "forward_reference", "arity")
	Node    int32  // Node involved, -1 if none
	Details string // Additional details
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Node >= 0 {
		return fmt.Sprintf("%s: node %d: %s", e.Type, e.Node, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Details)
}
