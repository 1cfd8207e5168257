package txdata

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is the sentinel all structured wire-codec errors wrap,
// so callers can distinguish a malformed-input failure from an I/O error
// on the underlying reader/writer via errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// invalidInput builds a diagnostic error wrapping ErrInvalidInput, mirroring
// the short diagnostic strings the original codec returns (e.g. "Unknown
// transaction format", "Missing binding signature").
func invalidInput(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrInvalidInput)
}
