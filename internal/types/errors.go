package types

import (
	"fmt"

	"github.com/simonhull/musikr/internal/binary"
)

// OutOfBoundsError is returned when a structure claims to extend past the
// end of the file.
type OutOfBoundsError = binary.OutOfBoundsError

// UnsupportedFormatError is returned when no extractor understands the file.
type UnsupportedFormatError struct {
	Path   string
	Reason string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s: unsupported format: %s", e.Path, e.Reason)
}

// CorruptedFileError is returned when the container structure is invalid.
type CorruptedFileError struct {
	Path   string
	Reason string
	Offset int64
}

func (e *CorruptedFileError) Error() string {
	return fmt.Sprintf("%s: corrupted file at offset %d: %s", e.Path, e.Offset, e.Reason)
}

// Warning represents a non-fatal issue encountered during extraction.
//
// A warning never stops extraction. Typical causes are a truncated frame,
// an unknown text encoding or an unreadable picture block.
type Warning struct {
	// Stage is one of "metadata", "properties" or "cover".
	Stage string

	Message string

	// Offset in the file, or 0 when not applicable.
	Offset int64
}

// String returns a human-readable warning message.
func (w Warning) String() string {
	if w.Offset > 0 {
		return fmt.Sprintf("%s (at offset %d): %s", w.Stage, w.Offset, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Stage, w.Message)
}
