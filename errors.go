package musikr

import (
	"github.com/simonhull/musikr/internal/types"
)

// Extraction errors. Run never returns them; they are logged together with
// the path of the skipped file.
type (
	OutOfBoundsError       = types.OutOfBoundsError
	UnsupportedFormatError = types.UnsupportedFormatError
	CorruptedFileError     = types.CorruptedFileError
)

// Warning is a non-fatal issue found while reading a file.
type Warning = types.Warning
