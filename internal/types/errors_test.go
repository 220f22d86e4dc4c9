package types

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name:     "offset beyond file size",
			err:      &OutOfBoundsError{Path: "a.m4a", Offset: 1000, Length: 4, Size: 500, What: "ftyp atom"},
			contains: []string{"a.m4a", "offset 1000 out of bounds", "file size: 500", "ftyp atom"},
		},
		{
			name:     "read past end",
			err:      &OutOfBoundsError{Path: "a.m4a", Offset: 100, Length: 50, Size: 120, What: "atom header"},
			contains: []string{"read of 50 bytes", "offset 100", "exceed file size 120"},
		},
		{
			name:     "unsupported",
			err:      &UnsupportedFormatError{Path: "a.xyz", Reason: "no tags found"},
			contains: []string{"a.xyz", "unsupported format", "no tags found"},
		},
		{
			name:     "corrupted",
			err:      &CorruptedFileError{Path: "b.flac", Offset: 256, Reason: "bad block size"},
			contains: []string{"b.flac", "corrupted file", "offset 256", "bad block size"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("%q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestErrorsAs(t *testing.T) {
	err := fmt.Errorf("extract: %w", &UnsupportedFormatError{Path: "a.xyz", Reason: "unknown"})
	var unsupported *UnsupportedFormatError
	if !errors.As(err, &unsupported) || unsupported.Path != "a.xyz" {
		t.Errorf("errors.As failed for %v", err)
	}
}
