// Package registry maps container formats to their metadata extractors.
package registry

import (
	"io"
	"sync"

	"github.com/simonhull/musikr/internal/types"
)

// Extractor is implemented by every container format package.
type Extractor interface {
	// Extract reads all tag fields, audio properties and the embedded cover.
	// Structural problems that leave some metadata readable are reported as
	// warnings on the result instead of errors.
	Extract(r io.ReaderAt, size int64, path string) (*types.Metadata, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(r io.ReaderAt, size int64, path string) (*types.Metadata, error)

// Extract calls f.
func (f ExtractorFunc) Extract(r io.ReaderAt, size int64, path string) (*types.Metadata, error) {
	return f(r, size, path)
}

var (
	mu         sync.RWMutex
	extractors = make(map[types.Format]Extractor)
)

// Register registers an extractor for a format, replacing any previous one.
// Format packages call this from init.
func Register(format types.Format, e Extractor) {
	mu.Lock()
	defer mu.Unlock()
	extractors[format] = e
}

// Get returns the extractor for a format, or nil.
func Get(format types.Format) Extractor {
	mu.RLock()
	defer mu.RUnlock()
	return extractors[format]
}

// Formats returns every format with a registered extractor.
func Formats() []types.Format {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]types.Format, 0, len(extractors))
	for f := range extractors {
		out = append(out, f)
	}
	return out
}
