// Package interpret turns parsed tags into pre-entities: songs, albums,
// artists and genres with resolved names and stable identifiers, not yet
// deduplicated against each other.
package interpret

import (
	"strings"

	"github.com/simonhull/musikr/internal/tag"
)

// Separators splits multi-value tags that were written as a single value,
// such as "Artist A; Artist B".
type Separators interface {
	Split(values []string) []string
}

// NewSeparators splits on any rune in chars. A backslash escapes the rune
// that follows it. An empty chars behaves like NoSeparators.
func NewSeparators(chars string) Separators {
	if chars == "" {
		return NoSeparators
	}
	return runeSeparators(chars)
}

type runeSeparators string

func (s runeSeparators) Split(values []string) []string {
	if len(values) != 1 {
		return values
	}
	return tag.CorrectWhitespaceAll(tag.SplitEscaped(values[0], func(r rune) bool {
		return strings.ContainsRune(string(s), r)
	}))
}

// NoSeparators never splits.
var NoSeparators Separators = noSeparators{}

type noSeparators struct{}

func (noSeparators) Split(values []string) []string { return values }

// Interpretation configures how tags are read.
type Interpretation struct {
	Naming     tag.Naming
	Separators Separators
}

// DefaultInterpretation uses intelligent naming and no separators.
func DefaultInterpretation() Interpretation {
	return Interpretation{Naming: tag.IntelligentNaming, Separators: NoSeparators}
}

func (i Interpretation) naming() tag.Naming {
	if i.Naming == nil {
		return tag.SimpleNaming
	}
	return i.Naming
}

func (i Interpretation) split(values []string) []string {
	if i.Separators == nil {
		return values
	}
	return i.Separators.Split(values)
}
