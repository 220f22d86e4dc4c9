// Package cache remembers the parsed tags of audio files between runs so
// unchanged files do not have to be read again.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/simonhull/musikr/internal/fs"
	"github.com/simonhull/musikr/internal/tag"
	"github.com/simonhull/musikr/internal/tag/parse"
	"github.com/simonhull/musikr/internal/types"
)

// Song is a cached file.
type Song struct {
	Path       string
	MIMEType   string
	Size       int64
	ModifiedMs int64
	AddedMs    int64
	Properties types.Properties
	Tags       parse.ParsedTags
	// CoverID is "" when the song has no cover.
	CoverID string
}

// Status is the outcome of a cache lookup.
type Status int

const (
	// Miss means the file has never been cached.
	Miss Status = iota
	// Hit means the cached song is current.
	Hit
	// Stale means the file changed since it was cached. Only AddedMs is
	// carried over.
	Stale
)

func (s Status) String() string {
	switch s {
	case Hit:
		return "hit"
	case Stale:
		return "stale"
	}
	return "miss"
}

// Result is the outcome of Read. Song is set for hits, AddedMs for hits and
// stale entries.
type Result struct {
	Status  Status
	Song    *Song
	AddedMs int64
}

// Cache stores songs by path. Implementations are safe for concurrent use.
type Cache interface {
	// Read looks up file and marks the entry as used.
	Read(ctx context.Context, file fs.File) (Result, error)
	// Write inserts or replaces the entry for song.Path.
	Write(ctx context.Context, song *Song) error
	// Cleanup deletes every entry whose path is not in keep.
	Cleanup(ctx context.Context, keep []string) error
	// Prune deletes entries not read or written since before.
	Prune(ctx context.Context, before time.Time) error
	Close() error
}

func resultFor(song *Song, file fs.File) Result {
	if song.ModifiedMs != file.ModifiedMs {
		return Result{Status: Stale, AddedMs: song.AddedMs}
	}
	return Result{Status: Hit, Song: song, AddedMs: song.AddedMs}
}

type entry struct {
	song    Song
	touched time.Time
}

type memory struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

// Memory returns a cache that lives as long as the process.
func Memory() Cache {
	return &memory{entries: make(map[string]*entry), now: time.Now}
}

func (m *memory) Read(ctx context.Context, file fs.File) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[file.Path]
	if !ok {
		return Result{Status: Miss}, nil
	}
	e.touched = m.now()
	song := e.song
	return resultFor(&song, file), nil
}

func (m *memory) Write(ctx context.Context, song *Song) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[song.Path] = &entry{song: *song, touched: m.now()}
	return nil
}

func (m *memory) Cleanup(ctx context.Context, keep []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	kept := make(map[string]bool, len(keep))
	for _, p := range keep {
		kept[p] = true
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for p := range m.entries {
		if !kept[p] {
			delete(m.entries, p)
		}
	}
	return nil
}

func (m *memory) Prune(ctx context.Context, before time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for p, e := range m.entries {
		if e.touched.Before(before) {
			delete(m.entries, p)
		}
	}
	return nil
}

func (m *memory) Close() error { return nil }

var valueEscaper = strings.NewReplacer(";", `\;`)

// joinValues encodes a multi-value field. Separators inside values are
// escaped.
func joinValues(values []string) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = valueEscaper.Replace(v)
	}
	return strings.Join(escaped, ";")
}

// splitValues decodes joinValues. Blank values are dropped.
func splitValues(s string) []string {
	if s == "" {
		return nil
	}
	return tag.CorrectWhitespaceAll(tag.SplitEscaped(s, func(r rune) bool { return r == ';' }))
}
