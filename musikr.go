package musikr

import (
	"context"
	"errors"
	"io"

	"github.com/simonhull/musikr/internal/cache"
	"github.com/simonhull/musikr/internal/covers"
	"github.com/simonhull/musikr/internal/model"
	"github.com/simonhull/musikr/internal/pipeline"
	"github.com/simonhull/musikr/internal/playlist"
	"github.com/simonhull/musikr/internal/tag"
	"github.com/simonhull/musikr/internal/tag/interpret"
)

// Library entities.
type (
	Library  = model.MutableLibrary
	Song     = model.Song
	Album    = model.Album
	Artist   = model.Artist
	Genre    = model.Genre
	Playlist = model.Playlist
)

// Storage backends.
type (
	Cache         = cache.Cache
	Covers        = covers.MutableCovers
	Cover         = covers.Cover
	PlaylistStore = playlist.Store
	Transcoding   = covers.Transcoding
)

// Interpretation configures how tags are read.
type Interpretation = interpret.Interpretation

// Progress types reported by Run.
type (
	IndexingProgress      = pipeline.Progress
	SongsProgress         = pipeline.SongsProgress
	IndeterminateProgress = pipeline.IndeterminateProgress
)

// NoTranscoding stores embedded covers unchanged.
var NoTranscoding = covers.NoTranscoding

// DefaultInterpretation uses intelligent sorting and does not split
// multi-value tags.
func DefaultInterpretation() Interpretation { return interpret.DefaultInterpretation() }

// NewInterpretation splits multi-value tags on any rune in separators.
// intelligentSorting ignores leading articles such as "The" when sorting.
func NewInterpretation(separators string, intelligentSorting bool) Interpretation {
	naming := tag.SimpleNaming
	if intelligentSorting {
		naming = tag.IntelligentNaming
	}
	return Interpretation{Naming: naming, Separators: interpret.NewSeparators(separators)}
}

// OpenCache opens or creates a sqlite metadata cache at path.
func OpenCache(path string) (Cache, error) {
	c, err := cache.Open(path)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// MemoryCache returns a cache that is lost when the process exits.
func MemoryCache() Cache { return cache.Memory() }

// StoredCovers saves embedded covers below dir, named by content hash.
// Songs without an embedded cover fall back to an image in their
// directory.
func StoredCovers(dir string, transcoding Transcoding) (Covers, error) {
	storage, err := covers.NewStorage(dir)
	if err != nil {
		return nil, err
	}
	return covers.Chain(covers.NewMutableStoredCovers(storage, transcoding), covers.NewFolderCovers()), nil
}

// CompressedCovers re-encodes covers as JPEG of at most resolution pixels
// per side.
func CompressedCovers(resolution, quality int) Transcoding {
	return covers.Compress(covers.JPEG, resolution, quality)
}

// OpenPlaylists opens or creates a sqlite playlist database at path.
func OpenPlaylists(path string) (*playlist.SQLiteStore, error) {
	return playlist.OpenSQLite(path)
}

// MemoryPlaylists returns a playlist store that is lost when the process
// exits.
func MemoryPlaylists() PlaylistStore { return playlist.NewMemoryStore() }

// Storage holds everything Run persists between runs.
type Storage struct {
	Cache     Cache
	Covers    Covers
	Playlists PlaylistStore
}

var (
	ErrNoCache     = errors.New("musikr: storage has no cache")
	ErrNoCovers    = errors.New("musikr: storage has no covers")
	ErrNoPlaylists = errors.New("musikr: storage has no playlist store")
)

func (s Storage) validate() error {
	switch {
	case s.Cache == nil:
		return ErrNoCache
	case s.Covers == nil:
		return ErrNoCovers
	case s.Playlists == nil:
		return ErrNoPlaylists
	}
	return nil
}

// Musikr loads libraries.
type Musikr struct {
	storage        Storage
	interpretation Interpretation
	opts           *options
}

// New returns a Musikr reading from and writing to storage.
func New(storage Storage, interpretation Interpretation, opts ...Option) *Musikr {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Musikr{storage: storage, interpretation: interpretation, opts: o}
}

// LibraryResult is a freshly loaded library.
type LibraryResult struct {
	Library *Library

	result *pipeline.Result
}

// RenderGraphviz writes the graph the library was built from in DOT
// format.
func (r *LibraryResult) RenderGraphviz(w io.Writer) error {
	return r.result.Graph.RenderGraphviz(w)
}

// Cleanup removes cache entries and stored covers that the library no
// longer references. Call it once the library is in use.
func (r *LibraryResult) Cleanup(ctx context.Context) error {
	return r.result.Cleanup(ctx)
}

// Run loads the library under locations. onProgress may be nil. It is
// called from the goroutine that called Run, so it must not block for
// long.
func (m *Musikr) Run(ctx context.Context, locations []string, onProgress func(IndexingProgress)) (*LibraryResult, error) {
	if err := m.storage.validate(); err != nil {
		return nil, err
	}
	res, err := pipeline.Run(ctx, pipeline.Config{
		Cache:          m.storage.Cache,
		Covers:         m.storage.Covers,
		Playlists:      m.storage.Playlists,
		Interpretation: m.interpretation,
		ExtractWorkers: m.opts.extractWorkers,
		ExploreWorkers: m.opts.exploreWorkers,
		MBIDPolicy:     m.opts.mbidPolicy,
		WithHidden:     m.opts.withHidden,
		Logger:         m.opts.logger,
	}, locations, onProgress)
	if err != nil {
		return nil, err
	}
	return &LibraryResult{Library: res.Library, result: res}, nil
}
