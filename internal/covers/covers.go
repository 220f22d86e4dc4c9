// Package covers stores and resolves album art.
//
// A Cover is identified by a string ID whose prefix names the source that
// produced it: "mcs:" for covers written to a content-addressed Storage
// and "mcf:" for image files found next to the audio. IDs are persisted in
// the metadata cache, so they must stay stable across runs.
package covers

import (
	"cmp"
	"context"
	"errors"
	"io"
	"slices"

	"github.com/simonhull/musikr/internal/fs"
	"github.com/simonhull/musikr/internal/types"
)

// Cover is a reference to image data.
type Cover interface {
	ID() string
	// Open returns the raw image bytes. Nothing is promised about their
	// format.
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Covers resolves previously created covers by ID.
type Covers interface {
	// Obtain returns the cover for id, or false when it no longer exists.
	// A miss means the song referencing it must be re-extracted.
	Obtain(ctx context.Context, id string) (Cover, bool)
}

// MutableCovers can also create and clean up covers.
type MutableCovers interface {
	Covers
	// Create returns the cover for a song, or nil when it has none.
	Create(ctx context.Context, file fs.File, md *types.Metadata) (Cover, error)
	// Cleanup removes every cover not in excluding.
	Cleanup(ctx context.Context, excluding []Cover) error
}

// Chain tries each source in order. Obtain returns the first hit and
// Create the first non-nil cover. Cleanup runs on every source.
func Chain(sources ...MutableCovers) MutableCovers {
	return chain(sources)
}

type chain []MutableCovers

func (c chain) Obtain(ctx context.Context, id string) (Cover, bool) {
	for _, src := range c {
		if cover, ok := src.Obtain(ctx, id); ok {
			return cover, true
		}
	}
	return nil, false
}

func (c chain) Create(ctx context.Context, file fs.File, md *types.Metadata) (Cover, error) {
	var errs []error
	for _, src := range c {
		cover, err := src.Create(ctx, file, md)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if cover != nil {
			return cover, nil
		}
	}
	return nil, errors.Join(errs...)
}

func (c chain) Cleanup(ctx context.Context, excluding []Cover) error {
	var errs []error
	for _, src := range c {
		errs = append(errs, src.Cleanup(ctx, excluding))
	}
	return errors.Join(errs...)
}

// Collection is a deduplicated set of covers ordered by how often each
// one occurs, most frequent first. Ties are broken by descending ID.
type Collection struct {
	covers []Cover
}

// NewCollection groups covers by ID and keeps the first cover of each group.
func NewCollection(covers []Cover) Collection {
	type group struct {
		first Cover
		count int
	}
	index := make(map[string]int)
	var groups []group
	for _, c := range covers {
		if c == nil {
			continue
		}
		if i, ok := index[c.ID()]; ok {
			groups[i].count++
			continue
		}
		index[c.ID()] = len(groups)
		groups = append(groups, group{first: c, count: 1})
	}
	slices.SortStableFunc(groups, func(a, b group) int {
		if n := cmp.Compare(b.count, a.count); n != 0 {
			return n
		}
		return cmp.Compare(b.first.ID(), a.first.ID())
	})
	out := make([]Cover, len(groups))
	for i, g := range groups {
		out[i] = g.first
	}
	return Collection{covers: out}
}

// Covers returns the ordered covers.
func (c Collection) Covers() []Cover { return c.covers }

// First returns the most frequent cover, or nil.
func (c Collection) First() Cover {
	if len(c.covers) == 0 {
		return nil
	}
	return c.covers[0]
}

// Len returns the number of distinct covers.
func (c Collection) Len() int { return len(c.covers) }
