package musikr

import (
	"github.com/simonhull/musikr/internal/graph"
	"github.com/simonhull/musikr/internal/logger"
	"github.com/simonhull/musikr/internal/pipeline"
)

// Option configures a Musikr.
//
// Example:
//
//	m := musikr.New(storage, interpretation,
//	    musikr.WithLogger(logger.New(os.Stderr, logger.DebugLevel)),
//	    musikr.WithExtractWorkers(4),
//	)
type Option func(*options)

type options struct {
	logger         logger.Logger
	extractWorkers int
	exploreWorkers int
	mbidPolicy     graph.MBIDPolicy
	withHidden     bool
}

func defaultOptions() *options {
	return &options{
		logger:         logger.Nop(),
		extractWorkers: pipeline.DefaultExtractWorkers,
		exploreWorkers: pipeline.DefaultExploreWorkers,
		mbidPolicy:     graph.MBIDStrict,
	}
}

// MBIDPolicy decides how entities that share a name merge when only some
// of them carry a MusicBrainz ID.
type MBIDPolicy = graph.MBIDPolicy

const (
	// MBIDStrict merges untagged entities only with each other.
	MBIDStrict = graph.MBIDStrict
	// MBIDDiscardPartial drops the IDs of a group and merges it whole
	// when any member lacks one.
	MBIDDiscardPartial = graph.MBIDDiscardPartial
)

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithExtractWorkers sets how many files are read concurrently. The
// default is 16.
func WithExtractWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.extractWorkers = n
		}
	}
}

// WithExploreWorkers sets how many explored files are checked against the
// cache concurrently.
func WithExploreWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.exploreWorkers = n
		}
	}
}

// WithMBIDPolicy sets the MusicBrainz ID merge policy. The default is
// MBIDStrict.
func WithMBIDPolicy(p MBIDPolicy) Option {
	return func(o *options) {
		o.mbidPolicy = p
	}
}

// WithHidden includes files and directories whose names start with ".".
func WithHidden() Option {
	return func(o *options) {
		o.withHidden = true
	}
}
