// Package pipeline loads a music library from disk in three stages.
//
// Explore walks the locations and checks every audio file against the
// cache. Files that are new, changed, or whose cover disappeared go to
// Extract, a bounded pool that reads their metadata, stores their cover
// and writes them back to the cache. Evaluate runs on the calling goroutine:
// it interprets every song, builds the music graph and materializes the
// library.
package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/simonhull/musikr/internal/cache"
	"github.com/simonhull/musikr/internal/covers"
	"github.com/simonhull/musikr/internal/fs"
	"github.com/simonhull/musikr/internal/graph"
	"github.com/simonhull/musikr/internal/logger"
	"github.com/simonhull/musikr/internal/metadata"
	"github.com/simonhull/musikr/internal/model"
	"github.com/simonhull/musikr/internal/playlist"
	"github.com/simonhull/musikr/internal/tag/interpret"
	"github.com/simonhull/musikr/internal/tag/parse"
)

const (
	DefaultExtractWorkers = 16
	DefaultExploreWorkers = 8

	bufferSize = 64
)

// Config wires the stages to their storage.
type Config struct {
	Cache          cache.Cache
	Covers         covers.MutableCovers
	Playlists      playlist.Store
	Interpretation interpret.Interpretation

	ExtractWorkers int
	ExploreWorkers int
	MBIDPolicy     graph.MBIDPolicy
	WithHidden     bool
	Logger         logger.Logger

	// Now stamps AddedMs on songs seen for the first time.
	Now func() time.Time
}

func (c *Config) setDefaults() {
	if c.ExtractWorkers <= 0 {
		c.ExtractWorkers = DefaultExtractWorkers
	}
	if c.ExploreWorkers <= 0 {
		c.ExploreWorkers = DefaultExploreWorkers
	}
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// Progress is reported while loading. It is either SongsProgress or
// IndeterminateProgress.
type Progress interface {
	progress()
}

// SongsProgress counts explored audio files and the songs loaded from
// them so far.
type SongsProgress struct {
	Loaded   int
	Explored int
}

// IndeterminateProgress means every file was read and the library is being
// assembled.
type IndeterminateProgress struct{}

func (SongsProgress) progress()         {}
func (IndeterminateProgress) progress() {}

// Result is a loaded library.
type Result struct {
	Library *model.MutableLibrary
	Graph   *graph.MusicGraph

	cache  cache.Cache
	covers covers.MutableCovers
}

// Cleanup drops cache entries and stored covers that no song in the library
// references anymore.
func (r *Result) Cleanup(ctx context.Context) error {
	songs := r.Library.Songs()
	paths := make([]string, 0, len(songs))
	var used []covers.Cover
	for _, s := range songs {
		paths = append(paths, s.Path)
		if s.Cover != nil {
			used = append(used, s.Cover)
		}
	}
	if err := r.cache.Cleanup(ctx, paths); err != nil {
		return fmt.Errorf("clean up cache: %w", err)
	}
	if err := r.covers.Cleanup(ctx, used); err != nil {
		return fmt.Errorf("clean up covers: %w", err)
	}
	return nil
}

// pending is an audio file that has to be extracted.
type pending struct {
	file    fs.File
	addedMs int64
}

// event flows into Evaluate. An explored event always precedes the song
// event for the same file.
type event struct {
	explored bool
	song     *interpret.RawSong
}

// Run loads the library found under locations. onProgress may be nil; it
// is called from the goroutine that called Run.
//
// Cancelling ctx stops every stage and Run returns ctx.Err().
func Run(ctx context.Context, cfg Config, locations []string, onProgress func(Progress)) (*Result, error) {
	cfg.setDefaults()
	if onProgress == nil {
		onProgress = func(Progress) {}
	}
	log := cfg.Logger

	g, gctx := errgroup.WithContext(ctx)
	files := make(chan fs.File, bufferSize)
	toExtract := make(chan pending, bufferSize)
	events := make(chan event, bufferSize)

	var stored []playlist.PrePlaylist
	g.Go(func() error {
		var err error
		stored, err = cfg.Playlists.Read(gctx)
		if err != nil {
			return fmt.Errorf("read playlists: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		defer close(files)
		return fs.Explore(gctx, locations, fs.Options{WithHidden: cfg.WithHidden}, files)
	})

	fanOut(g, cfg.ExploreWorkers, func() { close(toExtract) }, func() error {
		return explore(gctx, cfg, files, toExtract, events)
	})

	fanOut(g, cfg.ExtractWorkers, func() { close(events) }, func() error {
		return extract(gctx, cfg, toExtract, events)
	})

	builder := graph.NewBuilder(graph.WithMBIDPolicy(cfg.MBIDPolicy))
	interpreter := interpret.New(cfg.Interpretation)
	var progress SongsProgress
	onProgress(progress)
	for ev := range events {
		if ev.explored {
			progress.Explored++
		} else {
			builder.Add(interpreter.Interpret(*ev.song))
			progress.Loaded++
		}
		onProgress(progress)
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	onProgress(IndeterminateProgress{})
	for _, p := range stored {
		builder.AddPlaylist(p)
	}
	mg := builder.Build()
	lib := model.NewLibrary(mg, cfg.Playlists)
	log.Info("library loaded",
		"songs", len(lib.Songs()),
		"albums", len(lib.Albums()),
		"artists", len(lib.Artists()),
		"genres", len(lib.Genres()),
		"playlists", len(lib.Playlists()))

	return &Result{Library: lib, Graph: mg, cache: cfg.Cache, covers: cfg.Covers}, nil
}

// fanOut starts n copies of work and calls done once all of them returned.
func fanOut(g *errgroup.Group, n int, done func(), work func() error) {
	var remaining atomic.Int32
	remaining.Store(int32(n))
	for range n {
		g.Go(func() error {
			defer func() {
				if remaining.Add(-1) == 0 {
					done()
				}
			}()
			return work()
		})
	}
}

func send[T any](ctx context.Context, ch chan<- T, v T) error {
	select {
	case ch <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// explore sorts audio files into cached songs and files to extract.
func explore(ctx context.Context, cfg Config, files <-chan fs.File, toExtract chan<- pending, events chan<- event) error {
	for file := range files {
		if !file.IsAudio() || file.IsPlaylist() {
			continue
		}
		if err := send(ctx, events, event{explored: true}); err != nil {
			return err
		}

		res, err := cfg.Cache.Read(ctx, file)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			cfg.Logger.Warn("cache read failed", "path", file.Path, "err", err)
			res = cache.Result{Status: cache.Miss}
		}

		switch res.Status {
		case cache.Hit:
			if song, ok := fromCache(ctx, cfg, file, res.Song); ok {
				if err := send(ctx, events, event{song: song}); err != nil {
					return err
				}
				continue
			}
			cfg.Logger.Debug("cached cover missing", "path", file.Path)
			err = send(ctx, toExtract, pending{file: file, addedMs: res.AddedMs})
		case cache.Stale:
			err = send(ctx, toExtract, pending{file: file, addedMs: res.AddedMs})
		default:
			err = send(ctx, toExtract, pending{file: file, addedMs: cfg.Now().UnixMilli()})
		}
		if err != nil {
			return err
		}
	}
	return ctx.Err()
}

// fromCache rebuilds a song from its cache entry. It fails when the cover
// the entry points to no longer exists.
func fromCache(ctx context.Context, cfg Config, file fs.File, cached *cache.Song) (*interpret.RawSong, bool) {
	song := &interpret.RawSong{
		File:       file,
		Properties: cached.Properties,
		Tags:       cached.Tags,
		AddedMs:    cached.AddedMs,
	}
	if cached.CoverID == "" {
		return song, true
	}
	cover, ok := cfg.Covers.Obtain(ctx, cached.CoverID)
	if !ok {
		return nil, false
	}
	song.Cover = cover
	return song, true
}

func extract(ctx context.Context, cfg Config, toExtract <-chan pending, events chan<- event) error {
	for p := range toExtract {
		song, err := extractOne(ctx, cfg, p)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			cfg.Logger.Warn("skipping unreadable file", "path", p.file.Path, "err", err)
			continue
		}
		if err := send(ctx, events, event{song: song}); err != nil {
			return err
		}
	}
	return ctx.Err()
}

func extractOne(ctx context.Context, cfg Config, p pending) (*interpret.RawSong, error) {
	md, err := metadata.Extract(ctx, p.file.Path)
	if err != nil {
		return nil, err
	}
	for _, w := range md.Warnings {
		cfg.Logger.Debug("metadata warning", "path", p.file.Path, "warning", w.String())
	}
	tags := parse.Parse(md)

	cover, err := cfg.Covers.Create(ctx, p.file, md)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		cfg.Logger.Warn("storing cover failed", "path", p.file.Path, "err", err)
		cover = nil
	}

	entry := &cache.Song{
		Path:       p.file.Path,
		MIMEType:   p.file.MIMEType,
		Size:       p.file.Size,
		ModifiedMs: p.file.ModifiedMs,
		AddedMs:    p.addedMs,
		Properties: md.Properties,
		Tags:       tags,
	}
	if cover != nil {
		entry.CoverID = cover.ID()
	}
	if err := cfg.Cache.Write(ctx, entry); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		cfg.Logger.Warn("cache write failed", "path", p.file.Path, "err", err)
	}

	return &interpret.RawSong{
		File:       p.file,
		Properties: md.Properties,
		Tags:       tags,
		Cover:      cover,
		AddedMs:    p.addedMs,
	}, nil
}
