// Command musikr-scan loads a music library and prints it.
//
// Configuration comes from MUSIKR_* environment variables, optionally read
// from a .env file in the working directory. By default a summary is
// printed; -dot prints the music graph in Graphviz format and -export
// prints a playlist as M3U.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/simonhull/musikr"
	"github.com/simonhull/musikr/internal/logger"
)

var (
	dot         bool
	exportName  string
	importPath  string
	cleanup     bool
	pruneAfter  time.Duration
	showVersion bool
)

func init() {
	flag.BoolVar(&dot, "dot", false, "print the music graph in Graphviz DOT format")
	flag.StringVar(&exportName, "export", "", "print the named playlist as M3U")
	flag.StringVar(&importPath, "import", "", "import an M3U file as a playlist")
	flag.BoolVar(&cleanup, "cleanup", false, "remove cache entries and covers of songs that are gone")
	flag.DurationVar(&pruneAfter, "prune", 0, "drop cache entries unused for this long")
	flag.BoolVar(&showVersion, "version", false, "print the version and exit")
}

func main() {
	flag.Parse()

	if showVersion {
		info := musikr.GetVersionInfo()
		fmt.Printf("musikr %s (%s, %s)\n", info.Version, info.Revision, info.GoVersion)
		return
	}

	envLoaded := loadEnv()
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "musikr-scan: %v\n", err)
		os.Exit(2)
	}
	log := logger.New(os.Stderr, cfg.LogLevel)
	if !envLoaded {
		log.Debug("no .env file found, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, log, os.Stdout); err != nil {
		log.Error("scan failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config, log logger.Logger, out io.Writer) error {
	storage, closeStorage, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer closeStorage()

	m := musikr.New(storage, musikr.NewInterpretation(cfg.Separators, cfg.IntelligentSorting),
		musikr.WithLogger(log),
		musikr.WithMBIDPolicy(cfg.MBIDPolicy),
	)

	start := time.Now()
	res, err := m.Run(ctx, cfg.Locations, func(p musikr.IndexingProgress) {
		switch p := p.(type) {
		case musikr.SongsProgress:
			if p.Loaded > 0 && p.Loaded%500 == 0 {
				log.Info("loading", "loaded", p.Loaded, "explored", p.Explored)
			}
		case musikr.IndeterminateProgress:
			log.Info("building library")
		}
	})
	if err != nil {
		return err
	}
	log.Info("scan finished", "elapsed", time.Since(start).Round(time.Millisecond))

	if cleanup {
		if err := res.Cleanup(ctx); err != nil {
			return err
		}
	}
	if pruneAfter > 0 {
		if err := storage.Cache.Prune(ctx, time.Now().Add(-pruneAfter)); err != nil {
			return fmt.Errorf("prune cache: %w", err)
		}
	}

	lib := res.Library
	if importPath != "" {
		if lib, err = importPlaylist(ctx, lib, importPath); err != nil {
			return err
		}
	}

	switch {
	case dot:
		return res.RenderGraphviz(out)
	case exportName != "":
		p := lib.FindPlaylistByName(exportName)
		if p == nil {
			return fmt.Errorf("no playlist named %q", exportName)
		}
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		return musikr.ExportM3U(out, p, wd, musikr.M3UConfig{})
	}
	printSummary(out, lib)
	return nil
}

// openStorage opens the configured stores. Empty database paths fall back
// to memory.
func openStorage(cfg config) (musikr.Storage, func(), error) {
	var closers []func() error
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	var storage musikr.Storage
	if cfg.CacheDB != "" {
		c, err := musikr.OpenCache(cfg.CacheDB)
		if err != nil {
			return storage, nil, err
		}
		closers = append(closers, c.Close)
		storage.Cache = c
	} else {
		storage.Cache = musikr.MemoryCache()
	}

	if cfg.PlaylistDB != "" {
		p, err := musikr.OpenPlaylists(cfg.PlaylistDB)
		if err != nil {
			closeAll()
			return storage, nil, err
		}
		closers = append(closers, p.Close)
		storage.Playlists = p
	} else {
		storage.Playlists = musikr.MemoryPlaylists()
	}

	transcoding := musikr.NoTranscoding
	if cfg.CoverQuality > 0 {
		transcoding = musikr.CompressedCovers(1000, cfg.CoverQuality)
	}
	if err := os.MkdirAll(cfg.CoversDir, 0o755); err != nil {
		closeAll()
		return storage, nil, err
	}
	covers, err := musikr.StoredCovers(cfg.CoversDir, transcoding)
	if err != nil {
		closeAll()
		return storage, nil, err
	}
	storage.Covers = covers
	return storage, closeAll, nil
}

func importPlaylist(ctx context.Context, lib *musikr.Library, path string) (*musikr.Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return musikr.ImportM3U(ctx, lib, f, filepath.Dir(abs), musikr.M3UNameFromFile(path))
}

func printSummary(w io.Writer, lib *musikr.Library) {
	fmt.Fprintf(w, "%d songs, %d albums, %d artists, %d genres, %d playlists\n",
		len(lib.Songs()), len(lib.Albums()), len(lib.Artists()), len(lib.Genres()), len(lib.Playlists()))
	for _, a := range lib.Albums() {
		var artists string
		for i, ar := range a.Artists() {
			if i > 0 {
				artists += ", "
			}
			artists += ar.Name.Resolve()
		}
		fmt.Fprintf(w, "  %s - %s (%d songs)\n", artists, a.Name.Resolve(), len(a.Songs()))
	}
	for _, p := range lib.Playlists() {
		fmt.Fprintf(w, "  playlist %s (%d songs)\n", p.Name, len(p.Songs()))
	}
}
