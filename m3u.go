package musikr

import (
	"context"
	"fmt"
	"io"

	"github.com/simonhull/musikr/internal/playlist/m3u"
)

// M3UConfig controls how playlist paths are exported.
type M3UConfig = m3u.ExportConfig

// ErrEmptyPlaylist is returned when an imported M3U file lists no paths.
var ErrEmptyPlaylist = m3u.ErrEmpty

// ExportM3U writes p as an extended M3U playlist. Paths are relative to
// workingDir unless cfg.Absolute is set.
func ExportM3U(w io.Writer, p *Playlist, workingDir string, cfg M3UConfig) error {
	songs := p.Songs()
	entries := make([]m3u.Entry, 0, len(songs))
	for _, s := range songs {
		e := m3u.Entry{
			Path:       s.Path,
			DurationMs: s.DurationMs,
			Name:       s.Name.Resolve(),
			Album:      s.Album().Name.Resolve(),
		}
		for _, a := range s.Artists() {
			e.Artists = append(e.Artists, a.Name.Resolve())
		}
		for _, g := range s.Genres() {
			e.Genres = append(e.Genres, g.Name.Resolve())
		}
		entries = append(entries, e)
	}
	return m3u.Write(w, p.Name, entries, workingDir, cfg)
}

// ImportM3U creates a playlist from an M3U file whose relative paths are
// resolved against workingDir. Paths that are not in lib are skipped. The
// playlist is named after its #PLAYLIST directive, or fallbackName when it
// has none.
func ImportM3U(ctx context.Context, lib *Library, r io.Reader, workingDir, fallbackName string) (*Library, error) {
	imported, err := m3u.Read(r, workingDir)
	if err != nil {
		return nil, fmt.Errorf("read m3u: %w", err)
	}
	var songs []*Song
	for _, path := range imported.Paths {
		if s := lib.FindSongByPath(path); s != nil {
			songs = append(songs, s)
		}
	}
	name := imported.Name
	if name == "" {
		name = fallbackName
	}
	return lib.CreatePlaylist(ctx, name, songs)
}

// M3UNameFromFile derives a playlist name from an M3U file name.
func M3UNameFromFile(path string) string { return m3u.NameFromFile(path) }
