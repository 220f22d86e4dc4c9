// Package m3u imports and exports extended M3U playlists.
package m3u

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrEmpty is returned when a playlist file holds no entries.
var ErrEmpty = errors.New("m3u: no entries")

// Imported is a playlist read from an M3U file.
type Imported struct {
	// Name is the #PLAYLIST name, or "" if the file has none.
	Name  string
	Paths []string
}

// Read parses an M3U playlist. Relative entries are resolved against
// workingDir, normally the directory holding the playlist. Comments other
// than #PLAYLIST are ignored.
func Read(r io.Reader, workingDir string) (*Imported, error) {
	imported := &Imported{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(sc.Text(), "\ufeff"))
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			key, value, _ := strings.Cut(line, ":")
			if key == "#PLAYLIST" {
				imported.Name = strings.TrimSpace(value)
			}
			continue
		}
		imported.Paths = append(imported.Paths, resolve(line, workingDir))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read m3u: %w", err)
	}
	if len(imported.Paths) == 0 {
		return nil, ErrEmpty
	}
	return imported, nil
}

func resolve(entry, workingDir string) string {
	entry = strings.ReplaceAll(entry, `\`, "/")
	// Drive letters are dropped; the entry is assumed to be on the same
	// volume as the playlist.
	if len(entry) >= 2 && entry[1] == ':' {
		entry = entry[2:]
	}
	if strings.HasPrefix(entry, "/") {
		return filepath.FromSlash(path.Clean(entry))
	}
	return filepath.Join(workingDir, filepath.FromSlash(entry))
}

// Entry is one song in an exported playlist.
type Entry struct {
	Path       string
	DurationMs int64
	Name       string
	Album      string
	Artists    []string
	Genres     []string
}

// ExportConfig controls how paths are written.
type ExportConfig struct {
	// Absolute writes full paths instead of paths relative to the
	// working directory.
	Absolute bool
	// WindowsPaths writes backslash separators.
	WindowsPaths bool
}

// Write exports a playlist in extended M3U form.
func Write(w io.Writer, name string, entries []Entry, workingDir string, cfg ExportConfig) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "#EXTM3U")
	fmt.Fprintln(bw, "#EXTENC:UTF-8")
	fmt.Fprintf(bw, "#PLAYLIST:%s\n", name)
	for _, e := range entries {
		p := e.Path
		if !cfg.Absolute {
			if rel, err := filepath.Rel(workingDir, e.Path); err == nil {
				p = rel
			}
		}
		p = filepath.ToSlash(p)
		if cfg.WindowsPaths {
			p = strings.ReplaceAll(p, "/", `\`)
		}
		fmt.Fprintf(bw, "#EXTINF:%d,%s\n", e.DurationMs, e.Name)
		fmt.Fprintf(bw, "#EXTALB:%s\n", e.Album)
		fmt.Fprintf(bw, "#EXTART:%s\n", strings.Join(e.Artists, ", "))
		fmt.Fprintf(bw, "#EXTGEN:%s\n", strings.Join(e.Genres, ", "))
		fmt.Fprintln(bw, p)
	}
	return bw.Flush()
}

var (
	nameSeparators = regexp.MustCompile(`[_-]`)
	spaces         = regexp.MustCompile(`\s+`)
)

// NameFromFile derives a playlist name from the playlist's file name, for
// files without a #PLAYLIST line.
func NameFromFile(file string) string {
	base := filepath.Base(file)
	base, _, _ = strings.Cut(base, ".")
	base = nameSeparators.ReplaceAllString(base, " ")
	return spaces.ReplaceAllString(base, " ")
}
