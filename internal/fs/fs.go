// Package fs discovers music files on disk.
package fs

import (
	"context"
	"errors"
	iofs "io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/simonhull/musikr/internal/types"
)

// File is a regular file found while exploring.
type File struct {
	Path       string
	MIMEType   string
	Size       int64
	ModifiedMs int64
}

// Name returns the file name with its extension.
func (f File) Name() string { return filepath.Base(f.Path) }

// Dir returns the path of the containing directory.
func (f File) Dir() string { return filepath.Dir(f.Path) }

// DirName returns the name of the containing directory.
func (f File) DirName() string { return filepath.Base(filepath.Dir(f.Path)) }

// Stem returns the file name without its final extension.
func (f File) Stem() string {
	name := f.Name()
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[:i]
	}
	return name
}

// IsAudio reports whether the file has an audio MIME type.
func (f File) IsAudio() bool { return strings.HasPrefix(f.MIMEType, "audio/") }

// IsPlaylist reports whether the file is an M3U playlist. Playlists carry
// an audio MIME type but hold no audio.
func (f File) IsPlaylist() bool { return f.MIMEType == "audio/x-mpegurl" }

// IsImage reports whether the file has an image MIME type.
func (f File) IsImage() bool { return strings.HasPrefix(f.MIMEType, "image/") }

// MIMEType infers a MIME type from a file name. Audio containers use the
// canonical types of their format; everything else defers to the mime
// package.
func MIMEType(name string) string {
	if f := types.FormatFromExtension(name); f != types.FormatUnknown {
		return f.MIMEType()
	}
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".m3u", ".m3u8":
		return "audio/x-mpegurl"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		t, _, _ = strings.Cut(t, ";")
		return t
	}
	return "application/octet-stream"
}

// Stat describes a single path.
func Stat(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, err
	}
	return fromInfo(path, info), nil
}

func fromInfo(path string, info iofs.FileInfo) File {
	return File{
		Path:       path,
		MIMEType:   MIMEType(path),
		Size:       info.Size(),
		ModifiedMs: info.ModTime().UnixMilli(),
	}
}

// Options tune exploration.
type Options struct {
	// WithHidden includes files and directories whose names start with ".".
	WithHidden bool
}

// Explore walks every location and sends each regular file to out. Paths
// are absolute. Unreadable directories are skipped; a missing location is
// an error. Explore does not close out.
func Explore(ctx context.Context, locations []string, opts Options, out chan<- File) error {
	for _, loc := range locations {
		root, err := filepath.Abs(loc)
		if err != nil {
			return err
		}
		if _, err := os.Stat(root); err != nil {
			return err
		}
		err = filepath.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() && path != root {
					return filepath.SkipDir
				}
				return nil
			}
			if !opts.WithHidden && path != root && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			select {
			case out <- fromInfo(path, info):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Siblings lists the regular files next to f, excluding f itself.
func Siblings(f File) ([]File, error) {
	entries, err := os.ReadDir(f.Dir())
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var out []File
	for _, e := range entries {
		if !e.Type().IsRegular() || e.Name() == f.Name() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, fromInfo(filepath.Join(f.Dir(), e.Name()), info))
	}
	return out, nil
}
