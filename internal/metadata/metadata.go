// Package metadata reads the raw container metadata of an audio file.
//
// Format packages register themselves with the registry from init; this
// package imports all of them. Files that no registered extractor can read
// fall back to github.com/dhowden/tag, whose normalized accessors are
// mapped onto Xiph-style comment keys.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"

	"github.com/dhowden/tag"
	"golang.org/x/sync/errgroup"

	_ "github.com/simonhull/musikr/internal/id3v2" // MP3, WAV, AIFF
	_ "github.com/simonhull/musikr/internal/mp4"
	"github.com/simonhull/musikr/internal/registry"
	"github.com/simonhull/musikr/internal/types"
	_ "github.com/simonhull/musikr/internal/xiph" // FLAC, Ogg Vorbis, Opus
)

// Extract opens path and reads its metadata.
func Extract(ctx context.Context, path string) (*types.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	return ExtractReader(f, stat.Size(), path)
}

// ExtractReader reads metadata from r. The reader must also implement
// io.ReadSeeker for the fallback extractor to be usable.
func ExtractReader(r io.ReaderAt, size int64, path string) (*types.Metadata, error) {
	format, detectErr := types.DetectFormat(r, size, path)
	var md *types.Metadata
	var err error
	if detectErr == nil {
		if e := registry.Get(format); e != nil {
			md, err = e.Extract(r, size, path)
		} else {
			err = &types.UnsupportedFormatError{
				Path:   path,
				Reason: fmt.Sprintf("no extractor available for format %s", format),
			}
		}
	} else {
		err = detectErr
	}
	if err == nil && !md.Empty() {
		return md, nil
	}

	rs, ok := r.(io.ReadSeeker)
	if !ok {
		if err != nil {
			return nil, err
		}
		return md, nil
	}
	fallback, ferr := fallbackExtract(rs, size, path, format)
	switch {
	case ferr == nil && md != nil:
		// Keep the native properties; only the tags were missing.
		fallback.Properties = md.Properties
		fallback.Warnings = append(md.Warnings, fallback.Warnings...)
		return fallback, nil
	case ferr == nil:
		return fallback, nil
	case err != nil:
		return nil, err
	default:
		return md, nil
	}
}

// fallbackExtract reads tags with dhowden/tag.
func fallbackExtract(rs io.ReadSeeker, size int64, path string, format types.Format) (*types.Metadata, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	m, err := tag.ReadFrom(rs)
	if err != nil {
		if errors.Is(err, tag.ErrNoTagsFound) {
			return nil, &types.UnsupportedFormatError{Path: path, Reason: "no tags found"}
		}
		return nil, fmt.Errorf("fallback: %w", err)
	}
	if format == types.FormatUnknown {
		format = formatOf(m.FileType())
	}
	md := types.NewMetadata(path, format, size)
	md.AddXiph("TITLE", m.Title())
	md.AddXiph("ARTIST", m.Artist())
	md.AddXiph("ALBUM", m.Album())
	md.AddXiph("ALBUMARTIST", m.AlbumArtist())
	md.AddXiph("COMPOSER", m.Composer())
	md.AddXiph("GENRE", m.Genre())
	if y := m.Year(); y > 0 {
		md.AddXiph("DATE", strconv.Itoa(y))
	}
	if n, total := m.Track(); n > 0 {
		md.AddXiph("TRACKNUMBER", strconv.Itoa(n))
		if total > 0 {
			md.AddXiph("TOTALTRACKS", strconv.Itoa(total))
		}
	}
	if n, total := m.Disc(); n > 0 {
		md.AddXiph("DISCNUMBER", strconv.Itoa(n))
		if total > 0 {
			md.AddXiph("TOTALDISCS", strconv.Itoa(total))
		}
	}
	if pic := m.Picture(); pic != nil {
		md.OfferCover(types.Picture{
			Type:     types.PictureFrontCover,
			MIMEType: pic.MIMEType,
			Data:     pic.Data,
		})
	}
	md.Warn("metadata", 0, "read with fallback extractor (%s)", m.Format())
	return md, nil
}

func formatOf(ft tag.FileType) types.Format {
	switch ft {
	case tag.FLAC:
		return types.FormatFLAC
	case tag.MP3:
		return types.FormatMP3
	case tag.M4A, tag.M4B, tag.M4P, tag.ALAC:
		return types.FormatMP4
	case tag.OGG:
		return types.FormatOgg
	}
	return types.FormatUnknown
}

// ExtractMany reads several files concurrently with up to runtime.NumCPU()
// goroutines. Results keep the order of paths.
//
// If any file fails, the first error is returned.
func ExtractMany(ctx context.Context, paths ...string) ([]*types.Metadata, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	results := make([]*types.Metadata, len(paths))
	for i, path := range paths {
		g.Go(func() error {
			md, err := Extract(ctx, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = md
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
