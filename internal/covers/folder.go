package covers

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/simonhull/musikr/internal/fs"
	"github.com/simonhull/musikr/internal/types"
)

const folderPrefix = "mcf:"

var (
	preferredCoverNames = []string{"front", "art", "album", "folder", "cover"}
	preferredFormats    = []string{"image/webp", "image/jpg", "image/jpeg", "image/png"}
	preferredExtensions = []string{"webp", "jpg", "jpeg", "png"}
)

// FolderCovers finds artwork stored as image files next to the audio.
// The files are not managed, so Cleanup does nothing.
type FolderCovers struct{}

// NewFolderCovers returns a folder cover source.
func NewFolderCovers() *FolderCovers { return &FolderCovers{} }

func (*FolderCovers) Obtain(_ context.Context, id string) (Cover, bool) {
	path, ok := strings.CutPrefix(id, folderPrefix)
	if !ok {
		return nil, false
	}
	// The image may have been deleted or replaced since the last scan.
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, false
	}
	return folderCover{path: path}, true
}

// Create picks the best scoring image in the song's directory. An image
// that matches none of the preferred names is ignored.
func (*FolderCovers) Create(ctx context.Context, file fs.File, _ *types.Metadata) (Cover, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	siblings, err := fs.Siblings(file)
	if err != nil {
		return nil, err
	}
	var best fs.File
	bestScore := 0
	for _, s := range siblings {
		if score := coverScore(s); score > bestScore {
			best, bestScore = s, score
		}
	}
	if bestScore == 0 {
		return nil, nil
	}
	return folderCover{path: best.Path}, nil
}

func (*FolderCovers) Cleanup(context.Context, []Cover) error { return nil }

func coverScore(f fs.File) int {
	if !strings.HasPrefix(strings.ToLower(f.MIMEType), "image/") {
		return 0
	}
	name := strings.ToLower(f.Stem())
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(f.Name())), ".")

	score := 0
	names := append(preferredCoverNames[:len(preferredCoverNames):len(preferredCoverNames)], f.DirName())
	for i, n := range names {
		if strings.Contains(name, strings.ToLower(n)) {
			score += i + 1
		}
	}
	score *= max(indexFold(preferredFormats, f.MIMEType), 1)
	score *= max(indexFold(preferredExtensions, ext), 1)
	return score
}

func indexFold(list []string, s string) int {
	for i, v := range list {
		if strings.EqualFold(v, s) {
			return i
		}
	}
	return -1
}

type folderCover struct {
	path string
}

func (c folderCover) ID() string { return folderPrefix + c.path }

func (c folderCover) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(c.path)
}
