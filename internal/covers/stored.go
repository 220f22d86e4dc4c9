package covers

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/simonhull/musikr/internal/fs"
	"github.com/simonhull/musikr/internal/types"
)

const storedPrefix = "mcs:"

// StoredCovers resolves covers kept in a Storage.
type StoredCovers struct {
	storage *Storage
}

// NewStoredCovers returns read-only access to storage.
func NewStoredCovers(storage *Storage) *StoredCovers {
	return &StoredCovers{storage: storage}
}

func (c *StoredCovers) Obtain(_ context.Context, id string) (Cover, bool) {
	name, ok := strings.CutPrefix(id, storedPrefix)
	if !ok {
		return nil, false
	}
	fc := c.storage.Find(name)
	if fc == nil {
		return nil, false
	}
	return storedCover{fc}, true
}

// MutableStoredCovers writes embedded covers into a Storage, named by the
// MD5 of the embedded bytes plus the transcoding tag. Identical artwork
// across songs is stored once.
type MutableStoredCovers struct {
	*StoredCovers
	transcoding Transcoding
}

// NewMutableStoredCovers returns covers stored in storage after transcoding.
func NewMutableStoredCovers(storage *Storage, transcoding Transcoding) *MutableStoredCovers {
	if transcoding == nil {
		transcoding = NoTranscoding
	}
	return &MutableStoredCovers{StoredCovers: NewStoredCovers(storage), transcoding: transcoding}
}

func (c *MutableStoredCovers) Create(ctx context.Context, _ fs.File, md *types.Metadata) (Cover, error) {
	if md == nil || md.Cover == nil || len(md.Cover.Data) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data := md.Cover.Data
	sum := md5.Sum(data)
	name := hex.EncodeToString(sum[:]) + c.transcoding.Tag()
	fc, err := c.storage.Write(name, func(w io.Writer) error {
		return c.transcoding.Transcode(data, w)
	})
	if err != nil {
		return nil, err
	}
	return storedCover{fc}, nil
}

// Cleanup removes every stored file not referenced by excluding.
func (c *MutableStoredCovers) Cleanup(ctx context.Context, excluding []Cover) error {
	used := make(map[string]bool)
	for _, cover := range excluding {
		if cover == nil {
			continue
		}
		if name, ok := strings.CutPrefix(cover.ID(), storedPrefix); ok {
			used[name] = true
		}
	}
	unused, err := c.storage.List(used)
	if err != nil {
		return fmt.Errorf("list covers: %w", err)
	}
	var errs []error
	for _, name := range unused {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.storage.Remove(name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type storedCover struct {
	*FileCover
}

func (c storedCover) ID() string { return storedPrefix + c.FileCover.ID() }
