//go:build cgo

package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/simonhull/musikr/internal/fs"
)

func TestSQLite(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	testCache(t, c)
}

func TestSQLite_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")
	c, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Write(ctx, cachedSong("/music/a.flac", 7)); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	c, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	res, err := c.Read(ctx, fs.File{Path: "/music/a.flac", ModifiedMs: 7})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != Hit || res.Song.Tags.AlbumName != "Abbey Road" {
		t.Errorf("reopened = %+v", res)
	}
}
