//go:build cgo

package playlist

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/simonhull/musikr/internal/music"
)

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "playlists.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	testStore(t, s)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "playlists.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	p := PrePlaylist{UID: music.RandomUID(music.ItemPlaylist), Name: "Kept", SongPointers: songUIDs(2)}
	if err := s.Create(ctx, p); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, err := s.Read(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].UID != p.UID || len(got[0].SongPointers) != 2 {
		t.Errorf("Read after reopen = %+v", got)
	}
}
