//go:build !cgo

package playlist

import (
	"context"
	"errors"

	"github.com/simonhull/musikr/internal/music"
)

var errNoSQLite = errors.New("sqlite playlist store is not available in non-CGO builds; rebuild with CGO_ENABLED=1")

// SQLiteStore is unavailable without cgo.
type SQLiteStore struct{}

// OpenSQLite always fails without cgo.
func OpenSQLite(path string) (*SQLiteStore, error) { return nil, errNoSQLite }

func (s *SQLiteStore) Close() error { return nil }

func (s *SQLiteStore) Read(context.Context) ([]PrePlaylist, error) { return nil, errNoSQLite }

func (s *SQLiteStore) Create(context.Context, PrePlaylist) error { return errNoSQLite }

func (s *SQLiteStore) Rename(context.Context, music.UID, string) error { return errNoSQLite }

func (s *SQLiteStore) Rewrite(context.Context, music.UID, []music.UID) error { return errNoSQLite }

func (s *SQLiteStore) Delete(context.Context, music.UID) error { return errNoSQLite }
