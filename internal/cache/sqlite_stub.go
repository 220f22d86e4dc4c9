//go:build !cgo

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/simonhull/musikr/internal/fs"
)

var errNoSQLite = errors.New("sqlite cache is not available in non-CGO builds; rebuild with CGO_ENABLED=1")

// SQLite is unavailable without cgo.
type SQLite struct{}

// Open always fails without cgo.
func Open(path string) (*SQLite, error) { return nil, errNoSQLite }

func (s *SQLite) Close() error { return nil }

func (s *SQLite) Read(context.Context, fs.File) (Result, error) { return Result{}, errNoSQLite }

func (s *SQLite) Write(context.Context, *Song) error { return errNoSQLite }

func (s *SQLite) Cleanup(context.Context, []string) error { return errNoSQLite }

func (s *SQLite) Prune(context.Context, time.Time) error { return errNoSQLite }
