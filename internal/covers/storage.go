package covers

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Storage is a flat directory of cover files.
//
// Writes to the same name are serialized through a per-name mutex, and a
// file that already exists is never rewritten.
type Storage struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStorage opens dir as cover storage, creating it if needed.
func NewStorage(dir string) (*Storage, error) {
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, iofs.ErrNotExist):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cover storage: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("stat cover storage: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("cover storage %s: not a directory", dir)
	}
	return &Storage{dir: dir, locks: make(map[string]*sync.Mutex)}, nil
}

// Dir returns the storage directory.
func (s *Storage) Dir() string { return s.dir }

func (s *Storage) lock(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.locks[name]
	if !ok {
		m = &sync.Mutex{}
		s.locks[name] = m
	}
	return m
}

// Find returns the stored file called name, or nil if there is none or it
// cannot be read.
func (s *Storage) Find(name string) *FileCover {
	path := filepath.Join(s.dir, name)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil
	}
	return &FileCover{id: name, path: path}
}

// Write stores the output of fn as name. If name already exists fn is not
// called. Data is written to name.tmp and renamed into place; on failure
// the temporary file is removed.
func (s *Storage) Write(name string, fn func(io.Writer) error) (*FileCover, error) {
	m := s.lock(name)
	m.Lock()
	defer m.Unlock()

	target := filepath.Join(s.dir, name)
	if _, err := os.Stat(target); err == nil {
		return &FileCover{id: name, path: target}, nil
	}

	tmp := target + ".tmp"
	if err := writeFile(tmp, fn); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("write cover %s: %w", name, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("write cover %s: %w", name, err)
	}
	return &FileCover{id: name, path: target}, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// List returns the names of all stored files not in exclude.
func (s *Storage) List(exclude map[string]bool) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !exclude[e.Name()] {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Remove deletes name. Missing files are not an error.
func (s *Storage) Remove(name string) error {
	return os.RemoveAll(filepath.Join(s.dir, name))
}

// FileCover is a cover backed by a file on disk.
type FileCover struct {
	id   string
	path string
}

// ID returns the ID of the cover.
func (c *FileCover) ID() string { return c.id }

// Path returns the location of the image file.
func (c *FileCover) Path() string { return c.path }

// Open opens the file for reading.
func (c *FileCover) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(c.path)
}
