// Package playlist persists user playlists.
//
// Playlists reference songs by UID. A pointer may match any of the UID
// variants a song has carried over time; resolution happens in the graph.
package playlist

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/simonhull/musikr/internal/music"
)

// ErrNotFound is returned when a playlist UID is not stored.
var ErrNotFound = errors.New("playlist not found")

// PrePlaylist is a stored playlist before its songs are resolved.
type PrePlaylist struct {
	UID          music.UID
	Name         string
	SongPointers []music.UID
}

// Store persists playlists.
type Store interface {
	// Read returns every stored playlist in creation order.
	Read(ctx context.Context) ([]PrePlaylist, error)
	Create(ctx context.Context, p PrePlaylist) error
	Rename(ctx context.Context, uid music.UID, name string) error
	Rewrite(ctx context.Context, uid music.UID, songs []music.UID) error
	Delete(ctx context.Context, uid music.UID) error
}

// MemoryStore keeps playlists in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu        sync.Mutex
	playlists []PrePlaylist
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Read(ctx context.Context) ([]PrePlaylist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PrePlaylist, len(s.playlists))
	for i, p := range s.playlists {
		p.SongPointers = slices.Clone(p.SongPointers)
		out[i] = p
	}
	return out, nil
}

func (s *MemoryStore) Create(ctx context.Context, p PrePlaylist) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p.SongPointers = slices.Clone(p.SongPointers)
	if i := s.index(p.UID); i >= 0 {
		s.playlists[i] = p
		return nil
	}
	s.playlists = append(s.playlists, p)
	return nil
}

func (s *MemoryStore) Rename(ctx context.Context, uid music.UID, name string) error {
	return s.update(ctx, uid, func(p *PrePlaylist) { p.Name = name })
}

func (s *MemoryStore) Rewrite(ctx context.Context, uid music.UID, songs []music.UID) error {
	return s.update(ctx, uid, func(p *PrePlaylist) { p.SongPointers = slices.Clone(songs) })
}

func (s *MemoryStore) Delete(ctx context.Context, uid music.UID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(uid)
	if i < 0 {
		return ErrNotFound
	}
	s.playlists = slices.Delete(s.playlists, i, i+1)
	return nil
}

func (s *MemoryStore) update(ctx context.Context, uid music.UID, fn func(*PrePlaylist)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(uid)
	if i < 0 {
		return ErrNotFound
	}
	fn(&s.playlists[i])
	return nil
}

func (s *MemoryStore) index(uid music.UID) int {
	return slices.IndexFunc(s.playlists, func(p PrePlaylist) bool { return p.UID == uid })
}
