package model

import (
	"context"
	"fmt"
	"slices"

	"github.com/simonhull/musikr/internal/graph"
	"github.com/simonhull/musikr/internal/music"
	"github.com/simonhull/musikr/internal/playlist"
)

// Library is an immutable snapshot of the music on a device. It is safe
// for concurrent use. Slices returned by its methods must not be modified.
type Library struct {
	arena     *arena
	playlists []*Playlist

	songsByUID     map[music.UID]*Song
	songsByPath    map[string]*Song
	albumsByUID    map[music.UID]*Album
	artistsByUID   map[music.UID]*Artist
	genresByUID    map[music.UID]*Genre
	playlistsByUID map[music.UID]*Playlist
}

func (l *Library) Songs() []*Song         { return l.arena.songs }
func (l *Library) Albums() []*Album       { return l.arena.albums }
func (l *Library) Artists() []*Artist     { return l.arena.artists }
func (l *Library) Genres() []*Genre       { return l.arena.genres }
func (l *Library) Playlists() []*Playlist { return l.playlists }

// Empty reports whether the library has no songs and no playlists.
func (l *Library) Empty() bool {
	return len(l.arena.songs) == 0 && len(l.playlists) == 0
}

func (l *Library) FindSong(uid music.UID) *Song { return l.songsByUID[uid] }

// FindSongByPath returns the song stored at path, or nil.
func (l *Library) FindSongByPath(path string) *Song { return l.songsByPath[path] }

func (l *Library) FindAlbum(uid music.UID) *Album       { return l.albumsByUID[uid] }
func (l *Library) FindArtist(uid music.UID) *Artist     { return l.artistsByUID[uid] }
func (l *Library) FindGenre(uid music.UID) *Genre       { return l.genresByUID[uid] }
func (l *Library) FindPlaylist(uid music.UID) *Playlist { return l.playlistsByUID[uid] }

// FindPlaylistByName returns the first playlist named name, or nil.
func (l *Library) FindPlaylistByName(name string) *Playlist {
	for _, p := range l.playlists {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// MutableLibrary is a Library whose playlists can be edited. Every edit is
// persisted first and then returns a new library; the receiver never
// changes.
type MutableLibrary struct {
	*Library
	store playlist.Store
}

// NewLibrary materializes g. Playlist edits are persisted to store.
func NewLibrary(g *graph.MusicGraph, store playlist.Store) *MutableLibrary {
	a := &arena{
		songs:   make([]*Song, len(g.Songs)),
		albums:  make([]*Album, len(g.Albums)),
		artists: make([]*Artist, len(g.Artists)),
		genres:  make([]*Genre, len(g.Genres)),
	}
	// Songs first: the aggregates of every other entity are computed from
	// them.
	for i, v := range g.Songs {
		a.songs[i] = newSong(v, a)
	}
	for i, v := range g.Albums {
		a.albums[i] = newAlbum(v, a)
	}
	for i, v := range g.Artists {
		a.artists[i] = newArtist(v, a)
	}
	for i, v := range g.Genres {
		a.genres[i] = newGenre(v, a)
	}

	l := &Library{
		arena:        a,
		songsByUID:   make(map[music.UID]*Song, len(a.songs)),
		songsByPath:  make(map[string]*Song, len(a.songs)),
		albumsByUID:  make(map[music.UID]*Album, len(a.albums)),
		artistsByUID: make(map[music.UID]*Artist, len(a.artists)),
		genresByUID:  make(map[music.UID]*Genre, len(a.genres)),
	}
	for _, s := range a.songs {
		l.songsByUID[s.UID] = s
		l.songsByPath[s.Path] = s
	}
	for _, al := range a.albums {
		l.albumsByUID[al.UID] = al
	}
	for _, ar := range a.artists {
		l.artistsByUID[ar.UID] = ar
	}
	for _, gr := range a.genres {
		l.genresByUID[gr.UID] = gr
	}

	playlists := make([]*Playlist, 0, len(g.Playlists))
	for _, v := range g.Playlists {
		var songs []*Song
		for _, s := range v.Songs() {
			if s != nil {
				songs = append(songs, a.song(s))
			}
		}
		playlists = append(playlists, newPlaylist(v.Pre.UID, v.Pre.Name, songs))
	}
	l.setPlaylists(playlists)

	return &MutableLibrary{Library: l, store: store}
}

func (l *Library) setPlaylists(playlists []*Playlist) {
	l.playlists = playlists
	l.playlistsByUID = make(map[music.UID]*Playlist, len(playlists))
	for _, p := range playlists {
		l.playlistsByUID[p.UID] = p
	}
}

// withPlaylists returns a copy of l sharing everything but the playlists.
func (l *MutableLibrary) withPlaylists(playlists []*Playlist) *MutableLibrary {
	next := *l.Library
	next.setPlaylists(playlists)
	return &MutableLibrary{Library: &next, store: l.store}
}

// CreatePlaylist adds a playlist holding songs.
func (l *MutableLibrary) CreatePlaylist(ctx context.Context, name string, songs []*Song) (*MutableLibrary, error) {
	uid := music.RandomUID(music.ItemPlaylist)
	err := l.store.Create(ctx, playlist.PrePlaylist{UID: uid, Name: name, SongPointers: songUIDs(songs)})
	if err != nil {
		return nil, fmt.Errorf("create playlist %q: %w", name, err)
	}
	playlists := append(slices.Clip(l.playlists), newPlaylist(uid, name, slices.Clone(songs)))
	return l.withPlaylists(playlists), nil
}

// RenamePlaylist renames p.
func (l *MutableLibrary) RenamePlaylist(ctx context.Context, p *Playlist, name string) (*MutableLibrary, error) {
	i, err := l.indexOf(p)
	if err != nil {
		return nil, err
	}
	if err := l.store.Rename(ctx, p.UID, name); err != nil {
		return nil, fmt.Errorf("rename playlist %s: %w", p.UID, err)
	}
	return l.replace(i, newPlaylist(p.UID, name, p.songs)), nil
}

// AddToPlaylist appends songs to p.
func (l *MutableLibrary) AddToPlaylist(ctx context.Context, p *Playlist, songs []*Song) (*MutableLibrary, error) {
	return l.RewritePlaylist(ctx, p, append(slices.Clip(p.songs), songs...))
}

// RewritePlaylist replaces the songs of p.
func (l *MutableLibrary) RewritePlaylist(ctx context.Context, p *Playlist, songs []*Song) (*MutableLibrary, error) {
	i, err := l.indexOf(p)
	if err != nil {
		return nil, err
	}
	if err := l.store.Rewrite(ctx, p.UID, songUIDs(songs)); err != nil {
		return nil, fmt.Errorf("rewrite playlist %s: %w", p.UID, err)
	}
	return l.replace(i, newPlaylist(p.UID, p.Name, slices.Clone(songs))), nil
}

// DeletePlaylist removes p.
func (l *MutableLibrary) DeletePlaylist(ctx context.Context, p *Playlist) (*MutableLibrary, error) {
	i, err := l.indexOf(p)
	if err != nil {
		return nil, err
	}
	if err := l.store.Delete(ctx, p.UID); err != nil {
		return nil, fmt.Errorf("delete playlist %s: %w", p.UID, err)
	}
	return l.withPlaylists(slices.Delete(slices.Clone(l.playlists), i, i+1)), nil
}

func (l *MutableLibrary) indexOf(p *Playlist) (int, error) {
	i := slices.IndexFunc(l.playlists, func(x *Playlist) bool { return x.UID == p.UID })
	if i < 0 {
		return -1, fmt.Errorf("playlist %s: %w", p.UID, playlist.ErrNotFound)
	}
	return i, nil
}

func (l *MutableLibrary) replace(i int, p *Playlist) *MutableLibrary {
	playlists := slices.Clone(l.playlists)
	playlists[i] = p
	return l.withPlaylists(playlists)
}

func songUIDs(songs []*Song) []music.UID {
	uids := make([]music.UID, len(songs))
	for i, s := range songs {
		uids[i] = s.UID
	}
	return uids
}
