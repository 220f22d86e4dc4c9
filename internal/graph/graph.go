// Package graph links interpreted songs into a graph of albums, artists,
// genres and playlists and deduplicates it.
//
// Vertices are created and linked by a Builder, which is single-writer.
// Build simplifies the graph, removes duplicate edges, resolves playlist
// pointers and assigns every surviving vertex a dense index. Afterwards the
// graph is read-only.
package graph

import (
	"errors"
	"fmt"
	"slices"

	"github.com/simonhull/musikr/internal/music"
	"github.com/simonhull/musikr/internal/playlist"
	"github.com/simonhull/musikr/internal/tag/interpret"
)

// SongVertex is a song and its outgoing edges.
type SongVertex struct {
	Pre     interpret.PreSong
	album   *AlbumVertex
	artists []*ArtistVertex
	genres  []*GenreVertex
	index   int
}

// Album returns the song's album.
func (v *SongVertex) Album() *AlbumVertex { return v.album }

// Artists returns the song's artists in tag order.
func (v *SongVertex) Artists() []*ArtistVertex { return v.artists }

// Genres returns the song's genres in tag order.
func (v *SongVertex) Genres() []*GenreVertex { return v.genres }

// Index is the position of the vertex in MusicGraph.Songs, or -1 before
// Build.
func (v *SongVertex) Index() int { return v.index }

func (v *SongVertex) String() string { return fmt.Sprintf("song %s (%s)", v.Pre.UID(), v.Pre.Path) }

// AlbumVertex is an album.
type AlbumVertex struct {
	Pre     interpret.PreAlbum
	artists []*ArtistVertex
	songs   set[*SongVertex]
	index   int
}

func (v *AlbumVertex) Artists() []*ArtistVertex { return v.artists }
func (v *AlbumVertex) Songs() []*SongVertex     { return v.songs.items }
func (v *AlbumVertex) Index() int               { return v.index }

func (v *AlbumVertex) String() string { return fmt.Sprintf("album %q", v.Pre.RawName) }

// ArtistVertex is an artist. Albums holds only the albums the artist is
// credited on as an album artist.
type ArtistVertex struct {
	Pre    interpret.PreArtist
	songs  set[*SongVertex]
	albums set[*AlbumVertex]
	genres set[*GenreVertex]
	index  int
}

func (v *ArtistVertex) Songs() []*SongVertex   { return v.songs.items }
func (v *ArtistVertex) Albums() []*AlbumVertex { return v.albums.items }
func (v *ArtistVertex) Genres() []*GenreVertex { return v.genres.items }
func (v *ArtistVertex) Index() int             { return v.index }

func (v *ArtistVertex) String() string { return fmt.Sprintf("artist %q", v.Pre.RawName) }

// GenreVertex is a genre.
type GenreVertex struct {
	Pre     interpret.PreGenre
	songs   set[*SongVertex]
	artists set[*ArtistVertex]
	index   int
}

func (v *GenreVertex) Songs() []*SongVertex     { return v.songs.items }
func (v *GenreVertex) Artists() []*ArtistVertex { return v.artists.items }
func (v *GenreVertex) Index() int               { return v.index }

func (v *GenreVertex) String() string { return fmt.Sprintf("genre %q", v.Pre.RawName) }

// PlaylistVertex is a stored playlist. Songs has one slot per pointer;
// slots whose pointer matched no song stay nil.
type PlaylistVertex struct {
	Pre      playlist.PrePlaylist
	songs    []*SongVertex
	pointers map[music.UID][]int
	index    int
}

func newPlaylistVertex(pre playlist.PrePlaylist) *PlaylistVertex {
	v := &PlaylistVertex{
		Pre:      pre,
		songs:    make([]*SongVertex, len(pre.SongPointers)),
		pointers: make(map[music.UID][]int),
		index:    -1,
	}
	for i, p := range pre.SongPointers {
		v.pointers[p] = append(v.pointers[p], i)
	}
	return v
}

func (v *PlaylistVertex) Songs() []*SongVertex { return v.songs }
func (v *PlaylistVertex) Index() int           { return v.index }

func (v *PlaylistVertex) String() string { return fmt.Sprintf("playlist %q", v.Pre.Name) }

func (v *PlaylistVertex) resolve(uid music.UID, song *SongVertex) {
	for _, i := range v.pointers[uid] {
		v.songs[i] = song
	}
}

// MusicGraph is a simplified, indexed graph.
type MusicGraph struct {
	Songs     []*SongVertex
	Albums    []*AlbumVertex
	Artists   []*ArtistVertex
	Genres    []*GenreVertex
	Playlists []*PlaylistVertex
}

// Empty reports whether the graph has no songs and no playlists.
func (g *MusicGraph) Empty() bool {
	return len(g.Songs) == 0 && len(g.Playlists) == 0
}

// Check verifies that every edge has its reverse edge and that every
// neighbour is a live vertex of g.
func (g *MusicGraph) Check() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}
	for i, s := range g.Songs {
		if s.index != i {
			fail("%v: index %d at position %d", s, s.index, i)
		}
		if !g.liveAlbum(s.album) || !s.album.songs.contains(s) {
			fail("%v: album %v does not link back", s, s.album)
		}
		for _, a := range s.artists {
			if !g.liveArtist(a) || !a.songs.contains(s) {
				fail("%v: artist %v does not link back", s, a)
			}
			for _, gv := range s.genres {
				if !a.genres.contains(gv) || !gv.artists.contains(a) {
					fail("%v: artist %v and genre %v are not linked", s, a, gv)
				}
			}
		}
		for _, gv := range s.genres {
			if !g.liveGenre(gv) || !gv.songs.contains(s) {
				fail("%v: genre %v does not link back", s, gv)
			}
		}
	}
	for i, al := range g.Albums {
		if al.index != i {
			fail("%v: index %d at position %d", al, al.index, i)
		}
		for _, s := range al.songs.items {
			if s.album != al {
				fail("%v: song %v points elsewhere", al, s)
			}
		}
		for _, a := range al.artists {
			if !g.liveArtist(a) || !a.albums.contains(al) {
				fail("%v: artist %v does not link back", al, a)
			}
		}
	}
	for i, a := range g.Artists {
		if a.index != i {
			fail("%v: index %d at position %d", a, a.index, i)
		}
		for _, s := range a.songs.items {
			if !slices.Contains(s.artists, a) {
				fail("%v: song %v does not link back", a, s)
			}
		}
		for _, al := range a.albums.items {
			if !slices.Contains(al.artists, a) {
				fail("%v: album %v does not link back", a, al)
			}
		}
		for _, gv := range a.genres.items {
			if !g.liveGenre(gv) || !gv.artists.contains(a) {
				fail("%v: genre %v does not link back", a, gv)
			}
		}
	}
	for i, gv := range g.Genres {
		if gv.index != i {
			fail("%v: index %d at position %d", gv, gv.index, i)
		}
		for _, s := range gv.songs.items {
			if !slices.Contains(s.genres, gv) {
				fail("%v: song %v does not link back", gv, s)
			}
		}
		for _, a := range gv.artists.items {
			if !a.genres.contains(gv) {
				fail("%v: artist %v does not link back", gv, a)
			}
		}
	}
	for _, p := range g.Playlists {
		for _, s := range p.songs {
			if s != nil && (s.index < 0 || s.index >= len(g.Songs) || g.Songs[s.index] != s) {
				fail("%v: song %v is not in the graph", p, s)
			}
		}
	}
	return errors.Join(errs...)
}

func (g *MusicGraph) liveAlbum(v *AlbumVertex) bool {
	return v != nil && v.index >= 0 && v.index < len(g.Albums) && g.Albums[v.index] == v
}

func (g *MusicGraph) liveArtist(v *ArtistVertex) bool {
	return v != nil && v.index >= 0 && v.index < len(g.Artists) && g.Artists[v.index] == v
}

func (g *MusicGraph) liveGenre(v *GenreVertex) bool {
	return v != nil && v.index >= 0 && v.index < len(g.Genres) && g.Genres[v.index] == v
}
