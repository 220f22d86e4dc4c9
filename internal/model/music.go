// Package model holds the immutable music library built from a graph.
//
// Entities reference each other through an arena shared by one library.
// Relations are resolved on demand, so cyclic references such as song to
// album to song never exist as pointers.
package model

import (
	"cmp"
	"slices"

	"github.com/simonhull/musikr/internal/covers"
	"github.com/simonhull/musikr/internal/graph"
	"github.com/simonhull/musikr/internal/music"
	"github.com/simonhull/musikr/internal/tag"
)

// Song is a single audio file.
type Song struct {
	UID          music.UID
	Name         tag.Name
	Track        *int
	Disc         *tag.Disc
	Date         *tag.Date
	Path         string
	MIMEType     string
	Size         int64
	DurationMs   int64
	BitrateKbps  int
	SampleRateHz int
	ReplayGain   tag.ReplayGainAdjustment
	ModifiedMs   int64
	AddedMs      int64
	// Cover is nil when the song has no cover.
	Cover covers.Cover

	vertex *graph.SongVertex
	arena  *arena
}

func newSong(v *graph.SongVertex, a *arena) *Song {
	pre := v.Pre
	return &Song{
		UID:          pre.UID(),
		Name:         pre.Name,
		Track:        pre.Track,
		Disc:         pre.Disc,
		Date:         pre.Date,
		Path:         pre.Path,
		MIMEType:     pre.MIMEType,
		Size:         pre.Size,
		DurationMs:   pre.DurationMs,
		BitrateKbps:  pre.BitrateKbps,
		SampleRateHz: pre.SampleRateHz,
		ReplayGain:   pre.ReplayGain,
		ModifiedMs:   pre.ModifiedMs,
		AddedMs:      pre.AddedMs,
		Cover:        pre.Cover,
		vertex:       v,
		arena:        a,
	}
}

func (s *Song) Album() *Album { return s.arena.album(s.vertex.Album()) }

func (s *Song) Artists() []*Artist { return resolveAll(s.vertex.Artists(), s.arena.artist) }

func (s *Song) Genres() []*Genre { return resolveAll(s.vertex.Genres(), s.arena.genre) }

func (s *Song) String() string { return "Song(" + s.UID.String() + ", " + s.Name.Resolve() + ")" }

// Album is a release.
type Album struct {
	UID         music.UID
	Name        tag.Name
	ReleaseType tag.ReleaseType
	// Dates is nil when no song is dated.
	Dates      *tag.DateRange
	Covers     covers.Collection
	DurationMs int64
	// AddedMs is the earliest AddedMs of the album's songs.
	AddedMs int64

	vertex *graph.AlbumVertex
	arena  *arena
}

func newAlbum(v *graph.AlbumVertex, a *arena) *Album {
	songs := resolveAll(v.Songs(), a.song)
	album := &Album{
		UID:         v.Pre.UID(),
		Name:        v.Pre.Name,
		ReleaseType: v.Pre.ReleaseType,
		Covers:      songCovers(songs),
		DurationMs:  totalDuration(songs),
		vertex:      v,
		arena:       a,
	}
	dates := make([]*tag.Date, len(songs))
	for i, s := range songs {
		dates[i] = s.Date
		if i == 0 || s.AddedMs < album.AddedMs {
			album.AddedMs = s.AddedMs
		}
	}
	album.Dates = tag.NewDateRange(dates)
	return album
}

// Artists returns the album artists.
func (al *Album) Artists() []*Artist { return resolveAll(al.vertex.Artists(), al.arena.artist) }

func (al *Album) Songs() []*Song { return resolveAll(al.vertex.Songs(), al.arena.song) }

func (al *Album) String() string { return "Album(" + al.UID.String() + ", " + al.Name.Resolve() + ")" }

// Artist is a performer or an album artist.
type Artist struct {
	UID        music.UID
	Name       tag.Name
	Covers     covers.Collection
	DurationMs int64

	vertex *graph.ArtistVertex
	arena  *arena
}

func newArtist(v *graph.ArtistVertex, a *arena) *Artist {
	songs := resolveAll(v.Songs(), a.song)
	return &Artist{
		UID:        v.Pre.UID(),
		Name:       v.Pre.Name,
		Covers:     songCovers(songs),
		DurationMs: totalDuration(songs),
		vertex:     v,
		arena:      a,
	}
}

// ExplicitAlbums returns the albums the artist is credited on as an album
// artist.
func (ar *Artist) ExplicitAlbums() []*Album {
	return resolveAll(ar.vertex.Albums(), ar.arena.album)
}

// ImplicitAlbums returns the albums the artist only appears on through
// individual songs.
func (ar *Artist) ImplicitAlbums() []*Album {
	explicit := ar.vertex.Albums()
	var out []*Album
	seen := make(map[*graph.AlbumVertex]bool)
	for _, s := range ar.vertex.Songs() {
		v := s.Album()
		if seen[v] || slices.Contains(explicit, v) {
			continue
		}
		seen[v] = true
		out = append(out, ar.arena.album(v))
	}
	return out
}

func (ar *Artist) Songs() []*Song { return resolveAll(ar.vertex.Songs(), ar.arena.song) }

// Genres returns the artist's genres, most used first.
func (ar *Artist) Genres() []*Genre {
	counts := make(map[*graph.GenreVertex]int)
	for _, s := range ar.vertex.Songs() {
		for _, g := range s.Genres() {
			counts[g]++
		}
	}
	genres := resolveAll(ar.vertex.Genres(), ar.arena.genre)
	slices.SortStableFunc(genres, func(a, b *Genre) int {
		if n := cmp.Compare(counts[b.vertex], counts[a.vertex]); n != 0 {
			return n
		}
		return a.Name.Compare(b.Name)
	})
	return genres
}

func (ar *Artist) String() string { return "Artist(" + ar.UID.String() + ", " + ar.Name.Resolve() + ")" }

// Genre groups songs by genre tag.
type Genre struct {
	UID        music.UID
	Name       tag.Name
	Covers     covers.Collection
	DurationMs int64

	vertex *graph.GenreVertex
	arena  *arena
}

func newGenre(v *graph.GenreVertex, a *arena) *Genre {
	songs := resolveAll(v.Songs(), a.song)
	return &Genre{
		UID:        v.Pre.UID(),
		Name:       v.Pre.Name,
		Covers:     songCovers(songs),
		DurationMs: totalDuration(songs),
		vertex:     v,
		arena:      a,
	}
}

func (g *Genre) Songs() []*Song { return resolveAll(g.vertex.Songs(), g.arena.song) }

func (g *Genre) Artists() []*Artist { return resolveAll(g.vertex.Artists(), g.arena.artist) }

func (g *Genre) String() string { return "Genre(" + g.UID.String() + ", " + g.Name.Resolve() + ")" }

// Playlist is a user playlist. Unlike the other entities it holds its
// songs directly, since playlists are replaced rather than shared when a
// library changes.
type Playlist struct {
	UID        music.UID
	Name       string
	Covers     covers.Collection
	DurationMs int64

	songs []*Song
}

func newPlaylist(uid music.UID, name string, songs []*Song) *Playlist {
	return &Playlist{
		UID:        uid,
		Name:       name,
		Covers:     songCovers(songs),
		DurationMs: totalDuration(songs),
		songs:      songs,
	}
}

// Songs returns the playlist in order. The slice must not be modified.
func (p *Playlist) Songs() []*Song { return p.songs }

func (p *Playlist) String() string { return "Playlist(" + p.UID.String() + ", " + p.Name + ")" }

func songCovers(songs []*Song) covers.Collection {
	cs := make([]covers.Cover, 0, len(songs))
	for _, s := range songs {
		cs = append(cs, s.Cover)
	}
	return covers.NewCollection(cs)
}

func totalDuration(songs []*Song) int64 {
	var total int64
	for _, s := range songs {
		total += s.DurationMs
	}
	return total
}
