package interpret

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/simonhull/musikr/internal/covers"
	"github.com/simonhull/musikr/internal/music"
	"github.com/simonhull/musikr/internal/tag"
)

// PreSong is an interpreted song.
//
// V363UID is the identity used everywhere. V400UID and V401UID are older
// hash variants kept so that playlists written by previous releases still
// resolve.
type PreSong struct {
	V363UID music.UID
	V400UID music.UID
	V401UID music.UID

	Path       string
	Size       int64
	MIMEType   string
	ModifiedMs int64
	AddedMs    int64

	MusicBrainzID uuid.UUID
	Name          tag.Name
	RawName       string
	Track         *int
	Disc          *tag.Disc
	Date          *tag.Date
	DurationMs    int64
	BitrateKbps   int
	SampleRateHz  int
	ReplayGain    tag.ReplayGainAdjustment

	Album   PreAlbum
	Artists []PreArtist
	Genres  []PreGenre
	Cover   covers.Cover
}

// UID returns the identity of the song.
func (s PreSong) UID() music.UID { return s.V363UID }

// ArtistSource records where an album's artists came from.
type ArtistSource int

const (
	// FromAlbum means the artists came from album artist tags.
	FromAlbum ArtistSource = iota
	// Individual means the album borrowed its song's artists.
	Individual
)

func (s ArtistSource) String() string {
	if s == Individual {
		return "individual"
	}
	return "album"
}

// PreArtists is an artist list with its source.
type PreArtists struct {
	Source  ArtistSource
	Artists []PreArtist
}

// Key identifies the list for deduplication.
func (a PreArtists) Key() string {
	var b strings.Builder
	b.WriteString(a.Source.String())
	for _, artist := range a.Artists {
		b.WriteByte('\x1e')
		b.WriteString(artist.Key())
	}
	return b.String()
}

// ArtistKey identifies the artists alone, ignoring their source.
func (a PreArtists) ArtistKey() string {
	keys := make([]string, len(a.Artists))
	for i, artist := range a.Artists {
		keys[i] = artist.Key()
	}
	return strings.Join(keys, "\x1e")
}

// PreAlbum is an interpreted album.
type PreAlbum struct {
	MusicBrainzID uuid.UUID
	Name          tag.Name
	RawName       string
	ReleaseType   tag.ReleaseType
	Artists       PreArtists
}

// Key identifies the album for deduplication. Two albums with equal keys
// are the same vertex.
func (a PreAlbum) Key() string {
	return strings.Join([]string{
		mbidKey(a.MusicBrainzID),
		nameKey(a.Name),
		a.RawName,
		a.ReleaseType.String(),
		a.Artists.Key(),
	}, "\x1f")
}

// UID is the MusicBrainz ID, or a hash of the raw name and the raw names
// of the album artists.
func (a PreAlbum) UID() music.UID {
	if a.MusicBrainzID != uuid.Nil {
		return music.MusicBrainzUID(music.ItemAlbum, a.MusicBrainzID)
	}
	return music.HashedUID(music.ItemAlbum, func(d *music.Digest) {
		d.Text(a.RawName)
		for _, artist := range a.Artists.Artists {
			d.Text(artist.RawName)
		}
	})
}

// WithoutMusicBrainzID returns a copy with the MBID removed.
func (a PreAlbum) WithoutMusicBrainzID() PreAlbum {
	a.MusicBrainzID = uuid.Nil
	return a
}

// AsIndividual returns a copy whose artists are marked Individual.
func (a PreAlbum) AsIndividual() PreAlbum {
	a.Artists = PreArtists{Source: Individual, Artists: a.Artists.Artists}
	return a
}

// PreArtist is an interpreted artist. An empty RawName means unknown.
type PreArtist struct {
	MusicBrainzID uuid.UUID
	Name          tag.Name
	RawName       string
}

// Key identifies the artist for deduplication.
func (a PreArtist) Key() string {
	return mbidKey(a.MusicBrainzID) + "\x1f" + nameKey(a.Name) + "\x1f" + a.RawName
}

// UID is the MusicBrainz ID, or a hash of the raw name.
func (a PreArtist) UID() music.UID {
	if a.MusicBrainzID != uuid.Nil {
		return music.MusicBrainzUID(music.ItemArtist, a.MusicBrainzID)
	}
	return music.HashedUID(music.ItemArtist, func(d *music.Digest) { d.Text(a.RawName) })
}

// WithoutMusicBrainzID returns a copy with the MBID removed.
func (a PreArtist) WithoutMusicBrainzID() PreArtist {
	a.MusicBrainzID = uuid.Nil
	return a
}

// PreGenre is an interpreted genre. An empty RawName means unknown.
type PreGenre struct {
	Name    tag.Name
	RawName string
}

// Key identifies the genre for deduplication.
func (g PreGenre) Key() string {
	return nameKey(g.Name) + "\x1f" + g.RawName
}

// UID is a hash of the raw name.
func (g PreGenre) UID() music.UID {
	return music.HashedUID(music.ItemGenre, func(d *music.Digest) { d.Text(g.RawName) })
}

func mbidKey(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

func nameKey(n tag.Name) string {
	if !n.Known() {
		return "?" + strconv.Itoa(int(n.Placeholder()))
	}
	return n.Raw() + "\x1d" + n.Sort()
}
