package interpret

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/simonhull/musikr/internal/fs"
	"github.com/simonhull/musikr/internal/music"
	"github.com/simonhull/musikr/internal/tag"
	"github.com/simonhull/musikr/internal/tag/parse"
)

func intp(n int) *int { return &n }

func rawSong(tags parse.ParsedTags) RawSong {
	return RawSong{
		File: fs.File{Path: "/music/Abbey Road/01 Come Together.flac", MIMEType: "audio/flac", Size: 10},
		Tags: tags,
	}
}

func names(artists []PreArtist) []string {
	out := make([]string, len(artists))
	for i, a := range artists {
		out[i] = a.Name.Resolve()
	}
	return out
}

func TestSeparators(t *testing.T) {
	tests := []struct {
		chars string
		in    []string
		want  []string
	}{
		{";", []string{"A; B;C"}, []string{"A", "B", "C"}},
		{";,", []string{"A, B; C"}, []string{"A", "B", "C"}},
		{";", []string{`A\; B; C`}, []string{"A; B", "C"}},
		{";", []string{"A;;  ; B"}, []string{"A", "B"}},
		{";", []string{"A;B", "C"}, []string{"A;B", "C"}},
		{";", nil, nil},
		{"", []string{"A;B"}, []string{"A;B"}},
	}
	for _, tt := range tests {
		got := NewSeparators(tt.chars).Split(tt.in)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("Split(%q, %q) = %q, want %q", tt.chars, tt.in, got, tt.want)
		}
	}
}

func TestInterpret_Fallbacks(t *testing.T) {
	in := New(DefaultInterpretation())
	song := in.Interpret(rawSong(parse.ParsedTags{}))

	if song.RawName != "01 Come Together" || song.Name.Raw() != "01 Come Together" {
		t.Errorf("name = %q / %q", song.RawName, song.Name.Raw())
	}
	if song.Album.RawName != "Abbey Road" {
		t.Errorf("album = %q, want directory name", song.Album.RawName)
	}
	if song.Album.ReleaseType != tag.DefaultReleaseType {
		t.Errorf("release type = %v", song.Album.ReleaseType)
	}
	if len(song.Artists) != 1 || song.Artists[0].Name.Known() {
		t.Errorf("artists = %v, want one unknown artist", names(song.Artists))
	}
	if song.Album.Artists.Source != Individual || song.Album.Artists.Artists[0].Name.Known() {
		t.Errorf("album artists = %+v", song.Album.Artists)
	}
	if len(song.Genres) != 1 || song.Genres[0].Name.Known() {
		t.Errorf("genres = %+v, want one unknown genre", song.Genres)
	}
	if song.Disc != nil {
		t.Errorf("disc = %v, want nil", song.Disc)
	}
}

func TestInterpret_Artists(t *testing.T) {
	mbidA := "b10bbbfc-cf9e-42e0-be17-e2c3e1d2600d"
	in := New(Interpretation{Naming: tag.SimpleNaming, Separators: NewSeparators(";")})
	song := in.Interpret(rawSong(parse.ParsedTags{
		ArtistNames:          []string{"The Beatles; Billy Preston"},
		ArtistMusicBrainzIDs: []string{mbidA},
		ArtistSortNames:      []string{"Beatles, The"},
	}))

	if got := names(song.Artists); strings.Join(got, "|") != "The Beatles|Billy Preston" {
		t.Fatalf("artists = %v", got)
	}
	if song.Artists[0].MusicBrainzID.String() != mbidA || song.Artists[1].MusicBrainzID != uuid.Nil {
		t.Errorf("MBIDs not zipped by index: %v, %v", song.Artists[0].MusicBrainzID, song.Artists[1].MusicBrainzID)
	}
	if song.Artists[0].Name.Sort() != "Beatles, The" || song.Artists[1].Name.Sort() != "" {
		t.Error("sort names not zipped by index")
	}
	// Without album artists the album borrows the song artists.
	if song.Album.Artists.Source != Individual || len(song.Album.Artists.Artists) != 2 {
		t.Errorf("album artists = %+v", song.Album.Artists)
	}
}

func TestInterpret_AlbumArtists(t *testing.T) {
	in := New(DefaultInterpretation())
	song := in.Interpret(rawSong(parse.ParsedTags{
		AlbumArtistNames: []string{"The Beatles"},
		AlbumName:        "Abbey Road",
		ReleaseTypes:     []string{"album", "live"},
		Disc:             intp(1),
		Subtitle:         "Side A",
	}))
	// Song artists fall back to album artists.
	if got := names(song.Artists); len(got) != 1 || got[0] != "The Beatles" {
		t.Errorf("artists = %v", got)
	}
	if song.Album.Artists.Source != FromAlbum {
		t.Errorf("source = %v, want FromAlbum", song.Album.Artists.Source)
	}
	if song.Album.ReleaseType.String() != "Live Album" {
		t.Errorf("release type = %s", song.Album.ReleaseType)
	}
	if song.Disc == nil || song.Disc.Number != 1 || song.Disc.Subtitle != "Side A" {
		t.Errorf("disc = %+v", song.Disc)
	}
}

func TestInterpret_Genres(t *testing.T) {
	in := New(Interpretation{Separators: NewSeparators(",")})
	song := in.Interpret(rawSong(parse.ParsedTags{GenreNames: []string{"(17)(CR)"}}))
	if len(song.Genres) != 2 || song.Genres[0].RawName != "Rock" || song.Genres[1].RawName != "Cover" {
		t.Errorf("ID3 genres = %+v", song.Genres)
	}

	song = in.Interpret(rawSong(parse.ParsedTags{GenreNames: []string{"Rock, Pop"}}))
	if len(song.Genres) != 2 || song.Genres[1].RawName != "Pop" {
		t.Errorf("split genres = %+v", song.Genres)
	}
}

func TestInterpret_UIDDeterminism(t *testing.T) {
	tags := parse.ParsedTags{
		Name:        "Come Together",
		AlbumName:   "Abbey Road",
		ArtistNames: []string{"The Beatles"},
		Date:        tag.ParseDate("1969-09-26"),
		Track:       intp(1),
	}
	a := New(DefaultInterpretation()).Interpret(rawSong(tags))
	// Interpretation settings do not affect the identity.
	b := New(Interpretation{Naming: tag.SimpleNaming, Separators: NewSeparators(";")}).Interpret(rawSong(tags))
	if a.UID() != b.UID() || a.V401UID != b.V401UID {
		t.Errorf("UIDs differ across runs: %v vs %v", a.UID(), b.UID())
	}
	if a.UID().Namespace() != music.NamespaceAuxio || a.UID().Item() != music.ItemSong {
		t.Errorf("UID = %v", a.UID())
	}
	// With a title tag all hashed variants agree on the name, and v363
	// matches v401.
	if a.V363UID != a.V401UID {
		t.Error("v363 and v401 should agree when the song is titled")
	}
	if a.V400UID == a.V363UID {
		t.Error("v400 should differ from v363")
	}

	tags.Track = intp(2)
	if c := New(DefaultInterpretation()).Interpret(rawSong(tags)); c.UID() == a.UID() {
		t.Error("changing the track should change the UID")
	}
}

func TestInterpret_UIDVariantsFromFileName(t *testing.T) {
	song := New(DefaultInterpretation()).Interpret(RawSong{
		File: fs.File{Path: "/music/Album/Song.Remix.flac"},
	})
	if song.RawName != "Song.Remix" {
		t.Errorf("RawName = %q", song.RawName)
	}
	if song.Name.Raw() != "Song" {
		t.Errorf("Name = %q", song.Name.Raw())
	}
	if song.V363UID == song.V401UID {
		t.Error("v363 hashes Song.Remix and v401 hashes Song; they should differ")
	}
}

func TestInterpret_MusicBrainzID(t *testing.T) {
	mbid := "1b9a8bfc-8a5e-4d1e-9b2c-6bd3a1a0b9f1"
	song := New(DefaultInterpretation()).Interpret(rawSong(parse.ParsedTags{MusicBrainzID: mbid}))
	want := music.MusicBrainzUID(music.ItemSong, uuid.MustParse(mbid))
	if song.V363UID != want || song.V400UID != want || song.V401UID != want {
		t.Errorf("UIDs = %v %v %v, want %v", song.V363UID, song.V400UID, song.V401UID, want)
	}

	// A malformed MBID is ignored.
	song = New(DefaultInterpretation()).Interpret(rawSong(parse.ParsedTags{MusicBrainzID: "nope"}))
	if song.UID().Namespace() != music.NamespaceAuxio {
		t.Errorf("UID = %v, want a hashed UID", song.UID())
	}
}

func TestPreEntityKeys(t *testing.T) {
	naming := tag.SimpleNaming
	a := PreArtist{Name: naming.Name("Beatles", ""), RawName: "Beatles"}
	b := PreArtist{Name: naming.Name("beatles", ""), RawName: "beatles"}
	if a.Key() == b.Key() {
		t.Error("keys should be case-sensitive; clustering folds case")
	}
	if a.Key() != (PreArtist{Name: naming.Name("Beatles", ""), RawName: "Beatles"}).Key() {
		t.Error("equal artists should have equal keys")
	}
	if a.UID() != b.UID() {
		t.Error("artist UIDs hash the lowercased raw name")
	}

	album := PreAlbum{Name: naming.Name("X", ""), RawName: "X", Artists: PreArtists{Artists: []PreArtist{a}}}
	if album.Key() == album.AsIndividual().Key() {
		t.Error("artist source should be part of the album key")
	}
	if album.UID() != album.AsIndividual().UID() {
		t.Error("artist source should not affect the album UID")
	}
	mb := uuid.MustParse("1b9a8bfc-8a5e-4d1e-9b2c-6bd3a1a0b9f1")
	album.MusicBrainzID = mb
	if album.UID() != music.MusicBrainzUID(music.ItemAlbum, mb) {
		t.Error("album MBID should become the UID")
	}
	if album.WithoutMusicBrainzID().MusicBrainzID != uuid.Nil {
		t.Error("WithoutMusicBrainzID kept the MBID")
	}

	g := PreGenre{Name: tag.Unknown(tag.PlaceholderGenre)}
	if g.Key() == (PreGenre{Name: naming.Name("Rock", ""), RawName: "Rock"}).Key() {
		t.Error("unknown genre should not share a key with a named genre")
	}
}
