package graph

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/simonhull/musikr/internal/fs"
	"github.com/simonhull/musikr/internal/music"
	"github.com/simonhull/musikr/internal/playlist"
	"github.com/simonhull/musikr/internal/tag/interpret"
	"github.com/simonhull/musikr/internal/tag/parse"
)

const (
	abbeyRoadID = "6b8fa3c0-2f5b-4c2b-9f4c-1d2e3f4a5b6c"
	beatlesID   = "b10bbbfc-cf9e-42e0-be17-e2c3e1d2600d"
	otherID     = "0383dadf-2a4e-4d10-a46a-e9e041da8eb3"
)

var interpreter = interpret.New(interpret.DefaultInterpretation())

func song(name, album, artist string, mod func(*parse.ParsedTags)) interpret.PreSong {
	tags := parse.ParsedTags{
		Name:        name,
		AlbumName:   album,
		ArtistNames: []string{artist},
		GenreNames:  []string{"Rock"},
	}
	if mod != nil {
		mod(&tags)
	}
	return interpreter.Interpret(interpret.RawSong{
		File: fs.File{Path: "/music/" + album + "/" + name + ".flac", MIMEType: "audio/flac"},
		Tags: tags,
	})
}

func build(t *testing.T, songs []interpret.PreSong, opts ...Option) *MusicGraph {
	t.Helper()
	b := NewBuilder(opts...)
	for _, s := range songs {
		b.Add(s)
	}
	if err := b.Check(); err != nil {
		t.Fatalf("before simplify: %v", err)
	}
	g := b.Build()
	if err := g.Check(); err != nil {
		t.Fatalf("after build: %v", err)
	}
	return g
}

func abbeyRoad() []interpret.PreSong {
	return []interpret.PreSong{
		song("Song1", "Abbey Road", "The Beatles", nil),
		song("Song2", "abbey road", "the beatles", nil),
		song("Song3", "Abbey Road", "The Beatles", func(t *parse.ParsedTags) {
			t.AlbumMusicBrainzID = abbeyRoadID
		}),
	}
}

func TestBuild_AbbeyRoad(t *testing.T) {
	g := build(t, abbeyRoad())

	if len(g.Albums) != 2 {
		t.Fatalf("albums = %d, want 2", len(g.Albums))
	}
	var tagged, untagged *AlbumVertex
	for _, a := range g.Albums {
		if a.Pre.MusicBrainzID.String() == abbeyRoadID {
			tagged = a
		} else {
			untagged = a
		}
	}
	if tagged == nil || untagged == nil {
		t.Fatalf("want one tagged and one untagged album, got %v", g.Albums)
	}
	if len(tagged.Songs()) != 1 || tagged.Songs()[0].Pre.RawName != "Song3" {
		t.Errorf("tagged album songs = %v", tagged.Songs())
	}
	if len(untagged.Songs()) != 2 {
		t.Errorf("untagged album songs = %d, want 2", len(untagged.Songs()))
	}
	if len(g.Artists) != 1 {
		t.Errorf("artists = %d, want 1", len(g.Artists))
	}
}

func TestBuild_AbbeyRoadDiscardPartial(t *testing.T) {
	g := build(t, abbeyRoad(), WithMBIDPolicy(MBIDDiscardPartial))

	if len(g.Albums) != 1 {
		t.Fatalf("albums = %d, want 1", len(g.Albums))
	}
	if n := len(g.Albums[0].Songs()); n != 3 {
		t.Errorf("album songs = %d, want 3", n)
	}
	if id := g.Albums[0].Pre.MusicBrainzID; id != uuid.Nil {
		t.Errorf("merged album kept MBID %v", id)
	}
}

func TestBuild_CaseInsensitiveMerge(t *testing.T) {
	g := build(t, []interpret.PreSong{
		song("Du Hast", "Rammstein", "Rammstein", nil),
		song("Engel", "RAMMSTEIN", "RAMMSTEIN", nil),
	})

	if len(g.Albums) != 1 {
		t.Fatalf("albums = %d, want 1", len(g.Albums))
	}
	got := map[string]bool{}
	for _, s := range g.Albums[0].Songs() {
		got[s.Pre.RawName] = true
	}
	if !got["Du Hast"] || !got["Engel"] {
		t.Errorf("album songs = %v, want both", got)
	}
	for _, s := range g.Songs {
		if s.Album() != g.Albums[0] {
			t.Errorf("%v points at %v", s, s.Album())
		}
	}
	if len(g.Artists) != 1 {
		t.Errorf("artists = %d, want 1", len(g.Artists))
	}
}

func TestBuild_MusicBrainzPrecedence(t *testing.T) {
	songs := []interpret.PreSong{
		song("A", "Greatest Hits", "Nirvana", func(t *parse.ParsedTags) {
			t.ArtistMusicBrainzIDs = []string{beatlesID}
			t.AlbumMusicBrainzID = abbeyRoadID
		}),
		song("B", "Greatest Hits", "Nirvana", func(t *parse.ParsedTags) {
			t.ArtistMusicBrainzIDs = []string{otherID}
			t.AlbumMusicBrainzID = otherID
		}),
	}
	for _, policy := range []MBIDPolicy{MBIDStrict, MBIDDiscardPartial} {
		t.Run(policy.String(), func(t *testing.T) {
			g := build(t, songs, WithMBIDPolicy(policy))
			if len(g.Artists) != 2 {
				t.Errorf("artists = %d, want 2", len(g.Artists))
			}
			if len(g.Albums) != 2 {
				t.Errorf("albums = %d, want 2", len(g.Albums))
			}
		})
	}
}

func TestBuild_StrictKeepsUntaggedArtistApart(t *testing.T) {
	songs := []interpret.PreSong{
		song("A", "One", "Bush", func(t *parse.ParsedTags) { t.ArtistMusicBrainzIDs = []string{beatlesID} }),
		song("B", "Two", "Bush", nil),
		song("C", "Three", "BUSH", nil),
	}

	g := build(t, songs)
	if len(g.Artists) != 2 {
		t.Errorf("strict artists = %d, want 2", len(g.Artists))
	}

	g = build(t, songs, WithMBIDPolicy(MBIDDiscardPartial))
	if len(g.Artists) != 1 {
		t.Errorf("discard-partial artists = %d, want 1", len(g.Artists))
	}
}

func TestBuild_SameIDDifferentNames(t *testing.T) {
	g := build(t, []interpret.PreSong{
		song("A", "One", "Prince", func(t *parse.ParsedTags) { t.ArtistMusicBrainzIDs = []string{otherID} }),
		song("B", "One", "Prince", func(t *parse.ParsedTags) { t.ArtistMusicBrainzIDs = []string{otherID} }),
		song("C", "Two", "The Artist", func(t *parse.ParsedTags) { t.ArtistMusicBrainzIDs = []string{otherID} }),
	})

	if len(g.Artists) != 1 {
		t.Fatalf("artists = %d, want 1", len(g.Artists))
	}
	if got := g.Artists[0].Pre.RawName; got != "Prince" {
		t.Errorf("canonical artist = %q, want the most popular name", got)
	}
	if n := len(g.Artists[0].Songs()); n != 3 {
		t.Errorf("artist songs = %d, want 3", n)
	}
}

func TestBuild_AlbumArtistsKeepAlbumsApart(t *testing.T) {
	withAlbumArtist := func(name string) func(*parse.ParsedTags) {
		return func(t *parse.ParsedTags) { t.AlbumArtistNames = []string{name} }
	}
	g := build(t, []interpret.PreSong{
		song("A", "Greatest Hits", "Queen", withAlbumArtist("Queen")),
		song("B", "Greatest Hits", "ABBA", withAlbumArtist("ABBA")),
		song("C", "greatest hits", "Queen", withAlbumArtist("Queen")),
	})

	if len(g.Albums) != 2 {
		t.Fatalf("albums = %d, want 2", len(g.Albums))
	}
	for _, a := range g.Albums {
		if len(a.Artists()) != 1 {
			t.Errorf("%v artists = %v", a, a.Artists())
		}
	}
}

func TestBuild_GenreMerge(t *testing.T) {
	g := build(t, []interpret.PreSong{
		song("A", "One", "X", func(t *parse.ParsedTags) { t.GenreNames = []string{"Rock", "rock"} }),
		song("B", "Two", "Y", func(t *parse.ParsedTags) { t.GenreNames = []string{"ROCK"} }),
	})

	if len(g.Genres) != 1 {
		t.Fatalf("genres = %d, want 1", len(g.Genres))
	}
	if n := len(g.Songs[0].Genres()); n != 1 {
		t.Errorf("song genres = %d, want duplicates removed", n)
	}
	if n := len(g.Genres[0].Artists()); n != 2 {
		t.Errorf("genre artists = %d, want 2", n)
	}
}

func TestBuild_DuplicateSongs(t *testing.T) {
	s := song("A", "One", "X", nil)
	g := build(t, []interpret.PreSong{s, s})
	if len(g.Songs) != 1 {
		t.Errorf("songs = %d, want 1", len(g.Songs))
	}
}

func TestSimplify_Idempotent(t *testing.T) {
	songs := append(abbeyRoad(),
		song("Du Hast", "Rammstein", "Rammstein", nil),
		song("Engel", "RAMMSTEIN", "RAMMSTEIN", nil),
		song("A", "Greatest Hits", "Queen", func(t *parse.ParsedTags) { t.AlbumArtistNames = []string{"Queen"} }),
		song("B", "greatest hits", "ABBA", func(t *parse.ParsedTags) { t.AlbumArtistNames = []string{"ABBA"} }),
	)
	for _, policy := range []MBIDPolicy{MBIDStrict, MBIDDiscardPartial} {
		t.Run(policy.String(), func(t *testing.T) {
			b := NewBuilder(WithMBIDPolicy(policy))
			for _, s := range songs {
				b.Add(s)
			}
			b.Simplify()
			counts := [3]int{b.albums.len(), b.artists.len(), b.genres.len()}
			b.Simplify()
			if again := [3]int{b.albums.len(), b.artists.len(), b.genres.len()}; again != counts {
				t.Errorf("second simplify changed counts %v -> %v", counts, again)
			}
			if err := b.Build().Check(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestBuild_Playlists(t *testing.T) {
	a := song("A", "One", "X", nil)
	b := song("B", "One", "X", nil)
	missing := music.RandomUID(music.ItemSong)

	builder := NewBuilder()
	builder.Add(a)
	builder.Add(b)
	builder.AddPlaylist(playlist.PrePlaylist{
		UID:          music.RandomUID(music.ItemPlaylist),
		Name:         "Mix",
		SongPointers: []music.UID{b.V400UID, missing, a.V363UID, b.V363UID},
	})
	g := builder.Build()
	if err := g.Check(); err != nil {
		t.Fatal(err)
	}

	got := g.Playlists[0].Songs()
	if len(got) != 4 || got[0] == nil || got[0].Pre.RawName != "B" || got[1] != nil ||
		got[2].Pre.RawName != "A" || got[3].Pre.RawName != "B" {
		t.Errorf("playlist songs = %v", got)
	}
}

func TestBuild_Empty(t *testing.T) {
	g := NewBuilder().Build()
	if !g.Empty() {
		t.Error("graph without songs is not empty")
	}
	if err := g.Check(); err != nil {
		t.Error(err)
	}
}

func TestRenderGraphviz(t *testing.T) {
	b := NewBuilder()
	for _, s := range abbeyRoad() {
		b.Add(s)
	}
	b.Add(song(`Say "Hi"`, "One", strings.Repeat("x", 80), nil))
	b.AddPlaylist(playlist.PrePlaylist{Name: "Mix", SongPointers: []music.UID{abbeyRoad()[0].UID()}})
	g := b.Build()

	var buf bytes.Buffer
	if err := g.RenderGraphviz(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"digraph MusicGraph {",
		"node [style=filled,fillcolor=lightblue];",
		`\nMBID: ` + abbeyRoadID,
		`Say \"Hi\"`,
		`[label="` + strings.Repeat("x", 50) + `"]`,
		"[color=blue];",
		"[color=purple];",
		"playlist_0 -> song_0 [color=orange];",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if !strings.HasSuffix(out, "}\n") {
		t.Error("output not terminated")
	}
}

func TestParseMBIDPolicy(t *testing.T) {
	for _, p := range []MBIDPolicy{MBIDStrict, MBIDDiscardPartial} {
		got, err := ParseMBIDPolicy(p.String())
		if err != nil || got != p {
			t.Errorf("ParseMBIDPolicy(%q) = %v, %v", p.String(), got, err)
		}
	}
	if _, err := ParseMBIDPolicy("lenient"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestMeldArtists_MissingBackEdge(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(s *SongVertex)
		want    string
	}{
		{"song", func(s *SongVertex) { s.artists = nil }, "illegal state: directed edge between artist and song"},
		{"album", func(s *SongVertex) { s.album.artists = nil }, "illegal state: directed edge between artist and album"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			b.Add(song("Song1", "First", "Artist A", nil))
			b.Add(song("Song2", "Second", "Artist B", nil))
			src, dst := b.songOrder[0].artists[0], b.songOrder[1].artists[0]
			tt.corrupt(b.songOrder[0])

			defer func() {
				if r := recover(); r != tt.want {
					t.Errorf("recover() = %v, want %q", r, tt.want)
				}
			}()
			b.meldArtists(src, dst)
		})
	}
}
