package graph

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/simonhull/musikr/internal/music"
	"github.com/simonhull/musikr/internal/playlist"
	"github.com/simonhull/musikr/internal/tag/interpret"
)

// MBIDPolicy decides how name clusters with MusicBrainz IDs are merged.
type MBIDPolicy int

const (
	// MBIDStrict splits a name cluster by MusicBrainz ID. Members without
	// an ID merge among themselves and never into a tagged member.
	// MBIDDiscardPartial keeps the legacy merge rule.
	MBIDStrict MBIDPolicy = iota
	// MBIDDiscardPartial drops every ID in a cluster unless all members
	// carry one, then merges the cluster on name alone. Libraries indexed
	// by earlier releases were grouped this way.
	MBIDDiscardPartial
)

func (p MBIDPolicy) String() string {
	if p == MBIDDiscardPartial {
		return "discard-partial"
	}
	return "strict"
}

// ParseMBIDPolicy parses the String form of a policy.
func ParseMBIDPolicy(s string) (MBIDPolicy, error) {
	switch s {
	case "strict", "":
		return MBIDStrict, nil
	case "discard-partial":
		return MBIDDiscardPartial, nil
	}
	return 0, fmt.Errorf("unknown MusicBrainz ID policy %q", s)
}

// Option configures a Builder.
type Option func(*Builder)

// WithMBIDPolicy sets the MusicBrainz ID policy. The default is MBIDStrict.
func WithMBIDPolicy(p MBIDPolicy) Option {
	return func(b *Builder) { b.policy = p }
}

// Builder accumulates vertices. It is not safe for concurrent use.
type Builder struct {
	policy    MBIDPolicy
	songs     map[music.UID]*SongVertex
	songOrder []*SongVertex
	albums    *keyed[*AlbumVertex]
	artists   *keyed[*ArtistVertex]
	genres    *keyed[*GenreVertex]
	playlists []*PlaylistVertex
}

// NewBuilder returns an empty builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		songs:   make(map[music.UID]*SongVertex),
		albums:  newKeyed[*AlbumVertex](),
		artists: newKeyed[*ArtistVertex](),
		genres:  newKeyed[*GenreVertex](),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Add links song into the graph. A song whose UID was already added is
// ignored.
func (b *Builder) Add(song interpret.PreSong) {
	uid := song.UID()
	if _, ok := b.songs[uid]; ok {
		return
	}

	genres := make([]*GenreVertex, len(song.Genres))
	for i, pre := range song.Genres {
		genres[i] = b.genre(pre)
	}
	artists := make([]*ArtistVertex, len(song.Artists))
	for i, pre := range song.Artists {
		artists[i] = b.artist(pre)
	}
	album := b.albums.getOrPut(song.Album.Key(), func() *AlbumVertex {
		v := &AlbumVertex{Pre: song.Album, index: -1}
		for _, pre := range song.Album.Artists.Artists {
			a := b.artist(pre)
			v.artists = append(v.artists, a)
			a.albums.add(v)
		}
		return v
	})

	v := &SongVertex{Pre: song, album: album, artists: artists, genres: genres, index: -1}
	album.songs.add(v)
	for _, a := range artists {
		a.songs.add(v)
		for _, g := range genres {
			a.genres.add(g)
			g.artists.add(a)
		}
	}
	for _, g := range genres {
		g.songs.add(v)
	}

	b.songs[uid] = v
	b.songOrder = append(b.songOrder, v)
}

// AddPlaylist adds a stored playlist. Its pointers are resolved by Build.
func (b *Builder) AddPlaylist(p playlist.PrePlaylist) {
	b.playlists = append(b.playlists, newPlaylistVertex(p))
}

func (b *Builder) genre(pre interpret.PreGenre) *GenreVertex {
	return b.genres.getOrPut(pre.Key(), func() *GenreVertex {
		return &GenreVertex{Pre: pre, index: -1}
	})
}

func (b *Builder) artist(pre interpret.PreArtist) *ArtistVertex {
	return b.artists.getOrPut(pre.Key(), func() *ArtistVertex {
		return &ArtistVertex{Pre: pre, index: -1}
	})
}

func (b *Builder) emptyAlbum(pre interpret.PreAlbum) *AlbumVertex {
	return b.albums.getOrPut(pre.Key(), func() *AlbumVertex {
		return &AlbumVertex{Pre: pre, index: -1}
	})
}

// Simplify merges equivalent vertices: genres, then artists, then albums.
// Calling it again on a simplified graph changes nothing.
func (b *Builder) Simplify() {
	fold := cases.Fold()

	for _, cluster := range groupBy(b.genres.values(), func(v *GenreVertex) string {
		return fold.String(v.Pre.RawName)
	}) {
		b.simplifyGenres(cluster)
	}

	for _, cluster := range groupBy(b.artists.values(), func(v *ArtistVertex) string {
		return fold.String(v.Pre.RawName)
	}) {
		b.simplifyArtistCluster(cluster)
	}
	b.collapseArtistIDs()

	for _, cluster := range groupBy(b.albums.values(), func(v *AlbumVertex) string {
		return fold.String(v.Pre.RawName)
	}) {
		b.simplifyAlbumCluster(cluster)
	}
	b.collapseAlbumIDs()
}

// Build simplifies and solves the graph. The builder must not be used
// afterwards.
func (b *Builder) Build() *MusicGraph {
	b.Simplify()

	for _, a := range b.albums.values() {
		a.artists = distinct(a.artists)
	}
	for _, s := range b.songOrder {
		s.artists = distinct(s.artists)
		s.genres = distinct(s.genres)
		for _, p := range b.playlists {
			p.resolve(s.Pre.V363UID, s)
			p.resolve(s.Pre.V400UID, s)
			p.resolve(s.Pre.V401UID, s)
		}
	}
	return b.graph()
}

// Check verifies edge symmetry of the graph as it currently stands.
func (b *Builder) Check() error {
	return b.graph().Check()
}

func (b *Builder) graph() *MusicGraph {
	g := &MusicGraph{
		Songs:     b.songOrder,
		Albums:    b.albums.values(),
		Artists:   b.artists.values(),
		Genres:    b.genres.values(),
		Playlists: b.playlists,
	}
	for i, v := range g.Songs {
		v.index = i
	}
	for i, v := range g.Albums {
		v.index = i
	}
	for i, v := range g.Artists {
		v.index = i
	}
	for i, v := range g.Genres {
		v.index = i
	}
	for i, v := range g.Playlists {
		v.index = i
	}
	return g
}

func (b *Builder) simplifyGenres(cluster []*GenreVertex) {
	if len(cluster) < 2 {
		return
	}
	dst := canonical(cluster, func(v *GenreVertex) int { return v.songs.len() })
	for _, src := range cluster {
		b.meldGenres(src, dst)
	}
}

func (b *Builder) meldGenres(src, dst *GenreVertex) {
	if src == dst {
		return
	}
	dst.songs.addAll(&src.songs)
	dst.artists.addAll(&src.artists)
	for _, s := range src.songs.items {
		i := slices.Index(s.genres, src)
		if i < 0 {
			panic("illegal state: directed edge between genre and song")
		}
		s.genres[i] = dst
	}
	for _, a := range src.artists.items {
		a.genres.remove(src)
		a.genres.add(dst)
	}
	b.genres.delete(src.Pre.Key())
}

func (b *Builder) simplifyArtistCluster(cluster []*ArtistVertex) {
	if len(cluster) < 2 {
		return
	}
	tagged, untagged := partition(cluster, func(v *ArtistVertex) uuid.UUID { return v.Pre.MusicBrainzID })
	if len(untagged) == 0 || b.policy == MBIDStrict {
		for _, sub := range groupBy(tagged, func(v *ArtistVertex) string { return v.Pre.MusicBrainzID.String() }) {
			b.simplifyArtists(sub)
		}
		b.simplifyArtists(untagged)
		return
	}

	stripped := make([]*ArtistVertex, 0, len(cluster))
	for _, v := range cluster {
		pre := v.Pre.WithoutMusicBrainzID()
		dst := b.artist(pre)
		b.meldArtists(v, dst)
		stripped = append(stripped, dst)
	}
	b.simplifyArtists(distinct(stripped))
}

func (b *Builder) simplifyArtists(cluster []*ArtistVertex) {
	if len(cluster) < 2 {
		return
	}
	dst := canonical(cluster, func(v *ArtistVertex) int { return v.songs.len() })
	for _, src := range cluster {
		b.meldArtists(src, dst)
	}
}

// collapseArtistIDs merges artists that share a MusicBrainz ID but were
// tagged with different names.
func (b *Builder) collapseArtistIDs() {
	tagged, _ := partition(b.artists.values(), func(v *ArtistVertex) uuid.UUID { return v.Pre.MusicBrainzID })
	for _, cluster := range groupBy(tagged, func(v *ArtistVertex) string { return v.Pre.MusicBrainzID.String() }) {
		canon := canonical(cluster, func(v *ArtistVertex) int { return v.songs.len() }).Pre
		same := true
		for _, v := range cluster {
			same = same && v.Pre.Key() == canon.Key()
		}
		if same {
			continue
		}
		dst := b.artist(canon)
		for _, v := range cluster {
			b.meldArtists(v, dst)
		}
	}
}

func (b *Builder) meldArtists(src, dst *ArtistVertex) {
	if src == dst {
		return
	}
	dst.songs.addAll(&src.songs)
	dst.albums.addAll(&src.albums)
	dst.genres.addAll(&src.genres)
	for _, s := range src.songs.items {
		if !slices.Contains(s.artists, src) {
			panic("illegal state: directed edge between artist and song")
		}
		replace(s.artists, src, dst)
	}
	for _, a := range src.albums.items {
		if !slices.Contains(a.artists, src) {
			panic("illegal state: directed edge between artist and album")
		}
		replace(a.artists, src, dst)
	}
	for _, g := range src.genres.items {
		g.artists.remove(src)
		g.artists.add(dst)
	}
	b.artists.delete(src.Pre.Key())
}

func (b *Builder) simplifyAlbumCluster(cluster []*AlbumVertex) {
	if len(cluster) < 2 {
		return
	}
	tagged, untagged := partition(cluster, func(v *AlbumVertex) uuid.UUID { return v.Pre.MusicBrainzID })
	if len(untagged) == 0 || b.policy == MBIDStrict {
		for _, sub := range groupBy(tagged, func(v *AlbumVertex) string { return v.Pre.MusicBrainzID.String() }) {
			b.simplifyAlbums(sub)
		}
		b.simplifyUntaggedAlbums(untagged)
		return
	}

	stripped := make([]*AlbumVertex, 0, len(cluster))
	for _, v := range cluster {
		dst := b.emptyAlbum(v.Pre.WithoutMusicBrainzID())
		b.meldAlbums(v, dst)
		stripped = append(stripped, dst)
	}
	b.simplifyUntaggedAlbums(distinct(stripped))
}

// simplifyUntaggedAlbums merges albums without MusicBrainz IDs. When every
// album was credited through album artist tags, albums with different
// album artists stay apart.
func (b *Builder) simplifyUntaggedAlbums(cluster []*AlbumVertex) {
	if len(cluster) < 2 {
		return
	}
	fromAlbum := true
	for _, v := range cluster {
		fromAlbum = fromAlbum && v.Pre.Artists.Source == interpret.FromAlbum
	}
	if fromAlbum {
		for _, sub := range groupBy(cluster, func(v *AlbumVertex) string { return v.Pre.Artists.ArtistKey() }) {
			b.simplifyAlbums(sub)
		}
		return
	}

	individual := make([]*AlbumVertex, 0, len(cluster))
	for _, v := range cluster {
		dst := b.emptyAlbum(v.Pre.AsIndividual())
		b.meldAlbums(v, dst)
		individual = append(individual, dst)
	}
	b.simplifyAlbums(distinct(individual))
}

func (b *Builder) simplifyAlbums(cluster []*AlbumVertex) {
	if len(cluster) < 2 {
		return
	}
	dst := canonical(cluster, func(v *AlbumVertex) int { return v.songs.len() })
	for _, src := range cluster {
		b.meldAlbums(src, dst)
	}
}

// collapseAlbumIDs merges albums that share a MusicBrainz ID but differ
// otherwise.
func (b *Builder) collapseAlbumIDs() {
	tagged, _ := partition(b.albums.values(), func(v *AlbumVertex) uuid.UUID { return v.Pre.MusicBrainzID })
	for _, cluster := range groupBy(tagged, func(v *AlbumVertex) string { return v.Pre.MusicBrainzID.String() }) {
		canon := canonical(cluster, func(v *AlbumVertex) int { return v.songs.len() }).Pre
		same := true
		for _, v := range cluster {
			same = same && v.Pre.Key() == canon.Key()
		}
		if same {
			continue
		}
		dst := b.emptyAlbum(canon)
		for _, v := range cluster {
			b.meldAlbums(v, dst)
		}
	}
}

func (b *Builder) meldAlbums(src, dst *AlbumVertex) {
	if src == dst {
		return
	}
	dst.songs.addAll(&src.songs)
	dst.artists = append(dst.artists, src.artists...)
	for _, s := range src.songs.items {
		s.album = dst
	}
	for _, a := range src.artists {
		a.albums.remove(src)
		a.albums.add(dst)
	}
	b.albums.delete(src.Pre.Key())
}

// partition splits vs into members with and without a MusicBrainz ID.
func partition[V any](vs []V, id func(V) uuid.UUID) (tagged, untagged []V) {
	for _, v := range vs {
		if id(v) != uuid.Nil {
			tagged = append(tagged, v)
		} else {
			untagged = append(untagged, v)
		}
	}
	return tagged, untagged
}

func replace[T comparable](vs []T, from, to T) {
	for i, v := range vs {
		if v == from {
			vs[i] = to
		}
	}
}
