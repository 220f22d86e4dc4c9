package interpret

import (
	"strings"

	"github.com/google/uuid"

	"github.com/simonhull/musikr/internal/covers"
	"github.com/simonhull/musikr/internal/fs"
	"github.com/simonhull/musikr/internal/music"
	"github.com/simonhull/musikr/internal/tag"
	"github.com/simonhull/musikr/internal/tag/parse"
	"github.com/simonhull/musikr/internal/types"
)

// RawSong is everything known about a song file before interpretation.
type RawSong struct {
	File       fs.File
	Properties types.Properties
	Tags       parse.ParsedTags
	Cover      covers.Cover
	AddedMs    int64
}

// Interpreter converts raw songs into pre-entities.
type Interpreter struct {
	Interpretation
}

// New returns an interpreter for interpretation.
func New(interpretation Interpretation) *Interpreter {
	return &Interpreter{Interpretation: interpretation}
}

// Interpret converts song. It never fails: missing values fall back to the
// file name, the directory name or unknown placeholders.
func (in *Interpreter) Interpret(song RawSong) PreSong {
	tags := song.Tags
	naming := in.naming()

	individual := in.artists(tags.ArtistMusicBrainzIDs, tags.ArtistNames, tags.ArtistSortNames)
	albumArtists := in.artists(tags.AlbumArtistMusicBrainzIDs, tags.AlbumArtistNames, tags.AlbumArtistSortNames)

	artists := individual
	if len(artists) == 0 {
		artists = albumArtists
	}
	if len(artists) == 0 {
		artists = []PreArtist{unknownArtist()}
	}

	genres := in.genres(tags.GenreNames)
	if len(genres) == 0 {
		genres = []PreGenre{{Name: tag.Unknown(tag.PlaceholderGenre)}}
	}

	fileName := song.File.Name()
	nameOrFile := orElse(tags.Name, fileName)
	nameOrFileWithoutExt := orElse(tags.Name, firstSegment(fileName))
	nameOrFileWithoutExtCorrect := orElse(tags.Name, dropLastSegment(fileName))
	albumNameOrDir := orElse(tags.AlbumName, song.File.DirName())

	// Artist names are hashed as tagged, before any separator splitting.
	legacyUID := func(name string) music.UID {
		return music.HashedUID(music.ItemSong, func(d *music.Digest) {
			d.Text(name)
			d.Text(albumNameOrDir)
			d.Date(tags.Date)
			d.Int(tags.Track)
			d.Int(tags.Disc)
			d.Texts(tags.ArtistNames)
			d.Texts(tags.AlbumArtistNames)
		})
	}
	v363 := legacyUID(nameOrFileWithoutExtCorrect)
	v401 := legacyUID(nameOrFileWithoutExt)
	v400 := music.HashedUID(music.ItemSong, func(d *music.Digest) {
		d.Text(nameOrFile)
		d.Text(tags.AlbumName)
		d.Date(tags.Date)
		d.Int(tags.Track)
		d.Int(tags.Disc)
		names := in.split(tags.ArtistNames)
		d.Texts(orNull(names))
		d.Texts(orNull(orSlice(in.split(tags.AlbumArtistNames), names)))
	})

	mbid := music.ParseMBID(tags.MusicBrainzID)
	if mbid != uuid.Nil {
		uid := music.MusicBrainzUID(music.ItemSong, mbid)
		v363, v400, v401 = uid, uid, uid
	}

	var disc *tag.Disc
	if tags.Disc != nil {
		disc = &tag.Disc{Number: *tags.Disc, Subtitle: tags.Subtitle}
	}

	return PreSong{
		V363UID:       v363,
		V400UID:       v400,
		V401UID:       v401,
		Path:          song.File.Path,
		Size:          song.File.Size,
		MIMEType:      song.File.MIMEType,
		ModifiedMs:    song.File.ModifiedMs,
		AddedMs:       song.AddedMs,
		MusicBrainzID: mbid,
		Name:          naming.Name(nameOrFileWithoutExt, tags.SortName),
		RawName:       nameOrFileWithoutExtCorrect,
		Track:         tags.Track,
		Disc:          disc,
		Date:          tags.Date,
		DurationMs:    tags.DurationMs,
		BitrateKbps:   song.Properties.BitrateKbps,
		SampleRateHz:  song.Properties.SampleRateHz,
		ReplayGain: tag.ReplayGainAdjustment{
			Track: tags.ReplayGainTrack,
			Album: tags.ReplayGainAlbum,
		},
		Album:   in.album(tags, song.File, individual, albumArtists),
		Artists: artists,
		Genres:  genres,
		Cover:   song.Cover,
	}
}

func (in *Interpreter) album(tags parse.ParsedTags, file fs.File, individual, albumArtists []PreArtist) PreAlbum {
	name := orElse(tags.AlbumName, file.DirName())
	releaseType, ok := tag.ParseReleaseType(in.split(tags.ReleaseTypes))
	if !ok {
		releaseType = tag.DefaultReleaseType
	}
	artists := PreArtists{Source: FromAlbum, Artists: albumArtists}
	if len(albumArtists) == 0 {
		artists = PreArtists{Source: Individual, Artists: individual}
		if len(individual) == 0 {
			artists.Artists = []PreArtist{unknownArtist()}
		}
	}
	return PreAlbum{
		MusicBrainzID: music.ParseMBID(tags.AlbumMusicBrainzID),
		Name:          tag.NameOrUnknown(in.naming(), name, tags.AlbumSortName, tag.PlaceholderAlbum),
		RawName:       name,
		ReleaseType:   releaseType,
		Artists:       artists,
	}
}

// artists zips names with MBIDs and sort names by position.
func (in *Interpreter) artists(mbids, names, sortNames []string) []PreArtist {
	mbids = in.split(mbids)
	names = in.split(names)
	sortNames = in.split(sortNames)
	out := make([]PreArtist, 0, len(names))
	for i, name := range names {
		out = append(out, PreArtist{
			MusicBrainzID: music.ParseMBID(at(mbids, i)),
			Name:          tag.NameOrUnknown(in.naming(), name, at(sortNames, i), tag.PlaceholderArtist),
			RawName:       name,
		})
	}
	return out
}

func (in *Interpreter) genres(raw []string) []PreGenre {
	names, ok := tag.ParseID3GenreNames(raw)
	if !ok {
		names = in.split(raw)
	}
	out := make([]PreGenre, 0, len(names))
	for _, name := range names {
		out = append(out, PreGenre{
			Name:    tag.NameOrUnknown(in.naming(), name, "", tag.PlaceholderGenre),
			RawName: name,
		})
	}
	return out
}

func unknownArtist() PreArtist {
	return PreArtist{Name: tag.Unknown(tag.PlaceholderArtist)}
}

func orElse(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func orSlice(s, fallback []string) []string {
	if len(s) > 0 {
		return s
	}
	return fallback
}

// orNull substitutes a single absent value for an empty list.
func orNull(s []string) []string {
	if len(s) == 0 {
		return []string{""}
	}
	return s
}

func at(s []string, i int) string {
	if i < len(s) {
		return s[i]
	}
	return ""
}

func firstSegment(name string) string {
	first, _, _ := strings.Cut(name, ".")
	return first
}

func dropLastSegment(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return ""
}
