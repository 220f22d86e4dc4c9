// Package parse maps container tags onto a format-agnostic tag record.
package parse

import (
	"github.com/simonhull/musikr/internal/tag"
	"github.com/simonhull/musikr/internal/types"
)

// ParsedTags holds the tag values of one file. Empty strings, nil pointers
// and nil slices mean the tag was absent.
type ParsedTags struct {
	DurationMs      int64
	ReplayGainTrack *float32
	ReplayGainAlbum *float32

	MusicBrainzID string
	Name          string
	SortName      string
	Track         *int
	Disc          *int
	Subtitle      string
	Date          *tag.Date

	AlbumMusicBrainzID string
	AlbumName          string
	AlbumSortName      string
	ReleaseTypes       []string

	ArtistMusicBrainzIDs []string
	ArtistNames          []string
	ArtistSortNames      []string

	AlbumArtistMusicBrainzIDs []string
	AlbumArtistNames          []string
	AlbumArtistSortNames      []string

	GenreNames []string
}

// Compilation defaults.
const (
	VariousArtists         = "Various Artists"
	CompilationReleaseType = "compilation"
)

// Parse reads md through the first-match-wins chains for every field.
// Malformed values are dropped rather than reported.
func Parse(md *types.Metadata) ParsedTags {
	t := ParsedTags{
		DurationMs:      md.Properties.DurationMs,
		ReplayGainTrack: replayGain(md, replayGainTrackChain),
		ReplayGainAlbum: replayGain(md, replayGainAlbumChain),

		MusicBrainzID: tag.CorrectWhitespace(lookupFirst(md, musicBrainzIDChain)),
		Name:          tag.CorrectWhitespace(lookupFirst(md, nameChain)),
		SortName:      tag.CorrectWhitespace(lookupFirst(md, sortNameChain)),
		Track:         track(md),
		Disc:          disc(md),
		Subtitle:      tag.CorrectWhitespace(lookupFirst(md, subtitleChain)),
		Date:          date(md),

		AlbumMusicBrainzID: tag.CorrectWhitespace(lookupFirst(md, albumMusicBrainzIDChain)),
		AlbumName:          tag.CorrectWhitespace(lookupFirst(md, albumNameChain)),
		AlbumSortName:      tag.CorrectWhitespace(lookupFirst(md, albumSortNameChain)),
		ReleaseTypes:       tag.CorrectWhitespaceAll(lookup(md, releaseTypesChain)),

		ArtistMusicBrainzIDs: tag.CorrectWhitespaceAll(lookup(md, artistMusicBrainzIDsChain)),
		ArtistNames:          tag.CorrectWhitespaceAll(lookup(md, artistNamesChain)),
		ArtistSortNames:      tag.CorrectWhitespaceAll(lookup(md, artistSortNamesChain)),

		AlbumArtistMusicBrainzIDs: tag.CorrectWhitespaceAll(lookup(md, albumArtistMusicBrainzIDsChain)),
		AlbumArtistNames:          tag.CorrectWhitespaceAll(lookup(md, albumArtistNamesChain)),
		AlbumArtistSortNames:      tag.CorrectWhitespaceAll(lookup(md, albumArtistSortNamesChain)),

		GenreNames: tag.CorrectWhitespaceAll(lookup(md, genreNamesChain)),
	}

	if isCompilation(md) {
		if len(t.AlbumArtistNames) == 0 {
			t.AlbumArtistNames = []string{VariousArtists}
		}
		if len(t.ReleaseTypes) == 0 {
			t.ReleaseTypes = []string{CompilationReleaseType}
		}
	}
	return t
}
