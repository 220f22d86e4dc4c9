package parse

import (
	"regexp"
	"strconv"

	"github.com/simonhull/musikr/internal/tag"
	"github.com/simonhull/musikr/internal/types"
)

// Descriptive keys arrive uppercased from the extractors. MP4 atoms keep
// their original casing since they are case-sensitive.

type source func(md *types.Metadata) []string

func xiph(key string) source {
	return func(md *types.Metadata) []string { return md.Xiph[key] }
}

func mp4(key string) source {
	return func(md *types.Metadata) []string { return md.MP4[key] }
}

// itunes looks up a freeform iTunes item.
func itunes(name string) source {
	return mp4("----:COM.APPLE.ITUNES:" + name)
}

func id3(key string) source {
	return func(md *types.Metadata) []string { return md.ID3v2[key] }
}

// lookup returns the values of the first source that has any.
func lookup(md *types.Metadata, chain []source) []string {
	for _, src := range chain {
		if v := src(md); len(v) > 0 {
			return v
		}
	}
	return nil
}

func lookupFirst(md *types.Metadata, chain []source) string {
	if v := lookup(md, chain); len(v) > 0 {
		return v[0]
	}
	return ""
}

var (
	musicBrainzIDChain = []source{
		xiph("MUSICBRAINZ_RELEASETRACKID"), xiph("MUSICBRAINZ RELEASE TRACK ID"),
		itunes("MUSICBRAINZ RELEASE TRACK ID"), itunes("MUSICBRAINZ_RELEASETRACKID"),
		id3("TXXX:MUSICBRAINZ RELEASE TRACK ID"), id3("TXXX:MUSICBRAINZ_RELEASETRACKID"),
	}
	nameChain     = []source{xiph("TITLE"), mp4("©nam"), mp4("©trk"), id3("TIT2")}
	sortNameChain = []source{xiph("TITLESORT"), mp4("sonm"), id3("TSOT")}

	trackTotalChain = []source{xiph("TOTALTRACKS"), xiph("TRACKTOTAL"), xiph("TRACKC")}
	trackSlashChain = []source{mp4("trkn"), id3("TRCK")}
	discTotalChain  = []source{xiph("TOTALDISCS"), xiph("DISCTOTAL"), xiph("DISCC")}
	discSlashChain  = []source{mp4("disk"), id3("TPOS")}
	subtitleChain   = []source{xiph("DISCSUBTITLE"), id3("TSST")}

	// Original dates win over recording and release dates since they
	// resolve "released in X, remastered in Y".
	dateChain = []source{
		xiph("ORIGINALDATE"), xiph("DATE"), xiph("YEAR"), mp4("©day"),
		id3("TDOR"), id3("TDRC"), id3("TDRL"),
	}

	albumMusicBrainzIDChain = []source{
		xiph("MUSICBRAINZ_ALBUMID"), xiph("MUSICBRAINZ ALBUM ID"),
		itunes("MUSICBRAINZ ALBUM ID"), itunes("MUSICBRAINZ_ALBUMID"),
		id3("TXXX:MUSICBRAINZ ALBUM ID"), id3("TXXX:MUSICBRAINZ_ALBUMID"),
	}
	albumNameChain     = []source{xiph("ALBUM"), mp4("©alb"), id3("TALB")}
	albumSortNameChain = []source{xiph("ALBUMSORT"), mp4("soal"), id3("TSOA")}
	// GRP1 is a non-standard iTunes extension.
	releaseTypesChain = []source{
		xiph("RELEASETYPE"), xiph("MUSICBRAINZ ALBUM TYPE"),
		itunes("MUSICBRAINZ ALBUM TYPE"), itunes("RELEASETYPE"), mp4("©grp"),
		id3("TXXX:MUSICBRAINZ ALBUM TYPE"), id3("TXXX:RELEASETYPE"), id3("GRP1"),
	}

	artistMusicBrainzIDsChain = []source{
		xiph("MUSICBRAINZ_ARTISTID"), xiph("MUSICBRAINZ ARTIST ID"),
		itunes("MUSICBRAINZ ARTIST ID"), itunes("MUSICBRAINZ_ARTISTID"),
		id3("TXXX:MUSICBRAINZ ARTIST ID"), id3("TXXX:MUSICBRAINZ_ARTISTID"),
	}
	artistNamesChain = []source{
		xiph("ARTISTS"), xiph("ARTIST"),
		itunes("ARTISTS"), mp4("©ART"), itunes("ARTIST"),
		id3("TXXX:ARTISTS"), id3("TPE1"), id3("TXXX:ARTIST"),
	}
	artistSortNamesChain = []source{
		xiph("ARTISTSSORT"), xiph("ARTISTS_SORT"), xiph("ARTISTS SORT"), xiph("ARTISTSORT"), xiph("ARTIST SORT"),
		itunes("ARTISTSSORT"), itunes("ARTISTS_SORT"), itunes("ARTISTS SORT"), mp4("soar"),
		itunes("ARTISTSORT"), itunes("ARTIST SORT"),
		id3("TXXX:ARTISTSSORT"), id3("TXXX:ARTISTS_SORT"), id3("TXXX:ARTISTS SORT"), id3("TSOP"),
		id3("TXXX:ARTISTSORT"), id3("TXXX:ARTIST SORT"),
	}

	albumArtistMusicBrainzIDsChain = []source{
		xiph("MUSICBRAINZ_ALBUMARTISTID"), xiph("MUSICBRAINZ ALBUM ARTIST ID"),
		itunes("MUSICBRAINZ ALBUM ARTIST ID"), itunes("MUSICBRAINZ_ALBUMARTISTID"),
		id3("TXXX:MUSICBRAINZ ALBUM ARTIST ID"), id3("TXXX:MUSICBRAINZ_ALBUMARTISTID"),
	}
	albumArtistNamesChain = []source{
		xiph("ALBUMARTISTS"), xiph("ALBUM_ARTISTS"), xiph("ALBUM ARTISTS"), xiph("ALBUMARTIST"), xiph("ALBUM ARTIST"),
		itunes("ALBUMARTISTS"), itunes("ALBUM_ARTISTS"), itunes("ALBUM ARTISTS"), mp4("aART"),
		itunes("ALBUMARTIST"), itunes("ALBUM ARTIST"),
		id3("TXXX:ALBUMARTISTS"), id3("TXXX:ALBUM_ARTISTS"), id3("TXXX:ALBUM ARTISTS"), id3("TPE2"),
		id3("TXXX:ALBUMARTIST"), id3("TXXX:ALBUM ARTIST"),
	}
	// TSO2 is a non-standard iTunes extension.
	albumArtistSortNamesChain = []source{
		xiph("ALBUMARTISTSSORT"), xiph("ALBUMARTISTS_SORT"), xiph("ALBUMARTISTS SORT"),
		xiph("ALBUMARTISTSORT"), xiph("ALBUM ARTIST SORT"),
		itunes("ALBUMARTISTSSORT"), itunes("ALBUMARTISTS_SORT"), itunes("ALBUMARTISTS SORT"),
		itunes("ALBUMARTISTSORT"), mp4("soaa"), itunes("ALBUM ARTIST SORT"),
		id3("TXXX:ALBUMARTISTSSORT"), id3("TXXX:ALBUMARTISTS_SORT"), id3("TXXX:ALBUMARTISTS SORT"),
		id3("TXXX:ALBUMARTISTSORT"), id3("TSO2"), id3("TXXX:ALBUM ARTIST SORT"),
	}

	genreNamesChain = []source{xiph("GENRE"), mp4("©gen"), mp4("gnre"), id3("TCON")}

	// TCMP is a non-standard iTunes extension.
	compilationChain = []source{
		xiph("COMPILATION"), xiph("ITUNESCOMPILATION"),
		mp4("cpil"), itunes("COMPILATION"), itunes("ITUNESCOMPILATION"),
		id3("TCMP"), id3("TXXX:COMPILATION"), id3("TXXX:ITUNESCOMPILATION"),
	}

	replayGainTrackChain = []gainSource{
		{xiph("R128_TRACK_GAIN"), true},
		{xiph("REPLAYGAIN_TRACK_GAIN"), false},
		{itunes("REPLAYGAIN_TRACK_GAIN"), false},
		{id3("TXXX:REPLAYGAIN_TRACK_GAIN"), false},
	}
	replayGainAlbumChain = []gainSource{
		{xiph("R128_ALBUM_GAIN"), true},
		{xiph("REPLAYGAIN_ALBUM_GAIN"), false},
		{itunes("REPLAYGAIN_ALBUM_GAIN"), false},
		{id3("TXXX:REPLAYGAIN_ALBUM_GAIN"), false},
	}
)

func track(md *types.Metadata) *int {
	if v := md.Xiph["TRACKNUMBER"]; len(v) > 0 {
		if pos := tag.ParseXiphPosition(v[0], lookupFirst(md, trackTotalChain)); pos != nil {
			return pos
		}
	}
	if v := lookup(md, trackSlashChain); len(v) > 0 {
		return tag.ParseSlashPosition(v[0])
	}
	return nil
}

func disc(md *types.Metadata) *int {
	if v := md.Xiph["DISCNUMBER"]; len(v) > 0 {
		if pos := tag.ParseXiphPosition(v[0], lookupFirst(md, discTotalChain)); pos != nil {
			return pos
		}
	}
	if v := lookup(md, discSlashChain); len(v) > 0 {
		return tag.ParseSlashPosition(v[0])
	}
	return nil
}

func date(md *types.Metadata) *tag.Date {
	if v := lookup(md, dateChain); len(v) > 0 {
		if d := tag.ParseDate(v[0]); d != nil {
			return d
		}
	}
	return id3v23Date(md)
}

// id3v23Date assembles a date from the split ID3v2.3 frames. TDAT and TIME
// refer to TORY when present and TYER otherwise.
func id3v23Date(md *types.Metadata) *tag.Date {
	year, ok := firstInt(md.ID3v2["TORY"])
	if !ok {
		if year, ok = firstInt(md.ID3v2["TYER"]); !ok {
			return nil
		}
	}

	tdat, ok := fourDigits(md.ID3v2["TDAT"])
	if !ok {
		return tag.DateFromYear(year)
	}
	mm, dd := tdat[0], tdat[1]
	if hhmm, ok := fourDigits(md.ID3v2["TIME"]); ok {
		return tag.DateFromParts(year, mm, dd, hhmm[0], hhmm[1])
	}
	return tag.DateFromParts(year, mm, dd)
}

func firstInt(v []string) (int, bool) {
	if len(v) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(v[0])
	return n, err == nil
}

// fourDigits splits an NNNN field into two two-digit numbers.
func fourDigits(v []string) ([2]int, bool) {
	if len(v) == 0 || len(v[0]) != 4 {
		return [2]int{}, false
	}
	for _, c := range v[0] {
		if c < '0' || c > '9' {
			return [2]int{}, false
		}
	}
	hi, _ := strconv.Atoi(v[0][0:2])
	lo, _ := strconv.Atoi(v[0][2:4])
	return [2]int{hi, lo}, true
}

// isCompilation reports whether the first compilation flag is exactly "1".
func isCompilation(md *types.Metadata) bool {
	v := lookup(md, compilationChain)
	return len(v) == 1 && v[0] == "1"
}

type gainSource struct {
	src  source
	r128 bool
}

// gainFilter strips everything but the float from values like "+2.5 dB".
var gainFilter = regexp.MustCompile(`[^\d.-]`)

func replayGain(md *types.Metadata, chain []gainSource) *float32 {
	for _, g := range chain {
		v := g.src(md)
		if len(v) == 0 {
			continue
		}
		f, err := strconv.ParseFloat(gainFilter.ReplaceAllString(v[0], ""), 32)
		if err != nil || f == 0 {
			continue
		}
		gain := float32(f)
		if g.r128 {
			// Q7.8 fixed point at -23 LUFS; shift to the -18 LUFS ReplayGain
			// reference.
			gain = gain/256 + 5
		}
		return &gain
	}
	return nil
}
