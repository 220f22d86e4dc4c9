package tag

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var id3v2Genre = regexp.MustCompile(`^((?:\((\d+|RX|CR)\))*)(.+)?$`)

// ParseID3GenreNames resolves ID3v1 numeric genres and ID3v2.3 "(n)Name"
// genre strings. It reports false when a single value had no ID3 formatting,
// leaving it to be split by other means.
func ParseID3GenreNames(values []string) ([]string, bool) {
	if len(values) == 1 {
		if g, ok := parseID3v1Genre(values[0]); ok {
			return []string{g}, true
		}
		return parseID3v2Genre(values[0])
	}
	out := make([]string, len(values))
	for i, v := range values {
		if g, ok := parseID3v1Genre(v); ok {
			out[i] = g
		} else {
			out[i] = v
		}
	}
	return out, true
}

func parseID3v1Genre(v string) (string, bool) {
	switch v {
	case "CR":
		return "Cover", true
	case "RX":
		return "Remix", true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 || n >= len(genreTable) {
		return "", false
	}
	return genreTable[n], true
}

func parseID3v2Genre(v string) ([]string, bool) {
	m := id3v2Genre.FindStringSubmatch(v)
	if m == nil {
		return nil, false
	}
	var genres []string
	add := func(g string) {
		if !slices.Contains(genres, g) {
			genres = append(genres, g)
		}
	}

	if ids := m[1]; ids != "" {
		for _, id := range strings.Split(ids[1:len(ids)-1], ")(") {
			if g, ok := parseID3v1Genre(id); ok {
				add(g)
			}
		}
	}
	if name := m[3]; name != "" {
		// "((" escapes a literal parenthesis.
		if strings.HasPrefix(name, "((") {
			add(name[1:])
		} else {
			add(name)
		}
	}

	if len(genres) == 1 && genres[0] == v {
		return nil, false
	}
	return genres, true
}

// ID3v1 genres with the Winamp extensions.
var genreTable = [...]string{
	"Blues", "Classic Rock", "Country", "Dance", "Disco", "Funk", "Grunge",
	"Hip-Hop", "Jazz", "Metal", "New Age", "Oldies", "Other", "Pop", "R&B",
	"Rap", "Reggae", "Rock", "Techno", "Industrial", "Alternative", "Ska",
	"Death Metal", "Pranks", "Soundtrack", "Euro-Techno", "Ambient",
	"Trip-Hop", "Vocal", "Jazz+Funk", "Fusion", "Trance", "Classical",
	"Instrumental", "Acid", "House", "Game", "Sound Clip", "Gospel", "Noise",
	"AlternRock", "Bass", "Soul", "Punk", "Space", "Meditative",
	"Instrumental Pop", "Instrumental Rock", "Ethnic", "Gothic", "Darkwave",
	"Techno-Industrial", "Electronic", "Pop-Folk", "Eurodance", "Dream",
	"Southern Rock", "Comedy", "Cult", "Gangsta", "Top 40", "Christian Rap",
	"Pop/Funk", "Jungle", "Native American", "Cabaret", "New Wave",
	"Psychadelic", "Rave", "Showtunes", "Trailer", "Lo-Fi", "Tribal",
	"Acid Punk", "Acid Jazz", "Polka", "Retro", "Musical", "Rock & Roll",
	"Hard Rock",

	// Winamp
	"Folk", "Folk-Rock", "National Folk", "Swing", "Fast Fusion", "Bebob",
	"Latin", "Revival", "Celtic", "Bluegrass", "Avantgarde", "Gothic Rock",
	"Progressive Rock", "Psychedelic Rock", "Symphonic Rock", "Slow Rock",
	"Big Band", "Chorus", "Easy Listening", "Acoustic", "Humour", "Speech",
	"Chanson", "Opera", "Chamber Music", "Sonata", "Symphony", "Booty Bass",
	"Primus", "Porn Groove", "Satire", "Slow Jam", "Club", "Tango", "Samba",
	"Folklore", "Ballad", "Power Ballad", "Rhythmic Soul", "Freestyle",
	"Duet", "Punk Rock", "Drum Solo", "A capella", "Euro-House", "Dance Hall",
	"Goa", "Drum & Bass", "Club-House", "Hardcore", "Terror", "Indie",
	"Britpop", "Negerpunk", "Polsk Punk", "Beat", "Christian Gangsta",
	"Heavy Metal", "Black Metal", "Crossover", "Contemporary Christian",
	"Christian Rock", "Merengue", "Salsa", "Thrash Metal", "Anime", "JPop",
	"Synthpop",

	// Winamp 5.6
	"Abstract", "Art Rock", "Baroque", "Bhangra", "Big Beat", "Breakbeat",
	"Chillout", "Downtempo", "Dub", "EBM", "Eclectic", "Electro",
	"Electroclash", "Emo", "Experimental", "Garage", "Global", "IDM",
	"Illbient", "Industro-Goth", "Jam Band", "Krautrock", "Leftfield",
	"Lounge", "Math Rock", "New Romantic", "Nu-Breakz", "Post-Punk",
	"Post-Rock", "Psytrance", "Shoegaze", "Space Rock", "Trop Rock",
	"World Music", "Neoclassical", "Audiobook", "Audio Theatre",
	"Neue Deutsche Welle", "Podcast", "Indie Rock", "G-Funk", "Dubstep",
	"Garage Rock", "Psybient",

	"Future Garage",
}
