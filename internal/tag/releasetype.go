package tag

import "strings"

// ReleaseKind is the primary or secondary MusicBrainz release group type.
type ReleaseKind int

const (
	KindAlbum ReleaseKind = iota
	KindEP
	KindSingle
	KindCompilation
	KindSoundtrack
	KindMix
	KindMixtape
	KindDemo
)

var kindNames = [...]string{"Album", "EP", "Single", "Compilation", "Soundtrack", "Mix", "Mixtape", "Demo"}

func (k ReleaseKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Album"
}

// Refinement further specifies the performance of an album, EP, single or
// compilation.
type Refinement int

const (
	RefinementNone Refinement = iota
	RefinementLive
	RefinementRemix
)

// ReleaseType classifies an album following the MusicBrainz release group
// type vocabulary.
type ReleaseType struct {
	Kind       ReleaseKind
	Refinement Refinement
}

// DefaultReleaseType is a plain album.
var DefaultReleaseType = ReleaseType{Kind: KindAlbum}

// ParseReleaseType parses release group types such as ["album", "live"] or
// ["compilation", "remix"]. Orphan secondary types are treated as albums.
func ParseReleaseType(types []string) (ReleaseType, bool) {
	if len(types) == 0 {
		return ReleaseType{}, false
	}
	switch strings.ToLower(types[0]) {
	case "album":
		return parseSecondary(types, 1, KindAlbum), true
	case "ep":
		return parseSecondary(types, 1, KindEP), true
	case "single":
		return parseSecondary(types, 1, KindSingle), true
	default:
		return parseSecondary(types, 0, KindAlbum), true
	}
}

func parseSecondary(types []string, idx int, primary ReleaseKind) ReleaseType {
	secondary := at(types, idx)
	if strings.EqualFold(secondary, "compilation") {
		return parseSecondaryType(at(types, idx+1), KindCompilation)
	}
	return parseSecondaryType(secondary, primary)
}

func parseSecondaryType(t string, refinable ReleaseKind) ReleaseType {
	switch strings.ToLower(t) {
	case "soundtrack":
		return ReleaseType{Kind: KindSoundtrack}
	case "mixtape/street":
		return ReleaseType{Kind: KindMixtape}
	case "dj-mix":
		return ReleaseType{Kind: KindMix}
	case "demo":
		return ReleaseType{Kind: KindDemo}
	case "live":
		return ReleaseType{Kind: refinable, Refinement: RefinementLive}
	case "remix":
		return ReleaseType{Kind: refinable, Refinement: RefinementRemix}
	default:
		return ReleaseType{Kind: refinable}
	}
}

func at(s []string, i int) string {
	if i < len(s) {
		return s[i]
	}
	return ""
}

func (r ReleaseType) String() string {
	switch r.Refinement {
	case RefinementLive:
		return "Live " + r.Kind.String()
	case RefinementRemix:
		return "Remix " + r.Kind.String()
	}
	return r.Kind.String()
}
