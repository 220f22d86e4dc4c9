package tag

import (
	"bytes"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Placeholder names an entity whose name tag was absent.
type Placeholder int

const (
	PlaceholderArtist Placeholder = iota + 1
	PlaceholderAlbum
	PlaceholderGenre
)

func (p Placeholder) String() string {
	switch p {
	case PlaceholderArtist:
		return "Unknown Artist"
	case PlaceholderAlbum:
		return "Unknown Album"
	case PlaceholderGenre:
		return "Unknown Genre"
	}
	return "Unknown"
}

// Token is one comparable run of a name.
type Token struct {
	Source  string
	Numeric bool
	key     []byte
}

// Compare sorts numeric tokens before lexicographic ones and numeric tokens
// by magnitude.
func (t Token) Compare(o Token) int {
	if t.Numeric != o.Numeric {
		if t.Numeric {
			return -1
		}
		return 1
	}
	if t.Numeric && len(t.Source) != len(o.Source) {
		return len(t.Source) - len(o.Source)
	}
	return bytes.Compare(t.key, o.key)
}

// Name is the display and sort name of a music item. A Name without a
// placeholder is known and carries its raw string.
type Name struct {
	raw         string
	sort        string
	placeholder Placeholder
	tokens      []Token
}

// Unknown returns a placeholder name.
func Unknown(p Placeholder) Name {
	return Name{placeholder: p}
}

// Known reports whether the name came from a tag or file name.
func (n Name) Known() bool { return n.placeholder == 0 }

// Raw returns the raw name, or "" for placeholders.
func (n Name) Raw() string { return n.raw }

// Sort returns the sort name tag, if any.
func (n Name) Sort() string { return n.sort }

// Placeholder returns the placeholder of an unknown name.
func (n Name) Placeholder() Placeholder { return n.placeholder }

// Tokens returns the sort tokens of a known name.
func (n Name) Tokens() []Token { return n.tokens }

// Resolve returns a human-readable form of the name.
func (n Name) Resolve() string {
	if n.Known() {
		return n.raw
	}
	return n.placeholder.String()
}

func (n Name) String() string { return n.Resolve() }

// Thumb returns the character used to index a sorted list, "#" for names
// that sort numerically and "?" for placeholders.
func (n Name) Thumb() string {
	if !n.Known() || len(n.tokens) == 0 || n.tokens[0].Source == "" {
		return "?"
	}
	r := []rune(n.tokens[0].Source)[0]
	if unicode.IsDigit(r) {
		return "#"
	}
	return strings.ToUpper(string(r))
}

// Compare orders names by their tokens. Unknown names sort first.
func (n Name) Compare(o Name) int {
	switch {
	case !n.Known() && !o.Known():
		return 0
	case !n.Known():
		return -1
	case !o.Known():
		return 1
	}
	for i := 0; i < min(len(n.tokens), len(o.tokens)); i++ {
		if c := n.tokens[i].Compare(o.tokens[i]); c != 0 {
			return c
		}
	}
	return len(n.tokens) - len(o.tokens)
}

// Naming turns raw names into comparable names.
type Naming interface {
	Name(raw, sort string) Name
}

// NameOrUnknown returns a placeholder name when raw is empty.
func NameOrUnknown(n Naming, raw, sort string, p Placeholder) Name {
	if raw == "" {
		return Unknown(p)
	}
	return n.Name(raw, sort)
}

var (
	punct       = regexp.MustCompile(`[[:punct:]]+`)
	tokenRegexp = regexp.MustCompile(`(\d+)|(\D+)`)

	collatorMu sync.Mutex
	collator   = collate.New(language.Und, collate.Loose)
	keyBuf     collate.Buffer
)

// collationKey computes a primary-strength key. The collator is not safe
// for concurrent use.
func collationKey(s string) []byte {
	collatorMu.Lock()
	defer collatorMu.Unlock()
	key := collator.KeyFromString(&keyBuf, s)
	out := make([]byte, len(key))
	copy(out, key)
	keyBuf.Reset()
	return out
}

type simpleNaming struct{}

// SimpleNaming compares whole names with punctuation removed.
var SimpleNaming Naming = simpleNaming{}

func (simpleNaming) Name(raw, sort string) Name {
	src := raw
	if sort != "" {
		src = sort
	}
	stripped := strings.TrimSpace(punct.ReplaceAllString(src, ""))
	if stripped == "" {
		stripped = src
	}
	return Name{
		raw:    raw,
		sort:   sort,
		tokens: []Token{{Source: stripped, key: collationKey(stripped)}},
	}
}

type intelligentNaming struct{}

// IntelligentNaming additionally ignores leading English articles and
// compares digit runs by value.
var IntelligentNaming Naming = intelligentNaming{}

func (intelligentNaming) Name(raw, sort string) Name {
	src := raw
	if sort != "" {
		src = sort
	}
	stripped := punct.ReplaceAllString(src, "")
	if stripped == "" {
		stripped = src
	}
	stripped = stripArticle(stripped)

	var tokens []Token
	for _, m := range tokenRegexp.FindAllString(stripped, -1) {
		tok := strings.TrimSpace(m)
		if tok == "" {
			tok = m
		}
		if tok[0] >= '0' && tok[0] <= '9' {
			digits := strings.TrimLeft(tok, "0")
			if digits == "" {
				digits = tok
			}
			tokens = append(tokens, Token{Source: digits, Numeric: true, key: collationKey(digits)})
			continue
		}
		tokens = append(tokens, Token{Source: tok, key: collationKey(tok)})
	}
	return Name{raw: raw, sort: sort, tokens: tokens}
}

func stripArticle(s string) string {
	switch {
	case len(s) > 4 && strings.EqualFold(s[:4], "the "):
		return s[4:]
	case len(s) > 3 && strings.EqualFold(s[:3], "an "):
		return s[3:]
	case len(s) > 2 && strings.EqualFold(s[:2], "a "):
		return s[2:]
	}
	return s
}
