package tag

import (
	"strconv"
	"strings"
)

// SplitEscaped splits s on every rune matched by sep. A backslash before a
// separator keeps it literal. Values are returned untrimmed.
func SplitEscaped(s string, sep func(rune) bool) []string {
	var out []string
	var cur strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\\' && i+1 < len(runes) && sep(runes[i+1]) {
			cur.WriteRune(runes[i+1])
			i++
			continue
		}
		if sep(r) {
			out = append(out, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteRune(r)
	}
	return append(out, cur.String())
}

// CorrectWhitespace trims s, returning "" when nothing but whitespace
// remains.
func CorrectWhitespace(s string) string {
	return strings.TrimSpace(s)
}

// CorrectWhitespaceAll trims every value and drops blank ones.
func CorrectWhitespaceAll(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// ParseSlashPosition parses "n/total" position fields as used by ID3v2 and
// MP4.
func ParseSlashPosition(s string) *int {
	pos, total, _ := strings.Cut(s, "/")
	return transformPosition(atoi(pos), atoi(total))
}

// ParseXiphPosition parses a position stored apart from its total.
func ParseXiphPosition(pos, total string) *int {
	return transformPosition(atoi(pos), atoi(total))
}

// transformPosition keeps a zero position only when a positive total says
// the field was deliberately set.
func transformPosition(pos, total *int) *int {
	if pos == nil {
		return nil
	}
	if *pos > 0 || (total != nil && *total > 0) {
		return pos
	}
	return nil
}

func atoi(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}
