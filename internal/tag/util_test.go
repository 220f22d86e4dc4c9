package tag

import "testing"

func isComma(r rune) bool { return r == ',' }

func TestSplitEscaped(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{`a\,b,c`, []string{"a,b", "c"}},
		{"a , b, c ,  ", []string{"a ", " b", " c ", "  "}},
		{`a \, b, c ,  `, []string{"a , b", " c ", "  "}},
		{`a\b`, []string{`a\b`}},
	}
	for _, tt := range tests {
		if got := SplitEscaped(tt.input, isComma); !equalStrings(got, tt.want) {
			t.Errorf("SplitEscaped(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCorrectWhitespace(t *testing.T) {
	if got := CorrectWhitespace(" asymptotic self-improvement  "); got != "asymptotic self-improvement" {
		t.Errorf("got %q", got)
	}
	if got := CorrectWhitespace("     "); got != "" {
		t.Errorf("got %q", got)
	}
	got := CorrectWhitespaceAll([]string{"      ", "", "  tcp phagocyte"})
	if !equalStrings(got, []string{"tcp phagocyte"}) {
		t.Errorf("got %q", got)
	}
}

func intp(n int) *int { return &n }

func equalPos(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		name string
		got  *int
		want *int
	}{
		{"slash", ParseSlashPosition("16/32"), intp(16)},
		{"slash no total", ParseSlashPosition("16"), intp(16)},
		{"slash zero", ParseSlashPosition("0"), nil},
		{"slash zero with total", ParseSlashPosition("0/32"), intp(0)},
		{"slash dangling", ParseSlashPosition("16/"), intp(16)},
		{"slash garbage", ParseSlashPosition("a/b"), nil},
		{"xiph", ParseXiphPosition("16", "32"), intp(16)},
		{"xiph no total", ParseXiphPosition("16", ""), intp(16)},
		{"xiph zero", ParseXiphPosition("0", ""), nil},
		{"xiph zero with total", ParseXiphPosition("0", "32"), intp(0)},
		{"xiph garbage", ParseXiphPosition("a", "b"), nil},
	}
	for _, tt := range tests {
		if !equalPos(tt.got, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}
