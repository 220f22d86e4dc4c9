package tag

import "testing"

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  string // "" means nil
	}{
		{"2018", "2018"},
		{"2018-03", "2018-03"},
		{"2018-03-15", "2018-03-15"},
		{"2018.03.15", "2018-03-15"},
		{"2018-03-15T14", "2018-03-15T14Z"},
		{"2018-03-15T14:22", "2018-03-15T14:22Z"},
		{"2018-03-15 14:22:09Z", "2018-03-15T14:22:09Z"},
		{"2018-13-15", "2018"},
		{"2018-03-32", "2018-03"},
		{"2018-03-15T25:00", "2018-03-15"},
		{"20180315", "2018-03-15"},
		{"0", ""},
		{"not a date", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseDate(tt.input)
			if tt.want == "" {
				if got != nil {
					t.Errorf("ParseDate(%q) = %v, want nil", tt.input, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("ParseDate(%q) = nil, want %s", tt.input, tt.want)
			}
			if got.String() != tt.want {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestDateFromParts_Truncates(t *testing.T) {
	d := DateFromParts(2018, 3, 15, 14, 99)
	if d.String() != "2018-03-15T14Z" {
		t.Errorf("got %s", d)
	}
	if d.Precision() != 4 {
		t.Errorf("precision = %d, want 4", d.Precision())
	}
}

func TestDate_Compare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"2018", "2018", 0},
		{"2017", "2018", -1},
		{"2018-05", "2018-04", 1},
		{"2018", "2018-01", -1},
		{"2018-01-01", "2018", 1},
	}
	for _, tt := range tests {
		got := ParseDate(tt.a).Compare(ParseDate(tt.b))
		if got != tt.want {
			t.Errorf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestNewDateRange(t *testing.T) {
	if NewDateRange(nil) != nil {
		t.Error("expected nil range for no dates")
	}
	r := NewDateRange([]*Date{ParseDate("2001"), nil, ParseDate("1999-05"), ParseDate("2000")})
	if r.Min.String() != "1999-05" || r.Max.String() != "2001" {
		t.Errorf("range = %s", r)
	}
	single := NewDateRange([]*Date{ParseDate("2001")})
	if single.String() != "2001" {
		t.Errorf("single range = %s", single)
	}
}
