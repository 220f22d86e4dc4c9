package tag

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// iso8601 matches a variable-precision ISO-8601 timestamp. Odd groups hold
// year, month, day, hour, minute and second.
var iso8601 = regexp.MustCompile(`^(\d{4})([-.](\d{2})([-.](\d{2})([T ](\d{2})([:.](\d{2})([:.](\d{2})(Z)?)?)?)?)?)?$`)

// Date is an ISO-8601 date of variable precision. Only the components that
// were present and valid are kept, in order of precision.
type Date struct {
	tokens []int
}

// ParseDate parses a timestamp. Plain integers are treated as years, and
// eight-digit integers as packed YYYYMMDD dates. Invalid components truncate
// the precision; nil is returned when the year itself is invalid.
func ParseDate(timestamp string) *Date {
	m := iso8601.FindStringSubmatch(timestamp)
	if m == nil {
		year, err := strconv.Atoi(timestamp)
		if err != nil {
			return nil
		}
		return DateFromYear(year)
	}
	var tokens []int
	for i := 1; i < len(m); i += 2 {
		if n, err := strconv.Atoi(m[i]); err == nil {
			tokens = append(tokens, n)
		}
	}
	return dateFromTokens(tokens)
}

// DateFromYear creates a year-precision date. Values between 10000000 and
// 100000000 are unpacked as YYYYMMDD.
func DateFromYear(year int) *Date {
	if year >= 10000000 && year <= 100000000 {
		s := strconv.Itoa(year)
		y, _ := strconv.Atoi(s[0:4])
		mo, _ := strconv.Atoi(s[4:6])
		d, _ := strconv.Atoi(s[6:8])
		return dateFromTokens([]int{y, mo, d})
	}
	return dateFromTokens([]int{year})
}

// DateFromParts creates a date from already separated components.
func DateFromParts(parts ...int) *Date {
	return dateFromTokens(parts)
}

var tokenRanges = [][2]int{
	{1, int(^uint(0) >> 1)},
	{1, 12},
	{1, 31},
	{0, 23},
	{0, 59},
	{0, 59},
}

func dateFromTokens(src []int) *Date {
	var valid []int
	for i, r := range tokenRanges {
		if i >= len(src) || src[i] < r[0] || src[i] > r[1] {
			break
		}
		valid = append(valid, src[i])
	}
	if len(valid) == 0 {
		return nil
	}
	return &Date{tokens: valid}
}

func (d *Date) token(i int) int {
	if i < len(d.tokens) {
		return d.tokens[i]
	}
	return 0
}

// Year returns the year component.
func (d *Date) Year() int { return d.token(0) }

// Month returns the month component, or 0 when absent.
func (d *Date) Month() int { return d.token(1) }

// Day returns the day component, or 0 when absent.
func (d *Date) Day() int { return d.token(2) }

// Precision returns the number of components present, from 1 (year) to 6
// (second).
func (d *Date) Precision() int { return len(d.tokens) }

// String renders the date as ISO-8601, dropping absent precision.
func (d *Date) String() string {
	var b strings.Builder
	b.WriteString(fixed(d.tokens[0], 4))
	if len(d.tokens) < 2 {
		return b.String()
	}
	b.WriteString("-" + fixed(d.tokens[1], 2))
	if len(d.tokens) < 3 {
		return b.String()
	}
	b.WriteString("-" + fixed(d.tokens[2], 2))
	if len(d.tokens) < 4 {
		return b.String()
	}
	b.WriteString("T" + fixed(d.tokens[3], 2))
	for _, t := range d.tokens[4:] {
		b.WriteString(":" + fixed(t, 2))
	}
	b.WriteByte('Z')
	return b.String()
}

func fixed(n, width int) string {
	s := fmt.Sprintf("%0*d", width, n)
	return s[:width]
}

// Compare orders dates component by component. A date that is a prefix of
// another sorts first.
func (d *Date) Compare(o *Date) int {
	for i := 0; i < max(len(d.tokens), len(o.tokens)); i++ {
		switch {
		case i >= len(d.tokens):
			return -1
		case i >= len(o.tokens):
			return 1
		case d.tokens[i] < o.tokens[i]:
			return -1
		case d.tokens[i] > o.tokens[i]:
			return 1
		}
	}
	return 0
}

// Equal reports whether both dates have identical components. Nil dates are
// equal to each other.
func (d *Date) Equal(o *Date) bool {
	if d == nil || o == nil {
		return d == o
	}
	return d.Compare(o) == 0
}

// DateRange spans the earliest and latest date of a group of songs.
type DateRange struct {
	Min *Date
	Max *Date
}

// NewDateRange returns the range covering every non-nil date, or nil when
// there are none.
func NewDateRange(dates []*Date) *DateRange {
	var r *DateRange
	for _, d := range dates {
		if d == nil {
			continue
		}
		if r == nil {
			r = &DateRange{Min: d, Max: d}
			continue
		}
		if d.Compare(r.Min) < 0 {
			r.Min = d
		}
		if d.Compare(r.Max) > 0 {
			r.Max = d
		}
	}
	return r
}

// Compare orders ranges by their earliest date.
func (r *DateRange) Compare(o *DateRange) int {
	return r.Min.Compare(o.Min)
}

func (r *DateRange) String() string {
	if r.Min.Equal(r.Max) {
		return r.Min.String()
	}
	return r.Min.String() + " - " + r.Max.String()
}
