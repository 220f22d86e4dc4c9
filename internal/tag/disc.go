package tag

import "strconv"

// Disc identifies the medium a song belongs to.
type Disc struct {
	Number   int
	Subtitle string
}

func (d Disc) String() string {
	if d.Subtitle != "" {
		return strconv.Itoa(d.Number) + " (" + d.Subtitle + ")"
	}
	return strconv.Itoa(d.Number)
}

// ReplayGainAdjustment holds track and album gain in dB. Either may be nil.
type ReplayGainAdjustment struct {
	Track *float32
	Album *float32
}
