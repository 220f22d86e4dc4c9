// Package types defines the container-level metadata produced by the format
// extractors, before any semantic interpretation.
package types

import (
	"fmt"
	"strings"
)

// Properties holds the technical audio properties of a file.
type Properties struct {
	DurationMs   int64
	BitrateKbps  int
	SampleRateHz int
}

// PictureType is the ID3v2 APIC / FLAC PICTURE picture type.
type PictureType int

const (
	PictureOther      PictureType = 0
	PictureFrontCover PictureType = 3
	PictureBackCover  PictureType = 4
	PictureMedia      PictureType = 6
)

// Picture is an embedded image.
type Picture struct {
	Type     PictureType
	MIMEType string
	Data     []byte
}

// Metadata is the raw output of a format extractor: every text field it
// found, keyed by tag family, plus properties and the best embedded picture.
//
// Keys are normalized per family:
//   - ID3v2: frame ID ("TIT2"), or "TXXX:<DESCRIPTION>" uppercased
//   - Xiph: comment field name uppercased ("TITLE")
//   - MP4: atom code as UTF-8 ("©nam"), or "----:<MEAN>:<NAME>" uppercased
type Metadata struct {
	Path       string
	Format     Format
	Size       int64
	ID3v2      map[string][]string
	Xiph       map[string][]string
	MP4        map[string][]string
	Properties Properties
	Cover      *Picture
	Warnings   []Warning
}

// NewMetadata returns empty metadata for the given file.
func NewMetadata(path string, format Format, size int64) *Metadata {
	return &Metadata{
		Path:   path,
		Format: format,
		Size:   size,
		ID3v2:  make(map[string][]string),
		Xiph:   make(map[string][]string),
		MP4:    make(map[string][]string),
	}
}

// AddID3v2 appends values for an ID3v2 key.
func (m *Metadata) AddID3v2(key string, values ...string) {
	add(m.ID3v2, key, values)
}

// AddXiph appends values for a Xiph comment key. Keys are case-insensitive.
func (m *Metadata) AddXiph(key string, values ...string) {
	add(m.Xiph, strings.ToUpper(key), values)
}

// AddMP4 appends values for an MP4 item key.
func (m *Metadata) AddMP4(key string, values ...string) {
	add(m.MP4, key, values)
}

func add(dst map[string][]string, key string, values []string) {
	for _, v := range values {
		v = strings.TrimRight(v, "\x00")
		if v == "" {
			continue
		}
		dst[key] = append(dst[key], v)
	}
}

// OfferCover keeps pic if it is a better cover than the current one.
// Front covers win over any other picture type; otherwise the first wins.
func (m *Metadata) OfferCover(pic Picture) {
	if len(pic.Data) == 0 {
		return
	}
	if m.Cover == nil || (m.Cover.Type != PictureFrontCover && pic.Type == PictureFrontCover) {
		p := pic
		m.Cover = &p
	}
}

// Warn records a non-fatal issue.
func (m *Metadata) Warn(stage string, offset int64, format string, args ...any) {
	m.Warnings = append(m.Warnings, Warning{
		Stage:   stage,
		Message: fmt.Sprintf(format, args...),
		Offset:  offset,
	})
}

// Empty reports whether no tags at all were found.
func (m *Metadata) Empty() bool {
	return len(m.ID3v2) == 0 && len(m.Xiph) == 0 && len(m.MP4) == 0
}
