package types

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/simonhull/musikr/internal/binary"
)

// Format represents a detected audio container.
type Format int

const (
	// FormatUnknown represents an unknown or unsupported format.
	FormatUnknown Format = iota
	// FormatFLAC represents native FLAC files.
	FormatFLAC
	// FormatMP3 represents MPEG layer 3 files, usually ID3v2 tagged.
	FormatMP3
	// FormatMP4 represents MPEG-4 audio (m4a, m4b, alac, aac).
	FormatMP4
	// FormatOgg represents Ogg Vorbis files.
	FormatOgg
	// FormatOpus represents Ogg Opus files.
	FormatOpus
	// FormatWAV represents RIFF WAVE files.
	FormatWAV
	// FormatAIFF represents AIFF and AIFF-C files.
	FormatAIFF
)

var formatNames = map[Format]string{
	FormatUnknown: "Unknown",
	FormatFLAC:    "FLAC",
	FormatMP3:     "MP3",
	FormatMP4:     "MP4",
	FormatOgg:     "Ogg Vorbis",
	FormatOpus:    "Opus",
	FormatWAV:     "WAV",
	FormatAIFF:    "AIFF",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "Unknown"
}

// Extensions returns common file extensions for this format.
func (f Format) Extensions() []string {
	switch f {
	case FormatFLAC:
		return []string{".flac"}
	case FormatMP3:
		return []string{".mp3"}
	case FormatMP4:
		return []string{".m4a", ".m4b", ".mp4", ".m4p", ".aac", ".alac"}
	case FormatOgg:
		return []string{".ogg", ".oga"}
	case FormatOpus:
		return []string{".opus"}
	case FormatWAV:
		return []string{".wav"}
	case FormatAIFF:
		return []string{".aiff", ".aif", ".aifc"}
	default:
		return nil
	}
}

// MIMEType returns the canonical MIME type for the format.
func (f Format) MIMEType() string {
	switch f {
	case FormatFLAC:
		return "audio/flac"
	case FormatMP3:
		return "audio/mpeg"
	case FormatMP4:
		return "audio/mp4"
	case FormatOgg:
		return "audio/ogg"
	case FormatOpus:
		return "audio/opus"
	case FormatWAV:
		return "audio/wav"
	case FormatAIFF:
		return "audio/aiff"
	default:
		return "application/octet-stream"
	}
}

// FormatFromExtension guesses the format from a file name.
func FormatFromExtension(name string) Format {
	ext := strings.ToLower(filepath.Ext(name))
	for f := FormatFLAC; f <= FormatAIFF; f++ {
		for _, e := range f.Extensions() {
			if e == ext {
				return f
			}
		}
	}
	return FormatUnknown
}

// DetectFormat determines the audio container by examining magic bytes.
//
// Detection does not validate the rest of the file structure.
func DetectFormat(r io.ReaderAt, size int64, path string) (Format, error) { //nolint:gocyclo // Format detection requires checking multiple magic byte patterns
	if size < 4 {
		return FormatUnknown, &UnsupportedFormatError{
			Path:   path,
			Reason: "file too small",
		}
	}

	sr := binary.NewSafeReader(r, size, path)

	magic := make([]byte, 4)
	if err := sr.ReadAt(magic, 0, "file magic bytes"); err != nil {
		return FormatUnknown, &UnsupportedFormatError{
			Path:   path,
			Reason: "failed to read file header",
		}
	}

	switch {
	case string(magic) == "fLaC":
		return FormatFLAC, nil
	case string(magic[:3]) == "ID3":
		// FLAC files occasionally carry a leading ID3v2 tag.
		if FormatFromExtension(path) == FormatFLAC {
			return FormatFLAC, nil
		}
		return FormatMP3, nil
	case magic[0] == 0xFF && (magic[1]&0xE0) == 0xE0:
		return FormatMP3, nil
	case string(magic) == "OggS":
		return detectOggCodec(sr, size), nil
	case string(magic) == "RIFF" && size >= 12:
		if tag, err := sr.Bytes(8, 4, "WAVE tag"); err == nil && string(tag) == "WAVE" {
			return FormatWAV, nil
		}
	case string(magic) == "FORM" && size >= 12:
		if tag, err := sr.Bytes(8, 4, "AIFF tag"); err == nil && (string(tag) == "AIFF" || string(tag) == "AIFC") {
			return FormatAIFF, nil
		}
	}

	return detectMP4(sr, path)
}

// detectOggCodec peeks into the first Ogg page for an OpusHead packet.
func detectOggCodec(sr *binary.SafeReader, size int64) Format {
	// 27 byte page header + segment table + 8 bytes of codec magic.
	if size < 36 {
		return FormatOgg
	}
	segCount, err := binary.Read[uint8](sr, 26, "segment count")
	if err != nil {
		return FormatOgg
	}
	packetOffset := int64(27 + int(segCount))
	if packetOffset+8 > size {
		return FormatOgg
	}
	codecMagic, err := sr.Bytes(packetOffset, 8, "codec magic")
	if err == nil && string(codecMagic) == "OpusHead" {
		return FormatOpus
	}
	return FormatOgg
}

var mp4Brands = map[string]bool{
	"M4A ": true,
	"M4B ": true,
	"M4P ": true,
	"mp42": true,
	"mp41": true,
	"isom": true,
	"iso2": true,
	"dash": true,
}

func detectMP4(sr *binary.SafeReader, path string) (Format, error) {
	if sr.Size() < 12 {
		return FormatUnknown, &UnsupportedFormatError{Path: path, Reason: "unsupported file format"}
	}
	atomSize, err := binary.Read[uint32](sr, 0, "ftyp atom size")
	if err != nil {
		return FormatUnknown, &UnsupportedFormatError{Path: path, Reason: "failed to read file header"}
	}
	atomType, err := sr.Bytes(4, 4, "ftyp atom type")
	if err != nil || string(atomType) != "ftyp" {
		return FormatUnknown, &UnsupportedFormatError{Path: path, Reason: "unsupported file format"}
	}
	if atomSize < 16 {
		return FormatUnknown, &UnsupportedFormatError{Path: path, Reason: "ftyp atom too small"}
	}
	brand, err := sr.Bytes(8, 4, "major brand")
	if err != nil {
		return FormatUnknown, &UnsupportedFormatError{Path: path, Reason: "failed to read major brand"}
	}
	if mp4Brands[string(brand)] {
		return FormatMP4, nil
	}
	return FormatUnknown, &UnsupportedFormatError{
		Path:   path,
		Reason: "unsupported file brand " + string(brand),
	}
}
