package types

import (
	"bytes"
	"errors"
	"testing"
)

func TestDetectFormat_Opus(t *testing.T) {
	// Create minimal valid Opus header:
	// - OggS page header (27 bytes) + segment table + OpusHead packet
	data := createMinimalOggPage("OpusHead")

	r := bytes.NewReader(data)
	format, err := DetectFormat(r, int64(len(data)), "test.opus")
	if err != nil {
		t.Fatalf("DetectFormat() error = %v", err)
	}
	if format != FormatOpus {
		t.Errorf("DetectFormat() = %v, want FormatOpus", format)
	}
}

func TestDetectFormat_Vorbis(t *testing.T) {
	// Create minimal valid Vorbis header:
	// - OggS page header + segment table + Vorbis identification packet
	data := createMinimalOggPage("\x01vorbis")

	r := bytes.NewReader(data)
	format, err := DetectFormat(r, int64(len(data)), "test.ogg")
	if err != nil {
		t.Fatalf("DetectFormat() error = %v", err)
	}
	if format != FormatOgg {
		t.Errorf("DetectFormat() = %v, want FormatOgg", format)
	}
}

func TestDetectFormat_FLAC(t *testing.T) {
	data := []byte("fLaC" + "\x00\x00\x00\x00") // fLaC magic + minimal header

	r := bytes.NewReader(data)
	format, err := DetectFormat(r, int64(len(data)), "test.flac")
	if err != nil {
		t.Fatalf("DetectFormat() error = %v", err)
	}
	if format != FormatFLAC {
		t.Errorf("DetectFormat() = %v, want FormatFLAC", format)
	}
}

func TestDetectFormat_MP3_ID3(t *testing.T) {
	data := []byte("ID3\x04\x00\x00\x00\x00\x00\x00") // ID3v2.4 header

	r := bytes.NewReader(data)
	format, err := DetectFormat(r, int64(len(data)), "test.mp3")
	if err != nil {
		t.Fatalf("DetectFormat() error = %v", err)
	}
	if format != FormatMP3 {
		t.Errorf("DetectFormat() = %v, want FormatMP3", format)
	}
}

func TestDetectFormat_MP3_FrameSync(t *testing.T) {
	// MP3 frame sync: 0xFF 0xFB (MPEG1 Layer3)
	data := []byte{0xFF, 0xFB, 0x90, 0x00, 0x00, 0x00, 0x00, 0x00}

	r := bytes.NewReader(data)
	format, err := DetectFormat(r, int64(len(data)), "test.mp3")
	if err != nil {
		t.Fatalf("DetectFormat() error = %v", err)
	}
	if format != FormatMP3 {
		t.Errorf("DetectFormat() = %v, want FormatMP3", format)
	}
}

func TestDetectFormat_WAV(t *testing.T) {
	data := []byte("RIFF\x00\x00\x00\x00WAVE")

	r := bytes.NewReader(data)
	format, err := DetectFormat(r, int64(len(data)), "test.wav")
	if err != nil {
		t.Fatalf("DetectFormat() error = %v", err)
	}
	if format != FormatWAV {
		t.Errorf("DetectFormat() = %v, want FormatWAV", format)
	}
}

func TestDetectFormat_AIFF(t *testing.T) {
	data := []byte("FORM\x00\x00\x00\x00AIFF")

	r := bytes.NewReader(data)
	format, err := DetectFormat(r, int64(len(data)), "test.aiff")
	if err != nil {
		t.Fatalf("DetectFormat() error = %v", err)
	}
	if format != FormatAIFF {
		t.Errorf("DetectFormat() = %v, want FormatAIFF", format)
	}
}

func TestDetectFormat_TooSmall(t *testing.T) {
	data := []byte("abc")

	r := bytes.NewReader(data)
	_, err := DetectFormat(r, int64(len(data)), "test.bin")
	if err == nil {
		t.Error("DetectFormat() should return error for file too small")
	}
}

func TestDetectFormat_MP4Brands(t *testing.T) {
	tests := []struct {
		brand string
		want  Format
		err   bool
	}{
		{"M4A ", FormatMP4, false},
		{"M4B ", FormatMP4, false},
		{"mp42", FormatMP4, false},
		{"isom", FormatMP4, false},
		{"qt  ", FormatUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.brand, func(t *testing.T) {
			data := []byte("\x00\x00\x00\x14ftyp" + tt.brand + "\x00\x00\x00\x00isom")
			got, err := DetectFormat(bytes.NewReader(data), int64(len(data)), "test.m4a")
			if (err != nil) != tt.err {
				t.Fatalf("DetectFormat() error = %v, wantErr %v", err, tt.err)
			}
			if got != tt.want {
				t.Errorf("DetectFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectFormat_ID3PrefixedFLAC(t *testing.T) {
	data := []byte("ID3\x04\x00\x00\x00\x00\x00\x00fLaC")
	got, err := DetectFormat(bytes.NewReader(data), int64(len(data)), "/music/a.flac")
	if err != nil {
		t.Fatal(err)
	}
	if got != FormatFLAC {
		t.Errorf("DetectFormat() = %v, want FLAC", got)
	}
}

func TestDetectFormat_Unknown(t *testing.T) {
	data := []byte("this is not audio at all")
	_, err := DetectFormat(bytes.NewReader(data), int64(len(data)), "notes.txt")
	var unsupported *UnsupportedFormatError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedFormatError, got %v", err)
	}
	if unsupported.Path != "notes.txt" {
		t.Errorf("Path = %q", unsupported.Path)
	}
}

func TestFormatFromExtension(t *testing.T) {
	tests := []struct {
		name string
		want Format
	}{
		{"a.flac", FormatFLAC},
		{"B.MP3", FormatMP3},
		{"c.m4b", FormatMP4},
		{"d.m4a", FormatMP4},
		{"e.oga", FormatOgg},
		{"f.opus", FormatOpus},
		{"g.wav", FormatWAV},
		{"h.aif", FormatAIFF},
		{"cover.jpg", FormatUnknown},
		{"noext", FormatUnknown},
	}

	for _, tt := range tests {
		if got := FormatFromExtension(tt.name); got != tt.want {
			t.Errorf("FormatFromExtension(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFormat_MIMEType(t *testing.T) {
	if got := FormatFLAC.MIMEType(); got != "audio/flac" {
		t.Errorf("FLAC MIME = %q", got)
	}
	if got := FormatUnknown.MIMEType(); got != "application/octet-stream" {
		t.Errorf("Unknown MIME = %q", got)
	}
	if FormatOpus.String() != "Opus" {
		t.Errorf("String() = %q", FormatOpus.String())
	}
}

// createMinimalOggPage creates a minimal Ogg page with the given first packet content.
func createMinimalOggPage(packetContent string) []byte {
	// Ogg page header structure:
	// - 4 bytes: "OggS" magic
	// - 1 byte: version (0)
	// - 1 byte: header type (0x02 = BOS)
	// - 8 bytes: granule position (-1)
	// - 4 bytes: serial number
	// - 4 bytes: page sequence number
	// - 4 bytes: checksum
	// - 1 byte: segment count
	// - N bytes: segment table
	// - data

	packetLen := len(packetContent)

	// Build header
	header := make([]byte, 27)
	copy(header[0:4], "OggS")
	header[4] = 0    // version
	header[5] = 0x02 // BOS flag
	// granule position -1 (0xFF * 8)
	for i := 6; i < 14; i++ {
		header[i] = 0xFF
	}
	// serial number (arbitrary)
	header[14] = 0x01
	// page sequence = 0
	// checksum = 0 (we're not validating it)
	header[26] = 1 // one segment

	// Segment table: one entry with packet length
	segmentTable := []byte{byte(packetLen)}

	// Combine: header + segment table + packet
	result := make([]byte, 0, 27+1+packetLen)
	result = append(result, header...)
	result = append(result, segmentTable...)
	result = append(result, []byte(packetContent)...)

	return result
}
