package xiph

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/simonhull/musikr/internal/registry"
	"github.com/simonhull/musikr/internal/types"
)

// commentBlock builds a Vorbis comment structure.
func commentBlock(comments ...string) []byte {
	buf := &bytes.Buffer{}
	vendor := "musikr"
	binary.Write(buf, binary.LittleEndian, uint32(len(vendor)))
	buf.WriteString(vendor)
	binary.Write(buf, binary.LittleEndian, uint32(len(comments)))
	for _, c := range comments {
		binary.Write(buf, binary.LittleEndian, uint32(len(c)))
		buf.WriteString(c)
	}
	return buf.Bytes()
}

// pictureBlock builds a FLAC PICTURE block body.
func pictureBlock(picType uint32, mime string, img []byte) []byte {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.BigEndian, picType)
	binary.Write(buf, binary.BigEndian, uint32(len(mime)))
	buf.WriteString(mime)
	binary.Write(buf, binary.BigEndian, uint32(0)) // description
	buf.Write(make([]byte, 16))
	binary.Write(buf, binary.BigEndian, uint32(len(img)))
	buf.Write(img)
	return buf.Bytes()
}

func flacBlock(blockType byte, last bool, data []byte) []byte {
	if last {
		blockType |= 0x80
	}
	n := len(data)
	return append([]byte{blockType, byte(n >> 16), byte(n >> 8), byte(n)}, data...)
}

// streamInfo builds a STREAMINFO body for the given rate and sample count.
func streamInfo(sampleRate, totalSamples uint64) []byte {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.BigEndian, uint16(4096))
	binary.Write(buf, binary.BigEndian, uint16(4096))
	buf.Write(make([]byte, 6))
	packed := (sampleRate << 44) | (1 << 41) | (15 << 36) | totalSamples
	binary.Write(buf, binary.BigEndian, packed)
	buf.Write(make([]byte, 16))
	return buf.Bytes()
}

func createFLAC(comments []string, pictures ...[]byte) []byte {
	blocks := [][]byte{flacBlock(blockTypeStreamInfo, false, streamInfo(44100, 44100*3))}
	for _, p := range pictures {
		blocks = append(blocks, flacBlock(blockTypePicture, false, p))
	}
	blocks = append(blocks, flacBlock(blockTypeVorbisComment, true, commentBlock(comments...)))
	return append([]byte("fLaC"), bytes.Join(blocks, nil)...)
}

func TestFLACExtractor(t *testing.T) {
	data := createFLAC(
		[]string{"TITLE=Song", "artist=A", "ARTIST=B", "MUSICBRAINZ_ALBUMID=abc", "broken"},
		pictureBlock(uint32(types.PictureBackCover), "image/png", []byte("back")),
		pictureBlock(uint32(types.PictureFrontCover), "image/jpeg", []byte("front")),
	)

	md, err := registry.Get(types.FormatFLAC).Extract(bytes.NewReader(data), int64(len(data)), "a.flac")
	if err != nil {
		t.Fatal(err)
	}

	if got := md.Xiph["TITLE"]; len(got) != 1 || got[0] != "Song" {
		t.Errorf("TITLE = %q", got)
	}
	if got := md.Xiph["ARTIST"]; len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Errorf("ARTIST = %q, want [A B]", got)
	}
	if md.Properties.DurationMs != 3000 {
		t.Errorf("duration = %d, want 3000", md.Properties.DurationMs)
	}
	if md.Properties.SampleRateHz != 44100 {
		t.Errorf("sample rate = %d", md.Properties.SampleRateHz)
	}
	if md.Cover == nil || string(md.Cover.Data) != "front" {
		t.Errorf("cover = %+v, want front cover", md.Cover)
	}
	if len(md.Warnings) != 1 {
		t.Errorf("expected one warning for the malformed comment, got %v", md.Warnings)
	}
}

func TestFLACExtractor_BadMagic(t *testing.T) {
	data := []byte("fLaX\x00\x00\x00\x00")
	_, err := registry.Get(types.FormatFLAC).Extract(bytes.NewReader(data), int64(len(data)), "bad.flac")
	var corrupted *types.CorruptedFileError
	if !errors.As(err, &corrupted) {
		t.Fatalf("expected CorruptedFileError, got %v", err)
	}
}

// oggPage builds one Ogg page holding the given packets in full.
func oggPage(headerType byte, granule int64, seq uint32, packets ...[]byte) []byte {
	var lacing []byte
	var body []byte
	for _, p := range packets {
		n := len(p)
		for n >= 255 {
			lacing = append(lacing, 255)
			n -= 255
		}
		lacing = append(lacing, byte(n))
		body = append(body, p...)
	}
	buf := &bytes.Buffer{}
	buf.WriteString("OggS")
	buf.WriteByte(0)
	buf.WriteByte(headerType)
	binary.Write(buf, binary.LittleEndian, uint64(granule))
	binary.Write(buf, binary.LittleEndian, uint32(7))
	binary.Write(buf, binary.LittleEndian, seq)
	binary.Write(buf, binary.LittleEndian, uint32(0)) // checksum
	buf.WriteByte(byte(len(lacing)))
	buf.Write(lacing)
	buf.Write(body)
	return buf.Bytes()
}

func opusHead(preSkip uint16) []byte {
	buf := &bytes.Buffer{}
	buf.WriteString("OpusHead")
	buf.WriteByte(1)
	buf.WriteByte(2)
	binary.Write(buf, binary.LittleEndian, preSkip)
	binary.Write(buf, binary.LittleEndian, uint32(44100))
	binary.Write(buf, binary.LittleEndian, uint16(0))
	buf.WriteByte(0)
	return buf.Bytes()
}

func TestOggExtractor_Opus(t *testing.T) {
	pic := base64.StdEncoding.EncodeToString(pictureBlock(uint32(types.PictureFrontCover), "image/jpeg", bytes.Repeat([]byte{0xAB}, 600)))
	tags := append([]byte("OpusTags"), commentBlock("TITLE=Opus Song", "R128_TRACK_GAIN=-1280", "METADATA_BLOCK_PICTURE="+pic)...)

	data := bytes.Join([][]byte{
		oggPage(0x02, 0, 0, opusHead(312)),
		oggPage(0x00, 0, 1, tags),
		oggPage(0x04, 48000*2+312, 2, []byte{0xFC}),
	}, nil)

	md, err := registry.Get(types.FormatOpus).Extract(bytes.NewReader(data), int64(len(data)), "a.opus")
	if err != nil {
		t.Fatal(err)
	}
	if md.Format != types.FormatOpus {
		t.Errorf("format = %v", md.Format)
	}
	if got := md.Xiph["TITLE"]; len(got) != 1 || got[0] != "Opus Song" {
		t.Errorf("TITLE = %q", got)
	}
	if got := md.Xiph["R128_TRACK_GAIN"]; len(got) != 1 || got[0] != "-1280" {
		t.Errorf("R128_TRACK_GAIN = %q", got)
	}
	if md.Properties.DurationMs != 2000 {
		t.Errorf("duration = %d, want 2000", md.Properties.DurationMs)
	}
	if md.Cover == nil || len(md.Cover.Data) != 600 {
		t.Errorf("expected a 600 byte cover from METADATA_BLOCK_PICTURE")
	}
}

func TestOggExtractor_PacketSpanningPages(t *testing.T) {
	ident := make([]byte, 30)
	ident[0] = 0x01
	copy(ident[1:], "vorbis")
	binary.LittleEndian.PutUint32(ident[12:16], 48000)
	binary.LittleEndian.PutUint32(ident[20:24], 192000)

	comment := append([]byte("\x03vorbis"), commentBlock("ALBUM=Spanning")...)
	// Pad past one full segment so the packet must continue on the next page.
	comment = append(comment, make([]byte, 300)...)
	first, rest := comment[:255], comment[255:]

	page1 := oggPage(0x00, 0, 1, first)
	// oggPage terminates each packet; rebuild with a lone 255 lacing value.
	page1 = append(page1[:26], append([]byte{1, 255}, first...)...)

	data := bytes.Join([][]byte{
		oggPage(0x02, 0, 0, ident),
		page1,
		oggPage(0x01, 48000, 2, rest),
	}, nil)

	md, err := registry.Get(types.FormatOgg).Extract(bytes.NewReader(data), int64(len(data)), "a.ogg")
	if err != nil {
		t.Fatal(err)
	}
	if got := md.Xiph["ALBUM"]; len(got) != 1 || got[0] != "Spanning" {
		t.Errorf("ALBUM = %q (warnings %v)", got, md.Warnings)
	}
	if md.Properties.BitrateKbps != 192 {
		t.Errorf("bitrate = %d, want 192", md.Properties.BitrateKbps)
	}
	if md.Properties.DurationMs != 1000 {
		t.Errorf("duration = %d, want 1000", md.Properties.DurationMs)
	}
}

func TestParsePicture_Truncated(t *testing.T) {
	full := pictureBlock(3, "image/png", []byte("img"))
	if _, err := ParsePicture(full[:len(full)-2]); err == nil {
		t.Error("expected error for truncated picture")
	}
}
