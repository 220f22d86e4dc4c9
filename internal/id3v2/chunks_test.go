package id3v2

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/simonhull/musikr/internal/registry"
	"github.com/simonhull/musikr/internal/types"
)

func riffChunk(id string, data []byte) []byte {
	buf := &bytes.Buffer{}
	buf.WriteString(id)
	binary.Write(buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)
	if len(data)%2 == 1 {
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

func TestWAVExtractor(t *testing.T) {
	fmtChunk := &bytes.Buffer{}
	binary.Write(fmtChunk, binary.LittleEndian, uint16(1))      // PCM
	binary.Write(fmtChunk, binary.LittleEndian, uint16(2))      // channels
	binary.Write(fmtChunk, binary.LittleEndian, uint32(44100))  // sample rate
	binary.Write(fmtChunk, binary.LittleEndian, uint32(176400)) // byte rate
	binary.Write(fmtChunk, binary.LittleEndian, uint16(4))
	binary.Write(fmtChunk, binary.LittleEndian, uint16(16))

	info := []byte("INFO")
	info = append(info, riffChunk("INAM", []byte("Wave Song\x00"))...)

	body := bytes.Join([][]byte{
		[]byte("WAVE"),
		riffChunk("fmt ", fmtChunk.Bytes()),
		riffChunk("LIST", info),
		riffChunk("data", make([]byte, 176400)),
		riffChunk("id3 ", createTag(3, 0, frame(3, "TPE1", latin1("Wave Artist")))),
	}, nil)
	data := append([]byte("RIFF"), 0, 0, 0, 0)
	data = append(data, body...)

	md, err := registry.Get(types.FormatWAV).Extract(bytes.NewReader(data), int64(len(data)), "a.wav")
	if err != nil {
		t.Fatal(err)
	}
	if got := md.Xiph["TITLE"]; len(got) != 1 || got[0] != "Wave Song" {
		t.Errorf("INFO title = %q", got)
	}
	if got := md.ID3v2["TPE1"]; len(got) != 1 || got[0] != "Wave Artist" {
		t.Errorf("TPE1 = %q", got)
	}
	if md.Properties.DurationMs != 1000 {
		t.Errorf("duration = %d, want 1000", md.Properties.DurationMs)
	}
	if md.Properties.SampleRateHz != 44100 {
		t.Errorf("sample rate = %d", md.Properties.SampleRateHz)
	}
}

func TestExtendedFloat(t *testing.T) {
	// 44100 as an 80-bit extended float.
	b := []byte{0x40, 0x0E, 0xAC, 0x44, 0, 0, 0, 0, 0, 0}
	if got := extendedFloat(b); got != 44100 {
		t.Errorf("extendedFloat = %v, want 44100", got)
	}
	if got := extendedFloat(make([]byte, 10)); got != 0 {
		t.Errorf("extendedFloat(0) = %v", got)
	}
}
