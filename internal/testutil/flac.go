// Package testutil builds synthetic audio files for tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// FLAC builds a minimal FLAC stream with a STREAMINFO block describing
// durationMs of 44.1kHz audio, a Vorbis comment block and an optional
// front cover.
func FLAC(durationMs int64, comments []string, cover []byte) []byte {
	buf := &bytes.Buffer{}
	buf.WriteString("fLaC")
	last := cover == nil
	writeBlock(buf, 0, false, streamInfo(44100, uint64(durationMs)*44100/1000))
	writeBlock(buf, 4, last, commentBlock(comments))
	if cover != nil {
		writeBlock(buf, 6, true, pictureBlock(3, "image/png", cover))
	}
	return buf.Bytes()
}

// WriteFLAC writes a FLAC file below dir, creating parents, and returns
// its path.
func WriteFLAC(t testing.TB, dir, name string, comments []string, cover []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, FLAC(180000, comments, cover), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeBlock(buf *bytes.Buffer, blockType byte, last bool, data []byte) {
	if last {
		blockType |= 0x80
	}
	n := len(data)
	buf.Write([]byte{blockType, byte(n >> 16), byte(n >> 8), byte(n)})
	buf.Write(data)
}

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

func commentBlock(comments []string) []byte {
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

func pictureBlock(picType uint32, mime string, img []byte) []byte {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.BigEndian, picType)
	binary.Write(buf, binary.BigEndian, uint32(len(mime)))
	buf.WriteString(mime)
	binary.Write(buf, binary.BigEndian, uint32(0))
	buf.Write(make([]byte, 16))
	binary.Write(buf, binary.BigEndian, uint32(len(img)))
	buf.Write(img)
	return buf.Bytes()
}
