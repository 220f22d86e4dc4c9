package id3v2

import (
	"encoding/binary"
	"fmt"
	"io"

	binutil "github.com/simonhull/musikr/internal/binary"
	"github.com/simonhull/musikr/internal/registry"
	"github.com/simonhull/musikr/internal/types"
)

// Bitrates in kbps indexed by [MPEG-1?][bitrate index] for layer III.
var bitrateTable = [2][16]int{
	{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0},
	{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0},
}

// Sample rates in Hz indexed by MPEG version bits.
var sampleRateTable = map[uint32][3]int{
	3: {44100, 48000, 32000}, // MPEG-1
	2: {22050, 24000, 16000}, // MPEG-2
	0: {11025, 12000, 8000},  // MPEG-2.5
}

// maxSyncScan bounds the search for the first frame after the tag.
const maxSyncScan = 64 * 1024

type mp3Extractor struct{}

// Extract reads the leading ID3v2 tag and the first MPEG frame header.
func (mp3Extractor) Extract(r io.ReaderAt, size int64, path string) (*types.Metadata, error) {
	sr := binutil.NewSafeReader(r, size, path)
	md := types.NewMetadata(path, types.FormatMP3, size)

	tagSize, err := ReadTag(sr, 0, md)
	if err != nil {
		// Untagged MP3s are common; properties can still be read.
		md.Warn("metadata", 0, "ID3v2: %v", err)
		tagSize = 0
	}

	if err := readMPEGProperties(sr, tagSize, md); err != nil {
		md.Warn("properties", tagSize, "MPEG frames: %v", err)
	}
	return md, nil
}

func readMPEGProperties(sr *binutil.SafeReader, start int64, md *types.Metadata) error {
	size := sr.Size()
	end := min(start+maxSyncScan, size-4)
	buf := make([]byte, 4)
	for off := start; off < end; off++ {
		if err := sr.ReadAt(buf, off, "MPEG frame header"); err != nil {
			return err
		}
		header := binary.BigEndian.Uint32(buf)
		bitrate, sampleRate, mpeg1, ok := parseFrameHeader(header)
		if !ok {
			continue
		}
		md.Properties.SampleRateHz = sampleRate
		md.Properties.BitrateKbps = bitrate

		if frames, ok := readXingFrames(sr, off, header, mpeg1); ok && sampleRate > 0 {
			samplesPerFrame := int64(1152)
			if !mpeg1 {
				samplesPerFrame = 576
			}
			md.Properties.DurationMs = int64(frames) * samplesPerFrame * 1000 / int64(sampleRate)
			if md.Properties.DurationMs > 0 {
				md.Properties.BitrateKbps = int((size - start) * 8 / md.Properties.DurationMs)
			}
			return nil
		}
		if bitrate > 0 {
			md.Properties.DurationMs = (size - start) * 8 / int64(bitrate)
		}
		return nil
	}
	return fmt.Errorf("no valid frame within %d bytes of offset %d", maxSyncScan, start)
}

// parseFrameHeader validates a layer III frame header.
func parseFrameHeader(header uint32) (bitrate, sampleRate int, mpeg1, ok bool) {
	if header&0xFFE00000 != 0xFFE00000 {
		return 0, 0, false, false
	}
	version := (header >> 19) & 0x3
	layer := (header >> 17) & 0x3
	if version == 1 || layer != 1 {
		return 0, 0, false, false
	}
	bitrateIdx := (header >> 12) & 0xF
	rateIdx := (header >> 10) & 0x3
	if bitrateIdx == 0 || bitrateIdx == 15 || rateIdx == 3 {
		return 0, 0, false, false
	}
	mpeg1 = version == 3
	row := 0
	if mpeg1 {
		row = 1
	}
	return bitrateTable[row][bitrateIdx], sampleRateTable[version][rateIdx], mpeg1, true
}

// readXingFrames returns the frame count of a Xing/Info or VBRI header.
func readXingFrames(sr *binutil.SafeReader, frameOff int64, header uint32, mpeg1 bool) (uint32, bool) {
	mono := (header>>6)&0x3 == 3
	var sideInfo int64
	switch {
	case mpeg1 && mono:
		sideInfo = 17
	case mpeg1:
		sideInfo = 32
	case mono:
		sideInfo = 9
	default:
		sideInfo = 17
	}

	buf := make([]byte, 12)
	if err := sr.ReadAt(buf, frameOff+4+sideInfo, "Xing header"); err == nil {
		tag := string(buf[0:4])
		if (tag == "Xing" || tag == "Info") && binary.BigEndian.Uint32(buf[4:8])&0x1 != 0 {
			return binary.BigEndian.Uint32(buf[8:12]), true
		}
	}

	vbri := make([]byte, 18)
	if err := sr.ReadAt(vbri, frameOff+36, "VBRI header"); err == nil && string(vbri[0:4]) == "VBRI" {
		return binary.BigEndian.Uint32(vbri[14:18]), true
	}
	return 0, false
}

func init() {
	registry.Register(types.FormatMP3, mp3Extractor{})
}
