package id3v2

import (
	"encoding/binary"
	"io"
	"math"
	"strings"

	binutil "github.com/simonhull/musikr/internal/binary"
	"github.com/simonhull/musikr/internal/registry"
	"github.com/simonhull/musikr/internal/types"
)

// RIFF INFO fields mapped onto Xiph-style keys.
var riffInfoKeys = map[string]string{
	"INAM": "TITLE",
	"IART": "ARTIST",
	"IPRD": "ALBUM",
	"IGNR": "GENRE",
	"ICRD": "DATE",
	"ITRK": "TRACKNUMBER",
	"IPRT": "TRACKNUMBER",
}

// chunkContainer walks RIFF (little-endian) or IFF (big-endian) chunks.
type chunkContainer struct {
	format types.Format
	order  binary.ByteOrder
}

func (c chunkContainer) Extract(r io.ReaderAt, size int64, path string) (*types.Metadata, error) {
	sr := binutil.NewSafeReader(r, size, path)
	md := types.NewMetadata(path, c.format, size)

	var sampleRate, byteRate, frames int64
	var dataSize int64
	off := int64(12)
	head := make([]byte, 8)
	for off+8 <= size {
		if err := sr.ReadAt(head, off, "chunk header"); err != nil {
			md.Warn("metadata", off, "chunk header: %v", err)
			break
		}
		id := string(head[0:4])
		n := int64(c.order.Uint32(head[4:8]))
		body := off + 8
		if body+n > size {
			n = size - body
		}

		switch id {
		case "id3 ", "ID3 ":
			if data, err := sr.Bytes(body, n, "ID3 chunk"); err == nil {
				if err := ParseTag(data, md); err != nil {
					md.Warn("metadata", body, "ID3 chunk: %v", err)
				}
			}
		case "fmt ":
			if data, err := sr.Bytes(body, min(n, 16), "fmt chunk"); err == nil && len(data) >= 12 {
				sampleRate = int64(binary.LittleEndian.Uint32(data[4:8]))
				byteRate = int64(binary.LittleEndian.Uint32(data[8:12]))
			}
		case "COMM":
			if data, err := sr.Bytes(body, min(n, 18), "COMM chunk"); err == nil && len(data) >= 18 {
				frames = int64(binary.BigEndian.Uint32(data[2:6]))
				sampleRate = int64(extendedFloat(data[8:18]))
			}
		case "data", "SSND":
			dataSize = n
		case "LIST":
			c.readInfoList(sr, body, n, md)
		}

		// Chunks are padded to even sizes.
		off = body + n + n%2
	}

	md.Properties.SampleRateHz = int(sampleRate)
	switch {
	case frames > 0 && sampleRate > 0:
		md.Properties.DurationMs = frames * 1000 / sampleRate
	case byteRate > 0:
		md.Properties.DurationMs = dataSize * 1000 / byteRate
	}
	if md.Properties.DurationMs > 0 {
		md.Properties.BitrateKbps = int(dataSize * 8 / md.Properties.DurationMs)
	}
	return md, nil
}

func (c chunkContainer) readInfoList(sr *binutil.SafeReader, off, n int64, md *types.Metadata) {
	data, err := sr.Bytes(off, n, "LIST chunk")
	if err != nil || len(data) < 4 || string(data[0:4]) != "INFO" {
		return
	}
	cur := binutil.NewCursor(data[4:], "INFO list")
	for cur.Remaining() >= 8 {
		id := string(cur.Next(4))
		size := int(binutil.CursorLE[uint32](cur))
		value := cur.Next(size)
		if size%2 == 1 {
			cur.Skip(1)
		}
		if cur.Err() != nil {
			return
		}
		if key, ok := riffInfoKeys[id]; ok {
			md.AddXiph(key, strings.TrimRight(decodeLatin1(value), "\x00 "))
		}
	}
}

// extendedFloat decodes an 80-bit IEEE 754 extended precision number.
func extendedFloat(b []byte) float64 {
	exp := int(binary.BigEndian.Uint16(b[0:2]) & 0x7FFF)
	mantissa := binary.BigEndian.Uint64(b[2:10])
	if exp == 0 && mantissa == 0 {
		return 0
	}
	v := float64(mantissa) * math.Pow(2, float64(exp-16383-63))
	if b[0]&0x80 != 0 {
		v = -v
	}
	return v
}

func init() {
	registry.Register(types.FormatWAV, chunkContainer{format: types.FormatWAV, order: binary.LittleEndian})
	registry.Register(types.FormatAIFF, chunkContainer{format: types.FormatAIFF, order: binary.BigEndian})
}
